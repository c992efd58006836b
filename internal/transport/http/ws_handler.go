package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
)

// WSHandler runs one quiz attempt per websocket. Closing the socket is the
// screen teardown: the attempt snapshots itself so it can be resumed.
type WSHandler struct {
	registry *app.Registry
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(registry *app.Registry, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		registry: registry,
		log:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Index int `json:"index"`
}

type questionPayload struct {
	app.QuestionView
	AttemptID string `json:"attemptId"`
	Resumed   bool   `json:"resumed"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades /ws?userId=&quizId= and drives the attempt until it completes or the socket closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	if quizID == "" || userID == "" {
		http.Error(w, "missing quizId or userId", http.StatusBadRequest)
		return
	}

	engine, err := h.registry.Engine(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	attempt, err := engine.StartAttempt(r.Context(), quizID)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	attemptID := uuid.NewString()
	log := h.log.With(
		zap.String("attempt_id", attemptID),
		zap.String("user_id", userID),
		zap.String("quiz_id", quizID),
	)
	metrics := h.registry.Metrics()
	metrics.AttemptOpened()
	defer metrics.AttemptClosed()

	// Storage writes after the peer hung up must not be cancelled with the request.
	ctx := context.WithoutCancel(r.Context())
	defer attempt.Teardown(ctx)

	out := newOutbox(func(msg outboundMessage[any]) error { return conn.WriteJSON(msg) }, func(err error) {
		log.Debug("ws write error", zap.Error(err))
		// Unblocks ReadJSON so the read loop ends too.
		_ = conn.Close()
	})
	defer out.Close()

	question := func() outboundMessage[any] {
		return outboundMessage[any]{Type: "question", Payload: questionPayload{
			QuestionView: attempt.Current(),
			AttemptID:    attemptID,
			Resumed:      attempt.Resumed(),
		}}
	}
	fail := func(msg string) outboundMessage[any] {
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
	}
	log.Info("attempt attached", zap.Bool("resumed", attempt.Resumed()))
	if !out.Send(question()) {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			log.Info("attempt detached", zap.String("state", attempt.State().String()))
			return
		}
		var sent bool
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sent = out.Send(fail("invalid answer payload"))
				break
			}
			outcome, result, err := attempt.Answer(ctx, payload.Index)
			if err != nil {
				sent = out.Send(fail(err.Error()))
				break
			}
			if !out.Send(outboundMessage[any]{Type: "answerResult", Payload: outcome}) {
				return
			}
			if result != nil {
				out.Send(outboundMessage[any]{Type: "completed", Payload: completedPayload(*result, engine)})
				log.Info("attempt completed", zap.Int("score", result.Score), zap.String("badge", string(result.Badge)))
				return
			}
			sent = out.Send(question())
		default:
			sent = out.Send(fail("unsupported message type"))
		}
		if !sent {
			return
		}
	}
}

// outbox serialises writes to one connection on its own goroutine. After
// the first failed write Send stops queueing and reports false.
type outbox struct {
	send chan outboundMessage[any]
	done chan struct{}
}

func newOutbox(write func(outboundMessage[any]) error, onError func(error)) *outbox {
	o := &outbox{
		send: make(chan outboundMessage[any], 16),
		done: make(chan struct{}),
	}
	go func() {
		defer close(o.done)
		for msg := range o.send {
			if err := write(msg); err != nil {
				onError(err)
				return
			}
		}
	}()
	return o
}

// Send queues msg and reports false once the writer has stopped.
func (o *outbox) Send(msg outboundMessage[any]) bool {
	select {
	case <-o.done:
		return false
	default:
	}
	select {
	case o.send <- msg:
		return true
	case <-o.done:
		return false
	}
}

// Close flushes queued messages and waits for the writer to exit.
// Send must not be called afterwards.
func (o *outbox) Close() {
	close(o.send)
	<-o.done
}

type completed struct {
	Result      domain.QuizResult `json:"result"`
	TotalPoints int               `json:"totalPoints"`
	BadgeColor  string            `json:"badgeColor"`
	BadgeEmoji  string            `json:"badgeEmoji"`
}

func completedPayload(result domain.QuizResult, engine *app.Engine) completed {
	return completed{
		Result:      result,
		TotalPoints: engine.Progress().TotalPoints,
		BadgeColor:  result.Badge.Color(),
		BadgeEmoji:  result.Badge.Emoji(),
	}
}
