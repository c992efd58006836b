package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
	"quiz-progress-service/internal/infra/memory"
)

func TestWebSocketAttemptFlow(t *testing.T) {
	server, registry := newTestServer(t)
	defer server.Close()

	conn := dial(t, server, "u1", "basics-1")
	defer conn.Close()

	payload := readNext(t, conn, "question")
	assert.Equal(t, float64(0), payload["index"])
	assert.Equal(t, false, payload["resumed"])
	assert.NotContains(t, payload, "correctAnswer", "question payload must not reveal the answer")

	sendAnswer(t, conn, 1)
	result := readNext(t, conn, "answerResult")
	assert.Equal(t, true, result["correct"])
	payload = readNext(t, conn, "question")
	assert.Equal(t, float64(1), payload["index"])

	sendAnswer(t, conn, 0)
	readNext(t, conn, "answerResult")
	done := readNext(t, conn, "completed")
	assert.Equal(t, float64(10), done["totalPoints"])

	engine, err := registry.Engine(context.Background(), "u1")
	require.NoError(t, err)
	r, ok := engine.GetQuizResult("basics-1")
	require.True(t, ok)
	assert.Equal(t, 1, r.Score)
	assert.Equal(t, domain.BadgeBronze, r.Badge)
	_, ok = engine.LoadInProgress("basics-1")
	assert.False(t, ok, "snapshot cleared after completion")
}

func TestWebSocketResumesAfterDisconnect(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()

	conn := dial(t, server, "u2", "basics-1")
	readNext(t, conn, "question")
	sendAnswer(t, conn, 1)
	readNext(t, conn, "answerResult")
	readNext(t, conn, "question")
	conn.Close()

	// The server tears the attempt down asynchronously; the snapshot taken on
	// advance is already enough to resume at question 1.
	deadline := time.Now().Add(5 * time.Second)
	for {
		again := dial(t, server, "u2", "basics-1")
		payload := readNext(t, again, "question")
		again.Close()
		if payload["index"] == float64(1) && payload["resumed"] == true {
			return
		}
		require.False(t, time.Now().After(deadline), "expected resumed attempt at question 1, got %+v", payload)
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWebSocketRejectsLockedLevel(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?quizId=basics-2&userId=u3"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOutboxStopsAfterWriteFailure(t *testing.T) {
	var writes, failures atomic.Int32
	out := newOutbox(func(outboundMessage[any]) error {
		writes.Add(1)
		return errors.New("broken pipe")
	}, func(error) { failures.Add(1) })

	sent := make(chan struct{})
	go func() {
		defer close(sent)
		for n := 0; n < 100; n++ {
			out.Send(outboundMessage[any]{Type: "question"})
		}
	}()
	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "Send blocked after the writer stopped")
	}
	out.Close()

	assert.False(t, out.Send(outboundMessage[any]{Type: "question"}))
	assert.Equal(t, int32(1), writes.Load())
	assert.Equal(t, int32(1), failures.Load())
}

func newTestServer(t *testing.T) (*httptest.Server, *app.Registry) {
	t.Helper()
	catalog := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(sampleCatalog()), time.Minute)
	registry := app.NewRegistry(memory.NewKVStore(), catalog, nil, nil)
	return httptest.NewServer(NewRouter(registry, nil, nil)), registry
}

func dial(t *testing.T, server *httptest.Server, userID, quizID string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?quizId=" + quizID + "&userId=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	return conn
}

func sendAnswer(t *testing.T, conn *websocket.Conn, index int) {
	t.Helper()
	msg := map[string]any{"type": "answer", "payload": map[string]any{"index": index}}
	require.NoError(t, conn.WriteJSON(msg))
}

func readNext(t *testing.T, conn *websocket.Conn, expect string) map[string]any {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, expect, msg.Type, "payload %+v", msg.Payload)
	return msg.Payload
}

// sampleCatalog has one open category with two 2-question levels; option 1 is
// always correct. "advanced" needs 100 points.
func sampleCatalog() domain.Catalog {
	question := func(id string) domain.Question {
		return domain.Question{ID: id, Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectAnswer: 1, Points: 10}
	}
	return domain.Catalog{
		Categories: []domain.Category{
			{
				ID: "basics",
				Quizzes: []domain.Quiz{
					{ID: "basics-1", Title: "One", Questions: []domain.Question{question("b1q1"), question("b1q2")}},
					{ID: "basics-2", Title: "Two", Questions: []domain.Question{question("b2q1"), question("b2q2")}},
				},
			},
			{
				ID:             "advanced",
				RequiredPoints: 100,
				Quizzes:        []domain.Quiz{{ID: "advanced-1", Questions: []domain.Question{question("a1q1")}}},
			},
		},
		Avatars: []domain.Avatar{
			{ID: "1", Emoji: "🪖", BackgroundColor: "#3B82F6"},
			{ID: "2", Emoji: "🏆", BackgroundColor: "#14B8A6", RequiredPoints: 20},
		},
	}
}
