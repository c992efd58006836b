package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrAvatarNotFound),
		errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAvatarLocked),
		errors.Is(err, domain.ErrInsufficientPoints),
		errors.Is(err, domain.ErrLevelLocked):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidTotalQuestions),
		errors.Is(err, domain.ErrInvalidScore),
		errors.Is(err, domain.ErrNameTooShort),
		errors.Is(err, domain.ErrAttemptFinished),
		errors.Is(err, domain.ErrAlreadyAnswered),
		errors.Is(err, domain.ErrNoAnswer),
		errors.Is(err, domain.ErrAnswerOutOfRange),
		errors.Is(err, app.ErrUserRequired),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var (
	errNotFound   = errors.New("not found")
	errBadRequest = errors.New("bad request")
)

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}
