package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
)

// APIHandler exposes one user's engine over REST under /users/{userID}.
type APIHandler struct {
	registry *app.Registry
}

func NewAPIHandler(registry *app.Registry) *APIHandler {
	return &APIHandler{registry: registry}
}

// RegisterRoutes mounts the per-user routes on router.
func (h *APIHandler) RegisterRoutes(router chi.Router) {
	router.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/progress", h.withEngine(h.getProgress))
		r.Delete("/progress", h.withEngine(h.resetProgress))
		r.Post("/results", h.withEngine(h.saveResult))
		r.Get("/results/{quizID}", h.withEngine(h.getResult))
		r.Get("/unlocked", h.withEngine(h.isUnlocked))
		r.Get("/categories", h.withEngine(h.categories))
		r.Get("/categories/{categoryID}/levels", h.withEngine(h.levels))
		r.Get("/stats", h.withEngine(h.stats))

		r.Get("/in-progress/{quizID}", h.withEngine(h.loadInProgress))
		r.Put("/in-progress/{quizID}", h.withEngine(h.saveInProgress))
		r.Delete("/in-progress/{quizID}", h.withEngine(h.clearInProgress))

		r.Get("/profile", h.withEngine(h.getProfile))
		r.Delete("/profile", h.withEngine(h.resetProfile))
		r.Put("/profile/name", h.withEngine(h.updateName))
		r.Put("/profile/avatar", h.withEngine(h.updateAvatar))
		r.Post("/onboarding", h.withEngine(h.completeOnboarding))
		r.Get("/avatars", h.withEngine(h.avatars))
		r.Post("/avatars/{avatarID}/unlock", h.withEngine(h.unlockAvatar))
	})
}

type engineHandler func(w http.ResponseWriter, r *http.Request, e *app.Engine)

func (h *APIHandler) withEngine(next engineHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := h.registry.Engine(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, err)
			return
		}
		next(w, r, e)
	}
}

func (h *APIHandler) getProgress(w http.ResponseWriter, _ *http.Request, e *app.Engine) {
	writeJSON(w, http.StatusOK, e.Progress())
}

func (h *APIHandler) resetProgress(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	e.ResetProgress(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) saveResult(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	var in domain.QuizResult
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	saved, err := e.SaveQuizResult(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *APIHandler) getResult(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	quizID := chi.URLParam(r, "quizID")
	result, ok := e.GetQuizResult(quizID)
	if !ok {
		writeError(w, fmt.Errorf("result for %s: %w", quizID, errNotFound))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type unlockedResponse struct {
	RequiredPoints int  `json:"requiredPoints"`
	Unlocked       bool `json:"unlocked"`
}

func (h *APIHandler) isUnlocked(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	required, err := strconv.Atoi(r.URL.Query().Get("requiredPoints"))
	if err != nil {
		writeError(w, fmt.Errorf("requiredPoints: %w", errBadRequest))
		return
	}
	writeJSON(w, http.StatusOK, unlockedResponse{RequiredPoints: required, Unlocked: e.IsQuizUnlocked(required)})
}

func (h *APIHandler) categories(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	statuses, err := e.CategoryStatuses(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (h *APIHandler) levels(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	levels, err := e.LevelStatuses(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, levels)
}

func (h *APIHandler) stats(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	stats, err := e.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *APIHandler) loadInProgress(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	quizID := chi.URLParam(r, "quizID")
	snap, ok := e.LoadInProgress(quizID)
	if !ok {
		writeError(w, fmt.Errorf("snapshot for %s: %w", quizID, errNotFound))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *APIHandler) saveInProgress(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	var snap domain.InProgressSnapshot
	if err := decodeBody(r, &snap); err != nil {
		writeError(w, err)
		return
	}
	e.SaveInProgress(r.Context(), chi.URLParam(r, "quizID"), snap)
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) clearInProgress(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	e.ClearInProgress(r.Context(), chi.URLParam(r, "quizID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) getProfile(w http.ResponseWriter, _ *http.Request, e *app.Engine) {
	writeJSON(w, http.StatusOK, e.Profile())
}

func (h *APIHandler) resetProfile(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	e.ResetProfile(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *APIHandler) updateName(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	var in nameRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := e.UpdateName(r.Context(), in.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e.Profile())
}

type avatarRequest struct {
	AvatarID string `json:"avatarId"`
}

func (h *APIHandler) updateAvatar(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	var in avatarRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := e.UpdateAvatar(r.Context(), in.AvatarID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e.Profile())
}

type onboardingRequest struct {
	Name     string `json:"name"`
	AvatarID string `json:"avatarId"`
}

func (h *APIHandler) completeOnboarding(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	var in onboardingRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := e.CompleteOnboarding(r.Context(), in.Name, in.AvatarID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e.Profile())
}

func (h *APIHandler) avatars(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	avatars, err := e.Avatars(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, avatars)
}

func (h *APIHandler) unlockAvatar(w http.ResponseWriter, r *http.Request, e *app.Engine) {
	if err := e.UnlockAvatar(r.Context(), chi.URLParam(r, "avatarID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e.Profile())
}
