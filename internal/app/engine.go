package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"quiz-progress-service/internal/domain"
)

// EngineConfig wires one user's engine.
type EngineConfig struct {
	KV      KeyValueStore
	Keys    Keys
	Catalog CatalogRepository
	Logger  *zap.Logger
	Metrics Metrics
	Clock   func() time.Time
}

// Engine is the progress/unlock/badge surface the UI layer calls into.
// It is constructed once per user and must be loaded before use.
type Engine struct {
	catalog   CatalogRepository
	progress  *ProgressStore
	snapshots *SnapshotStore
	profile   *ProfileStore
	log       *zap.Logger
	metrics   Metrics
	now       func() time.Time
}

// NewEngine fetches the catalog (for the default avatar) and builds the stores.
func NewEngine(ctx context.Context, cfg EngineConfig) (*Engine, error) {
	catalog, err := cfg.Catalog.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	deps := StoreDeps{KV: cfg.KV, Keys: cfg.Keys, Logger: cfg.Logger, Metrics: cfg.Metrics}.withDefaults()

	snapshots := NewSnapshotStore(deps)
	return &Engine{
		catalog:   cfg.Catalog,
		snapshots: snapshots,
		progress:  NewProgressStoreWithClock(deps, snapshots, cfg.Clock),
		profile:   NewProfileStore(deps, catalog.DefaultAvatar()),
		log:       deps.Logger,
		metrics:   deps.Metrics,
		now:       cfg.Clock,
	}, nil
}

// Load restores every document. Progress-dependent reads must wait for it.
func (e *Engine) Load(ctx context.Context) {
	e.LoadProgress(ctx)
	e.snapshots.Restore(ctx)
	e.profile.Load(ctx)
}

func (e *Engine) LoadProgress(ctx context.Context) domain.UserProgress {
	return e.progress.Load(ctx)
}

// SaveQuizResult saves result (badge derived here) and clears the quiz's snapshot.
func (e *Engine) SaveQuizResult(ctx context.Context, result domain.QuizResult) (domain.QuizResult, error) {
	return e.progress.SaveResult(ctx, result)
}

func (e *Engine) ResetProgress(ctx context.Context) {
	e.progress.Reset(ctx)
}

func (e *Engine) GetQuizResult(quizID string) (domain.QuizResult, bool) {
	return e.progress.GetResult(quizID)
}

func (e *Engine) IsQuizUnlocked(requiredPoints int) bool {
	return e.progress.IsUnlocked(requiredPoints)
}

func (e *Engine) SaveInProgress(ctx context.Context, quizID string, snap domain.InProgressSnapshot) {
	e.snapshots.Save(ctx, quizID, snap)
}

func (e *Engine) LoadInProgress(quizID string) (domain.InProgressSnapshot, bool) {
	return e.snapshots.Load(quizID)
}

func (e *Engine) ClearInProgress(ctx context.Context, quizID string) {
	e.snapshots.Clear(ctx, quizID)
}

func (e *Engine) Progress() domain.UserProgress {
	return e.progress.Progress()
}

func (e *Engine) Profile() domain.UserProfile {
	return e.profile.Profile()
}

func (e *Engine) UpdateName(ctx context.Context, name string) error {
	return e.profile.UpdateName(ctx, name)
}

func (e *Engine) UpdateAvatar(ctx context.Context, avatarID string) error {
	avatar, err := e.avatar(ctx, avatarID)
	if err != nil {
		return err
	}
	return e.profile.UpdateAvatar(ctx, avatar)
}

func (e *Engine) CompleteOnboarding(ctx context.Context, name, avatarID string) error {
	catalog, err := e.catalog.GetCatalog(ctx)
	if err != nil {
		return err
	}
	avatar, ok := catalog.Avatar(avatarID)
	if !ok {
		return domain.ErrAvatarNotFound
	}
	return e.profile.CompleteOnboarding(ctx, name, avatar, catalog.FreeAvatarIDs())
}

// UnlockAvatar records the unlock when the current total meets the avatar gate.
func (e *Engine) UnlockAvatar(ctx context.Context, avatarID string) error {
	avatar, err := e.avatar(ctx, avatarID)
	if err != nil {
		return err
	}
	return e.profile.UnlockAvatar(ctx, avatar, e.progress.TotalPoints())
}

func (e *Engine) IsAvatarUnlocked(avatarID string) bool {
	return e.profile.IsAvatarUnlocked(avatarID)
}

func (e *Engine) ResetProfile(ctx context.Context) {
	e.profile.Reset(ctx)
}

// Purge resets the chosen documents in one batch. Unlike ResetProgress and
// ResetProfile it reports a storage failure instead of swallowing it.
func (e *Engine) Purge(ctx context.Context, progress, profile bool) error {
	var mutations []Mutation
	if progress {
		mutations = append(mutations, e.progress.reset()...)
	}
	if profile {
		mutations = append(mutations, e.profile.reset())
	}
	if len(mutations) == 0 {
		return nil
	}
	if err := applyAll(ctx, e.progress.doc.kv, e.progress.doc, mutations...); err != nil {
		return fmt.Errorf("purge user documents: %w", err)
	}
	return nil
}

// Avatars lists the catalog avatars with unlock state and eligibility.
func (e *Engine) Avatars(ctx context.Context) ([]domain.AvatarStatus, error) {
	catalog, err := e.catalog.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	total := e.progress.TotalPoints()
	out := make([]domain.AvatarStatus, 0, len(catalog.Avatars))
	for _, a := range catalog.Avatars {
		out = append(out, domain.AvatarStatus{
			Avatar:    a,
			Unlocked:  e.profile.IsAvatarUnlocked(a.ID),
			CanUnlock: e.profile.CanUnlock(a, total),
		})
	}
	return out, nil
}

// CategoryStatuses reports the points gate of every category.
func (e *Engine) CategoryStatuses(ctx context.Context) ([]domain.CategoryStatus, error) {
	catalog, err := e.catalog.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	progress := e.progress.Progress()
	out := make([]domain.CategoryStatus, 0, len(catalog.Categories))
	for _, cat := range catalog.Categories {
		completed := 0
		for _, q := range cat.Quizzes {
			if _, ok := progress.QuizResults[q.ID]; ok {
				completed++
			}
		}
		out = append(out, domain.CategoryStatus{
			ID:             cat.ID,
			Title:          cat.Title,
			RequiredPoints: cat.RequiredPoints,
			Unlocked:       domain.IsUnlocked(progress.TotalPoints, cat.RequiredPoints),
			Levels:         len(cat.Quizzes),
			Completed:      completed,
		})
	}
	return out, nil
}

// LevelStatuses recomputes the sequencing rule for every quiz in a category.
func (e *Engine) LevelStatuses(ctx context.Context, categoryID string) ([]domain.LevelStatus, error) {
	catalog, err := e.catalog.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	cat, ok := catalog.Category(categoryID)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	progress := e.progress.Progress()
	out := make([]domain.LevelStatus, 0, len(cat.Quizzes))
	for i, q := range cat.Quizzes {
		status := domain.LevelStatus{
			Index:     i,
			QuizID:    q.ID,
			Title:     q.Title,
			Questions: len(q.Questions),
			Unlocked:  domain.LevelUnlocked(cat, i, progress.TotalPoints, progress.QuizResults),
		}
		if r, ok := progress.QuizResults[q.ID]; ok {
			status.Result = &r
		}
		out = append(out, status)
	}
	return out, nil
}

func (e *Engine) IsLevelUnlocked(ctx context.Context, categoryID string, index int) (bool, error) {
	catalog, err := e.catalog.GetCatalog(ctx)
	if err != nil {
		return false, err
	}
	cat, ok := catalog.Category(categoryID)
	if !ok {
		return false, domain.ErrCategoryNotFound
	}
	progress := e.progress.Progress()
	return domain.LevelUnlocked(cat, index, progress.TotalPoints, progress.QuizResults), nil
}

// Stats summarizes completed quizzes and the badge collection.
func (e *Engine) Stats(ctx context.Context) (domain.Stats, error) {
	catalog, err := e.catalog.GetCatalog(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	progress := e.progress.Progress()
	stats := domain.Stats{
		TotalPoints:      progress.TotalPoints,
		CompletedQuizzes: len(progress.QuizResults),
		TotalQuizzes:     catalog.QuizCount(),
		Badges:           make(map[domain.Badge]int, len(domain.Badges)),
	}
	for _, b := range domain.Badges {
		stats.Badges[b] = 0
	}
	for _, r := range progress.QuizResults {
		stats.Badges[r.Badge]++
	}
	return stats, nil
}

func (e *Engine) avatar(ctx context.Context, avatarID string) (domain.Avatar, error) {
	catalog, err := e.catalog.GetCatalog(ctx)
	if err != nil {
		return domain.Avatar{}, err
	}
	avatar, ok := catalog.Avatar(avatarID)
	if !ok {
		return domain.Avatar{}, domain.ErrAvatarNotFound
	}
	return avatar, nil
}
