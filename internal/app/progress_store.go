package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"quiz-progress-service/internal/domain"
)

// ProgressStore is the single authority for total points and per-quiz results.
type ProgressStore struct {
	doc       document
	snapshots *SnapshotStore
	metrics   Metrics
	now       func() time.Time

	mu       sync.RWMutex
	progress domain.UserProgress
}

func NewProgressStore(deps StoreDeps, snapshots *SnapshotStore) *ProgressStore {
	return NewProgressStoreWithClock(deps, snapshots, time.Now)
}

// NewProgressStoreWithClock allows deterministic result dates in tests.
func NewProgressStoreWithClock(deps StoreDeps, snapshots *SnapshotStore, now func() time.Time) *ProgressStore {
	deps = deps.withDefaults()
	return &ProgressStore{
		doc:       newDocument("progress", deps.Keys.Progress, deps),
		snapshots: snapshots,
		metrics:   deps.Metrics,
		now:       now,
		progress:  domain.NewUserProgress(),
	}
}

// Load reads the persisted document. Missing or corrupt data falls back to
// the zero value; this never fails.
func (s *ProgressStore) Load(ctx context.Context) domain.UserProgress {
	stored := domain.NewUserProgress()
	if !s.doc.read(ctx, &stored) {
		stored = domain.NewUserProgress()
	}
	if stored.QuizResults == nil {
		stored.QuizResults = make(map[string]domain.QuizResult)
	}
	if stored.TotalPoints < 0 {
		stored.TotalPoints = 0
	}

	s.mu.Lock()
	s.progress = stored
	s.mu.Unlock()
	return stored.Clone()
}

// SaveResult stores result as the latest attempt for its quiz, adjusts the
// total by the point delta against the previous attempt and drops the quiz's
// in-progress snapshot in the same write.
func (s *ProgressStore) SaveResult(ctx context.Context, result domain.QuizResult) (domain.QuizResult, error) {
	if result.QuizID == "" {
		return domain.QuizResult{}, domain.ErrQuizNotFound
	}
	badge, err := domain.ClassifyBadge(result.Score, result.TotalQuestions)
	if err != nil {
		return domain.QuizResult{}, err
	}
	result.Badge = badge
	if result.Date.IsZero() {
		result.Date = s.now().UTC()
	}
	if result.TimeSpent < 0 {
		result.TimeSpent = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prevPoints := 0
	if existing, ok := s.progress.QuizResults[result.QuizID]; ok {
		prevPoints = domain.Points(existing.Score)
	}
	delta := domain.Points(result.Score) - prevPoints

	next := s.progress.Clone()
	next.TotalPoints = max(0, next.TotalPoints+delta)
	next.QuizResults[result.QuizID] = result
	s.progress = next

	mutations := []Mutation{s.doc.set(next)}
	if s.snapshots != nil {
		if m, changed := s.snapshots.detach(result.QuizID); changed {
			mutations = append(mutations, m)
		}
	}
	applyAll(ctx, s.doc.kv, s.doc, mutations...)

	s.metrics.ResultSaved(badge)
	s.doc.log.Debug("quiz result saved",
		zap.String("quiz_id", result.QuizID),
		zap.Int("score", result.Score),
		zap.Int("delta", delta),
		zap.Int("total_points", next.TotalPoints),
	)
	return result, nil
}

// Reset restores the default document and wipes every in-progress snapshot.
func (s *ProgressStore) Reset(ctx context.Context) {
	_ = applyAll(ctx, s.doc.kv, s.doc, s.reset()...)
}

// reset clears the in-memory state and returns the batch persisting it.
func (s *ProgressStore) reset() []Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress = domain.NewUserProgress()
	mutations := []Mutation{s.doc.set(s.progress)}
	if s.snapshots != nil {
		mutations = append(mutations, s.snapshots.wipe())
	}
	s.metrics.Reset("progress")
	return mutations
}

func (s *ProgressStore) GetResult(quizID string) (domain.QuizResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.progress.QuizResults[quizID]
	return r, ok
}

func (s *ProgressStore) IsUnlocked(requiredPoints int) bool {
	return domain.IsUnlocked(s.TotalPoints(), requiredPoints)
}

func (s *ProgressStore) TotalPoints() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress.TotalPoints
}

// Progress returns a copy of the current document.
func (s *ProgressStore) Progress() domain.UserProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress.Clone()
}
