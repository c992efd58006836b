package app

import (
	"context"
	"sync"

	"quiz-progress-service/internal/domain"
)

// SnapshotStore owns the quiz-id -> in-progress snapshot document.
type SnapshotStore struct {
	doc document

	mu        sync.RWMutex
	snapshots map[string]domain.InProgressSnapshot
}

func NewSnapshotStore(deps StoreDeps) *SnapshotStore {
	deps = deps.withDefaults()
	return &SnapshotStore{
		doc:       newDocument("in_progress", deps.Keys.Snapshots, deps),
		snapshots: make(map[string]domain.InProgressSnapshot),
	}
}

// Restore reads the persisted map; missing or malformed data yields an empty map.
func (s *SnapshotStore) Restore(ctx context.Context) {
	stored := make(map[string]domain.InProgressSnapshot)
	if !s.doc.read(ctx, &stored) || stored == nil {
		stored = make(map[string]domain.InProgressSnapshot)
	}
	s.mu.Lock()
	s.snapshots = stored
	s.mu.Unlock()
}

// Save overwrites the snapshot for quizID and persists the whole map.
func (s *SnapshotStore) Save(ctx context.Context, quizID string, snap domain.InProgressSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[quizID] = copySnapshot(snap)
	s.doc.write(ctx, s.snapshots)
}

// Load returns the snapshot for quizID, if any.
func (s *SnapshotStore) Load(quizID string) (domain.InProgressSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[quizID]
	if !ok {
		return domain.InProgressSnapshot{}, false
	}
	return copySnapshot(snap), true
}

// Clear drops the snapshot for quizID.
func (s *SnapshotStore) Clear(ctx context.Context, quizID string) {
	if m, changed := s.detach(quizID); changed {
		applyAll(ctx, s.doc.kv, s.doc, m)
	}
}

// Len reports how many quizzes have a resumable snapshot.
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// detach removes quizID in memory and returns the mutation persisting it,
// so the caller can batch it with its own write.
func (s *SnapshotStore) detach(quizID string) (Mutation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[quizID]; !ok {
		return Mutation{}, false
	}
	delete(s.snapshots, quizID)
	if len(s.snapshots) == 0 {
		return s.doc.remove(), true
	}
	return s.doc.set(s.snapshots), true
}

// wipe drops every snapshot in memory and returns the mutation persisting it.
func (s *SnapshotStore) wipe() Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = make(map[string]domain.InProgressSnapshot)
	return s.doc.remove()
}

func copySnapshot(snap domain.InProgressSnapshot) domain.InProgressSnapshot {
	if snap.SelectedAnswer != nil {
		v := *snap.SelectedAnswer
		snap.SelectedAnswer = &v
	}
	return snap
}
