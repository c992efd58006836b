package app

import (
	"context"
	"sync"

	"quiz-progress-service/internal/domain"
)

// ProfileStore owns the display profile document. It never reads progress
// itself; callers pass the current point total where a gate needs it.
type ProfileStore struct {
	doc           document
	defaultAvatar domain.Avatar

	mu      sync.RWMutex
	profile domain.UserProfile
}

func NewProfileStore(deps StoreDeps, defaultAvatar domain.Avatar) *ProfileStore {
	deps = deps.withDefaults()
	s := &ProfileStore{
		doc:           newDocument("profile", deps.Keys.Profile, deps),
		defaultAvatar: defaultAvatar,
	}
	s.profile = s.defaultProfile()
	return s
}

func (s *ProfileStore) defaultProfile() domain.UserProfile {
	return domain.UserProfile{
		Avatar:          s.defaultAvatar,
		UnlockedAvatars: []string{},
	}
}

// Load reads the persisted profile, falling back to the default profile.
func (s *ProfileStore) Load(ctx context.Context) domain.UserProfile {
	stored := s.defaultProfile()
	if !s.doc.read(ctx, &stored) {
		stored = s.defaultProfile()
	}
	if stored.UnlockedAvatars == nil {
		stored.UnlockedAvatars = []string{}
	}
	s.mu.Lock()
	s.profile = stored
	s.mu.Unlock()
	return stored.Clone()
}

func (s *ProfileStore) Profile() domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// UpdateName trims name and rejects anything shorter than domain.MinNameLength.
func (s *ProfileStore) UpdateName(ctx context.Context, name string) error {
	trimmed, err := domain.NormalizeName(name)
	if err != nil {
		return err
	}
	s.mutate(ctx, func(p *domain.UserProfile) { p.Name = trimmed })
	return nil
}

// UpdateAvatar selects avatar. Only free or previously unlocked avatars are
// selectable; an avatar that still needs points returns ErrAvatarLocked and
// must go through UnlockAvatar first.
func (s *ProfileStore) UpdateAvatar(ctx context.Context, avatar domain.Avatar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if avatar.RequiredPoints > 0 && !s.profile.HasAvatar(avatar.ID) {
		return domain.ErrAvatarLocked
	}
	s.profile.Avatar = avatar
	s.doc.write(ctx, s.profile)
	return nil
}

// CompleteOnboarding sets name and avatar, marks onboarding done and grants
// the free avatars.
func (s *ProfileStore) CompleteOnboarding(ctx context.Context, name string, avatar domain.Avatar, freeAvatarIDs []string) error {
	trimmed, err := domain.NormalizeName(name)
	if err != nil {
		return err
	}
	if avatar.RequiredPoints > 0 {
		return domain.ErrAvatarLocked
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	unlocked := append([]string{}, s.profile.UnlockedAvatars...)
	for _, id := range freeAvatarIDs {
		if !s.profile.HasAvatar(id) {
			unlocked = append(unlocked, id)
		}
	}
	s.profile = domain.UserProfile{
		Name:                   trimmed,
		Avatar:                 avatar,
		HasCompletedOnboarding: true,
		UnlockedAvatars:        unlocked,
	}
	s.doc.write(ctx, s.profile)
	return nil
}

// CanUnlock reports eligibility only; unlocking is a separate recorded action.
func (s *ProfileStore) CanUnlock(avatar domain.Avatar, totalPoints int) bool {
	return domain.IsUnlocked(totalPoints, avatar.RequiredPoints)
}

// UnlockAvatar records avatar as unlocked once totalPoints reaches its gate.
// Unlocking an already unlocked avatar is a no-op.
func (s *ProfileStore) UnlockAvatar(ctx context.Context, avatar domain.Avatar, totalPoints int) error {
	if !s.CanUnlock(avatar, totalPoints) {
		return domain.ErrInsufficientPoints
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile.HasAvatar(avatar.ID) {
		return nil
	}
	s.profile.UnlockedAvatars = append(s.profile.UnlockedAvatars, avatar.ID)
	s.doc.write(ctx, s.profile)
	return nil
}

func (s *ProfileStore) IsAvatarUnlocked(avatarID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.HasAvatar(avatarID)
}

// Reset restores the default profile, including the onboarding flag.
func (s *ProfileStore) Reset(ctx context.Context) {
	_ = applyAll(ctx, s.doc.kv, s.doc, s.reset())
}

func (s *ProfileStore) reset() Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = s.defaultProfile()
	s.doc.metrics.Reset("profile")
	return s.doc.set(s.profile)
}

func (s *ProfileStore) mutate(ctx context.Context, fn func(p *domain.UserProfile)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.profile)
	s.doc.write(ctx, s.profile)
}
