package app

import (
	"context"

	"quiz-progress-service/internal/domain"
)

// KeyValueStore abstracts durable document storage (memory, SQLite, Redis, Postgres).
// Get reports ok=false for a missing key without an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Apply writes every mutation or none of them.
	Apply(ctx context.Context, mutations []Mutation) error
}

// Mutation is one element of an Apply batch. Delete ignores Value.
type Mutation struct {
	Key    string
	Value  string
	Delete bool
}

// CatalogRepository loads the read-only question bank (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context) (domain.Catalog, error)
}

// Metrics receives engine events. A nil Metrics is replaced by a no-op.
type Metrics interface {
	PersistenceFailure(document, op string)
	ResultSaved(badge domain.Badge)
	Reset(document string)
	AttemptOpened()
	AttemptClosed()
}

type noopMetrics struct{}

func (noopMetrics) PersistenceFailure(string, string) {}
func (noopMetrics) ResultSaved(domain.Badge)          {}
func (noopMetrics) Reset(string)                      {}
func (noopMetrics) AttemptOpened()                    {}
func (noopMetrics) AttemptClosed()                    {}

// Keys names the three persisted documents.
type Keys struct {
	Progress  string
	Snapshots string
	Profile   string
}

// DefaultKeys are the single-device document keys.
var DefaultKeys = Keys{
	Progress:  "@quiz_progress",
	Snapshots: "@quiz_in_progress",
	Profile:   "@quiz_user_profile",
}

// KeysFor namespaces the document keys per user. An empty userID yields DefaultKeys.
func KeysFor(userID string) Keys {
	if userID == "" {
		return DefaultKeys
	}
	prefix := "user:" + userID + ":"
	return Keys{
		Progress:  prefix + DefaultKeys.Progress,
		Snapshots: prefix + DefaultKeys.Snapshots,
		Profile:   prefix + DefaultKeys.Profile,
	}
}
