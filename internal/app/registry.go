package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrUserRequired is returned when an engine is requested without a user id.
var ErrUserRequired = errors.New("user id required")

// Registry hands out one loaded Engine per user, namespacing its documents.
type Registry struct {
	kv      KeyValueStore
	catalog CatalogRepository
	log     *zap.Logger
	metrics Metrics
	clock   func() time.Time
	sf      singleflight.Group

	mu      sync.RWMutex
	engines map[string]*Engine
}

func NewRegistry(kv KeyValueStore, catalog CatalogRepository, logger *zap.Logger, metrics Metrics) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Registry{
		kv:      kv,
		catalog: catalog,
		log:     logger,
		metrics: metrics,
		clock:   time.Now,
		engines: make(map[string]*Engine),
	}
}

// WithClock is test-only for deterministic attempt timing.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.clock = now
	return r
}

// Engine returns the user's engine, loading its documents on first use.
func (r *Registry) Engine(ctx context.Context, userID string) (*Engine, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	r.mu.RLock()
	if e, ok := r.engines[userID]; ok {
		r.mu.RUnlock()
		return e, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(userID, func() (interface{}, error) {
		r.mu.RLock()
		if e, ok := r.engines[userID]; ok {
			r.mu.RUnlock()
			return e, nil
		}
		r.mu.RUnlock()

		e, err := NewEngine(ctx, EngineConfig{
			KV:      r.kv,
			Keys:    KeysFor(userID),
			Catalog: r.catalog,
			Logger:  r.log.With(zap.String("user_id", userID)),
			Metrics: r.metrics,
			Clock:   r.clock,
		})
		if err != nil {
			return nil, err
		}
		e.Load(ctx)

		r.mu.Lock()
		r.engines[userID] = e
		r.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Engine), nil
}

// Metrics exposes the registry's metrics sink to transports.
func (r *Registry) Metrics() Metrics { return r.metrics }
