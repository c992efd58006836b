package app

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// StoreDeps are shared by the three document stores.
type StoreDeps struct {
	KV      KeyValueStore
	Keys    Keys
	Logger  *zap.Logger
	Metrics Metrics
}

func (d StoreDeps) withDefaults() StoreDeps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = noopMetrics{}
	}
	if d.Keys == (Keys{}) {
		d.Keys = DefaultKeys
	}
	return d
}

// document reads and writes one JSON blob. Failures are logged, counted and
// swallowed: callers keep their in-memory copy as the truth.
type document struct {
	name    string
	key     string
	kv      KeyValueStore
	log     *zap.Logger
	metrics Metrics
}

func newDocument(name, key string, deps StoreDeps) document {
	return document{
		name:    name,
		key:     key,
		kv:      deps.KV,
		log:     deps.Logger.With(zap.String("document", name), zap.String("key", key)),
		metrics: deps.Metrics,
	}
}

// read decodes into dst and reports whether a usable payload was found.
func (d document) read(ctx context.Context, dst any) bool {
	raw, ok, err := d.kv.Get(ctx, d.key)
	if err != nil {
		d.fail("read", err)
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		d.fail("decode", err)
		return false
	}
	return true
}

func (d document) set(v any) Mutation {
	data, err := json.Marshal(v)
	if err != nil {
		// Documents are plain structs and maps; this only trips on programmer error.
		d.log.Error("encode document", zap.Error(err))
		return Mutation{Key: d.key, Delete: true}
	}
	return Mutation{Key: d.key, Value: string(data)}
}

func (d document) remove() Mutation {
	return Mutation{Key: d.key, Delete: true}
}

func (d document) write(ctx context.Context, v any) {
	m := d.set(v)
	if err := d.kv.Set(ctx, m.Key, m.Value); err != nil {
		d.fail("write", err)
	}
}

func (d document) fail(op string, err error) {
	d.log.Warn("persistence failure, continuing with in-memory state", zap.String("op", op), zap.Error(err))
	d.metrics.PersistenceFailure(d.name, op)
}

// applyAll writes a batch spanning several documents; a failure is attributed to the first.
func applyAll(ctx context.Context, kv KeyValueStore, owner document, mutations ...Mutation) error {
	if err := kv.Apply(ctx, mutations); err != nil {
		owner.fail("write", err)
		return err
	}
	return nil
}
