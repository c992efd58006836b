package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/config"
	"quiz-progress-service/internal/infra/storage"
)

// localUserKey holds the generated id of this device's user.
const localUserKey = "@quiz_local_user"

// localSession is one engine opened outside the server, for CLI commands.
type localSession struct {
	Engine *app.Engine
	UserID string
	Logger *zap.Logger
	close  []storage.Closer
}

func (s *localSession) Close() {
	for i := len(s.close) - 1; i >= 0; i-- {
		_ = s.close[i]()
	}
	_ = s.Logger.Sync()
}

func openLocalSession(ctx context.Context, configPath string) (*localSession, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	s := &localSession{Logger: logger}

	kv, closeKV, err := storage.NewKeyValueStore(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.close = append(s.close, closeKV)

	catalogRepo, closeCatalog, err := storage.NewCatalogRepository(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.close = append(s.close, closeCatalog)

	userID, err := resolveUserID(ctx, kv, cfg.User.ID)
	if err != nil {
		s.Close()
		return nil, err
	}
	engine, err := app.NewRegistry(kv, catalogRepo, logger, nil).Engine(ctx, userID)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Engine = engine
	s.UserID = userID
	return s, nil
}

// resolveUserID prefers the configured id, then the one generated on first use.
func resolveUserID(ctx context.Context, kv app.KeyValueStore, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	id, ok, err := kv.Get(ctx, localUserKey)
	if err != nil {
		return "", fmt.Errorf("read local user: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := kv.Set(ctx, localUserKey, id); err != nil {
		return "", fmt.Errorf("store local user: %w", err)
	}
	return id, nil
}
