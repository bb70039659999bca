package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/pocketnotes/internal/kv"
)

// OpenStore opens the backend selected by cfg. The caller closes it.
func OpenStore(ctx context.Context, cfg StoreConfig) (kv.Store, error) {
	switch cfg.Backend {
	case kv.BackendFile:
		return kv.NewFS(cfg.Path)
	case kv.BackendSQLite:
		return kv.OpenSQLite(cfg.Path)
	case kv.BackendRedis:
		r := kv.NewRedis(kv.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, err
		}
		return r, nil
	case kv.BackendMemory:
		return kv.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// NewLogger builds the JSON logger used by every command.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
