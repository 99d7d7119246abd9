// Package preferences persists the unit system choice across widget
// instances.
package preferences

import (
	"context"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"go.uber.org/zap"
)

// Store keeps a single unit preference. LoadUnits reports ok=false when
// nothing valid is stored.
type Store interface {
	LoadUnits(ctx context.Context) (models.Units, bool, error)
	SaveUnits(ctx context.Context, units models.Units) error
}

// NopStore stands in when no storage is available.
type NopStore struct{}

func (NopStore) LoadUnits(context.Context) (models.Units, bool, error) {
	return "", false, nil
}

func (NopStore) SaveUnits(context.Context, models.Units) error {
	return nil
}

type Config struct {
	Backend  string
	Path     string
	RedisURL string
	RedisKey string
}

// New picks a backend. Backends that cannot be initialised degrade to
// NopStore with a warning.
func New(cfg Config, logger *zap.Logger) Store {
	switch cfg.Backend {
	case "file":
		return NewFileStore(cfg.Path, logger)
	case "redis":
		store, err := NewRedisStoreFromURL(cfg.RedisURL, cfg.RedisKey, logger)
		if err != nil {
			logger.Warn("Preference storage unavailable", zap.Error(err))
			return NopStore{}
		}
		return store
	case "", "none":
		return NopStore{}
	default:
		logger.Warn("Unknown preference backend", zap.String("backend", cfg.Backend))
		return NopStore{}
	}
}

func parseStored(value string) (models.Units, bool) {
	units, err := models.ParseUnits(value)
	if err != nil {
		return "", false
	}
	return units, true
}

func invalidStored(logger *zap.Logger, source, value string) {
	logger.Warn("Ignoring invalid stored unit preference",
		zap.String("source", source),
		zap.String("value", value))
}
