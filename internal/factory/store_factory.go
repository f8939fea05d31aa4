package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/adapters/store"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/config"
	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/ports"
)

// StoreFactory creates the configured persistence backend.
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory.
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{cfg: cfg, logger: logger}
}

// Create builds the store for the configured backend.
func (f *StoreFactory) Create() (ports.Store, error) {
	c := f.cfg.GetStore()
	f.logger.Info("creating store", zap.String("type", c.Type))

	switch c.Type {
	case "memory":
		return store.NewMemoryStore(f.logger), nil
	case "sqlite":
		return store.NewSQLiteStore(c.SQLitePath, f.logger)
	case "mysql":
		return store.NewMySQLStore(c.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", c.Type)
	}
}
