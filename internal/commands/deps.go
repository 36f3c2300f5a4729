package commands

import (
	"context"
	"fmt"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/config"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/firestore"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/importer"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/registry"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/rules"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/store"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/store/memory"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/store/sqlite"
)

// openStore opens the repository selected by cfg.Store
func openStore(ctx context.Context, cfg *config.Config) (store.Repository, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.New(), nil
	case config.StoreSQLite:
		s, err := sqlite.Open(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, nil
	case config.StoreFirestore:
		c, err := firestore.NewClient(ctx, cfg.FirestoreProject, cfg.FirestoreCredentials)
		if err != nil {
			return nil, fmt.Errorf("failed to open firestore store: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// loadRules reads cfg.RulesFile, or the built-in rules when none is set
func loadRules(cfg *config.Config) (*rules.Engine, error) {
	if cfg.RulesFile == "" {
		return rules.LoadEmbedded()
	}
	engine, err := rules.LoadFromFile(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", cfg.RulesFile, err)
	}
	return engine, nil
}

// newImporter wires an import service over repo
func (a *app) newImporter(repo store.Repository) (*importer.Service, *registry.Registry, error) {
	engine, err := loadRules(a.cfg)
	if err != nil {
		return nil, nil, err
	}
	reg := registry.New(registry.WithLogger(a.logger))
	svc := importer.New(reg, repo, engine, importer.WithLogger(a.logger))
	return svc, reg, nil
}
