// Package bootstrap wires up the runtime dependencies shared by the API
// server and the maintenance commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"brc/internal/cache"
	"brc/internal/config"
	"brc/internal/database"
	"brc/internal/middleware"
	"brc/internal/models"
	"brc/internal/repository"
	"brc/internal/seed"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedSampleData populates a handful of fake lists and submissions
	// after connecting. Development convenience only.
	SeedSampleData bool
}

// InitRuntime connects to DB and Redis and optionally seeds sample data.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional; a nil client degrades caching and the event stream.
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevList(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development list: %w", err)
	}

	if opts.SeedSampleData {
		s := seed.NewSeeder(db)
		lists, err := s.SeedLists(3)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to seed sample lists: %w", err)
		}
		if err := s.SeedSubmissions(lists, 25); err != nil {
			return nil, nil, fmt.Errorf("failed to seed sample submissions: %w", err)
		}
	}

	return db, r, nil
}

// ensureDevList enrolls a local list in development so intake and review
// endpoints can be exercised without a manual enrollment step. The generated
// secret is logged once at startup.
func ensureDevList(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapList {
		return nil
	}

	name := strings.TrimSpace(cfg.DevListName)
	if name == "" {
		name = "localdev"
	}

	ctx := context.Background()
	lists := repository.NewListRepository(db)

	existing, err := lists.ListAll(ctx)
	if err != nil {
		return err
	}
	for i := range existing {
		if existing[i].Name == name {
			return nil
		}
	}

	base := fmt.Sprintf("https://%s.invalid/webhooks", name)
	list := &models.List{
		ID:            uuid.NewString(),
		Name:          name,
		Description:   "Local development list",
		State:         models.ListStateSupported,
		ClaimBotAPI:   base + "/claim",
		UnclaimBotAPI: base + "/unclaim",
		ApproveBotAPI: base + "/approve",
		DenyBotAPI:    base + "/deny",
	}
	if err := lists.Create(ctx, list); err != nil {
		return err
	}

	middleware.Logger.Info("Enrolled development list",
		slog.String("list_id", list.ID),
		slog.String("name", list.Name),
		slog.String("secret_key", list.SecretKey),
	)
	return nil
}
