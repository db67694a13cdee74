package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go-armada/internal/settings/models"
	"go-armada/pkg/database"
)

const (
	cacheKeyPrefix = "guild_settings:"
	cacheTTL       = 5 * time.Minute
)

// Service provides guild settings with a Redis read-through cache in
// front of MongoDB. Reads on the hot path (every alliance command
// resolves its guild's settings) hit Redis; writes invalidate.
type Service struct {
	repository *Repository
	redis      *database.Redis
}

// NewService creates a new settings service
func NewService(repository *Repository, redis *database.Redis) *Service {
	return &Service{
		repository: repository,
		redis:      redis,
	}
}

// InitializeIndexes creates database indexes for the settings collection
func (s *Service) InitializeIndexes(ctx context.Context) error {
	return s.repository.CreateIndexes(ctx)
}

func cacheKey(guildID string) string {
	return cacheKeyPrefix + guildID
}

// GetSettings returns the settings for a guild. Guilds that never ran
// setup get the defaults; callers cannot distinguish the two and do
// not need to.
func (s *Service) GetSettings(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	var cached models.GuildSettings
	if err := s.redis.GetJSON(ctx, cacheKey(guildID), &cached); err == nil {
		return &cached, nil
	}

	settings, err := s.repository.GetByGuildID(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = models.NewDefaults(guildID)
	}

	if err := s.redis.SetJSON(ctx, cacheKey(guildID), settings, cacheTTL); err != nil {
		slog.WarnContext(ctx, "Failed to cache guild settings", "guild_id", guildID, "error", err)
	}

	return settings, nil
}

// UpdateSettings validates and persists the settings for a guild, then
// invalidates the cache entry.
func (s *Service) UpdateSettings(ctx context.Context, settings *models.GuildSettings) (*models.GuildSettings, error) {
	if settings.DefaultMaxShips < 1 || settings.DefaultMaxShips > 6 {
		return nil, fmt.Errorf("default_max_ships must be between 1 and 6, got %d", settings.DefaultMaxShips)
	}
	if settings.Timezone != "" {
		if _, err := time.LoadLocation(settings.Timezone); err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
		}
	} else {
		settings.Timezone = models.DefaultTimezone
	}
	if settings.Language == "" {
		settings.Language = models.DefaultLanguage
	}

	updated, err := s.repository.Upsert(ctx, settings)
	if err != nil {
		return nil, err
	}

	if err := s.redis.Delete(ctx, cacheKey(settings.GuildID)); err != nil {
		slog.WarnContext(ctx, "Failed to invalidate guild settings cache", "guild_id", settings.GuildID, "error", err)
	}

	slog.InfoContext(ctx, "Guild settings updated", "guild_id", settings.GuildID)
	return updated, nil
}

// GetStatus returns the health status of the settings module
func (s *Service) GetStatus(ctx context.Context) string {
	if err := s.repository.db.Client().Ping(ctx, nil); err != nil {
		return fmt.Sprintf("unhealthy: %v", err)
	}
	return "healthy"
}
