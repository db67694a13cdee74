package services

import (
	"context"
	"fmt"
	"time"

	"go-armada/internal/settings/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository handles database operations for guild settings
type Repository struct {
	collection *mongo.Collection
	db         *mongo.Database
}

// NewRepository creates a new repository instance
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		collection: db.Collection(models.GuildSettingsCollection),
		db:         db,
	}
}

// CreateIndexes creates necessary database indexes
func (r *Repository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "guild_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetByGuildID retrieves the settings document for a guild. Returns
// nil, nil when the guild never ran setup.
func (r *Repository) GetByGuildID(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	var settings models.GuildSettings
	err := r.collection.FindOne(ctx, bson.M{"guild_id": guildID}).Decode(&settings)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}
	return &settings, nil
}

// Upsert writes the settings for a guild, creating the document on
// first setup.
func (r *Repository) Upsert(ctx context.Context, settings *models.GuildSettings) (*models.GuildSettings, error) {
	now := time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"command_channel_id":        settings.CommandChannelID,
			"ping_channel_id":           settings.PingChannelID,
			"alliance_forum_channel_id": settings.AllianceForumChannelID,
			"log_channel_id":            settings.LogChannelID,
			"organizer_role_id":         settings.OrganizerRoleID,
			"notify_role_id":            settings.NotifyRoleID,
			"default_max_ships":         settings.DefaultMaxShips,
			"allow_public_join":         settings.AllowPublicJoin,
			"timezone":                  settings.Timezone,
			"language":                  settings.Language,
			"updated_at":                now,
		},
		"$setOnInsert": bson.M{
			"guild_id":   settings.GuildID,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result models.GuildSettings
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"guild_id": settings.GuildID}, update, opts).Decode(&result)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert guild settings: %w", err)
	}
	return &result, nil
}
