package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GuildSettings is the per-guild configuration of the alliance service.
type GuildSettings struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GuildID                string             `bson:"guild_id" json:"guild_id"`
	CommandChannelID       string             `bson:"command_channel_id,omitempty" json:"command_channel_id,omitempty"`
	PingChannelID          string             `bson:"ping_channel_id,omitempty" json:"ping_channel_id,omitempty"`
	AllianceForumChannelID string             `bson:"alliance_forum_channel_id,omitempty" json:"alliance_forum_channel_id,omitempty"`
	LogChannelID           string             `bson:"log_channel_id,omitempty" json:"log_channel_id,omitempty"`
	OrganizerRoleID        string             `bson:"organizer_role_id,omitempty" json:"organizer_role_id,omitempty"`
	NotifyRoleID           string             `bson:"notify_role_id,omitempty" json:"notify_role_id,omitempty"`
	DefaultMaxShips        int                `bson:"default_max_ships" json:"default_max_ships"`
	AllowPublicJoin        bool               `bson:"allow_public_join" json:"allow_public_join"`
	Timezone               string             `bson:"timezone" json:"timezone"`
	Language               string             `bson:"language" json:"language"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Defaults applied when a guild has not been set up yet.
const (
	DefaultMaxShips = 6
	DefaultTimezone = "Europe/Paris"
	DefaultLanguage = "en"
)

// NewDefaults returns settings for a guild that never ran setup.
func NewDefaults(guildID string) *GuildSettings {
	return &GuildSettings{
		GuildID:         guildID,
		DefaultMaxShips: DefaultMaxShips,
		AllowPublicJoin: true,
		Timezone:        DefaultTimezone,
		Language:        DefaultLanguage,
	}
}

// Constants for collection names
const (
	GuildSettingsCollection = "guild_settings"
)
