package services

import "context"

// GuildConfig is the slice of guild settings the alliance module consumes.
type GuildConfig struct {
	AllianceForumChannelID string
	PingChannelID          string
	LogChannelID           string
	NotifyRoleID           string
	DefaultMaxShips        int
	AllowPublicJoin        bool
	Timezone               string
}

// SettingsProvider resolves per-guild configuration. The settings module
// implements it; tests substitute a fixture.
type SettingsProvider interface {
	GuildSettings(ctx context.Context, guildID string) (*GuildConfig, error)
}
