package services

import (
	"context"

	"go-armada/pkg/discord"
)

// Gateway is the Discord surface the alliance service depends on. It is
// satisfied by *discord.Client and faked in tests.
type Gateway interface {
	CreateRole(ctx context.Context, guildID, name string, color int, hoist, mentionable bool) (string, error)
	DeleteRole(ctx context.Context, guildID, roleID string) (discord.Outcome, error)
	CreateCategory(ctx context.Context, guildID, name string) (string, error)
	CreateVoiceChannel(ctx context.Context, guildID, parentID, name string, overwrites []discord.PermissionOverwrite) (string, error)
	DeleteChannel(ctx context.Context, channelID string) (discord.Outcome, error)
	RenameChannel(ctx context.Context, channelID, name string) error
	GrantRole(ctx context.Context, guildID, userID, roleID string) error
	RevokeRole(ctx context.Context, guildID, userID, roleID string) error
	CreateForumThread(ctx context.Context, forumChannelID, title, content string) (string, error)
	CreateMessage(ctx context.Context, channelID, content string) (string, error)
	EditMessage(ctx context.Context, channelID, messageID, content string) error
}
