package dto

// GetSettingsInput is the input for retrieving guild settings
type GetSettingsInput struct {
	GuildID string `path:"guild_id" doc:"Discord guild ID" example:"905865521745440788"`
}

// UpdateSettingsInput is the input for updating guild settings
type UpdateSettingsInput struct {
	GuildID string `path:"guild_id" doc:"Discord guild ID" example:"905865521745440788"`
	Body    struct {
		CommandChannelID       string `json:"command_channel_id,omitempty" doc:"Channel restricted to bot commands"`
		PingChannelID          string `json:"ping_channel_id,omitempty" doc:"Channel for alliance announcements"`
		AllianceForumChannelID string `json:"alliance_forum_channel_id,omitempty" doc:"Forum channel hosting alliance threads"`
		LogChannelID           string `json:"log_channel_id,omitempty" doc:"Channel for audit log messages"`
		OrganizerRoleID        string `json:"organizer_role_id,omitempty" doc:"Role allowed to open alliances"`
		NotifyRoleID           string `json:"notify_role_id,omitempty" doc:"Role pinged when an alliance is published"`
		DefaultMaxShips        int    `json:"default_max_ships" minimum:"1" maximum:"6" doc:"Upper bound on fleet size" example:"6"`
		AllowPublicJoin        bool   `json:"allow_public_join" doc:"Whether non-organizers may join crews"`
		Timezone               string `json:"timezone,omitempty" validate:"omitempty,timezone" doc:"IANA timezone used for schedule display" example:"Europe/Paris"`
		Language               string `json:"language,omitempty" doc:"Preferred message language" example:"en"`
	}
}
