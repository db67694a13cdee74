package dto

// OpenSessionInput starts a configuration session for a user in a guild.
type OpenSessionInput struct {
	Body struct {
		GuildID     string `json:"guild_id" validate:"required" doc:"Guild the alliance belongs to"`
		UserID      string `json:"user_id" validate:"required" doc:"Organizer opening the session"`
		DisplayName string `json:"display_name" doc:"Display name stored on the user record"`
	}
}

// SessionScheduleInput sets the date or one of the times of a session.
type SessionScheduleInput struct {
	Body struct {
		GuildID   string `json:"guild_id" validate:"required"`
		UserID    string `json:"user_id" validate:"required"`
		Date      string `json:"date,omitempty" doc:"Event date, DD/MM or DD/MM/YYYY" example:"18/11"`
		StartTime string `json:"start_time,omitempty" doc:"Start time of day" example:"7h30"`
		SaleTime  string `json:"sale_time,omitempty" doc:"Sale time of day" example:"18:00"`
	}
}

// SessionDeputyInput sets the right hand of a session.
type SessionDeputyInput struct {
	Body struct {
		GuildID string `json:"guild_id" validate:"required"`
		UserID  string `json:"user_id" validate:"required"`
		Mention string `json:"mention" doc:"User mention or raw ID of the deputy"`
	}
}

// SessionReuseInput sets the ship reuse flag of a session.
type SessionReuseInput struct {
	Body struct {
		GuildID string `json:"guild_id" validate:"required"`
		UserID  string `json:"user_id" validate:"required"`
		Reuse   bool   `json:"reuse"`
	}
}

// SessionFleetInput begins fleet configuration with the requested size.
type SessionFleetInput struct {
	Body struct {
		GuildID string `json:"guild_id" validate:"required"`
		UserID  string `json:"user_id" validate:"required"`
		Ships   int    `json:"ships" minimum:"1" maximum:"6" doc:"Number of ships in the fleet"`
	}
}

// SessionShipInput configures the ship under the session cursor.
type SessionShipInput struct {
	Body struct {
		GuildID  string `json:"guild_id" validate:"required"`
		UserID   string `json:"user_id" validate:"required"`
		Hull     string `json:"hull,omitempty" enum:"sloop,brig,galleon" doc:"Hull type of the ship"`
		CrewRole string `json:"crew_role,omitempty" doc:"Crew role, e.g. Boarders or Flag runners"`
	}
}

// SessionCursorInput identifies a session for cursor movement or finish.
type SessionCursorInput struct {
	Body struct {
		GuildID string `json:"guild_id" validate:"required"`
		UserID  string `json:"user_id" validate:"required"`
	}
}

// LifecycleInput addresses an alliance through its thread channel for a
// lifecycle command issued by a user.
type LifecycleInput struct {
	Body struct {
		GuildID         string `json:"guild_id" validate:"required"`
		ThreadChannelID string `json:"thread_channel_id" validate:"required"`
		UserID          string `json:"user_id" validate:"required"`
	}
}

// EditScheduleInput changes the date and times of an alliance. Empty fields
// keep their current value.
type EditScheduleInput struct {
	Body struct {
		GuildID         string `json:"guild_id" validate:"required"`
		ThreadChannelID string `json:"thread_channel_id" validate:"required"`
		UserID          string `json:"user_id" validate:"required"`
		Date            string `json:"date,omitempty" example:"18/11"`
		StartTime       string `json:"start_time,omitempty" example:"07:30"`
		SaleTime        string `json:"sale_time,omitempty" example:"18:00"`
	}
}

// EditShipInput changes the hull or crew role of one ship slot.
type EditShipInput struct {
	Slot int `path:"slot" minimum:"1" maximum:"6" doc:"Ship slot to edit"`
	Body struct {
		GuildID         string `json:"guild_id" validate:"required"`
		ThreadChannelID string `json:"thread_channel_id" validate:"required"`
		UserID          string `json:"user_id" validate:"required"`
		Hull            string `json:"hull,omitempty" enum:"sloop,brig,galleon"`
		CrewRole        string `json:"crew_role,omitempty"`
	}
}

// EditReuseInput changes the ship reuse flag of an alliance.
type EditReuseInput struct {
	Body struct {
		GuildID         string `json:"guild_id" validate:"required"`
		ThreadChannelID string `json:"thread_channel_id" validate:"required"`
		UserID          string `json:"user_id" validate:"required"`
		Reuse           bool   `json:"reuse"`
	}
}

// JoinInput places a user on a ship of an alliance.
type JoinInput struct {
	Body struct {
		GuildID         string `json:"guild_id" validate:"required"`
		ThreadChannelID string `json:"thread_channel_id" validate:"required"`
		UserID          string `json:"user_id" validate:"required"`
		DisplayName     string `json:"display_name"`
		Slot            int    `json:"slot" minimum:"1" maximum:"6" doc:"Ship slot to board"`
	}
}

// GetRosterInput fetches the roster of the alliance bound to a thread.
type GetRosterInput struct {
	GuildID         string `query:"guild_id" validate:"required" doc:"Guild ID"`
	ThreadChannelID string `query:"thread_channel_id" validate:"required" doc:"Thread channel the alliance is bound to"`
}

// ListAlliancesInput lists alliances of a guild, optionally by status.
type ListAlliancesInput struct {
	GuildID string `query:"guild_id" validate:"required" doc:"Guild ID"`
	Status  string `query:"status,omitempty" doc:"Filter by lifecycle status, comma-separated" example:"planned,matching"`
}
