package dto

import "time"

// AllianceInfo is the API view of an alliance.
type AllianceInfo struct {
	ID              string    `json:"id" doc:"Alliance record ID"`
	GuildID         string    `json:"guild_id"`
	OrganizerID     string    `json:"organizer_id"`
	RightHandID     string    `json:"right_hand_id,omitempty"`
	Name            string    `json:"name" example:"Armada of the Broken Horizon"`
	ScheduledAt     time.Time `json:"scheduled_at" format:"date-time" doc:"Start instant, UTC"`
	SaleAt          time.Time `json:"sale_at" format:"date-time" doc:"Sale instant, UTC"`
	Status          string    `json:"status" enum:"planned,matching,in_game,finished,cancelled"`
	MaxShips        int       `json:"max_ships"`
	ReusePlanned    bool      `json:"reuse_planned"`
	ThreadChannelID string    `json:"thread_channel_id,omitempty"`
}

// AllianceOutput wraps a single alliance response.
type AllianceOutput struct {
	Body AllianceInfo `json:"body"`
}

// AllianceListOutput wraps a list of alliances.
type AllianceListOutput struct {
	Body struct {
		Alliances []AllianceInfo `json:"alliances"`
	}
}

// SessionState is the API view of a configuration session.
type SessionState struct {
	GuildID     string `json:"guild_id"`
	UserID      string `json:"user_id"`
	Date        string `json:"date,omitempty"`
	StartTime   string `json:"start_time,omitempty"`
	SaleTime    string `json:"sale_time,omitempty"`
	RightHandID string `json:"right_hand_id,omitempty"`
	Reuse       bool   `json:"reuse"`
	ReuseSet    bool   `json:"reuse_set"`
	Ships       int    `json:"ships"`
	CurrentShip int    `json:"current_ship"`
	Ready       bool   `json:"ready"`
}

// SessionOutput wraps a session state response.
type SessionOutput struct {
	Body SessionState `json:"body"`
}

// ShipCrew is one ship with its resolved crew split.
type ShipCrew struct {
	Slot         int      `json:"slot"`
	Hull         string   `json:"hull"`
	CrewRole     string   `json:"crew_role"`
	Capacity     int      `json:"capacity"`
	Primary      []string `json:"primary" doc:"User IDs holding a seat, in join order"`
	Replacements []string `json:"replacements,omitempty" doc:"User IDs waiting past capacity, in join order"`
}

// RosterOutput wraps the roster of an alliance.
type RosterOutput struct {
	Body struct {
		Alliance AllianceInfo `json:"alliance"`
		Ships    []ShipCrew   `json:"ships"`
	}
}

// StatusOutput wraps the module health response.
type StatusOutput struct {
	Body struct {
		Module string `json:"module"`
		Status string `json:"status"`
	}
}
