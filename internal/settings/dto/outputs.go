package dto

import "go-armada/internal/settings/models"

// SettingsOutput wraps a guild settings document
type SettingsOutput struct {
	Body models.GuildSettings `json:"body"`
}

// StatusResponse represents the settings module status
type StatusResponse struct {
	Module  string `json:"module" example:"settings"`
	Status  string `json:"status" example:"healthy"`
	Message string `json:"message,omitempty"`
}

// StatusOutput wraps the module status response
type StatusOutput struct {
	Body StatusResponse `json:"body"`
}
