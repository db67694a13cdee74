package routes

import (
	"context"
	"strings"

	"go-armada/internal/settings/dto"
	"go-armada/internal/settings/models"
	"go-armada/internal/settings/services"
	"go-armada/pkg/handlers"

	"github.com/danielgtaylor/huma/v2"
)

// Module represents the settings routes module
type Module struct {
	service *services.Service
}

// NewModule creates a new routes module
func NewModule(service *services.Service) *Module {
	return &Module{service: service}
}

// RegisterUnifiedRoutes registers all settings routes with the Huma API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID: "settings-get-status",
		Method:      "GET",
		Path:        basePath + "/status",
		Summary:     "Get settings module status",
		Description: "Returns the health status of the settings module",
		Tags:        []string{"Module Status"},
	}, m.getStatusHandler)

	huma.Register(api, huma.Operation{
		OperationID: "settings-get",
		Method:      "GET",
		Path:        basePath + "/{guild_id}",
		Summary:     "Get guild settings",
		Description: "Returns the settings for a guild, with defaults for guilds that never ran setup",
		Tags:        []string{"Settings"},
	}, m.getSettingsHandler)

	huma.Register(api, huma.Operation{
		OperationID: "settings-update",
		Method:      "PUT",
		Path:        basePath + "/{guild_id}",
		Summary:     "Update guild settings",
		Description: "Creates or replaces the settings for a guild",
		Tags:        []string{"Settings"},
	}, m.updateSettingsHandler)
}

func (m *Module) getStatusHandler(ctx context.Context, input *struct{}) (*dto.StatusOutput, error) {
	return &dto.StatusOutput{
		Body: dto.StatusResponse{
			Module: "settings",
			Status: m.service.GetStatus(ctx),
		},
	}, nil
}

func (m *Module) getSettingsHandler(ctx context.Context, input *dto.GetSettingsInput) (*dto.SettingsOutput, error) {
	settings, err := m.service.GetSettings(ctx, input.GuildID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get guild settings", err)
	}
	return &dto.SettingsOutput{Body: *settings}, nil
}

func (m *Module) updateSettingsHandler(ctx context.Context, input *dto.UpdateSettingsInput) (*dto.SettingsOutput, error) {
	if err := handlers.ValidateStruct(input.Body); err != nil {
		return nil, huma.Error422UnprocessableEntity(strings.Join(handlers.ValidationMessages(err), "; "))
	}

	settings := &models.GuildSettings{
		GuildID:                input.GuildID,
		CommandChannelID:       input.Body.CommandChannelID,
		PingChannelID:          input.Body.PingChannelID,
		AllianceForumChannelID: input.Body.AllianceForumChannelID,
		LogChannelID:           input.Body.LogChannelID,
		OrganizerRoleID:        input.Body.OrganizerRoleID,
		NotifyRoleID:           input.Body.NotifyRoleID,
		DefaultMaxShips:        input.Body.DefaultMaxShips,
		AllowPublicJoin:        input.Body.AllowPublicJoin,
		Timezone:               input.Body.Timezone,
		Language:               input.Body.Language,
	}

	updated, err := m.service.UpdateSettings(ctx, settings)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("Invalid guild settings", err)
	}
	return &dto.SettingsOutput{Body: *updated}, nil
}
