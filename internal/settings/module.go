package settings

import (
	"context"
	"fmt"
	"log/slog"

	"go-armada/internal/settings/routes"
	"go-armada/internal/settings/services"
	"go-armada/pkg/database"
	"go-armada/pkg/module"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// Module represents the guild settings module
type Module struct {
	*module.BaseModule
	service *services.Service
	routes  *routes.Module
}

// NewModule creates a new settings module
func NewModule(mongodb *database.MongoDB, redis *database.Redis) (*Module, error) {
	if mongodb == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if redis == nil {
		return nil, fmt.Errorf("redis connection is required")
	}

	repository := services.NewRepository(mongodb.Database)
	service := services.NewService(repository, redis)
	routesModule := routes.NewModule(service)

	return &Module{
		BaseModule: module.NewBaseModule("settings", mongodb, redis),
		service:    service,
		routes:     routesModule,
	}, nil
}

// Initialize creates indexes for the settings collection
func (m *Module) Initialize(ctx context.Context) error {
	slog.InfoContext(ctx, "Initializing settings module")
	if err := m.service.InitializeIndexes(ctx); err != nil {
		return fmt.Errorf("failed to initialize settings indexes: %w", err)
	}
	return nil
}

// RegisterUnifiedRoutes registers routes on the shared Huma API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	m.routes.RegisterUnifiedRoutes(api, basePath)
	slog.Info("Settings routes registered", "base_path", basePath)
}

// Routes implements module.Module interface (legacy chi routes, unused)
func (m *Module) Routes(r chi.Router) {}

// StartBackgroundTasks implements module.Module interface
func (m *Module) StartBackgroundTasks(ctx context.Context) {
	// No background tasks for settings
}

// GetService returns the settings service for use by other modules
func (m *Module) GetService() *services.Service {
	return m.service
}
