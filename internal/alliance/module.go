package alliance

import (
	"context"
	"log/slog"

	"go-armada/internal/alliance/routes"
	"go-armada/internal/alliance/services"
	"go-armada/pkg/database"
	"go-armada/pkg/module"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"
)

// Module represents the alliance module
type Module struct {
	*module.BaseModule
	service *services.Service
	routes  *routes.Module
	cron    *cron.Cron
}

// NewModule creates a new alliance module instance
func NewModule(mongodb *database.MongoDB, redis *database.Redis, gateway services.Gateway, settings services.SettingsProvider) *Module {
	repository := services.NewRepository(mongodb)
	sessions := services.NewSessionStore()
	renderer := services.NewRosterRenderer(repository, gateway, settings)
	worker := services.NewTeardownWorker(repository, gateway)
	service := services.NewService(repository, gateway, sessions, settings, renderer, worker)

	routesModule := routes.NewModule(service)

	m := &Module{
		BaseModule: module.NewBaseModule("alliance", mongodb, redis),
		service:    service,
		routes:     routesModule,
		cron:       cron.New(),
	}

	slog.Info("Alliance module initialized", "name", m.Name())

	return m
}

// Initialize creates the database indexes the module relies on
func (m *Module) Initialize(ctx context.Context) error {
	return m.service.InitializeIndexes(ctx)
}

// RegisterUnifiedRoutes registers all alliance routes with the provided Huma API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	slog.Info("Registering alliance unified routes", "basePath", basePath)
	m.routes.RegisterUnifiedRoutes(api, basePath)
}

// StartBackgroundTasks runs the teardown retry worker and the janitor sweep
func (m *Module) StartBackgroundTasks(ctx context.Context) {
	slog.Info("Starting background tasks", "module", m.Name())

	go m.service.Worker().Run(ctx, m.StopChannel())

	if _, err := m.cron.AddFunc("@hourly", func() {
		m.service.SweepStale(ctx)
	}); err != nil {
		slog.Error("Failed to schedule janitor sweep", "error", err)
	} else {
		m.cron.Start()
	}

	select {
	case <-ctx.Done():
		slog.Info("Background tasks context cancelled", "module", m.Name())
	case <-m.StopChannel():
		slog.Info("Background tasks stopped", "module", m.Name())
	}

	cronCtx := m.cron.Stop()
	<-cronCtx.Done()
}

// Routes is kept for compatibility; the module uses only Huma v2 routes
func (m *Module) Routes(r chi.Router) {}

// GetService returns the alliance service for testing or external access
func (m *Module) GetService() *services.Service {
	return m.service
}
