package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go-armada/internal/alliance"
	allianceServices "go-armada/internal/alliance/services"
	"go-armada/internal/settings"
	"go-armada/pkg/app"
	"go-armada/pkg/config"
	"go-armada/pkg/discord"
	"go-armada/pkg/handlers"
	armadaMiddleware "go-armada/pkg/middleware"
	"go-armada/pkg/module"
	"go-armada/pkg/version"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "go.uber.org/automaxprocs"
)

// customLoggerMiddleware logs requests with their status and duration.
// Health check endpoints are excluded inside LogRequest.
func customLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := handlers.NewResponseWrapper(w)
		next.ServeHTTP(rw, r)
		handlers.LogRequest(r, rw.StatusCode, time.Since(start), nil)
	})
}

// corsMiddleware adds CORS headers for the dashboard frontend
func corsMiddleware(next http.Handler) http.Handler {
	frontendURL := config.GetFrontendURL()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && origin == frontendURL {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	// Display startup banner
	displayBanner()

	// Display version information
	versionInfo := version.Get()
	log.Printf("🏷️  Version: %s | Build: %s", version.GetVersionString(), versionInfo.BuildDate)
	log.Printf("🖥️  CPUs: %d | GOMAXPROCS: %d", runtime.NumCPU(), runtime.GOMAXPROCS(0))

	ctx := context.Background()

	// Initialize application with shared components
	appCtx, err := app.InitializeApp("armada")
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer appCtx.Shutdown(ctx)

	// Print memory stats (compact)
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Printf("💾 Memory: %s heap | %s total", formatBytes(m.HeapAlloc), formatBytes(m.Sys))
	printMemoryLimits()

	// Initialize Chi router
	r := chi.NewRouter()

	apiPrefix := config.GetAPIPrefix()

	// Global middleware
	r.Use(customLoggerMiddleware) // Custom logger that excludes health checks
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)
	r.Use(handlers.TracingMiddleware("armada-api"))

	// Bearer auth for the API surface; health and the OpenAPI document
	// stay open for probes and tooling
	if os.Getenv("JWT_SECRET") != "" {
		authMiddleware := armadaMiddleware.NewAuthMiddleware()
		r.Use(authMiddleware.RequireAuth("/health", apiPrefix+"/openapi", apiPrefix+"/docs"))
		log.Printf("🔒 Bearer authentication enabled")
	} else {
		log.Printf("⚠️  JWT_SECRET not set, API authentication disabled")
	}

	// Health check endpoint with version info
	r.Get("/health", enhancedHealthHandler)

	// Discord REST client shared by all modules
	discordClient := discord.NewClient(config.MustGetEnv("DISCORD_BOT_TOKEN"))

	// Initialize modules
	var modules []module.Module

	settingsModule, err := settings.NewModule(appCtx.MongoDB, appCtx.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize settings module: %v", err)
	}

	allianceModule := alliance.NewModule(
		appCtx.MongoDB,
		appCtx.Redis,
		discordClient,
		newSettingsProvider(settingsModule),
	)

	modules = append(modules, settingsModule, allianceModule)

	if err := settingsModule.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize settings module: %v", err)
	}
	if err := allianceModule.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize alliance module: %v", err)
	}

	// Create unified Huma API configuration
	humaConfig := huma.DefaultConfig("Armada API Server", version.GetVersionString())
	humaConfig.Info.Description = "Fleet coordination API for Discord gaming communities"

	// Add servers based on environment configuration or defaults
	customServers := config.GetOpenAPIServers()
	if customServers != nil {
		humaConfig.Servers = make([]*huma.Server, len(customServers))
		for i, serverURL := range customServers {
			if apiPrefix != "" && !strings.HasSuffix(serverURL, apiPrefix) {
				serverURL = serverURL + apiPrefix
			}
			humaConfig.Servers[i] = &huma.Server{URL: serverURL}
		}
	} else {
		frontendURL := config.GetFrontendURL()
		humaConfig.Servers = []*huma.Server{
			{URL: frontendURL + apiPrefix, Description: "Production server"},
			{URL: "http://localhost:3000" + apiPrefix, Description: "Local development"},
		}
	}

	// Create the unified API on main router
	var unifiedAPI huma.API
	if apiPrefix == "" {
		unifiedAPI = humachi.New(r, humaConfig)
	} else {
		// Mount the API under the prefix
		r.Route(apiPrefix, func(prefixRouter chi.Router) {
			unifiedAPI = humachi.New(prefixRouter, humaConfig)
		})
	}

	// Register all module routes on the unified API
	settingsModule.RegisterUnifiedRoutes(unifiedAPI, "/settings")
	allianceModule.RegisterUnifiedRoutes(unifiedAPI, "/alliances")

	// Start background services for all modules
	for _, mod := range modules {
		go mod.StartBackgroundTasks(ctx)
	}

	// HTTP server setup
	port := app.GetPort("8080")
	host := config.GetHost()

	srv := &http.Server{
		Addr:         host + ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Display server configuration
	serverAddr := host + ":" + port
	if host == "0.0.0.0" {
		log.Printf("🚀 Server: http://localhost:%s%s | OpenAPI: %s/openapi.json", port, apiPrefix, apiPrefix)
	} else {
		log.Printf("🚀 Server: http://%s%s | OpenAPI: %s/openapi.json", serverAddr, apiPrefix, apiPrefix)
	}

	// Start main server
	go func() {
		slog.Info("Starting armada API server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Main server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Received shutdown signal, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Main server forced to shutdown", "error", err)
	}

	// Stop background services for all modules
	for _, mod := range modules {
		mod.Stop()
	}

	// Application context will handle database and telemetry shutdown
	appCtx.Shutdown(shutdownCtx)

	slog.Info("Armada shutdown completed successfully")
}

// settingsProvider adapts the settings module to the configuration
// interface the alliance module consumes, avoiding an import cycle
// between the two modules.
type settingsProvider struct {
	module *settings.Module
}

func newSettingsProvider(m *settings.Module) *settingsProvider {
	return &settingsProvider{module: m}
}

func (p *settingsProvider) GuildSettings(ctx context.Context, guildID string) (*allianceServices.GuildConfig, error) {
	s, err := p.module.GetService().GetSettings(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve guild settings: %w", err)
	}
	return &allianceServices.GuildConfig{
		AllianceForumChannelID: s.AllianceForumChannelID,
		PingChannelID:          s.PingChannelID,
		LogChannelID:           s.LogChannelID,
		NotifyRoleID:           s.NotifyRoleID,
		DefaultMaxShips:        s.DefaultMaxShips,
		AllowPublicJoin:        s.AllowPublicJoin,
		Timezone:               s.Timezone,
	}, nil
}

func enhancedHealthHandler(w http.ResponseWriter, r *http.Request) {
	// Health checks are excluded from logging to reduce noise
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	versionInfo := version.Get()
	response := fmt.Sprintf(`{
		"status": "healthy",
		"architecture": "armada",
		"version": "%s",
		"git_commit": "%s",
		"build_date": "%s",
		"go_version": "%s",
		"platform": "%s"
	}`, versionInfo.Version, versionInfo.GitCommit, versionInfo.BuildDate, versionInfo.GoVersion, versionInfo.Platform)

	w.Write([]byte(response))
}

func displayBanner() {
	file, err := os.Open("banner.txt")
	if err != nil {
		// Fallback to inline banner if file not found
		fmt.Print("\033[38;5;33m")
		fmt.Print("GO-ARMADA API Server\n")
		fmt.Print("\033[0m")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		fmt.Print("\033[38;5;33m")
		fmt.Print("GO-ARMADA API Server\n")
		fmt.Print("\033[0m")
		return
	}

	lines := strings.Split(string(content), "\n")
	colors := []string{
		"\033[38;5;33m", // Bright blue
		"\033[38;5;39m", // Cyan
		"\033[38;5;75m", // Light blue
		"\033[38;5;51m", // Bright cyan
		"\033[38;5;33m", // Bright blue
		"\033[38;5;39m", // Cyan
	}

	fmt.Print("\n")
	for i, line := range lines {
		if line != "" && i < len(colors) {
			fmt.Print(colors[i])
			fmt.Println(line)
		}
	}
	fmt.Print("\033[0m") // Reset colors
	fmt.Print("\n")
}

// formatBytes converts bytes to human readable format
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// printMemoryLimits reads and displays container memory limits
func printMemoryLimits() {
	// Try cgroups v2 first (newer systems)
	if limit := readCgroupV2MemoryLimit(); limit > 0 {
		log.Printf("📦 Container limit: %s", formatBytes(uint64(limit)))
		return
	}

	// Try cgroups v1 (older systems)
	if limit := readCgroupV1MemoryLimit(); limit > 0 {
		log.Printf("📦 Container limit: %s", formatBytes(uint64(limit)))
		return
	}
}

// readCgroupV2MemoryLimit reads memory limit from cgroups v2
func readCgroupV2MemoryLimit() int64 {
	data, err := os.ReadFile("/sys/fs/cgroup/memory.max")
	if err != nil {
		return 0
	}

	limitStr := strings.TrimSpace(string(data))
	if limitStr == "max" {
		return 0 // No limit set
	}

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		return 0
	}

	return limit
}

// readCgroupV1MemoryLimit reads memory limit from cgroups v1
func readCgroupV1MemoryLimit() int64 {
	data, err := os.ReadFile("/sys/fs/cgroup/memory/memory.limit_in_bytes")
	if err != nil {
		return 0
	}

	limitStr := strings.TrimSpace(string(data))
	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		return 0
	}

	// cgroups v1 sometimes returns very large values when no limit is set
	// Anything larger than 1TB is probably "unlimited"
	if limit > 1024*1024*1024*1024 {
		return 0
	}

	return limit
}
