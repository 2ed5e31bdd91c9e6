package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	healthservice "github.com/wso2/shift-settings-reconciler/internal/health_check/service"
	"github.com/wso2/shift-settings-reconciler/internal/schedule/validator"
	"github.com/wso2/shift-settings-reconciler/internal/settings/service"
	"github.com/wso2/shift-settings-reconciler/internal/settings/store"
	"github.com/wso2/shift-settings-reconciler/internal/system/config"
	"github.com/wso2/shift-settings-reconciler/internal/system/constants"
	"github.com/wso2/shift-settings-reconciler/internal/system/log"
	"github.com/wso2/shift-settings-reconciler/internal/system/managers"
	"github.com/wso2/shift-settings-reconciler/internal/system/schedulers"
	"github.com/wso2/shift-settings-reconciler/internal/system/security"
	"github.com/wso2/shift-settings-reconciler/internal/system/workers"
)

const (
	configFile      = "repository/conf/deployment.yaml"
	saveTimeout     = 10 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	serviceHome := getServiceHome()

	envFiles, err := config.LoadEnvFiles(filepath.Join(serviceHome, "config"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load env files: %v\n", err)
	}

	// Load the configuration file
	cfg, err := config.LoadConfig(serviceHome, configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize runtime configurations.
	if err := config.InitializeRuntime(serviceHome, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize runtime: %v\n", err)
		os.Exit(1)
	}

	if err := log.InitWithWriter(cfg.Log.LogLevel, cfg.Log.Format, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := log.GetLogger()
	logger.Info("Using service home", log.String("path", serviceHome), log.Int("envFiles", len(envFiles)))

	ctx := context.Background()
	settingsStore, err := store.NewStore(ctx, cfg.Database, serviceHome)
	if err != nil {
		logger.Fatal("Failed to open settings store", log.Error(err))
	}
	healthservice.InitHealthCheckService(healthservice.NewHealthCheckService(settingsStore))

	persistenceWorker := workers.NewPersistenceWorker(settingsStore, saveTimeout)
	persistenceWorker.Start()

	settingsService := service.NewSettingsService(settingsStore, persistenceWorker,
		validator.NewLimitValidator(settingsStore, cfg.Reconciler.ScheduleCacheTTL()),
		service.Options{
			QuietPeriod:      cfg.Reconciler.QuietPeriod(),
			StrengthDefaults: cfg.Reconciler.KindDefaults(),
		})
	persistenceWorker.OnSaved(settingsService.MarkSaved)
	service.InitSettingsService(settingsService)

	refreshScheduler := schedulers.StartRefreshScheduler(settingsService, cfg.Reconciler.RefreshInterval())

	serverAddr := fmt.Sprintf("%s:%d", cfg.Addr.Host, cfg.Addr.Port)
	ln, err := net.Listen("tcp", serverAddr)
	if err != nil {
		logger.Fatal("Failed to start listener", log.String("address", serverAddr), log.Error(err))
	}
	server := &http.Server{
		Handler:           security.EnableCORS(cfg.Auth.CORSAllowedOrigins, initMultiplexer()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Shift settings service started", log.String("address", serverAddr))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to serve requests", log.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server did not shut down cleanly", log.Error(err))
	}
	refreshScheduler.Stop()
	// Sessions flush their pending edits into the worker before it drains.
	settingsService.CloseAll(shutdownCtx)
	if err := persistenceWorker.Stop(shutdownCtx); err != nil {
		logger.Warn("Pending settings were not saved", log.Error(err))
	}
	if err := settingsStore.Close(shutdownCtx); err != nil {
		logger.Warn("Failed to close settings store", log.Error(err))
	}
}

// initMultiplexer initializes the HTTP multiplexer and registers the services.
func initMultiplexer() *http.ServeMux {
	mux := http.NewServeMux()
	serviceManager := managers.NewServiceManager(mux)

	// Register the services.
	if err := serviceManager.RegisterServices(constants.ApiBasePath); err != nil {
		log.GetLogger().Fatal("Failed to register the services", log.Error(err))
	}
	return mux
}

// getServiceHome resolves the service home from the -serviceHome flag, then the
// SHIFT_SETTINGS_HOME variable, then the working directory.
func getServiceHome() string {
	homeFlag := flag.String("serviceHome", "", "Path to the shift settings service home directory")
	flag.Parse()

	if *homeFlag != "" {
		return *homeFlag
	}
	if home := os.Getenv(constants.ServiceHome); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get current working directory: %v\n", err)
		return "."
	}
	return dir
}
