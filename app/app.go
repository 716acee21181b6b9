package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"convert-service/ddd/adapter/component"
	adapterhttp "convert-service/ddd/adapter/http"
	appsvc "convert-service/ddd/application/app"
	"convert-service/ddd/infrastructure/engine"
	"convert-service/ddd/infrastructure/worker"
	"convert-service/internal/resource"
	"convert-service/pkg/config"
	"convert-service/pkg/kafka"
	"convert-service/pkg/logger"
	"convert-service/pkg/observability"
	"convert-service/pkg/registry"
	"convert-service/pkg/task"
)

// Run boots the conversion service and blocks until shutdown.
func Run() {
	fmt.Println("[STARTUP] Starting convert service...")

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	config.SetGlobalConfig(cfg)
	fmt.Printf("[STARTUP] Config file loaded: %s\n", cfgPath)

	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	logger.Infof("Convert service starting version=%s", "1.0.0")

	observability.StartProfiling("convert-service", cfg.Profiling)

	mustPreflightEngine(cfg)

	logger.Infof("Initializing resources...")
	resource.MustOpenAll()
	defer resource.CloseAll()
	logger.Infof("Resources initialized")

	if cfg.Kafka.Enabled {
		client := kafka.DefaultClient()
		for _, topic := range []string{cfg.Kafka.Topics.ConversionRequests, cfg.Kafka.Topics.ConversionOutcomes} {
			if err := client.EnsureTopic(topic, 1, 1); err != nil {
				logger.Warnf("ensure topic failed topic=%s error=%v", topic, err)
			}
		}
	}

	// Assemble the conversion pipeline and register background tasks.
	workerComponent := worker.DefaultComponent()
	convertApp := appsvc.DefaultConvertApp()
	if cfg.Worker.Enabled {
		workerComponent.RegisterBackgroundTasks()
	}
	if cfg.Kafka.Enabled {
		component.NewRequestConsumer(convertApp, cfg).Register()
	}

	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}

	// HTTP surface.
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	engine := gin.New()
	router := adapterhttp.NewRouter(adapterhttp.DefaultConvertController())
	router.SetupMiddleware(engine, cfg)
	router.SetupRoutes(engine)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("HTTP server started addr=%s api_url=http://%s/api/v1", addr, addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()

	// Optional etcd service registration.
	var serviceRegistry *registry.ServiceRegistry
	if cfg.ServiceRegistry.Enabled {
		serviceRegistry, err = registry.NewServiceRegistry(cfg.ServiceRegistry, addr)
		if err != nil {
			logger.Errorf("service registry init failed error=%v", err)
		} else if err := serviceRegistry.Register(); err != nil {
			logger.Errorf("service registration failed error=%v", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Received shutdown signal, shutting down...")

	if serviceRegistry != nil {
		_ = serviceRegistry.Deregister()
	}

	// Stop intake first, then drain workers within the grace period.
	task.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownGracePeriod)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP server forced to close error=%v", err)
	}

	logger.Infof("Convert service exited safely")
	logService.Close()
}

// mustPreflightEngine fails startup when ffmpeg or ffprobe does not respond.
func mustPreflightEngine(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := engine.NewFFmpegEngine(cfg).Preflight(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("encoder preflight failed error=%s", err.Error()))
	}
	logger.Infof("engine preflight ok ffmpeg=%s ffprobe=%s",
		cfg.Convert.FFmpeg.BinaryPath, cfg.Convert.FFmpeg.ProbeBinaryPath)
}

// resolveConfigPath picks the config file, honoring CONFIG_PATH and CONFIG_ENV.
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	switch env {
	case "prod", "production":
		return "configs/config.prod.yaml"
	case "dev", "development":
		return "configs/config.dev.yaml"
	default:
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
}
