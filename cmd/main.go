package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"declaration-service/internal/ai/gemini"
	"declaration-service/internal/config"
	"declaration-service/internal/database/minio"
	"declaration-service/internal/database/postgres"
	"declaration-service/internal/database/redis"
	"declaration-service/internal/event"
	"declaration-service/internal/geocheck"
	"declaration-service/internal/handlers"
	"declaration-service/internal/repository"
	"declaration-service/internal/services"
	"declaration-service/internal/worker"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"
)

func setupLogging(logDir string) (*os.File, error) {
	fmt.Println("Log directory:", logDir)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewTextHandler(io.MultiWriter(file, os.Stdout), &slog.HandlerOptions{AddSource: true})
	slog.SetDefault(slog.New(handler))
	return file, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "declaration-service",
		Short: "EUDR outbound declaration service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API and geo validation workers",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "schema [path]",
			Short: "Apply schema.sql to the configured database",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return applySchema(args)
			},
		},
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func applySchema(args []string) error {
	cfg := config.New()
	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	path := ""
	if len(args) == 1 {
		path = args[0]
	} else if path, err = postgres.FindSchema(); err != nil {
		return err
	}

	count, err := postgres.ExecuteSchema(db, path)
	if err != nil {
		return err
	}
	fmt.Printf("applied %d statements from %s\n", count, path)
	return nil
}

func serve(parent context.Context) error {
	cfg := config.New()

	logFile, err := setupLogging(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// infrastructure
	connectCtx, cancelConnect := context.WithTimeout(ctx, 2*time.Minute)
	db, err := postgres.ConnectWithRetry(connectCtx, cfg.PostgresCfg, 5*time.Second)
	cancelConnect()
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := redis.NewRedisClient(cfg.RedisCfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	minioClient, err := minio.NewMinioClient(cfg.MinioCfg)
	if err != nil {
		return err
	}

	var sink services.NotificationSink = services.LogNotificationSink{}
	var publisher *event.NotificationPublisher
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		slog.Warn("rabbitmq unavailable, notifications will only be logged", "error", err)
	} else {
		defer rabbitConn.Close()
		publisher = event.NewNotificationPublisher(rabbitConn)
		sink = publisher
	}

	var satellite geocheck.SatelliteChecker
	if cfg.WizardCfg.GeoMode == geocheck.ModeAI {
		clients := gemini.NewGenAIClients(ctx, cfg.GeminiAPICfg.APIKeys, cfg.GeminiAPICfg.FlashName, cfg.GeminiAPICfg.ProName)
		if len(clients) == 0 {
			return fmt.Errorf("geo validation mode %q requires at least one working GEMINI_KEYS entry", geocheck.ModeAI)
		}
		selector := gemini.NewGeminiClientSelector(clients)
		defer selector.CloseAll(context.Background())
		satellite = geocheck.NewSatelliteAIValidator(selector)
	}

	validator, err := geocheck.NewValidator(cfg.WizardCfg.GeoMode, nil, satellite)
	if err != nil {
		return err
	}
	slog.Info("geo validation configured", "mode", cfg.WizardCfg.GeoMode)

	var managerWg sync.WaitGroup
	pool := worker.NewWorkingPool(cfg.WizardCfg.GeoWorkers, cfg.WizardCfg.GeoQueueSize)
	managerWg.Add(1)
	go pool.Start(ctx, &managerWg)

	// repositories
	declarationRepository := repository.NewDeclarationRepository(db, redisClient.GetClient())
	customerRepository := repository.NewCustomerRepository(db)
	sessionRepository := repository.NewWizardSessionRepository(redisClient.GetClient(), cfg.WizardCfg.SessionTTL)

	// services
	declarationService := services.NewDeclarationService(declarationRepository, cfg.WizardCfg.ListCacheTTL)
	customerService := services.NewCustomerService(customerRepository)
	documentService := services.NewDocumentService(minioClient, cfg.WizardCfg.MaxUploadSizeByte)
	wizardService := services.NewWizardService(
		sessionRepository,
		documentService,
		validator,
		pool,
		declarationService,
		customerService,
		sink,
		cfg.WizardCfg,
	)

	// handlers
	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.WizardCfg.MaxUploadSizeByte) + 1<<20,
	})
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		health := fiber.Map{"status": "healthy", "rabbitmq": "disabled"}
		if publisher != nil {
			health["rabbitmq"] = "connected"
			if rabbitConn.IsClosed() {
				health["rabbitmq"] = "closed"
			}
			health["notifications"] = publisher.GetMetrics()
		}
		return c.Status(fiber.StatusOK).JSON(health)
	})

	handlers.NewWizardHandler(wizardService, cfg.WizardCfg.MaxUploadSizeByte).RegisterRoutes(app)
	handlers.NewDeclarationHandler(declarationService).RegisterRoutes(app)
	handlers.NewCustomerHandler(customerService).RegisterRoutes(app)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting declaration-service", "port", cfg.Port)
		serverErr <- app.Listen(fmt.Sprintf("0.0.0.0:%s", cfg.Port))
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-serverErr:
		if err != nil {
			slog.Error("server stopped", "error", err)
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}

	managerWg.Wait()
	slog.Info("declaration-service stopped")
	return nil
}
