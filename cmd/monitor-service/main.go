package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-options-monitor/internal/monitor/config"
	delivery "golang-options-monitor/internal/monitor/delivery/http"
	"golang-options-monitor/internal/monitor/repository"
	"golang-options-monitor/internal/monitor/service"
	"golang-options-monitor/pkg/logger"
	"golang-options-monitor/pkg/postgres"
	"golang-options-monitor/pkg/redis"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the monitor service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Monitor Service", logger.Field("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db.DB)
	assetRepo := repository.NewAssetRepository(db.DB)
	positionRepo := repository.NewOptionPositionRepository(db.DB)
	ruleRepo := repository.NewRuleRepository(db.DB)
	alertRepo := repository.NewAlertRepository(db.DB)

	quotePublisher := repository.NewRedisQuotePublisher(redisClient, appLogger)
	quoteStore := repository.NewQuoteStore(quotePublisher, appLogger, cfg.Monitor.QuoteStalenessHorizon)
	heartbeatStore := repository.NewHeartbeatStore(cfg.Bridge.HeartbeatTTL)

	// Initialize services
	enqueuer := service.NewRedisAlertEnqueuer(redisClient, cfg.Redis.StreamMaxLen)
	alertSvc := service.NewAlertService(alertRepo, enqueuer, appLogger)
	accountSvc := service.NewAccountService(accountRepo, appLogger)
	assetSvc := service.NewAssetService(assetRepo, accountRepo, appLogger)
	ruleSvc := service.NewRuleService(ruleRepo, accountRepo, appLogger)
	optionSvc := service.NewOptionService(positionRepo, assetRepo, accountRepo, alertSvc, appLogger)
	rollCalc := service.NewRollCalculator()
	rollSvc := service.NewRollService(positionRepo, ruleRepo, quoteStore, rollCalc, appLogger)
	notificationSvc := service.NewNotificationService(accountRepo, alertSvc, appLogger)
	bridgeSvc := service.NewBridgeService(quoteStore, heartbeatStore, appLogger)
	matcher := service.NewRuleMatcher(appLogger)
	monitorSvc := service.NewMonitorService(
		accountRepo, assetRepo, positionRepo, ruleRepo,
		quoteStore, matcher, rollCalc, alertSvc,
		redisClient, appLogger,
		cfg.Monitor.PollingInterval, cfg.Monitor.EvaluationCron, cfg.Monitor.ExpiryWarnDays,
	)

	// Start evaluation engine
	go monitorSvc.Start(ctx)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Initialize handlers and routes
	api := e.Group("/api")

	accountHandler := delivery.NewAccountHandler(accountSvc, appLogger)
	accountHandler.RegisterRoutes(api.Group("/accounts"))

	assetHandler := delivery.NewAssetHandler(assetSvc, appLogger)
	assetHandler.RegisterRoutes(api.Group("/assets"))

	optionHandler := delivery.NewOptionHandler(optionSvc, appLogger)
	optionHandler.RegisterRoutes(api.Group("/options"))

	ruleHandler := delivery.NewRuleHandler(ruleSvc, appLogger)
	ruleHandler.RegisterRoutes(api.Group("/rules"))

	alertHandler := delivery.NewAlertHandler(alertSvc, appLogger)
	alertHandler.RegisterRoutes(api.Group("/alerts"))

	rollHandler := delivery.NewRollHandler(rollSvc, appLogger)
	rollHandler.RegisterRoutes(api.Group("/rolls"))

	notificationHandler := delivery.NewNotificationHandler(notificationSvc, appLogger)
	notificationHandler.RegisterRoutes(api.Group("/notifications"))

	marketHandler := delivery.NewMarketHandler(quoteStore, appLogger)
	marketHandler.RegisterRoutes(api.Group("/market"))

	if cfg.Bridge.Enabled {
		bridgeHandler := delivery.NewBridgeHandler(bridgeSvc, cfg.Bridge, appLogger)
		bridgeHandler.RegisterRoutes(api.Group("/mt5"))
	}

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "monitor-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-monitor.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing monitor-service CLI: %s\n", err)
		os.Exit(1)
	}
}
