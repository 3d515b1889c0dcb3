package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-options-monitor/internal/notifier/channel"
	"golang-options-monitor/internal/notifier/config"
	"golang-options-monitor/internal/notifier/delivery/consumer"
	"golang-options-monitor/internal/notifier/repository"
	"golang-options-monitor/internal/notifier/service"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/logger"
	"golang-options-monitor/pkg/postgres"
	"golang-options-monitor/pkg/redis"
	"golang-options-monitor/pkg/telegram"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the notifier service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	appLogger.Info("Starting Notifier Service", zap.String("name", cfg.App.Name))

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
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
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
		appLogger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Create the consumer group if it doesn't exist
	// MKSTREAM creates the stream if it doesn't exist
	if err := redisClient.XGroupCreateMkStream(context.Background(), common.RedisStreamAlertDispatch, common.RedisStreamGroup, "0").Err(); err != nil {
		if err.Error() != "BUSYGROUP Consumer Group name already exists" {
			appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
		}
	}

	// Initialize repositories
	alertRepo := repository.NewAlertRepository(db.DB)
	attemptRepo := repository.NewNotificationAttemptRepository(db.DB)
	accountRepo := repository.NewAccountRepository(db.DB)
	ruleRepo := repository.NewRuleRepository(db.DB)

	// Initialize channels
	channels := []channel.Channel{}
	if cfg.Telegram.BotToken != "" {
		telegramBot, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
		}
		channels = append(channels, channel.NewTelegramChannel(telegramBot))
	}
	if cfg.Gateway.BaseURL != "" {
		gateway := channel.NewGatewayClient(cfg.Gateway, appLogger)
		channels = append(channels,
			channel.NewWhatsAppChannel(gateway),
			channel.NewSMSChannel(gateway),
			channel.NewEmailChannel(gateway),
		)
	}
	if len(channels) == 0 {
		appLogger.Fatal("No notification channels configured")
	}

	// Initialize services
	dispatcher := service.NewDispatcherService(cfg, alertRepo, attemptRepo, accountRepo, ruleRepo, channels, appLogger)
	notifierSvc := service.NewNotifierService(cfg, redisClient.Client, alertRepo, dispatcher, appLogger)

	// Start consumer
	redisConsumer := consumer.NewRedisConsumer(cfg, redisClient.Client, notifierSvc, appLogger)
	redisConsumer.Start(ctx)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down notifier service...")
	cancel()
	redisConsumer.Stop()
	appLogger.Info("Notifier service exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "notifier-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-notifier.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing notifier-service CLI: %s\n", err)
		os.Exit(1)
	}
}
