package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v9"

	"bookswap/internal/client"
	"bookswap/internal/configuration"
	"bookswap/internal/logger"
	"bookswap/internal/server"
	"bookswap/internal/store"
	"bookswap/internal/trigger"
)

func main() {
	if err := runApp(); err != nil {
		os.Exit(1)
	}
}

func runApp() error {
	appContext := context.Background()
	logOutput := io.Writer(os.Stdout)
	appLogger := logger.NewLogger(logger.LevelError, logOutput)

	defer func() {
		if r := recover(); r != nil {
			appLogger.Errorf("APPLICATION CRASHED: %+v", r)
		}
	}()

	config, err := configuration.GetConfig("config.toml")
	if err != nil {
		appLogger.Error("Error getting configuration from config.toml:", err)
		return err
	}

	if config.LogToFile {
		logFile, err := os.OpenFile("bookswap_backend.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			appLogger.Error("Error opening log file:", err)
			return err
		}
		defer func() {
			if err := logFile.Close(); err != nil {
				appLogger.Error("Error closing log file:", err)
			}
		}()
		logOutput = io.MultiWriter(logOutput, logFile)
	}
	appLogger = logger.NewLogger(config.LogLevel, logOutput)

	var backend store.Backend
	switch config.StoreBackend {
	case "memory":
		appLogger.Info("Using in-memory store backend, data will not survive a restart")
		backend = store.NewMemoryBackend()
	default:
		appLogger.Info("Connecting to DB at", config.DatabaseURI)
		dbConn, err := store.ConnectMongo(appContext, config.DatabaseURI)
		if err != nil {
			appLogger.Error("Error connecting to DB:", err)
			return err
		}
		defer func() {
			if err := dbConn.Disconnect(appContext); err != nil {
				appLogger.Error("Error disconnecting from DB:", err)
			}
		}()
		backend = store.MongoBackend{Database: dbConn.Database(store.Name)}
	}

	storeService := store.NewService(backend, appLogger)
	if config.RedisAddress != "" {
		appLogger.Info("Duplicate trigger deliveries will be suppressed via redis at", config.RedisAddress)
		storeService.Guard = store.RedisGuard{
			Redis:  redis.NewClient(&redis.Options{Addr: config.RedisAddress}),
			TTL:    24 * time.Hour,
			Logger: appLogger,
		}
	}

	triggers := trigger.Triggers{
		Store: storeService,
		FCM: client.Client{
			Client: &http.Client{Timeout: 15 * time.Second},
			FCMKey: config.FCMKey,
			Logger: appLogger,
		},
		Logger: appLogger,
	}
	triggers.Register()

	srv := server.Server{
		Store:         storeService,
		Logger:        appLogger,
		AuthSecretKey: config.AuthSecretKey,
	}

	httpSrv := &http.Server{
		Handler:      srv.Router(),
		Addr:         config.ServerAddress,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	appLogger.Info("Serving on", httpSrv.Addr)
	return httpSrv.ListenAndServe()
}
