package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cluckhub/cluckhub/config"
	"github.com/cluckhub/cluckhub/internal/app"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

// osExit is a variable to allow mocking os.Exit in tests
var osExit = os.Exit

// For testing purposes - allows us to mock the signal channel
var signalNotify = signal.Notify

// runServer contains the core server logic, extracted for testability
func runServer(cfg *config.Config, appLogger logger.Logger) error {
	appInstance := app.NewApp(cfg, app.WithLogger(appLogger))

	if err := appInstance.Initialize(); err != nil {
		appLogger.WithField("error", err.Error()).Error("Initialization failed")
		return err
	}

	// Set up graceful shutdown - single channel for all signals
	shutdown := make(chan os.Signal, 1)
	signalNotify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	serverError := make(chan error, 1)
	go func() {
		serverError <- appInstance.Start()
	}()

	select {
	case err := <-serverError:
		if err != nil {
			appLogger.WithField("error", err.Error()).Error("Server error")
		}
		return err
	case sig := <-shutdown:
		appLogger.WithField("signal", sig.String()).Info("Shutdown signal received - starting graceful shutdown")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := appInstance.Shutdown(ctx); err != nil {
			appLogger.WithField("error", err.Error()).Error("Error during graceful shutdown")
			return err
		}
		appLogger.Info("Server shut down gracefully")
		return nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewLogger(cfg.LogLevel)
	appLogger.Info(fmt.Sprintf("Starting Cluck Hub API on %s:%d", cfg.Server.Host, cfg.Server.Port))

	if err := runServer(cfg, appLogger); err != nil {
		osExit(1)
	}
}
