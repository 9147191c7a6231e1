// Package cli wires configuration, logging, the ledger store and the optional
// broker into the selfin commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"selfin/internal/amqp"
	"selfin/internal/config"
	applog "selfin/internal/log"
	"selfin/internal/store"
)

// SetupLogger builds the application logger for level and makes it the
// slog default.
func SetupLogger(level string, out io.Writer) (*applog.Logger, error) {
	lvl, err := applog.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := applog.New(applog.Config{
		Level:     lvl,
		Component: applog.ComponentApp,
		Output:    out,
	})
	applog.SetDefault(logger)
	return logger, nil
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment, lets
// override adjust it (CLI flags) and validates the result.
func LoadAndValidateConfig(override func(*config.Config)) (*config.Config, error) {
	cfg := config.Load()
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenStore loads the ledger file. A malformed file is fatal for every command.
func OpenStore(logger *applog.Logger, path string) (*store.Store, error) {
	st, err := store.Open(path, logger)
	if err != nil {
		logger.Error("Failed to load ledger file",
			applog.FieldError, err.Error(),
			applog.FieldLedgerFile, path,
			applog.FieldErrorType, applog.ErrorTypePersistence)
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return st, nil
}

// ConnectAMQP dials the broker when AMQP_URL is set. It returns nil, nil when
// change notifications are disabled.
func ConnectAMQP(logger *applog.Logger, cfg *config.Config) (*amqp.Client, error) {
	if !cfg.AMQPEnabled() {
		logger.Debug("AMQP disabled - no AMQP_URL provided")
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("connect to AMQP: %w", err)
	}
	logger.WithComponent(applog.ComponentAMQP).Info("AMQP client initialized",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
