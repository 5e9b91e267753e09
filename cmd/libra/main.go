// Command libra is the terminal front-end for the library backend: catalog
// browsing, borrowing and returning, and role-based administration, all over
// the REST API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"libraclient/internal/api"
	"libraclient/internal/catalog"
	"libraclient/internal/circulation"
	"libraclient/internal/session"
	"libraclient/internal/telemetry"
)

// app bundles the shared services every command needs.
type app struct {
	logger      *slog.Logger
	session     session.Service
	catalog     catalog.Service
	circulation circulation.Service
}

func main() {
	logger := newLogger()

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, "libra", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	if err != nil {
		logger.Error("telemetry setup failed", "error", err)
		os.Exit(1)
	}
	defer shutdown(context.Background())

	application, err := newApp(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if err := newRootCmd(application).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("LIBRA_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newApp(logger *slog.Logger) (*app, error) {
	tokenPath := os.Getenv("LIBRA_TOKEN_FILE")
	if tokenPath == "" {
		var err error
		tokenPath, err = session.DefaultTokenPath()
		if err != nil {
			return nil, err
		}
	}

	client := api.NewClient(
		getEnv("LIBRA_API_URL", "http://localhost:8080"),
		api.WithLogger(logger),
		api.WithRateLimit(10, 5),
	)

	return &app{
		logger:      logger,
		session:     session.NewService(client, session.NewTokenStore(tokenPath), logger),
		catalog:     catalog.NewService(client),
		circulation: circulation.NewService(client, logger),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
