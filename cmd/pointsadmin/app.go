package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"pointsadmin/internal/db"
	"pointsadmin/internal/handlers"
	"pointsadmin/internal/logger"
	"pointsadmin/internal/repository/postgres"
	"pointsadmin/internal/service/voucher"
	"pointsadmin/internal/service/withdrawal"
	"pointsadmin/internal/settings"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize the collaborator settings store with the protected
	// default group passed in explicitly
	groupStore, err := settings.NewStore(c.SettingsFile, c.DefaultGroup)
	if err != nil {
		return nil, fmt.Errorf("error while loading settings store. Err: %w", err)
	}

	// Initialize services
	withdrawalService := withdrawal.NewService(storage, logger)
	voucherService := voucher.NewService(storage, logger)

	mux := handlers.NewRouter(
		withdrawalService,
		voucherService,
		groupStore,
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server")
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
