// @title Modeva Commerce API
// @version 1.0
// @description Generic CRUD backend for the Modeva storefront and admin
// @host localhost:8081
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/config"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/routes"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, err := logger.NewLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatalw("server stopped", "error", err)
	}
}

func run(cfg *config.Configuration, lg *logger.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	connectCtx, connectCancel := config.WithTimeout()
	defer connectCancel()

	st, err := store.Open(connectCtx, cfg.Database, lg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := config.WithTimeout()
		defer closeCancel()
		_ = st.Close(closeCtx)
	}()

	rdb, err := config.ConnectRedis(connectCtx, cfg.Redis, lg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	activityDB, err := config.OpenActivityDB(cfg.ActivityLog, cfg.AppEnv, lg)
	if err != nil {
		return err
	}
	defer config.CloseActivityDB(activityDB)

	router, err := routes.NewRouter(connectCtx, routes.Deps{
		Config:     cfg,
		Store:      st,
		Redis:      rdb,
		ActivityDB: activityDB,
		Log:        lg,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Infow("server listening", "addr", fmt.Sprintf("http://localhost:%s", cfg.Server.Port), "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Infow("shutting down")
	shutdownCtx, shutdownCancel := config.WithCustomTimeout(15 * time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
