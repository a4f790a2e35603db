package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tictracker/internal/db"
	"github.com/tictracker/internal/router"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "啟動日誌網站",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if logger != nil {
		defer logger.Sync()
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 初始化管理员账号
	if err := db.EnsureUser(db.DB, cfg.AdminUserName, cfg.AdminPassword); err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)
	r, api, err := router.SetupRouter(db.DB, router.Options{
		SessionSecret: cfg.SessionSecret,
		Location:      cfg.Location(),
		CacheVersion:  cfg.CacheVersion,
		AuthRequired:  cfg.AuthRequired,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	srv := router.NewServer(cfg.ListenAddr, r, api.Broker())
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("database", cfg.DatabasePath),
			zap.Bool("auth_required", cfg.AuthRequired),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
