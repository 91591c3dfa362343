package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/emrsvc/internal/config"
	httpx "github.com/you/emrsvc/internal/http"
	"github.com/you/emrsvc/internal/http/handlers"
	"github.com/you/emrsvc/internal/http/middleware"
)

const shutdownTimeout = 10 * time.Second

// Router builds the HTTP handler tree from an initialized container
func (c *Container) Router() *gin.Engine {
	cfg := c.Config
	cookies := middleware.CookieConfig{
		Name:          cfg.CookieName,
		FederatedName: cfg.FederatedCookieName,
		Domain:        cfg.CookieDomain,
		Secure:        cfg.CookieSecure,
	}

	return httpx.BuildRouter(httpx.RouterDeps{
		Auth:      handlers.NewAuthHandlers(c.AuthSvc, cookies, c.Logger),
		Users:     handlers.NewUserHandlers(c.UserSvc, c.Files, c.Logger),
		Files:     handlers.NewFileHandlers(c.Files, c.Logger),
		Federated: handlers.NewFederatedHandlers(c.FederatedSvc, cookies, cfg.GoogleFailureRedirect, c.Logger),
		Insights:  handlers.NewInsightHandlers(c.InsightSvc),
		Policies:  handlers.NewPolicyHandlers(c.PolicySvc),
		AuthMW:    middleware.NewAuthMW(c.AuthSvc, c.FederatedSvc, cookies),
		Casbin:    middleware.NewCasbinMW(c.PolicySvc),

		Logger:         c.Logger,
		Version:        cfg.Version,
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      cfg.StaticDir,
		MaxUploadBytes: cfg.UploadMaxBytes,
	})
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	gin.SetMode(cfg.GinMode)

	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := c.AuthSvc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Warn("admin seed failed", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Migrate creates the schema and seeds the admin account and default policies
func Migrate(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logger.Info("admin credentials not configured, skipping admin seed")
		return nil
	}
	created, err := c.AuthSvc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("migration complete", zap.Bool("admin_seeded", created))
	return nil
}
