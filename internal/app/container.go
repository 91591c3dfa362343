package app

import (
	"context"
	"fmt"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/you/emrsvc/domain"
	"github.com/you/emrsvc/internal/config"
	"github.com/you/emrsvc/internal/infrastructure/audit"
	"github.com/you/emrsvc/internal/infrastructure/auth"
	"github.com/you/emrsvc/internal/infrastructure/database"
	"github.com/you/emrsvc/internal/infrastructure/gemini"
	"github.com/you/emrsvc/internal/infrastructure/identity"
	"github.com/you/emrsvc/internal/infrastructure/notifications"
	"github.com/you/emrsvc/internal/infrastructure/repositories"
	"github.com/you/emrsvc/internal/infrastructure/storage"
	"github.com/you/emrsvc/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Enforcer    *casbin.Enforcer
	Files       domain.FileStore

	// Repositories
	UserRepo             domain.UserRepository
	FederatedUserRepo    domain.FederatedUserRepository
	SessionRepo          domain.SessionRepository
	FederatedSessionRepo domain.SessionRepository

	// Services
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	AuditLog        domain.AuditLogger
	AuthSvc         domain.AuthService
	UserSvc         domain.UserService
	FederatedSvc    domain.FederatedAuthService
	InsightSvc      domain.InsightService
	PolicySvc       domain.PolicyService
}

// NewContainer creates and initializes all dependencies
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	if err := c.initDatabase(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initPolicies(); err != nil {
		c.Close()
		return nil, err
	}

	c.initRepositories()

	if err := c.initServices(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DBDriver, c.Config.DSN)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	c.DB = db

	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	return nil
}

func (c *Container) initRedis(ctx context.Context) error {
	rdb := database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
	c.RedisClient = rdb.Client

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

func (c *Container) initPolicies() error {
	cas, err := auth.NewCasbinService(c.DB, c.Config.CasbinModelPath)
	if err != nil {
		return err
	}
	c.Enforcer = cas.E
	c.PolicySvc = services.NewPolicyService(cas.E)

	seeded, err := c.PolicySvc.SeedDefaults()
	if err != nil {
		return fmt.Errorf("casbin: seed policies: %w", err)
	}
	if seeded {
		c.Logger.Info("casbin: seeded default policies")
	}
	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.FederatedUserRepo = repositories.NewFederatedUserRepository(c.DB)
	c.SessionRepo = repositories.NewSessionRepository(c.RedisClient, repositories.SessionPrefix)
	c.FederatedSessionRepo = repositories.NewSessionRepository(c.RedisClient, repositories.FederatedSessionPrefix)
}

func (c *Container) initServices(ctx context.Context) error {
	cfg := c.Config

	c.PasswordSvc = auth.NewPasswordService(0)
	c.TokenSvc = auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL)
	c.NotificationSvc = notifications.NewTwilioService(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, c.Logger)
	c.AuditLog = audit.NewZapAuditLogger(c.Logger)

	files, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		return fmt.Errorf("uploads: %w", err)
	}
	c.Files = files

	c.AuthSvc = services.NewAuthService(
		c.UserRepo,
		c.SessionRepo,
		c.PasswordSvc,
		c.TokenSvc,
		c.NotificationSvc,
		c.RedisClient,
		c.AuditLog,
		services.AuthConfig{
			SessionTTL: cfg.AccessTTL,
			ResetTTL:   cfg.PasswordResetTTL,
		},
	)
	c.UserSvc = services.NewUserService(c.UserRepo, c.SessionRepo, c.AuditLog)

	// A nil interface, not a typed nil, marks Google sign-in as disabled
	var google domain.IdentityProvider
	if cfg.GoogleEnabled() {
		google = identity.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	} else {
		c.Logger.Warn("google sign-in disabled: client credentials not configured")
	}

	c.FederatedSvc = services.NewFederatedAuthService(
		c.FederatedUserRepo,
		c.FederatedSessionRepo,
		google,
		c.NotificationSvc,
		c.PasswordSvc,
		c.RedisClient,
		c.AuditLog,
		services.FederatedConfig{
			SessionTTL:      cfg.AccessTTL,
			PhoneTTL:        cfg.PhoneTTL,
			CodeLength:      cfg.PhoneCodeLength,
			MaxAttempts:     cfg.PhoneMaxAttempts,
			ResendWindow:    cfg.PhoneResendWindow,
			StateTTL:        cfg.GoogleStateTTL,
			SuccessRedirect: cfg.GoogleSuccessRedirect,
		},
	)

	generator, err := gemini.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout)
	if err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		c.Logger.Warn("gemini api key not configured: insights will use fallbacks")
	}
	c.InsightSvc = services.NewInsightService(generator, c.Logger)

	return nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
