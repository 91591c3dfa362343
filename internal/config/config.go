package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given
const DefaultPath = "config/config.yml"

type AppConfig struct {
	Port           int      `yaml:"port" env:"EMRSVC_PORT"`
	GinMode        string   `yaml:"gin_mode" env:"GIN_MODE"`
	Version        string   `yaml:"version"`
	StaticDir      string   `yaml:"static_dir" env:"EMRSVC_STATIC_DIR"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"EMRSVC_ALLOWED_ORIGINS" envSeparator:","`
	LogLevel       string   `yaml:"log_level" env:"EMRSVC_LOG_LEVEL"`
	LogFormat      string   `yaml:"log_format" env:"EMRSVC_LOG_FORMAT"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DATABASE_DRIVER"`
	DSN    string `yaml:"dsn" env:"DATABASE_URL"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret" env:"JWT_SECRET_KEY"`
	Issuer    string `yaml:"issuer" env:"JWT_ISSUER"`
	AccessTTL string `yaml:"access_ttl" env:"JWT_ACCESS_TTL"`
}

type CookieConfig struct {
	Name          string `yaml:"name"`
	FederatedName string `yaml:"federated_name"`
	Domain        string `yaml:"domain" env:"COOKIE_DOMAIN"`
	Secure        bool   `yaml:"secure" env:"COOKIE_SECURE"`
}

type PhoneConfig struct {
	TTL          string `yaml:"ttl"`
	Length       int    `yaml:"length"`
	MaxAttempts  int    `yaml:"max_attempts"`
	ResendWindow string `yaml:"resend_window"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid" env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `yaml:"auth_token" env:"TWILIO_AUTH_TOKEN"`
	FromNumber string `yaml:"from_number" env:"TWILIO_FROM_NUMBER"`
}

type GoogleConfig struct {
	ClientID        string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret    string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL     string `yaml:"redirect_url" env:"GOOGLE_REDIRECT_URL"`
	StateTTL        string `yaml:"state_ttl"`
	SuccessRedirect string `yaml:"success_redirect"`
	FailureRedirect string `yaml:"failure_redirect"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model   string `yaml:"model" env:"GEMINI_MODEL"`
	Timeout string `yaml:"timeout"`
}

type UploadConfig struct {
	Dir      string `yaml:"dir" env:"UPLOAD_FOLDER"`
	MaxBytes int64  `yaml:"max_bytes"`
}

type PasswordResetConfig struct {
	TTL string `yaml:"ttl"`
}

type AdminConfig struct {
	Email    string `yaml:"email" env:"ADMIN_EMAIL"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path" env:"CASBIN_MODEL_PATH"`
}

type ConfigFile struct {
	App           AppConfig           `yaml:"app"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	JWT           JWTConfig           `yaml:"jwt"`
	Cookie        CookieConfig        `yaml:"cookie"`
	Phone         PhoneConfig         `yaml:"phone"`
	Twilio        TwilioConfig        `yaml:"twilio"`
	Google        GoogleConfig        `yaml:"google"`
	Gemini        GeminiConfig        `yaml:"gemini"`
	Uploads       UploadConfig        `yaml:"uploads"`
	PasswordReset PasswordResetConfig `yaml:"password_reset"`
	Admin         AdminConfig         `yaml:"admin"`
	Casbin        CasbinConfig        `yaml:"casbin"`
}

// Config is the resolved, typed configuration used by the application
type Config struct {
	Port           string
	GinMode        string
	Version        string
	StaticDir      string
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string

	DBDriver string
	DSN      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTIssuer string
	AccessTTL time.Duration

	CookieName          string
	FederatedCookieName string
	CookieDomain        string
	CookieSecure        bool

	PhoneTTL          time.Duration
	PhoneCodeLength   int
	PhoneMaxAttempts  int
	PhoneResendWindow time.Duration

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string

	GoogleClientID        string
	GoogleClientSecret    string
	GoogleRedirectURL     string
	GoogleStateTTL        time.Duration
	GoogleSuccessRedirect string
	GoogleFailureRedirect string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration

	UploadDir      string
	UploadMaxBytes int64

	PasswordResetTTL time.Duration

	AdminEmail    string
	AdminPassword string

	CasbinModelPath string
}

// Defaults returns the configuration used when a key is absent from the file
func Defaults() ConfigFile {
	return ConfigFile{
		App: AppConfig{
			Port:           5000,
			GinMode:        "release",
			Version:        "1.0.0",
			AllowedOrigins: []string{"http://localhost:3000"},
			LogLevel:       "info",
			LogFormat:      "json",
		},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "app.db"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		JWT:      JWTConfig{Issuer: "emrsvc", AccessTTL: "168h"},
		Cookie:   CookieConfig{Name: "token", FederatedName: "fb_session"},
		Phone: PhoneConfig{
			TTL:          "5m",
			Length:       6,
			MaxAttempts:  3,
			ResendWindow: "60s",
		},
		Google: GoogleConfig{
			StateTTL:        "10m",
			SuccessRedirect: "/firebase-dashboard",
			FailureRedirect: "/firebase-auth",
		},
		Gemini:        GeminiConfig{Model: "gemini-1.5-pro", Timeout: "60s"},
		Uploads:       UploadConfig{Dir: "uploads", MaxBytes: 16 << 20},
		PasswordReset: PasswordResetConfig{TTL: "1h"},
		Casbin:        CasbinConfig{ModelPath: "config/rbac_model.conf"},
	}
}

// Load reads the YAML file at path (a missing file means defaults), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	file := Defaults()
	if err := loadConfigFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if err := env.Parse(&file); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return resolve(&file)
}

func resolve(f *ConfigFile) (*Config, error) {
	var errs []error
	dur := func(name, raw string) time.Duration {
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", name, err))
		}
		return d
	}

	cfg := &Config{
		Port:           fmt.Sprintf("%d", f.App.Port),
		GinMode:        f.App.GinMode,
		Version:        f.App.Version,
		StaticDir:      f.App.StaticDir,
		AllowedOrigins: trimList(f.App.AllowedOrigins),
		LogLevel:       f.App.LogLevel,
		LogFormat:      f.App.LogFormat,

		DBDriver: strings.ToLower(f.Database.Driver),
		DSN:      f.Database.DSN,

		RedisAddr:     f.Redis.Addr,
		RedisPassword: f.Redis.Password,
		RedisDB:       f.Redis.DB,

		JWTSecret: f.JWT.Secret,
		JWTIssuer: f.JWT.Issuer,
		AccessTTL: dur("JWT access TTL", f.JWT.AccessTTL),

		CookieName:          f.Cookie.Name,
		FederatedCookieName: f.Cookie.FederatedName,
		CookieDomain:        f.Cookie.Domain,
		CookieSecure:        f.Cookie.Secure,

		PhoneTTL:          dur("phone code TTL", f.Phone.TTL),
		PhoneCodeLength:   f.Phone.Length,
		PhoneMaxAttempts:  f.Phone.MaxAttempts,
		PhoneResendWindow: dur("phone resend window", f.Phone.ResendWindow),

		TwilioSID:   f.Twilio.AccountSID,
		TwilioToken: f.Twilio.AuthToken,
		TwilioFrom:  f.Twilio.FromNumber,

		GoogleClientID:        f.Google.ClientID,
		GoogleClientSecret:    f.Google.ClientSecret,
		GoogleRedirectURL:     f.Google.RedirectURL,
		GoogleStateTTL:        dur("google state TTL", f.Google.StateTTL),
		GoogleSuccessRedirect: f.Google.SuccessRedirect,
		GoogleFailureRedirect: f.Google.FailureRedirect,

		GeminiAPIKey:  f.Gemini.APIKey,
		GeminiModel:   f.Gemini.Model,
		GeminiTimeout: dur("gemini timeout", f.Gemini.Timeout),

		UploadDir:      f.Uploads.Dir,
		UploadMaxBytes: f.Uploads.MaxBytes,

		PasswordResetTTL: dur("password reset TTL", f.PasswordReset.TTL),

		AdminEmail:    strings.ToLower(strings.TrimSpace(f.Admin.Email)),
		AdminPassword: f.Admin.Password,

		CasbinModelPath: f.Casbin.ModelPath,
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that parsing alone cannot catch
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt.secret must be set"))
	}
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.DBDriver))
	}
	if c.PhoneCodeLength != 6 {
		errs = append(errs, fmt.Errorf("phone.length must be 6, got %d", c.PhoneCodeLength))
	}
	if c.PhoneMaxAttempts < 1 {
		errs = append(errs, errors.New("phone.max_attempts must be positive"))
	}
	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("jwt.access_ttl must be positive"))
	}
	if c.UploadMaxBytes <= 0 {
		errs = append(errs, errors.New("uploads.max_bytes must be positive"))
	}
	return errors.Join(errs...)
}

// GoogleEnabled reports whether Google sign-in credentials are configured
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func loadConfigFile(path string, into *ConfigFile) error {
	bytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not read config file at %s: %w", path, err)
	}
	if err := yaml.Unmarshal(bytes, into); err != nil {
		return fmt.Errorf("could not parse config yaml: %w", err)
	}
	return nil
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
