package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Redis     RedisConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Twilio    TwilioConfig
	Features  FeatureConfig
}

type AppConfig struct {
	Name       string
	Env        string
	Port       string
	BcryptCost int
}

type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// Expiry returns the lifetime of an issued access token
func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

type CORSConfig struct {
	AllowedOrigins []string
}

// RedisConfig is optional; an empty Addr means tokens are revoked in memory
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

type SchedulerConfig struct {
	Enabled         bool
	OverdueSchedule string
}

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
}

// Enabled reports whether SMS notifications can be sent
func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.PhoneNumber != ""
}

type FeatureConfig struct {
	SalesAPI bool
}

var envBindings = map[string]string{
	"app.name":                   "APP_NAME",
	"app.env":                    "APP_ENV",
	"app.port":                   "PORT",
	"app.bcrypt_cost":            "BCRYPT_COST",
	"database.driver":            "DB_DRIVER",
	"database.url":               "DB_URL",
	"database.max_open_conns":    "DB_MAX_OPEN_CONNS",
	"database.max_idle_conns":    "DB_MAX_IDLE_CONNS",
	"database.conn_max_lifetime": "DB_CONN_MAX_LIFETIME",
	"jwt.secret":                 "JWT_SECRET",
	"jwt.expiry_hours":           "JWT_EXPIRY_HOURS",
	"cors.allowed_origins":       "CORS_ALLOWED_ORIGINS",
	"redis.addr":                 "REDIS_ADDR",
	"redis.password":             "REDIS_PASSWORD",
	"redis.db":                   "REDIS_DB",
	"log.level":                  "LOG_LEVEL",
	"log.format":                 "LOG_FORMAT",
	"scheduler.enabled":          "SCHEDULER_ENABLED",
	"scheduler.overdue_schedule": "OVERDUE_SCHEDULE",
	"twilio.account_sid":         "TWILIO_ACCOUNT_SID",
	"twilio.auth_token":          "TWILIO_AUTH_TOKEN",
	"twilio.phone_number":        "TWILIO_PHONE_NUMBER",
	"features.sales_api":         "SALES_API_ENABLED",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "invoicing-backend")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.bcrypt_cost", 12)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("jwt.expiry_hours", 24)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.overdue_schedule", "0 9 * * *")

	v.SetDefault("features.sales_api", false)
}

// Load reads config.toml (optional) and environment variables.
// Environment variables win over the file, the file wins over defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:       v.GetString("app.name"),
			Env:        v.GetString("app.env"),
			Port:       v.GetString("app.port"),
			BcryptCost: v.GetInt("app.bcrypt_cost"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("database.driver")),
			URL:             v.GetString("database.url"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("jwt.secret"),
			ExpiryHours: v.GetInt("jwt.expiry_hours"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseList(v.GetStringSlice("cors.allowed_origins")),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Scheduler: SchedulerConfig{
			Enabled:         v.GetBool("scheduler.enabled"),
			OverdueSchedule: v.GetString("scheduler.overdue_schedule"),
		},
		Twilio: TwilioConfig{
			AccountSID:  v.GetString("twilio.account_sid"),
			AuthToken:   v.GetString("twilio.auth_token"),
			PhoneNumber: v.GetString("twilio.phone_number"),
		},
		Features: FeatureConfig{
			SalesAPI: v.GetBool("features.sales_api"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET not set")
	}
	if c.Database.URL == "" {
		return errors.New("DB_URL not set")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be positive, got %d", c.JWT.ExpiryHours)
	}
	return nil
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// parseList accepts both "a b" and "a,b" env values
func parseList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
