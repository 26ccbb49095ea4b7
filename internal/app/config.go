package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v3"

	"github.com/yungbote/cohort-backend/internal/data/db"
	"github.com/yungbote/cohort-backend/internal/jobs/scheduler"
	"github.com/yungbote/cohort-backend/internal/observability"
	"github.com/yungbote/cohort-backend/internal/platform/envutil"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
	"github.com/yungbote/cohort-backend/internal/realtime/bus"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Env            string
	Port           string
	AllowedOrigins []string

	DB db.Config

	JWTSecretKey string
	TokenTTL     time.Duration

	// Redis.Addr empty selects the in-process bus.
	Redis bus.RedisConfig

	SchedulerEnabled bool
	TaskPublishCron  string

	Otel observability.OtelConfig
}

// fileConfig is the optional YAML layer read from CONFIG_FILE.
type fileConfig struct {
	Env    string `yaml:"env"`
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Database struct {
		Driver       string `yaml:"driver"`
		SQLitePath   string `yaml:"sqlite_path"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		LogLevel     string `yaml:"log_level"`
		Postgres     struct {
			Host     string `yaml:"host"`
			Port     string `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Name     string `yaml:"name"`
		} `yaml:"postgres"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		TokenTTL  string `yaml:"token_ttl"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Channel  string `yaml:"channel"`
	} `yaml:"redis"`
	Scheduler struct {
		Enabled     *bool  `yaml:"enabled"`
		PublishCron string `yaml:"publish_cron"`
	} `yaml:"scheduler"`
	Otel struct {
		Enabled     bool    `yaml:"enabled"`
		ServiceName string  `yaml:"service_name"`
		Endpoint    string  `yaml:"endpoint"`
		Insecure    bool    `yaml:"insecure"`
		SampleRatio float64 `yaml:"sample_ratio"`
	} `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		Env:  "development",
		Port: "8080",
		DB: db.Config{
			Driver:       db.DriverSQLite,
			SQLitePath:   "cohort.db",
			PostgresHost: "localhost",
			PostgresPort: "5432",
			PostgresUser: "postgres",
			PostgresName: "cohort",
			LogLevel:     "warn",
		},
		JWTSecretKey:     defaultJWTSecret,
		TokenTTL:         24 * time.Hour,
		Redis:            bus.RedisConfig{Channel: bus.DefaultChannel},
		SchedulerEnabled: true,
		TaskPublishCron:  scheduler.DefaultPublishSpec,
		Otel:             observability.OtelConfig{ServiceName: "cohort-backend", SampleRatio: 0.1},
	}
}

// LoadConfig layers defaults, then the YAML file named by CONFIG_FILE, then
// environment variables (after loading ENV_FILE or ./.env when present).
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := loadDotEnv(envutil.String("ENV_FILE", ".env", log)); err != nil {
		return Config{}, err
	}

	cfg := defaultConfig()
	if path := envutil.String("CONFIG_FILE", "", log); path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := applyYAML(&cfg, buf); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("Config file loaded", "path", path)
	}
	applyEnv(&cfg, log)

	if cfg.JWTSecretKey == defaultJWTSecret {
		if strings.EqualFold(cfg.Env, "production") {
			return Config{}, errors.New("JWT_SECRET_KEY must be set in production")
		}
		log.Warn("Using the default JWT secret; set JWT_SECRET_KEY outside development")
	}
	return cfg, nil
}

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyYAML(cfg *Config, buf []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(buf, &fc); err != nil {
		return err
	}
	setString(&cfg.Env, fc.Env)
	setString(&cfg.Port, fc.Server.Port)
	if len(fc.Server.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = fc.Server.AllowedOrigins
	}

	setString(&cfg.DB.Driver, fc.Database.Driver)
	setString(&cfg.DB.SQLitePath, fc.Database.SQLitePath)
	setString(&cfg.DB.LogLevel, fc.Database.LogLevel)
	if fc.Database.MaxOpenConns > 0 {
		cfg.DB.MaxOpenConns = fc.Database.MaxOpenConns
	}
	setString(&cfg.DB.PostgresHost, fc.Database.Postgres.Host)
	setString(&cfg.DB.PostgresPort, fc.Database.Postgres.Port)
	setString(&cfg.DB.PostgresUser, fc.Database.Postgres.User)
	setString(&cfg.DB.PostgresPassword, fc.Database.Postgres.Password)
	setString(&cfg.DB.PostgresName, fc.Database.Postgres.Name)

	setString(&cfg.JWTSecretKey, fc.Auth.JWTSecret)
	if raw := strings.TrimSpace(fc.Auth.TokenTTL); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("auth.token_ttl: %w", err)
		}
		cfg.TokenTTL = d
	}

	setString(&cfg.Redis.Addr, fc.Redis.Addr)
	setString(&cfg.Redis.Password, fc.Redis.Password)
	setString(&cfg.Redis.Channel, fc.Redis.Channel)
	if fc.Redis.DB > 0 {
		cfg.Redis.DB = fc.Redis.DB
	}

	if fc.Scheduler.Enabled != nil {
		cfg.SchedulerEnabled = *fc.Scheduler.Enabled
	}
	setString(&cfg.TaskPublishCron, fc.Scheduler.PublishCron)

	cfg.Otel.Enabled = cfg.Otel.Enabled || fc.Otel.Enabled
	setString(&cfg.Otel.ServiceName, fc.Otel.ServiceName)
	setString(&cfg.Otel.Endpoint, fc.Otel.Endpoint)
	cfg.Otel.Insecure = cfg.Otel.Insecure || fc.Otel.Insecure
	if fc.Otel.SampleRatio > 0 {
		cfg.Otel.SampleRatio = fc.Otel.SampleRatio
	}
	return nil
}

func applyEnv(cfg *Config, log *logger.Logger) {
	cfg.Env = envutil.String("APP_ENV", cfg.Env, log)
	cfg.Port = envutil.String("PORT", cfg.Port, log)
	cfg.AllowedOrigins = envutil.List("CORS_ALLOWED_ORIGINS", cfg.AllowedOrigins, log)

	cfg.DB.Driver = envutil.String("DB_DRIVER", cfg.DB.Driver, log)
	cfg.DB.SQLitePath = envutil.String("SQLITE_PATH", cfg.DB.SQLitePath, log)
	cfg.DB.MaxOpenConns = envutil.Int("DB_MAX_OPEN_CONNS", cfg.DB.MaxOpenConns, log)
	cfg.DB.LogLevel = envutil.String("DB_LOG_LEVEL", cfg.DB.LogLevel, log)
	cfg.DB.PostgresHost = envutil.String("POSTGRES_HOST", cfg.DB.PostgresHost, log)
	cfg.DB.PostgresPort = envutil.String("POSTGRES_PORT", cfg.DB.PostgresPort, log)
	cfg.DB.PostgresUser = envutil.String("POSTGRES_USER", cfg.DB.PostgresUser, log)
	cfg.DB.PostgresPassword = envutil.String("POSTGRES_PASSWORD", cfg.DB.PostgresPassword, log)
	cfg.DB.PostgresName = envutil.String("POSTGRES_NAME", cfg.DB.PostgresName, log)

	cfg.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.JWTSecretKey, log)
	cfg.TokenTTL = envutil.Duration("TOKEN_TTL", cfg.TokenTTL, log)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr, log)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password, log)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB, log)
	cfg.Redis.Channel = envutil.String("REDIS_CHANNEL", cfg.Redis.Channel, log)

	cfg.SchedulerEnabled = envutil.Bool("SCHEDULER_ENABLED", cfg.SchedulerEnabled, log)
	cfg.TaskPublishCron = envutil.String("TASK_PUBLISH_CRON", cfg.TaskPublishCron, log)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled, log)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName, log)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint, log)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure, log)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.Otel.SampleRatio, log)
	if h := observability.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")); h != nil {
		cfg.Otel.Headers = h
	}
	cfg.Otel.Environment = cfg.Env
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
