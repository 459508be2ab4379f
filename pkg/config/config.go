package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string `validate:"oneof=development production"`
	Port int    `validate:"min=1,max=65535"`

	CourseFile   string `validate:"required"`
	AuditLogFile string `validate:"required"`

	Ops      OpsConfig
	Log      LogConfig
	Protocol ProtocolConfig
	Shutdown ShutdownConfig
}

// OpsConfig gates the HTTP sidecar exposing health and metrics.
type OpsConfig struct {
	Enabled bool
	Port    int `validate:"min=0,max=65535"`
}

type LogConfig struct {
	Level  string
	Format string
}

// ProtocolConfig bounds incoming wire messages.
type ProtocolConfig struct {
	MaxMessageSize int `validate:"min=1"`
}

// ShutdownConfig tunes the session drain on interrupt.
type ShutdownConfig struct {
	Timeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.CourseFile = v.GetString("COURSE_FILE")
	cfg.AuditLogFile = v.GetString("AUDIT_LOG_FILE")

	cfg.Ops = OpsConfig{
		Enabled: v.GetBool("ENABLE_OPS"),
		Port:    v.GetInt("OPS_PORT"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Protocol = ProtocolConfig{
		MaxMessageSize: v.GetInt("MAX_MESSAGE_SIZE"),
	}

	cfg.Shutdown = ShutdownConfig{
		Timeout: parseDuration(v.GetString("SHUTDOWN_TIMEOUT"), 10*time.Second),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 9090)

	v.SetDefault("COURSE_FILE", "courses.txt")
	v.SetDefault("AUDIT_LOG_FILE", "zotreg.log")

	v.SetDefault("ENABLE_OPS", false)
	v.SetDefault("OPS_PORT", 8080)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MAX_MESSAGE_SIZE", 1024)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
