package config

import (
	"errors"
	"time"

	"fanverse/internal/logger"

	"github.com/spf13/viper"
)

type Config struct {
	DBHost                   string        `mapstructure:"DB_HOST"`
	DBPort                   string        `mapstructure:"DB_PORT"`
	DBUser                   string        `mapstructure:"DB_USER"`
	DBPassword               string        `mapstructure:"DB_PASSWORD"`
	DBName                   string        `mapstructure:"DB_NAME"`
	RedisAddr                string        `mapstructure:"REDIS_ADDR"`
	AccessSecret             string        `mapstructure:"ACCESS_SECRET"`
	RefreshSecret            string        `mapstructure:"REFRESH_SECRET"`
	AccessTTL                time.Duration `mapstructure:"ACCESS_TTL"`
	RefreshTTL               time.Duration `mapstructure:"REFRESH_TTL"`
	BcryptCost               int           `mapstructure:"BCRYPT_COST"`
	GRPCPort                 string        `mapstructure:"GRPC_PORT"`
	UserSvcUrl               string        `mapstructure:"USER_SVC_URL"`
	APIKey                   string        `mapstructure:"API_KEY"`
	SMTPEmail                string        `mapstructure:"SMTP_EMAIL"`
	FrontendURL              string        `mapstructure:"FRONTEND_URL"`
	RequireEmailConfirmation bool          `mapstructure:"REQUIRE_EMAIL_CONFIRMATION"`
	ConfirmationTTL          time.Duration `mapstructure:"CONFIRMATION_TTL"`
	ResendCooldown           time.Duration `mapstructure:"RESEND_COOLDOWN"`

	Log logger.Config `mapstructure:",squash"`
}

var keys = []string{
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"REDIS_ADDR", "ACCESS_SECRET", "REFRESH_SECRET", "ACCESS_TTL", "REFRESH_TTL",
	"BCRYPT_COST", "GRPC_PORT", "USER_SVC_URL", "API_KEY", "SMTP_EMAIL", "FRONTEND_URL",
	"REQUIRE_EMAIL_CONFIRMATION", "CONFIRMATION_TTL", "RESEND_COOLDOWN",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_DEVELOPMENT",
}

func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// bind explicitly so Unmarshal sees env vars without a file
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("GRPC_PORT", ":50051")
	v.SetDefault("USER_SVC_URL", "localhost:50052")
	v.SetDefault("ACCESS_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TTL", 7*24*time.Hour)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("REQUIRE_EMAIL_CONFIRMATION", true)
	v.SetDefault("CONFIRMATION_TTL", 24*time.Hour)
	v.SetDefault("RESEND_COOLDOWN", time.Minute)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	if config.AccessSecret == "" || config.RefreshSecret == "" {
		err = errors.New("ACCESS_SECRET and REFRESH_SECRET are required")
	}
	return
}
