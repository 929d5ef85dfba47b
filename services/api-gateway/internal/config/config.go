package config

import (
	"errors"
	"strings"
	"time"

	"fanverse/internal/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string `mapstructure:"PORT"`
	AuthSvcUrl     string `mapstructure:"AUTH_SVC_URL"`
	UserSvcUrl     string `mapstructure:"USER_SVC_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`

	LoginLimit   int           `mapstructure:"LOGIN_LIMIT"`
	LoginWindow  time.Duration `mapstructure:"LOGIN_WINDOW"`
	ResendLimit  int           `mapstructure:"RESEND_LIMIT"`
	ResendWindow time.Duration `mapstructure:"RESEND_WINDOW"`
	RPCTimeout   time.Duration `mapstructure:"RPC_TIMEOUT"`

	Log logger.Config `mapstructure:",squash"`
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for _, key := range []string{
		"PORT", "AUTH_SVC_URL", "USER_SVC_URL", "ALLOWED_ORIGINS", "REDIS_ADDR",
		"LOGIN_LIMIT", "LOGIN_WINDOW", "RESEND_LIMIT", "RESEND_WINDOW", "RPC_TIMEOUT",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_DEVELOPMENT",
	} {
		_ = v.BindEnv(key)
	}

	v.SetDefault("PORT", ":8080")
	v.SetDefault("AUTH_SVC_URL", "localhost:50051")
	v.SetDefault("USER_SVC_URL", "localhost:50052")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("LOGIN_LIMIT", 5)
	v.SetDefault("LOGIN_WINDOW", time.Minute)
	v.SetDefault("RESEND_LIMIT", 3)
	v.SetDefault("RESEND_WINDOW", 5*time.Minute)
	v.SetDefault("RPC_TIMEOUT", 5*time.Second)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
	}

	err = v.Unmarshal(&config)
	return
}
