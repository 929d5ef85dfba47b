package config

import (
	"errors"

	"fanverse/internal/logger"

	"github.com/spf13/viper"
)

type Config struct {
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	GRPCPort   string `mapstructure:"GRPC_PORT"`

	Log logger.Config `mapstructure:",squash"`
}

func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for _, key := range []string{
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "GRPC_PORT",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_DEVELOPMENT",
	} {
		_ = v.BindEnv(key)
	}

	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("GRPC_PORT", ":50052")
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
