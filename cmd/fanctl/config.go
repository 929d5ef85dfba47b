package main

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"fanverse/internal/logger"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	APIURL         string        `mapstructure:"API_URL"`
	TokenFile      string        `mapstructure:"TOKEN_FILE"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	Log logger.Config `mapstructure:",squash"`
}

// LoadConfig reads fanctl.env from dir, FANCTL_* environment variables and
// the given flags, in increasing precedence.
func LoadConfig(dir string, flags *pflag.FlagSet) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("fanctl")
	v.SetConfigType("env")
	v.SetEnvPrefix("FANCTL")
	v.AutomaticEnv()

	for _, key := range []string{"API_URL", "TOKEN_FILE", "REQUEST_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "LOG_DEVELOPMENT"} {
		_ = v.BindEnv(key)
	}

	for key, flag := range map[string]string{
		"API_URL":         "api-url",
		"TOKEN_FILE":      "token-file",
		"REQUEST_TIMEOUT": "timeout",
		"LOG_LEVEL":       "log-level",
	} {
		if f := flags.Lookup(flag); f != nil {
			if err = v.BindPFlag(key, f); err != nil {
				return
			}
		}
	}

	v.SetDefault("API_URL", "http://localhost:8080")
	v.SetDefault("TOKEN_FILE", defaultTokenFile())
	v.SetDefault("REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("LOG_FORMAT", "console")

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
	}

	err = v.Unmarshal(&config)
	return
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "fanverse", "session.json")
}
