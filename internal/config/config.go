package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Config holds every runtime setting. Values come from environment variables,
// optionally seeded from a .env file in the given path.
type Config struct {
	ServerPort   string `mapstructure:"SERVER_PORT"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`

	// DatabaseURL selects the storage backend: set it to use Postgres,
	// leave it empty to run on the in-memory store.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`

	// Email notifications are skipped when AWS_REGION or EMAIL_FROM is unset.
	AWSRegion string `mapstructure:"AWS_REGION"`
	EmailFrom string `mapstructure:"EMAIL_FROM"`
}

// LoadConfig reads configuration from the environment and, if present, a
// .env file in path.
func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("CLIENT_ORIGIN", "http://localhost:5173")

	// Unmarshal only sees keys viper knows about, so bind each one even when
	// no .env file exists.
	for _, key := range []string{
		"SERVER_PORT", "CLIENT_ORIGIN", "DATABASE_URL", "JWT_SECRET",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REDIRECT_URL",
		"AWS_REGION", "EMAIL_FROM",
	} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// No .env file is fine; environment variables still apply.
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}
	return cfg, nil
}
