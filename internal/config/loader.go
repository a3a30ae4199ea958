package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rpattn/contentql/internal/contentful"
	"github.com/rpattn/contentql/internal/db"
	"github.com/rpattn/contentql/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. CONTENTQL_CONTENTFUL_SPACE_ID.
const EnvPrefix = "CONTENTQL"

type Config struct {
	Contentful contentful.Config
	Server     ServerConfig
	Database   DatabaseConfig
	Log        logging.Config
}

type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	// Concurrency bounds the root pipelines resolved at once per query.
	Concurrency     int
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	// Enabled turns on the resolution log.
	Enabled bool
	db.Config
}

func setDefaults(v *viper.Viper) {
	cf := contentful.DefaultConfig()
	v.SetDefault("contentful.space_id", "")
	v.SetDefault("contentful.environment", cf.Environment)
	v.SetDefault("contentful.access_token", "")
	v.SetDefault("contentful.preview", false)
	v.SetDefault("contentful.base_url", "")
	v.SetDefault("contentful.timeout", cf.Timeout)
	v.SetDefault("contentful.rate_limit", cf.RateLimit)
	v.SetDefault("contentful.burst", cf.Burst)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.concurrency", 8)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	dbc := db.DefaultConfig()
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", dbc.Host)
	v.SetDefault("database.port", dbc.Port)
	v.SetDefault("database.user", dbc.User)
	v.SetDefault("database.password", dbc.Password)
	v.SetDefault("database.dbname", dbc.DBName)
	v.SetDefault("database.sslmode", dbc.SSLMode)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads config.yaml from configPath when present, then applies
// environment overrides. A missing file is not an error.
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := Config{
		Contentful: contentful.Config{
			SpaceID:     v.GetString("contentful.space_id"),
			Environment: v.GetString("contentful.environment"),
			AccessToken: v.GetString("contentful.access_token"),
			Preview:     v.GetBool("contentful.preview"),
			BaseURL:     v.GetString("contentful.base_url"),
			Timeout:     v.GetDuration("contentful.timeout"),
			RateLimit:   v.GetFloat64("contentful.rate_limit"),
			Burst:       v.GetInt("contentful.burst"),
		},
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			AllowedOrigins:  v.GetStringSlice("server.allowed_origins"),
			Concurrency:     v.GetInt("server.concurrency"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			Enabled: v.GetBool("database.enabled"),
			Config: db.Config{
				Host:     v.GetString("database.host"),
				Port:     v.GetInt("database.port"),
				User:     v.GetString("database.user"),
				Password: v.GetString("database.password"),
				DBName:   v.GetString("database.dbname"),
				SSLMode:  v.GetString("database.sslmode"),
			},
		},
		Log: logging.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
	return cfg, nil
}
