package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration using Viper
// Priority order: Environment variables > Config file > Defaults
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("manamate")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/manamate")
	}

	// MANAMATE_CATALOG_BASEURL etc.
	v.SetEnvPrefix("manamate")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Short names used by container deployments
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.loglevel", "LOG_LEVEL")
	v.BindEnv("server.logformat", "LOG_FORMAT")
	v.BindEnv("server.ratelimit", "RATE_LIMIT")
	v.BindEnv("server.ratelimitburst", "RATE_LIMIT_BURST")
	v.BindEnv("catalog.baseurl", "SCRYFALL_BASE_URL")
	v.BindEnv("catalog.useragent", "SCRYFALL_USER_AGENT")
	v.BindEnv("workspace.dir", "WORKSPACE_DIR")

	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			// No config file; env vars and defaults only
		case errors.Is(err, fs.ErrNotExist):
			// Explicit path that doesn't exist, same as above
		default:
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Viper lowercases map keys, which is what alias matching wants anyway
	if len(cfg.Bot.Aliases) == 0 {
		cfg.Bot.Aliases = DefaultConfig().Bot.Aliases
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.readtimeout", d.Server.ReadTimeout)
	v.SetDefault("server.writetimeout", d.Server.WriteTimeout)
	v.SetDefault("server.idletimeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdowntimeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.requesttimeout", d.Server.RequestTimeout)
	v.SetDefault("server.ratelimit", d.Server.RateLimit)
	v.SetDefault("server.ratelimitburst", d.Server.RateLimitBurst)
	v.SetDefault("server.maxrequestsize", d.Server.MaxRequestSize)
	v.SetDefault("server.loglevel", d.Server.LogLevel)
	v.SetDefault("server.logformat", d.Server.LogFormat)

	v.SetDefault("catalog.baseurl", d.Catalog.BaseURL)
	v.SetDefault("catalog.weburl", d.Catalog.WebURL)
	v.SetDefault("catalog.useragent", d.Catalog.UserAgent)
	v.SetDefault("catalog.timeout", d.Catalog.Timeout)
	v.SetDefault("catalog.mininterval", d.Catalog.MinInterval)
	v.SetDefault("catalog.exactcachettl", d.Catalog.ExactCacheTTL)

	v.SetDefault("workspace.dir", d.Workspace.Dir)
	v.SetDefault("workspace.sweepinterval", d.Workspace.SweepInterval)
	v.SetDefault("workspace.maxage", d.Workspace.MaxAge)

	v.SetDefault("bot.name", d.Bot.Name)
	v.SetDefault("bot.prefix", d.Bot.Prefix)
	v.SetDefault("bot.summarylimit", d.Bot.SummaryLimit)
}
