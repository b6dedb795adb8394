package config

import (
	"fmt"
	"strings"
	"time"
)

// This file defines the configuration structures used by viper_config.go
// The actual loading is handled by viper in viper_config.go

// Config represents the bot configuration
type Config struct {
	Server    ServerSettings    `yaml:"server"`
	Catalog   CatalogSettings   `yaml:"catalog"`
	Workspace WorkspaceSettings `yaml:"workspace"`
	Bot       BotSettings       `yaml:"bot"`
}

// ServerSettings contains the status web server settings
type ServerSettings struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"` // 0 for SSE support
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`

	// Rate limiting (using golang.org/x/time/rate)
	RateLimit      float64 `yaml:"rateLimit"`      // requests per second
	RateLimitBurst int     `yaml:"rateLimitBurst"` // burst size

	MaxRequestSize int64 `yaml:"maxRequestSize"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

// CatalogSettings configures the Scryfall client
type CatalogSettings struct {
	BaseURL       string        `yaml:"baseURL"`
	WebURL        string        `yaml:"webURL"`
	UserAgent     string        `yaml:"userAgent"`
	Timeout       time.Duration `yaml:"timeout"`
	MinInterval   time.Duration `yaml:"minInterval"` // spacing between catalog calls
	ExactCacheTTL time.Duration `yaml:"exactCacheTTL"`
}

// WorkspaceSettings configures the temporary image directory
type WorkspaceSettings struct {
	Dir           string        `yaml:"dir"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
	MaxAge        time.Duration `yaml:"maxAge"`
}

// BotSettings configures command handling
type BotSettings struct {
	Name         string            `yaml:"name"`
	Prefix       string            `yaml:"prefix"`
	SummaryLimit int               `yaml:"summaryLimit"`
	Aliases      map[string]string `yaml:"aliases"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Port:            "3000",
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // SSE pairing stream
			IdleTimeout:     0,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,

			RateLimit:      10,
			RateLimitBurst: 20,

			MaxRequestSize: 1048576, // 1MB

			LogLevel:  "info",
			LogFormat: "text",
		},
		Catalog: CatalogSettings{
			BaseURL:       "https://api.scryfall.com",
			WebURL:        "https://scryfall.com",
			UserAgent:     "MTGWhatsAppBot/1.0",
			Timeout:       10 * time.Second,
			MinInterval:   100 * time.Millisecond,
			ExactCacheTTL: time.Hour,
		},
		Workspace: WorkspaceSettings{
			Dir:           "temp",
			SweepInterval: time.Hour,
			MaxAge:        time.Hour,
		},
		Bot: BotSettings{
			Name:         "ManaMate",
			Prefix:       "!",
			SummaryLimit: 3,
			Aliases: map[string]string{
				"raio": "Lightning Bolt",
			},
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT must be set")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HOST must be set")
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("rateLimit must be positive")
	}
	if c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("rateLimitBurst must be at least 1")
	}

	switch strings.ToLower(c.Server.LogFormat) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("logFormat must be one of text, json, logfmt (got %q)", c.Server.LogFormat)
	}

	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog baseURL must be set")
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog timeout must be positive")
	}
	if c.Catalog.MinInterval < 0 {
		return fmt.Errorf("catalog minInterval cannot be negative")
	}

	if c.Workspace.Dir == "" {
		return fmt.Errorf("workspace dir must be set")
	}
	if c.Workspace.MaxAge <= 0 {
		return fmt.Errorf("workspace maxAge must be positive")
	}
	if c.Workspace.SweepInterval <= 0 {
		return fmt.Errorf("workspace sweepInterval must be positive")
	}

	if c.Bot.Prefix == "" {
		return fmt.Errorf("bot prefix must be set")
	}
	if c.Bot.SummaryLimit < 1 {
		return fmt.Errorf("summaryLimit must be at least 1")
	}
	seen := make(map[string]string, len(c.Bot.Aliases))
	for alias, target := range c.Bot.Aliases {
		if strings.TrimSpace(alias) == "" || strings.TrimSpace(target) == "" {
			return fmt.Errorf("alias %q: alias and target must be non-empty", alias)
		}
		key := strings.ToLower(alias)
		if other, dup := seen[key]; dup {
			return fmt.Errorf("aliases %q and %q differ only by case", other, alias)
		}
		seen[key] = alias
	}

	return nil
}

// Alias returns the canonical card name for a query, matched case-insensitively
func (c *Config) Alias(query string) (string, bool) {
	for alias, target := range c.Bot.Aliases {
		if strings.EqualFold(alias, query) {
			return target, true
		}
	}
	return "", false
}
