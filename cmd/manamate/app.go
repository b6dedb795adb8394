package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"manamate/internal/catalog"
	"manamate/internal/compose"
	"manamate/internal/config"
	"manamate/internal/logging"
	"manamate/internal/resolver"
	"manamate/internal/workspace"
)

// app holds the components shared by every command.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	ws       *workspace.Manager
	catalog  *catalog.Client
	resolver *resolver.Resolver
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	logger, err := logging.New(logOut, cfg.Server.LogLevel, cfg.Server.LogFormat)
	if err != nil {
		return nil, err
	}

	ws := workspace.New(cfg.Workspace.Dir, logger)
	cat := catalog.New(cfg.Catalog, logger)
	fetcher := compose.NewFetcher(ws, cfg.Catalog.Timeout, cfg.Catalog.UserAgent, logger)
	compositor := compose.NewCompositor(ws, fetcher, logger)

	res := resolver.New(cat, fetcher, compositor, ws, resolver.Options{
		Alias:        cfg.Alias,
		SummaryLimit: cfg.Bot.SummaryLimit,
		WebURL:       cfg.Catalog.WebURL,
	}, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		ws:       ws,
		catalog:  cat,
		resolver: res,
	}, nil
}
