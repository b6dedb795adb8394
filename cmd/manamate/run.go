package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"manamate/internal/bot"
	"manamate/internal/transport"
	"manamate/internal/web"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot and its status server",
		Long: `Run starts the bot on the console transport (one message per input line),
the status/pairing web server and the workspace sweeper. It stops on
SIGINT/SIGTERM or when the input ends.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// run wires the transport, bot and web server and blocks until ctx is
// cancelled or the transport's event stream ends.
func (a *app) run(ctx context.Context, in io.Reader, out io.Writer) error {
	if _, err := a.ws.EnsureDir(); err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	// Stale leftovers only; the directory may be shared with another instance
	if _, err := a.ws.Sweep(a.cfg.Workspace.MaxAge); err != nil {
		a.logger.Warn("⚠️ startup sweep failed", "err", err)
	}

	pairing := transport.NewPairingCell()
	console := transport.NewConsole(in, out, pairing, a.logger)
	defer console.Close()

	dispatcher := bot.NewDispatcher(a.cfg.Bot, a.resolver, a.catalog, a.logger)
	b := bot.New(console, dispatcher, a.logger)

	h := web.New(a.cfg.Bot.Name, pairing, b, a.ws, a.logger)
	server := &http.Server{
		Addr:         net.JoinHostPort(a.cfg.Server.Host, a.cfg.Server.Port),
		Handler:      web.SetupRouter(h, a.cfg, a.logger, nil),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout, // 0 for SSE support
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("🚀 starting status server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("🛑 shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		a.logger.Info("server gracefully stopped")
		return nil
	})

	g.Go(func() error {
		a.ws.RunSweeper(gctx, a.cfg.Workspace.SweepInterval, a.cfg.Workspace.MaxAge)
		return nil
	})

	g.Go(func() error {
		// The bot ending (input closed) stops everything else
		defer cancel()
		return b.Run(gctx)
	})

	return g.Wait()
}
