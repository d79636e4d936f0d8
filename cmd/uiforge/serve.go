package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/api"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/logging"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/promotion"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio with the background promotion worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return serve(ctx, a, os.Stdin, os.Stdout)
		},
	}
}

// serve runs the stdio MCP server and the promotion worker until ctx is
// cancelled or the client closes stdin.
func serve(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(logging.With(ctx, a.logger))
	defer cancel()

	stdio := server.NewStdioServer(api.NewMCPServer(a.deps(), version))
	stdio.SetErrorLogger(slog.NewLogLogger(a.logger.Handler(), slog.LevelError))

	worker := promotion.NewWorker(a.promoter, a.cfg.Promotion.Interval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		// Stdin EOF ends the session; stop the worker with it.
		defer cancel()
		err := stdio.Listen(gctx, in, out)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	a.logger.Info("uiforge MCP server started",
		"version", version,
		"snippets", a.registry.Len(),
		"promotion_interval", a.cfg.Promotion.Interval,
	)
	err := g.Wait()
	a.logger.Info("uiforge MCP server stopped")
	return err
}
