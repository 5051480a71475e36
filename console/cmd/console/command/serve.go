package command

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/app"
	"github.com/Krimson/vitals-console/console/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board over HTTP, WebSocket and gRPC health",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	c, log, err := newConsole(app.Options{Push: true})
	if err != nil {
		return err
	}
	defer log.Sync()
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := c.RunBackground(ctx); err != nil {
		return err
	}

	handler := server.NewHTTPHandler(server.Deps{
		Controller: c.Controller,
		Civic:      c.Civic,
		Wallet:     c.Wallet,
		Analysis:   c.Analysis,
		Board:      c.Board,
		Page:       c.Page,
		Logger:     log.Named("http"),
	})
	srv := server.New(cfg.HTTPPort, cfg.GRPCPort, server.NewRouter(handler, c.Hub), c.Health, log)
	return serveWhileLoading(ctx, srv, c.Start, log)
}

type runner interface {
	Run(ctx context.Context) error
}

// serveWhileLoading runs the initial load next to the server so the
// listeners come up even when the backend hangs. It returns once the server
// stops and the load has finished.
func serveWhileLoading(ctx context.Context, srv runner, load func(context.Context) error, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loaded := make(chan struct{})
	go func() {
		defer close(loaded)
		if err := load(ctx); err != nil {
			// the board keeps the failure status; clients may retry
			log.Warn("Initial load incomplete", zap.Error(err))
		}
	}()

	err := srv.Run(ctx)
	cancel()
	<-loaded
	return err
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
