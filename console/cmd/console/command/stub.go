package command

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/stubapi"
)

var stubAddr string

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run the in-memory demo backend",
	RunE:  runStub,
}

func runStub(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	server := &http.Server{
		Addr:         stubAddr,
		Handler:      stubapi.New().Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Stub backend listening", zap.String("address", stubAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Stub backend stopped")
	return nil
}

func init() {
	stubCmd.Flags().StringVar(&stubAddr, "addr", ":5000", "Listen address")
	rootCmd.AddCommand(stubCmd)
}
