// Package server exposes the console board over HTTP, WebSocket and gRPC
// health.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	_ "github.com/Krimson/vitals-console/console/docs" // Swagger docs
	"github.com/Krimson/vitals-console/console/internal/health"
	"github.com/Krimson/vitals-console/console/internal/websocket"
)

const shutdownTimeout = 30 * time.Second

// NewRouter builds the HTTP routes: board API, WebSocket push and Swagger UI
func NewRouter(handler *HTTPHandler, hub *websocket.Hub) http.Handler {
	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	if hub != nil {
		router.HandleFunc("/ws", hub.HandleWebSocket)
	}

	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return enableCORS(router)
}

// Server runs the HTTP board server next to the gRPC health server
type Server struct {
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcAddr   string
	health     *health.HealthServer
	logger     *zap.Logger
}

func New(httpPort, grpcPort string, handler http.Handler, healthServer *health.HealthServer, logger *zap.Logger) *Server {
	grpcServer := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + httpPort,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		grpcServer: grpcServer,
		grpcAddr:   ":" + grpcPort,
		health:     healthServer,
		logger:     logger,
	}
}

// Run serves until ctx is done or a listener fails, then shuts both
// servers down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.grpcAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.grpcAddr, err)
	}
	s.health.SetServingStatus("")

	serverErrChan := make(chan error, 2)
	go func() {
		s.logger.Info("gRPC health server listening", zap.String("address", s.grpcAddr))
		if err := s.grpcServer.Serve(listener); err != nil {
			serverErrChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	go func() {
		s.logger.Info("Board server listening", zap.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var runErr error
	select {
	case runErr = <-serverErrChan:
		s.logger.Error("Server error", zap.Error(runErr))
	case <-ctx.Done():
		s.logger.Info("Starting graceful shutdown")
	}

	s.health.SetNotServingStatus("")
	s.health.SetNotServingStatus(health.DashboardService)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server forced to shutdown", zap.Error(err))
	}

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		s.logger.Warn("Graceful shutdown timeout, forcing stop")
		s.grpcServer.Stop()
	}

	s.logger.Info("Server stopped")
	return runErr
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			return
		}

		next.ServeHTTP(w, r)
	})
}
