package health

import (
	"context"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/Krimson/vitals-console/console/internal/controller"
)

// DashboardService is the health service name tracking dashboard refreshes
const DashboardService = "dashboard"

// HealthServer implements grpc_health_v1 with per-service status. Watch
// streams every status change.
type HealthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	mu       sync.RWMutex
	services map[string]grpc_health_v1.HealthCheckResponse_ServingStatus
	watchers map[string][]chan grpc_health_v1.HealthCheckResponse_ServingStatus
}

func NewHealthServer() *HealthServer {
	return &HealthServer{
		services: make(map[string]grpc_health_v1.HealthCheckResponse_ServingStatus),
		watchers: make(map[string][]chan grpc_health_v1.HealthCheckResponse_ServingStatus),
	}
}

func (h *HealthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	service := req.GetService()

	servingStatus, exists := h.services[service]
	if !exists {
		// the overall server reports serving until told otherwise
		if service == "" {
			return &grpc_health_v1.HealthCheckResponse{
				Status: grpc_health_v1.HealthCheckResponse_SERVING,
			}, nil
		}
		return nil, status.Error(codes.NotFound, "service not found")
	}

	return &grpc_health_v1.HealthCheckResponse{
		Status: servingStatus,
	}, nil
}

func (h *HealthServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	response, err := h.Check(stream.Context(), req)
	if err != nil {
		return err
	}
	if err := stream.Send(response); err != nil {
		return err
	}

	updates := make(chan grpc_health_v1.HealthCheckResponse_ServingStatus, 8)
	service := req.GetService()
	h.mu.Lock()
	h.watchers[service] = append(h.watchers[service], updates)
	h.mu.Unlock()
	defer h.removeWatcher(service, updates)

	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case st := <-updates:
			if err := stream.Send(&grpc_health_v1.HealthCheckResponse{Status: st}); err != nil {
				return err
			}
		}
	}
}

func (h *HealthServer) SetServingStatus(service string) {
	h.setStatus(service, grpc_health_v1.HealthCheckResponse_SERVING)
}

func (h *HealthServer) SetNotServingStatus(service string) {
	h.setStatus(service, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
}

// TrackController keeps DashboardService in step with the controller:
// NOT_SERVING after a failed refresh, SERVING otherwise.
func (h *HealthServer) TrackController(ctrl *controller.Controller) {
	h.SetServingStatus(DashboardService)
	ctrl.OnStateChange(func(s controller.State) {
		if s == controller.StateFailed {
			h.SetNotServingStatus(DashboardService)
			return
		}
		if s == controller.StateReady {
			h.SetServingStatus(DashboardService)
		}
	})
}

func (h *HealthServer) setStatus(service string, st grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.services[service]; ok && prev == st {
		return
	}
	h.services[service] = st
	for _, ch := range h.watchers[service] {
		select {
		case ch <- st:
		default:
		}
	}
}

func (h *HealthServer) removeWatcher(service string, updates chan grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := h.watchers[service]
	for i, ch := range list {
		if ch == updates {
			h.watchers[service] = append(list[:i], list[i+1:]...)
			break
		}
	}
}
