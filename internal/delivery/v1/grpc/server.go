package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName — имя сервиса в протоколе grpc.health.v1.
const ServiceName = "storefront"

// Pinger проверяет доступность зависимости (Postgres, Redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	cfg    *cfg.GRPCConfig
	logger logger.Logger
}

func NewGRPCServer(cfg *cfg.GRPCConfig, logger logger.Logger) *GRPCServer {
	s := &GRPCServer{
		server: grpc.NewServer(),
		health: health.NewServer(),
		cfg:    cfg,
		logger: logger,
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return s
}

// SetServing переключает статус сервиса и общий статус сервера.
func (s *GRPCServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
}

// CheckDependencies выставляет SERVING, только если все зависимости отвечают.
func (s *GRPCServer) CheckDependencies(ctx context.Context, deps map[string]Pinger) {
	for name, dep := range deps {
		if err := dep.Ping(ctx); err != nil {
			s.logger.Warnf("Health check: %s is unavailable: %v", name, err)
			s.SetServing(false)
			return
		}
	}
	s.SetServing(true)
}

func (s *GRPCServer) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	lis, err := net.Listen(s.cfg.NetworkMode, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return s.serve(lis)
}

func (s *GRPCServer) serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

func (s *GRPCServer) Stop(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infof("gRPC server stopped gracefully")
		return nil
	case <-ctx.Done():
		s.server.Stop()
		s.logger.Warnf("gRPC server forced to stop after timeout")
		return ctx.Err()
	}
}
