package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/erpcompany/erp/health"
	"github.com/erpcompany/erp/logging"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

type Options struct {
	Host           string
	Port           int
	MaxRecvMsgSize int
}

func NewDefaultOptions() *Options {
	return &Options{
		Port:           9090,
		MaxRecvMsgSize: 4 << 20,
	}
}

func (o *Options) Validate() error {
	if o.Port < 0 || o.Port > 65535 {
		return fmt.Errorf("grpc port %d out of range", o.Port)
	}
	if o.MaxRecvMsgSize <= 0 {
		return fmt.Errorf("grpc max receive message size must be positive")
	}
	return nil
}

// Server wraps a grpc.Server with the standard health service.
type Server struct {
	grpc   *grpc.Server
	health *grpchealth.Server
	addr   string
	logger logging.Logger

	mu       sync.Mutex
	listener net.Listener
}

func NewServer(opts Options, logger logging.Logger) *Server {
	s := &Server{
		health: grpchealth.NewServer(),
		addr:   fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		logger: logger,
	}
	s.grpc = grpc.NewServer(
		grpc.MaxRecvMsgSize(opts.MaxRecvMsgSize),
		grpc.ChainUnaryInterceptor(s.logUnary),
	)
	healthpb.RegisterHealthServer(s.grpc, s.health)
	return s
}

// Registrar is where services are registered before Listen.
func (s *Server) Registrar() grpc.ServiceRegistrar {
	return s.grpc
}

// Address is the bound address, empty before Listen.
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// UpdateHealth sets the overall serving status from a health report.
func (s *Server) UpdateHealth(r health.Report) {
	st := healthpb.HealthCheckResponse_SERVING
	if !r.Up() {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
}

func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("grpc: listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("gRPC server listening", logging.Field{Key: "address", Value: ln.Addr().String()})
	return nil
}

// Serve blocks until Stop.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("grpc: serve called before listen")
	}
	if err := s.grpc.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Stop drains in-flight calls; when ctx ends first, remaining calls are
// cancelled.
func (s *Server) Stop(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("gRPC server stopped")
		return nil
	case <-ctx.Done():
		s.grpc.Stop()
		<-done
		return fmt.Errorf("grpc: graceful stop: %w", ctx.Err())
	}
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug("RPC served",
		logging.Field{Key: "method", Value: info.FullMethod},
		logging.Field{Key: "code", Value: status.Code(err).String()},
		logging.Field{Key: "duration", Value: time.Since(start).String()})
	return resp, err
}
