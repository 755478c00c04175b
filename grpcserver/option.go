package grpcserver

import (
	"context"
	"fmt"

	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/di"
	"github.com/erpcompany/erp/health"
	"google.golang.org/grpc"
)

type BuilderOption func(*builder)

type builder struct {
	opts          *Options
	registrations []any
}

func WithPort(port int) BuilderOption {
	return func(b *builder) {
		b.opts.Port = port
	}
}

func WithHost(host string) BuilderOption {
	return func(b *builder) {
		b.opts.Host = host
	}
}

func WithMaxRecvMsgSize(size int) BuilderOption {
	return func(b *builder) {
		b.opts.MaxRecvMsgSize = size
	}
}

// WithRegistration adds a function that registers gRPC services. Its
// arguments are resolved from the container; grpc.ServiceRegistrar is
// available there.
//
//	grpcserver.WithRegistration(func(s grpc.ServiceRegistrar, svc *OrderService) {
//	    orderpb.RegisterOrderServiceServer(s, svc)
//	})
func WithRegistration(fn any) BuilderOption {
	return func(b *builder) {
		b.registrations = append(b.registrations, fn)
	}
}

// New registers the *Server and its grpc.ServiceRegistrar in the
// container. Registrations run at start, before the port is bound; the
// serving status follows every health refresh.
func New(opts ...BuilderOption) core.Option {
	return func(rt *core.Runtime) error {
		b := &builder{opts: NewDefaultOptions()}
		for _, opt := range opts {
			opt(b)
		}
		if err := b.opts.Validate(); err != nil {
			return fmt.Errorf("grpc: %w", err)
		}

		srv := NewServer(*b.opts, rt.Logger.WithCategory("grpc"))
		if err := rt.Provide(srv); err != nil {
			return fmt.Errorf("grpc: %w", err)
		}
		if err := rt.Provide(func() grpc.ServiceRegistrar { return srv.Registrar() }); err != nil {
			return fmt.Errorf("grpc: %w", err)
		}

		health.Use(rt).OnChange(srv.UpdateHealth)

		rt.Lifecycle.OnStart(func(ctx context.Context) error {
			for _, fn := range b.registrations {
				if err := di.Invoke(rt.Container, fn); err != nil {
					return fmt.Errorf("grpc: %w", err)
				}
			}
			if err := srv.Listen(); err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(); err != nil {
					rt.Fail(fmt.Errorf("grpc: %w", err))
				}
			}()
			return nil
		})
		rt.Lifecycle.OnStop(srv.Stop)
		return nil
	}
}
