package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/erpcompany/erp/di"
	"github.com/erpcompany/erp/logging"
	"github.com/erpcompany/erp/metrics"
	"github.com/gin-gonic/gin"
)

// Host serves the gin engine.
type Host struct {
	listenAddr      string
	mode            string
	middleware      []gin.HandlerFunc
	routes          []func(gin.IRouter)
	container       di.Container
	controllerTypes []reflect.Type
	logger          logging.Logger

	prepareOnce sync.Once
	prepareErr  error
	engine      *gin.Engine

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// Address is the bound address, empty before Listen.
func (h *Host) Address() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

// Handler returns the prepared engine.
func (h *Host) Handler() (http.Handler, error) {
	if err := h.prepare(); err != nil {
		return nil, err
	}
	return h.engine, nil
}

// Listen prepares the engine and binds the port.
func (h *Host) Listen() error {
	if err := h.prepare(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", h.listenAddr)
	if err != nil {
		return fmt.Errorf("web: listen on %s: %w", h.listenAddr, err)
	}

	h.mu.Lock()
	h.listener = ln
	h.server = &http.Server{
		Handler:           h.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	h.mu.Unlock()

	h.logger.Info("Web host listening", logging.Field{Key: "address", Value: ln.Addr().String()})
	return nil
}

// Serve blocks until the server is shut down.
func (h *Host) Serve() error {
	h.mu.Lock()
	srv, ln := h.server, h.listener
	h.mu.Unlock()
	if srv == nil {
		return errors.New("web: serve called before listen")
	}

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		h.logger.Error("Web host error", logging.Err(err))
		return err
	}
	return nil
}

// Stop shuts the server down gracefully, bounded by ctx.
func (h *Host) Stop(ctx context.Context) error {
	h.mu.Lock()
	srv := h.server
	h.mu.Unlock()
	if srv == nil {
		return nil
	}

	h.logger.Info("Stopping web host")
	if err := srv.Shutdown(ctx); err != nil {
		h.logger.Error("Failed to shutdown web host gracefully", logging.Err(err))
		return err
	}
	h.logger.Info("Web host stopped")
	return nil
}

func (h *Host) prepare() error {
	h.prepareOnce.Do(func() {
		gin.SetMode(h.mode)
		engine := gin.New()
		engine.Use(gin.Recovery(), requestLogger(h.logger))

		if h.container.Has(di.TypeOf[*metrics.HTTPMetrics](), "") {
			m, err := di.Resolve[*metrics.HTTPMetrics](h.container)
			if err != nil {
				h.prepareErr = fmt.Errorf("web: resolve http metrics: %w", err)
				return
			}
			engine.Use(requestMetrics(m))
		}
		engine.Use(h.middleware...)

		for _, fn := range h.routes {
			fn(engine)
		}
		if err := h.mapControllers(engine); err != nil {
			h.prepareErr = fmt.Errorf("web: map controllers: %w", err)
			return
		}
		h.engine = engine
	})
	return h.prepareErr
}

func (h *Host) mapControllers(engine *gin.Engine) error {
	for _, typ := range h.controllerTypes {
		instance, err := h.container.Get(typ)
		if err != nil {
			return fmt.Errorf("resolve controller %v: %w", typ, err)
		}

		ctrl, ok := instance.(Controller)
		if !ok {
			return fmt.Errorf("%v does not implement web.Controller", typ)
		}

		ctrl.MountRoutes(engine)
		h.logger.Debug("Mapped controller routes", logging.Field{Key: "controller", Value: typ.String()})
	}
	return nil
}
