package web

import (
	"fmt"
	"reflect"

	"github.com/erpcompany/erp/di"
	"github.com/erpcompany/erp/logging"
	"github.com/gin-gonic/gin"
)

// Controller mounts its routes on the engine.
type Controller interface {
	MountRoutes(router gin.IRouter)
}

// Builder collects host settings, middleware, routes and controllers.
// Nothing touches the engine until the host is prepared, so middleware
// applies to every route regardless of registration order.
type Builder struct {
	logger          logging.Logger
	host            string
	port            int
	mode            string
	middleware      []gin.HandlerFunc
	routes          []func(gin.IRouter)
	controllerCtors []any
	registeredTypes []reflect.Type
}

func NewBuilder() *Builder {
	return &Builder{
		logger: logging.NewNopLogger(),
		port:   8080,
		mode:   gin.ReleaseMode,
	}
}

func (b *Builder) UseLogger(logger logging.Logger) *Builder {
	b.logger = logger
	return b
}

// UsePort sets the listen port. 0 picks a free port.
func (b *Builder) UsePort(port int) *Builder {
	b.port = port
	return b
}

// UseHost sets the listen interface. Empty means all.
func (b *Builder) UseHost(host string) *Builder {
	b.host = host
	return b
}

func (b *Builder) SetMode(mode string) *Builder {
	b.mode = mode
	return b
}

// Use adds global middleware.
func (b *Builder) Use(middleware ...gin.HandlerFunc) *Builder {
	b.middleware = append(b.middleware, middleware...)
	return b
}

// Routes adds a function that registers routes directly.
func (b *Builder) Routes(fn func(router gin.IRouter)) *Builder {
	b.routes = append(b.routes, fn)
	return b
}

func (b *Builder) Get(path string, handlers ...gin.HandlerFunc) *Builder {
	return b.Routes(func(r gin.IRouter) { r.GET(path, handlers...) })
}

func (b *Builder) Post(path string, handlers ...gin.HandlerFunc) *Builder {
	return b.Routes(func(r gin.IRouter) { r.POST(path, handlers...) })
}

// AddControllers accepts constructors (arguments injected) or struct
// pointers (`di` fields injected). They are resolved when the host starts.
func (b *Builder) AddControllers(controllers ...any) *Builder {
	b.controllerCtors = append(b.controllerCtors, controllers...)
	return b
}

// RegisterServices adds the controllers to container. It must run before
// the container is built.
func (b *Builder) RegisterServices(container di.Container) error {
	for _, item := range b.controllerCtors {
		serviceType, err := di.Provide(container, item)
		if err != nil {
			return fmt.Errorf("register controller %T: %w", item, err)
		}
		b.registeredTypes = append(b.registeredTypes, serviceType)
	}
	return nil
}

// Build creates the host. Controllers are resolved from container when the
// host is prepared.
func (b *Builder) Build(container di.Container) *Host {
	return &Host{
		listenAddr:      fmt.Sprintf("%s:%d", b.host, b.port),
		mode:            b.mode,
		middleware:      b.middleware,
		routes:          b.routes,
		container:       container,
		controllerTypes: b.registeredTypes,
		logger:          b.logger,
	}
}
