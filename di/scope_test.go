package di_test

import (
	"testing"

	"github.com/erpcompany/erp/di"
)

type requestContext struct {
	ID int
}

type handler struct {
	Req *requestContext `di:""`
	DB  *Database       `di:""`
}

func newScopedContainer(t *testing.T) di.Container {
	t.Helper()

	counter := 0
	c := di.NewContainer()
	_, _ = di.Provide(c, &Database{DSN: "shared"})
	_, err := di.Provide(c, func() *requestContext {
		counter++
		return &requestContext{ID: counter}
	}, di.WithScoped())
	if err != nil {
		t.Fatal(err)
	}
	di.Register[*handler](c, di.WithTransient())

	if err := c.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return c
}

func TestScopedInstancesPerScope(t *testing.T) {
	c := newScopedContainer(t)

	s1 := c.CreateScope()
	s2 := c.CreateScope()

	a, err := di.Resolve[*requestContext](s1)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := di.Resolve[*requestContext](s1)
	if a != b {
		t.Error("same scope should return the same instance")
	}

	other, _ := di.Resolve[*requestContext](s2)
	if other == a {
		t.Error("different scopes should not share instances")
	}
}

func TestScopedNotResolvableFromRoot(t *testing.T) {
	c := newScopedContainer(t)

	if _, err := di.Resolve[*requestContext](c); err == nil {
		t.Error("expected error resolving scoped service from root")
	}
}

func TestTransientInScopeSharesScopedDeps(t *testing.T) {
	c := newScopedContainer(t)
	s := c.CreateScope()

	h1, err := di.Resolve[*handler](s)
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := di.Resolve[*handler](s)

	if h1 == h2 {
		t.Error("transient should create new instances")
	}
	if h1.Req != h2.Req {
		t.Error("transients in one scope should share the scoped dependency")
	}
	if h1.DB != h2.DB || h1.DB.DSN != "shared" {
		t.Error("singleton dependency should be shared")
	}
}

func TestScopeDispose(t *testing.T) {
	c := newScopedContainer(t)
	s := c.CreateScope()

	before, _ := di.Resolve[*requestContext](s)
	s.Dispose()
	after, _ := di.Resolve[*requestContext](s)

	if before == after {
		t.Error("dispose should drop scoped instances")
	}
}
