package di_test

import (
	"errors"
	"testing"

	"github.com/erpcompany/erp/di"
)

type Database struct {
	DSN string
}

type ServiceWithNamedDB struct {
	Master  *Database `di:"master"`
	Replica *Database `di:"replica"`
}

type ServiceWithOptional struct {
	Required *Database `di:"master"`
	Optional *Database `di:"missing,?"`
}

type Greeter interface {
	Greet() string
}

type englishGreeter struct{}

func (englishGreeter) Greet() string { return "hello" }

func TestNamedInjection(t *testing.T) {
	c := di.NewContainer()

	di.Register[*Database](c, di.WithName("master"), di.WithValue(&Database{DSN: "master_dsn"}))
	di.Register[*Database](c, di.WithName("replica"), di.WithValue(&Database{DSN: "replica_dsn"}))
	di.Register[*ServiceWithNamedDB](c)

	if err := c.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	svc, err := di.Resolve[*ServiceWithNamedDB](c)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if svc.Master.DSN != "master_dsn" {
		t.Errorf("expected master DSN, got %s", svc.Master.DSN)
	}
	if svc.Replica.DSN != "replica_dsn" {
		t.Errorf("expected replica DSN, got %s", svc.Replica.DSN)
	}
}

func TestOptionalInjection(t *testing.T) {
	c := di.NewContainer()

	di.Register[*Database](c, di.WithName("master"), di.WithValue(&Database{DSN: "m"}))
	di.Register[*ServiceWithOptional](c)

	if err := c.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	svc := di.MustResolve[*ServiceWithOptional](c)
	if svc.Required == nil {
		t.Fatal("required dependency not injected")
	}
	if svc.Optional != nil {
		t.Error("optional dependency should stay nil")
	}
}

func TestProvideFactory(t *testing.T) {
	c := di.NewContainer()

	if _, err := di.Provide(c, &Database{DSN: "dsn"}); err != nil {
		t.Fatal(err)
	}
	typ, err := di.Provide(c, func(db *Database) (Greeter, error) {
		if db.DSN != "dsn" {
			return nil, errors.New("unexpected dsn")
		}
		return englishGreeter{}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if typ != di.TypeOf[Greeter]() {
		t.Errorf("expected Greeter type, got %v", typ)
	}

	if err := c.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	g, err := di.Resolve[Greeter](c)
	if err != nil {
		t.Fatal(err)
	}
	if g.Greet() != "hello" {
		t.Errorf("unexpected greeting %q", g.Greet())
	}
}

func TestProvideAsInterface(t *testing.T) {
	c := di.NewContainer()

	_, err := di.Provide(c, func() *englishGreeter { return &englishGreeter{} }, di.As[Greeter]())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Build(); err != nil {
		t.Fatal(err)
	}

	if _, err := di.Resolve[Greeter](c); err != nil {
		t.Errorf("resolve by interface: %v", err)
	}
	if _, err := di.Resolve[*englishGreeter](c); err == nil {
		t.Error("concrete type should not be registered")
	}
}

func TestFactoryErrorFailsBuild(t *testing.T) {
	c := di.NewContainer()
	boom := errors.New("boom")

	_, _ = di.Provide(c, func() (*Database, error) { return nil, boom })

	err := c.Build()
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped factory error, got %v", err)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	c := di.NewContainer()

	if _, err := di.Provide(c, &Database{}); err != nil {
		t.Fatal(err)
	}
	if _, err := di.Provide(c, &Database{}); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestRegisterAfterBuild(t *testing.T) {
	c := di.NewContainer()
	if err := c.Build(); err != nil {
		t.Fatal(err)
	}
	if _, err := di.Provide(c, &Database{}); err == nil {
		t.Error("expected error registering after build")
	}
}

type cycleA struct {
	B *cycleB `di:""`
}

type cycleB struct {
	A *cycleA `di:""`
}

func TestCircularDependency(t *testing.T) {
	c := di.NewContainer()
	di.Register[*cycleA](c)
	di.Register[*cycleB](c)

	if err := c.Build(); err == nil {
		t.Fatal("expected circular dependency error")
	}
}

func TestInvoke(t *testing.T) {
	c := di.NewContainer()
	_, _ = di.Provide(c, &Database{DSN: "invoke"})
	if err := c.Build(); err != nil {
		t.Fatal(err)
	}

	var got string
	err := di.Invoke(c, func(db *Database) error {
		got = db.DSN
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "invoke" {
		t.Errorf("expected invoke, got %s", got)
	}

	want := errors.New("invoke failed")
	if err := di.Invoke(c, func(*Database) error { return want }); !errors.Is(err, want) {
		t.Errorf("expected invoke error, got %v", err)
	}

	if err := di.Invoke(c, func(Greeter) {}); err == nil {
		t.Error("expected missing dependency error")
	}
}
