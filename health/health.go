package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status of a component or of the whole application.
type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)

// Indicator checks one dependency.
type Indicator interface {
	Name() string
	Check(ctx context.Context) error
}

// IndicatorFunc adapts a function to Indicator.
func IndicatorFunc(name string, check func(ctx context.Context) error) Indicator {
	return &funcIndicator{name: name, check: check}
}

type funcIndicator struct {
	name  string
	check func(ctx context.Context) error
}

func (f *funcIndicator) Name() string { return f.name }
func (f *funcIndicator) Check(ctx context.Context) error { return f.check(ctx) }

// Component is the outcome of one indicator.
type Component struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report aggregates every component. Status is UP only if all are.
type Report struct {
	Status     Status               `json:"status"`
	Components map[string]Component `json:"components,omitempty"`
	CheckedAt  time.Time            `json:"checkedAt"`
}

// Up reports whether the aggregate status is UP.
func (r Report) Up() bool {
	return r.Status == StatusUp
}

// Registry runs indicators and keeps the latest report.
type Registry struct {
	mu         sync.RWMutex
	indicators map[string]Indicator
	timeout    time.Duration
	last       Report
	listeners  []func(Report)
}

// NewRegistry creates a registry. Each check gets at most timeout; zero
// means 5s.
func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Registry{
		indicators: make(map[string]Indicator),
		timeout:    timeout,
		last:       Report{Status: StatusUp},
	}
}

// Register adds ind. Names must be unique.
func (r *Registry) Register(ind Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := ind.Name()
	if name == "" {
		return fmt.Errorf("health: indicator name is required")
	}
	if _, exists := r.indicators[name]; exists {
		return fmt.Errorf("health: indicator %q already registered", name)
	}
	r.indicators[name] = ind
	return nil
}

// Names returns the registered indicator names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.indicators))
	for name := range r.indicators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs all indicators concurrently and returns the aggregate. It does
// not update the snapshot.
func (r *Registry) Check(ctx context.Context) Report {
	r.mu.RLock()
	indicators := make([]Indicator, 0, len(r.indicators))
	for _, ind := range r.indicators {
		indicators = append(indicators, ind)
	}
	r.mu.RUnlock()

	report := Report{
		Status:     StatusUp,
		Components: make(map[string]Component, len(indicators)),
		CheckedAt:  time.Now(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, ind := range indicators {
		wg.Add(1)
		go func(ind Indicator) {
			defer wg.Done()
			c := r.run(ctx, ind)

			mu.Lock()
			defer mu.Unlock()
			report.Components[ind.Name()] = c
			if c.Status != StatusUp {
				report.Status = StatusDown
			}
		}(ind)
	}
	wg.Wait()

	return report
}

func (r *Registry) run(ctx context.Context, ind Indicator) (c Component) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			c = Component{Status: StatusDown, Error: fmt.Sprintf("panic: %v", p)}
		}
	}()

	if err := ind.Check(ctx); err != nil {
		return Component{Status: StatusDown, Error: err.Error()}
	}
	return Component{Status: StatusUp}
}

// Refresh runs Check, stores the result as the snapshot and notifies
// listeners.
func (r *Registry) Refresh(ctx context.Context) Report {
	report := r.Check(ctx)

	r.mu.Lock()
	r.last = report
	listeners := append([]func(Report){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(report)
	}
	return report
}

// Snapshot returns the report of the last Refresh. Before the first
// refresh it is UP with no components.
func (r *Registry) Snapshot() Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// OnChange registers fn to run after every Refresh.
func (r *Registry) OnChange(fn func(Report)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}
