package autoconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/logging"
)

// KeyExclude lists auto-configurations to skip, in addition to
// core.WithExclude.
const KeyExclude = "autoconfigure.exclude"

var (
	// ErrUnknownAutoConfiguration is returned when an exclusion names no
	// registered auto-configuration.
	ErrUnknownAutoConfiguration = errors.New("unknown auto-configuration")

	// ErrDataSourceURLMissing is returned by the datasource
	// auto-configuration when datasource.url is empty.
	ErrDataSourceURLMissing = errors.New("datasource.url is not configured")
)

// AutoConfiguration contributes infrastructure to the runtime when its
// condition holds and it is not excluded.
type AutoConfiguration struct {
	Name string
	// Condition reports whether Apply should run, and why not. Nil means
	// always.
	Condition func(rt *core.Runtime) (bool, string)
	Apply     func(rt *core.Runtime) error
}

// Outcome of one evaluation.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeExcluded Outcome = "excluded"
	OutcomeSkipped  Outcome = "skipped"
)

type Evaluation struct {
	Name    string
	Outcome Outcome
	Reason  string
}

// Report lists evaluations in registry order.
type Report struct {
	Evaluations []Evaluation
}

// Outcome returns the outcome recorded for name.
func (r *Report) Outcome(name string) (Outcome, bool) {
	for _, e := range r.Evaluations {
		if e.Name == name {
			return e.Outcome, true
		}
	}
	return "", false
}

func (r *Report) Applied() []string { return r.names(OutcomeApplied) }
func (r *Report) Excluded() []string { return r.names(OutcomeExcluded) }
func (r *Report) Skipped() []string { return r.names(OutcomeSkipped) }

func (r *Report) names(o Outcome) []string {
	names := []string{}
	for _, e := range r.Evaluations {
		if e.Outcome == o {
			names = append(names, e.Name)
		}
	}
	return names
}

// Registry is an ordered set of auto-configurations.
type Registry struct {
	entries []AutoConfiguration
}

func NewRegistry(entries ...AutoConfiguration) (*Registry, error) {
	r := &Registry{}
	for _, e := range entries {
		if err := r.Add(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add appends ac. Names must be unique.
func (r *Registry) Add(ac AutoConfiguration) error {
	if ac.Name == "" {
		return fmt.Errorf("autoconfig: name is required")
	}
	if ac.Apply == nil {
		return fmt.Errorf("autoconfig: %s has no Apply", ac.Name)
	}
	for _, e := range r.entries {
		if e.Name == ac.Name {
			return fmt.Errorf("autoconfig: %s already registered", ac.Name)
		}
	}
	r.entries = append(r.entries, ac)
	return nil
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Run evaluates every entry in order against rt, then registers the
// *Report in the container and logs it. Exclusions naming no entry fail
// before anything is applied.
func (r *Registry) Run(rt *core.Runtime) (*Report, error) {
	excluded, err := r.exclusions(rt)
	if err != nil {
		return nil, err
	}

	logger := rt.Logger.WithCategory("autoconfig")
	report := &Report{}

	for _, e := range r.entries {
		if excluded[e.Name] {
			report.Evaluations = append(report.Evaluations, Evaluation{Name: e.Name, Outcome: OutcomeExcluded})
			continue
		}

		if e.Condition != nil {
			if ok, reason := e.Condition(rt); !ok {
				report.Evaluations = append(report.Evaluations, Evaluation{Name: e.Name, Outcome: OutcomeSkipped, Reason: reason})
				logger.Debug("Auto-configuration skipped",
					logging.Field{Key: "name", Value: e.Name},
					logging.Field{Key: "reason", Value: reason})
				continue
			}
		}

		if err := e.Apply(rt); err != nil {
			return nil, fmt.Errorf("autoconfig: %s: %w", e.Name, err)
		}
		report.Evaluations = append(report.Evaluations, Evaluation{Name: e.Name, Outcome: OutcomeApplied})
	}

	if err := rt.Provide(report); err != nil {
		return nil, fmt.Errorf("autoconfig: %w", err)
	}

	logger.Info("Auto-configuration report",
		logging.Field{Key: "applied", Value: strings.Join(report.Applied(), ",")},
		logging.Field{Key: "excluded", Value: strings.Join(report.Excluded(), ",")},
		logging.Field{Key: "skipped", Value: strings.Join(report.Skipped(), ",")})
	return report, nil
}

func (r *Registry) exclusions(rt *core.Runtime) (map[string]bool, error) {
	known := make(map[string]bool, len(r.entries))
	for _, e := range r.entries {
		known[e.Name] = true
	}

	names := append([]string(nil), rt.Exclusions...)
	names = append(names, rt.Config.GetStringSlice(KeyExclude)...)

	excluded := make(map[string]bool, len(names))
	for _, name := range names {
		if !known[name] {
			return nil, fmt.Errorf("autoconfig: %w: %s", ErrUnknownAutoConfiguration, name)
		}
		excluded[name] = true
	}
	return excluded, nil
}

type extensions struct {
	entries []AutoConfiguration
}

// Register adds ac to the runtime. It is evaluated after the built-ins by
// Run in the launcher and can be excluded by name like them.
func Register(ac AutoConfiguration) core.Option {
	return func(rt *core.Runtime) error {
		ext := core.UseFeature(rt, func() *extensions { return &extensions{} })
		ext.entries = append(ext.entries, ac)
		return nil
	}
}

// ForRuntime returns the built-ins followed by everything passed to
// Register.
func ForRuntime(rt *core.Runtime) (*Registry, error) {
	r, err := NewRegistry(Defaults()...)
	if err != nil {
		return nil, err
	}
	if ext := core.GetFeature[*extensions](rt); ext != nil {
		for _, e := range ext.entries {
			if err := r.Add(e); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}
