package cron

import (
	"github.com/erpcompany/erp/core"
)

// Builder collects scheduler settings and job definitions. One Builder is
// shared per runtime so Job options can be applied before or after New.
type Builder struct {
	enableSeconds    bool
	enableCronLogger bool
	location         string
	jobs             []jobDefinition
	installed        bool
}

type jobDefinition struct {
	spec    string
	name    string
	handler any
}

func NewBuilder() *Builder {
	return &Builder{
		location: "UTC",
	}
}

func (b *Builder) WithSeconds() *Builder {
	b.enableSeconds = true
	return b
}

func (b *Builder) WithLocation(location string) *Builder {
	b.location = location
	return b
}

// EnableCronLogger forwards the scheduler's own logs.
func (b *Builder) EnableCronLogger() *Builder {
	b.enableCronLogger = true
	return b
}

// AddJob schedules handler. It may be a func(), a func(context.Context)
// error, or any function whose arguments are resolved from the container;
// a trailing error result is logged.
func (b *Builder) AddJob(spec, name string, handler any) *Builder {
	b.jobs = append(b.jobs, jobDefinition{
		spec:    spec,
		name:    name,
		handler: handler,
	})
	return b
}

func use(rt *core.Runtime) *Builder {
	return core.UseFeature(rt, NewBuilder)
}
