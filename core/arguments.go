package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument reports malformed option syntax.
var ErrInvalidArgument = errors.New("invalid argument")

// Arguments are the raw startup arguments split into options
// ("--name" or "--name=value") and everything else.
type Arguments struct {
	source     []string
	names      []string
	options    map[string][]string
	nonOptions []string
}

// ParseArguments keeps the order of options and of non-option arguments.
// A repeated option accumulates its values.
func ParseArguments(args []string) (*Arguments, error) {
	a := &Arguments{
		source:  append([]string(nil), args...),
		options: make(map[string][]string),
	}

	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			a.nonOptions = append(a.nonOptions, arg)
			continue
		}

		text := arg[2:]
		name, value, hasValue := strings.Cut(text, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidArgument, arg)
		}

		if _, seen := a.options[name]; !seen {
			a.names = append(a.names, name)
			a.options[name] = nil
		}
		if hasValue {
			a.options[name] = append(a.options[name], value)
		}
	}

	return a, nil
}

// SourceArgs returns a copy of the arguments as given.
func (a *Arguments) SourceArgs() []string {
	return append([]string(nil), a.source...)
}

// OptionNames returns option names in first-seen order.
func (a *Arguments) OptionNames() []string {
	return append([]string(nil), a.names...)
}

func (a *Arguments) ContainsOption(name string) bool {
	_, ok := a.options[name]
	return ok
}

// OptionValues returns the values given for name. An option passed without
// a value has an empty, non-nil list; an unknown option returns nil.
func (a *Arguments) OptionValues(name string) []string {
	values, ok := a.options[name]
	if !ok {
		return nil
	}
	return append([]string{}, values...)
}

func (a *Arguments) NonOptionArgs() []string {
	return append([]string(nil), a.nonOptions...)
}
