package config

import (
	"fmt"
	"path/filepath"
)

// EnvPrefix is the environment variable prefix read by Bootstrap.
const EnvPrefix = "ERP_"

// Well-known keys.
const (
	KeyLocation       = "config.location"
	KeyProfiles       = "profiles.active"
	KeyEtcdEndpoints  = "config.etcd.endpoints"
	KeyEtcdPrefix     = "config.etcd.prefix"
	KeyEtcdUsername   = "config.etcd.username"
	KeyEtcdPassword   = "config.etcd.password"
	defaultConfigFile = "application"
)

// Defaults are the lowest-precedence values of every application.
func Defaults() map[string]any {
	return map[string]any{
		"server": map[string]any{
			"port": 8080,
		},
		"shutdown": map[string]any{
			"timeout": "30s",
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "text",
		},
		"management": map[string]any{
			"health": map[string]any{
				"refresh": "@every 30s",
			},
		},
	}
}

// Bootstrap assembles the application configuration. Precedence, lowest
// first: defaults, application.yaml, application-<profile>.yaml for each
// active profile, etcd, ERP_ environment variables, command-line options.
//
// Location, profiles and etcd settings are themselves read from the layers
// that precede them.
func Bootstrap(args OptionArgs, defaults map[string]any) (Configuration, error) {
	overrides := func(b *ConfigurationBuilder) *ConfigurationBuilder {
		return b.AddEnvironmentVariables(EnvPrefix).AddCommandLine(args)
	}

	early, err := overrides(NewConfigurationBuilder().AddInMemory(defaults)).Build()
	if err != nil {
		return nil, err
	}

	files := fileSources(early.Get(KeyLocation), early.GetStringSlice(KeyProfiles))

	withFiles := NewConfigurationBuilder().AddInMemory(defaults)
	for _, f := range files {
		withFiles.Add(f)
	}
	interim, err := overrides(withFiles).Build()
	if err != nil {
		return nil, err
	}

	final := NewConfigurationBuilder().AddInMemory(defaults)
	for _, f := range files {
		final.Add(f)
	}
	if endpoints := interim.GetStringSlice(KeyEtcdEndpoints); len(endpoints) > 0 {
		final.AddEtcd(EtcdOptions{
			Endpoints: endpoints,
			Prefix:    interim.Get(KeyEtcdPrefix),
			Username:  interim.Get(KeyEtcdUsername),
			Password:  interim.Get(KeyEtcdPassword),
		})
	}

	cfg, err := overrides(final).Build()
	if err != nil {
		return nil, fmt.Errorf("config: bootstrap: %w", err)
	}
	return cfg, nil
}

// Profiles returns the active profiles in declaration order.
func Profiles(cfg Configuration) []string {
	return cfg.GetStringSlice(KeyProfiles)
}

func fileSources(location string, profiles []string) []ConfigurationSource {
	sources := []ConfigurationSource{
		&YamlFileSource{Path: filepath.Join(location, defaultConfigFile+".yaml"), Optional: true},
	}
	for _, p := range profiles {
		sources = append(sources, &YamlFileSource{
			Path:     filepath.Join(location, fmt.Sprintf("%s-%s.yaml", defaultConfigFile, p)),
			Optional: true,
		})
	}
	return sources
}
