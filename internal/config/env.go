package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix prefixes every override variable.
const EnvPrefix = "RDFUP_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envBinding struct {
	key string
	set func(c *Config, v string) error
}

var envBindings = []envBinding{
	{"JOURNAL", func(c *Config, v string) error { c.Journal = v; return nil }},
	{"BEST_EFFORT_LOAD", boolVar(func(c *Config) *bool { return &c.BestEffortLoad })},
	{"MAX_SOLUTIONS", intVar(func(c *Config) *int { return &c.MaxSolutions })},
	{"PATH_FLAVOR", func(c *Config, v string) error { c.PathFlavor = v; return nil }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.LogLevel = v; return nil }},
	{"LOADER_TIMEOUT", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Loader.Timeout = d
		return nil
	}},
	{"LOADER_RETRY_MAX", intVar(func(c *Config) *int { return &c.Loader.RetryMax })},
	{"LOADER_CACHE_SIZE", intVar(func(c *Config) *int { return &c.Loader.CacheSize })},
	{"LOADER_WORKERS", intVar(func(c *Config) *int { return &c.Loader.Workers })},
	{"LOADER_ALLOW_HTTP", boolVar(func(c *Config) *bool { return &c.Loader.AllowHTTP })},
	{"LOADER_USER_AGENT", func(c *Config, v string) error { c.Loader.UserAgent = v; return nil }},
}

func intVar(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolVar(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

// ApplyEnv overrides fields from RDFUP_* variables found through lookup.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, b := range envBindings {
		v, ok := lookup(EnvPrefix + b.key)
		if !ok {
			continue
		}
		if err := b.set(c, v); err != nil {
			return fmt.Errorf("%s%s=%q: %w", EnvPrefix, b.key, v, err)
		}
	}
	return nil
}
