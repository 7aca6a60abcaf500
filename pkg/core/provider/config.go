package provider

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Config holds per-provider settings as loaded from the config file. Keys are
// matched case-insensitively since viper lowercases them.
type Config map[string]any

func (c Config) lookup(key string) (any, bool) {
	if v, ok := c[key]; ok {
		return v, true
	}
	for k, v := range c {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether key is set.
func (c Config) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

func (c Config) String(key string) string {
	v, _ := c.lookup(key)
	return cast.ToString(v)
}

// StringOr returns the value of key or def when it is unset or empty.
func (c Config) StringOr(key, def string) string {
	if s := c.String(key); s != "" {
		return s
	}
	return def
}

func (c Config) Int(key string) int {
	v, _ := c.lookup(key)
	return cast.ToInt(v)
}

func (c Config) Bool(key string) bool {
	v, _ := c.lookup(key)
	return cast.ToBool(v)
}

// Duration accepts durations, "30s" style strings and integer nanoseconds.
func (c Config) Duration(key string) time.Duration {
	v, _ := c.lookup(key)
	return cast.ToDuration(v)
}

func (c Config) StringSlice(key string) []string {
	v, _ := c.lookup(key)
	return cast.ToStringSlice(v)
}
