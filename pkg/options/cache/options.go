// Package cache provides retrieval cache configuration options.
package cache

import (
	"fmt"
	"time"

	"github.com/chopper-ai/chopper-docs/pkg/options"
	redisopts "github.com/chopper-ai/chopper-docs/pkg/options/redis"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains retrieval cache configuration.
type Options struct {
	// Enabled toggles the Redis-backed retrieval cache.
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// TTL is how long cached retrieval results stay valid.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`
	// KeyPrefix namespaces cache keys in Redis.
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`
	// Redis holds the connection settings for the cache backend.
	Redis *redisopts.Options `json:"redis" mapstructure:"redis"`
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		Enabled:   false,
		TTL:       5 * time.Minute,
		KeyPrefix: "docs:query:",
		Redis:     redisopts.NewOptions(),
	}
}

// AddFlags adds flags for cache options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.Enabled, options.Join(prefixes...)+"cache.enabled", o.Enabled, "Enable the Redis-backed retrieval cache.")
	fs.DurationVar(&o.TTL, options.Join(prefixes...)+"cache.ttl", o.TTL, "Time-to-live for cached retrieval results.")
	fs.StringVar(&o.KeyPrefix, options.Join(prefixes...)+"cache.key-prefix", o.KeyPrefix, "Prefix for retrieval cache keys in Redis.")

	o.Redis.AddFlags(fs, append(prefixes, "cache")...)
}

// Validate validates the cache options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if !o.Enabled {
		return errs
	}
	if o.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive when the cache is enabled"))
	}
	if o.KeyPrefix == "" {
		errs = append(errs, fmt.Errorf("cache.key-prefix cannot be empty when the cache is enabled"))
	}
	errs = append(errs, o.Redis.Validate()...)
	return errs
}
