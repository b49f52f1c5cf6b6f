// Package redis provides Redis connection configuration options.
package redis

import (
	"fmt"

	"github.com/chopper-ai/chopper-docs/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains Redis connection configuration.
type Options struct {
	// Addr is the Redis server address in host:port form.
	Addr string `json:"addr" mapstructure:"addr"`
	// Password is the Redis password, empty for no auth.
	Password string `json:"-" mapstructure:"password"`
	// DB is the Redis database number.
	DB int `json:"db" mapstructure:"db"`
	// PoolSize is the maximum number of socket connections.
	PoolSize int `json:"pool-size" mapstructure:"pool-size"`
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		Addr:     "127.0.0.1:6379",
		Password: "",
		DB:       0,
		PoolSize: 10,
	}
}

// AddFlags adds flags for Redis options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Addr, options.Join(prefixes...)+"redis.addr", o.Addr, "Address of the Redis server in host:port form.")
	fs.StringVar(&o.Password, options.Join(prefixes...)+"redis.password", o.Password, "Password to authenticate with the Redis server.")
	fs.IntVar(&o.DB, options.Join(prefixes...)+"redis.db", o.DB, "Redis database number.")
	fs.IntVar(&o.PoolSize, options.Join(prefixes...)+"redis.pool-size", o.PoolSize, "Maximum number of socket connections to Redis.")
}

// Validate validates the Redis options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Addr == "" {
		errs = append(errs, fmt.Errorf("redis.addr cannot be empty"))
	}
	if o.DB < 0 {
		errs = append(errs, fmt.Errorf("redis.db must be >= 0"))
	}
	if o.PoolSize < 0 {
		errs = append(errs, fmt.Errorf("redis.pool-size must be >= 0"))
	}
	return errs
}
