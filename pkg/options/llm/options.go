// Package llm provides embedding provider configuration options.
package llm

import (
	"fmt"
	"time"

	"github.com/chopper-ai/chopper-docs/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// ProviderOptions configures an embedding provider.
//
// One provider and one model are pinned at startup; chunks and queries are
// always embedded with the same model so similarity scores stay comparable.
type ProviderOptions struct {
	// Provider is the provider name (ollama, openai).
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL is the provider API base URL.
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey is the API key (required for openai).
	APIKey string `json:"api-key" mapstructure:"api-key"`

	// Model is the embedding model name.
	Model string `json:"model" mapstructure:"model"`

	// Dimensions is the expected embedding vector dimensionality.
	Dimensions int `json:"dimensions" mapstructure:"dimensions"`

	// Timeout bounds each embedding request.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries is the maximum number of retries for failed requests.
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`
}

// NewProviderOptions creates default embedding provider options.
func NewProviderOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:   "ollama",
		BaseURL:    "http://localhost:11434",
		Model:      "nomic-embed-text",
		Dimensions: 768,
		Timeout:    120 * time.Second,
		MaxRetries: 3,
	}
}

// ToConfigMap converts the options to a config map for provider factories.
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":    o.BaseURL,
		"api_key":     o.APIKey,
		"model":       o.Model,
		"dimensions":  o.Dimensions,
		"timeout":     o.Timeout,
		"max_retries": o.MaxRetries,
	}
}

// AddFlags adds flags for embedding provider options to the specified FlagSet.
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Provider, options.Join(prefixes...)+"embedding.provider", o.Provider, "Embedding provider (ollama, openai).")
	fs.StringVar(&o.BaseURL, options.Join(prefixes...)+"embedding.base-url", o.BaseURL, "Embedding API base URL.")
	fs.StringVar(&o.APIKey, options.Join(prefixes...)+"embedding.api-key", o.APIKey, "Embedding API key.")
	fs.StringVar(&o.Model, options.Join(prefixes...)+"embedding.model", o.Model, "Embedding model name.")
	fs.IntVar(&o.Dimensions, options.Join(prefixes...)+"embedding.dimensions", o.Dimensions, "Embedding vector dimensionality.")
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+"embedding.timeout", o.Timeout, "Embedding request timeout.")
	fs.IntVar(&o.MaxRetries, options.Join(prefixes...)+"embedding.max-retries", o.MaxRetries, "Maximum number of retries for failed requests.")
}

// Validate validates the embedding provider options.
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("embedding provider is required"))
	}
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("embedding base-url is required"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("embedding model is required"))
	}
	if o.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("embedding dimensions must be positive"))
	}
	if o.Provider == "openai" && o.APIKey == "" {
		errs = append(errs, fmt.Errorf("api-key is required for openai provider"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("embedding timeout must be positive"))
	}
	return errs
}

// Complete completes the embedding provider options with defaults.
func (o *ProviderOptions) Complete() error {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	return nil
}
