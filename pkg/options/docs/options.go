// Package docs provides document pipeline configuration options.
package docs

import (
	"fmt"

	"github.com/chopper-ai/chopper-docs/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains document ingestion and retrieval configuration.
type Options struct {
	// ChunkSize is the maximum chunk size in characters.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the overlap between consecutive chunks in characters.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// TopK is the number of results to return from similarity search.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// MaxContextTokens is the token budget for the assembled context prompt.
	MaxContextTokens int `json:"max-context-tokens" mapstructure:"max-context-tokens"`

	// MaxUploadBytes caps the size of a single uploaded file.
	MaxUploadBytes int64 `json:"max-upload-bytes" mapstructure:"max-upload-bytes"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize:        1000,
		ChunkOverlap:     100,
		TopK:             5,
		MaxContextTokens: 4000,
		MaxUploadBytes:   20 << 20,
	}
}

// AddFlags adds flags for document pipeline options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.ChunkSize, options.Join(prefixes...)+"docs.chunk-size", o.ChunkSize, "Maximum chunk size in characters.")
	fs.IntVar(&o.ChunkOverlap, options.Join(prefixes...)+"docs.chunk-overlap", o.ChunkOverlap, "Overlap between consecutive chunks in characters.")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"docs.top-k", o.TopK, "Number of results from similarity search.")
	fs.IntVar(&o.MaxContextTokens, options.Join(prefixes...)+"docs.max-context-tokens", o.MaxContextTokens, "Token budget for assembled context prompts.")
	fs.Int64Var(&o.MaxUploadBytes, options.Join(prefixes...)+"docs.max-upload-bytes", o.MaxUploadBytes, "Maximum size of a single uploaded file in bytes.")
}

// Validate validates the document pipeline options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("chunk-overlap must not be negative"))
	}
	if o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("chunk-overlap must be smaller than chunk-size"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top-k must be positive"))
	}
	if o.MaxContextTokens <= 0 {
		errs = append(errs, fmt.Errorf("max-context-tokens must be positive"))
	}
	return errs
}
