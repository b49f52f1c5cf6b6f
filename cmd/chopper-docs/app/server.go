// Package app provides the document server application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chopper-ai/chopper-docs/cmd/chopper-docs/app/options"
	"github.com/chopper-ai/chopper-docs/pkg/app"
)

const (
	// Name is the name of the application.
	Name = "chopper-docs"

	// commandDesc is the description of the command.
	commandDesc = `Chopper document service

The document ingestion and retrieval service for the Chopper platform.

This server provides:
  - Document text extraction (PDF, DOCX, plain text)
  - Boundary-aware chunking with vector embeddings
  - Tenant-scoped semantic similarity search
  - Token-budgeted context prompt assembly`
)

// configFile is the path of the configuration file, set by the --config flag.
var configFile string

// NewDocsCommand creates the root *cobra.Command for the document server.
func NewDocsCommand() *cobra.Command {
	opts := options.NewServerOptions()

	cmd := &cobra.Command{
		Use:          Name,
		Short:        "Chopper document ingestion and retrieval service",
		Long:         commandDesc,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, opts); err != nil {
				return err
			}
			return run(opts)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to the configuration file.")
	opts.AddFlags(cmd.Flags())

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(app.GetVersionInfo().String())
		},
	}
	cmd.AddCommand(versionCmd)

	return cmd
}

// loadConfig reads the configuration file and environment variables into opts.
// Flag values take precedence over file values, file values over defaults.
func loadConfig(cmd *cobra.Command, opts *options.ServerOptions) error {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(Name)
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/" + Name)
	}

	v.SetEnvPrefix("CHOPPER_DOCS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine when not explicitly requested
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := v.Unmarshal(opts); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

// run contains the main logic for initializing and running the server.
func run(opts *options.ServerOptions) error {
	if err := opts.Complete(); err != nil {
		return fmt.Errorf("failed to complete options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	cfg, err := opts.Config()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := setupSignalContext()

	server, err := cfg.NewServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return server.Run(ctx)
}

// setupSignalContext returns a context that is cancelled on SIGINT or SIGTERM.
// A second signal forces immediate exit.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
