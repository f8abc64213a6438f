package main

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/health-aggregator/internal/platform/config"
)

const (
	envProfile          = "APP_PROFILE"
	defaultProbeTimeout = 10 * time.Second
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	profile   string
	configDir string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	serve := newServeCmd(opts)

	root := &cobra.Command{
		Use:   "health-aggregator",
		Short: "Aggregates component health checks behind GET /health",
		Long: `health-aggregator runs every registered component check concurrently,
each bounded by its own deadline, and reports the combined verdict as JSON.

Running without a subcommand is the same as "serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	root.PersistentFlags().StringVarP(&opts.profile, "profile", "p", os.Getenv(envProfile),
		"configuration profile (local, prod, ...); defaults to $"+envProfile)
	root.PersistentFlags().StringVar(&opts.configDir, "config-dir", "configs",
		"directory holding base.yaml and {profile}.yaml")

	root.AddCommand(serve, newProbeCmd(opts))

	return root
}

// loadConfig resolves the profile and loads the layered configuration.
func (o *rootOptions) loadConfig(extra ...config.Option) (*config.Config, error) {
	if o.profile == "" {
		return nil, errors.New(envProfile + " environment variable or --profile is required (e.g. local, prod)")
	}
	return config.Load(o.profile, append([]config.Option{config.WithConfigDir(o.configDir)}, extra...)...)
}
