package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ashishkumar256/sunspot/config"
)

// rootCommand builds the command tree. Running it bare starts the server.
func rootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "sunspot",
		Short:         "Sunrise and sunset lookup service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to sunspot.yaml (default: ./sunspot.yaml, /etc/sunspot/sunspot.yaml)")
	setupFlags(rootCmd.PersistentFlags())

	load := func(cmd *cobra.Command) (*config.Config, error) {
		return config.Load(cmd.Context(), config.Options{Path: configPath, Flags: cmd.Flags()})
	}

	serveCmd := serveCommand(load)
	rootCmd.RunE = serveCmd.RunE
	rootCmd.AddCommand(
		serveCmd,
		lookupCommand(load),
		hashKeyCommand(),
		versionCommand(),
	)
	return rootCmd
}

type loadFunc func(cmd *cobra.Command) (*config.Config, error)

// setupFlags defines the configuration overrides. Flag names match config
// keys so config.Load can bind them directly.
func setupFlags(flags *pflag.FlagSet) {
	flags.String("server.addr", "", "Listen address")
	flags.Bool("server.diagnostics", false, "Mount crash, factorial, timeout and exhaust endpoints")
	flags.Bool("auth.enabled", true, "Require an API key under /api/")
	flags.String("auth.keys_file", "", "YAML file of API keys")
	flags.String("cache.backend", "", "Sun data cache backend: redis, memory or none")
	flags.String("cache.addr", "", "Redis address")
	flags.String("geocode.cache_backend", "", "Coordinate cache: store, memory, memcache or none")
	flags.String("sunapi.provider", "", "Sun times provider: remote or astral")
	flags.String("dates.timezone", "", "IANA timezone that defines today")
	flags.String("observe.logging.level", "", "Log level: debug, info, warn or error")
}
