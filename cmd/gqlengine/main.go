package main

import (
	"fmt"
	"os"

	config "github.com/hanpama/gqlengine/internal/config"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "v0.0.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "gqlengine",
		Short:        "Execute GraphQL operations against an SDL schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringSlice("schema", nil, "SDL schema file; repeatable")
	root.PersistentFlags().String("data", "", "YAML or JSON file used as the root value")

	root.AddCommand(
		newServeCmd(),
		newExecCmd(),
		newValidateCmd(),
		newPrintSchemaCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of gqlengine",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gqlengine %s\n", version)
		},
	}
}

// loadConfig reads --config when given and applies flags set on the
// command line over it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("schema") {
		cfg.Schema.Files, _ = flags.GetStringSlice("schema")
	}
	if flags.Changed("data") {
		cfg.Schema.Data, _ = flags.GetString("data")
	}
	if f := flags.Lookup("introspection"); f != nil && f.Changed {
		cfg.Executor.Introspection, _ = flags.GetBool("introspection")
	}
	if f := flags.Lookup("max-concurrency"); f != nil && f.Changed {
		cfg.Executor.MaxConcurrency, _ = flags.GetInt("max-concurrency")
	}
	if f := flags.Lookup("addr"); f != nil && f.Changed {
		cfg.Server.Addr, _ = flags.GetString("addr")
	}
	if f := flags.Lookup("path"); f != nil && f.Changed {
		cfg.Server.Path, _ = flags.GetString("path")
	}
	if f := flags.Lookup("timeout"); f != nil && f.Changed {
		cfg.Server.Timeout, _ = flags.GetString("timeout")
	}
	if f := flags.Lookup("pretty"); f != nil && f.Changed {
		cfg.Server.Pretty, _ = flags.GetBool("pretty")
	}
	if f := flags.Lookup("max-body-bytes"); f != nil && f.Changed {
		cfg.Server.MaxBodyBytes, _ = flags.GetInt64("max-body-bytes")
	}
	if f := flags.Lookup("cors-origin"); f != nil && f.Changed {
		cfg.Server.CORSOrigins, _ = flags.GetStringSlice("cors-origin")
	}
	if f := flags.Lookup("metadata-header"); f != nil && f.Changed {
		cfg.Server.MetadataHeaders, _ = flags.GetStringSlice("metadata-header")
	}
	if f := flags.Lookup("log-level"); f != nil && f.Changed {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if f := flags.Lookup("log-format"); f != nil && f.Changed {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if f := flags.Lookup("otel-endpoint"); f != nil && f.Changed {
		cfg.Opentelemetry.Endpoint, _ = flags.GetString("otel-endpoint")
	}
	if f := flags.Lookup("otel-service"); f != nil && f.Changed {
		cfg.Opentelemetry.ServiceName, _ = flags.GetString("otel-service")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
