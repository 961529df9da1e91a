package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/swiss-mcp/mcp-commons/internal/config"
	"github.com/swiss-mcp/mcp-commons/pkg/client"
	"github.com/swiss-mcp/mcp-commons/pkg/logging"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          appName,
		Short:        "Cached, retrying gateway for upstream JSON APIs",
		Version:      client.Version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file (MCP_* environment variables override it)")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newFetchCmd(&configPath))

	return root
}

// loadConfig reads the configuration and sets up logging from it.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	logCfg := cfg.LoggingConfig(appName, client.Version)
	logCfg.Output = cmd.ErrOrStderr()
	logger := logging.Setup(logCfg)

	return cfg, logger, nil
}
