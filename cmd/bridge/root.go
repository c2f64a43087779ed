package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bridge",
		Short:         "Embedded web surface bridge",
		SilenceUsage:  true,
	}
	root.AddCommand(newServeCmd(), newResolveCmd(), newListCmd())
	return root
}

// loadConfig reads path when set, otherwise the environment.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
