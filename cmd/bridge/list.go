package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/resource"
)

func newListCmd() *cobra.Command {
	var (
		configPath string
		root       string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List the res:// URIs servable from the sandbox root",
		Example: `  bridge list --root ./www`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if root != "" {
				cfg.Resources.Root = root
			}

			r, err := resource.NewFromConfig(cfg.Resources)
			if err != nil {
				return err
			}
			uris, err := r.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", cfg.Resources.Root, err)
			}
			for _, uri := range uris {
				fmt.Fprintln(cmd.OutOrStdout(), uri)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "configuration file (.toml, .yaml)")
	cmd.Flags().StringVar(&root, "root", "", "sandbox root, overrides resources.root")
	return cmd
}
