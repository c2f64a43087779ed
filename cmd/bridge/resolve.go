package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/webbridge/internal/resource"
)

func newResolveCmd() *cobra.Command {
	var (
		configPath string
		root       string
	)

	cmd := &cobra.Command{
		Use:   "resolve <uri>",
		Short: "Resolve a res:// URI against the sandbox root",
		Long: `Resolve a res:// URI against the sandbox root.

  Prints the status, content type and body size the surface would see.
  Exits non-zero when the resource is not found.`,
		Example: `  bridge resolve res://localhost/index.html --root ./www`,
		Args:    cobra.ExactArgs(1),
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

			resp := r.ResolveURI(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s %d\n", resp.Status, resp.ContentType, len(resp.Body))
			if resp.Status != http.StatusOK {
				return fmt.Errorf("%s: %s", args[0], http.StatusText(resp.Status))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "configuration file (.toml, .yaml)")
	cmd.Flags().StringVar(&root, "root", "", "sandbox root, overrides resources.root")
	return cmd
}
