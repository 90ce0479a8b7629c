package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/swcache/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete every cache version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")
			return c.app.Clean(cmd.Context(), app.CleanOptions{
				ConfigPath: c.configPath,
				All:        all,
			})
		},
	}

	cmd.Flags().BoolP("all", "a", false, "Also delete the offline queue and progress backup")

	return cmd
}
