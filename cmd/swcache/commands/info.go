package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *CLI) newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the stored caches and their entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := c.app.Info(cmd.Context(), c.configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			_, _ = fmt.Fprintf(out, "version: %s\n", info.Version)
			if len(info.Caches) == 0 {
				_, _ = fmt.Fprintln(out, "no caches")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "CACHE\tENTRIES")
			for _, cache := range info.Caches {
				_, _ = fmt.Fprintf(tw, "%s\t%d\n", cache.Name, cache.Entries)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Bool("json", false, "Print the cache info as JSON")
	return cmd
}
