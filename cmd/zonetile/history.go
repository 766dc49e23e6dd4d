package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/1broseidon/zonetile/internal/apphistory"
	"github.com/1broseidon/zonetile/internal/config"
)

func newHistoryCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List remembered application zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := g.resolveConfigPath()
			if err != nil {
				return err
			}
			res, err := config.LoadFromPath(path)
			if err != nil {
				return err
			}
			hc := res.Config.History
			if !hc.Enabled {
				return fmt.Errorf("app history is disabled in %s", path)
			}
			store, err := apphistory.Open(hc.Backend, hc.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Entries()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if g.jsonOut {
				return writeJSON(out, entries)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "APP\tMONITOR\tZONES\tUPDATED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%v\t%s\n", e.AppID, e.Area.Monitor, e.Zones.IndexSet(), e.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}
