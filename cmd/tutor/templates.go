package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/tutorkit/pkg/prompt"
	"github.com/dmitrymomot/tutorkit/pkg/retrieval"
)

func newTemplatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the available hint templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := prompt.DefaultLibrary()

			type row struct {
				Name       string   `json:"name"`
				PrettyName string   `json:"pretty_name"`
				Slots      []string `json:"slots"`
			}
			rows := make([]row, 0, lib.Len())
			for _, name := range lib.Names() {
				entry, err := lib.Get(name)
				if err != nil {
					return err
				}
				var slots []string
				for _, m := range entry.Messages {
					slots = append(slots, retrieval.Placeholders(m.Content)...)
				}
				rows = append(rows, row{Name: entry.Name, PrettyName: entry.PrettyName, Slots: slots})
			}

			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION\tSLOTS")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%v\n", r.Name, r.PrettyName, r.Slots)
			}
			return w.Flush()
		},
	}
}
