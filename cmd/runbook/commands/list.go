package commands

import (
	"strconv"

	"github.com/spf13/cobra"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the available targets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targets, err := c.app.List(c.runOptions())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			st := newStyles(w)

			rows := make([][]cell, 0, len(targets))
			for _, t := range targets {
				requires := "-"
				if t.HasPrerequisite() {
					requires = t.Prerequisite
				}
				rows = append(rows, []cell{
					{text: t.Name, style: st.name},
					{text: requires, style: st.plain},
					{text: strconv.Itoa(len(t.Steps)), style: st.plain},
					{text: t.Description, style: st.muted},
				})
			}

			return renderTable(w, st, []string{"TARGET", "REQUIRES", "STEPS", "DESCRIPTION"}, rows)
		},
	}
}
