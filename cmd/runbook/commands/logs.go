package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newLogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs <target>",
		Short: "Show the output captured during the last run of a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.app.Output(args[0], c.runOptions())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
