package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [targets...]",
		Short: "Run targets and their prerequisites",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			if dryRun {
				plans, err := c.app.Plan(args, c.runOptions())
				if err != nil {
					return err
				}
				return renderPlan(cmd.OutOrStdout(), plans)
			}

			return c.app.Run(cmd.Context(), args, c.runOptions())
		},
	}
	cmd.Flags().BoolP("dry-run", "n", false, "Print the commands that would run without running them")
	return cmd
}
