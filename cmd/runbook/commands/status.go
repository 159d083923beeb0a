package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/runbook/internal/app"
	"go.trai.ch/runbook/internal/core/domain"
	"go.trai.ch/runbook/internal/ui/style"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last recorded outcome of every target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses, err := c.app.Status(c.runOptions())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			st := newStyles(w)

			rows := make([][]cell, 0, len(statuses))
			for _, s := range statuses {
				rows = append(rows, statusRow(st, s))
			}

			return renderTable(w, st, []string{"TARGET", "STATE", "DURATION", "STARTED", "DETAIL"}, rows)
		},
	}
}

func statusRow(st styles, s app.TargetStatus) []cell {
	name := cell{text: s.Target.Name, style: st.name}

	rec := s.Record
	if rec == nil {
		return []cell{
			name,
			{text: style.Circle + " never run", style: st.muted},
			{text: "-", style: st.muted},
			{text: "-", style: st.muted},
			{style: st.plain},
		}
	}

	state := cell{text: style.Check + " " + string(rec.State), style: st.success}
	if rec.State != domain.TargetStateSucceeded {
		state = cell{text: style.Cross + " " + string(rec.State), style: st.failure}
	}

	var details []string
	if rec.State == domain.TargetStateFailed {
		details = append(details, failureDetail(rec))
	}
	if s.Changed {
		details = append(details, "definition changed")
	}

	return []cell{
		name,
		state,
		{text: rec.Duration.Round(time.Millisecond).String(), style: st.plain},
		{text: rec.StartedAt.UTC().Format(time.RFC3339), style: st.muted},
		{text: strings.Join(details, "; "), style: st.warning},
	}
}

func failureDetail(rec *domain.RunRecord) string {
	switch {
	case rec.FailedStep == 0:
		return "prerequisite failed"
	case rec.NotStarted:
		return fmt.Sprintf("could not start step %d", rec.FailedStep)
	case rec.Signal != "":
		return fmt.Sprintf("signal %s at step %d", rec.Signal, rec.FailedStep)
	default:
		return fmt.Sprintf("exit code %d at step %d", rec.ExitCode, rec.FailedStep)
	}
}
