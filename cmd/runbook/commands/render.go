package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.trai.ch/runbook/internal/core/domain"
	"go.trai.ch/runbook/internal/ui/output"
	"go.trai.ch/runbook/internal/ui/style"
)

type styles struct {
	header  lipgloss.Style
	name    lipgloss.Style
	plain   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := output.Renderer(w)
	return styles{
		header:  r.NewStyle().Bold(true),
		name:    r.NewStyle().Foreground(style.Accent).Bold(true),
		plain:   r.NewStyle(),
		muted:   r.NewStyle().Foreground(style.Slate),
		success: r.NewStyle().Foreground(style.Green),
		failure: r.NewStyle().Foreground(style.Red),
		warning: r.NewStyle().Foreground(style.Yellow),
	}
}

type cell struct {
	text  string
	style lipgloss.Style
}

const columnGap = 2

// renderTable writes a borderless table with left-aligned columns sized to their widest cell.
func renderTable(w io.Writer, st styles, header []string, rows [][]cell) error {
	data := make([][]string, len(rows))
	for i, row := range rows {
		data[i] = make([]string, len(row))
		for j, c := range row {
			data[i][j] = c.text
		}
	}

	last := len(header) - 1
	t := table.New().
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		Headers(header...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := st.header
			if row != table.HeaderRow {
				s = rows[row][col].style
			}
			if col < last {
				s = s.PaddingRight(columnGap)
			}
			return s
		})

	// Cells are padded to the column width; trailing blanks carry no style.
	for _, line := range strings.Split(t.String(), "\n") {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// renderPlan writes the commands each requested target would run, prerequisites first.
func renderPlan(w io.Writer, plans [][]domain.Target) error {
	st := newStyles(w)

	for _, chain := range plans {
		if len(chain) == 0 {
			continue
		}
		requested := chain[len(chain)-1].Name
		if _, err := fmt.Fprintln(w, st.header.Render(requested)); err != nil {
			return err
		}

		for _, target := range chain {
			for i, step := range target.Steps {
				line := fmt.Sprintf("  %s %s %s",
					st.name.Render(fmt.Sprintf("[%s %d/%d]", target.Name, i+1, len(target.Steps))),
					style.Arrow,
					commandWithEnv(step),
				)
				if _, err := fmt.Fprintln(w, line); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func commandWithEnv(step domain.Step) string {
	parts := make([]string, 0, len(step.Environment)+1)
	for _, k := range slices.Sorted(maps.Keys(step.Environment)) {
		parts = append(parts, k+"="+step.Environment[k])
	}
	parts = append(parts, step.CommandLine())

	cmd := strings.Join(parts, " ")
	if step.WorkingDir != "" {
		cmd = fmt.Sprintf("(cd %s && %s)", step.WorkingDir, cmd)
	}
	return cmd
}
