package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/toolrack/pkg/catalog"
	"github.com/matzehuels/toolrack/pkg/params"
	"github.com/matzehuels/toolrack/pkg/render"
)

// layoutCommand creates the layout command for inspecting the computed grid.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		paramsFile string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "layout [catalog]",
		Short: "Print the computed grid for a tool catalog",
		Long: `Print the computed grid for a tool catalog.

Shows every enabled tool with its hole center and label anchor, plus the
column widths, row depths and overall part size. Spacing and mount hole
checks are not applied, so a layout can be inspected before it is fixed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], paramsFile, noCache)
		},
	}

	cmd.Flags().StringVarP(&paramsFile, "params", "p", "", "parameter file (.toml, .yaml)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, catalogPath, paramsFile string, noCache bool) error {
	tools, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}
	p, err := params.Load(paramsFile)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	summary, hit, err := runner.Layout(ctx, tools, p)
	if err != nil {
		return err
	}
	prog.done("Computed layout")

	fmt.Println(layoutTable(summary))
	printKeyValue("Columns", joinMM(summary.ColWidths))
	printKeyValue("Rows", joinMM(summary.RowDepths))
	printKeyValue("Stack", formatMM(summary.StackHeight)+" mm")
	printStats(len(summary.Tools), summary.Rows, summary.Cols, summary.PartWidth, summary.PartDepth, hit)
	printNewline()
	printNextStep("Build", appName+" generate "+catalogPath)

	return nil
}

// layoutTable renders the placed tools as a table. Clamped labels are
// highlighted.
func layoutTable(s render.LayoutSummary) string {
	rows := make([][]string, 0, len(s.Tools))
	for _, t := range s.Tools {
		rows = append(rows, []string{
			t.Name,
			strconv.Itoa(t.Row),
			strconv.Itoa(t.Col),
			formatMM(t.HandleDiameter),
			formatMM(t.ShaftDiameter),
			fmt.Sprintf("%s, %s", formatMM(t.Center.X), formatMM(t.Center.Y)),
			fmt.Sprintf("%s, %s", formatMM(t.Label.X), formatMM(t.Label.Y)),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Tool", "Row", "Col", "Handle", "Shaft", "Center", "Label").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < len(s.Tools) && s.Tools[row].LabelClamped && col == 6 {
				return base.Foreground(colorYellow)
			}
			if col == 0 {
				return base.Foreground(colorCyan)
			}
			return base
		})
	return tbl.Render()
}

func joinMM(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatMM(v)
	}
	return strings.Join(parts, " / ") + " mm"
}
