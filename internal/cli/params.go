package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/toolrack/pkg/params"
)

// paramsCommand creates the params command.
func (c *CLI) paramsCommand() *cobra.Command {
	var (
		initPath string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "params",
		Short: "List parameters or write a default parameter file",
		Long: `List every holder parameter with its default value.

With --init, write the defaults as a commented TOML file instead. Lengths
accept mm, cm, m and in suffixes; angles accept deg and rad.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if initPath != "" {
				if err := writeDefaultParams(initPath, force); err != nil {
					return err
				}
				printSuccess("Wrote default parameters")
				printFile(initPath)
				printNewline()
				printNextStep("Use them", appName+" generate CATALOG -p "+initPath)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), paramsTable(params.Definitions()))
			return nil
		},
	}

	cmd.Flags().StringVar(&initPath, "init", "", "write default parameters to this TOML file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

// writeDefaultParams writes the default set to path. Existing files are kept
// unless force is set.
func writeDefaultParams(path string, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := params.WriteTOML(f, params.Defaults()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func paramsTable(defs []params.Definition) string {
	rows := make([][]string, len(defs))
	for i, d := range defs {
		rows[i] = []string{d.Name, d.Default.String(), d.Description}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Parameter", "Default", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
			case col == 1:
				return lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
		}).
		Render()
}
