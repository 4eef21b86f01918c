package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/toolrack/pkg/catalog"
	"github.com/matzehuels/toolrack/pkg/tool"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// PickModel - Interactive catalog row selection
// =============================================================================

// PickModel is the bubbletea model for toggling catalog rows on and off.
type PickModel struct {
	Tools  []tool.Tool
	Cursor int
	Height int
	Offset int

	// Saved is set when the user confirmed the selection.
	Saved bool
}

// NewPickModel creates a picker over a copy of tools.
func NewPickModel(tools []tool.Tool) PickModel {
	return PickModel{
		Tools:  append([]tool.Tool(nil), tools...),
		Height: 15,
	}
}

func (m PickModel) Init() tea.Cmd {
	return nil
}

func (m PickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Tools)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Tools) > 0 {
				m.Tools = toggled(m.Tools, m.Cursor)
			}
		case "a":
			m.Tools = withAll(m.Tools, true)
		case "n":
			m.Tools = withAll(m.Tools, false)
		case "enter", "s":
			m.Saved = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

// toggled returns a copy of tools with row i's enabled flag flipped, so
// earlier model values stay unchanged.
func toggled(tools []tool.Tool, i int) []tool.Tool {
	out := append([]tool.Tool(nil), tools...)
	out[i].Enabled = !out[i].Enabled
	return out
}

func withAll(tools []tool.Tool, enabled bool) []tool.Tool {
	out := append([]tool.Tool(nil), tools...)
	for i := range out {
		out[i].Enabled = enabled
	}
	return out
}

// EnabledCount returns how many rows are currently enabled.
func (m PickModel) EnabledCount() int {
	return len(tool.Enabled(m.Tools))
}

func (m PickModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Tools"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  n none  ⏎ save  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Tools))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		t := m.Tools[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		check := "[ ]"
		if t.Enabled {
			check = "[✓]"
		}
		rows = append(rows, []string{
			cursor, check, t.Name,
			fmt.Sprintf("%d,%d", t.Row, t.Col),
			formatMM(t.HandleDiameter), formatMM(t.ShaftDiameter),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Tool", "Cell", "Handle", "Shaft").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Tools) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if m.Tools[idx].Enabled {
				base = base.Foreground(colorGreen)
			} else {
				base = base.Foreground(colorDim)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(tbl.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d enabled", m.Cursor+1, len(m.Tools), m.EnabledCount())))

	return b.String()
}

// =============================================================================
// Command
// =============================================================================

// pickCommand creates the pick command.
func (c *CLI) pickCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pick [catalog]",
		Short: "Interactively enable or disable catalog rows",
		Long: `Interactively enable or disable catalog rows.

Every row is shown, including disabled ones. Saving writes a CSV catalog with
an enabled column: the input itself when it is a CSV file, otherwise a .csv
file next to it, unless -o is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPick(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV file")

	return cmd
}

func (c *CLI) runPick(catalogPath, output string) error {
	tools, err := catalog.LoadAll(catalogPath)
	if err != nil {
		return err
	}
	// A CSV input is rewritten from its own text so placeholder values in
	// disabled rows and extra columns survive.
	var src *catalog.Table
	if isCSV(catalogPath) {
		if src, err = catalog.LoadTable(catalogPath); err != nil {
			return err
		}
	}
	if len(tools) == 0 {
		printInfo("Catalog has no rows")
		return nil
	}

	final, err := tea.NewProgram(NewPickModel(tools)).Run()
	if err != nil {
		return fmt.Errorf("run picker: %w", err)
	}
	m, ok := final.(PickModel)
	if !ok || !m.Saved {
		printInfo("No changes written")
		return nil
	}

	path := pickOutput(catalogPath, output)
	if err := writeCatalog(path, src, m.Tools); err != nil {
		return err
	}
	printSuccess("Saved %d of %d tools enabled", m.EnabledCount(), len(m.Tools))
	printFile(path)
	printNewline()
	printNextStep("Build", appName+" generate "+path)
	return nil
}

// pickOutput chooses where the picker writes its CSV.
func pickOutput(catalogPath, output string) string {
	if output != "" {
		return output
	}
	if isCSV(catalogPath) {
		return catalogPath
	}
	return strings.TrimSuffix(catalogPath, filepath.Ext(catalogPath)) + ".csv"
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// writeCatalog writes the picked tools to path. When src is the table the
// tools were read from, only its enabled cells change.
func writeCatalog(path string, src *catalog.Table, tools []tool.Tool) error {
	var buf bytes.Buffer
	encode := func() error { return catalog.Write(&buf, tools) }
	if src != nil {
		src.Apply(tools)
		encode = func() error { return src.Write(&buf) }
	}
	if err := encode(); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
