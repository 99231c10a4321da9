package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/scene"
	"github.com/matzehuels/nodecanvas/pkg/workspace"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the "inspect" command, an interactive node browser.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Browse, raise and delete nodes interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openScene(args[0])
			if err != nil {
				return err
			}
			final, err := tea.NewProgram(newInspectModel(withLogger(cmd.Context(), c.Logger), ws, args[0])).Run()
			if err != nil {
				return fmt.Errorf("inspector: %w", err)
			}
			m := final.(inspectModel)
			if m.err != nil {
				return m.err
			}
			if m.saved > 0 {
				statusTo(cmd.ErrOrStderr()).success("Wrote %s", args[0])
			}
			return nil
		},
	}
}

// =============================================================================
// inspectModel - Interactive node browser
// =============================================================================

// inspectModel is the bubbletea model behind "inspect". Rows are listed in
// paint order, topmost last.
type inspectModel struct {
	ctx  context.Context
	ws   *workspace.Workspace
	path string

	rows   []nodeRow
	cursor int
	offset int
	height int

	dirty       bool
	confirmQuit bool
	saved       int
	status      string
	err         error
}

func newInspectModel(ctx context.Context, ws *workspace.Workspace, path string) inspectModel {
	m := inspectModel{ctx: ctx, ws: ws, path: path, height: 15}
	m.refresh()
	return m
}

// refresh reloads rows from the workspace and keeps the cursor in range.
func (m *inspectModel) refresh() {
	m.ws.View(func(c *scene.GeometryCache) { m.rows = nodeRows(c) })
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scroll()
}

func (m *inspectModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// selected returns the id under the cursor.
func (m inspectModel) selected() (scene.NodeID, bool) {
	if len(m.rows) == 0 {
		return "", false
	}
	return m.rows[m.cursor].ID, true
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if key != "q" && key != "esc" {
			m.confirmQuit = false
		}
		switch key {
		case "ctrl+c":
			return m, tea.Quit
		case "q", "esc":
			if m.dirty && !m.confirmQuit {
				m.confirmQuit = true
				m.status = StyleWarning.Render("unsaved changes: w to write, q again to discard")
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.scroll()
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				m.scroll()
			}
		case "r":
			if id, ok := m.selected(); ok {
				m.apply(m.ws.Raise(m.ctx, id), "raised "+string(id))
				m.cursor = len(m.rows) - 1
				m.scroll()
			}
		case "d", "delete":
			if id, ok := m.selected(); ok {
				m.apply(m.ws.Remove(m.ctx, id), "removed "+string(id))
			}
		case "w":
			if err := writeScene(m.ctx, m.ws, m.path); err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.dirty = false
			m.saved++
			m.status = StyleSuccess.Render("wrote " + m.path)
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
		m.scroll()
	}
	return m, nil
}

// apply records the outcome of an edit.
func (m *inspectModel) apply(err error, done string) {
	if err != nil {
		m.status = StyleWarning.Render(err.Error())
		return
	}
	m.dirty = true
	m.status = done
	m.refresh()
}

func (m inspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Inspect " + m.path))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  r raise  d delete  w write  q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(listDimStyle.Render("  (empty scene)"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table())
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	return b.String()
}

func (m inspectModel) table() string {
	end := min(m.offset+m.height, len(m.rows))
	cells := [][]string{}
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		cells = append(cells, []string{
			cursor,
			fmt.Sprintf("%d", r.Z),
			string(r.ID),
			r.Label,
			fmt.Sprintf("%g, %g", r.X, r.Y),
			fmt.Sprintf("%d/%d", r.Connected, r.Inputs),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Z", "ID", "Label", "Position", "Wired").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			if col == 1 {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
