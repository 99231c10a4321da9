package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/scene"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // node ids, titles
	colorGreen  = lipgloss.Color("35")  // edits that landed
	colorYellow = lipgloss.Color("220") // data the save format drops
	colorRed    = lipgloss.Color("167") // failures
	colorBlue   = lipgloss.Color("75")  // suggested commands
	colorWhite  = lipgloss.Color("255") // paths, coordinates
	colorGray   = lipgloss.Color("245") // table headers, wire sources
	colorDim    = lipgloss.Color("240") // z-index, help text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleMarkOK      = lipgloss.NewStyle().Foreground(colorGreen)
	styleMarkFail    = lipgloss.NewStyle().Foreground(colorRed)
	styleMarkWarn    = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	markOK   = "✓"
	markFail = "✗"
	markWarn = "!"
	markFile = "→"
)

// nodeRef styles a node id for status lines.
func nodeRef(id scene.NodeID) string { return StyleHighlight.Render(string(id)) }

// pointRef styles a world-space point, e.g. "(5, -6)".
func pointRef(p geom.Vec2) string { return StyleValue.Render(fmtVec(p)) }

// =============================================================================
// Status Lines
// =============================================================================

// status prints human-facing progress lines. Commands point it at
// cmd.ErrOrStderr() so scene data written to stdout stays pipeable.
type status struct{ w io.Writer }

func statusTo(w io.Writer) status { return status{w: w} }

func (s status) line(mark lipgloss.Style, icon, msg string) {
	fmt.Fprintln(s.w, mark.Render(icon)+" "+msg)
}

// success reports an edit or write that landed.
func (s status) success(format string, args ...any) {
	s.line(styleMarkOK, markOK, fmt.Sprintf(format, args...))
}

// failure reports an operation that did not complete.
func (s status) failure(format string, args ...any) {
	s.line(styleMarkFail, markFail, fmt.Sprintf(format, args...))
}

// warning reports something the user should act on, e.g. data a scene file
// will not keep.
func (s status) warning(format string, args ...any) {
	s.line(styleMarkWarn, markWarn, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// file names a file that was written.
func (s status) file(path string) {
	fmt.Fprintln(s.w, "  "+StyleDim.Render(markFile)+" "+StyleValue.Render(path))
}

func (s status) keyValue(key, value string) {
	fmt.Fprintln(s.w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// nextStep suggests the command that usually follows.
func (s status) nextStep(description, cmd string) {
	fmt.Fprintln(s.w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
