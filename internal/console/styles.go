package console

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Palette.
var (
	ColorAccent  = lipgloss.Color("#2CD7C7")
	ColorNotice  = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorMuted   = lipgloss.Color("#2C4A54")
	ColorSuccess = lipgloss.Color("#20B9B4")
)

// Styles renders console output. Colours are dropped automatically when
// the writer is not a terminal.
type Styles struct {
	Prompt  lipgloss.Style
	Title   lipgloss.Style
	Index   lipgloss.Style
	Success lipgloss.Style
	Notice  lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles returns styles bound to w's colour capabilities.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Prompt:  r.NewStyle().Foreground(ColorAccent),
		Title:   r.NewStyle().Foreground(ColorAccent),
		Index:   r.NewStyle().Foreground(ColorMuted),
		Success: r.NewStyle().Foreground(ColorSuccess),
		Notice:  r.NewStyle().Foreground(ColorNotice),
		Error:   r.NewStyle().Foreground(ColorError),
		Muted:   r.NewStyle().Foreground(ColorMuted),
	}
}

// Interactive reports whether f is a terminal, in which case the console
// prints a prompt before each line.
func Interactive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
