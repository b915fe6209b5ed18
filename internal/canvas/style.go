package canvas

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Style is the styling carried by a cell. The zero value is unstyled.
type Style struct {
	Fg    colorful.Color
	HasFg bool
	Bold  bool
}

// Fg returns a style with the given foreground color.
func Fg(c colorful.Color) Style {
	return Style{Fg: c, HasFg: true}
}

// WithBold returns s in bold.
func (s Style) WithBold() Style {
	s.Bold = true
	return s
}

// Patch overlays the attributes set in o onto s.
func (s Style) Patch(o Style) Style {
	if o.HasFg {
		s.Fg = o.Fg
		s.HasFg = true
	}
	if o.Bold {
		s.Bold = true
	}
	return s
}

// Lipgloss converts s into a lipgloss style.
func (s Style) Lipgloss() lipgloss.Style {
	st := lipgloss.NewStyle()
	if s.HasFg {
		st = st.Foreground(lipgloss.Color(s.Fg.Hex()))
	}
	if s.Bold {
		st = st.Bold(true)
	}
	return st
}
