package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/lectern/internal/recording"
)

var styles = NewPalette(Colors{
	Title: "#7D56F4",
	OK:    "#04B575",
	Err:   "#FF0000",
	Warn:  "#FFA500",
	Muted: "#626262",
})

// Colors holds the hex foregrounds a [Palette] is built from.
type Colors struct {
	Title, OK, Err, Warn, Muted string
}

// Palette is the stylesheet shared by the dashboard and recorder views.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	body  lipgloss.Style
}

func NewPalette(c Colors) *Palette {
	fg := func(hex string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
	}
	return &Palette{
		title: fg(c.Title).Bold(true).MarginBottom(1),
		ok:    fg(c.OK).Bold(true),
		err:   fg(c.Err).Bold(true),
		warn:  fg(c.Warn),
		help:  fg(c.Muted).Italic(true),
		body:  lipgloss.NewStyle().PaddingLeft(2),
	}
}

// Badge renders the recorder indicator for state.
func (p *Palette) Badge(state recording.State) string {
	switch state {
	case recording.Recording:
		return p.err.Render("● REC")
	case recording.Paused:
		return p.warn.Render("❚❚ PAUSED")
	case recording.Stopped:
		return p.ok.Render("■ STOPPED")
	default:
		return p.help.Render("○ IDLE")
	}
}
