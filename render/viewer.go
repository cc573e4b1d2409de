package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/pdrpinto/gridastar/grid"
)

// Theme holds the cell styles used on a tcell screen.
type Theme struct {
	Open        tcell.Style
	Wall        tcell.Style
	Start       tcell.Style
	Destination tcell.Style
	Path        tcell.Style
	Status      tcell.Style
}

// NewTheme builds the default theme with the path drawn in pathColor.
func NewTheme(pathColor tcell.Color) Theme {
	return Theme{
		Open:        tcell.StyleDefault,
		Wall:        tcell.StyleDefault.Foreground(tcell.ColorGray),
		Start:       tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true),
		Destination: tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true),
		Path:        tcell.StyleDefault.Foreground(pathColor).Bold(true),
		Status:      tcell.StyleDefault.Reverse(true),
	}
}

func (t Theme) styleFor(marker rune) tcell.Style {
	switch marker {
	case grid.Open:
		return t.Open
	case grid.Start:
		return t.Start
	case grid.Destination:
		return t.Destination
	case grid.PathMark:
		return t.Path
	default:
		return t.Wall
	}
}

// Viewer shows a grid on a tcell screen until the user dismisses it.
type Viewer struct {
	screen tcell.Screen
	theme  Theme
	status string
}

// NewViewer wraps an initialised screen.
func NewViewer(screen tcell.Screen, theme Theme) *Viewer {
	return &Viewer{screen: screen, theme: theme}
}

// SetStatus sets the line drawn beneath the grid.
func (v *Viewer) SetStatus(status string) { v.status = status }

// Draw paints g from the top-left corner and the status line under it.
func (v *Viewer) Draw(g *grid.Grid) {
	v.screen.Clear()
	g.Each(func(c grid.Coord, marker rune) {
		v.screen.SetContent(c.Col, c.Row, marker, nil, v.theme.styleFor(marker))
	})
	for i, r := range []rune(v.status) {
		v.screen.SetContent(i, g.Rows()+1, r, nil, v.theme.Status)
	}
	v.screen.Show()
}

// Show draws g and blocks until q, Esc or Enter is pressed, redrawing on resize.
func (v *Viewer) Show(g *grid.Grid) {
	v.Draw(g)
	for {
		if v.handle(v.screen.PollEvent(), g) {
			return
		}
	}
}

// handle reacts to one event and reports whether the viewer should close.
func (v *Viewer) handle(ev tcell.Event, g *grid.Grid) bool {
	switch ev := ev.(type) {
	case nil:
		// screen finalised
		return true
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyEnter, tcell.KeyCtrlC:
			return true
		case tcell.KeyRune:
			return ev.Rune() == 'q'
		}
	case *tcell.EventResize:
		v.screen.Sync()
		v.Draw(g)
	}
	return false
}
