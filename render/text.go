package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gdamore/tcell/v2"
	"github.com/pdrpinto/gridastar/grid"
)

const (
	csiFgRGB = "\x1b[38;2;" // followed by R;G;Bm
	csiReset = "\x1b[0m"
)

// Style controls text output.
type Style struct {
	// Color wraps path cells in a truecolor escape when set.
	Color bool
	// PathColor is a colour name or #rrggbb value understood by tcell.
	PathColor string
}

// ResolveColor turns a colour name into a tcell colour.
func ResolveColor(name string) (tcell.Color, error) {
	color := tcell.GetColor(name)
	if color == tcell.ColorDefault {
		return color, fmt.Errorf("unknown colour %q", name)
	}
	return color, nil
}

// Text writes the grid one row per line; path markers are coloured when style asks for it.
func Text(w io.Writer, g *grid.Grid, style Style) error {
	var prefix string
	if style.Color {
		color, err := ResolveColor(style.PathColor)
		if err != nil {
			return err
		}
		r, gr, b := color.RGB()
		prefix = fmt.Sprintf("%s%d;%d;%dm", csiFgRGB, r, gr, b)
	}

	out := bufio.NewWriter(w)
	for _, line := range g.Lines() {
		for _, marker := range line {
			if marker == grid.PathMark && style.Color {
				out.WriteString(prefix)
				out.WriteRune(marker)
				out.WriteString(csiReset)
				continue
			}
			out.WriteRune(marker)
		}
		out.WriteByte('\n')
	}
	return out.Flush()
}
