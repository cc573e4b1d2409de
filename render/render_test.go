package render

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/grid"
	. "github.com/smartystreets/goconvey/convey"
)

func solved(lines ...string) (*grid.Grid, astar.Result) {
	g, err := grid.Parse(lines)
	if err != nil {
		panic(err)
	}
	res, err := astar.Search(context.Background(), g)
	if err != nil {
		panic(err)
	}
	return g, res
}

func TestTracePath(t *testing.T) {
	Convey("When a found path is traced", t, func() {
		g, res := solved(
			"S  ",
			"## ",
			"  E",
		)
		So(TracePath(g, res), ShouldBeNil)
		So(g.String(), ShouldEqual, "S. \n##.\n  E")
	})

	Convey("When start and destination are adjacent nothing is marked", t, func() {
		g, res := solved("SE")
		So(TracePath(g, res), ShouldBeNil)
		So(g.String(), ShouldEqual, "SE")
	})

	Convey("When start equals destination nothing is marked", t, func() {
		g, err := grid.New([][]rune{[]rune("S ")}, grid.Coord{}, grid.Coord{})
		So(err, ShouldBeNil)
		res, err := astar.Search(context.Background(), g)
		So(err, ShouldBeNil)
		So(TracePath(g, res), ShouldBeNil)
		So(g.String(), ShouldEqual, "S ")
	})

	Convey("When no path exists tracing is refused", t, func() {
		g, res := solved("S#E")
		So(errors.Is(TracePath(g, res), ErrNoPath), ShouldBeTrue)
		So(g.String(), ShouldEqual, "S#E")
	})
}

func TestText(t *testing.T) {
	g, res := solved(
		"#####",
		"#S E#",
		"#####",
	)
	if err := TracePath(g, res); err != nil {
		t.Fatal(err)
	}

	Convey("When colour is off the grid is written verbatim", t, func() {
		var out bytes.Buffer
		So(Text(&out, g, Style{}), ShouldBeNil)
		So(out.String(), ShouldEqual, "#####\n#S.E#\n#####\n")
	})

	Convey("When colour is on path cells are wrapped in escapes", t, func() {
		var out bytes.Buffer
		So(Text(&out, g, Style{Color: true, PathColor: "#00ff00"}), ShouldBeNil)
		So(out.String(), ShouldContainSubstring, "#S\x1b[38;2;0;255;0m.\x1b[0mE#\n")
		So(strings.Count(out.String(), csiReset), ShouldEqual, 1)
	})

	Convey("When the colour name is unknown", t, func() {
		var out bytes.Buffer
		err := Text(&out, g, Style{Color: true, PathColor: "no-such-colour"})
		So(err, ShouldNotBeNil)
		So(out.Len(), ShouldEqual, 0)
	})
}

func TestViewer(t *testing.T) {
	Convey("When a grid is drawn on a screen", t, func() {
		screen := tcell.NewSimulationScreen("UTF-8")
		So(screen.Init(), ShouldBeNil)
		defer screen.Fini()
		screen.SetSize(20, 10)

		g, res := solved(
			"S  ",
			"## ",
			"  E",
		)
		So(TracePath(g, res), ShouldBeNil)

		viewer := NewViewer(screen, NewTheme(tcell.ColorRed))
		viewer.SetStatus("cost 34")
		viewer.Draw(g)

		mainc, _, style, _ := screen.GetContent(1, 0)
		So(mainc, ShouldEqual, '.')
		fg, _, _ := style.Decompose()
		So(fg, ShouldEqual, tcell.ColorRed)

		mainc, _, _, _ = screen.GetContent(0, 1)
		So(mainc, ShouldEqual, '#')

		mainc, _, _, _ = screen.GetContent(2, 2)
		So(mainc, ShouldEqual, 'E')

		mainc, _, _, _ = screen.GetContent(0, 4)
		So(mainc, ShouldEqual, 'c')

		Convey("When keys arrive the viewer decides whether to close", func() {
			So(viewer.handle(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), g), ShouldBeFalse)
			So(viewer.handle(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), g), ShouldBeTrue)
			So(viewer.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), g), ShouldBeTrue)
			So(viewer.handle(tcell.NewEventResize(30, 12), g), ShouldBeFalse)
			So(viewer.handle(nil, g), ShouldBeTrue)
		})
	})
}

func TestPNG(t *testing.T) {
	Convey("When a traced grid is encoded as PNG", t, func() {
		g, res := solved(
			"S  ",
			"## ",
			"  E",
		)
		So(TracePath(g, res), ShouldBeNil)

		var out bytes.Buffer
		So(PNG(&out, g, 4), ShouldBeNil)

		img, err := png.Decode(&out)
		So(err, ShouldBeNil)
		So(img.Bounds().Dx(), ShouldEqual, 12)
		So(img.Bounds().Dy(), ShouldEqual, 12)

		pixel := func(row, col int) color.RGBA {
			return color.RGBAModel.Convert(img.At(col*4+2, row*4+2)).(color.RGBA)
		}
		So(pixel(0, 1), ShouldResemble, pathFill)
		So(pixel(1, 0), ShouldResemble, wallFill)
		So(pixel(2, 0), ShouldResemble, color.RGBA{255, 255, 255, 255})
	})

	Convey("When the scale is not positive", t, func() {
		g, _ := solved("SE")
		So(PNG(&bytes.Buffer{}, g, 0), ShouldNotBeNil)
	})
}
