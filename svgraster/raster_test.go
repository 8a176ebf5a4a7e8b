package svgraster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/benoitkugler/turtlesvg/svgdraw"
	"github.com/benoitkugler/turtlesvg/turtle"
)

func testStyle() svgdraw.Style {
	style := svgdraw.DefaultStyle()
	style.LineWidth = 4
	style.MarkerColor = color.NRGBA{255, 0, 0, 255}
	return style
}

func renderPaths(t *testing.T, paths turtle.PathSet) (*Surface, *image.RGBA) {
	s, img, err := NewImage(200, 100, testStyle())
	if err != nil {
		t.Fatal(err)
	}
	r, err := svgdraw.NewRenderer(s)
	if err != nil {
		t.Fatal(err)
	}
	r.Draw(paths)
	return s, img
}

var square = turtle.PathSet{
	{ID: "0", Points: []turtle.Point{{X: 0, Y: 0}, {X: 20, Y: 0}}, FinalHeading: turtle.Heading(0)},
}

func TestNoImage(t *testing.T) {
	var target *svgdraw.SurfaceUnavailableError
	if _, err := NewSurface(nil, svgdraw.DefaultStyle()); !errors.As(err, &target) {
		t.Errorf("expected SurfaceUnavailableError, got %v", err)
	}
	if _, _, err := NewImage(0, 10, svgdraw.DefaultStyle()); !errors.As(err, &target) {
		t.Errorf("expected SurfaceUnavailableError, got %v", err)
	}
}

func TestInvalidStyle(t *testing.T) {
	style := svgdraw.DefaultStyle()
	style.Cap = 9
	if _, _, err := NewImage(10, 10, style); err == nil {
		t.Error("expected error for unknown cap")
	}
}

func TestTransform(t *testing.T) {
	s, _, err := NewImage(200, 100, svgdraw.DefaultStyle())
	if err != nil {
		t.Fatal(err)
	}
	// origin at the center, x stretched by 2
	if x, y := s.Transform().Transform(10, -10); x != 120 || y != 40 {
		t.Errorf("unexpected mapping %v %v", x, y)
	}
}

func TestRaster(t *testing.T) {
	_, img := renderPaths(t, square)

	if c := img.RGBAAt(5, 5); c != (color.RGBA{128, 128, 128, 255}) {
		t.Errorf("expected background, got %v", c)
	}
	// the segment goes from x=100 to x=140 on row 50
	if c := img.RGBAAt(120, 50); c.R > 10 || c.G > 10 || c.B > 10 {
		t.Errorf("expected pen color, got %v", c)
	}
	// the marker points toward +x, from 130 to 150
	if c := img.RGBAAt(144, 50); c.R < 245 || c.G > 10 {
		t.Errorf("expected marker color, got %v", c)
	}
	if c := img.RGBAAt(160, 50); c != (color.RGBA{128, 128, 128, 255}) {
		t.Errorf("expected background after the tip, got %v", c)
	}
}

func TestRedraw(t *testing.T) {
	s, img := renderPaths(t, square)
	first := append([]uint8(nil), img.Pix...)

	r, err := svgdraw.NewRenderer(s)
	if err != nil {
		t.Fatal(err)
	}
	r.Draw(square)
	if !bytes.Equal(first, img.Pix) {
		t.Error("drawing twice should give the same image")
	}

	// an empty set leaves the background only
	r.Draw(nil)
	if c := img.RGBAAt(120, 50); c != (color.RGBA{128, 128, 128, 255}) {
		t.Errorf("expected a cleared image, got %v", c)
	}
}

func TestExport(t *testing.T) {
	s, img := renderPaths(t, square)
	var buf bytes.Buffer
	if err := s.Export(&buf); err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("unexpected bounds %v", decoded.Bounds())
	}
	if s.MediaType() != "image/png" {
		t.Error("unexpected media type")
	}
}
