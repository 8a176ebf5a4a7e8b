// Implements a raster backend to render turtle paths,
// by wrapping rasterx.
package svgraster

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/benoitkugler/turtlesvg/svgdraw"
	"github.com/benoitkugler/turtlesvg/svgpath"
	"github.com/benoitkugler/turtlesvg/turtle"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
)

var _ svgdraw.Exporter = (*Surface)(nil) // assert interface conformance

// MediaType is the content type of the exported image.
const MediaType = "image/png"

// Surface paints immediately on an image: cleared pixels
// are lost, so every draw starts from the background.
type Surface struct {
	img   draw.Image
	style svgdraw.Style

	// maps payload coordinates to pixels, set once
	transform svgpath.Matrix2D

	dasher  *rasterx.Dasher // to avoid shared state
	filler  *rasterx.Filler // we use separated instance
	artwork svgpath.Path
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgdraw.Round: rasterx.Round,
		svgdraw.Bevel: rasterx.Bevel,
		svgdraw.Miter: rasterx.Miter,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgdraw.RoundCap:  rasterx.RoundCap,
		svgdraw.ButtCap:   rasterx.ButtCap,
		svgdraw.SquareCap: rasterx.SquareCap,
	}
)

// NewSurface returns a surface painting on `img`. The payload
// origin is placed at the center of the image, and the x axis is
// stretched by the width/height ratio. Coordinates are relative
// to the image bounds.
func NewSurface(img draw.Image, style svgdraw.Style) (*Surface, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, &svgdraw.SurfaceUnavailableError{Reason: "empty image"}
	}
	if err := style.Validate(); err != nil {
		return nil, fmt.Errorf("invalid style: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// each drawer has its own scanner, since rasterx scanners
	// hold the color
	rd := &Surface{
		img:   img,
		style: style,
		transform: svgpath.Identity.
			Translate(float64(w)/2, float64(h)/2).
			Scale(float64(w)/float64(h), 1),
		dasher:  rasterx.NewDasher(w, h, rasterx.NewScannerGV(w, h, img, bounds)),
		filler:  rasterx.NewFiller(w, h, rasterx.NewScannerGV(w, h, img, bounds)),
		artwork: style.Artwork(),
	}
	rd.dasher.SetStroke(
		fixed.Int26_6(style.LineWidth*64), 4*64,
		capToFunc[style.Cap], capToFunc[style.Cap], rasterx.RoundGap,
		joinToJoin[style.Join], nil, 0,
	)
	return rd, nil
}

// NewImage allocates a RGBA image of the given size and
// returns a surface painting on it.
func NewImage(width, height int, style svgdraw.Style) (*Surface, *image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	s, err := NewSurface(img, style)
	return s, img, err
}

// Transform returns the mapping from payload coordinates to pixels.
func (rd *Surface) Transform() svgpath.Matrix2D { return rd.transform }

// Clear repaints the whole image with the background color.
func (rd *Surface) Clear() {
	draw.Draw(rd.img, rd.img.Bounds(), image.NewUniform(rd.style.Background), image.Point{}, draw.Src)
}

// Segment strokes a line with the pen color.
func (rd *Surface) Segment(_ string, from, to turtle.Point) {
	rd.dasher.Clear()
	rd.dasher.SetColor(rd.style.Stroke)
	rd.dasher.Start(rd.transform.TFixed(svgpath.ToFixed(from.X, from.Y)))
	rd.dasher.Line(rd.transform.TFixed(svgpath.ToFixed(to.X, to.Y)))
	rd.dasher.Stop(false)
	rd.dasher.Draw()
}

// Marker fills the artwork, turned by `rotation` degrees
// around its center, placed at `at`.
func (rd *Surface) Marker(_ string, at turtle.Point, rotation float64) {
	m := rd.transform.Translate(at.X, at.Y).Rotate(svgpath.Deg2Rad(rotation))
	rd.filler.Clear()
	rd.filler.SetColor(rd.style.MarkerColor)
	rd.artwork.DrawTo(rd.filler, m)
	rd.filler.Draw()
}

// Export encodes the image as PNG.
func (rd *Surface) Export(w io.Writer) error {
	return png.Encode(w, rd.img)
}

// MediaType implements svgdraw.Exporter.
func (rd *Surface) MediaType() string { return MediaType }
