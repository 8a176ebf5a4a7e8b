// Implements a PDF backend to render turtle paths,
// by wrapping github.com/jung-kurt/gofpdf.
package svgpdf

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/benoitkugler/turtlesvg/svgdraw"
	"github.com/benoitkugler/turtlesvg/svgicon"
	"github.com/benoitkugler/turtlesvg/svgpath"
	"github.com/benoitkugler/turtlesvg/turtle"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/math/fixed"
)

var (
	_ svgdraw.Exporter = (*Surface)(nil) // assert interface conformance
	_ svgpath.Drawer   = pather{}
)

// MediaType is the content type of the exported document.
const MediaType = "application/pdf"

// PageSize is a page dimension, in points.
type PageSize struct{ W, H float64 }

// DefaultPage is a square page, a little smaller than A4.
var DefaultPage = PageSize{W: 500, H: 500}

var errExported = errors.New("svgpdf: document already written, draw again before exporting")

// Surface writes one PDF page. Since a page cannot be erased,
// Clear starts a new document.
type Surface struct {
	pdf      *gofpdf.Fpdf
	page     PageSize
	style    svgdraw.Style
	artwork  svgpath.Path
	exported bool

	// maps payload coordinates to the page
	transform svgpath.Matrix2D
	scale     float64
}

// implements the path commands, used to fill the markers
type pather struct {
	pdf *gofpdf.Fpdf
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return svgpath.FromFixed(a)
}

func (p pather) Start(a fixed.Point26_6) {
	p.pdf.MoveTo(fixedTof(a))
}

func (p pather) Line(b fixed.Point26_6) {
	p.pdf.LineTo(fixedTof(b))
}

func (p pather) QuadBezier(b fixed.Point26_6, c fixed.Point26_6) {
	cx, cy := fixedTof(b)
	x, y := fixedTof(c)
	p.pdf.CurveTo(cx, cy, x, y)
}

func (p pather) CubeBezier(b fixed.Point26_6, c fixed.Point26_6, d fixed.Point26_6) {
	cx0, cy0 := fixedTof(b)
	cx1, cy1 := fixedTof(c)
	x, y := fixedTof(d)
	p.pdf.CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y)
}

func (p pather) Stop(closeLoop bool) {
	if closeLoop {
		p.pdf.ClosePath()
	}
}

// NewSurface returns a surface drawing `viewBox` centered on a page
// of size `page`, keeping the aspect ratio.
func NewSurface(viewBox svgicon.Bounds, page PageSize, style svgdraw.Style) (*Surface, error) {
	if viewBox.W <= 0 || viewBox.H <= 0 {
		return nil, &svgdraw.SurfaceUnavailableError{
			Reason: fmt.Sprintf("empty view box %gx%g", viewBox.W, viewBox.H),
		}
	}
	if page.W <= 0 || page.H <= 0 {
		return nil, &svgdraw.SurfaceUnavailableError{
			Reason: fmt.Sprintf("empty page %gx%g", page.W, page.H),
		}
	}
	if err := style.Validate(); err != nil {
		return nil, fmt.Errorf("invalid style: %w", err)
	}
	k := math.Min(page.W/viewBox.W, page.H/viewBox.H)
	s := &Surface{
		page:    page,
		style:   style,
		artwork: style.Artwork(),
		scale:   k,
		transform: svgpath.Identity.
			Translate((page.W-k*viewBox.W)/2, (page.H-k*viewBox.H)/2).
			Scale(k, k).
			Translate(-viewBox.X, -viewBox.Y),
	}
	s.Clear()
	return s, nil
}

// Transform returns the mapping from payload coordinates to the page.
func (s *Surface) Transform() svgpath.Matrix2D { return s.transform }

// Clear discards the current document and starts a new page
// painted with the background color.
func (s *Surface) Clear() {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: s.page.W, Ht: s.page.H},
	})
	pdf.SetCreator("turtlesvg", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	bg := s.style.Background
	pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
	pdf.SetAlpha(float64(bg.A)/255, "Normal")
	pdf.Rect(0, 0, s.page.W, s.page.H, "F")

	st := s.style.Stroke
	pdf.SetDrawColor(int(st.R), int(st.G), int(st.B))
	pdf.SetLineWidth(s.style.LineWidth * s.scale)
	pdf.SetLineCapStyle(s.style.Cap.String())
	pdf.SetLineJoinStyle(s.style.Join.String())

	s.pdf = pdf
	s.exported = false
}

// Segment draws a line with the pen color.
func (s *Surface) Segment(_ string, from, to turtle.Point) {
	x1, y1 := s.transform.Transform(from.X, from.Y)
	x2, y2 := s.transform.Transform(to.X, to.Y)
	s.pdf.SetAlpha(float64(s.style.Stroke.A)/255, "Normal")
	s.pdf.Line(x1, y1, x2, y2)
}

// Marker fills the artwork, turned by `rotation` degrees
// around its center, placed at `at`.
func (s *Surface) Marker(_ string, at turtle.Point, rotation float64) {
	mc := s.style.MarkerColor
	s.pdf.SetFillColor(int(mc.R), int(mc.G), int(mc.B))
	s.pdf.SetAlpha(float64(mc.A)/255, "Normal")
	m := s.transform.Translate(at.X, at.Y).Rotate(svgpath.Deg2Rad(rotation))
	s.artwork.DrawTo(pather{pdf: s.pdf}, m)
	s.pdf.DrawPath("f")
}

// Export writes the document. It may only be called once per draw.
func (s *Surface) Export(w io.Writer) error {
	if s.exported {
		return errExported
	}
	s.exported = true
	if err := s.pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

// MediaType implements svgdraw.Exporter.
func (s *Surface) MediaType() string { return MediaType }
