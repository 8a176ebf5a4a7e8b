// Implements the vector backend: a persistent scene of
// geometry nodes, which may be inspected or exported
// as a standalone SVG document.
package svgscene

import (
	"fmt"
	"math"

	"github.com/benoitkugler/turtlesvg/svgdraw"
	"github.com/benoitkugler/turtlesvg/svgicon"
	"github.com/benoitkugler/turtlesvg/svgpath"
	"github.com/benoitkugler/turtlesvg/turtle"
)

var _ svgdraw.Exporter = (*Scene)(nil) // assert interface conformance

// DefaultViewBox is the scene rectangle used when none is configured.
var DefaultViewBox = svgicon.Bounds{X: -100, Y: -100, W: 200, H: 200}

// Node is one geometry element of the scene,
// either a Line or a Marker.
type Node interface {
	isNode()
}

// Line joins two consecutive points of a turtle.
type Line struct {
	Turtle   string
	From, To turtle.Point
}

// Marker shows the final position and heading of a turtle.
type Marker struct {
	Turtle   string
	At       turtle.Point
	Rotation float64 // degrees
}

func (Line) isNode()   {}
func (Marker) isNode() {}

// Transform returns the matrix placing the artwork.
func (m Marker) Transform() svgpath.Matrix2D {
	return svgpath.Identity.Translate(m.At.X, m.At.Y).Rotate(svgpath.Deg2Rad(m.Rotation))
}

// Scene is the vector mount. Nodes are kept in insertion order,
// which is the draw order.
type Scene struct {
	viewBox svgicon.Bounds
	style   svgdraw.Style
	artwork svgpath.Path

	autoFit bool
	margin  float64

	width, height string // exported size attributes

	nodes []Node
}

// Option configures a Scene.
type Option func(*Scene)

// AutoViewBox fits the exported view box to the drawn geometry,
// extended by `margin` on each side. An empty scene keeps
// the configured view box.
func AutoViewBox(margin float64) Option {
	return func(s *Scene) {
		s.autoFit = true
		s.margin = margin
	}
}

// NewScene returns an empty scene showing `viewBox`.
func NewScene(viewBox svgicon.Bounds, style svgdraw.Style, opts ...Option) (*Scene, error) {
	s := &Scene{viewBox: viewBox, style: style}
	for _, opt := range opts {
		opt(s)
	}
	if s.viewBox.W <= 0 || s.viewBox.H <= 0 {
		if !s.autoFit {
			return nil, &svgdraw.SurfaceUnavailableError{
				Reason: fmt.Sprintf("empty view box %gx%g", viewBox.W, viewBox.H),
			}
		}
		s.viewBox = DefaultViewBox
	}
	if err := style.Validate(); err != nil {
		return nil, fmt.Errorf("invalid style: %w", err)
	}
	s.artwork = style.Artwork()
	return s, nil
}

// Clear removes every node.
func (s *Scene) Clear() { s.nodes = s.nodes[:0] }

// Segment inserts a Line node.
func (s *Scene) Segment(t string, from, to turtle.Point) {
	s.nodes = append(s.nodes, Line{Turtle: t, From: from, To: to})
}

// Marker inserts a Marker node.
func (s *Scene) Marker(t string, at turtle.Point, rotation float64) {
	s.nodes = append(s.nodes, Marker{Turtle: t, At: at, Rotation: rotation})
}

// Nodes returns the current content, in draw order.
func (s *Scene) Nodes() []Node { return append([]Node(nil), s.nodes...) }

// Lines returns the Line nodes, in draw order.
func (s *Scene) Lines() []Line {
	var out []Line
	for _, n := range s.nodes {
		if l, ok := n.(Line); ok {
			out = append(out, l)
		}
	}
	return out
}

// Markers returns the Marker nodes, in draw order.
func (s *Scene) Markers() []Marker {
	var out []Marker
	for _, n := range s.nodes {
		if m, ok := n.(Marker); ok {
			out = append(out, m)
		}
	}
	return out
}

// ViewBox returns the visible rectangle, which depends on
// the content when AutoViewBox is set.
func (s *Scene) ViewBox() svgicon.Bounds {
	if !s.autoFit {
		return s.viewBox
	}
	// line extents are kept in float64: fixed point overflows
	// for far away turtles
	var (
		minX, minY = math.Inf(1), math.Inf(1)
		maxX, maxY = math.Inf(-1), math.Inf(-1)
	)
	extend := func(x, y float64) {
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	for _, n := range s.nodes {
		switch n := n.(type) {
		case Line:
			extend(n.From.X, n.From.Y)
			extend(n.To.X, n.To.Y)
		case Marker:
			box, ok := s.artwork.Transform(n.Transform()).Bounds(svgpath.Identity)
			if !ok {
				continue
			}
			extend(svgpath.FromFixed(box.Min))
			extend(svgpath.FromFixed(box.Max))
		}
	}
	if minX > maxX {
		return s.viewBox
	}
	out := svgicon.Bounds{
		X: minX - s.margin,
		Y: minY - s.margin,
		W: maxX - minX + 2*s.margin,
		H: maxY - minY + 2*s.margin,
	}
	// a flat drawing still needs an area
	if out.W <= 0 {
		out.X, out.W = out.X-0.5, 1
	}
	if out.H <= 0 {
		out.Y, out.H = out.Y-0.5, 1
	}
	return out
}
