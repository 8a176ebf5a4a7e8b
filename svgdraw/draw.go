// Given the paths traced by turtles, implements how to
// draw them on screen.
// This requires a surface implementing the actual draw operations,
// such as a vector scene exported to .svg, a rasterizer to output
// .png images or a pdf writer.
package svgdraw

import (
	"io"
	"math"
	"reflect"

	"github.com/benoitkugler/turtlesvg/turtle"
	"go.uber.org/zap"
)

// Surface knows how to do the actual draw operations
// but doesn't need any turtle knowledge.
// Coordinates are given in the payload space: each
// surface owns the mapping to its own viewport.
type Surface interface {
	// Clear must remove every geometry drawn since the last call.
	Clear()

	// Segment draws a line between two consecutive points of `turtle`.
	Segment(turtle string, from, to turtle.Point)

	// Marker draws the turtle artwork at `at`, turned
	// by `rotation` degrees.
	Marker(turtle string, at turtle.Point, rotation float64)
}

// Exporter is a Surface which can serialize what it shows.
type Exporter interface {
	Surface

	// Export writes the current content, in the format
	// given by MediaType.
	Export(w io.Writer) error

	MediaType() string
}

// Stats counts the primitives emitted by one Draw.
type Stats struct {
	Turtles  int
	Segments int
	Markers  int
}

// Renderer draws path sets onto its surface.
// It keeps no state besides the surface, so that
// every Draw rebuilds the whole picture.
// A Renderer is not safe for concurrent use.
type Renderer struct {
	surface Surface
	logger  *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used to trace draws.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger.Named("renderer")
		}
	}
}

// NewRenderer binds a renderer to `surface`, which is used
// by every following Draw.
func NewRenderer(surface Surface, opts ...Option) (*Renderer, error) {
	if isNil(surface) {
		return nil, &SurfaceUnavailableError{Reason: "no drawing surface"}
	}
	r := &Renderer{surface: surface, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// isNil also catches typed nil pointers stored in the interface
func isNil(surface Surface) bool {
	if surface == nil {
		return true
	}
	v := reflect.ValueOf(surface)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Surface returns the mount the renderer draws on.
func (r *Renderer) Surface() Surface { return r.surface }

// MarkerRotation returns the angle, in [0, 360), applied to the marker
// artwork for a turtle heading `heading` degrees. The artwork points
// backward in its neutral orientation, hence the half turn.
func MarkerRotation(heading float64) float64 {
	rot := math.Mod(heading+180, 360)
	if rot < 0 {
		rot += 360
	}
	if rot >= 360 || rot == 0 { // rounding, and -0
		rot = 0
	}
	return rot
}

// Draw clears the surface and draws `paths`, in order:
// for each turtle, one segment per pair of consecutive points,
// then its marker, if it has a heading and a position.
func (r *Renderer) Draw(paths turtle.PathSet) Stats {
	r.surface.Clear()

	var stats Stats
	for _, t := range paths {
		stats.Turtles++
		for i := 1; i < len(t.Points); i++ {
			r.surface.Segment(t.ID, t.Points[i-1], t.Points[i])
			stats.Segments++
		}

		if t.FinalHeading == nil {
			continue
		}
		last, ok := t.Last()
		if !ok {
			r.logger.Debug("heading without position, marker skipped", zap.String("turtle", t.ID))
			continue
		}
		r.surface.Marker(t.ID, last, MarkerRotation(*t.FinalHeading))
		stats.Markers++
	}

	r.logger.Debug("paths drawn",
		zap.Int("turtles", stats.Turtles),
		zap.Int("segments", stats.Segments),
		zap.Int("markers", stats.Markers),
	)
	return stats
}
