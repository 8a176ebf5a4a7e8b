// Package turtle defines the data exchanged with a turtle graphics
// execution service: the execution result and the paths traced by
// each turtle.
package turtle

import "fmt"

// Point is a position in the turtle coordinate space.
type Point struct{ X, Y float64 }

func (p Point) String() string { return fmt.Sprintf("(%g,%g)", p.X, p.Y) }

// Turtle is the trace of one drawing cursor.
type Turtle struct {
	ID     string
	Points []Point // polyline, in drawing order

	// FinalHeading is the orientation in degrees at the end of the
	// program, or nil when no marker should be drawn.
	FinalHeading *float64
}

// Last returns the final position of the turtle.
// ok is false when the turtle has no point.
func (t Turtle) Last() (p Point, ok bool) {
	if len(t.Points) == 0 {
		return Point{}, false
	}
	return t.Points[len(t.Points)-1], true
}

// PathSet holds every turtle of one result, in payload order.
// The order is the draw order.
type PathSet []Turtle

// Get returns the turtle with the given id.
func (ps PathSet) Get(id string) (Turtle, bool) {
	for _, t := range ps {
		if t.ID == id {
			return t, true
		}
	}
	return Turtle{}, false
}

// IDs returns the turtle ids in payload order.
func (ps PathSet) IDs() []string {
	out := make([]string, len(ps))
	for i, t := range ps {
		out[i] = t.ID
	}
	return out
}

// ExecutionResult is the reply of the execution service.
// Exactly one of Log/Canvas or Error is expected to be set.
type ExecutionResult struct {
	Log    *string
	Error  *string
	Canvas *PathSet
}

// Failed is true when the service reported an error.
func (r ExecutionResult) Failed() bool { return r.Error != nil }

// Succeeded is true when at least one success field is present.
func (r ExecutionResult) Succeeded() bool { return r.Log != nil || r.Canvas != nil }

// Heading is a convenience to build optional headings.
func Heading(degrees float64) *float64 { return &degrees }
