package turtle

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownTurtle is returned by Builder for ids it never issued.
var ErrUnknownTurtle = errors.New("unknown turtle")

// Builder records turtle moves the way the execution service does:
// turtles are numbered from 0, start with heading 0 and each move is
// relative to the last position.
type Builder struct {
	lines    map[int][]Point
	headings map[int]float64
	nextID   int
}

func NewBuilder() *Builder {
	return &Builder{lines: map[int][]Point{}, headings: map[int]float64{}}
}

// AddTurtle creates a turtle at (x, y) and returns its id.
func (b *Builder) AddTurtle(x, y float64) int {
	id := b.nextID
	b.lines[id] = []Point{{x, y}}
	b.headings[id] = 0
	b.nextID++
	return id
}

// Move appends a point offset by (dx, dy) from the last position.
func (b *Builder) Move(id int, dx, dy float64) error {
	line, ok := b.lines[id]
	if !ok {
		return fmt.Errorf("move turtle %d: %w", id, ErrUnknownTurtle)
	}
	last := line[len(line)-1]
	b.lines[id] = append(line, Point{last.X + dx, last.Y + dy})
	return nil
}

// Rotate sets the heading of the turtle, in degrees.
func (b *Builder) Rotate(id int, angle float64) error {
	if _, ok := b.lines[id]; !ok {
		return fmt.Errorf("rotate turtle %d: %w", id, ErrUnknownTurtle)
	}
	b.headings[id] = angle
	return nil
}

// PathSet returns a snapshot, ordered by turtle id.
func (b *Builder) PathSet() PathSet {
	out := make(PathSet, 0, b.nextID)
	for id := 0; id < b.nextID; id++ {
		points := append([]Point(nil), b.lines[id]...)
		out = append(out, Turtle{
			ID:           strconv.Itoa(id),
			Points:       points,
			FinalHeading: Heading(b.headings[id]),
		})
	}
	return out
}
