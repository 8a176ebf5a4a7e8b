package svgpath

// DefaultMarkerSize is the extent of DefaultMarker, in user units.
const DefaultMarkerSize = 10

// DefaultMarker returns the built-in turtle artwork: an arrow head
// centered on the origin. Its neutral orientation points toward -x,
// the opposite of heading 0, so it has to be rotated by heading + 180.
func DefaultMarker() Path {
	var p Path
	p.Start(ToFixed(-5, 0))
	p.Line(ToFixed(5, -4))
	p.Line(ToFixed(2.5, 0))
	p.Line(ToFixed(5, 4))
	p.Stop(true)
	return p
}
