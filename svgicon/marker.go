package svgicon

import (
	"math"

	"github.com/benoitkugler/turtlesvg/svgpath"
)

// extent returns the view box, or the bounds of the paths
// when the document has none.
func (s *SvgIcon) extent() (Bounds, bool) {
	if s.ViewBox.W > 0 && s.ViewBox.H > 0 {
		return s.ViewBox, true
	}
	var all svgpath.Path
	for _, p := range s.Paths {
		all = append(all, p...)
	}
	box, ok := all.Bounds(svgpath.Identity)
	if !ok {
		return Bounds{}, false
	}
	minX, minY := svgpath.FromFixed(box.Min)
	maxX, maxY := svgpath.FromFixed(box.Max)
	if maxX <= minX && maxY <= minY {
		return Bounds{}, false
	}
	return Bounds{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, true
}

// MarkerPath merges the shapes of the icon into one path,
// centered on the origin and scaled so that the largest side of
// the view box is `size`. The artwork keeps its orientation: it should
// point toward -x, like svgpath.DefaultMarker.
// ok is false when the icon has nothing to draw.
func (s *SvgIcon) MarkerPath(size float64) (p svgpath.Path, ok bool) {
	box, ok := s.extent()
	if !ok || len(s.Paths) == 0 {
		return nil, false
	}
	k := size / math.Max(box.W, box.H)
	m := svgpath.Identity.Scale(k, k).Translate(-(box.X + box.W/2), -(box.Y + box.H/2))
	for _, path := range s.Paths {
		p = append(p, path.Transform(m)...)
	}
	return p, true
}
