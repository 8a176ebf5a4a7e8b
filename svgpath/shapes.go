package svgpath

import (
	"math"
)

// This file implements the transformation from
// high level shapes to their path equivalent

// kappa is the control distance of a cubic approximating a quarter circle
const kappa = 0.5522847498

// AddRect adds a closed rectangle.
func (p *Path) AddRect(minX, minY, maxX, maxY float64) {
	p.Start(ToFixed(minX, minY))
	p.Line(ToFixed(maxX, minY))
	p.Line(ToFixed(maxX, maxY))
	p.Line(ToFixed(minX, maxY))
	p.Stop(true)
}

// quarter adds the quarter of ellipse starting at angle `a`, turning clockwise
// (with y pointing down).
func (p *Path) quarter(cx, cy, rx, ry, a float64) {
	b := a + math.Pi/2
	sa, ca := math.Sincos(a)
	sb, cb := math.Sincos(b)
	x0, y0 := cx+rx*ca, cy+ry*sa
	x3, y3 := cx+rx*cb, cy+ry*sb
	p.CubeBezier(
		ToFixed(x0-kappa*rx*sa, y0+kappa*ry*ca),
		ToFixed(x3+kappa*rx*sb, y3-kappa*ry*cb),
		ToFixed(x3, y3),
	)
}

// AddRoundRect adds a rectangle with rounded corners of radius
// rx in the x axis and ry in the y axis.
func (p *Path) AddRoundRect(minX, minY, maxX, maxY, rx, ry float64) {
	if rx <= 0 || ry <= 0 {
		p.AddRect(minX, minY, maxX, maxY)
		return
	}
	if w := maxX - minX; w < rx*2 {
		rx = w / 2
	}
	if h := maxY - minY; h < ry*2 {
		ry = h / 2
	}

	p.Start(ToFixed(minX+rx, minY))
	p.Line(ToFixed(maxX-rx, minY))
	p.quarter(maxX-rx, minY+ry, rx, ry, -math.Pi/2)
	p.Line(ToFixed(maxX, maxY-ry))
	p.quarter(maxX-rx, maxY-ry, rx, ry, 0)
	p.Line(ToFixed(minX+rx, maxY))
	p.quarter(minX+rx, maxY-ry, rx, ry, math.Pi/2)
	p.Line(ToFixed(minX, minY+ry))
	p.quarter(minX+rx, minY+ry, rx, ry, math.Pi)
	p.Stop(true)
}

// AddEllipse adds a closed ellipse centered on (cx, cy).
func (p *Path) AddEllipse(cx, cy, rx, ry float64) {
	p.Start(ToFixed(cx+rx, cy))
	for i := 0; i < 4; i++ {
		p.quarter(cx, cy, rx, ry, float64(i)*math.Pi/2)
	}
	p.Stop(true)
}
