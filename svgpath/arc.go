package svgpath

import "math"

// maxArcStep is the widest parametric angle spanned by one cubic.
const maxArcStep = math.Pi / 8

// Arc is an SVG elliptical arc command, in absolute coordinates.
type Arc struct {
	Rx, Ry   float64
	Rotation float64 // x axis rotation, in degrees
	Large    bool
	Sweep    bool
	X, Y     float64 // end point
}

// ellipse is parametrized by eta:
// center + R(rot) * (rx cos eta, ry sin eta)
type ellipse struct {
	rx, ry   float64
	cx, cy   float64
	sin, cos float64
}

func (e ellipse) at(eta float64) (x, y float64) {
	u, v := e.rx*math.Cos(eta), e.ry*math.Sin(eta)
	return e.cx + u*e.cos - v*e.sin, e.cy + u*e.sin + v*e.cos
}

func (e ellipse) tangent(eta float64) (dx, dy float64) {
	u, v := -e.rx*math.Sin(eta), e.ry*math.Cos(eta)
	return u*e.cos - v*e.sin, u*e.sin + v*e.cos
}

// angle returns the parameter of the point (x, y) of the ellipse
func (e ellipse) angle(x, y float64) float64 {
	dx, dy := x-e.cx, y-e.cy
	u, v := dx*e.cos+dy*e.sin, -dx*e.sin+dy*e.cos
	return math.Atan2(v/e.ry, u/e.rx)
}

// solve returns the ellipse joining (x0, y0) to the end of the arc.
// Radii too small to span the chord are scaled up, keeping their ratio.
func (a Arc) solve(x0, y0 float64) ellipse {
	e := ellipse{rx: math.Abs(a.Rx), ry: math.Abs(a.Ry)}
	e.sin, e.cos = math.Sincos(Deg2Rad(a.Rotation))

	// chord in the ellipse frame, x scaled so the ellipse is a circle of radius ry
	nx, ny := a.X-x0, a.Y-y0
	nx, ny = nx*e.cos+ny*e.sin, -nx*e.sin+ny*e.cos
	nx *= e.ry / e.rx

	midX, midY := nx/2, ny/2
	half := midX*midX + midY*midY

	var h float64
	if e.ry*e.ry < half {
		r := math.Sqrt(half)
		e.rx *= r / e.ry
		e.ry = r
	} else {
		h = math.Sqrt(e.ry*e.ry-half) / math.Sqrt(half)
	}
	cx, cy := midX-midY*h, midY+midX*h
	if a.Sweep != a.Large {
		cx, cy = midX+midY*h, midY-midX*h
	}

	cx *= e.rx / e.ry
	e.cx = cx*e.cos - cy*e.sin + x0
	e.cy = cx*e.sin + cy*e.cos + y0
	return e
}

// AddArc appends the arc starting at (x0, y0) as cubic Béziers and
// returns its end point. Null radii give a straight line and an arc
// ending on its start adds nothing.
func (p *Path) AddArc(x0, y0 float64, a Arc) (x, y float64) {
	if a.X == x0 && a.Y == y0 {
		return x0, y0
	}
	if a.Rx == 0 || a.Ry == 0 {
		p.Line(ToFixed(a.X, a.Y))
		return a.X, a.Y
	}

	e := a.solve(x0, y0)
	start, end := e.angle(x0, y0), e.angle(a.X, a.Y)
	delta := end - start
	if a.Sweep && delta < 0 {
		delta += 2 * math.Pi
	} else if !a.Sweep && delta > 0 {
		delta -= 2 * math.Pi
	}

	// L. Maisonobe, "Drawing an elliptical arc using polylines,
	// quadratic or cubic Bezier curves", 2003
	n := int(math.Abs(delta)/maxArcStep) + 1
	step := delta / float64(n)
	t := math.Tan(step / 2)
	alpha := math.Sin(step) * (math.Sqrt(4+3*t*t) - 1) / 3

	x, y = x0, y0
	dx, dy := e.tangent(start)
	for i := 1; i <= n; i++ {
		eta := start + step*float64(i)
		nx, ny := a.X, a.Y // exact end point
		if i < n {
			nx, ny = e.at(eta)
		}
		ndx, ndy := e.tangent(eta)
		p.CubeBezier(ToFixed(x+alpha*dx, y+alpha*dy), ToFixed(nx-alpha*ndx, ny-alpha*ndy), ToFixed(nx, ny))
		x, y, dx, dy = nx, ny, ndx, ndy
	}
	return x, y
}
