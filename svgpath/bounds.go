package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// compute the bounding box of a path, needed to fit a view box
// around the drawn geometry

type line [2]fixed.Point26_6

func (l line) criticalPoints() (tX, tY []float64) {
	return nil, nil
}

func (l line) evaluateCurve(t float64) (x, y float64) {
	p0x, p0y := FromFixed(l[0])
	p1x, p1y := FromFixed(l[1])
	return bezierLine(p0x, p1x, t), bezierLine(p0y, p1y, t)
}

func bezierLine(p0, p1, t float64) float64 {
	return (p1-p0)*t + p0
}

type quadBezier [3]fixed.Point26_6

// quadratic polinomial
// x = At^2 + Bt + C
// where
// A = p0 + p2 - 2p1
// B = 2(p1 - p0)
// C = p0
func bezierQuad(p0, p1, p2, t float64) float64 {
	return (p0+p2-2*p1)*t*t + 2*(p1-p0)*t + p0
}

// derivative as at + b where a,b :
func quadraticDerivative(p0, p1, p2 float64) (a, b float64) {
	return 2 * (p2 - p1 - (p1 - p0)), 2 * (p1 - p0)
}

// handle the case where a = 0
func linearRoots(a, b float64) []float64 {
	if a == 0 {
		return nil
	}
	return []float64{-b / a}
}

func (cu quadBezier) criticalPoints() (tX, tY []float64) {
	p0x, p0y := FromFixed(cu[0])
	p1x, p1y := FromFixed(cu[1])
	p2x, p2y := FromFixed(cu[2])

	aX, bX := quadraticDerivative(p0x, p1x, p2x)
	aY, bY := quadraticDerivative(p0y, p1y, p2y)

	return linearRoots(aX, bX), linearRoots(aY, bY)
}

func (cu quadBezier) evaluateCurve(t float64) (x, y float64) {
	p0x, p0y := FromFixed(cu[0])
	p1x, p1y := FromFixed(cu[1])
	p2x, p2y := FromFixed(cu[2])
	return bezierQuad(p0x, p1x, p2x, t), bezierQuad(p0y, p1y, p2y, t)
}

type cubicBezier [4]fixed.Point26_6

func (cu cubicBezier) criticalPoints() (tX, tY []float64) {
	p1x, p1y := FromFixed(cu[0])
	c1x, c1y := FromFixed(cu[1])
	c2x, c2y := FromFixed(cu[2])
	p2x, p2y := FromFixed(cu[3])

	aX, bX, cX := cubicDerivative(p1x, c1x, c2x, p2x)
	aY, bY, cY := cubicDerivative(p1y, c1y, c2y, p2y)

	return quadraticRoots(aX, bX, cX), quadraticRoots(aY, bY, cY)
}

func (cu cubicBezier) evaluateCurve(t float64) (x, y float64) {
	p0x, p0y := FromFixed(cu[0])
	p1x, p1y := FromFixed(cu[1])
	p2x, p2y := FromFixed(cu[2])
	p3x, p3y := FromFixed(cu[3])
	return bezierSpline(p0x, p1x, p2x, p3x, t), bezierSpline(p0y, p1y, p2y, p3y, t)
}

// cubic polinomial
// x = At^3 + Bt^2 + Ct + D
// where A,B,C,D:
// A = p3 -3 * p2 + 3 * p1 - p0
// B = 3 * p2 - 6 * p1 +3 * p0
// C = 3 * p1 - 3 * p0
// D = p0
func bezierSpline(p0, p1, p2, p3, t float64) float64 {
	return (p3-3*p2+3*p1-p0)*t*t*t +
		(3*p2-6*p1+3*p0)*t*t +
		(3*p1-3*p0)*t +
		(p0)
}

// X' = (3*p3-9*p2+9*p1-3*p0)t^2 + (6*p2-12*p1+6*p0)t + (3*p1-3*p0)
// taken as aX^2 + bX + c  a,b and c are:
func cubicDerivative(p0, p1, p2, p3 float64) (a, b, c float64) {
	return 3*p3 - 9*p2 + 9*p1 - 3*p0, 6*p2 - 12*p1 + 6*p0, 3*p1 - 3*p0
}

// b^2 - 4ac = Determinant
func determinant(a, b, c float64) float64 { return b*b - 4*a*c }

func solve(a, b, c float64, positive bool) float64 {
	sign := 1.
	if !positive {
		sign = -1.
	}
	return (-b + (math.Sqrt(determinant(a, b, c)) * sign)) / (2 * a)
}

func quadraticRoots(a, b, c float64) []float64 {
	if a == 0 {
		// bX + c : this is a simple line
		return linearRoots(b, c)
	}

	d := determinant(a, b, c)
	if d < 0 {
		return nil
	}
	if d == 0 {
		return []float64{solve(a, b, c, true)}
	}
	return []float64{solve(a, b, c, true), solve(a, b, c, false)}
}

type bezier interface {
	// compute the t zeroing the derivative
	criticalPoints() (tX, tY []float64)
	// compute the point a time t
	evaluateCurve(t float64) (x, y float64)
}

func computeBoundingBox(curve bezier) fixed.Rectangle26_6 {
	resX, resY := curve.criticalPoints()

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	// add begin and end point
	for _, t := range append(append(resX, 0, 1), resY...) {
		// filter invalid value
		if !(0 <= t && t <= 1) {
			continue
		}
		x, y := curve.evaluateCurve(t)
		minX, minY = math.Min(x, minX), math.Min(y, minY)
		maxX, maxY = math.Max(x, maxX), math.Max(y, maxY)
	}
	return fixed.Rectangle26_6{Min: ToFixed(minX, minY), Max: ToFixed(maxX, maxY)}
}

// boundsAdder accumulates the extent of the curves it receives
type boundsAdder struct {
	a, first fixed.Point26_6
	box      fixed.Rectangle26_6
	started  bool
}

func (b *boundsAdder) union(r fixed.Rectangle26_6) {
	if !b.started {
		b.box, b.started = r, true
		return
	}
	// fixed.Rectangle26_6.Union drops empty rectangles,
	// which would lose horizontal and vertical lines
	if r.Min.X < b.box.Min.X {
		b.box.Min.X = r.Min.X
	}
	if r.Min.Y < b.box.Min.Y {
		b.box.Min.Y = r.Min.Y
	}
	if r.Max.X > b.box.Max.X {
		b.box.Max.X = r.Max.X
	}
	if r.Max.Y > b.box.Max.Y {
		b.box.Max.Y = r.Max.Y
	}
}

func (b *boundsAdder) Start(a fixed.Point26_6) {
	b.a, b.first = a, a
	b.union(fixed.Rectangle26_6{Min: a, Max: a}) // degenerate case
}

func (b *boundsAdder) Line(c fixed.Point26_6) {
	b.union(computeBoundingBox(line{b.a, c}))
	b.a = c
}

func (b *boundsAdder) QuadBezier(c, d fixed.Point26_6) {
	b.union(computeBoundingBox(quadBezier{b.a, c, d}))
	b.a = d
}

func (b *boundsAdder) CubeBezier(c, d, e fixed.Point26_6) {
	b.union(computeBoundingBox(cubicBezier{b.a, c, d, e}))
	b.a = e
}

func (b *boundsAdder) Stop(bool) { b.a = b.first }

// Bounds returns the extent of the path once transformed by `M`.
// ok is false for an empty path.
func (p Path) Bounds(M Matrix2D) (box fixed.Rectangle26_6, ok bool) {
	var b boundsAdder
	p.DrawTo(&b, M)
	return b.box, b.started
}
