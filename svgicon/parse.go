package svgicon

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/benoitkugler/turtlesvg/svgpath"
	"go.uber.org/zap"
)

var errParamMismatch = errors.New("param mismatch")

type (
	// pathCursor is used to parse SVG format path strings into a Path
	pathCursor struct {
		path             svgpath.Path
		points           []float64
		placeX, placeY   float64 // start of the current sub path
		curX, curY       float64 // current point
		cntlPtX, cntlPtY float64 // last control point, for smooth curves
		lastKey          byte
		inPath           bool
	}

	// iconCursor is used while parsing SVG files
	iconCursor struct {
		pathCursor
		icon              *SvgIcon
		transforms        []svgpath.Matrix2D
		text              textTarget
		seenTag, seenRoot bool
		skipDepth         int // > 0 inside an element whose content is not drawn
		errorMode         ErrorMode
	}
)

// elements whose content is never drawn directly
var skippedElements = map[string]bool{
	"defs": true, "clipPath": true, "mask": true, "symbol": true, "marker": true,
	"linearGradient": true, "radialGradient": true, "pattern": true,
	"style": true, "metadata": true, "script": true,
}

func (c *iconCursor) readTransformAttr(m1 svgpath.Matrix2D, k string) (svgpath.Matrix2D, error) {
	ln := len(c.points)
	switch k {
	case "rotate":
		if ln == 1 {
			m1 = m1.Rotate(svgpath.Deg2Rad(c.points[0]))
		} else if ln == 3 {
			m1 = m1.Translate(c.points[1], c.points[2]).
				Rotate(svgpath.Deg2Rad(c.points[0])).
				Translate(-c.points[1], -c.points[2])
		} else {
			return m1, errParamMismatch
		}
	case "translate":
		if ln == 1 {
			m1 = m1.Translate(c.points[0], 0)
		} else if ln == 2 {
			m1 = m1.Translate(c.points[0], c.points[1])
		} else {
			return m1, errParamMismatch
		}
	case "skewx":
		if ln == 1 {
			m1 = m1.SkewX(svgpath.Deg2Rad(c.points[0]))
		} else {
			return m1, errParamMismatch
		}
	case "skewy":
		if ln == 1 {
			m1 = m1.SkewY(svgpath.Deg2Rad(c.points[0]))
		} else {
			return m1, errParamMismatch
		}
	case "scale":
		if ln == 1 {
			m1 = m1.Scale(c.points[0], c.points[0])
		} else if ln == 2 {
			m1 = m1.Scale(c.points[0], c.points[1])
		} else {
			return m1, errParamMismatch
		}
	case "matrix":
		if ln == 6 {
			m1 = m1.Mult(svgpath.Matrix2D{
				A: c.points[0],
				B: c.points[1],
				C: c.points[2],
				D: c.points[3],
				E: c.points[4],
				F: c.points[5]})
		} else {
			return m1, errParamMismatch
		}
	default:
		return m1, errParamMismatch
	}
	return m1, nil
}

func (c *iconCursor) parseTransform(v string) (svgpath.Matrix2D, error) {
	ts := strings.Split(v, ")")
	m1 := c.transforms[len(c.transforms)-1]
	for _, t := range ts {
		t = strings.TrimSpace(t)
		if len(t) == 0 {
			continue
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(d[1]) < 1 {
			return m1, errParamMismatch // badly formed transformation
		}
		err := c.getPoints(d[1])
		if err != nil {
			return m1, err
		}
		m1, err = c.readTransformAttr(m1, strings.ToLower(strings.TrimSpace(d[0])))
		if err != nil {
			return m1, err
		}
	}
	return m1, nil
}

// pushTransform composes the transform attribute of the element, if any,
// with the current one and places it on top of the stack.
func (c *iconCursor) pushTransform(attrs []xml.Attr) error {
	current := c.transforms[len(c.transforms)-1]
	for _, attr := range attrs {
		if attr.Name.Local == "transform" {
			var err error
			current, err = c.parseTransform(attr.Value)
			if err != nil {
				return fmt.Errorf("invalid transform %q: %w", attr.Value, err)
			}
		}
	}
	c.transforms = append(c.transforms, current)
	return nil
}

func (c *iconCursor) readStartElement(se xml.StartElement) (err error) {
	if skippedElements[se.Name.Local] {
		c.skipDepth = 1
		return nil
	}
	df, ok := drawFuncs[se.Name.Local]
	if !ok {
		errStr := "Cannot process svg element " + se.Name.Local
		if c.errorMode == StrictErrorMode {
			return errors.New(errStr)
		} else if c.errorMode == WarnErrorMode {
			zap.L().Named("svgicon").Warn(errStr)
		}
		return nil
	}
	err = df(c, se.Attr)

	if len(c.path) > 0 {
		// The cursor parsed a path from the xml element
		c.icon.Paths = append(c.icon.Paths, c.path.Transform(c.transforms[len(c.transforms)-1]))
		c.path = c.path[:0]
	}
	return
}

// getPoints reads a list of numbers, separated by commas, spaces,
// or simply by their sign or decimal point ("1.5.5-2" is 1.5 .5 -2)
func (c *pathCursor) getPoints(dataPoints string) error {
	c.points = c.points[:0]
	s := dataPoints
	for i := 0; i < len(s); {
		switch s[i] {
		case ' ', ',', '\t', '\n', '\r':
			i++
			continue
		}
		start := i
		if s[i] == '+' || s[i] == '-' {
			i++
		}
		seenDot, seenDigit := false, false
		for i < len(s) {
			ch := s[i]
			if '0' <= ch && ch <= '9' {
				seenDigit = true
			} else if ch == '.' && !seenDot {
				seenDot = true
			} else {
				break
			}
			i++
		}
		if seenDigit && i < len(s) && (s[i] == 'e' || s[i] == 'E') {
			j := i + 1
			if j < len(s) && (s[j] == '+' || s[j] == '-') {
				j++
			}
			k := j
			for k < len(s) && '0' <= s[k] && s[k] <= '9' {
				k++
			}
			if k > j {
				i = k
			}
		}
		if !seenDigit {
			return fmt.Errorf("invalid number in %q", dataPoints)
		}
		f, err := strconv.ParseFloat(s[start:i], 64)
		if err != nil {
			return err
		}
		c.points = append(c.points, f)
	}
	return nil
}

func isPathCommand(r byte) bool {
	return strings.IndexByte("MmLlHhVvCcSsQqTtAaZz", r) >= 0
}

// compilePath translates the svgPath description string into a path.
func (c *pathCursor) compilePath(svgPath string) error {
	c.curX, c.curY, c.placeX, c.placeY = 0, 0, 0, 0
	c.lastKey, c.inPath = 0, false
	lastIndex := -1
	for i := 0; i < len(svgPath); i++ {
		if isPathCommand(svgPath[i]) {
			if lastIndex != -1 {
				if err := c.addSeg(svgPath[lastIndex:i]); err != nil {
					return err
				}
			}
			lastIndex = i
		}
	}
	if lastIndex != -1 {
		if err := c.addSeg(svgPath[lastIndex:]); err != nil {
			return err
		}
	}
	c.path.Stop(false)
	return nil
}

func (c *pathCursor) start(x, y float64) {
	c.path.Start(svgpath.ToFixed(x, y))
	c.curX, c.curY = x, y
	c.placeX, c.placeY = x, y
	c.inPath = true
}

func (c *pathCursor) lineTo(x, y float64) {
	c.path.Line(svgpath.ToFixed(x, y))
	c.curX, c.curY = x, y
}

// reflect returns the reflection of the last control point if the
// previous command was one of `keys`, or the current point otherwise
func (c *pathCursor) reflect(keys string) (float64, float64) {
	if c.lastKey != 0 && strings.IndexByte(keys, c.lastKey) >= 0 {
		return 2*c.curX - c.cntlPtX, 2*c.curY - c.cntlPtY
	}
	return c.curX, c.curY
}

// addSeg decodes one command letter and its parameters
func (c *pathCursor) addSeg(segString string) error {
	key := segString[0]
	if err := c.getPoints(segString[1:]); err != nil {
		return err
	}
	l := len(c.points)
	rel := 'a' <= key && key <= 'z'
	upper := key
	if rel {
		upper = key - 'a' + 'A'
	}

	arity := map[byte]int{'M': 2, 'L': 2, 'H': 1, 'V': 1, 'C': 6, 'S': 4, 'Q': 4, 'T': 2, 'A': 7, 'Z': 0}[upper]
	if upper == 'Z' {
		if l != 0 {
			return errParamMismatch
		}
		c.path.Stop(true)
		c.curX, c.curY = c.placeX, c.placeY
		c.inPath = false
		c.lastKey = 'Z'
		return nil
	}
	if l == 0 || l%arity != 0 {
		return fmt.Errorf("%c: %w", key, errParamMismatch)
	}

	for i := 0; i < l; i += arity {
		p := c.points[i : i+arity]
		var dx, dy float64
		if rel {
			dx, dy = c.curX, c.curY
		}
		if upper != 'M' && !c.inPath {
			// drawing after a close restarts at the sub path start
			c.start(c.curX, c.curY)
		}
		switch upper {
		case 'M':
			if i == 0 {
				c.start(p[0]+dx, p[1]+dy)
			} else { // implicit line to
				c.lineTo(p[0]+dx, p[1]+dy)
			}
		case 'L':
			c.lineTo(p[0]+dx, p[1]+dy)
		case 'H':
			c.lineTo(p[0]+dx, c.curY)
		case 'V':
			c.lineTo(c.curX, p[0]+dy)
		case 'C':
			c.cntlPtX, c.cntlPtY = p[2]+dx, p[3]+dy
			c.path.CubeBezier(svgpath.ToFixed(p[0]+dx, p[1]+dy),
				svgpath.ToFixed(c.cntlPtX, c.cntlPtY), svgpath.ToFixed(p[4]+dx, p[5]+dy))
			c.curX, c.curY = p[4]+dx, p[5]+dy
		case 'S':
			x1, y1 := c.reflect("CS")
			c.cntlPtX, c.cntlPtY = p[0]+dx, p[1]+dy
			c.path.CubeBezier(svgpath.ToFixed(x1, y1),
				svgpath.ToFixed(c.cntlPtX, c.cntlPtY), svgpath.ToFixed(p[2]+dx, p[3]+dy))
			c.curX, c.curY = p[2]+dx, p[3]+dy
		case 'Q':
			c.cntlPtX, c.cntlPtY = p[0]+dx, p[1]+dy
			c.path.QuadBezier(svgpath.ToFixed(c.cntlPtX, c.cntlPtY), svgpath.ToFixed(p[2]+dx, p[3]+dy))
			c.curX, c.curY = p[2]+dx, p[3]+dy
		case 'T':
			c.cntlPtX, c.cntlPtY = c.reflect("QT")
			c.path.QuadBezier(svgpath.ToFixed(c.cntlPtX, c.cntlPtY), svgpath.ToFixed(p[0]+dx, p[1]+dy))
			c.curX, c.curY = p[0]+dx, p[1]+dy
		case 'A':
			c.curX, c.curY = c.path.AddArc(c.curX, c.curY, svgpath.Arc{
				Rx: p[0], Ry: p[1], Rotation: p[2],
				Large: p[3] != 0, Sweep: p[4] != 0,
				X: p[5] + dx, Y: p[6] + dy,
			})
		}
		c.lastKey = upper
	}
	return nil
}
