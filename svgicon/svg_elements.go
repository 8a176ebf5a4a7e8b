package svgicon

import (
	"encoding/xml"
	"errors"
	"strconv"
	"strings"

	"github.com/benoitkugler/turtlesvg/svgpath"
)

type svgFunc func(c *iconCursor, attrs []xml.Attr) error

var drawFuncs = map[string]svgFunc{
	"svg":      svgF,
	"g":        gF,
	"line":     lineF,
	"rect":     rectF,
	"circle":   circleF,
	"ellipse":  circleF, //circleF handles ellipse also
	"polyline": polylineF,
	"polygon":  polygonF,
	"path":     pathF,
	"desc":     descF,
	"title":    titleF,
}

// parseUnit reads a length, ignoring the px unit.
// Percentages are not supported for markers.
func parseUnit(v string) (float64, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		return 0, errors.New("percentage lengths are not supported: " + v)
	}
	return strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
}

func svgF(c *iconCursor, attrs []xml.Attr) error {
	if c.seenRoot { // nested documents only contribute their shapes
		return nil
	}
	c.seenRoot = true
	var width, height float64
	var err error
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "viewBox":
			err = c.getPoints(attr.Value)
			if len(c.points) != 4 {
				return errParamMismatch
			}
			c.icon.ViewBox.X = c.points[0]
			c.icon.ViewBox.Y = c.points[1]
			c.icon.ViewBox.W = c.points[2]
			c.icon.ViewBox.H = c.points[3]
		case "width":
			c.icon.Width = attr.Value
			width, err = parseUnit(attr.Value)
		case "height":
			c.icon.Height = attr.Value
			height, err = parseUnit(attr.Value)
		}
		if err != nil {
			return err
		}
	}
	if c.icon.ViewBox.W == 0 {
		c.icon.ViewBox.W = width
	}
	if c.icon.ViewBox.H == 0 {
		c.icon.ViewBox.H = height
	}
	return nil
}

func gF(*iconCursor, []xml.Attr) error { return nil } // g does nothing but push the transform

func rectF(c *iconCursor, attrs []xml.Attr) error {
	var x, y, w, h, rx, ry float64
	var err error
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "x":
			x, err = parseUnit(attr.Value)
		case "y":
			y, err = parseUnit(attr.Value)
		case "width":
			w, err = parseUnit(attr.Value)
		case "height":
			h, err = parseUnit(attr.Value)
		case "rx":
			rx, err = parseUnit(attr.Value)
		case "ry":
			ry, err = parseUnit(attr.Value)
		}
		if err != nil {
			return err
		}
	}
	if w == 0 || h == 0 {
		return nil
	}
	// a single radius applies to both axis
	if rx == 0 {
		rx = ry
	} else if ry == 0 {
		ry = rx
	}
	c.path.AddRoundRect(x, y, w+x, h+y, rx, ry)
	return nil
}

func circleF(c *iconCursor, attrs []xml.Attr) error {
	var cx, cy, rx, ry float64
	var err error
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "cx":
			cx, err = parseUnit(attr.Value)
		case "cy":
			cy, err = parseUnit(attr.Value)
		case "r":
			rx, err = parseUnit(attr.Value)
			ry = rx
		case "rx":
			rx, err = parseUnit(attr.Value)
		case "ry":
			ry, err = parseUnit(attr.Value)
		}
		if err != nil {
			return err
		}
	}
	if rx == 0 || ry == 0 { // not drawn, but not an error
		return nil
	}
	c.path.AddEllipse(cx, cy, rx, ry)
	return nil
}

func lineF(c *iconCursor, attrs []xml.Attr) error {
	var x1, x2, y1, y2 float64
	var err error
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "x1":
			x1, err = parseUnit(attr.Value)
		case "x2":
			x2, err = parseUnit(attr.Value)
		case "y1":
			y1, err = parseUnit(attr.Value)
		case "y2":
			y2, err = parseUnit(attr.Value)
		}
		if err != nil {
			return err
		}
	}
	c.path.Start(svgpath.ToFixed(x1, y1))
	c.path.Line(svgpath.ToFixed(x2, y2))
	return nil
}

func polylineF(c *iconCursor, attrs []xml.Attr) error {
	c.points = c.points[:0]
	var err error
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "points":
			err = c.getPoints(attr.Value)
			if len(c.points)%2 != 0 {
				return errors.New("polygon has odd number of points")
			}
		}
		if err != nil {
			return err
		}
	}
	if len(c.points) >= 4 {
		c.path.Start(svgpath.ToFixed(c.points[0], c.points[1]))
		for i := 2; i < len(c.points)-1; i += 2 {
			c.path.Line(svgpath.ToFixed(c.points[i], c.points[i+1]))
		}
	}
	return nil
}

func polygonF(c *iconCursor, attrs []xml.Attr) error {
	err := polylineF(c, attrs)
	if len(c.points) >= 4 {
		c.path.Stop(true)
	}
	return err
}

func pathF(c *iconCursor, attrs []xml.Attr) error {
	var err error
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "d":
			err = c.compilePath(attr.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func descF(c *iconCursor, attrs []xml.Attr) error {
	c.text = descText
	c.icon.Descriptions = append(c.icon.Descriptions, "")
	return nil
}

func titleF(c *iconCursor, attrs []xml.Attr) error {
	c.text = titleText
	c.icon.Titles = append(c.icon.Titles, "")
	return nil
}
