// Provides parsing of the SVG images used as turtle markers.
// SVG files are parsed into a list of paths, already transformed
// to the user space of the document, which can then be scaled
// and oriented by the painting backends.
// See for example turtlesvg/svgraster or turtlesvg/svgscene .
package svgicon

import (
	"encoding/xml"
	"errors"
	"io"
	"os"

	"github.com/benoitkugler/turtlesvg/svgpath"
	"golang.org/x/net/html/charset"
)

// Bounds defines a bounding box, such as a viewport
// or a path extent.
type Bounds struct{ X, Y, W, H float64 }

// SvgIcon holds data from parsed SVGs.
// Every shape is kept as a silhouette: backends fill
// the paths with the marker color.
type SvgIcon struct {
	ViewBox      Bounds
	Titles       []string // Title elements collect here
	Descriptions []string // Description elements collect here
	Paths        []svgpath.Path

	Width, Height string // top level width and height attributes
}

// ErrorMode is the for setting how the parser reacts to unparsed elements
type ErrorMode uint8

const (
	// IgnoreErrorMode skips unparsed SVG elements
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode outputs a warning when an unparsed SVG element is found
	WarnErrorMode
	// StrictErrorMode causes an error when an unparsed SVG element is found
	StrictErrorMode
)

var errInvalidIcon = errors.New("invalid svg xml icon")

// ReadIconStream parses an SVG document. Only a subset of SVG is
// supported, enough for simple icons; errMode selects what happens
// with the elements outside of it.
func ReadIconStream(stream io.Reader, errMode ErrorMode) (*SvgIcon, error) {
	cursor := &iconCursor{transforms: []svgpath.Matrix2D{svgpath.Identity}, icon: &SvgIcon{}, errorMode: errMode}
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return cursor.icon, err
		}
		if err = cursor.handle(tok); err != nil {
			return cursor.icon, err
		}
	}
	if !cursor.seenTag {
		return nil, errInvalidIcon
	}
	return cursor.icon, nil
}

// textTarget is the element collecting character data
type textTarget uint8

const (
	noText textTarget = iota
	titleText
	descText
)

func (c *iconCursor) handle(tok xml.Token) error {
	switch tok := tok.(type) {
	case xml.StartElement:
		c.seenTag = true
		if c.skipDepth > 0 {
			c.skipDepth++
			return nil
		}
		// the transform attribute applies to the element and its children
		if err := c.pushTransform(tok.Attr); err != nil {
			return err
		}
		return c.readStartElement(tok)
	case xml.EndElement:
		if c.skipDepth > 1 {
			c.skipDepth--
			return nil
		}
		c.skipDepth = 0
		c.transforms = c.transforms[:len(c.transforms)-1]
		c.text = noText
	case xml.CharData:
		switch c.text {
		case titleText:
			c.icon.Titles[len(c.icon.Titles)-1] += string(tok)
		case descText:
			c.icon.Descriptions[len(c.icon.Descriptions)-1] += string(tok)
		}
	}
	return nil
}

// ReadIcon reads the named SVG file, see ReadIconStream.
func ReadIcon(iconFile string, errMode ErrorMode) (*SvgIcon, error) {
	f, err := os.Open(iconFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadIconStream(f, errMode)
}
