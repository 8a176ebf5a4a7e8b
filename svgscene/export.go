package svgscene

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/benoitkugler/turtlesvg/svgdraw"
	"github.com/benoitkugler/turtlesvg/svgicon"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// MediaType is the content type of the exported document.
const MediaType = "image/svg+xml"

type svgDocument struct {
	XMLName    xml.Name   `xml:"svg"`
	Xmlns      string     `xml:"xmlns,attr"`
	ViewBox    string     `xml:"viewBox,attr"`
	Width      string     `xml:"width,attr,omitempty"`
	Height     string     `xml:"height,attr,omitempty"`
	Background svgRect    `xml:"rect"`
	Turtles    []svgGroup `xml:"g"`
}

type svgRect struct {
	X           string `xml:"x,attr"`
	Y           string `xml:"y,attr"`
	Width       string `xml:"width,attr"`
	Height      string `xml:"height,attr"`
	Fill        string `xml:"fill,attr"`
	FillOpacity string `xml:"fill-opacity,attr,omitempty"`
}

type svgGroup struct {
	Class          string      `xml:"class,attr"`
	Turtle         string      `xml:"data-turtle,attr"`
	Stroke         string      `xml:"stroke,attr"`
	StrokeOpacity  string      `xml:"stroke-opacity,attr,omitempty"`
	StrokeWidth    string      `xml:"stroke-width,attr"`
	StrokeLinecap  string      `xml:"stroke-linecap,attr"`
	StrokeLinejoin string      `xml:"stroke-linejoin,attr"`
	Lines          []svgLine   `xml:"line"`
	Markers        []svgMarker `xml:"path"`
}

type svgLine struct {
	X1 string `xml:"x1,attr"`
	Y1 string `xml:"y1,attr"`
	X2 string `xml:"x2,attr"`
	Y2 string `xml:"y2,attr"`
}

type svgMarker struct {
	D           string `xml:"d,attr"`
	Transform   string `xml:"transform,attr"`
	Fill        string `xml:"fill,attr"`
	FillOpacity string `xml:"fill-opacity,attr,omitempty"`
	Stroke      string `xml:"stroke,attr"`
}

func fmtF(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func fmtViewBox(b svgicon.Bounds) string {
	return strings.Join([]string{fmtF(b.X), fmtF(b.Y), fmtF(b.W), fmtF(b.H)}, " ")
}

// opacity returns the alpha as an SVG opacity, or an empty string when opaque
func opacity(a uint8) string {
	if a == 0xff {
		return ""
	}
	return fmtF(float64(a) / 0xff)
}

// document builds the SVG tree of the scene: one group per turtle,
// in order of first appearance.
func (s *Scene) document() svgDocument {
	vb := s.ViewBox()
	doc := svgDocument{
		Xmlns:   svgNamespace,
		ViewBox: fmtViewBox(vb),
		Background: svgRect{
			X: fmtF(vb.X), Y: fmtF(vb.Y), Width: fmtF(vb.W), Height: fmtF(vb.H),
			Fill:        svgdraw.Hex(s.style.Background),
			FillOpacity: opacity(s.style.Background.A),
		},
	}

	groups := map[string]int{}
	group := func(t string) *svgGroup {
		i, ok := groups[t]
		if !ok {
			i = len(doc.Turtles)
			groups[t] = i
			doc.Turtles = append(doc.Turtles, svgGroup{
				Class:          "turtle",
				Turtle:         t,
				Stroke:         svgdraw.Hex(s.style.Stroke),
				StrokeOpacity:  opacity(s.style.Stroke.A),
				StrokeWidth:    fmtF(s.style.LineWidth),
				StrokeLinecap:  s.style.Cap.String(),
				StrokeLinejoin: s.style.Join.String(),
			})
		}
		return &doc.Turtles[i]
	}

	d := s.artwork.ToSVGPath()
	for _, n := range s.nodes {
		switch n := n.(type) {
		case Line:
			g := group(n.Turtle)
			g.Lines = append(g.Lines, svgLine{
				X1: fmtF(n.From.X), Y1: fmtF(n.From.Y),
				X2: fmtF(n.To.X), Y2: fmtF(n.To.Y),
			})
		case Marker:
			g := group(n.Turtle)
			g.Markers = append(g.Markers, svgMarker{
				D:           d,
				Transform:   fmt.Sprintf("translate(%s %s) rotate(%s)", fmtF(n.At.X), fmtF(n.At.Y), fmtF(n.Rotation)),
				Fill:        svgdraw.Hex(s.style.MarkerColor),
				FillOpacity: opacity(s.style.MarkerColor.A),
				Stroke:      "none",
			})
		}
	}
	return doc
}

// SetSize sets the width and height attributes of the exported
// document. Empty values let the viewer decide.
func (s *Scene) SetSize(width, height string) {
	s.width, s.height = width, height
}

// Export writes the scene as a standalone SVG document.
func (s *Scene) Export(w io.Writer) error {
	doc := s.document()
	doc.Width, doc.Height = s.width, s.height
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding svg: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// MediaType implements svgdraw.Exporter.
func (s *Scene) MediaType() string { return MediaType }
