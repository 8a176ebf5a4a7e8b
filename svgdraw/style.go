package svgdraw

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/benoitkugler/turtlesvg/svgpath"
	"golang.org/x/image/colornames"
)

// JoinMode type to specify how segments join.
type JoinMode uint8

const (
	Round JoinMode = iota
	Bevel
	Miter
)

func (s JoinMode) String() string {
	switch s {
	case Round:
		return "round"
	case Bevel:
		return "bevel"
	case Miter:
		return "miter"
	default:
		return "<unknown JoinMode>"
	}
}

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	RoundCap CapMode = iota
	ButtCap
	SquareCap
)

func (c CapMode) String() string {
	switch c {
	case RoundCap:
		return "round"
	case ButtCap:
		return "butt"
	case SquareCap:
		return "square"
	default:
		return "<unknown CapMode>"
	}
}

// ParseJoinMode reads an SVG stroke-linejoin value.
func ParseJoinMode(s string) (JoinMode, error) {
	for _, j := range [...]JoinMode{Round, Bevel, Miter} {
		if j.String() == s {
			return j, nil
		}
	}
	return 0, fmt.Errorf("unknown line join %q", s)
}

// ParseCapMode reads an SVG stroke-linecap value.
func ParseCapMode(s string) (CapMode, error) {
	for _, c := range [...]CapMode{RoundCap, ButtCap, SquareCap} {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown line cap %q", s)
}

// Style groups the painting parameters shared by all surfaces.
type Style struct {
	Stroke      color.NRGBA // pen color
	Background  color.NRGBA
	MarkerColor color.NRGBA
	LineWidth   float64 // in payload units
	Join        JoinMode
	Cap         CapMode

	// MarkerSize is the extent of the built-in marker.
	MarkerSize float64
	// Marker is an optional custom artwork, centered on the
	// origin and pointing toward -x. It is used as is.
	Marker svgpath.Path
}

// DefaultStyle returns the reference look: black pen
// on a gray background.
func DefaultStyle() Style {
	return Style{
		Stroke:      toNRGBA(colornames.Black),
		Background:  toNRGBA(colornames.Gray),
		MarkerColor: toNRGBA(colornames.Black),
		LineWidth:   1,
		Join:        Round,
		Cap:         RoundCap,
		MarkerSize:  svgpath.DefaultMarkerSize,
	}
}

// Validate checks the numeric parameters.
func (s Style) Validate() error {
	if s.LineWidth <= 0 {
		return fmt.Errorf("invalid line width %g", s.LineWidth)
	}
	if s.Marker == nil && s.MarkerSize <= 0 {
		return fmt.Errorf("invalid marker size %g", s.MarkerSize)
	}
	if s.Join > Miter {
		return fmt.Errorf("invalid join mode %d", s.Join)
	}
	if s.Cap > SquareCap {
		return fmt.Errorf("invalid cap mode %d", s.Cap)
	}
	return nil
}

// Artwork returns the marker path, centered on the origin,
// in its neutral orientation.
func (s Style) Artwork() svgpath.Path {
	if s.Marker != nil {
		return s.Marker
	}
	k := s.MarkerSize / svgpath.DefaultMarkerSize
	return svgpath.DefaultMarker().Transform(svgpath.Identity.Scale(k, k))
}

func toNRGBA(c color.RGBA) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

// ParseColor reads a color given as #rgb, #rrggbb, #rrggbbaa
// or by its SVG name.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return toNRGBA(c), nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.NRGBA{}, fmt.Errorf("unknown color %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Hex formats the color as #rrggbb, dropping the alpha channel.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
