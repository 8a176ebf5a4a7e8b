package svgdraw

import "fmt"

// SurfaceUnavailableError is returned when a renderer or a
// surface is built without anything to draw on.
type SurfaceUnavailableError struct {
	Reason string
}

func (e *SurfaceUnavailableError) Error() string {
	return fmt.Sprintf("drawing surface unavailable: %s", e.Reason)
}
