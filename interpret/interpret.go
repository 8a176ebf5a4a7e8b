// Package interpret turns an execution result into the commands a
// client shell should perform: show the log, show an error, draw the
// turtle paths.
package interpret

import (
	"strings"

	"github.com/benoitkugler/turtlesvg/turtle"
	"golang.org/x/net/html"
)

// Command is one of DisplayLog, DisplayError or DrawPaths.
type Command interface {
	isCommand()
}

// DisplayLog shows the program output as plain text.
type DisplayLog struct {
	Text string
}

// DisplayError shows the service error. Text is the raw message,
// HTML its escaped form with newlines turned into line breaks.
type DisplayError struct {
	Text string
	HTML string
}

// DrawPaths redraws the scene with the given paths.
type DrawPaths struct {
	Paths turtle.PathSet
}

func (DisplayLog) isCommand()   {}
func (DisplayError) isCommand() {}
func (DrawPaths) isCommand()    {}

// Err returns the error as a Go error value.
func (d DisplayError) Err() error { return &ServiceError{Message: d.Text} }

// ErrorHTML escapes text and replaces newlines by <br>.
func ErrorHTML(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}

// Interpret classifies the result. A failure yields a single
// DisplayError: nothing is drawn and the previous scene stays as is.
// A success yields DisplayLog followed by DrawPaths.
// A result with neither or both kinds of fields is a *MalformedResultError.
func Interpret(result turtle.ExecutionResult) ([]Command, error) {
	failed, succeeded := result.Failed(), result.Succeeded()
	switch {
	case failed && succeeded:
		return nil, &MalformedResultError{Reason: "both error and log/canvas are set"}
	case !failed && !succeeded:
		return nil, &MalformedResultError{Reason: "neither error nor log/canvas is set"}
	case failed:
		return []Command{DisplayError{Text: *result.Error, HTML: ErrorHTML(*result.Error)}}, nil
	}

	var log string
	if result.Log != nil {
		log = *result.Log
	}
	var paths turtle.PathSet
	if result.Canvas != nil {
		paths = *result.Canvas
	}
	return []Command{DisplayLog{Text: log}, DrawPaths{Paths: paths}}, nil
}
