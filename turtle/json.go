package turtle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// UnmarshalJSON accepts [x, y] pairs and {"x": .., "y": ..} objects.
func (p *Point) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var xy struct{ X, Y float64 }
		if err := json.Unmarshal(data, &xy); err != nil {
			return err
		}
		p.X, p.Y = xy.X, xy.Y
		return nil
	}
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("point must have 2 coordinates, got %d", len(pair))
	}
	p.X, p.Y = pair[0], pair[1]
	return nil
}

// MarshalJSON writes the point as a [x, y] pair.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// turtleBody is the wire form of a Turtle, without its id
type turtleBody struct {
	Points       []Point  `json:"points"`
	FinalHeading *float64 `json:"finalHeading"`

	// aliases seen in other servers
	SnakeHeading *float64 `json:"final_heading,omitempty"`
	Heading      *float64 `json:"heading,omitempty"`
}

func (b turtleBody) toTurtle(id string) Turtle {
	heading := b.FinalHeading
	if heading == nil {
		heading = b.SnakeHeading
	}
	if heading == nil {
		heading = b.Heading
	}
	return Turtle{ID: id, Points: b.Points, FinalHeading: heading}
}

// UnmarshalJSON decodes either an object keyed by turtle id,
// whose key order is kept, or an array, where the index is the id.
func (ps *PathSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch tok {
	case nil:
		*ps = nil
		return nil
	case json.Delim('{'):
		out := PathSet{}
		seen := map[string]bool{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			id := keyTok.(string) // object keys are always strings
			if seen[id] {
				return fmt.Errorf("duplicate turtle id %q", id)
			}
			seen[id] = true
			var body turtleBody
			if err := dec.Decode(&body); err != nil {
				return fmt.Errorf("invalid turtle %q: %w", id, err)
			}
			out = append(out, body.toTurtle(id))
		}
		*ps = out
		return nil
	case json.Delim('['):
		out := PathSet{}
		for i := 0; dec.More(); i++ {
			var body turtleBody
			if err := dec.Decode(&body); err != nil {
				return fmt.Errorf("invalid turtle %d: %w", i, err)
			}
			out = append(out, body.toTurtle(strconv.Itoa(i)))
		}
		*ps = out
		return nil
	default:
		return fmt.Errorf("unexpected token %v for turtle paths", tok)
	}
}

// MarshalJSON writes an object keyed by id, in payload order.
func (ps PathSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range ps {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(t.ID)
		if err != nil {
			return nil, err
		}
		points := t.Points
		if points == nil {
			points = []Point{}
		}
		body, err := json.Marshal(turtleBody{Points: points, FinalHeading: t.FinalHeading})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type wireResult struct {
	Log    *string         `json:"log,omitempty"`
	Error  *string         `json:"error,omitempty"`
	Canvas json.RawMessage `json:"canvas,omitempty"`
	Paths  json.RawMessage `json:"paths,omitempty"`
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// UnmarshalJSON accepts the path payload under "canvas" or "paths".
func (r *ExecutionResult) UnmarshalJSON(data []byte) error {
	var wire wireResult
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = ExecutionResult{Log: wire.Log, Error: wire.Error}
	raw := wire.Canvas
	if isNull(raw) {
		raw = wire.Paths
	}
	if isNull(raw) {
		return nil
	}
	var ps PathSet
	if err := json.Unmarshal(raw, &ps); err != nil {
		return fmt.Errorf("invalid canvas: %w", err)
	}
	r.Canvas = &ps
	return nil
}

// MarshalJSON writes the payload under "canvas".
func (r ExecutionResult) MarshalJSON() ([]byte, error) {
	wire := wireResult{Log: r.Log, Error: r.Error}
	if r.Canvas != nil {
		raw, err := r.Canvas.MarshalJSON()
		if err != nil {
			return nil, err
		}
		wire.Canvas = raw
	}
	return json.Marshal(wire)
}

// ErrEmptyResult is returned when the reply body is empty.
var ErrEmptyResult = errors.New("empty execution result")

// DecodeResult reads one JSON execution result.
func DecodeResult(r io.Reader) (ExecutionResult, error) {
	var res ExecutionResult
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		if err == io.EOF {
			return ExecutionResult{}, ErrEmptyResult
		}
		return ExecutionResult{}, fmt.Errorf("failed to decode execution result: %w", err)
	}
	return res, nil
}
