// Package session runs one code submission at a time through the
// whole client pipeline: execute, interpret, display, draw, export.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/benoitkugler/turtlesvg/internal/display"
	"github.com/benoitkugler/turtlesvg/internal/sinks"
	"github.com/benoitkugler/turtlesvg/interpret"
	"github.com/benoitkugler/turtlesvg/svgdraw"
	"github.com/benoitkugler/turtlesvg/turtle"
	"go.uber.org/zap"
)

// Executor submits source code to the execution service.
type Executor interface {
	Execute(ctx context.Context, code string) (turtle.ExecutionResult, error)
}

// Session serializes submissions: a second Run waits for the first
// to be fully drawn and exported.
type Session struct {
	mu sync.Mutex

	executor Executor
	renderer *svgdraw.Renderer
	display  *display.Display
	sink     sinks.Sink
	output   string

	logger *zap.Logger
}

type Option func(*Session)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSink exports the drawing to `output` in `sink` after each draw.
// The renderer surface must then implement svgdraw.Exporter.
func WithSink(sink sinks.Sink, output string) Option {
	return func(s *Session) {
		s.sink = sink
		s.output = output
	}
}

// New returns a session. `executor` may be nil for offline use with Apply.
func New(executor Executor, renderer *svgdraw.Renderer, d *display.Display, opts ...Option) (*Session, error) {
	if renderer == nil {
		return nil, errors.New("renderer is required")
	}
	if d == nil {
		return nil, errors.New("display is required")
	}
	s := &Session{
		executor: executor,
		renderer: renderer,
		display:  d,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("session")

	if s.sink != nil {
		if _, ok := renderer.Surface().(svgdraw.Exporter); !ok {
			return nil, fmt.Errorf("surface %T cannot be exported", renderer.Surface())
		}
	}
	return s, nil
}

// Run submits `code` and applies the reply.
func (s *Session) Run(ctx context.Context, code string) (svgdraw.Stats, error) {
	if s.executor == nil {
		return svgdraw.Stats{}, errors.New("no execution service configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("submitting code", zap.Int("bytes", len(code)))
	result, err := s.executor.Execute(ctx, code)
	if err != nil {
		return svgdraw.Stats{}, fmt.Errorf("failed to execute code: %w", err)
	}
	return s.apply(ctx, result)
}

// Apply interprets an already received reply.
// A failed execution is displayed and returned as *interpret.ServiceError;
// the previous drawing is then left untouched.
func (s *Session) Apply(ctx context.Context, result turtle.ExecutionResult) (svgdraw.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.apply(ctx, result)
}

func (s *Session) apply(ctx context.Context, result turtle.ExecutionResult) (svgdraw.Stats, error) {
	commands, err := interpret.Interpret(result)
	if err != nil {
		return svgdraw.Stats{}, err
	}

	var stats svgdraw.Stats
	for _, command := range commands {
		switch command := command.(type) {
		case interpret.DisplayError:
			s.logger.Info("execution failed", zap.String("error", command.Text))
			if err := s.display.Error(command.Text); err != nil {
				return stats, fmt.Errorf("failed to display error: %w", err)
			}
			return stats, command.Err()
		case interpret.DisplayLog:
			if err := s.display.Log(command.Text); err != nil {
				return stats, fmt.Errorf("failed to display log: %w", err)
			}
		case interpret.DrawPaths:
			stats = s.renderer.Draw(command.Paths)
			s.logger.Info("drawn",
				zap.Int("turtles", stats.Turtles),
				zap.Int("segments", stats.Segments),
				zap.Int("markers", stats.Markers),
			)
			if err := s.export(ctx); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

func (s *Session) export(ctx context.Context) error {
	if s.sink == nil {
		return nil
	}
	exporter := s.renderer.Surface().(svgdraw.Exporter)

	var buf bytes.Buffer
	if err := exporter.Export(&buf); err != nil {
		return fmt.Errorf("failed to export drawing: %w", err)
	}
	data, err := sinks.Encode(s.output, buf.Bytes())
	if err != nil {
		return err
	}
	if err := s.sink.Write(ctx, s.output, data); err != nil {
		return fmt.Errorf("failed to write %s to %s: %w", s.output, s.sink.Name(), err)
	}
	s.logger.Debug("exported",
		zap.String("sink", s.sink.Name()),
		zap.String("path", s.output),
		zap.String("media_type", exporter.MediaType()),
		zap.Int("bytes", buf.Len()),
	)
	return nil
}
