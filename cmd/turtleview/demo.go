package main

import (
	"context"
	"math"

	"github.com/benoitkugler/turtlesvg/svgpath"
	"github.com/benoitkugler/turtlesvg/turtle"
	"github.com/urfave/cli/v3"
)

func newDemoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Render a built-in drawing, without execution service",
		Flags: newOutputFlags(),
		Action: func(ctx context.Context, command *cli.Command) error {
			cfg, err := loadConfig(command)
			if err != nil {
				return err
			}

			s, err := newSession(ctx, command, cfg, nil)
			if err != nil {
				return err
			}

			paths, err := demoPaths()
			if err != nil {
				return err
			}
			log := "a square and a star\n"
			_, err = s.Apply(ctx, turtle.ExecutionResult{Log: &log, Canvas: &paths})
			return err
		},
	}
}

// demoPaths traces a square and a five-pointed star.
func demoPaths() (turtle.PathSet, error) {
	b := turtle.NewBuilder()

	square := b.AddTurtle(-80, -40)
	for _, step := range [][2]float64{{60, 0}, {0, 60}, {-60, 0}, {0, -60}} {
		if err := b.Move(square, step[0], step[1]); err != nil {
			return nil, err
		}
	}
	if err := b.Rotate(square, 270); err != nil {
		return nil, err
	}

	star := b.AddTurtle(20, 0)
	heading := 0.0
	for range 5 {
		dx, dy := polar(60, heading)
		if err := b.Move(star, dx, dy); err != nil {
			return nil, err
		}
		heading += 144
	}
	if err := b.Rotate(star, heading); err != nil {
		return nil, err
	}

	return b.PathSet(), nil
}

// polar returns the offset of a move of `length` along `heading` degrees.
func polar(length, heading float64) (dx, dy float64) {
	a := svgpath.Deg2Rad(heading)
	return length * math.Cos(a), length * math.Sin(a)
}
