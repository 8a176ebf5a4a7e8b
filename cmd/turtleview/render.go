package main

import (
	"context"
	"fmt"
	"os"

	"github.com/benoitkugler/turtlesvg/turtle"
	"github.com/urfave/cli/v3"
)

func newRenderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Render a saved execution result",
		Flags: newOutputFlags(),
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "result",
				UsageText: "The JSON reply of the execution service",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			filename := command.StringArg("result")
			if filename == "" {
				return fmt.Errorf("no result file provided")
			}

			f, err := os.Open(filename)
			if err != nil {
				return fmt.Errorf("failed to open result file: %w", err)
			}
			defer f.Close()

			result, err := turtle.DecodeResult(f)
			if err != nil {
				return fmt.Errorf("failed to read result file '%s': %w", filename, err)
			}

			cfg, err := loadConfig(command)
			if err != nil {
				return err
			}

			s, err := newSession(ctx, command, cfg, nil)
			if err != nil {
				return err
			}

			_, err = s.Apply(ctx, result)
			return err
		},
	}
}
