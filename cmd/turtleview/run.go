package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/benoitkugler/turtlesvg/internal/client"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func newRunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Execute a turtle program and render its drawing",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "endpoint",
				Aliases: []string{"e"},
				Usage:   "Execution service URL (default: " + client.DefaultEndpoint + ")",
				Sources: cli.EnvVars("TURTLEVIEW_ENDPOINT"),
			},
		}, newOutputFlags()...),
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "source",
				UsageText: "The program to execute, - for the standard input",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := getLogger(ctx)

			source := command.StringArg("source")
			if source == "" {
				return fmt.Errorf("no source file provided")
			}

			code, err := readSource(source)
			if err != nil {
				return fmt.Errorf("failed to read source '%s': %w", source, err)
			}

			cfg, err := loadConfig(command)
			if err != nil {
				return err
			}

			c, err := client.New(client.Config{
				Endpoint: cfg.Endpoint,
				Headers:  cfg.Headers,
				Timeout:  cfg.TimeoutDuration(),
			}, client.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			s, err := newSession(ctx, command, cfg, c)
			if err != nil {
				return err
			}

			logger = logger.With(zap.String("source", source), zap.String("endpoint", c.Endpoint()))
			logger.Debug("running program")

			stats, err := s.Run(ctx, code)
			if err != nil {
				return err
			}
			logger.Info("program rendered", zap.Int("segments", stats.Segments), zap.Int("markers", stats.Markers))
			return nil
		},
	}
}

func readSource(name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(name)
	return string(data), err
}
