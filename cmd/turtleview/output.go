package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/turtlesvg/internal/config"
	"github.com/benoitkugler/turtlesvg/internal/display"
	"github.com/benoitkugler/turtlesvg/internal/session"
	"github.com/benoitkugler/turtlesvg/internal/sinks"
	"github.com/benoitkugler/turtlesvg/svgdraw"
	"github.com/benoitkugler/turtlesvg/svgpdf"
	"github.com/benoitkugler/turtlesvg/svgraster"
	"github.com/benoitkugler/turtlesvg/svgscene"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	defaultOutput     = "turtle.svg"
	defaultImageWidth = 400
)

// newOutputFlags returns the flags shared by every command producing
// a drawing. Flags hold their parsed state, so each app needs fresh ones.
func newOutputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: svg, png or pdf (default: from the output extension)",
			Action: func(ctx context.Context, command *cli.Command, s string) error {
				switch s {
				case "svg", "png", "pdf":
					return nil
				}
				return fmt.Errorf("unsupported format %s", s)
			},
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output file, or - for the standard output (default: " + defaultOutput + ")",
		},
		&cli.IntFlag{
			Name:  "width",
			Usage: "Picture width (pixels for png, points for pdf)",
		},
		&cli.IntFlag{
			Name:  "height",
			Usage: "Picture height (pixels for png, points for pdf)",
		},
		&cli.BoolFlag{
			Name:  "auto-fit",
			Usage: "Fit the svg view box to the drawing",
		},
		&cli.BoolFlag{
			Name:  "html",
			Usage: "Print the log and errors as HTML fragments",
		},
	}
}

// loadConfig reads the configuration file, if any, and applies
// the command line overrides.
func loadConfig(command *cli.Command) (config.Config, error) {
	var cfg config.Config
	if path := command.String("config"); path != "" {
		var err error
		cfg, err = config.Load(afero.NewOsFs(), path)
		if err != nil {
			return config.Config{}, config.FormatValidationError(err)
		}
	}

	if command.IsSet("endpoint") {
		cfg.Endpoint = command.String("endpoint")
	}
	if command.IsSet("out") {
		cfg.Output.Path = command.String("out")
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = defaultOutput
	}
	if command.IsSet("format") {
		cfg.Output.Format = command.String("format")
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = formatFromPath(cfg.Output.Path)
	}
	if command.IsSet("width") {
		cfg.Output.Width = int(command.Int("width"))
	}
	if command.IsSet("height") {
		cfg.Output.Height = int(command.Int("height"))
	}
	if command.Bool("auto-fit") {
		cfg.Output.AutoFit = true
	}
	return cfg, nil
}

func formatFromPath(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".png":
		return "png"
	case ".pdf":
		return "pdf"
	default:
		return "svg"
	}
}

// newSurface builds the backend selected by the output format.
func newSurface(out config.OutputConfig, style svgdraw.Style) (svgdraw.Exporter, error) {
	viewBox, ok := out.Bounds()
	if !ok {
		viewBox = svgscene.DefaultViewBox
	}

	switch out.Format {
	case "png":
		width, height := out.Width, out.Height
		if width == 0 {
			width = defaultImageWidth
		}
		if height == 0 {
			height = width
		}
		surface, _, err := svgraster.NewImage(width, height, style)
		return surface, err
	case "pdf":
		page := svgpdf.DefaultPage
		if out.Width > 0 {
			page.W = float64(out.Width)
		}
		if out.Height > 0 {
			page.H = float64(out.Height)
		}
		return svgpdf.NewSurface(viewBox, page, style)
	default:
		var opts []svgscene.Option
		if out.AutoFit {
			opts = append(opts, svgscene.AutoViewBox(out.Margin))
		}
		scene, err := svgscene.NewScene(viewBox, style, opts...)
		if err != nil {
			return nil, err
		}
		if out.Width > 0 || out.Height > 0 {
			scene.SetSize(sizeAttr(out.Width), sizeAttr(out.Height))
		}
		return scene, nil
	}
}

func sizeAttr(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprint(v)
}

// newSink returns where the drawing is written, and the path
// passed to the sink.
func newSink(ctx context.Context, cfg config.Config, stdout io.Writer) (sinks.Sink, string, error) {
	if cfg.S3 != nil {
		sink, err := sinks.NewS3Sink(ctx, sinks.S3Config{
			Bucket:         cfg.S3.Bucket,
			Region:         cfg.S3.Region,
			Endpoint:       cfg.S3.Endpoint,
			Prefix:         cfg.S3.Prefix,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to create s3 sink: %w", err)
		}
		return sink, cfg.Output.Path, nil
	}

	if cfg.Output.Path == "-" {
		return sinks.NewStreamSink(stdout), "-", nil
	}

	dir, file := filepath.Split(cfg.Output.Path)
	if dir == "" {
		dir = "."
	}
	sink, err := sinks.NewFilesystemSinkFromPath(dir)
	if err != nil {
		return nil, "", err
	}
	return sink, file, nil
}

// newSession wires the configured backend, display and sink.
// `executor` is nil for offline commands.
func newSession(ctx context.Context, command *cli.Command, cfg config.Config, executor session.Executor) (*session.Session, error) {
	logger := getLogger(ctx)

	style, err := cfg.Style.Build(afero.NewOsFs())
	if err != nil {
		return nil, fmt.Errorf("invalid style: %w", err)
	}

	surface, err := newSurface(cfg.Output, style)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s surface: %w", cfg.Output.Format, err)
	}

	renderer, err := svgdraw.NewRenderer(surface, svgdraw.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	// keep stdout for the drawing when streaming it
	out := command.Root().Writer
	if cfg.Output.Path == "-" && cfg.S3 == nil {
		out = command.Root().ErrWriter
	}
	var opts []display.Option
	if command.Bool("html") {
		opts = append(opts, display.WithHTML())
	} else if f, ok := out.(*os.File); ok {
		opts = append(opts, display.WithColor(display.IsColorTerminal(f)))
	}

	sink, path, err := newSink(ctx, cfg, command.Root().Writer)
	if err != nil {
		return nil, err
	}
	logger.Debug("output configured",
		zap.String("format", cfg.Output.Format),
		zap.String("sink", sink.Name()),
		zap.String("path", path),
	)

	return session.New(executor, renderer, display.New(out, opts...),
		session.WithLogger(logger),
		session.WithSink(sink, path),
	)
}
