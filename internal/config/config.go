package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benoitkugler/turtlesvg/svgdraw"
	"github.com/benoitkugler/turtlesvg/svgicon"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

// Config is the optional configuration file of turtleview.
// Command line flags take precedence over its values.
type Config struct {
	Endpoint string            `yaml:"endpoint,omitempty" validate:"omitempty,url"`
	Timeout  string            `yaml:"timeout,omitempty" validate:"omitempty,duration"`
	Headers  map[string]string `yaml:"headers,omitempty"`
	Output   OutputConfig      `yaml:"output,omitempty"`
	Style    StyleConfig       `yaml:"style,omitempty"`
	S3       *S3Config         `yaml:"s3,omitempty"`
}

// OutputConfig configures the exported picture.
type OutputConfig struct {
	// Format is one of svg, png or pdf (default: svg).
	Format string `yaml:"format,omitempty" validate:"omitempty,oneof=svg png pdf"`
	// Path is the file written, relative to the output directory or the S3 prefix.
	Path string `yaml:"path,omitempty"`
	// Width and Height are pixels for png, points for pdf and
	// the size attributes for svg.
	Width  int `yaml:"width,omitempty" validate:"gte=0"`
	Height int `yaml:"height,omitempty" validate:"gte=0"`
	// ViewBox is x, y, width, height of the visible area.
	ViewBox []float64 `yaml:"view_box,omitempty" validate:"omitempty,len=4"`
	AutoFit bool      `yaml:"auto_fit,omitempty"`
	Margin  float64   `yaml:"margin,omitempty" validate:"gte=0"`
}

// StyleConfig overrides the default painting style.
type StyleConfig struct {
	Stroke      string  `yaml:"stroke,omitempty"`
	Background  string  `yaml:"background,omitempty"`
	MarkerColor string  `yaml:"marker_color,omitempty"`
	LineWidth   float64 `yaml:"line_width,omitempty" validate:"gte=0"`
	LineCap     string  `yaml:"line_cap,omitempty" validate:"omitempty,oneof=butt round square"`
	LineJoin    string  `yaml:"line_join,omitempty" validate:"omitempty,oneof=miter round bevel"`
	MarkerSize  float64 `yaml:"marker_size,omitempty" validate:"gte=0"`
	// MarkerIcon is an SVG file used as marker artwork.
	MarkerIcon string `yaml:"marker_icon,omitempty"`
}

// S3Config selects an S3 compatible bucket as output destination.
type S3Config struct {
	Bucket         string `yaml:"bucket" validate:"required"`
	Region         string `yaml:"region,omitempty"`
	Endpoint       string `yaml:"endpoint,omitempty" validate:"omitempty,url"`
	Prefix         string `yaml:"prefix,omitempty"`
	ForcePathStyle bool   `yaml:"force_path_style,omitempty"`
}

var (
	defaultValidator = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		_, err := time.ParseDuration(fl.Field().String())
		return err == nil
	})
	return v
}

// Parse reads a YAML configuration and validates it.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := defaultValidator.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("failed to validate config: %w", err)
	}

	return cfg, nil
}

// Load reads the configuration file at `path`.
func Load(fs afero.Fs, path string) (Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// TimeoutDuration returns the parsed timeout, zero when unset.
func (c Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Bounds returns the configured view box.
// ok is false when none is set.
func (o OutputConfig) Bounds() (b svgicon.Bounds, ok bool) {
	if len(o.ViewBox) != 4 {
		return svgicon.Bounds{}, false
	}
	return svgicon.Bounds{X: o.ViewBox[0], Y: o.ViewBox[1], W: o.ViewBox[2], H: o.ViewBox[3]}, true
}

// Build applies the configuration over svgdraw.DefaultStyle.
// The marker icon, if any, is read from `fs`.
func (s StyleConfig) Build(fs afero.Fs) (svgdraw.Style, error) {
	style := svgdraw.DefaultStyle()

	var err error
	if s.Stroke != "" {
		if style.Stroke, err = svgdraw.ParseColor(s.Stroke); err != nil {
			return svgdraw.Style{}, fmt.Errorf("invalid stroke: %w", err)
		}
	}
	if s.Background != "" {
		if style.Background, err = svgdraw.ParseColor(s.Background); err != nil {
			return svgdraw.Style{}, fmt.Errorf("invalid background: %w", err)
		}
	}
	if s.MarkerColor != "" {
		if style.MarkerColor, err = svgdraw.ParseColor(s.MarkerColor); err != nil {
			return svgdraw.Style{}, fmt.Errorf("invalid marker_color: %w", err)
		}
	}
	if s.LineCap != "" {
		if style.Cap, err = svgdraw.ParseCapMode(s.LineCap); err != nil {
			return svgdraw.Style{}, err
		}
	}
	if s.LineJoin != "" {
		if style.Join, err = svgdraw.ParseJoinMode(s.LineJoin); err != nil {
			return svgdraw.Style{}, err
		}
	}

	if s.LineWidth > 0 {
		style.LineWidth = s.LineWidth
	}
	if s.MarkerSize > 0 {
		style.MarkerSize = s.MarkerSize
	}

	if s.MarkerIcon != "" {
		f, err := fs.Open(s.MarkerIcon)
		if err != nil {
			return svgdraw.Style{}, fmt.Errorf("failed to open marker icon: %w", err)
		}
		defer f.Close()

		icon, err := svgicon.ReadIconStream(f, svgicon.WarnErrorMode)
		if err != nil {
			return svgdraw.Style{}, fmt.Errorf("failed to parse marker icon '%s': %w", s.MarkerIcon, err)
		}
		marker, ok := icon.MarkerPath(style.MarkerSize)
		if !ok {
			return svgdraw.Style{}, fmt.Errorf("marker icon '%s' has nothing to draw", s.MarkerIcon)
		}
		style.Marker = marker
	}

	return style, nil
}

// FormatValidationError lists the failed fields of a validation error.
func FormatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("config file has %d validation error(s):", len(validationErrs)))
		for _, fe := range validationErrs {
			sb.WriteString(fmt.Sprintf("\n  • %s: failed '%s' validation", fe.Namespace(), fe.Tag()))
			if fe.Param() != "" {
				sb.WriteString(fmt.Sprintf(" (param: %s)", fe.Param()))
			}
		}
		return errors.New(sb.String())
	}
	return err
}
