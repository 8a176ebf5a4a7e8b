package config

import (
	"image/color"
	"testing"
	"time"

	"github.com/benoitkugler/turtlesvg/svgdraw"
	"github.com/benoitkugler/turtlesvg/svgicon"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
endpoint: http://turtles.example.com:5000/run
timeout: 5s
headers:
  X-Session: abc
output:
  format: png
  path: drawings/out.png
  width: 640
  height: 480
  view_box: [-50, -50, 100, 100]
  auto_fit: true
  margin: 2
style:
  stroke: "#ff0000"
  background: white
  marker_color: navy
  line_width: 2.5
  line_cap: butt
  line_join: bevel
  marker_size: 16
s3:
  bucket: drawings
  region: eu-west-3
  endpoint: http://localhost:9000
  prefix: turtles
  force_path_style: true
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "http://turtles.example.com:5000/run", cfg.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, map[string]string{"X-Session": "abc"}, cfg.Headers)
	assert.Equal(t, "png", cfg.Output.Format)
	assert.Equal(t, 640, cfg.Output.Width)
	assert.True(t, cfg.Output.AutoFit)

	vb, ok := cfg.Output.Bounds()
	require.True(t, ok)
	assert.Equal(t, svgicon.Bounds{X: -50, Y: -50, W: 100, H: 100}, vb)

	require.NotNil(t, cfg.S3)
	assert.Equal(t, "drawings", cfg.S3.Bucket)
	assert.True(t, cfg.S3.ForcePathStyle)

	style, err := cfg.Style.Build(afero.NewMemMapFs())
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, style.Stroke)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, style.Background)
	assert.Equal(t, color.NRGBA{0, 0, 128, 255}, style.MarkerColor)
	assert.Equal(t, 2.5, style.LineWidth)
	assert.Equal(t, svgdraw.ButtCap, style.Cap)
	assert.Equal(t, svgdraw.Bevel, style.Join)
	assert.Equal(t, 16.0, style.MarkerSize)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse([]byte("{}\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.TimeoutDuration())
	_, ok := cfg.Output.Bounds()
	assert.False(t, ok)

	style, err := cfg.Style.Build(afero.NewMemMapFs())
	require.NoError(t, err)
	assert.Equal(t, svgdraw.DefaultStyle(), style)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		expectErr string
	}{
		{name: "bad format", data: "output:\n  format: gif\n", expectErr: "Config.Output.Format: failed 'oneof' validation (param: svg png pdf)"},
		{name: "bad endpoint", data: "endpoint: not a url\n", expectErr: "Config.Endpoint: failed 'url' validation"},
		{name: "bad timeout", data: "timeout: soon\n", expectErr: "Config.Timeout: failed 'duration' validation"},
		{name: "short view box", data: "output:\n  view_box: [0, 0, 10]\n", expectErr: "Config.Output.ViewBox: failed 'len' validation (param: 4)"},
		{name: "negative width", data: "style:\n  line_width: -1\n", expectErr: "Config.Style.LineWidth: failed 'gte' validation"},
		{name: "missing bucket", data: "s3:\n  region: us-east-1\n", expectErr: "Config.S3.Bucket: failed 'required' validation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, FormatValidationError(err).Error(), tt.expectErr)
		})
	}

	_, err := Parse([]byte("output: [1, 2"))
	assert.ErrorContains(t, err, "failed to unmarshal config")
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "turtleview.yaml", []byte("endpoint: http://localhost:8080\n"), 0o644))

	cfg, err := Load(fs, "turtleview.yaml")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.Endpoint)

	_, err = Load(fs, "missing.yaml")
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestStyleBuild_MarkerIcon(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "arrow.svg",
		[]byte(`<svg viewBox="0 0 20 10"><polygon points="0,5 20,0 20,10"/></svg>`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "empty.svg", []byte(`<svg viewBox="0 0 20 10"></svg>`), 0o644))

	style, err := StyleConfig{MarkerIcon: "arrow.svg", MarkerSize: 20}.Build(fs)
	require.NoError(t, err)
	assert.Equal(t, "M-10,0 L10,-5 L10,5 Z", style.Marker.ToSVGPath())
	assert.Equal(t, style.Marker, style.Artwork())

	_, err = StyleConfig{MarkerIcon: "empty.svg"}.Build(fs)
	assert.ErrorContains(t, err, "has nothing to draw")

	_, err = StyleConfig{MarkerIcon: "missing.svg"}.Build(fs)
	assert.ErrorContains(t, err, "failed to open marker icon")

	_, err = StyleConfig{Stroke: "#12345"}.Build(fs)
	assert.ErrorContains(t, err, "invalid stroke")
}
