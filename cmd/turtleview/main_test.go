package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/turtlesvg/svgdraw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = nil
	err := app.Run(t.Context(), append([]string{"turtleview", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestDemo_SVG(t *testing.T) {
	dir := t.TempDir()
	output, err := runApp(t, "demo", "--out", filepath.Join(dir, "demo.svg"))
	require.NoError(t, err)
	assert.Equal(t, "a square and a star\n", output)

	data, err := os.ReadFile(filepath.Join(dir, "demo.svg"))
	require.NoError(t, err)
	assert.Equal(t, 9, strings.Count(string(data), "<line "))
	assert.Equal(t, 2, strings.Count(string(data), "transform=\"translate("))
	assert.Contains(t, string(data), `data-turtle="0"`)
	assert.Contains(t, string(data), `data-turtle="1"`)
}

func TestDemo_PNG(t *testing.T) {
	dir := t.TempDir()
	_, err := runApp(t, "demo", "--out", filepath.Join(dir, "demo.png"), "--width", "120", "--height", "80")
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "demo.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestDemo_PDFToStdout(t *testing.T) {
	output, err := runApp(t, "demo", "--out", "-", "--format", "pdf")
	require.NoError(t, err)
	assert.Contains(t, output, "a square and a star\n")
	assert.Contains(t, output, "%PDF-")
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	result := filepath.Join(dir, "result.json")
	require.NoError(t, os.WriteFile(result, []byte(`{"log": "ok", "canvas": {"t1": {"points": [[0,0],[10,0],[10,10]], "finalHeading": 90}}}`), 0o644))

	output, err := runApp(t, "render", "--out", filepath.Join(dir, "out.svg"), result)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", output)

	data, err := os.ReadFile(filepath.Join(dir, "out.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `transform="translate(10 10) rotate(270)"`)
}

func TestRun(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(received["code"], "oops") {
			w.Write([]byte(`{"error": "line 1:\nbad token"}`))
			return
		}
		w.Write([]byte(`{"log": "done", "canvas": {"0": {"points": [[0,0],[0,10]], "finalHeading": null}}}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	source := filepath.Join(dir, "square.tkom")
	require.NoError(t, os.WriteFile(source, []byte("forward(10)"), 0o644))

	output, err := runApp(t, "run", "--endpoint", server.URL, "--out", filepath.Join(dir, "out.svg"), source)
	require.NoError(t, err)
	assert.Equal(t, "forward(10)", received["code"])
	assert.Equal(t, "done\n", output)

	require.NoError(t, os.WriteFile(source, []byte("oops"), 0o644))
	output, err = runApp(t, "run", "--endpoint", server.URL, "--out", filepath.Join(dir, "out.svg"), "--html", source)
	assert.Error(t, err)
	assert.Equal(t, "<div class=\"error\">line 1:<br>bad token</div>\n", output)

	// the failed run keeps the previous file
	data, err := os.ReadFile(filepath.Join(dir, "out.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `<line x1="0" y1="0" x2="0" y2="10">`)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "turtleview.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  format: svg\n  width: 300\nstyle:\n  stroke: red\n"), 0o644))

	_, err := runApp(t, "--config", cfgPath, "demo", "--out", filepath.Join(dir, "demo.svg"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "demo.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `width="300"`)
	assert.Contains(t, string(data), `stroke="#ff0000"`)

	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  format: gif\n"), 0o644))
	_, err = runApp(t, "--config", cfgPath, "demo", "--out", filepath.Join(dir, "demo.svg"))
	assert.ErrorContains(t, err, "Config.Output.Format: failed 'oneof' validation")
}

func TestFlagsNotShared(t *testing.T) {
	dir := t.TempDir()
	_, err := runApp(t, "demo", "--out", filepath.Join(dir, "small.svg"), "--width", "120")
	require.NoError(t, err)

	cfgPath := filepath.Join(dir, "turtleview.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  width: 300\n"), 0o644))
	_, err = runApp(t, "--config", cfgPath, "demo", "--out", filepath.Join(dir, "large.svg"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "large.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `width="300"`)
	assert.NotContains(t, string(data), `width="120"`)
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"a.svg":  "svg",
		"a.svgz": "svg",
		"a.PNG":  "png",
		"a.pdf":  "pdf",
		"-":      "svg",
	}
	for path, expected := range tests {
		assert.Equal(t, expected, formatFromPath(path), path)
	}
}

func TestDemoPaths(t *testing.T) {
	paths, err := demoPaths()
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Len(t, paths[0].Points, 5)
	assert.Len(t, paths[1].Points, 6)

	// the star closes on its first point
	first, last := paths[1].Points[0], paths[1].Points[5]
	assert.InDelta(t, first.X, last.X, 1e-9)
	assert.InDelta(t, first.Y, last.Y, 1e-9)
	assert.Equal(t, 180.0, svgdraw.MarkerRotation(*paths[1].FinalHeading))
}
