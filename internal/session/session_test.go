package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benoitkugler/turtlesvg/internal/display"
	"github.com/benoitkugler/turtlesvg/internal/sinks"
	"github.com/benoitkugler/turtlesvg/interpret"
	"github.com/benoitkugler/turtlesvg/svgdraw"
	"github.com/benoitkugler/turtlesvg/svgscene"
	"github.com/benoitkugler/turtlesvg/turtle"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeExecutor struct {
	mu      sync.Mutex
	results map[string]turtle.ExecutionResult
	err     error
	calls   []string

	// active counts concurrent Execute calls
	active, maxActive int
}

func (f *fakeExecutor) Execute(ctx context.Context, code string) (turtle.ExecutionResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, code)
	f.active++
	f.maxActive = max(f.maxActive, f.active)
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.active--
	if f.err != nil {
		return turtle.ExecutionResult{}, f.err
	}
	return f.results[code], nil
}

func decode(t *testing.T, body string) turtle.ExecutionResult {
	t.Helper()
	result, err := turtle.DecodeResult(strings.NewReader(body))
	require.NoError(t, err)
	return result
}

type fixture struct {
	session *Session
	scene   *svgscene.Scene
	out     *bytes.Buffer
	fs      afero.Fs
}

func newFixture(t *testing.T, executor Executor, output string) fixture {
	t.Helper()
	scene, err := svgscene.NewScene(svgscene.DefaultViewBox, svgdraw.DefaultStyle())
	require.NoError(t, err)
	renderer, err := svgdraw.NewRenderer(scene)
	require.NoError(t, err)

	var out bytes.Buffer
	fs := afero.NewMemMapFs()
	opts := []Option{WithLogger(zaptest.NewLogger(t))}
	if output != "" {
		opts = append(opts, WithSink(sinks.NewFilesystemSink(fs), output))
	}
	s, err := New(executor, renderer, display.New(&out), opts...)
	require.NoError(t, err)
	return fixture{session: s, scene: scene, out: &out, fs: fs}
}

func TestSession_Run(t *testing.T) {
	executor := &fakeExecutor{results: map[string]turtle.ExecutionResult{
		"forward(10)": decode(t, `{"log": "ok\n", "canvas": {"t1": {"points": [[0,0],[10,0],[10,10]], "finalHeading": 90}}}`),
	}}
	f := newFixture(t, executor, "drawing.svg")

	stats, err := f.session.Run(t.Context(), "forward(10)")
	require.NoError(t, err)

	assert.Equal(t, svgdraw.Stats{Turtles: 1, Segments: 2, Markers: 1}, stats)
	assert.Equal(t, []string{"forward(10)"}, executor.calls)
	assert.Equal(t, "ok\n", f.out.String())
	assert.Len(t, f.scene.Lines(), 2)
	require.Len(t, f.scene.Markers(), 1)
	assert.Equal(t, 270.0, f.scene.Markers()[0].Rotation)

	data, err := afero.ReadFile(f.fs, "drawing.svg")
	require.NoError(t, err)
	assert.Contains(t, string(data), `<line x1="0" y1="0" x2="10" y2="0">`)
	assert.Contains(t, string(data), `transform="translate(10 10) rotate(270)"`)
}

func TestSession_ServiceErrorKeepsDrawing(t *testing.T) {
	executor := &fakeExecutor{results: map[string]turtle.ExecutionResult{
		"good": decode(t, `{"log": "", "canvas": {"0": {"points": [[0,0],[5,5]], "finalHeading": null}}}`),
		"bad":  decode(t, `{"error": "line 1: bad token"}`),
	}}
	f := newFixture(t, executor, "")

	_, err := f.session.Run(t.Context(), "good")
	require.NoError(t, err)

	_, err = f.session.Run(t.Context(), "bad")
	var serviceErr *interpret.ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "line 1: bad token", serviceErr.Message)
	assert.Equal(t, "line 1: bad token\n", f.out.String())

	// stale geometry stays
	assert.Len(t, f.scene.Lines(), 1)
}

func TestSession_ExecutorError(t *testing.T) {
	executor := &fakeExecutor{err: errors.New("connection refused")}
	f := newFixture(t, executor, "")

	_, err := f.session.Run(t.Context(), "x")
	assert.ErrorContains(t, err, "failed to execute code: connection refused")
}

func TestSession_Malformed(t *testing.T) {
	f := newFixture(t, nil, "")

	_, err := f.session.Apply(t.Context(), decode(t, `{}`))
	var malformed *interpret.MalformedResultError
	assert.ErrorAs(t, err, &malformed)

	_, err = f.session.Run(t.Context(), "x")
	assert.ErrorContains(t, err, "no execution service")
}

func TestSession_SinglePointNoHeading(t *testing.T) {
	f := newFixture(t, nil, "")

	stats, err := f.session.Apply(t.Context(), decode(t, `{"log": "ok", "canvas": {"t1": {"points": [[5,5]], "finalHeading": null}}}`))
	require.NoError(t, err)
	assert.Equal(t, svgdraw.Stats{Turtles: 1}, stats)
	assert.Empty(t, f.scene.Nodes())
	assert.Equal(t, "ok\n", f.out.String())
}

func TestSession_CompressedExport(t *testing.T) {
	f := newFixture(t, nil, "out/drawing.svgz")

	_, err := f.session.Apply(t.Context(), decode(t, `{"log": "", "canvas": {"t1": {"points": [[0,0],[1,1]]}}}`))
	require.NoError(t, err)

	file, err := f.fs.Open("out/drawing.svgz")
	require.NoError(t, err)
	defer file.Close()
	gr, err := gzip.NewReader(file)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = buf.ReadFrom(gr)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")
}

func TestSession_Serialized(t *testing.T) {
	results := map[string]turtle.ExecutionResult{}
	for _, code := range []string{"a", "b", "c", "d"} {
		results[code] = decode(t, `{"log": "`+code+`", "canvas": {}}`)
	}
	executor := &fakeExecutor{results: results}
	f := newFixture(t, executor, "")

	var wg sync.WaitGroup
	for code := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.session.Run(t.Context(), code)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, executor.maxActive)
	assert.Len(t, executor.calls, 4)
	lines := strings.Split(strings.TrimSpace(f.out.String()), "\n")
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, lines)
}

type plainSurface struct{}

func (plainSurface) Clear()                                     {}
func (plainSurface) Segment(string, turtle.Point, turtle.Point) {}
func (plainSurface) Marker(string, turtle.Point, float64)       {}

func TestNew(t *testing.T) {
	d := display.New(&bytes.Buffer{})

	_, err := New(nil, nil, d)
	assert.ErrorContains(t, err, "renderer is required")

	renderer, err := svgdraw.NewRenderer(plainSurface{})
	require.NoError(t, err)

	_, err = New(nil, renderer, nil)
	assert.ErrorContains(t, err, "display is required")

	_, err = New(nil, renderer, d, WithSink(sinks.NewStreamSink(&bytes.Buffer{}), "a.svg"))
	assert.ErrorContains(t, err, "cannot be exported")

	_, err = New(nil, renderer, d)
	assert.NoError(t, err)

	s, err := New(nil, renderer, d, WithLogger(nil))
	require.NoError(t, err)
	_, err = s.Apply(t.Context(), decode(t, `{"log": "", "canvas": {}}`))
	assert.NoError(t, err)
}
