package display

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplay(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		log      string
		err      string
		expected string
	}{
		{
			name:     "plain",
			log:      "ok\n",
			err:      "line 1: bad token\nline 2: missing )",
			expected: "ok\nline 1: bad token\nline 2: missing )\n",
		},
		{
			name:     "color",
			opts:     []Option{WithColor(true)},
			log:      "ok",
			err:      "boom",
			expected: "ok\n\x1b[31mboom\x1b[0m\n",
		},
		{
			name:     "html",
			opts:     []Option{WithHTML()},
			log:      "a < b",
			err:      "line 1: <bad>\nline 2",
			expected: "<pre class=\"log\">a &lt; b</pre>\n<div class=\"error\">line 1: &lt;bad&gt;<br>line 2</div>\n",
		},
		{
			name:     "empty log",
			log:      "",
			err:      "",
			expected: "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			d := New(&buf, tt.opts...)
			require.NoError(t, d.Log(tt.log))
			require.NoError(t, d.Error(tt.err))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestIsColorTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsColorTerminal(f))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, IsColorTerminal(os.Stdout))
}
