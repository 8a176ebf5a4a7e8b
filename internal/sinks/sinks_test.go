package sinks

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUploader struct {
	uploads []mockUpload
	err     error
}

type mockUpload struct {
	bucket          string
	key             string
	body            []byte
	contentType     string
	contentEncoding string
}

func (m *mockUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, _ := io.ReadAll(input.Body)
	upload := mockUpload{
		bucket: *input.Bucket,
		key:    *input.Key,
		body:   body,
	}
	if input.ContentType != nil {
		upload.contentType = *input.ContentType
	}
	if input.ContentEncoding != nil {
		upload.contentEncoding = *input.ContentEncoding
	}
	m.uploads = append(m.uploads, upload)
	return &manager.UploadOutput{}, nil
}

func TestS3Sink_Name(t *testing.T) {
	assert.Equal(t, "s3(drawings)", NewS3SinkWithUploader("drawings", "", &mockUploader{}).Name())
	assert.Equal(t, "s3(drawings/turtles)", NewS3SinkWithUploader("drawings", "turtles", &mockUploader{}).Name())
	assert.Equal(t, "s3", NewS3SinkWithUploader("drawings", "", &mockUploader{}).Kind())
}

func TestS3Sink_Write(t *testing.T) {
	tests := []struct {
		name                string
		prefix              string
		path                string
		expectedKey         string
		expectedContentType string
		expectedEncoding    string
	}{
		{
			name:                "svg without prefix",
			path:                "square.svg",
			expectedKey:         "square.svg",
			expectedContentType: "image/svg+xml",
		},
		{
			name:                "png with prefix",
			prefix:              "turtles/2026",
			path:                "square.png",
			expectedKey:         "turtles/2026/square.png",
			expectedContentType: "image/png",
		},
		{
			name:                "compressed svg",
			prefix:              "turtles",
			path:                "nested/star.svgz",
			expectedKey:         "turtles/nested/star.svgz",
			expectedContentType: "image/svg+xml",
			expectedEncoding:    "gzip",
		},
		{
			name:                "pdf",
			path:                "square.pdf",
			expectedKey:         "square.pdf",
			expectedContentType: "application/pdf",
		},
		{
			name:        "unknown extension",
			path:        "square.bin",
			expectedKey: "square.bin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := &mockUploader{}
			sink := NewS3SinkWithUploader("drawings", tt.prefix, uploader)

			err := sink.Write(t.Context(), tt.path, bytes.NewBufferString("<svg/>"))
			require.NoError(t, err)

			require.Len(t, uploader.uploads, 1)
			upload := uploader.uploads[0]
			assert.Equal(t, "drawings", upload.bucket)
			assert.Equal(t, tt.expectedKey, upload.key)
			assert.Equal(t, "<svg/>", string(upload.body))
			assert.Equal(t, tt.expectedContentType, upload.contentType)
			assert.Equal(t, tt.expectedEncoding, upload.contentEncoding)
		})
	}
}

func TestS3Sink_WriteError(t *testing.T) {
	sink := NewS3SinkWithUploader("drawings", "p", &mockUploader{err: errors.New("denied")})
	err := sink.Write(t.Context(), "a.svg", bytes.NewBufferString(""))
	assert.ErrorContains(t, err, "failed to upload to s3://drawings/p/a.svg: denied")
}

func TestNewS3Sink_RequiresBucket(t *testing.T) {
	_, err := NewS3Sink(t.Context(), S3Config{})
	assert.ErrorContains(t, err, "bucket is required")
}

func TestFilesystemSink(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := NewFilesystemSink(fs)
	assert.Equal(t, "filesystem", sink.Kind())

	require.NoError(t, sink.Write(t.Context(), "out/nested/square.svg", bytes.NewBufferString("<svg/>")))

	data, err := afero.ReadFile(fs, "out/nested/square.svg")
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))

	// files are overwritten
	require.NoError(t, sink.Write(t.Context(), "out/nested/square.svg", bytes.NewBufferString("<svg></svg>")))
	data, err = afero.ReadFile(fs, "out/nested/square.svg")
	require.NoError(t, err)
	assert.Equal(t, "<svg></svg>", string(data))
}

func TestFilesystemSinkFromPath(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFilesystemSinkFromPath(dir + "/drawings")
	require.NoError(t, err)
	require.NoError(t, sink.Write(t.Context(), "a.png", bytes.NewBufferString("png")))

	data, err := afero.ReadFile(afero.NewOsFs(), dir+"/drawings/a.png")
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestStreamSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewStreamSink(&buf)
	require.NoError(t, sink.Write(t.Context(), "ignored.svg", bytes.NewBufferString("<svg/>")))
	assert.Equal(t, "<svg/>", buf.String())
	assert.Equal(t, "stream", sink.Name())
}

func TestEncode(t *testing.T) {
	r, err := Encode("a.svg", []byte("<svg/>"))
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))

	r, err = Encode("a.svgz", []byte("<svg/>"))
	require.NoError(t, err)
	gr, err := gzip.NewReader(r)
	require.NoError(t, err)
	data, err = io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
}
