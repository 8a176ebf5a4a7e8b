package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/benoitkugler/turtlesvg/turtle"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

const (
	DefaultEndpoint = "http://127.0.0.1:5000"
	DefaultTimeout  = 30 * time.Second

	// maxErrorBody bounds the excerpt kept in a StatusError
	maxErrorBody = 1024
)

var (
	defaultHeaders = map[string]string{
		"User-Agent":      "turtleview/0.1.0",
		"Content-Type":    "application/json",
		"Accept":          "application/json, text/plain",
		"Accept-Encoding": "gzip, zstd",
	}
)

type Config struct {
	Endpoint string
	Headers  map[string]string
	Timeout  time.Duration
}

// Client submits turtle programs to the execution service.
type Client struct {
	endpoint   *url.URL
	httpClient *http.Client
	headers    map[string]string
	logger     *zap.Logger
}

type Option func(*Client)

func WithHttpClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// StatusError is returned when the service replies with a non 2xx status.
type StatusError struct {
	StatusCode int
	Body       string // beginning of the reply
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("execution service returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("execution service returned %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

type submission struct {
	Code string `json:"code"`
}

func New(cfg Config, opts ...Option) (*Client, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	parsedURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse endpoint '%s': %w", endpoint, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("endpoint must use http or https scheme, got: %s", parsedURL.Scheme)
	}

	c := &Client{
		endpoint: parsedURL,
		headers:  lo.Assign(defaultHeaders, cfg.Headers),
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}

		c.httpClient = &http.Client{
			Transport: cleanhttp.DefaultPooledTransport(),
			Timeout:   timeout,
		}
	}

	return c, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Execute posts `code` and decodes the execution result.
// A result carrying an error is not a Go error: it is up to
// the caller to interpret it.
func (c *Client) Execute(ctx context.Context, code string) (turtle.ExecutionResult, error) {
	payload, err := json.Marshal(submission{Code: code})
	if err != nil {
		return turtle.ExecutionResult{}, fmt.Errorf("failed to encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return turtle.ExecutionResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	c.logger.Debug("submitting code", zap.String("endpoint", c.endpoint.String()), zap.Int("size", len(code)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return turtle.ExecutionResult{}, fmt.Errorf("failed to reach execution service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("reply received",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	body, closeBody, err := decodeBody(resp)
	if err != nil {
		return turtle.ExecutionResult{}, err
	}
	defer closeBody()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
		return turtle.ExecutionResult{}, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(excerpt)),
		}
	}

	result, err := turtle.DecodeResult(body)
	if err != nil {
		return turtle.ExecutionResult{}, err
	}
	return result, nil
}

// decodeBody undoes the content encoding and converts the
// declared charset, if any, to UTF-8.
func decodeBody(resp *http.Response) (io.Reader, func(), error) {
	var body io.Reader = resp.Body
	closeBody := func() {}

	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "", "identity":
	case "gzip":
		gzipReader, err := gzip.NewReader(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		body, closeBody = gzipReader, func() { _ = gzipReader.Close() }
	case "zstd":
		zstdReader, err := zstd.NewReader(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		body, closeBody = zstdReader, zstdReader.Close
	default:
		return nil, nil, fmt.Errorf("unsupported content encoding: %s", resp.Header.Get("Content-Encoding"))
	}

	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		if label := params["charset"]; label != "" && !strings.EqualFold(label, "utf-8") {
			converted, err := charset.NewReaderLabel(label, body)
			if err != nil {
				closeBody()
				return nil, nil, fmt.Errorf("failed to decode charset %s: %w", label, err)
			}
			body = converted
		}
	}

	return body, closeBody, nil
}
