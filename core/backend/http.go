package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultReadSize = 4 * 1024
	maxErrorBody    = 4 * 1024
)

type HTTPOption func(*HTTPClient)

// WithHeaders adds headers to every request, e.g. an authorization token.
func WithHeaders(headers map[string]string) HTTPOption {
	return func(c *HTTPClient) {
		for key, value := range headers {
			c.headers.Set(key, value)
		}
	}
}

// WithTimeout bounds the whole exchange, response body included. Zero means
// no timeout.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(c *HTTPClient) { c.client.Timeout = timeout }
}

// WithRoundTripper replaces the base transport the client instruments.
func WithRoundTripper(transport http.RoundTripper) HTTPOption {
	return func(c *HTTPClient) { c.client.Transport = instrumentedTransport(transport) }
}

// WithReadSize sets the size of a single body read, and therefore the upper
// bound of a chunk.
func WithReadSize(size int) HTTPOption {
	return func(c *HTTPClient) {
		if size > 0 {
			c.readSize = size
		}
	}
}

// HTTPClient posts requests as JSON and streams the chunked response body.
type HTTPClient struct {
	url      string
	headers  http.Header
	client   *http.Client
	readSize int
}

func NewHTTPClient(url string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		url:      url,
		headers:  http.Header{},
		client:   &http.Client{Transport: instrumentedTransport(http.DefaultTransport)},
		readSize: defaultReadSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func instrumentedTransport(base http.RoundTripper) http.RoundTripper {
	return otelhttp.NewTransport(base,
		otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
			return operationName + " " + request.URL.Path
		}),
	)
}

func (c *HTTPClient) Open(ctx context.Context, request Request) (Stream, error) {
	ctx, span := tracer.Start(ctx, "open http stream")
	defer span.End()

	body, err := json.Marshal(request)
	if err != nil {
		err = fmt.Errorf("error marshalling request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("request.url", c.url),
		attribute.Int("request.messages", len(request.Messages)),
		attribute.Int("request.bytes", len(body)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	req.Header = c.headers.Clone()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		if errorBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); readErr != nil {
			span.RecordError(fmt.Errorf("error reading error body: %w", readErr))
		} else {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
			logger.WarnContext(ctx, "backend rejected request", "status", resp.Status, "body", string(errorBody))
		}

		err := fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return &httpStream{ctx: ctx, body: resp.Body, readSize: c.readSize}, nil
}

type httpStream struct {
	ctx      context.Context
	body     io.ReadCloser
	readSize int

	closeOnce sync.Once
	closeErr  error
}

func (s *httpStream) Chunks() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		_, span := tracer.Start(s.ctx, "read http stream")
		defer span.End()

		chunks, total := 0, 0
		defer func() {
			span.SetAttributes(attribute.Int("response.chunks", chunks), attribute.Int("response.bytes", total))
		}()

		buf := make([]byte, s.readSize)
		for {
			n, err := s.body.Read(buf)
			if n > 0 {
				chunks++
				total += n
				if !yield(bytes.Clone(buf[:n]), nil) {
					return
				}
			}

			if err == io.EOF {
				return
			} else if err != nil {
				err = fmt.Errorf("error reading response body: %w", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				yield(nil, err)
				return
			}
		}
	}
}

func (s *httpStream) Close() error {
	s.closeOnce.Do(func() { s.closeErr = s.body.Close() })
	return s.closeErr
}
