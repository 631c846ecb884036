package backend

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type WebSocketOption func(*WebSocketClient)

func WithWebSocketHeaders(headers map[string]string) WebSocketOption {
	return func(c *WebSocketClient) {
		for key, value := range headers {
			c.headers.Set(key, value)
		}
	}
}

func WithHandshakeTimeout(timeout time.Duration) WebSocketOption {
	return func(c *WebSocketClient) { c.dialer.HandshakeTimeout = timeout }
}

// WebSocketClient sends each request as a JSON text message on a fresh
// connection and treats every message received in return as one chunk.
// The backend ends the response by closing the connection normally.
type WebSocketClient struct {
	url     string
	headers http.Header
	dialer  websocket.Dialer
}

func NewWebSocketClient(rawURL string, opts ...WebSocketOption) *WebSocketClient {
	c := &WebSocketClient{
		url:     websocketURL(rawURL),
		headers: http.Header{},
		dialer:  *websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// websocketURL maps http(s) URLs onto their ws(s) equivalents so both
// transports can share one configured address.
func websocketURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	}
	return parsed.String()
}

func (c *WebSocketClient) Open(ctx context.Context, request Request) (Stream, error) {
	ctx, span := tracer.Start(ctx, "open websocket stream")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.url", c.url),
		attribute.Int("request.messages", len(request.Messages)),
	)

	conn, resp, err := c.dialer.DialContext(ctx, c.url, c.headers)
	if err != nil {
		if resp != nil {
			span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				err = errors.Join(fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status), err)
			}
		}
		err = fmt.Errorf("failed to open websocket connection: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := conn.WriteJSON(request); err != nil {
		_ = conn.Close()
		err = fmt.Errorf("failed to send request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	stream := &websocketStream{ctx: ctx, conn: conn}
	// the registration is dropped once the caller's context ends
	context.AfterFunc(ctx, func() { _ = stream.Close() })
	return stream, nil
}

type websocketStream struct {
	ctx  context.Context
	conn *websocket.Conn

	closeOnce sync.Once
	closeErr  error
}

func (s *websocketStream) Chunks() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		_, span := tracer.Start(s.ctx, "read websocket stream")
		defer span.End()

		messages := 0
		defer func() { span.SetAttributes(attribute.Int("response.messages", messages)) }()

		for {
			msgType, msg, err := s.conn.ReadMessage()
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			} else if err != nil {
				err = fmt.Errorf("error reading websocket message: %w", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				yield(nil, err)
				return
			}

			switch msgType {
			case websocket.TextMessage, websocket.BinaryMessage:
				messages++
				if !yield(msg, nil) {
					return
				}
			}
		}
	}
}

func (s *websocketStream) Close() error {
	s.closeOnce.Do(func() { s.closeErr = s.conn.Close() })
	return s.closeErr
}
