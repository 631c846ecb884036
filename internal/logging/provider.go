// Package logging routes the OpenTelemetry log records emitted by the
// package loggers to a [slog.Handler], so they can be read on a terminal
// without an exporter.
package logging

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"
	"go.opentelemetry.io/otel/log/global"
)

// severityOffset maps OpenTelemetry severities back onto slog levels, the
// inverse of what the otelslog bridge does.
const severityOffset = slog.Level(log.SeverityDebug) - slog.LevelDebug

// Provider is a [log.LoggerProvider] writing every record to a handler. The
// handler can be replaced at any time, loggers already handed out follow.
type Provider struct {
	embedded.LoggerProvider

	handler atomic.Pointer[slog.Handler]
}

func NewProvider(handler slog.Handler) *Provider {
	p := &Provider{}
	p.SetHandler(handler)
	return p
}

func (p *Provider) SetHandler(handler slog.Handler) {
	p.handler.Store(&handler)
}

// The global provider only delegates once, so a single provider is
// registered and its handler swapped afterwards.
var installed = sync.OnceValue(func() *Provider {
	provider := NewProvider(slog.DiscardHandler)
	global.SetLoggerProvider(provider)
	return provider
})

// Install makes handler the destination of every package logger.
func Install(handler slog.Handler) {
	installed().SetHandler(handler)
}

// Logger returns a logger tagging its records with the scope name.
func (p *Provider) Logger(name string, _ ...log.LoggerOption) log.Logger {
	return &logger{provider: p, scope: name}
}

type logger struct {
	embedded.Logger

	provider *Provider
	scope    string
}

func (l *logger) Emit(ctx context.Context, record log.Record) {
	handler := *l.provider.handler.Load()
	level := levelOf(record.Severity())
	if !handler.Enabled(ctx, level) {
		return
	}

	out := slog.NewRecord(record.Timestamp(), level, record.Body().String(), 0)
	if l.scope != "" {
		out.AddAttrs(slog.String("scope", l.scope))
	}
	record.WalkAttributes(func(kv log.KeyValue) bool {
		out.AddAttrs(attrOf(kv))
		return true
	})
	_ = handler.Handle(ctx, out)
}

func (l *logger) Enabled(ctx context.Context, param log.EnabledParameters) bool {
	handler := *l.provider.handler.Load()
	return handler.Enabled(ctx, levelOf(param.Severity))
}

func levelOf(severity log.Severity) slog.Level {
	if severity == log.SeverityUndefined {
		return slog.LevelInfo
	}
	return slog.Level(severity) - severityOffset
}

func attrOf(kv log.KeyValue) slog.Attr {
	return slog.Attr{Key: kv.Key, Value: valueOf(kv.Value)}
}

func valueOf(value log.Value) slog.Value {
	switch value.Kind() {
	case log.KindBool:
		return slog.BoolValue(value.AsBool())
	case log.KindFloat64:
		return slog.Float64Value(value.AsFloat64())
	case log.KindInt64:
		return slog.Int64Value(value.AsInt64())
	case log.KindString:
		return slog.StringValue(value.AsString())
	case log.KindMap:
		members := value.AsMap()
		attrs := make([]slog.Attr, 0, len(members))
		for _, member := range members {
			attrs = append(attrs, attrOf(member))
		}
		return slog.GroupValue(attrs...)
	case log.KindEmpty:
		return slog.AnyValue(nil)
	default:
		return slog.StringValue(value.String())
	}
}
