package framing

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/promptbuilder/core/framing"

var (
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	skippedFramesCounter, _ = meter.Int64Counter(
		"authoring.frames.skipped",
		metric.WithDescription("Stream lines skipped because their payload could not be decoded"),
	)
)
