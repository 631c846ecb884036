package authoring

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/promptbuilder/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	finalizedTurnsCounter, _ = meter.Int64Counter(
		"authoring.turns.finalized",
		metric.WithDescription("Assistant turns finalized by a done event"),
	)
	failedTurnsCounter, _ = meter.Int64Counter(
		"authoring.turns.failed",
		metric.WithDescription("Requests that ended on the error path"),
	)
)
