package syncer

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/weaponpaints/extension/internal/syncer"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
