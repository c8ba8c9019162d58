package discovery

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/helionav/starcharts/internal/discovery"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
