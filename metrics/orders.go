package metrics

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/metric"
)

const EXECUTION_TTL = time.Minute * 10

type OrderMetrics struct {
	createdCounter   metric.Int64Counter
	cancelledCounter metric.Int64Counter
	failedCounter    metric.Int64Counter

	executionTimeHistogram  metric.Float64Histogram
	executionStartTimeCache *ttlcache.Cache[string, time.Time]

	opts metric.MeasurementOption
}

// NewOrderMetrics initializes metrics related to the order lifecycle
func NewOrderMetrics(meter metric.Meter, opts metric.MeasurementOption) (*OrderMetrics, error) {
	createdCounter, err := meter.Int64Counter(
		"twap.OrdersCreated",
		metric.WithDescription("Number of successfully submitted orders"),
	)
	if err != nil {
		return nil, err
	}
	cancelledCounter, err := meter.Int64Counter(
		"twap.OrdersCancelled",
		metric.WithDescription("Number of locally cancelled orders"),
	)
	if err != nil {
		return nil, err
	}
	failedCounter, err := meter.Int64Counter(
		"twap.OrdersFailed",
		metric.WithDescription("Number of order submissions that ended in failure"),
	)
	if err != nil {
		return nil, err
	}

	executionTimeHistogram, err := meter.Float64Histogram("twap.ExecutionTime")
	if err != nil {
		return nil, err
	}

	m := &OrderMetrics{
		createdCounter:   createdCounter,
		cancelledCounter: cancelledCounter,
		failedCounter:    failedCounter,

		executionTimeHistogram: executionTimeHistogram,
		executionStartTimeCache: ttlcache.New(
			ttlcache.WithTTL[string, time.Time](EXECUTION_TTL),
		),
		opts: opts,
	}
	go m.executionStartTimeCache.Start()
	return m, nil
}

func (m *OrderMetrics) TrackOrderCreated() {
	m.createdCounter.Add(context.Background(), 1, m.opts)
}

func (m *OrderMetrics) TrackOrdersCancelled(count int64) {
	m.cancelledCounter.Add(context.Background(), count, m.opts)
}

func (m *OrderMetrics) TrackOrderFailed() {
	m.failedCounter.Add(context.Background(), 1, m.opts)
}

func (m *OrderMetrics) StartExecution(id string) {
	m.executionStartTimeCache.Set(id, time.Now(), ttlcache.DefaultTTL)
}

func (m *OrderMetrics) EndExecution(id string) {
	startTime := m.executionStartTimeCache.Get(id)
	if startTime == nil {
		log.Warn().Msgf("Execution start time with ID %s not found", id)
		return
	}

	m.executionTimeHistogram.Record(context.Background(), time.Since(startTime.Value()).Seconds(), m.opts)
}
