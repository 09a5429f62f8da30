package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter   metric.Int64Counter
	RequestDuration  metric.Float64Histogram
	QueriesAnswered  metric.Int64Counter
	QueryDuration    metric.Float64Histogram
	DocumentsIndexed metric.Int64Counter
	IndexRunDuration metric.Float64Histogram
	StoreOperations  metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("fincore-assistant")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	queriesAnswered, err := meter.Int64Counter(
		"assistant.queries.total",
		metric.WithDescription("Total assistant queries answered"),
	)
	if err != nil {
		return nil, err
	}

	queryDuration, err := meter.Float64Histogram(
		"assistant.query.duration",
		metric.WithDescription("Assistant query duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	documentsIndexed, err := meter.Int64Counter(
		"indexer.documents.total",
		metric.WithDescription("Total documents written by the indexer"),
	)
	if err != nil {
		return nil, err
	}

	indexRunDuration, err := meter.Float64Histogram(
		"indexer.run.duration",
		metric.WithDescription("Index run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	storeOperations, err := meter.Int64Counter(
		"store.operations.total",
		metric.WithDescription("Total document store operations"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:   requestCounter,
		RequestDuration:  requestDuration,
		QueriesAnswered:  queriesAnswered,
		QueryDuration:    queryDuration,
		DocumentsIndexed: documentsIndexed,
		IndexRunDuration: indexRunDuration,
		StoreOperations:  storeOperations,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordQuery records one answered (or failed) assistant query
func (m *Metrics) RecordQuery(duration float64, status string, cached bool) {
	attrs := []attribute.KeyValue{
		attribute.String("query.status", status),
		attribute.Bool("query.cached", cached),
	}

	m.QueriesAnswered.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.QueryDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordIndexRun records the outcome of one indexing run
func (m *Metrics) RecordIndexRun(duration float64, indexed, failed int) {
	attrs := []attribute.KeyValue{
		attribute.Int("index.failed", failed),
	}

	m.DocumentsIndexed.Add(context.Background(), int64(indexed), metric.WithAttributes(attrs...))
	m.IndexRunDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordStoreOperation records document store operation metrics
func (m *Metrics) RecordStoreOperation(operation, collection string, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("db.operation", operation),
		attribute.String("db.collection", collection),
		attribute.Bool("db.success", success),
	}

	m.StoreOperations.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}
