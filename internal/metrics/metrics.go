// Package metrics holds the prometheus collectors shared by the HTTP and
// Kafka surfaces.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	validationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ondc_validations_total",
			Help: "Validated documents by message kind and result",
		},
		[]string{"kind", "result"},
	)
	violationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ondc_violations_total",
			Help: "Rule violations found by message kind",
		},
		[]string{"kind"},
	)
	validationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ondc_validation_duration_seconds",
			Help:    "Time spent validating one document",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	parseFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ondc_parse_failures_total",
			Help: "Documents rejected because they are not JSON objects",
		},
	)
	sequenceFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ondc_sequence_store_failures_total",
			Help: "Lifecycle timestamps that could not be recorded",
		},
	)
	kafkaMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ondc_kafka_messages_total",
			Help: "Validation requests read from kafka by outcome",
		},
		[]string{"outcome"},
	)
)

// ObserveValidation records one finished validation.
func ObserveValidation(kind string, violations int, took time.Duration) {
	result := "valid"
	if violations > 0 {
		result = "invalid"
	}
	validationsTotal.WithLabelValues(kind, result).Inc()
	violationsTotal.WithLabelValues(kind).Add(float64(violations))
	validationSeconds.WithLabelValues(kind).Observe(took.Seconds())
}

func ParseFailure() { parseFailures.Inc() }

func SequenceFailure() { sequenceFailures.Inc() }

// KafkaMessage counts a consumed request; outcome is one of processed,
// duplicate, rejected or failed.
func KafkaMessage(outcome string) { kafkaMessages.WithLabelValues(outcome).Inc() }

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
