// Package kstream validates documents arriving on a Kafka request topic and
// publishes one report per document to a result topic.
package kstream

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"ondc-conformance/internal/document"
	"ondc-conformance/internal/metrics"
	"ondc-conformance/internal/model"
	"ondc-conformance/internal/processing"
)

// Request headers.
const (
	headerKind      = "kind"
	headerState     = "state"
	headerMessageID = "message_id"
)

// Reader is the part of *kafka.Reader the consumer needs.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Validator interface {
	Validate(ctx context.Context, req processing.Request) (*model.ValidationReport, error)
}

// Deduper reports whether a message id was probably handled before.
type Deduper interface {
	SeenMessage(ctx context.Context, id string) bool
}

type ReportWriter interface {
	Append(r *model.ValidationReport) error
}

// NewReader creates the request consumer with consumer-group offset management.
func NewReader(broker, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3,
		MaxBytes:       104857600, // catalogs can be large
		CommitInterval: time.Second,
	})
}

// Consumer wires a request reader to the engine. Results, Dedupe and Reports
// are optional.
type Consumer struct {
	Reader  Reader
	Engine  Validator
	Results Writer
	Dedupe  Deduper
	Reports ReportWriter
}

// Run handles messages until ctx is cancelled or the reader fails.
func (c *Consumer) Run(ctx context.Context) error {
	zap.S().Info("kstream: consuming validation requests")
	for {
		msg, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		c.Handle(ctx, msg)
	}
}

// Handle validates one request. Failures are logged and counted; a broken
// message never stops the consumer.
func (c *Consumer) Handle(ctx context.Context, msg kafka.Message) {
	kind, err := model.ParseKind(header(msg, headerKind))
	if err != nil {
		metrics.KafkaMessage("rejected")
		zap.S().Warnw("kstream: skipping request", "offset", msg.Offset, "error", err)
		return
	}

	if c.Dedupe != nil {
		if id := messageID(msg); id != "" && c.Dedupe.SeenMessage(ctx, string(kind)+":"+id) {
			metrics.KafkaMessage("duplicate")
			zap.S().Debugw("kstream: duplicate request", "kind", kind, "message_id", id)
			return
		}
	}

	report, err := c.Engine.Validate(ctx, processing.Request{Kind: kind, Stage: header(msg, headerState), Body: msg.Value})
	if err != nil {
		metrics.KafkaMessage("rejected")
		zap.S().Warnw("kstream: request is not a valid document", "offset", msg.Offset, "error", err)
		return
	}

	if !report.Valid && c.Reports != nil {
		if err := c.Reports.Append(report); err != nil {
			zap.S().Warnw("kstream: could not store report", "report_id", report.ID, "error", err)
		}
	}
	if c.Results != nil {
		if err := PublishReport(ctx, c.Results, report); err != nil {
			metrics.KafkaMessage("failed")
			zap.S().Errorw("kstream: could not publish report", "report_id", report.ID, "error", err)
			return
		}
	}
	metrics.KafkaMessage("processed")
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// messageID prefers the header and falls back to context.message_id.
func messageID(msg kafka.Message) string {
	if id := header(msg, headerMessageID); id != "" {
		return id
	}
	root, err := document.Parse(msg.Value)
	if err != nil {
		return ""
	}
	return root.Get("context").Get("message_id").Text()
}
