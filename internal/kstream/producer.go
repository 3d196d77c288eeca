package kstream

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"

	"ondc-conformance/internal/model"
)

// Writer is the part of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewWriter constructs the report producer.
func NewWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // same transaction, same partition
		RequiredAcks: kafka.RequireOne,
		BatchBytes:   104857600,
	}
}

// PublishReport sends r to the result topic keyed by transaction id so the
// reports of one order stay in order on a partition.
func PublishReport(ctx context.Context, w Writer, r *model.ValidationReport) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(r.Context.TransactionID),
		Value: data,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: headerKind, Value: []byte(r.Kind)},
			{Key: "report_id", Value: []byte(r.ID)},
		},
	}
	return w.WriteMessages(ctx, msg)
}
