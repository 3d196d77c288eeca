package kstream

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ondc-conformance/internal/anchor"
	"ondc-conformance/internal/model"
	"ondc-conformance/internal/processing"
	"ondc-conformance/internal/refdata"
	"ondc-conformance/internal/schemagate"
	"ondc-conformance/internal/seqstore"
)

type sliceReader struct {
	msgs []kafka.Message
}

func (r *sliceReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		return kafka.Message{}, io.EOF
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

type recordingWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

type setDeduper map[string]bool

func (s setDeduper) SeenMessage(_ context.Context, id string) bool {
	seen := s[id]
	s[id] = true
	return seen
}

type memoryReports []*model.ValidationReport

func (m *memoryReports) Append(r *model.ValidationReport) error {
	*m = append(*m, r)
	return nil
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "schemagate", "testdata", name))
	require.NoError(t, err)
	return raw
}

func testEngine(t *testing.T) *processing.Engine {
	t.Helper()
	tables, err := refdata.NewStatic(refdata.Static{
		Cities:     []refdata.CityRecord{{City: "Bengaluru", StdCode: "080", Pincode: 560076}},
		Categories: []string{"Shirts"},
		Attributes: []string{"Gender", "Colour", "Size", "Brand"},
	}, refdata.Options{})
	require.NoError(t, err)
	anchorPath := filepath.Join(t.TempDir(), "on_confirm.json")
	require.NoError(t, os.WriteFile(anchorPath, fixture(t, "on_confirm.json"), 0o644))
	seq := seqstore.NewSequencer(seqstore.NewMemoryStore(), model.DefaultLifecycle, model.StageCancelled)
	return processing.NewEngine(schemagate.New(tables), seq, anchor.NewFileSource(anchorPath))
}

func request(kind string, body []byte, headers ...kafka.Header) kafka.Message {
	return kafka.Message{
		Value:   body,
		Headers: append([]kafka.Header{{Key: "kind", Value: []byte(kind)}}, headers...),
	}
}

func TestConsumerPublishesReports(t *testing.T) {
	results := &recordingWriter{}
	reports := &memoryReports{}
	c := &Consumer{
		Reader: &sliceReader{msgs: []kafka.Message{
			request("on_search", fixture(t, "on_search.json")),
			request("on_status", fixture(t, "on_status.json"), kafka.Header{Key: "state", Value: []byte("Accepted")}),
			request("on_search", []byte(`{"context":{"message_id":"m-bad","transaction_id":"t-bad"}}`)),
		}},
		Engine:  testEngine(t),
		Results: results,
		Dedupe:  setDeduper{},
		Reports: reports,
	}
	err := c.Run(context.Background())
	assert.ErrorIs(t, err, io.EOF)

	require.Len(t, results.msgs, 3)
	var first model.ValidationReport
	require.NoError(t, json.Unmarshal(results.msgs[0].Value, &first))
	assert.True(t, first.Valid, "%v", first.Errors)
	assert.Equal(t, first.Context.TransactionID, string(results.msgs[0].Key))

	var status model.ValidationReport
	require.NoError(t, json.Unmarshal(results.msgs[1].Value, &status))
	assert.True(t, status.Valid, "%v", status.Errors)
	assert.Equal(t, "txn-001", string(results.msgs[1].Key))

	assert.Equal(t, "t-bad", string(results.msgs[2].Key))
	require.Len(t, *reports, 1)
	assert.False(t, (*reports)[0].Valid)
}

func TestConsumerSkipsDuplicatesAndBadRequests(t *testing.T) {
	results := &recordingWriter{}
	body := fixture(t, "on_search.json")
	c := &Consumer{
		Reader: &sliceReader{msgs: []kafka.Message{
			request("on_search", body),
			request("on_search", body),
			request("on_select", body),
			request("on_search", []byte(`not json`)),
		}},
		Engine:  testEngine(t),
		Results: results,
		Dedupe:  setDeduper{},
	}
	assert.ErrorIs(t, c.Run(context.Background()), io.EOF)
	assert.Len(t, results.msgs, 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Consumer{Reader: &sliceReader{}, Engine: testEngine(t)}
	assert.NoError(t, c.Run(ctx))
}

func TestMessageID(t *testing.T) {
	assert.Equal(t, "h", messageID(kafka.Message{Headers: []kafka.Header{{Key: "message_id", Value: []byte("h")}}}))
	assert.Equal(t, "m", messageID(kafka.Message{Value: []byte(`{"context":{"message_id":"m"}}`)}))
	assert.Empty(t, messageID(kafka.Message{Value: []byte(`nope`)}))
}
