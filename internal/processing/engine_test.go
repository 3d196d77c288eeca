package processing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ondc-conformance/internal/anchor"
	"ondc-conformance/internal/model"
	"ondc-conformance/internal/refdata"
	"ondc-conformance/internal/schemagate"
	"ondc-conformance/internal/seqstore"
	"ondc-conformance/internal/verr"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "schemagate", "testdata", name))
	require.NoError(t, err)
	return raw
}

func testEngine(t *testing.T, withAnchor bool) (*Engine, seqstore.Store) {
	t.Helper()
	tables, err := refdata.NewStatic(refdata.Static{
		Cities:     []refdata.CityRecord{{City: "Bengaluru", StdCode: "080", Pincode: 560076}},
		Categories: []string{"Shirts"},
		Attributes: []string{"Gender", "Colour", "Size", "Brand"},
		Matrix: []map[string]string{
			{"category": "Shirts", "Gender": "M", "Colour": "M", "Size": "M", "Brand": "M"},
		},
		Columns: map[string]string{"Gender": "gender", "Colour": "colour", "Size": "size", "Brand": "brand"},
		Domains: map[string]*refdata.Domain{
			"gender": {Values: []string{"male", "female", "unisex"}},
			"colour": {Colours: [][2]string{{"Red", "#FF0000"}}},
			"size":   {ByCategory: map[string][]string{"Shirts": {"S", "M", "L", "XL"}}},
		},
	}, refdata.Options{})
	require.NoError(t, err)

	store := seqstore.NewMemoryStore()
	seq := seqstore.NewSequencer(store, model.DefaultLifecycle, model.StageCancelled)

	path := filepath.Join(t.TempDir(), "on_confirm.json")
	if withAnchor {
		require.NoError(t, os.WriteFile(path, readFixture(t, "on_confirm.json"), 0o644))
	}
	return NewEngine(schemagate.New(tables), seq, anchor.NewFileSource(path)), store
}

func errorKeys(r *model.ValidationReport) []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Key)
	}
	return out
}

// withTimestamp rewrites the context timestamp of a fixture.
func withTimestamp(raw []byte, ts string) []byte {
	return []byte(strings.Replace(string(raw), `"timestamp": "2024-01-10T11:00:00.000Z"`, `"timestamp": "`+ts+`"`, 1))
}

func TestValidOnSearch(t *testing.T) {
	e, _ := testEngine(t, false)
	r, err := e.Validate(context.Background(), Request{Kind: model.KindOnSearch, Body: readFixture(t, "on_search.json")})
	require.NoError(t, err)
	assert.True(t, r.Valid, "%v", r.Errors)
	assert.Empty(t, r.Errors)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "ONDC:RET12", r.Context.Domain)
}

func TestParseFailureIsFatal(t *testing.T) {
	e, _ := testEngine(t, false)
	for _, body := range []string{`{"context":`, `[1,2]`, `"x"`, ``, `{"context":{}}}`} {
		r, err := e.Validate(context.Background(), Request{Kind: model.KindOnSearch, Body: []byte(body)})
		assert.Nil(t, r, body)
		assert.True(t, errors.Is(err, verr.ErrParse), body)
	}
}

func TestUnknownKind(t *testing.T) {
	e, _ := testEngine(t, false)
	_, err := e.Validate(context.Background(), Request{Kind: "on_select", Body: []byte(`{}`)})
	assert.Error(t, err)
}

func TestMissingTopLevelKeys(t *testing.T) {
	e, _ := testEngine(t, false)
	r, err := e.Validate(context.Background(), Request{Kind: model.KindOnSearch, Body: []byte(`{}`)})
	require.NoError(t, err)
	assert.False(t, r.Valid)
	assert.ElementsMatch(t, []string{"context", "message"}, errorKeys(r))
}

func TestValidOnStatus(t *testing.T) {
	e, store := testEngine(t, true)
	r, err := e.Validate(context.Background(), Request{Kind: model.KindOnStatus, Stage: "Accepted", Body: readFixture(t, "on_status.json")})
	require.NoError(t, err)
	assert.Empty(t, r.Errors)
	assert.Equal(t, "Accepted", r.Stage)

	ts, err := store.Load(context.Background(), "ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10T11:00:00.000Z", ts["Accepted"])
}

func TestOnStatusWithoutAnchor(t *testing.T) {
	e, _ := testEngine(t, false)
	r, err := e.Validate(context.Background(), Request{Kind: model.KindOnStatus, Stage: "Accepted", Body: readFixture(t, "on_status.json")})
	require.NoError(t, err)
	assert.Equal(t, []string{"on_confirm_json_file"}, errorKeys(r))
}

func TestOnStatusOrdering(t *testing.T) {
	e, _ := testEngine(t, true)
	ctx := context.Background()
	body := readFixture(t, "on_status.json")

	r, err := e.Validate(ctx, Request{Kind: model.KindOnStatus, Stage: "Packed", Body: withTimestamp(body, "2024-01-10T12:00:00.000Z")})
	require.NoError(t, err)
	require.Empty(t, r.Errors)

	// Out-for-delivery earlier than the recorded Packed stage.
	r, err = e.Validate(ctx, Request{Kind: model.KindOnStatus, Stage: "Out-for-delivery", Body: withTimestamp(body, "2024-01-10T11:30:00.000Z")})
	require.NoError(t, err)
	require.Equal(t, []string{"context_timestamp"}, errorKeys(r))
	assert.Contains(t, r.Errors[0].Message, "Packed")

	// Cancelled may follow any stage.
	r, err = e.Validate(ctx, Request{Kind: model.KindOnStatus, Stage: "Cancelled", Body: withTimestamp(body, "2024-01-10T11:10:00.000Z")})
	require.NoError(t, err)
	assert.NotContains(t, errorKeys(r), "context_timestamp")
}

func TestOnStatusUnknownStage(t *testing.T) {
	e, store := testEngine(t, true)
	r, err := e.Validate(context.Background(), Request{Kind: model.KindOnStatus, Stage: "Teleported", Body: readFixture(t, "on_status.json")})
	require.NoError(t, err)
	assert.Equal(t, []string{"context_timestamp"}, errorKeys(r))

	ts, err := store.Load(context.Background(), "ORDER-1")
	require.NoError(t, err)
	assert.Empty(t, ts)
}

func TestStageFromMessage(t *testing.T) {
	e, _ := testEngine(t, true)
	// The fixture's fulfillment code is Pending, which is not a lifecycle
	// stage, so the order state is used.
	r, err := e.Validate(context.Background(), Request{Kind: model.KindOnStatus, Body: readFixture(t, "on_status.json")})
	require.NoError(t, err)
	assert.Equal(t, "Accepted", r.Stage)
	assert.Empty(t, r.Errors)
}

type failingStore struct{ seqstore.Store }

func (failingStore) Update(context.Context, string, func(seqstore.Timestamps) error) (seqstore.Timestamps, error) {
	return nil, seqstore.ErrConflict
}

func TestSequenceStoreFailureIsReported(t *testing.T) {
	e, _ := testEngine(t, true)
	e.sequencer = seqstore.NewSequencer(failingStore{seqstore.NewMemoryStore()}, model.DefaultLifecycle)
	r, err := e.Validate(context.Background(), Request{Kind: model.KindOnStatus, Stage: "Accepted", Body: readFixture(t, "on_status.json")})
	require.NoError(t, err)
	require.Equal(t, []string{"context_timestamp"}, errorKeys(r))
	assert.Equal(t, "could not record lifecycle timestamp", r.Errors[0].Message)
}

func TestRevalidationIsIdempotent(t *testing.T) {
	e, _ := testEngine(t, true)
	req := Request{Kind: model.KindOnStatus, Stage: "Accepted", Body: readFixture(t, "on_status.json")}
	for i := 0; i < 2; i++ {
		r, err := e.Validate(context.Background(), req)
		require.NoError(t, err)
		assert.Empty(t, r.Errors)
	}
}
