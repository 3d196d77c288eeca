package httpapi

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ondc-conformance/internal/anchor"
	"ondc-conformance/internal/model"
	"ondc-conformance/internal/processing"
	"ondc-conformance/internal/refdata"
	"ondc-conformance/internal/reports"
	"ondc-conformance/internal/schemagate"
	"ondc-conformance/internal/seqstore"
)

func TestReportRoutes(t *testing.T) {
	tables, err := refdata.NewStatic(refdata.Static{}, refdata.Options{})
	require.NoError(t, err)
	store := reports.NewStore(t.TempDir())
	s := &Server{
		Engine: processing.NewEngine(
			schemagate.New(tables),
			seqstore.NewSequencer(seqstore.NewMemoryStore(), model.DefaultLifecycle),
			anchor.NewFileSource(filepath.Join(t.TempDir(), "none.json")),
		),
		Reports: store,
		History: store,
	}
	r := mux.NewRouter()
	s.RegisterRoutes(r)

	for i := 0; i < 3; i++ {
		rec := do(r, http.MethodPost, "/ondc/on_search/validate", []byte(`{}`), nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	today := time.Now().UTC().Format("2006-01-02")
	rec := do(r, http.MethodGet, "/ondc/reports?limit=2&date="+today, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Success bool                     `json:"success"`
		Data    []model.ValidationReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.True(t, list.Success)
	assert.Len(t, list.Data, 2)

	rec = do(r, http.MethodGet, "/ondc/reports/stats", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Data reports.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Data.Reports)
	assert.Equal(t, 6, stats.Data.Violations)
	assert.Equal(t, 3, stats.Data.TopKeys["context"])

	for _, q := range []string{"date=10-01-2024", "kind=on_select", "limit=5000", "offset=-1"} {
		rec = do(r, http.MethodGet, "/ondc/reports?"+q, nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}
