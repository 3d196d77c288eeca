package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"ondc-conformance/internal/model"
	"ondc-conformance/internal/reports"
)

// ReportReader serves stored reports back to participants.
type ReportReader interface {
	List(day time.Time, f reports.Filter) ([]model.ValidationReport, error)
	Summary(day time.Time, topKeys int) (*reports.Stats, error)
}

type reportQuery struct {
	Date          string `validate:"omitempty,datetime=2006-01-02"`
	Kind          string `validate:"omitempty,oneof=on_search on_status"`
	TransactionID string `validate:"omitempty,max=128"`
	Limit         int    `validate:"gte=1,lte=1000"`
	Offset        int    `validate:"gte=0"`
}

func parseReportQuery(r *http.Request) (reportQuery, time.Time, error) {
	q := r.URL.Query()
	rq := reportQuery{
		Date:          q.Get("date"),
		Kind:          q.Get("kind"),
		TransactionID: q.Get("transaction_id"),
		Limit:         100,
	}
	if l := q.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			rq.Limit = parsed
		}
	}
	if o := q.Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil {
			rq.Offset = parsed
		}
	}
	if err := validate.Struct(rq); err != nil {
		return rq, time.Time{}, err
	}
	day := time.Now().UTC()
	if rq.Date != "" {
		day, _ = time.Parse("2006-01-02", rq.Date)
	}
	return rq, day, nil
}

// GET /ondc/reports?date=&kind=&transaction_id=&limit=&offset=
func (s *Server) listReportsHandler(w http.ResponseWriter, r *http.Request) {
	rq, day, err := parseReportQuery(r)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}
	list, err := s.History.List(day, reports.Filter{
		Kind:          model.Kind(rq.Kind),
		TransactionID: rq.TransactionID,
		Limit:         rq.Limit,
		Offset:        rq.Offset,
	})
	if err != nil {
		zap.S().Errorw("could not list reports", "date", rq.Date, "error", err)
		writeJSON(w, r, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"success": true, "data": list})
}

// GET /ondc/reports/stats?date=
func (s *Server) reportStatsHandler(w http.ResponseWriter, r *http.Request) {
	_, day, err := parseReportQuery(r)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}
	st, err := s.History.Summary(day, 10)
	if err != nil {
		zap.S().Errorw("could not summarise reports", "error", err)
		writeJSON(w, r, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"success": true, "data": st})
}
