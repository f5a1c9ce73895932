package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/auth"
	"github.com/sakif/caloriesnap/internal/model"
	"github.com/sakif/caloriesnap/internal/service"
)

type LogHandler struct {
	svc    *service.LogService
	logger *slog.Logger
}

func NewLogHandler(svc *service.LogService, logger *slog.Logger) *LogHandler {
	return &LogHandler{svc: svc, logger: logger}
}

// HandleList returns the caller's logs.
//
// HTTP: GET /api/logs?from=<RFC3339>&to=<RFC3339>&order=asc|desc
// Both bounds are optional and inclusive; the default order is newest first.
// No logs is an empty array, never an error.
func (h *LogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	q := r.URL.Query()

	from, err := parseTimeParam("from", q.Get("from"), false)
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := parseTimeParam("to", q.Get("to"), true)
	if err != nil {
		writeError(w, err)
		return
	}

	var ascending bool
	switch strings.ToLower(q.Get("order")) {
	case "", "desc":
	case "asc":
		ascending = true
	default:
		writeError(w, apperror.ValidationFailed("order", "order must be asc or desc"))
		return
	}

	logs, err := h.svc.List(r.Context(), userID, model.LogQuery{From: from, To: to, Ascending: ascending})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// HandleCreate stores one client-built log and echoes it back.
//
// HTTP: POST /api/logs
func (h *LogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var l model.Log
	if err := decodeJSON(w, r, &l); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.svc.Create(r.Context(), userID, l)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleDelete removes one of the caller's logs. An unknown ID is still 204.
//
// HTTP: DELETE /api/logs/{id}
func (h *LogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type summaryRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	// TZOffset is the caller's UTC offset in minutes east. Absent means the
	// offset written in start_date.
	TZOffset *int `json:"tz_offset"`
}

// Real zones stay within UTC-12 and UTC+14.
const maxTZOffset = 14 * 60

// HandleMonthlySummary runs the aggregation procedure for the caller.
//
// HTTP: POST /api/rpc/get_monthly_calorie_summary
//
//	{"start_date": "2024-06-01T00:00:00+05:30", "end_date": "2024-06-30T23:59:59.999+05:30", "tz_offset": 330}
//	→ [{"date_log": "2024-06-01", "total_calories": 2500, "log_count": 2}, ...]
//
// Rows are keyed by the caller's calendar date, so a log at 00:30 local time
// counts for that local day and not the previous UTC one.
func (h *LogHandler) HandleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req summaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	start, err := parseTimeParam("start_date", req.StartDate, false)
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := parseTimeParam("end_date", req.EndDate, true)
	if err != nil {
		writeError(w, err)
		return
	}

	_, offset := start.Zone()
	if req.TZOffset != nil {
		if *req.TZOffset < -maxTZOffset || *req.TZOffset > maxTZOffset {
			writeError(w, apperror.ValidationFailed("tz_offset", "tz_offset must be between -840 and 840 minutes"))
			return
		}
		offset = *req.TZOffset * 60
	}
	loc := time.FixedZone("", offset)

	rows, err := h.svc.MonthlySummary(r.Context(), userID, start.In(loc), end.In(loc))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// parseTimeParam accepts RFC 3339 timestamps or bare YYYY-MM-DD dates (UTC).
// A bare date used as an upper bound covers the whole day. Empty is zero.
func parseTimeParam(field, v string, upper bool) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	if d, err := time.Parse(time.DateOnly, v); err == nil {
		if upper {
			return d.Add(24*time.Hour - time.Millisecond), nil
		}
		return d, nil
	}
	return time.Time{}, apperror.ValidationFailed(field, field+" must be an RFC 3339 timestamp or YYYY-MM-DD date")
}
