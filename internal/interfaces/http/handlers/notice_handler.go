package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/LienPilot/internal/application/notice"
	"github.com/turtacn/LienPilot/internal/application/report"
	"github.com/turtacn/LienPilot/internal/application/sequence"
	"github.com/turtacn/LienPilot/internal/domain/lien"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/pkg/errors"
)

// NoticeHandler serves lien deadlines, notice-of-intent advice, letters,
// rendered documents, collection sequences and status exports.
type NoticeHandler struct {
	svc     notice.Service
	logger  logging.Logger
	maxBody int64
}

// NewNoticeHandler creates a NoticeHandler. maxBody of zero uses
// DefaultMaxBodySize.
func NewNoticeHandler(svc notice.Service, logger logging.Logger, maxBody int64) *NoticeHandler {
	return &NoticeHandler{
		svc:     svc,
		logger:  logging.ForComponent(logger, "notice_handler"),
		maxBody: maxBody,
	}
}

// BatchDeadlineRequest is the body of POST /lien/deadlines.
type BatchDeadlineRequest struct {
	Requests []notice.DeadlineRequest `json:"requests"`
}

// BatchDeadlineResponse keeps the request order.
type BatchDeadlineResponse struct {
	Cases []DeadlineResponse `json:"cases"`
}

// DeadlineResponse adds the derived filing status to a lien case.
type DeadlineResponse struct {
	lien.LienCase
	Status lien.FilingStatus `json:"status"`
}

func newDeadlineResponse(c lien.LienCase) DeadlineResponse {
	return DeadlineResponse{LienCase: c, Status: c.Status()}
}

type StatesResponse struct {
	States []notice.StateInfo `json:"states"`
}

// ExportResponse is the JSON form of a lien status export.
type ExportResponse struct {
	*notice.ExportResult
	Rows []report.Row `json:"rows,omitempty"`
}

// ListStates handles GET /api/v1/states
func (h *NoticeHandler) ListStates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatesResponse{States: h.svc.States()})
}

// CalculateDeadline handles POST /api/v1/lien/deadline
func (h *NoticeHandler) CalculateDeadline(w http.ResponseWriter, r *http.Request) {
	var req notice.DeadlineRequest
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	c, err := h.svc.Deadline(r.Context(), &req)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newDeadlineResponse(*c))
}

// CalculateDeadlines handles POST /api/v1/lien/deadlines
func (h *NoticeHandler) CalculateDeadlines(w http.ResponseWriter, r *http.Request) {
	var req BatchDeadlineRequest
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	if len(req.Requests) == 0 {
		writeError(w, http.StatusBadRequest, errors.InvalidParam("requests must not be empty"))
		return
	}
	cases, err := h.svc.DeadlineBatch(r.Context(), req.Requests)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	resp := BatchDeadlineResponse{Cases: make([]DeadlineResponse, len(cases))}
	for i, c := range cases {
		resp.Cases[i] = newDeadlineResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CheckEligibility handles POST /api/v1/lien/eligibility
func (h *NoticeHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req notice.EligibilityRequest
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	res, err := h.svc.Eligibility(r.Context(), &req)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Advise handles POST /api/v1/noi/advise
func (h *NoticeHandler) Advise(w http.ResponseWriter, r *http.Request) {
	var req notice.AdviceRequest
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	res, err := h.svc.Advise(r.Context(), &req)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ComposeLetter handles POST /api/v1/noi/letter
func (h *NoticeHandler) ComposeLetter(w http.ResponseWriter, r *http.Request) {
	var req notice.NoticeRequest
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	res, err := h.svc.ComposeLetter(r.Context(), &req)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RenderDocument handles POST /api/v1/noi/render. The PDF is streamed back
// unless the request asks for it to be stored, in which case the stored
// object is described as JSON.
func (h *NoticeHandler) RenderDocument(w http.ResponseWriter, r *http.Request) {
	var req notice.RenderRequest
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	res, err := h.svc.RenderDocument(r.Context(), &req)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if req.Store {
		writeJSON(w, http.StatusCreated, res)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("X-Document-Pages", strconv.Itoa(res.PageCount))
	w.Header().Set("X-Document-Cached", strconv.FormatBool(res.Cached))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		h.logger.Warn("write document response failed", logging.String("filename", res.Filename), logging.Err(err))
	}
}

// GenerateSequence handles POST /api/v1/sequences
func (h *NoticeHandler) GenerateSequence(w http.ResponseWriter, r *http.Request) {
	var in sequence.Input
	if !decodeJSON(w, r, h.maxBody, &in) {
		return
	}
	seq, err := h.svc.GenerateSequence(r.Context(), &in)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, seq)
}

// Export handles POST /api/v1/exports. CSV is returned when the client
// accepts text/csv or passes format=csv and the export is not stored.
func (h *NoticeHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req notice.ExportRequest
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	res, err := h.svc.Export(r.Context(), &req)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	if req.Store {
		writeJSON(w, http.StatusCreated, ExportResponse{ExportResult: res})
		return
	}
	if wantsCSV(r) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "lien_status_"+res.AsOf.Format(time.DateOnly)+".csv"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.CSV)
		return
	}
	var rows []report.Row
	if res.Report != nil {
		rows = res.Report.Rows
	}
	writeJSON(w, http.StatusOK, ExportResponse{ExportResult: res, Rows: rows})
}

func wantsCSV(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/csv")
}

//Personal.AI order the ending
