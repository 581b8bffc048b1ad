package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/astacala/gateway/internal/events"
	"github.com/astacala/gateway/internal/middleware"
	"github.com/astacala/gateway/internal/model"
	"github.com/astacala/gateway/internal/surface"
)

// ReportHandler normalizes disaster reports from either surface and forwards
// them as events. Storage of reports happens downstream.
type ReportHandler struct {
	Base
}

// NewReportHandler returns a ReportHandler.
func NewReportHandler(base Base) *ReportHandler {
	return &ReportHandler{Base: base}
}

// Submit validates a report, assigns it an id and publishes
// report.submitted. The response is 202 with the report echoed back in the
// caller's vocabulary.
func (h *ReportHandler) Submit(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var draft model.ReportDraft
	if err := h.decode(c, surface.ResReport, &draft); err != nil {
		return h.fail(c, err)
	}
	draft.ID = events.NewID()

	h.publish(c, events.ReportSubmitted, events.ReportSubmittedPayload{
		ReportID:   draft.ID,
		ReporterID: p.UserID,
		Surface:    middleware.SurfaceOf(c).String(),
		Report:     draft,
	})

	out, err := h.encode(c, surface.ResReport, draft)
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, http.StatusAccepted, surface.MsgReportAccepted, out)
}

// Verify records an admin decision on a report and publishes
// report.verified.
func (h *ReportHandler) Verify(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	reportID := strings.TrimSpace(c.Param("id"))
	if reportID == "" {
		return h.fail(c, &surface.ValidationError{Resource: surface.ResReport,
			Fields: []surface.FieldError{{Field: "id", Rule: "required"}}})
	}
	var v model.ReportVerification
	if err := h.decode(c, surface.ResVerification, &v); err != nil {
		return h.fail(c, err)
	}

	h.publish(c, events.ReportVerified, events.ReportVerifiedPayload{
		ReportID:   reportID,
		Status:     v.Status,
		Notes:      v.Notes,
		VerifierID: p.UserID,
	})

	out, err := h.encode(c, surface.ResVerification, v)
	if err != nil {
		return h.fail(c, err)
	}
	out["id"] = reportID
	return h.ok(c, http.StatusOK, surface.MsgReportVerified, out)
}
