package restapi

import (
	"net/http"

	"github.com/lodthe/fromcheck/internal/auditrun"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type auditHandler struct {
	logger  zerolog.Logger
	reports ReportRepository
	audits  LatestReport
}

func newAuditHandler(logger zerolog.Logger, reports ReportRepository, audits LatestReport) *auditHandler {
	return &auditHandler{
		logger:  logger,
		reports: reports,
		audits:  audits,
	}
}

func (h *auditHandler) handle(r chi.Router) {
	r.Get("/audits/latest", h.getLatestReport)
	r.Get("/audits/{id}", h.getReport)
}

func (h *auditHandler) getLatestReport(w http.ResponseWriter, _ *http.Request) {
	if h.audits == nil {
		writeError(w, "periodic audits are disabled", http.StatusNotFound)
		return
	}

	report := h.audits.Latest()
	if report == nil {
		writeError(w, "no audit has finished yet", http.StatusNotFound)
		return
	}

	writeResult(w, report)
}

func (h *auditHandler) getReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, "missed id", http.StatusBadRequest)
		return
	}

	if h.reports == nil {
		writeError(w, "report not found", http.StatusNotFound)
		return
	}

	report, err := h.reports.Get(r.Context(), id)
	if errors.Is(err, auditrun.ErrNotFound) {
		writeError(w, "report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("id", id).Msg("failed to find a report")
		writeError(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeResult(w, report)
}
