package handlers

import (
	"fmt"
	"net/http"

	"cane-backend/internal/services"
	"cane-backend/internal/timeutil"
	"cane-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// ReportHandler serves XLSX exports and PDF slips
type ReportHandler struct {
	Service *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

// EntriesXLSX - GET /api/reports/entries.xlsx, same filters as the entry list
func (h *ReportHandler) EntriesXLSX(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOf(w, r)
	if !ok {
		return
	}
	data, err := h.Service.EntriesXLSX(r.Context(), session, filterFromQuery(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	filename := fmt.Sprintf("entries_%s.xlsx", timeutil.Format(timeutil.Now(), timeutil.DateLayout))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

// EntrySlip - GET /api/entries/{id}/slip.pdf
func (h *ReportHandler) EntrySlip(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOf(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	data, err := h.Service.EntrySlipPDF(r.Context(), session, id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "entry_"+id+".pdf"))
	w.Write(data)
}
