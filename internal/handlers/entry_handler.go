package handlers

import (
	"net/http"

	"cane-backend/internal/models"
	"cane-backend/internal/services"
	"cane-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// EntryHandler serves the four workflow stages and entry reads
type EntryHandler struct {
	Registration *services.RegistrationService
	Arrival      *services.ArrivalService
	Verification *services.VerificationService
	Approval     *services.ApprovalService
	Entries      *services.EntryService
}

// NewEntryHandler creates the entry handler from the four stage services and the read service
func NewEntryHandler(reg *services.RegistrationService, arr *services.ArrivalService,
	ver *services.VerificationService, appr *services.ApprovalService, entries *services.EntryService) *EntryHandler {
	return &EntryHandler{
		Registration: reg,
		Arrival:      arr,
		Verification: ver,
		Approval:     appr,
		Entries:      entries,
	}
}

// CreateRegistration - POST /api/entries
func (h *EntryHandler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOf(w, r)
	if !ok {
		return
	}
	var req models.RegistrationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.Registration.Submit(r.Context(), session, &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, entry)
}

// AttachArrival - PUT /api/entries/{id}/arrival
func (h *EntryHandler) AttachArrival(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOf(w, r)
	if !ok {
		return
	}
	var req models.ArrivalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.Arrival.Submit(r.Context(), session, mux.Vars(r)["id"], &req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, entry)
}

// SetStatus - PATCH /api/entries/{id}/status
func (h *EntryHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOf(w, r)
	if !ok {
		return
	}
	var req models.StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.Approval.Decide(r.Context(), session, mux.Vars(r)["id"], req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, entry)
}

// GetEntry - GET /api/entries/{id}
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOf(w, r)
	if !ok {
		return
	}
	entry, err := h.Entries.Get(r.Context(), session, mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, entry)
}

// ListEntries - GET /api/entries?millId=&loadingPointId=&deviceId=&status=&vehicleNumber=&limit=&offset=
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOf(w, r)
	if !ok {
		return
	}
	entries, err := h.Entries.List(r.Context(), session, filterFromQuery(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, entries)
}

// ListByMill - GET /api/entries/by-mill/{millId}?deviceId=
// Mill-bound roles asking for another mill get FORBIDDEN.
func (h *EntryHandler) ListByMill(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOf(w, r)
	if !ok {
		return
	}
	filter := filterFromQuery(r)
	filter.MillID = mux.Vars(r)["millId"]
	if err := session.CheckMill(filter.MillID); err != nil {
		utils.WriteError(w, err)
		return
	}

	entries, err := h.Entries.List(r.Context(), session, filter)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, entries)
}

// Stats - GET /api/entries/stats, dashboard counters
func (h *EntryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOf(w, r)
	if !ok {
		return
	}
	stats, err := h.Entries.Stats(r.Context(), session, filterFromQuery(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, stats)
}

// Comparison - GET /api/entries/{id}/comparison
func (h *EntryHandler) Comparison(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOf(w, r)
	if !ok {
		return
	}
	cmp, err := h.Verification.Compare(r.Context(), session, mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, cmp)
}

func filterFromQuery(r *http.Request) models.EntryFilter {
	q := r.URL.Query()
	return models.EntryFilter{
		MillID:         q.Get("millId"),
		LoadingPointID: q.Get("loadingPointId"),
		Status:         models.EntryStatus(q.Get("status")),
		VehicleNumber:  q.Get("vehicleNumber"),
		DeviceID:       q.Get("deviceId"),
		Limit:          queryInt(r, "limit"),
		Offset:         queryInt(r, "offset"),
	}
}
