package handlers

import (
	"net/http"

	"cane-backend/internal/realtime"
	"cane-backend/internal/services"
	"cane-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// EntryEventHandler serves entry history and the live event feed
type EntryEventHandler struct {
	Entries *services.EntryService
	Hub     *realtime.Hub
}

// NewEntryEventHandler creates a new entry event handler
func NewEntryEventHandler(entries *services.EntryService, hub *realtime.Hub) *EntryEventHandler {
	return &EntryEventHandler{Entries: entries, Hub: hub}
}

// ListEvents - GET /api/entries/{id}/events
func (h *EntryEventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOf(w, r)
	if !ok {
		return
	}
	events, err := h.Entries.Events(r.Context(), session, mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, events)
}

// Live - GET /ws/entries?millId=
// Non-admin sessions only ever receive events of their own mill.
func (h *EntryEventHandler) Live(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOf(w, r)
	if !ok {
		return
	}
	h.Hub.ServeWS(w, r, session.ScopeMill(r.URL.Query().Get("millId")))
}
