package handlers

import (
	"net/http"

	"cane-backend/internal/models"
	"cane-backend/internal/services"
	"cane-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// CatalogHandler serves CRUD for mills, loading points, haulage companies and devices
type CatalogHandler struct {
	Service *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(s *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{Service: s}
}

func writeDeleted(w http.ResponseWriter, err error) {
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Mills

func (h *CatalogHandler) CreateMill(w http.ResponseWriter, r *http.Request) {
	var m models.Mill
	if !decodeJSON(w, r, &m) {
		return
	}
	if err := h.Service.CreateMill(r.Context(), &m); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, m)
}

func (h *CatalogHandler) ListMills(w http.ResponseWriter, r *http.Request) {
	mills, err := h.Service.ListMills(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, mills)
}

func (h *CatalogHandler) GetMill(w http.ResponseWriter, r *http.Request) {
	m, err := h.Service.GetMill(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, m)
}

func (h *CatalogHandler) UpdateMill(w http.ResponseWriter, r *http.Request) {
	var m models.Mill
	if !decodeJSON(w, r, &m) {
		return
	}
	m.ID = mux.Vars(r)["id"]
	if err := h.Service.UpdateMill(r.Context(), &m); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, m)
}

func (h *CatalogHandler) DeleteMill(w http.ResponseWriter, r *http.Request) {
	writeDeleted(w, h.Service.DeleteMill(r.Context(), mux.Vars(r)["id"]))
}

// Loading points

func (h *CatalogHandler) CreateLoadingPoint(w http.ResponseWriter, r *http.Request) {
	var lp models.LoadingPoint
	if !decodeJSON(w, r, &lp) {
		return
	}
	if err := h.Service.CreateLoadingPoint(r.Context(), &lp); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, lp)
}

// ListLoadingPoints - GET /api/loading-points?millId=
func (h *CatalogHandler) ListLoadingPoints(w http.ResponseWriter, r *http.Request) {
	points, err := h.Service.ListLoadingPoints(r.Context(), r.URL.Query().Get("millId"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, points)
}

func (h *CatalogHandler) GetLoadingPoint(w http.ResponseWriter, r *http.Request) {
	lp, err := h.Service.GetLoadingPoint(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, lp)
}

func (h *CatalogHandler) UpdateLoadingPoint(w http.ResponseWriter, r *http.Request) {
	var lp models.LoadingPoint
	if !decodeJSON(w, r, &lp) {
		return
	}
	lp.ID = mux.Vars(r)["id"]
	if err := h.Service.UpdateLoadingPoint(r.Context(), &lp); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, lp)
}

func (h *CatalogHandler) DeleteLoadingPoint(w http.ResponseWriter, r *http.Request) {
	writeDeleted(w, h.Service.DeleteLoadingPoint(r.Context(), mux.Vars(r)["id"]))
}

// Haulage

func (h *CatalogHandler) CreateHaulage(w http.ResponseWriter, r *http.Request) {
	var hl models.Haulage
	if !decodeJSON(w, r, &hl) {
		return
	}
	if err := h.Service.CreateHaulage(r.Context(), &hl); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, hl)
}

func (h *CatalogHandler) ListHaulages(w http.ResponseWriter, r *http.Request) {
	haulages, err := h.Service.ListHaulages(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, haulages)
}

func (h *CatalogHandler) GetHaulage(w http.ResponseWriter, r *http.Request) {
	hl, err := h.Service.GetHaulage(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, hl)
}

func (h *CatalogHandler) UpdateHaulage(w http.ResponseWriter, r *http.Request) {
	var hl models.Haulage
	if !decodeJSON(w, r, &hl) {
		return
	}
	hl.ID = mux.Vars(r)["id"]
	if err := h.Service.UpdateHaulage(r.Context(), &hl); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, hl)
}

func (h *CatalogHandler) DeleteHaulage(w http.ResponseWriter, r *http.Request) {
	writeDeleted(w, h.Service.DeleteHaulage(r.Context(), mux.Vars(r)["id"]))
}

// Devices are addressed by IMEI

func (h *CatalogHandler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var d models.Device
	if !decodeJSON(w, r, &d) {
		return
	}
	if err := h.Service.CreateDevice(r.Context(), &d); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, d)
}

// ListDevices - GET /api/devices?millId=
func (h *CatalogHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.Service.ListDevices(r.Context(), r.URL.Query().Get("millId"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, devices)
}

func (h *CatalogHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.GetDevice(r.Context(), mux.Vars(r)["imei"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, d)
}

func (h *CatalogHandler) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	var d models.Device
	if !decodeJSON(w, r, &d) {
		return
	}
	d.IMEI = mux.Vars(r)["imei"]
	if err := h.Service.UpdateDevice(r.Context(), &d); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, d)
}

func (h *CatalogHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	writeDeleted(w, h.Service.DeleteDevice(r.Context(), mux.Vars(r)["imei"]))
}
