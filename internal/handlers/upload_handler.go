package handlers

import (
	"net/http"

	"cane-backend/internal/services"
	"cane-backend/pkg/utils"
)

// UploadHandler accepts entry photos
type UploadHandler struct {
	Service *services.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(s *services.UploadService) *UploadHandler {
	return &UploadHandler{Service: s}
}

// Upload - POST /api/uploads, multipart field "file"; responds {"url": ...}
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOf(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Service.MaxBytes+1<<20)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		utils.WriteError(w, utils.ValidationError(map[string]string{"file": "invalid multipart form: " + err.Error()}))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, utils.ValidationError(map[string]string{"file": "is required"}))
		return
	}
	defer file.Close()

	url, err := h.Service.Upload(r.Context(), session, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]string{"url": url})
}
