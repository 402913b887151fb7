package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cane-backend/internal/auth"
	"cane-backend/internal/timeutil"
	"cane-backend/pkg/utils"

	"github.com/google/uuid"
)

// ImageStore keeps uploaded photos and returns their public URL
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadService stores vehicle, permit and driver photos for the submit stages
type UploadService struct {
	Store    ImageStore
	MaxBytes int64
}

// NewUploadService creates an upload service; maxSizeMB defaults to 5
func NewUploadService(store ImageStore, maxSizeMB int64) *UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &UploadService{Store: store, MaxBytes: maxSizeMB << 20}
}

// Upload stores one image under entries/<date>/<uuid>.<ext> and returns its URL
func (s *UploadService) Upload(ctx context.Context, session auth.Session, contentType string, body io.Reader, size int64) (string, error) {
	if !session.Role.Can(auth.CapSubmitRegistration) && !session.Role.Can(auth.CapSubmitArrival) {
		return "", utils.NewAppError(utils.ErrCodeForbidden, "not allowed for role "+string(session.Role))
	}

	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", utils.ValidationError(map[string]string{"file": "must be a JPEG, PNG or WebP image"})
	}
	if size <= 0 {
		return "", utils.ValidationError(map[string]string{"file": "is empty"})
	}
	if size > s.MaxBytes {
		return "", utils.ValidationError(map[string]string{
			"file": fmt.Sprintf("must be at most %d MB", s.MaxBytes>>20),
		})
	}

	key := fmt.Sprintf("entries/%s/%s%s", timeutil.Format(timeutil.Now(), "2006/01/02"), uuid.NewString(), ext)
	return s.Store.Put(ctx, key, contentType, body, size)
}
