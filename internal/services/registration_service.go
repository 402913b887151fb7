package services

import (
	"context"
	"strings"

	"cane-backend/internal/auth"
	"cane-backend/internal/cache"
	"cane-backend/internal/models"
	"cane-backend/internal/repositories"
	"cane-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

// RegistrationService opens entries at the loading point
type RegistrationService struct {
	workflow
	// LoadingPoints enables the geofence check; nil skips it
	LoadingPoints LoadingPointLookup
}

// NewRegistrationService creates the registration stage
//
// Parameters:
//   - store: entry persistence
//   - c: read cache, may be nil
//   - pub: live feed, may be nil
//   - points: loading point lookup for the geofence, nil disables it
//
// Returns:
//   - *RegistrationService: New registration service
func NewRegistrationService(store repositories.EntryStore, c *cache.Cache, pub EventPublisher, points LoadingPointLookup) *RegistrationService {
	return &RegistrationService{
		workflow:      workflow{Store: store, Cache: c, Publisher: pub},
		LoadingPoints: points,
	}
}

// Submit validates the registration stage and creates a pending entry
func (s *RegistrationService) Submit(ctx context.Context, session auth.Session, req *models.RegistrationRequest) (*models.Entry, error) {
	if err := session.Require(auth.CapSubmitRegistration); err != nil {
		return nil, rejected("registration", err)
	}

	normalizeRegistration(req)
	if err := validateStruct(req); err != nil {
		return nil, rejected("registration", err)
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, rejected("registration", utils.ValidationError(map[string]string{
			"latitude": "latitude and longitude must be given together",
		}))
	}

	if err := session.CheckMill(req.MillID); err != nil {
		return nil, rejected("registration", err)
	}
	millID := session.ScopeMill(req.MillID)
	if millID == "" {
		millID = session.MillID
	}

	if s.LoadingPoints != nil && req.LoadingPointID != "" && req.Latitude != nil {
		lp, err := checkGeofence(ctx, s.LoadingPoints, req.LoadingPointID, *req.Latitude, *req.Longitude)
		if err != nil {
			return nil, rejected("registration", err)
		}
		if millID == "" {
			millID = lp.MillID
		} else if lp.MillID != millID {
			return nil, rejected("registration", utils.ValidationError(map[string]string{
				"loadingPointId": "loading point belongs to another mill",
			}))
		}
	}

	entry := &models.Entry{
		VehicleNumber:      req.VehicleNumber,
		RegistrationNumber: req.RegistrationNumber,
		PermitNumber:       req.PermitNumber,
		VehicleType:        req.VehicleType,
		DriverName:         req.DriverName,
		MillID:             millID,
		LoadingPointID:     req.LoadingPointID,
		DeviceID:           req.DeviceID,
		CreatedBy:          session.UserID,
		Registration: models.RegistrationDetails{
			VehicleNumber:      req.VehicleNumber,
			RegistrationNumber: req.RegistrationNumber,
			PermitNumber:       req.PermitNumber,
			VehicleType:        req.VehicleType,
			DriverName:         req.DriverName,
			VehicleLocation:    req.VehicleLocation,
			Location:           req.Location,
			Latitude:           req.Latitude,
			Longitude:          req.Longitude,
			VehiclePicture:     req.VehiclePicture,
			PermitPicture:      req.PermitPicture,
			DriverPicture:      req.DriverPicture,
		},
	}

	if err := s.Store.Create(ctx, entry); err != nil {
		return nil, rejected("registration", err)
	}

	utils.GetLogger().WithFields(logrus.Fields{
		"entry_id": entry.ID,
		"vehicle":  entry.VehicleNumber,
		"mill_id":  entry.MillID,
		"user_id":  session.UserID,
	}).Info("entry registered")

	s.record(ctx, entry, models.EventTypeRegistered, session.UserID, "")
	return entry, nil
}

func normalizeRegistration(req *models.RegistrationRequest) {
	req.VehicleNumber = normalizeIdentifier(req.VehicleNumber)
	req.RegistrationNumber = normalizeIdentifier(req.RegistrationNumber)
	req.PermitNumber = strings.TrimSpace(req.PermitNumber)
	req.VehicleType = strings.TrimSpace(req.VehicleType)
	req.DriverName = strings.TrimSpace(req.DriverName)
	req.Location = strings.TrimSpace(req.Location)
	req.VehicleLocation = strings.TrimSpace(req.VehicleLocation)
	req.VehiclePicture = strings.TrimSpace(req.VehiclePicture)
	req.PermitPicture = strings.TrimSpace(req.PermitPicture)
	req.DriverPicture = strings.TrimSpace(req.DriverPicture)
	req.MillID = strings.TrimSpace(req.MillID)
	req.LoadingPointID = strings.TrimSpace(req.LoadingPointID)
	req.DeviceID = strings.TrimSpace(req.DeviceID)
}
