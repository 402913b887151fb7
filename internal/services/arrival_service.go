package services

import (
	"context"
	"strings"

	"cane-backend/internal/auth"
	"cane-backend/internal/cache"
	"cane-backend/internal/models"
	"cane-backend/internal/repositories"
	"cane-backend/internal/timeutil"
	"cane-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

// ArrivalService records the mill gate stage on an existing entry
type ArrivalService struct {
	workflow
	// EnforceMatch refuses arrivals whose vehicle or registration number
	// differs from the registration snapshot
	EnforceMatch bool
}

// NewArrivalService creates the arrival stage. With enforceMatch set, arrivals
// whose identifiers differ from the registration are refused.
func NewArrivalService(store repositories.EntryStore, c *cache.Cache, pub EventPublisher, enforceMatch bool) *ArrivalService {
	return &ArrivalService{
		workflow:     workflow{Store: store, Cache: c, Publisher: pub},
		EnforceMatch: enforceMatch,
	}
}

// Submit attaches arrival details to entry id. Resubmitting replaces the previous arrival.
func (s *ArrivalService) Submit(ctx context.Context, session auth.Session, id string, req *models.ArrivalRequest) (*models.Entry, error) {
	if err := session.Require(auth.CapSubmitArrival); err != nil {
		return nil, rejected("arrival", err)
	}

	normalizeArrival(req)
	if err := validateStruct(req); err != nil {
		return nil, rejected("arrival", err)
	}

	current, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, rejected("arrival", err)
	}
	if err := checkMillAccess(session, current); err != nil {
		return nil, rejected("arrival", err)
	}
	if s.EnforceMatch {
		if err := matchRegistration(current, req); err != nil {
			return nil, rejected("arrival", err)
		}
	}

	arrival := models.ArrivalDetails{
		VehicleNumber:      req.VehicleNumber,
		RegistrationNumber: req.RegistrationNumber,
		ArrivalTime:        req.ArrivalTime,
		ArrivalLocation:    req.ArrivalLocation,
		Location:           req.Location,
		VehiclePicture:     req.VehiclePicture,
		PermitPicture:      req.PermitPicture,
		DriverPicture:      req.DriverPicture,
	}

	entry, err := s.Store.AttachArrival(ctx, id, arrival, timeutil.Now())
	if err != nil {
		return nil, rejected("arrival", err)
	}
	s.Cache.InvalidateEntry(ctx, id)

	utils.GetLogger().WithFields(logrus.Fields{
		"entry_id": id,
		"user_id":  session.UserID,
	}).Info("arrival attached")

	s.record(ctx, entry, models.EventTypeArrivalAttached, session.UserID, req.ArrivalLocation)
	return entry, nil
}

func matchRegistration(entry *models.Entry, req *models.ArrivalRequest) error {
	fields := map[string]string{}
	if comparableKey(req.VehicleNumber) != comparableKey(entry.Registration.VehicleNumber) {
		fields["vehicleNumber"] = "does not match registered vehicle " + entry.Registration.VehicleNumber
	}
	if comparableKey(req.RegistrationNumber) != comparableKey(entry.Registration.RegistrationNumber) {
		fields["registrationNumber"] = "does not match registration " + entry.Registration.RegistrationNumber
	}
	if len(fields) > 0 {
		return utils.ValidationError(fields)
	}
	return nil
}

// normalizeArrival only trims: the arrival snapshot keeps what the gate typed,
// and matching goes through comparableKey
func normalizeArrival(req *models.ArrivalRequest) {
	req.VehicleNumber = strings.TrimSpace(req.VehicleNumber)
	req.RegistrationNumber = strings.TrimSpace(req.RegistrationNumber)
	req.ArrivalTime = strings.TrimSpace(req.ArrivalTime)
	req.ArrivalLocation = strings.TrimSpace(req.ArrivalLocation)
	req.Location = strings.TrimSpace(req.Location)
	req.VehiclePicture = strings.TrimSpace(req.VehiclePicture)
	req.PermitPicture = strings.TrimSpace(req.PermitPicture)
	req.DriverPicture = strings.TrimSpace(req.DriverPicture)
}
