package services

import (
	"context"
	"strings"

	"cane-backend/internal/models"
	"cane-backend/pkg/utils"
)

// MillStore persists mills
type MillStore interface {
	Create(ctx context.Context, m *models.Mill) error
	Get(ctx context.Context, id string) (*models.Mill, error)
	List(ctx context.Context) ([]*models.Mill, error)
	Update(ctx context.Context, m *models.Mill) error
	Delete(ctx context.Context, id string) error
}

// LoadingPointStore persists loading points. List filters by mill when millID is set.
type LoadingPointStore interface {
	LoadingPointLookup
	Create(ctx context.Context, lp *models.LoadingPoint) error
	List(ctx context.Context, millID string) ([]*models.LoadingPoint, error)
	Update(ctx context.Context, lp *models.LoadingPoint) error
	Delete(ctx context.Context, id string) error
}

// HaulageStore persists haulage companies
type HaulageStore interface {
	Create(ctx context.Context, h *models.Haulage) error
	Get(ctx context.Context, id string) (*models.Haulage, error)
	List(ctx context.Context) ([]*models.Haulage, error)
	Update(ctx context.Context, h *models.Haulage) error
	Delete(ctx context.Context, id string) error
}

// DeviceStore persists handsets keyed by IMEI
type DeviceStore interface {
	Create(ctx context.Context, d *models.Device) error
	GetByIMEI(ctx context.Context, imei string) (*models.Device, error)
	List(ctx context.Context, millID string) ([]*models.Device, error)
	UpdateByIMEI(ctx context.Context, d *models.Device) error
	DeleteByIMEI(ctx context.Context, imei string) error
}

// CatalogService manages the reference records entries point at: mills,
// loading points, haulage companies and devices
type CatalogService struct {
	MillRepo         MillStore
	LoadingPointRepo LoadingPointStore
	HaulageRepo      HaulageStore
	DeviceRepo       DeviceStore
}

// NewCatalogService wires the four catalog stores; main passes the pgx repositories
func NewCatalogService(mills MillStore, points LoadingPointStore, haulages HaulageStore, devices DeviceStore) *CatalogService {
	return &CatalogService{
		MillRepo:         mills,
		LoadingPointRepo: points,
		HaulageRepo:      haulages,
		DeviceRepo:       devices,
	}
}

func defaultStatus(s string) string {
	if s == "" {
		return models.RecordActive
	}
	return s
}

// Mills

func (s *CatalogService) CreateMill(ctx context.Context, m *models.Mill) error {
	prepareMill(m)
	if err := validateStruct(m); err != nil {
		return err
	}
	return s.MillRepo.Create(ctx, m)
}

func (s *CatalogService) UpdateMill(ctx context.Context, m *models.Mill) error {
	prepareMill(m)
	if err := validateStruct(m); err != nil {
		return err
	}
	return s.MillRepo.Update(ctx, m)
}

func (s *CatalogService) GetMill(ctx context.Context, id string) (*models.Mill, error) {
	return s.MillRepo.Get(ctx, id)
}

func (s *CatalogService) ListMills(ctx context.Context) ([]*models.Mill, error) {
	return s.MillRepo.List(ctx)
}

func (s *CatalogService) DeleteMill(ctx context.Context, id string) error {
	return s.MillRepo.Delete(ctx, id)
}

func prepareMill(m *models.Mill) {
	m.MillCode = strings.ToUpper(strings.TrimSpace(m.MillCode))
	m.MillName = strings.TrimSpace(m.MillName)
	m.FocalPerson = strings.TrimSpace(m.FocalPerson)
	m.CNIC = strings.TrimSpace(m.CNIC)
	m.Phone = strings.TrimSpace(m.Phone)
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	m.Address = strings.TrimSpace(m.Address)
	m.Status = defaultStatus(m.Status)
}

func prepareLoadingPoint(lp *models.LoadingPoint) {
	lp.MillID = strings.TrimSpace(lp.MillID)
	lp.Name = strings.TrimSpace(lp.Name)
	lp.Status = defaultStatus(lp.Status)
}

func prepareHaulage(h *models.Haulage) {
	h.Name = strings.TrimSpace(h.Name)
	h.ContactName = strings.TrimSpace(h.ContactName)
	h.Phone = strings.TrimSpace(h.Phone)
	h.Status = defaultStatus(h.Status)
}

// checkDevice normalizes and validates d; a device may only sit at a loading
// point of its own mill
func (s *CatalogService) checkDevice(ctx context.Context, d *models.Device) error {
	prepareDevice(d)
	if err := validateStruct(d); err != nil {
		return err
	}
	if d.LoadingPointID == "" {
		return nil
	}
	lp, err := s.LoadingPointRepo.Get(ctx, d.LoadingPointID)
	if err != nil {
		if utils.IsNotFound(err) {
			return utils.ValidationError(map[string]string{"loadingPointId": "unknown loading point"})
		}
		return err
	}
	if lp.MillID != d.MillID {
		return utils.ValidationError(map[string]string{"loadingPointId": "loading point belongs to another mill"})
	}
	return nil
}

func prepareDevice(d *models.Device) {
	d.IMEI = strings.TrimSpace(d.IMEI)
	d.MillID = strings.TrimSpace(d.MillID)
	d.LoadingPointID = strings.TrimSpace(d.LoadingPointID)
	d.Label = strings.TrimSpace(d.Label)
	d.Status = defaultStatus(d.Status)
}

// Loading points

func (s *CatalogService) CreateLoadingPoint(ctx context.Context, lp *models.LoadingPoint) error {
	prepareLoadingPoint(lp)
	if err := validateStruct(lp); err != nil {
		return err
	}
	return s.LoadingPointRepo.Create(ctx, lp)
}

func (s *CatalogService) UpdateLoadingPoint(ctx context.Context, lp *models.LoadingPoint) error {
	prepareLoadingPoint(lp)
	if err := validateStruct(lp); err != nil {
		return err
	}
	return s.LoadingPointRepo.Update(ctx, lp)
}

func (s *CatalogService) GetLoadingPoint(ctx context.Context, id string) (*models.LoadingPoint, error) {
	return s.LoadingPointRepo.Get(ctx, id)
}

func (s *CatalogService) ListLoadingPoints(ctx context.Context, millID string) ([]*models.LoadingPoint, error) {
	return s.LoadingPointRepo.List(ctx, millID)
}

func (s *CatalogService) DeleteLoadingPoint(ctx context.Context, id string) error {
	return s.LoadingPointRepo.Delete(ctx, id)
}

// Haulage

func (s *CatalogService) CreateHaulage(ctx context.Context, h *models.Haulage) error {
	prepareHaulage(h)
	if err := validateStruct(h); err != nil {
		return err
	}
	return s.HaulageRepo.Create(ctx, h)
}

func (s *CatalogService) UpdateHaulage(ctx context.Context, h *models.Haulage) error {
	prepareHaulage(h)
	if err := validateStruct(h); err != nil {
		return err
	}
	return s.HaulageRepo.Update(ctx, h)
}

func (s *CatalogService) GetHaulage(ctx context.Context, id string) (*models.Haulage, error) {
	return s.HaulageRepo.Get(ctx, id)
}

func (s *CatalogService) ListHaulages(ctx context.Context) ([]*models.Haulage, error) {
	return s.HaulageRepo.List(ctx)
}

func (s *CatalogService) DeleteHaulage(ctx context.Context, id string) error {
	return s.HaulageRepo.Delete(ctx, id)
}

// Devices

func (s *CatalogService) CreateDevice(ctx context.Context, d *models.Device) error {
	if err := s.checkDevice(ctx, d); err != nil {
		return err
	}
	return s.DeviceRepo.Create(ctx, d)
}

func (s *CatalogService) UpdateDevice(ctx context.Context, d *models.Device) error {
	if err := s.checkDevice(ctx, d); err != nil {
		return err
	}
	return s.DeviceRepo.UpdateByIMEI(ctx, d)
}

func (s *CatalogService) GetDevice(ctx context.Context, imei string) (*models.Device, error) {
	return s.DeviceRepo.GetByIMEI(ctx, imei)
}

func (s *CatalogService) ListDevices(ctx context.Context, millID string) ([]*models.Device, error) {
	return s.DeviceRepo.List(ctx, millID)
}

func (s *CatalogService) DeleteDevice(ctx context.Context, imei string) error {
	return s.DeviceRepo.DeleteByIMEI(ctx, imei)
}
