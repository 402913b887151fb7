package services

import (
	"context"
	"fmt"
	"testing"

	"cane-backend/internal/models"
	"cane-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// table is a map-backed catalog store keyed by id (or IMEI for devices)
type table[T any] struct {
	kind string
	rows map[string]T
	key  func(*T) string
	next int
}

func newTable[T any](kind string, key func(*T) string) *table[T] {
	return &table[T]{kind: kind, rows: map[string]T{}, key: key}
}

func (t *table[T]) create(v *T, assignID func(*T, string)) error {
	if k := t.key(v); k != "" {
		if _, dup := t.rows[k]; dup {
			return utils.NewAppError(utils.ErrCodeConflict, t.kind+" already exists", k)
		}
	}
	t.next++
	assignID(v, fmt.Sprintf("%s-%d", t.kind, t.next))
	t.rows[t.key(v)] = *v
	return nil
}

func (t *table[T]) get(k string) (*T, error) {
	v, ok := t.rows[k]
	if !ok {
		return nil, utils.NotFoundError(t.kind, k)
	}
	return &v, nil
}

func (t *table[T]) update(v *T) error {
	if _, ok := t.rows[t.key(v)]; !ok {
		return utils.NotFoundError(t.kind, t.key(v))
	}
	t.rows[t.key(v)] = *v
	return nil
}

func (t *table[T]) remove(k string) error {
	if _, ok := t.rows[k]; !ok {
		return utils.NotFoundError(t.kind, k)
	}
	delete(t.rows, k)
	return nil
}

func (t *table[T]) list(keep func(*T) bool) []*T {
	out := []*T{}
	for _, v := range t.rows {
		v := v
		if keep == nil || keep(&v) {
			out = append(out, &v)
		}
	}
	return out
}

type fakeMills struct{ *table[models.Mill] }

func (f fakeMills) Create(ctx context.Context, m *models.Mill) error {
	return f.create(m, func(m *models.Mill, id string) { m.ID = id })
}
func (f fakeMills) Get(ctx context.Context, id string) (*models.Mill, error) { return f.get(id) }
func (f fakeMills) List(ctx context.Context) ([]*models.Mill, error)         { return f.list(nil), nil }
func (f fakeMills) Update(ctx context.Context, m *models.Mill) error         { return f.update(m) }
func (f fakeMills) Delete(ctx context.Context, id string) error              { return f.remove(id) }

type fakePoints struct{ *table[models.LoadingPoint] }

func (f fakePoints) Create(ctx context.Context, lp *models.LoadingPoint) error {
	return f.create(lp, func(lp *models.LoadingPoint, id string) { lp.ID = id })
}
func (f fakePoints) Get(ctx context.Context, id string) (*models.LoadingPoint, error) {
	return f.get(id)
}
func (f fakePoints) List(ctx context.Context, millID string) ([]*models.LoadingPoint, error) {
	return f.list(func(lp *models.LoadingPoint) bool { return millID == "" || lp.MillID == millID }), nil
}
func (f fakePoints) Update(ctx context.Context, lp *models.LoadingPoint) error { return f.update(lp) }
func (f fakePoints) Delete(ctx context.Context, id string) error               { return f.remove(id) }

type fakeHaulages struct{ *table[models.Haulage] }

func (f fakeHaulages) Create(ctx context.Context, h *models.Haulage) error {
	return f.create(h, func(h *models.Haulage, id string) { h.ID = id })
}
func (f fakeHaulages) Get(ctx context.Context, id string) (*models.Haulage, error) { return f.get(id) }
func (f fakeHaulages) List(ctx context.Context) ([]*models.Haulage, error)         { return f.list(nil), nil }
func (f fakeHaulages) Update(ctx context.Context, h *models.Haulage) error         { return f.update(h) }
func (f fakeHaulages) Delete(ctx context.Context, id string) error                 { return f.remove(id) }

type fakeDevices struct{ *table[models.Device] }

func (f fakeDevices) Create(ctx context.Context, d *models.Device) error {
	return f.create(d, func(d *models.Device, id string) { d.ID = id })
}
func (f fakeDevices) GetByIMEI(ctx context.Context, imei string) (*models.Device, error) {
	return f.get(imei)
}
func (f fakeDevices) List(ctx context.Context, millID string) ([]*models.Device, error) {
	return f.list(func(d *models.Device) bool { return millID == "" || d.MillID == millID }), nil
}
func (f fakeDevices) UpdateByIMEI(ctx context.Context, d *models.Device) error { return f.update(d) }
func (f fakeDevices) DeleteByIMEI(ctx context.Context, imei string) error      { return f.remove(imei) }

func newTestCatalog() *CatalogService {
	return NewCatalogService(
		fakeMills{newTable("mill", func(m *models.Mill) string { return m.ID })},
		fakePoints{newTable("loading point", func(lp *models.LoadingPoint) string { return lp.ID })},
		fakeHaulages{newTable("haulage", func(h *models.Haulage) string { return h.ID })},
		fakeDevices{newTable("device", func(d *models.Device) string { return d.IMEI })},
	)
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	require.True(t, utils.IsValidation(err), "expected validation error, got %v", err)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Fields
}

func TestCatalog_CreateMillNormalizes(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog()

	m := &models.Mill{
		MillCode: " ssm-01 ", MillName: " Shakarganj ", FocalPerson: " Asad ",
		Phone: " 0300-1234567 ", Email: " Ops@Mill.PK ",
	}
	require.NoError(t, catalog.CreateMill(ctx, m))
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "SSM-01", m.MillCode)
	assert.Equal(t, "Shakarganj", m.MillName)
	assert.Equal(t, "0300-1234567", m.Phone)
	assert.Equal(t, "ops@mill.pk", m.Email)
	assert.Equal(t, models.RecordActive, m.Status, "status defaults to Active")

	got, err := catalog.GetMill(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "SSM-01", got.MillCode)

	fields := validationFields(t, catalog.CreateMill(ctx, &models.Mill{Email: "nope", Status: "Closed"}))
	for _, f := range []string{"millCode", "millName", "focalPerson", "phone", "email", "status"} {
		assert.Contains(t, fields, f)
	}
}

func TestCatalog_UpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog()

	err := catalog.UpdateMill(ctx, &models.Mill{ID: "ghost", MillCode: "X", MillName: "X", FocalPerson: "X", Phone: "1"})
	assert.True(t, utils.IsNotFound(err))
	assert.True(t, utils.IsNotFound(catalog.DeleteHaulage(ctx, "ghost")))
	assert.True(t, utils.IsNotFound(catalog.DeleteDevice(ctx, "352099001761481")))
}

func TestCatalog_LoadingPointRules(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog()

	fields := validationFields(t, catalog.CreateLoadingPoint(ctx, &models.LoadingPoint{
		MillID: "mill-1", Name: "Kot Adu", Latitude: 95, Longitude: 70.96, RadiusM: 0,
	}))
	assert.Equal(t, "must be greater than 0", fields["radius"])
	assert.Contains(t, fields, "latitude")

	lp := &models.LoadingPoint{MillID: " mill-1 ", Name: " Kot Adu ", Latitude: 30.47, Longitude: 70.96, RadiusM: 500}
	require.NoError(t, catalog.CreateLoadingPoint(ctx, lp))
	assert.Equal(t, "mill-1", lp.MillID)
	assert.Equal(t, "Kot Adu", lp.Name)
	assert.Equal(t, models.RecordActive, lp.Status)

	other := &models.LoadingPoint{MillID: "mill-2", Name: "Layyah", Latitude: 30.96, Longitude: 70.94, RadiusM: 300}
	require.NoError(t, catalog.CreateLoadingPoint(ctx, other))

	mill1, err := catalog.ListLoadingPoints(ctx, "mill-1")
	require.NoError(t, err)
	require.Len(t, mill1, 1)
	assert.Equal(t, lp.ID, mill1[0].ID)

	lp.Status = models.RecordInactive
	require.NoError(t, catalog.UpdateLoadingPoint(ctx, lp))
	got, err := catalog.GetLoadingPoint(ctx, lp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RecordInactive, got.Status)
}

func TestCatalog_HaulageRules(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog()

	fields := validationFields(t, catalog.CreateHaulage(ctx, &models.Haulage{Name: "Indus", Phone: "042", VehicleCount: -1}))
	assert.Equal(t, "must be at least 0", fields["vehicleCount"])

	h := &models.Haulage{Name: " Indus Haulage ", ContactName: " Bilal ", Phone: "042-111", VehicleCount: 12}
	require.NoError(t, catalog.CreateHaulage(ctx, h))
	assert.Equal(t, "Indus Haulage", h.Name)
	assert.Equal(t, "Bilal", h.ContactName)
	assert.Equal(t, models.RecordActive, h.Status)

	all, err := catalog.ListHaulages(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCatalog_DeviceRules(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog()

	lp := &models.LoadingPoint{MillID: "mill-1", Name: "Kot Adu", Latitude: 30.47, Longitude: 70.96, RadiusM: 500}
	require.NoError(t, catalog.CreateLoadingPoint(ctx, lp))

	fields := validationFields(t, catalog.CreateDevice(ctx, &models.Device{IMEI: "12345", MillID: "mill-1"}))
	assert.Equal(t, "must be exactly 15 characters", fields["imei"])

	fields = validationFields(t, catalog.CreateDevice(ctx, &models.Device{IMEI: "35209900176148A", MillID: "mill-1"}))
	assert.Equal(t, "must contain digits only", fields["imei"])

	fields = validationFields(t, catalog.CreateDevice(ctx, &models.Device{IMEI: "352099001761481", MillID: "mill-2", LoadingPointID: lp.ID}))
	assert.Equal(t, "loading point belongs to another mill", fields["loadingPointId"])

	fields = validationFields(t, catalog.CreateDevice(ctx, &models.Device{IMEI: "352099001761481", MillID: "mill-1", LoadingPointID: "nowhere"}))
	assert.Equal(t, "unknown loading point", fields["loadingPointId"])

	d := &models.Device{IMEI: " 352099001761481 ", MillID: "mill-1", LoadingPointID: lp.ID, Label: " Gate phone "}
	require.NoError(t, catalog.CreateDevice(ctx, d))
	assert.Equal(t, "352099001761481", d.IMEI)
	assert.Equal(t, "Gate phone", d.Label)
	assert.Equal(t, models.RecordActive, d.Status)

	d.Status = models.RecordInactive
	require.NoError(t, catalog.UpdateDevice(ctx, d))
	got, err := catalog.GetDevice(ctx, "352099001761481")
	require.NoError(t, err)
	assert.Equal(t, models.RecordInactive, got.Status)

	listed, err := catalog.ListDevices(ctx, "mill-2")
	require.NoError(t, err)
	assert.Empty(t, listed)

	require.NoError(t, catalog.DeleteDevice(ctx, "352099001761481"))
	_, err = catalog.GetDevice(ctx, "352099001761481")
	assert.True(t, utils.IsNotFound(err))
}
