package repositories

import (
	"context"
	"errors"

	"cane-backend/internal/models"
	"cane-backend/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DeviceRepository stores loading point handsets, addressed by IMEI
type DeviceRepository struct {
	DB *pgxpool.Pool
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db *pgxpool.Pool) *DeviceRepository {
	return &DeviceRepository{DB: db}
}

const deviceColumns = `id, imei, mill_id, loading_point_id, label, status, created_at, updated_at`

func (r *DeviceRepository) Create(ctx context.Context, d *models.Device) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO devices(imei, mill_id, loading_point_id, label, status)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at, updated_at`,
		d.IMEI, d.MillID, d.LoadingPointID, d.Label, d.Status,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return mapWriteError(err, "device")
}

func (r *DeviceRepository) GetByIMEI(ctx context.Context, imei string) (*models.Device, error) {
	d, err := scanDevice(r.DB.QueryRow(ctx, `SELECT `+deviceColumns+` FROM devices WHERE imei=$1`, imei))
	return d, mapReadError(err, "device", imei)
}

func (r *DeviceRepository) List(ctx context.Context, millID string) ([]*models.Device, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+deviceColumns+` FROM devices
         WHERE ($1 = '' OR mill_id = $1)
         ORDER BY created_at DESC`, millID)
	if err != nil {
		return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to list devices", err)
	}
	defer rows.Close()

	devices := []*models.Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to scan device", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (r *DeviceRepository) UpdateByIMEI(ctx context.Context, d *models.Device) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE devices SET mill_id=$2, loading_point_id=$3, label=$4, status=$5, updated_at=NOW()
         WHERE imei=$1
         RETURNING id, created_at, updated_at`,
		d.IMEI, d.MillID, d.LoadingPointID, d.Label, d.Status,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.NotFoundError("device", d.IMEI)
	}
	return mapWriteError(err, "device")
}

func (r *DeviceRepository) DeleteByIMEI(ctx context.Context, imei string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM devices WHERE imei=$1`, imei)
	if err != nil {
		return utils.Wrap(utils.ErrCodeDatabase, "failed to delete device", err)
	}
	if tag.RowsAffected() == 0 {
		return utils.NotFoundError("device", imei)
	}
	return nil
}

func scanDevice(row pgx.Row) (*models.Device, error) {
	var d models.Device
	err := row.Scan(&d.ID, &d.IMEI, &d.MillID, &d.LoadingPointID, &d.Label, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
