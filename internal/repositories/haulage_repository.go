package repositories

import (
	"context"
	"errors"

	"cane-backend/internal/models"
	"cane-backend/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HaulageRepository stores haulage companies in PostgreSQL
type HaulageRepository struct {
	DB *pgxpool.Pool
}

// NewHaulageRepository creates a new haulage repository
func NewHaulageRepository(db *pgxpool.Pool) *HaulageRepository {
	return &HaulageRepository{DB: db}
}

const haulageColumns = `id, name, contact_name, phone, vehicle_count, status, created_at, updated_at`

func (r *HaulageRepository) Create(ctx context.Context, h *models.Haulage) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO haulages(name, contact_name, phone, vehicle_count, status)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at, updated_at`,
		h.Name, h.ContactName, h.Phone, h.VehicleCount, h.Status,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	return mapWriteError(err, "haulage")
}

func (r *HaulageRepository) Get(ctx context.Context, id string) (*models.Haulage, error) {
	h, err := scanHaulage(r.DB.QueryRow(ctx, `SELECT `+haulageColumns+` FROM haulages WHERE id=$1`, id))
	return h, mapReadError(err, "haulage", id)
}

func (r *HaulageRepository) List(ctx context.Context) ([]*models.Haulage, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+haulageColumns+` FROM haulages ORDER BY name`)
	if err != nil {
		return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to list haulages", err)
	}
	defer rows.Close()

	haulages := []*models.Haulage{}
	for rows.Next() {
		h, err := scanHaulage(rows)
		if err != nil {
			return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to scan haulage", err)
		}
		haulages = append(haulages, h)
	}
	return haulages, rows.Err()
}

func (r *HaulageRepository) Update(ctx context.Context, h *models.Haulage) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE haulages SET name=$2, contact_name=$3, phone=$4, vehicle_count=$5, status=$6, updated_at=NOW()
         WHERE id=$1
         RETURNING created_at, updated_at`,
		h.ID, h.Name, h.ContactName, h.Phone, h.VehicleCount, h.Status,
	).Scan(&h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.NotFoundError("haulage", h.ID)
	}
	return mapWriteError(err, "haulage")
}

func (r *HaulageRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM haulages WHERE id=$1`, id)
	if err != nil {
		return utils.Wrap(utils.ErrCodeDatabase, "failed to delete haulage", err)
	}
	if tag.RowsAffected() == 0 {
		return utils.NotFoundError("haulage", id)
	}
	return nil
}

func scanHaulage(row pgx.Row) (*models.Haulage, error) {
	var h models.Haulage
	err := row.Scan(&h.ID, &h.Name, &h.ContactName, &h.Phone, &h.VehicleCount, &h.Status, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}
