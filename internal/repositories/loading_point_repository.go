package repositories

import (
	"context"
	"errors"

	"cane-backend/internal/models"
	"cane-backend/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoadingPointRepository stores geofenced loading points in PostgreSQL
type LoadingPointRepository struct {
	DB *pgxpool.Pool
}

// NewLoadingPointRepository creates a new loading point repository
func NewLoadingPointRepository(db *pgxpool.Pool) *LoadingPointRepository {
	return &LoadingPointRepository{DB: db}
}

const loadingPointColumns = `id, mill_id, name, latitude, longitude, radius_m, status, created_at, updated_at`

func (r *LoadingPointRepository) Create(ctx context.Context, lp *models.LoadingPoint) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO loading_points(mill_id, name, latitude, longitude, radius_m, status)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING id, created_at, updated_at`,
		lp.MillID, lp.Name, lp.Latitude, lp.Longitude, lp.RadiusM, lp.Status,
	).Scan(&lp.ID, &lp.CreatedAt, &lp.UpdatedAt)
	return mapWriteError(err, "loading point")
}

func (r *LoadingPointRepository) Get(ctx context.Context, id string) (*models.LoadingPoint, error) {
	lp, err := scanLoadingPoint(r.DB.QueryRow(ctx, `SELECT `+loadingPointColumns+` FROM loading_points WHERE id=$1`, id))
	return lp, mapReadError(err, "loading point", id)
}

// List returns loading points, optionally only those of one mill
func (r *LoadingPointRepository) List(ctx context.Context, millID string) ([]*models.LoadingPoint, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+loadingPointColumns+` FROM loading_points
         WHERE ($1 = '' OR mill_id = $1)
         ORDER BY name`, millID)
	if err != nil {
		return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to list loading points", err)
	}
	defer rows.Close()

	points := []*models.LoadingPoint{}
	for rows.Next() {
		lp, err := scanLoadingPoint(rows)
		if err != nil {
			return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to scan loading point", err)
		}
		points = append(points, lp)
	}
	return points, rows.Err()
}

func (r *LoadingPointRepository) Update(ctx context.Context, lp *models.LoadingPoint) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE loading_points SET mill_id=$2, name=$3, latitude=$4, longitude=$5, radius_m=$6, status=$7, updated_at=NOW()
         WHERE id=$1
         RETURNING created_at, updated_at`,
		lp.ID, lp.MillID, lp.Name, lp.Latitude, lp.Longitude, lp.RadiusM, lp.Status,
	).Scan(&lp.CreatedAt, &lp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.NotFoundError("loading point", lp.ID)
	}
	return mapWriteError(err, "loading point")
}

func (r *LoadingPointRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM loading_points WHERE id=$1`, id)
	if err != nil {
		return utils.Wrap(utils.ErrCodeDatabase, "failed to delete loading point", err)
	}
	if tag.RowsAffected() == 0 {
		return utils.NotFoundError("loading point", id)
	}
	return nil
}

func scanLoadingPoint(row pgx.Row) (*models.LoadingPoint, error) {
	var lp models.LoadingPoint
	err := row.Scan(&lp.ID, &lp.MillID, &lp.Name, &lp.Latitude, &lp.Longitude, &lp.RadiusM,
		&lp.Status, &lp.CreatedAt, &lp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &lp, nil
}
