package repositories

import (
	"context"
	"errors"

	"cane-backend/internal/models"
	"cane-backend/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MillRepository stores mills in PostgreSQL
type MillRepository struct {
	DB *pgxpool.Pool
}

// NewMillRepository creates a new mill repository
func NewMillRepository(db *pgxpool.Pool) *MillRepository {
	return &MillRepository{DB: db}
}

const millColumns = `id, mill_code, mill_name, focal_person, cnic, phone, email, address, status, created_at, updated_at`

func (r *MillRepository) Create(ctx context.Context, m *models.Mill) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO mills(mill_code, mill_name, focal_person, cnic, phone, email, address, status)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at, updated_at`,
		m.MillCode, m.MillName, m.FocalPerson, m.CNIC, m.Phone, m.Email, m.Address, m.Status,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return mapWriteError(err, "mill")
}

func (r *MillRepository) Get(ctx context.Context, id string) (*models.Mill, error) {
	m, err := scanMill(r.DB.QueryRow(ctx, `SELECT `+millColumns+` FROM mills WHERE id=$1`, id))
	return m, mapReadError(err, "mill", id)
}

func (r *MillRepository) List(ctx context.Context) ([]*models.Mill, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+millColumns+` FROM mills ORDER BY mill_name`)
	if err != nil {
		return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to list mills", err)
	}
	defer rows.Close()

	mills := []*models.Mill{}
	for rows.Next() {
		m, err := scanMill(rows)
		if err != nil {
			return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to scan mill", err)
		}
		mills = append(mills, m)
	}
	return mills, rows.Err()
}

func (r *MillRepository) Update(ctx context.Context, m *models.Mill) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE mills SET mill_code=$2, mill_name=$3, focal_person=$4, cnic=$5, phone=$6, email=$7,
                          address=$8, status=$9, updated_at=NOW()
         WHERE id=$1
         RETURNING created_at, updated_at`,
		m.ID, m.MillCode, m.MillName, m.FocalPerson, m.CNIC, m.Phone, m.Email, m.Address, m.Status,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.NotFoundError("mill", m.ID)
	}
	return mapWriteError(err, "mill")
}

func (r *MillRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM mills WHERE id=$1`, id)
	if err != nil {
		return utils.Wrap(utils.ErrCodeDatabase, "failed to delete mill", err)
	}
	if tag.RowsAffected() == 0 {
		return utils.NotFoundError("mill", id)
	}
	return nil
}

func scanMill(row pgx.Row) (*models.Mill, error) {
	var m models.Mill
	err := row.Scan(&m.ID, &m.MillCode, &m.MillName, &m.FocalPerson, &m.CNIC, &m.Phone,
		&m.Email, &m.Address, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
