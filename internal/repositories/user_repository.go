package repositories

import (
	"context"
	"errors"
	"time"

	"cane-backend/internal/models"
	"cane-backend/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository stores users in PostgreSQL
type UserRepository struct {
	DB *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, name, email, phone, cnic, address, password_hash, role, mill_id, is_active, last_login, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO users(name, email, phone, cnic, address, password_hash, role, mill_id, is_active)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING id, created_at, updated_at`,
		u.Name, u.Email, u.Phone, u.CNIC, u.Address, u.PasswordHash, u.Role, u.MillID, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapWriteError(err, "user")
}

func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	return user, mapReadError(err, "user", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email)=LOWER($1)`, email))
	return user, mapReadError(err, "user", email)
}

// List returns all users, newest first
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to list users", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to scan user", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE users SET name=$2, email=$3, phone=$4, cnic=$5, address=$6, password_hash=$7,
                          role=$8, mill_id=$9, is_active=$10, updated_at=NOW()
         WHERE id=$1
         RETURNING updated_at`,
		u.ID, u.Name, u.Email, u.Phone, u.CNIC, u.Address, u.PasswordHash, u.Role, u.MillID, u.IsActive,
	).Scan(&u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.NotFoundError("user", u.ID)
	}
	return mapWriteError(err, "user")
}

// TouchLastLogin records a successful login time
func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.DB.Exec(ctx, `UPDATE users SET last_login=$2 WHERE id=$1`, id, at)
	return err
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return utils.Wrap(utils.ErrCodeDatabase, "failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return utils.NotFoundError("user", id)
	}
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.CNIC, &user.Address,
		&user.PasswordHash, &user.Role, &user.MillID, &user.IsActive, &user.LastLogin,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func mapReadError(err error, kind, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.NotFoundError(kind, id)
	}
	return utils.Wrap(utils.ErrCodeDatabase, "failed to read "+kind, err)
}

// mapWriteError turns unique, foreign key and length violations into caller errors
func mapWriteError(err error, kind string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return utils.NewAppError(utils.ErrCodeConflict, kind+" already exists", pgErr.ConstraintName)
		case "23503":
			return utils.ValidationError(map[string]string{"reference": pgErr.ConstraintName + ": referenced record does not exist"})
		case "22001":
			return utils.ValidationError(map[string]string{valueField(pgErr): "value is too long"})
		}
	}
	return utils.Wrap(utils.ErrCodeDatabase, "failed to save "+kind, err)
}

// valueField names the offending column when Postgres reports it, "value" otherwise
func valueField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	return "value"
}
