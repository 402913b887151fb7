package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cane-backend/internal/models"
	"cane-backend/internal/timeutil"
	"cane-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EntryRepository is the PostgreSQL EntryStore. Snapshots are stored as JSONB.
type EntryRepository struct {
	DB *pgxpool.Pool
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{DB: db}
}

const entryColumns = `id, vehicle_number, registration_number, permit_number, vehicle_type, driver_name,
       mill_id, loading_point_id, device_id, registration_details, arrival_details, status,
       created_by, decided_by, decision_remarks, arrival_attached_at, decided_at, created_at, updated_at`

func (r *EntryRepository) Create(ctx context.Context, entry *models.Entry) error {
	registration, err := json.Marshal(entry.Registration)
	if err != nil {
		return utils.Wrap(utils.ErrCodeInternal, "failed to encode registration", err)
	}

	now := timeutil.Now()
	entry.ID = uuid.NewString()
	entry.Status = models.StatusPending
	entry.Arrival = nil
	entry.ArrivalAttachedAt = nil
	entry.DecidedAt = nil
	entry.DecidedBy = ""
	entry.DecisionRemarks = ""

	query := `
		INSERT INTO entries (id, vehicle_number, registration_number, permit_number, vehicle_type, driver_name,
		                     mill_id, loading_point_id, device_id, registration_details, status, created_by,
		                     created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING created_at, updated_at
	`
	err = r.DB.QueryRow(ctx, query,
		entry.ID,
		entry.VehicleNumber,
		entry.RegistrationNumber,
		entry.PermitNumber,
		entry.VehicleType,
		entry.DriverName,
		entry.MillID,
		entry.LoadingPointID,
		entry.DeviceID,
		registration,
		string(entry.Status),
		entry.CreatedBy,
		now,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	return mapWriteError(err, "entry")
}

func (r *EntryRepository) AttachArrival(ctx context.Context, id string, arrival models.ArrivalDetails, at time.Time) (*models.Entry, error) {
	payload, err := json.Marshal(arrival)
	if err != nil {
		return nil, utils.Wrap(utils.ErrCodeInternal, "failed to encode arrival", err)
	}

	query := `
		UPDATE entries
		SET arrival_details = $2,
		    arrival_attached_at = $3,
		    updated_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + entryColumns
	entry, err := scanEntry(r.DB.QueryRow(ctx, query, id, payload, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.explainMiss(ctx, id, "arrival update")
	}
	if err != nil {
		return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to attach arrival", err)
	}
	return entry, nil
}

// SetStatus moves a pending entry to its final status in a single conditional
// UPDATE, so two reviewers racing on the same entry cannot both succeed.
func (r *EntryRepository) SetStatus(ctx context.Context, id string, decision models.Decision) (*models.Entry, error) {
	if !models.StatusPending.CanTransitionTo(decision.Status) {
		current, err := r.currentStatus(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, utils.InvalidTransitionError(id, string(current), string(decision.Status))
	}

	query := `
		UPDATE entries
		SET status = $2,
		    decided_by = $3,
		    decision_remarks = $4,
		    decided_at = $5,
		    updated_at = $5
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + entryColumns
	entry, err := scanEntry(r.DB.QueryRow(ctx, query,
		id, string(decision.Status), decision.DecidedBy, decision.Remarks, decision.DecidedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.explainMiss(ctx, id, string(decision.Status))
	}
	if err != nil {
		return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to update entry status", err)
	}
	return entry, nil
}

func (r *EntryRepository) Get(ctx context.Context, id string) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`
	entry, err := scanEntry(r.DB.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, utils.NotFoundError("entry", id)
	}
	if err != nil {
		return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to get entry", err)
	}
	return entry, nil
}

func (r *EntryRepository) List(ctx context.Context, filter models.EntryFilter) ([]*models.Entry, error) {
	where, args := entryWhere(filter, true)
	args = append(args, normalizeLimit(filter.Limit), max(filter.Offset, 0))

	query := fmt.Sprintf(`SELECT %s FROM entries %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		entryColumns, where, len(args)-1, len(args))

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to list entries", err)
	}
	defer rows.Close()

	entries := []*models.Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to scan entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to list entries", err)
	}
	return entries, nil
}

func (r *EntryRepository) Stats(ctx context.Context, filter models.EntryFilter) (*models.EntryStats, error) {
	where, args := entryWhere(filter, false)
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'approved') AS approved,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected
		FROM entries ` + where

	var stats models.EntryStats
	err := r.DB.QueryRow(ctx, query, args...).Scan(&stats.Total, &stats.Pending, &stats.Approved, &stats.Rejected)
	if err != nil {
		return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to count entries", err)
	}
	return &stats, nil
}

func (r *EntryRepository) AppendEvent(ctx context.Context, event *models.EntryEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = timeutil.Now()
	}
	err := r.DB.QueryRow(ctx,
		`INSERT INTO entry_events(entry_id, event_type, status, mill_id, notes, actor_id, created_at)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING id`,
		event.EntryID, event.EventType, string(event.Status), event.MillID, event.Notes, event.ActorID, event.CreatedAt,
	).Scan(&event.ID)
	if err != nil {
		return utils.Wrap(utils.ErrCodeDatabase, "failed to record entry event", err)
	}
	return nil
}

func (r *EntryRepository) ListEvents(ctx context.Context, entryID string) ([]*models.EntryEvent, error) {
	if _, err := r.currentStatus(ctx, entryID); err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, entry_id, event_type, status, mill_id, notes, actor_id, created_at
         FROM entry_events WHERE entry_id=$1 ORDER BY created_at ASC, id ASC`, entryID)
	if err != nil {
		return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to list entry events", err)
	}
	defer rows.Close()

	events := []*models.EntryEvent{}
	for rows.Next() {
		var event models.EntryEvent
		var status string
		err := rows.Scan(&event.ID, &event.EntryID, &event.EventType, &status,
			&event.MillID, &event.Notes, &event.ActorID, &event.CreatedAt)
		if err != nil {
			return nil, utils.Wrap(utils.ErrCodeDatabase, "failed to scan entry event", err)
		}
		event.Status = models.EntryStatus(status)
		events = append(events, &event)
	}
	return events, rows.Err()
}

func (r *EntryRepository) currentStatus(ctx context.Context, id string) (models.EntryStatus, error) {
	var status string
	err := r.DB.QueryRow(ctx, `SELECT status FROM entries WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", utils.NotFoundError("entry", id)
	}
	if err != nil {
		return "", utils.Wrap(utils.ErrCodeDatabase, "failed to read entry status", err)
	}
	return models.EntryStatus(status), nil
}

// explainMiss tells apart a missing entry from a finalized one after a
// conditional UPDATE matched no rows
func (r *EntryRepository) explainMiss(ctx context.Context, id, attempted string) error {
	current, err := r.currentStatus(ctx, id)
	if err != nil {
		return err
	}
	return utils.InvalidTransitionError(id, string(current), attempted)
}

func entryWhere(filter models.EntryFilter, withStatus bool) (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(cond string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.MillID != "" {
		add("mill_id = $%d", filter.MillID)
	}
	if filter.LoadingPointID != "" {
		add("loading_point_id = $%d", filter.LoadingPointID)
	}
	if withStatus && filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.VehicleNumber != "" {
		add("UPPER(vehicle_number) = UPPER($%d)", filter.VehicleNumber)
	}
	if filter.DeviceID != "" {
		add("device_id = $%d", filter.DeviceID)
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func scanEntry(row pgx.Row) (*models.Entry, error) {
	var entry models.Entry
	var status string
	var registration, arrival []byte

	err := row.Scan(
		&entry.ID, &entry.VehicleNumber, &entry.RegistrationNumber, &entry.PermitNumber,
		&entry.VehicleType, &entry.DriverName,
		&entry.MillID, &entry.LoadingPointID, &entry.DeviceID,
		&registration, &arrival, &status,
		&entry.CreatedBy, &entry.DecidedBy, &entry.DecisionRemarks,
		&entry.ArrivalAttachedAt, &entry.DecidedAt, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Status = models.EntryStatus(status)
	if err := json.Unmarshal(registration, &entry.Registration); err != nil {
		return nil, fmt.Errorf("decode registration_details: %w", err)
	}
	if len(arrival) > 0 {
		var a models.ArrivalDetails
		if err := json.Unmarshal(arrival, &a); err != nil {
			return nil, fmt.Errorf("decode arrival_details: %w", err)
		}
		entry.Arrival = &a
	}
	return &entry, nil
}
