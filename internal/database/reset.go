package database

import (
	"context"
	"fmt"

	"cane-backend/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

// workflowTables are cleared by ResetWorkflowData, children first
var workflowTables = []string{"entry_events", "entries"}

// ResetWorkflowData deletes every entry and its history in one transaction.
// Users and reference records are kept. Meant for training and test databases.
func ResetWorkflowData(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range workflowTables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
		utils.GetLogger().WithField("table", table).Info("cleared")
	}

	return tx.Commit(ctx)
}
