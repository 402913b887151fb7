package services

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"cane-backend/internal/models"
	"cane-backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seedEntries(t *testing.T, store *repositories.MemoryEntryStore, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		vehicle := fmt.Sprintf("MH-01-AB-%04d", i)
		require.NoError(t, store.Create(context.Background(), &models.Entry{
			VehicleNumber: vehicle,
			MillID:        "mill-1",
			Registration:  models.RegistrationDetails{VehicleNumber: vehicle},
		}))
	}
}

func TestReport_ExportIncludesEveryEntry(t *testing.T) {
	store := repositories.NewMemoryEntryStore()
	seedEntries(t, store, 2*exportPageSize+37)
	reports := NewReportService(NewEntryService(store, nil))

	data, err := reports.EntriesXLSX(context.Background(), adminSession, models.EntryFilter{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(entriesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1+2*exportPageSize+37, "header plus one row per entry")
	assert.Equal(t, entryColumnsHeader, rows[0])
}

func TestReport_ListAllHonoursLimitAndOffset(t *testing.T) {
	store := repositories.NewMemoryEntryStore()
	seedEntries(t, store, exportPageSize+10)
	reports := NewReportService(NewEntryService(store, nil))
	ctx := context.Background()

	capped, err := reports.listAll(ctx, adminSession, models.EntryFilter{Limit: exportPageSize + 5})
	require.NoError(t, err)
	assert.Len(t, capped, exportPageSize+5)

	tail, err := reports.listAll(ctx, adminSession, models.EntryFilter{Offset: exportPageSize})
	require.NoError(t, err)
	assert.Len(t, tail, 10)

	// exactly one full page stops after an empty follow-up
	exact := repositories.NewMemoryEntryStore()
	seedEntries(t, exact, exportPageSize)
	all, err := NewReportService(NewEntryService(exact, nil)).listAll(ctx, adminSession, models.EntryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, exportPageSize)
}

func TestReport_ExportNeedsCapability(t *testing.T) {
	reports := NewReportService(NewEntryService(repositories.NewMemoryEntryStore(), nil))
	_, err := reports.EntriesXLSX(context.Background(), transporterSession, models.EntryFilter{})
	assert.Error(t, err)
}
