package services

import (
	"bytes"
	"context"
	"fmt"

	"cane-backend/internal/auth"
	"cane-backend/internal/models"
	"cane-backend/internal/timeutil"
	"cane-backend/pkg/utils"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/xuri/excelize/v2"
)

const (
	entriesSheet   = "Entries"
	exportPageSize = 200
)

var entryColumnsHeader = []string{
	"Entry ID", "Vehicle Number", "Registration Number", "Permit Number", "Vehicle Type",
	"Driver Name", "Mill", "Loading Point", "Registered At", "Arrival Time", "Arrival Location",
	"Status", "Decided By", "Decided At", "Remarks",
}

// ReportService renders entries for download
type ReportService struct {
	Entries *EntryService
}

// NewReportService creates a new report service
func NewReportService(entries *EntryService) *ReportService {
	return &ReportService{Entries: entries}
}

// EntriesXLSX exports the entries visible to session, one row per entry
func (s *ReportService) EntriesXLSX(ctx context.Context, session auth.Session, filter models.EntryFilter) ([]byte, error) {
	if err := session.Require(auth.CapExportReports); err != nil {
		return nil, err
	}
	entries, err := s.listAll(ctx, session, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", entriesSheet); err != nil {
		return nil, utils.Wrap(utils.ErrCodeInternal, "failed to build spreadsheet", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, h := range entryColumnsHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(entriesSheet, cell, h)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(entryColumnsHeader), 1)
	f.SetCellStyle(entriesSheet, "A1", lastHeader, headerStyle)

	for r, e := range entries {
		for c, v := range entryRow(e) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(entriesSheet, cell, v)
		}
	}
	f.SetColWidth(entriesSheet, "A", "A", 38)
	f.SetColWidth(entriesSheet, "B", "O", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, utils.Wrap(utils.ErrCodeInternal, "failed to write spreadsheet", err)
	}
	return buf.Bytes(), nil
}

// listAll pages through the entry list so exports are never cut at the
// store's page limit. A caller-set Limit still caps the total.
func (s *ReportService) listAll(ctx context.Context, session auth.Session, filter models.EntryFilter) ([]*models.Entry, error) {
	total := filter.Limit
	var all []*models.Entry
	for {
		page := filter
		page.Limit = exportPageSize
		if total > 0 && total-len(all) < exportPageSize {
			page.Limit = total - len(all)
		}
		page.Offset = filter.Offset + len(all)

		batch, err := s.Entries.List(ctx, session, page)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < page.Limit || (total > 0 && len(all) >= total) {
			return all, nil
		}
	}
}

func entryRow(e *models.Entry) []string {
	var arrivalTime, arrivalLocation, decidedAt string
	if e.Arrival != nil {
		arrivalTime = e.Arrival.ArrivalTime
		arrivalLocation = e.Arrival.ArrivalLocation
	}
	if e.DecidedAt != nil {
		decidedAt = timeutil.Format(*e.DecidedAt, timeutil.DisplayLayout)
	}
	return []string{
		e.ID, e.VehicleNumber, e.RegistrationNumber, e.PermitNumber, e.VehicleType,
		e.DriverName, e.MillID, e.LoadingPointID, timeutil.Format(e.CreatedAt, timeutil.DisplayLayout), arrivalTime, arrivalLocation,
		string(e.Status), e.DecidedBy, decidedAt, e.DecisionRemarks,
	}
}

// EntrySlipPDF renders the verification slip of one entry: both snapshots side by side
func (s *ReportService) EntrySlipPDF(ctx context.Context, session auth.Session, id string) ([]byte, error) {
	entry, err := s.Entries.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}
	cmp := Compare(entry)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Sugar Cane Loading - Verification Slip", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Format(timeutil.Now(), timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Entry", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, "ID: "+entry.ID, "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, "Status: "+string(entry.Status), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, "Registered: "+timeutil.Format(entry.CreatedAt, timeutil.DisplayLayout), "LB", 0, "L", false, 0, "")
	decided := ""
	if entry.DecidedAt != nil {
		decided = timeutil.Format(*entry.DecidedAt, timeutil.DisplayLayout)
	}
	pdf.CellFormat(95, 7, "Decided: "+decided, "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(60, 7, "Field", "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 7, "Registration", "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 7, "Arrival", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Match", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, f := range cmp.Fields {
		match := "-"
		if f.Match != nil {
			match = "NO"
			if *f.Match {
				match = "YES"
			}
		}
		pdf.CellFormat(60, 6, f.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 6, truncate(f.Registration, 30), "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 6, truncate(f.Arrival, 30), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, match, "1", 1, "C", false, 0, "")
	}

	if entry.DecisionRemarks != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(190, 6, "Remarks", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 5, entry.DecisionRemarks, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, utils.Wrap(utils.ErrCodeInternal, "failed to render slip", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
