package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"labcare/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	bookingsSheet = "Bookings"
	reportSheet   = "Report"
)

// BookingColumns is the header row of a bookings sheet.
var BookingColumns = []string{
	"Booking ID", "Full Name", "Contact Number", "Email", "Test Type", "Price (LKR)",
	"Preferred Date", "Preferred Time", "Collection Method", "Address", "Notes", "Status", "Created At",
}

// Exporter renders bookings and reports as XLSX workbooks.
type Exporter struct {
	dir    string
	logger *zerolog.Logger
	now    func() time.Time
}

func NewExporter(dir string, logger *zerolog.Logger) *Exporter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Exporter{dir: dir, logger: logger, now: time.Now}
}

// WriteBookings writes a bookings workbook to w.
func (e *Exporter) WriteBookings(w io.Writer, bookings []models.Booking) error {
	f, err := bookingsWorkbook(bookings)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// SaveBookings stores a bookings workbook in the exports directory and
// returns its path.
func (e *Exporter) SaveBookings(bookings []models.Booking) (string, error) {
	// Создаем папку для экспорта, если не существует
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := bookingsWorkbook(bookings)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("bookings_%s.xlsx", e.now().Format("20060102_150405"))
	filePath := filepath.Join(e.dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("rows", len(bookings)).Msg("Bookings exported")
	return filePath, nil
}

// WriteReport writes a one-report workbook to w.
func (e *Exporter) WriteReport(w io.Writer, report models.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reportSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetCellValue(reportSheet, "A1", "LabCare Diagnostics - Test Report")
	_ = f.MergeCell(reportSheet, "A1", "B1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(reportSheet, "A1", "A1", titleStyle)

	rows := [][]interface{}{
		{"Report ID", report.ID},
		{"Test Type", report.TestType},
		{"Date", report.Date},
		{"Status", report.Status},
		{"Price (LKR)", report.Price},
	}
	labelStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return fmt.Errorf("error writing row: %w", err)
		}
		_ = f.SetCellStyle(reportSheet, cell, cell, labelStyle)
	}
	_ = f.SetColWidth(reportSheet, "A", "A", 18)
	_ = f.SetColWidth(reportSheet, "B", "B", 32)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func bookingsWorkbook(bookings []models.Booking) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	header := make([]interface{}, len(BookingColumns))
	for i, c := range BookingColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(bookingsSheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	lastCol, _ := excelize.ColumnNumberToName(len(BookingColumns))
	_ = f.SetCellStyle(bookingsSheet, "A1", lastCol+"1", headerStyle)

	for i, b := range bookings {
		row := BookingRow(b)
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(bookingsSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("error writing booking %s: %w", b.ID, err)
		}
	}

	_ = f.SetColWidth(bookingsSheet, "A", lastCol, 20)
	return f, nil
}

// BookingRow is the column layout shared by the workbook and the sheets sync.
func BookingRow(b models.Booking) []interface{} {
	created := ""
	if !b.CreatedAt.IsZero() {
		created = b.CreatedAt.Format(time.RFC3339)
	}
	return []interface{}{
		b.ID, b.FullName, b.ContactNumber, b.Email, b.TestType, b.Price,
		b.PreferredDate, b.PreferredTime, b.CollectionMethod, b.Address, b.Notes, b.Status, created,
	}
}
