package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"labcare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleBookings() []models.Booking {
	return []models.Booking{
		{
			ID: "LBC-1", FullName: "Kamal", Email: "kamal@example.com", TestType: models.TestCBC, Price: 1500,
			PreferredDate: "2026-03-01", PreferredTime: "09:00", CollectionMethod: models.CollectionWalkIn,
			Status: models.StatusScheduled, CreatedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			ID: "LBC-2", FullName: "Sunil", TestType: models.TestCovidPCR, Price: 5000,
			PreferredDate: "2026-03-02", PreferredTime: "10:30", CollectionMethod: models.CollectionHome,
			Address: "12 Galle Rd", Status: models.StatusScheduled,
		},
	}
}

func TestWriteBookings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter(t.TempDir(), nil).WriteBookings(&buf, sampleBookings()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(bookingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Booking ID", rows[0][0])
	assert.Equal(t, "LBC-1", rows[1][0])
	assert.Equal(t, "1500", rows[1][5])
	assert.Equal(t, "2026-02-01T08:00:00Z", rows[1][12])
	assert.Equal(t, "12 Galle Rd", rows[2][9])
}

func TestSaveBookings(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	e := NewExporter(dir, nil)
	e.now = func() time.Time { return time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC) }

	path, err := e.SaveBookings(sampleBookings())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bookings_20260301_123000.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{bookingsSheet}, f.GetSheetList())
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	report := models.ExampleReports()[0]
	require.NoError(t, NewExporter("", nil).WriteReport(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	id, err := f.GetCellValue(reportSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, report.ID, id)

	price, err := f.GetCellValue(reportSheet, "B7")
	require.NoError(t, err)
	assert.Equal(t, "1500", price)
}

func TestBookingRow(t *testing.T) {
	row := BookingRow(models.Booking{ID: "LBC-9"})
	assert.Len(t, row, len(BookingColumns))
	assert.Equal(t, "", row[12])
}
