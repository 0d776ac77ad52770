package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"labcare/internal/export"
	"labcare/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	bookingsSheet  = "Bookings"
	bookingsIDs    = bookingsSheet + "!A:A"
	bookingsHeader = bookingsSheet + "!A1"
)

var ErrRowNotFound = errors.New("booking row not found")

// SheetsService mirrors bookings into a Google spreadsheet.
type SheetsService struct {
	service         *sheets.Service
	bookingsSheetID string
	rowCache        map[string]int
	cacheMu         sync.RWMutex
}

func NewSheetsService(ctx context.Context, credentialsFile, bookingsSheetID string) (*SheetsService, error) {
	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return newWithService(srv, bookingsSheetID), nil
}

func newWithService(srv *sheets.Service, bookingsSheetID string) *SheetsService {
	return &SheetsService{
		service:         srv,
		bookingsSheetID: bookingsSheetID,
		rowCache:        make(map[string]int),
	}
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.bookingsSheetID, bookingsHeader).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// ServiceAccountEmail returns the address the spreadsheet must be shared with.
func ServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}
	return creds.ClientEmail, nil
}

// WriteHeader writes the column titles into the first row.
func (s *SheetsService) WriteHeader(ctx context.Context) error {
	header := make([]interface{}, len(export.BookingColumns))
	for i, c := range export.BookingColumns {
		header[i] = c
	}
	_, err := s.service.Spreadsheets.Values.Update(s.bookingsSheetID, bookingsHeader, &sheets.ValueRange{
		Values: [][]interface{}{header},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// AppendBooking добавляет новое бронирование
func (s *SheetsService) AppendBooking(ctx context.Context, booking models.Booking) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{export.BookingRow(booking)},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.bookingsSheetID, bookingsIDs, valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// UpsertBooking rewrites the booking's row, or appends one when the booking is
// not in the sheet yet. Retrying after a partial failure never duplicates a row.
func (s *SheetsService) UpsertBooking(ctx context.Context, booking models.Booking) error {
	if booking.ID == "" {
		return errors.New("booking id is required")
	}

	rowIdx, err := s.FindBookingRow(ctx, booking.ID)
	if err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return s.AppendBooking(ctx, booking)
		}
		return err
	}

	lastCol := columnName(len(export.BookingColumns))
	rangeData := fmt.Sprintf("%s!A%d:%s%d", bookingsSheet, rowIdx, lastCol, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.bookingsSheetID, rangeData, &sheets.ValueRange{
		Values: [][]interface{}{export.BookingRow(booking)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// FindBookingRow locates the 1-based row of a booking id in column A.
func (s *SheetsService) FindBookingRow(ctx context.Context, bookingID string) (int, error) {
	if row, ok := s.getCachedRow(bookingID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.bookingsSheetID, bookingsIDs).Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if v, ok := row[0].(string); ok && v == bookingID {
			rowIdx := i + 1 // Values are zero-based; sheet rows are 1-based
			s.setCachedRow(bookingID, rowIdx)
			return rowIdx, nil
		}
	}
	return 0, ErrRowNotFound
}

func (s *SheetsService) getCachedRow(id string) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id string, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
