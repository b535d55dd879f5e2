package googlesheets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tablestate "github.com/ideamans/go-tablestate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsAdaptor reads table data from, and exports table views to, one
// sheet of a Google spreadsheet
type SheetsAdaptor struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

var (
	_ tablestate.Source   = (*SheetsAdaptor)(nil)
	_ tablestate.Exporter = (*SheetsAdaptor)(nil)
)

// NewSheetsAdaptor creates a new Google Sheets adaptor with provided options
func NewSheetsAdaptor(ctx context.Context, config Config, opts ...option.ClientOption) (*SheetsAdaptor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsAdaptor{
		service:       service,
		spreadsheetID: config.SpreadsheetID,
		sheetName:     config.SheetName,
	}, nil
}

// Load retrieves all records and schema from the spreadsheet
func (a *SheetsAdaptor) Load(ctx context.Context) ([]*tablestate.Record, []string, error) {
	readRange := fmt.Sprintf("%s!A:ZZ", a.sheetName)
	resp, err := a.service.Spreadsheets.Values.Get(a.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get sheet data: %w", err)
	}

	if len(resp.Values) == 0 {
		return []*tablestate.Record{}, []string{}, nil
	}

	// First row is schema. Positions are kept so that cells line up even
	// when a header cell is blank.
	header := make([]string, len(resp.Values[0]))
	schema := make([]string, 0, len(header))
	for i, cell := range resp.Values[0] {
		if col, ok := cell.(string); ok && col != "" {
			header[i] = col
			schema = append(schema, col)
		}
	}

	records := make([]*tablestate.Record, 0, len(resp.Values)-1)
	for i := 1; i < len(resp.Values); i++ {
		row := resp.Values[i]
		if isBlankRow(row) {
			continue
		}

		record := &tablestate.Record{
			Key:    i + 1, // Row number (1-based, but data starts at row 2)
			Values: make(map[string]any),
		}
		for j := 0; j < len(row) && j < len(header); j++ {
			if header[j] == "" || row[j] == nil || row[j] == "" {
				continue
			}
			record.Values[header[j]] = convertCellValue(row[j])
		}
		records = append(records, record)
	}

	return records, schema, nil
}

// Save replaces all data in the spreadsheet with a header row and the
// records in the given order
func (a *SheetsAdaptor) Save(ctx context.Context, records []*tablestate.Record, schema []string) error {
	values := make([][]any, 0, len(records)+1)

	header := make([]any, len(schema))
	for i, col := range schema {
		header[i] = col
	}
	values = append(values, header)

	for _, record := range records {
		row := make([]any, len(schema))
		for i, col := range schema {
			if val, ok := record.Values[col]; ok {
				row[i] = convertToSheetValue(val)
			} else {
				row[i] = ""
			}
		}
		values = append(values, row)
	}

	// Clear the entire sheet first
	clearRange := fmt.Sprintf("%s!A:ZZ", a.sheetName)
	_, err := a.service.Spreadsheets.Values.Clear(a.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}

	writeRange := fmt.Sprintf("%s!A1", a.sheetName)
	vr := &sheets.ValueRange{
		Values: values,
	}
	_, err = a.service.Spreadsheets.Values.Update(a.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update sheet: %w", err)
	}

	return nil
}

// convertCellValue converts a Google Sheets cell value to Go type
func convertCellValue(v any) any {
	switch val := v.(type) {
	case string:
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
		if val == "true" || val == "TRUE" {
			return true
		}
		if val == "false" || val == "FALSE" {
			return false
		}
		return val
	case float64:
		// Check if it's actually an integer
		if val == float64(int64(val)) {
			return int64(val)
		}
		return val
	case bool:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// convertToSheetValue converts a Go value to Google Sheets cell value
func convertToSheetValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return fmt.Sprintf("%g", val)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func isBlankRow(row []any) bool {
	for _, cell := range row {
		if cell != nil && cell != "" {
			return false
		}
	}
	return true
}
