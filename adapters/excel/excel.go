package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	tablestate "github.com/ideamans/go-tablestate"
	"github.com/xuri/excelize/v2"
)

// Adapter reads table data from, and exports table views to, one sheet of
// an Excel workbook. It implements tablestate.Source and tablestate.Exporter.
type Adapter struct {
	config *Config
	mu     sync.RWMutex
}

var (
	_ tablestate.Source   = (*Adapter)(nil)
	_ tablestate.Exporter = (*Adapter)(nil)
)

// New creates a new Excel adapter with the given configuration
func New(config *Config) (*Adapter, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create a copy of config to avoid external modifications
	configCopy := *config

	return &Adapter{
		config: &configCopy,
	}, nil
}

// Load retrieves all records and schema from the Excel file.
// A missing file or sheet is an empty dataset, not an error.
func (a *Adapter) Load(ctx context.Context) ([]*tablestate.Record, []string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	f, err := excelize.OpenFile(a.config.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*tablestate.Record{}, []string{}, nil
		}
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetIndex, err := f.GetSheetIndex(a.config.SheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get sheet index: %w", err)
	}
	if sheetIndex == -1 {
		return []*tablestate.Record{}, []string{}, nil
	}

	rows, err := f.GetRows(a.config.SheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) == 0 {
		return []*tablestate.Record{}, []string{}, nil
	}

	// First row is the schema
	schema := make([]string, len(rows[0]))
	copy(schema, rows[0])

	records := make([]*tablestate.Record, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}

		record := &tablestate.Record{
			Key:    i + 1, // Row number (1-based, but data starts from row 2)
			Values: make(map[string]any),
		}
		for j, value := range row {
			if j < len(schema) && schema[j] != "" && value != "" {
				record.Values[schema[j]] = convertCellValue(value)
			}
		}
		records = append(records, record)
	}

	return records, compactSchema(schema), nil
}

// Save replaces the sheet contents with a header row and the records in the
// given order, creating the file and sheet when needed.
func (a *Adapter) Save(ctx context.Context, records []*tablestate.Record, schema []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(a.config.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var f *excelize.File
	if _, err := os.Stat(a.config.FilePath); err == nil {
		f, err = excelize.OpenFile(a.config.FilePath)
		if err != nil {
			return fmt.Errorf("failed to open Excel file: %w", err)
		}
	} else {
		f = excelize.NewFile()
	}
	defer f.Close()

	if err := a.prepareSheet(f); err != nil {
		return err
	}

	headerValues := make([]any, len(schema))
	for i, col := range schema {
		headerValues[i] = col
	}
	if err := f.SetSheetRow(a.config.SheetName, "A1", &headerValues); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, record := range records {
		rowValues := make([]any, len(schema))
		for j, col := range schema {
			if val, ok := record.Values[col]; ok {
				rowValues[j] = val
			} else {
				rowValues[j] = ""
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(a.config.SheetName, cell, &rowValues); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(a.config.FilePath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

// prepareSheet makes sure the target sheet exists and is empty
func (a *Adapter) prepareSheet(f *excelize.File) error {
	sheet := a.config.SheetName

	sheetIndex, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("failed to get sheet index: %w", err)
	}

	if sheetIndex == -1 {
		index, err := f.NewSheet(sheet)
		if err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
		f.SetActiveSheet(index)

		// A new workbook carries a default sheet we do not want
		if defaultSheet := f.GetSheetName(0); defaultSheet != sheet && len(f.GetSheetList()) > 1 {
			_ = f.DeleteSheet(defaultSheet)
		}
		return nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet: %w", err)
	}
	for r := len(rows); r >= 1; r-- {
		if err := f.RemoveRow(sheet, r); err != nil {
			return fmt.Errorf("failed to clear row %d: %w", r, err)
		}
	}
	return nil
}

// convertCellValue converts the text of a cell to a typed value
func convertCellValue(value string) any {
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		if i := int64(f); float64(i) == f {
			return i
		}
		return f
	}
	switch value {
	case "true", "TRUE":
		return true
	case "false", "FALSE":
		return false
	}
	return value
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// compactSchema drops trailing empty header cells
func compactSchema(schema []string) []string {
	end := len(schema)
	for end > 0 && schema[end-1] == "" {
		end--
	}
	return schema[:end]
}
