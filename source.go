package tablestate

import (
	"context"
	"fmt"
)

// Source loads a record dataset from a spreadsheet backend.
// Fetching is the host's job; a Source is what the host fetches from.
type Source interface {
	// Load retrieves all records and the schema (header row) of the sheet
	Load(ctx context.Context) ([]*Record, []string, error)
}

// Exporter writes a record dataset to a spreadsheet backend
type Exporter interface {
	// Save replaces all data in the sheet with the provided records
	Save(ctx context.Context, records []*Record, schema []string) error
}

// ExportRows writes rows restricted to the given columns, renumbering keys so
// that the sheet mirrors the order of rows (row 1 holds the header).
func ExportRows(ctx context.Context, exporter Exporter, rows []*Record, columns []Column[*Record]) error {
	schema := make([]string, 0, len(columns))
	for _, col := range columns {
		if col.Accessor == nil {
			continue
		}
		schema = append(schema, col.ID)
	}

	records := make([]*Record, len(rows))
	for i, row := range rows {
		out := &Record{Key: i + 2, Values: make(map[string]any, len(schema))}
		for _, col := range columns {
			if col.Accessor == nil {
				continue
			}
			if v := col.Accessor(row); v != nil {
				out.Values[col.ID] = v
			}
		}
		records[i] = out
	}

	if err := exporter.Save(ctx, records, schema); err != nil {
		return fmt.Errorf("failed to export rows: %w", err)
	}
	return nil
}
