package main

import (
	"context"
	"fmt"
	"log"

	tablestate "github.com/ideamans/go-tablestate"
	"github.com/ideamans/go-tablestate/adapters/excel"
)

func main() {
	ctx := context.Background()

	// Excel adapter configuration
	source, err := excel.New(&excel.Config{
		FilePath:  "./example_data.xlsx",
		SheetName: "transactions",
	})
	if err != nil {
		log.Fatalf("Failed to create Excel adapter: %v", err)
	}

	// Seed the workbook with a few transactions
	seed := []*tablestate.Record{
		{Key: 2, Values: map[string]any{"id": "tx-1", "merchant": "Acme", "amount": int64(1200), "status": "settled", "created": "2024-03-01"}},
		{Key: 3, Values: map[string]any{"id": "tx-2", "merchant": "Globex", "amount": int64(80), "status": "pending", "created": "2024-03-04"}},
		{Key: 4, Values: map[string]any{"id": "tx-3", "merchant": "Acme", "amount": int64(310), "status": "failed", "created": "2024-02-27"}},
		{Key: 5, Values: map[string]any{"id": "tx-4", "merchant": "Initech", "amount": int64(45), "status": "settled", "created": "2024-03-02"}},
	}
	if err := source.Save(ctx, seed, []string{"id", "merchant", "amount", "status", "created"}); err != nil {
		log.Fatalf("Failed to write workbook: %v", err)
	}

	var table *tablestate.Table[*tablestate.Record]
	refresher := tablestate.NewRefresher(source, excel.DefaultRefreshConfig(), func(result tablestate.LoadResult[*tablestate.Record], schema []string) {
		if table == nil {
			ctrl, err := tablestate.NewController(tablestate.RecordColumns(schema), tablestate.Options[*tablestate.Record]{
				RowID: tablestate.RecordFieldID("id"),
			})
			if err != nil {
				log.Fatalf("Failed to create controller: %v", err)
			}
			table = tablestate.NewTable(ctrl, tablestate.TableOptions[*tablestate.Record]{})
		}
		if err := table.SetResult(result); err != nil {
			log.Printf("Rejected dataset: %v", err)
		}
	})
	if err := refresher.Load(ctx); err != nil {
		log.Fatalf("Failed to load workbook: %v", err)
	}

	// Newest Acme transactions first
	if err := table.Search("acme"); err != nil {
		log.Fatal(err)
	}
	if err := table.ToggleSort("created", false); err != nil {
		log.Fatal(err)
	}
	if err := table.ToggleSort("created", false); err != nil {
		log.Fatal(err)
	}

	view := table.View()
	fmt.Printf("Found %d transactions:\n", view.TotalRows)
	for _, r := range view.Rows {
		fmt.Printf("  %s  %-8s %6d  %s\n",
			r.GetAsString("created", ""), r.GetAsString("merchant", ""),
			r.GetAsInt64("amount", 0), r.GetAsString("status", ""))
	}

	// Export the filtered view to a second workbook
	exporter, err := excel.New(&excel.Config{FilePath: "./acme.xlsx", SheetName: "acme"})
	if err != nil {
		log.Fatalf("Failed to create exporter: %v", err)
	}
	ctrl := table.Controller()
	if err := tablestate.ExportRows(ctx, exporter, ctrl.FilteredRows(), ctrl.VisibleColumns()); err != nil {
		log.Fatalf("Failed to export: %v", err)
	}
	fmt.Println("Exported view to ./acme.xlsx")
}
