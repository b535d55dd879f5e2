package main

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	tablestate "github.com/ideamans/go-tablestate"
	"github.com/ideamans/go-tablestate/urlstate"
)

// Payment is one row of the payments table
type Payment struct {
	ID       string
	Merchant string
	Amount   float64
	Status   string
	Created  time.Time
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	columns := []tablestate.Column[Payment]{
		{ID: "id", Header: "ID", Accessor: func(p Payment) any { return p.ID }},
		{ID: "merchant", Header: "Merchant", Accessor: func(p Payment) any { return p.Merchant }},
		{ID: "amount", Header: "Amount", Accessor: func(p Payment) any { return p.Amount }, Filter: tablestate.FilterGreaterEqual},
		{ID: "status", Header: "Status", Accessor: func(p Payment) any { return p.Status }, Filter: tablestate.FilterEquals},
		{ID: "created", Header: "Created", Accessor: func(p Payment) any { return p.Created }, DisableSearch: true},
		{ID: "actions", Header: ""}, // display-only
	}

	// Keep the query string in step with the table, as a browser URL would be
	var query string
	ctrl, err := tablestate.NewController(columns, tablestate.Options[Payment]{
		Config: &tablestate.Config{PageSize: 5},
		RowID:  func(p Payment) string { return p.ID },
		OnStateChange: func(change tablestate.StateChange) {
			query = urlstate.Apply(mustParse(query), change).Encode()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}

	table := tablestate.NewTable(ctrl, tablestate.TableOptions[Payment]{
		Actions: []tablestate.Action[Payment]{
			{
				Label: "Refund",
				Enabled: func(selected []Payment) bool {
					for _, p := range selected {
						if p.Status != "settled" {
							return false
						}
					}
					return len(selected) > 0
				},
				Handler: func(selected []Payment) error {
					fmt.Printf("Refunding %d payments\n", len(selected))
					return nil
				},
			},
		},
	})

	// Data is fetched by the host; the table only receives the outcome
	if err := table.SetResult(tablestate.Loading[Payment]()); err != nil {
		return err
	}
	if err := table.Search("acme"); !errors.Is(err, tablestate.ErrNotReady) {
		return fmt.Errorf("search while loading: %v", err)
	}
	if err := table.SetResult(tablestate.Loaded(samplePayments())); err != nil {
		return err
	}

	// Show settled payments of at least 50, largest first
	if err := table.FilterColumn("status", "settled"); err != nil {
		return err
	}
	if err := table.FilterColumn("amount", 50.0); err != nil {
		return err
	}
	if err := table.ToggleSort("amount", false); err != nil {
		return err
	}
	if err := table.ToggleSort("amount", false); err != nil {
		return err
	}
	printView(table.View())

	if err := table.TogglePageSelection(); err != nil {
		return err
	}
	if err := table.RunAction("Refund"); err != nil {
		return fmt.Errorf("refund failed: %w", err)
	}

	// A refetch keeps the selection, filters and sorting
	if err := table.SetResult(tablestate.Loaded(samplePayments())); err != nil {
		return err
	}
	fmt.Printf("Selected after refetch: %d\n", table.View().SelectedRowCount)
	fmt.Printf("Shareable query: ?%s\n", query)

	// Restore the view elsewhere. Typed filters such as the amount threshold
	// do not travel in the query string; text filters, sorting, paging and
	// selection do.
	state, err := urlstate.Decode(mustParse(query))
	if err != nil {
		return err
	}
	restored, err := tablestate.NewController(columns, tablestate.Options[Payment]{
		Config:       &tablestate.Config{PageSize: 5},
		RowID:        func(p Payment) string { return p.ID },
		InitialState: &state,
	})
	if err != nil {
		return err
	}
	if err := restored.SetData(samplePayments()); err != nil {
		return err
	}
	fmt.Printf("Restored page: %v\n", restored.PageRowIDs())

	table.Controller().ResetAll()
	fmt.Printf("After reset: %d rows, page %d\n", table.View().TotalRows, table.View().PageIndex+1)
	return nil
}

func printView(view tablestate.View[Payment]) {
	fmt.Printf("Page %d of %d (%d matching)\n", view.PageIndex+1, view.PageCount, view.TotalRows)
	for _, p := range view.Rows {
		fmt.Printf("  %-4s %-9s %8.2f %-8s %s\n", p.ID, p.Merchant, p.Amount, p.Status, p.Created.Format("2006-01-02"))
	}
	for _, action := range view.Actions {
		fmt.Printf("  [%s] enabled=%v\n", action.Label, action.Enabled)
	}
}

func samplePayments() []Payment {
	merchants := []string{"Acme", "Globex", "Initech", "Umbrella"}
	statuses := []string{"settled", "pending", "failed"}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	payments := make([]Payment, 40)
	for i := range payments {
		payments[i] = Payment{
			ID:       fmt.Sprintf("p%02d", i+1),
			Merchant: merchants[i%len(merchants)],
			Amount:   float64((i*37)%100 + 1),
			Status:   statuses[i%len(statuses)],
			Created:  start.AddDate(0, 0, i),
		}
	}
	return payments
}

func mustParse(query string) url.Values {
	v, err := url.ParseQuery(query)
	if err != nil {
		log.Fatalf("invalid query %q: %v", query, err)
	}
	return v
}
