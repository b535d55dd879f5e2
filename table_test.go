package tablestate_test

import (
	"errors"
	"testing"

	tablestate "github.com/ideamans/go-tablestate"
)

func newPaymentTable(t *testing.T, opts tablestate.TableOptions[payment]) *tablestate.Table[payment] {
	t.Helper()
	c, err := tablestate.NewController(paymentColumns(), tablestate.Options[payment]{RowID: paymentID})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	return tablestate.NewTable(c, opts)
}

func TestTable_LoadingBlocksIntents(t *testing.T) {
	table := newPaymentTable(t, tablestate.TableOptions[payment]{})

	view := table.View()
	if view.Status != tablestate.StatusLoading {
		t.Errorf("Status = %v, want loading", view.Status)
	}
	if len(view.Rows) != 0 || view.IsEmpty || view.NoMatches {
		t.Errorf("loading view = %+v, want no rows and no empty signals", view)
	}

	intents := map[string]func() error{
		"Search":              func() error { return table.Search("acme") },
		"ToggleSort":          func() error { return table.ToggleSort("amount", false) },
		"FilterColumn":        func() error { return table.FilterColumn("status", "settled") },
		"ClearFilters":        table.ClearFilters,
		"GoToPage":            func() error { return table.GoToPage(1) },
		"NextPage":            table.NextPage,
		"PreviousPage":        table.PreviousPage,
		"ChangePageSize":      func() error { return table.ChangePageSize(25) },
		"ToggleRow":           func() error { return table.ToggleRow("p01") },
		"TogglePageSelection": table.TogglePageSelection,
		"SelectAllMatching":   table.SelectAllMatching,
		"ClearSelection":      table.ClearSelection,
		"RunAction":           func() error { return table.RunAction("Approve") },
	}
	for name, intent := range intents {
		if err := intent(); !errors.Is(err, tablestate.ErrNotReady) {
			t.Errorf("%s() while loading error = %v, want ErrNotReady", name, err)
		}
	}
	if !table.Controller().State().Equal(table.Controller().InitialState()) {
		t.Errorf("intents changed state while loading")
	}
}

func TestTable_ErrorAndRetry(t *testing.T) {
	retries := 0
	table := newPaymentTable(t, tablestate.TableOptions[payment]{
		OnRetry: func() { retries++ },
	})

	loadErr := errors.New("gateway timeout")
	if err := table.SetResult(tablestate.Failed[payment](loadErr)); err != nil {
		t.Fatalf("SetResult() error = %v", err)
	}

	view := table.View()
	if view.Status != tablestate.StatusFailed || view.Err != loadErr {
		t.Errorf("view Status = %v, Err = %v", view.Status, view.Err)
	}
	if err := table.Search("acme"); !errors.Is(err, tablestate.ErrNotReady) {
		t.Errorf("Search() after failure error = %v, want ErrNotReady", err)
	}

	if err := table.Retry(); err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if retries != 1 {
		t.Errorf("OnRetry called %d times, want 1", retries)
	}

	// The host reloads: loading, then ready
	if err := table.SetResult(tablestate.Loading[payment]()); err != nil {
		t.Fatalf("SetResult() error = %v", err)
	}
	if table.View().Err != nil {
		t.Errorf("loading view still carries the previous error")
	}
	if err := table.SetResult(tablestate.Loaded(makePayments(3))); err != nil {
		t.Fatalf("SetResult() error = %v", err)
	}
	if table.Status() != tablestate.StatusReady {
		t.Errorf("Status() = %v, want ready", table.Status())
	}

	noRetry := newPaymentTable(t, tablestate.TableOptions[payment]{})
	if err := noRetry.Retry(); !errors.Is(err, tablestate.ErrNoRetry) {
		t.Errorf("Retry() without handler error = %v, want ErrNoRetry", err)
	}
}

func TestTable_InvalidDataFails(t *testing.T) {
	table := newPaymentTable(t, tablestate.TableOptions[payment]{})

	err := table.SetResult(tablestate.Loaded([]payment{{ID: "x"}, {ID: "x"}}))
	if !errors.Is(err, tablestate.ErrDuplicateRowID) {
		t.Fatalf("SetResult() error = %v, want ErrDuplicateRowID", err)
	}
	view := table.View()
	if view.Status != tablestate.StatusFailed || !errors.Is(view.Err, tablestate.ErrDuplicateRowID) {
		t.Errorf("view Status = %v, Err = %v", view.Status, view.Err)
	}
}

func TestTable_EmptyVersusNoMatches(t *testing.T) {
	table := newPaymentTable(t, tablestate.TableOptions[payment]{})

	if err := table.SetResult(tablestate.Loaded([]payment{})); err != nil {
		t.Fatalf("SetResult() error = %v", err)
	}
	view := table.View()
	if !view.IsEmpty || view.NoMatches {
		t.Errorf("empty dataset: IsEmpty = %v, NoMatches = %v", view.IsEmpty, view.NoMatches)
	}

	if err := table.SetResult(tablestate.Loaded(makePayments(5))); err != nil {
		t.Fatalf("SetResult() error = %v", err)
	}
	if err := table.Search("no such merchant"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	view = table.View()
	if view.IsEmpty || !view.NoMatches {
		t.Errorf("no matches: IsEmpty = %v, NoMatches = %v", view.IsEmpty, view.NoMatches)
	}
	if !view.HasActiveFilters || view.PageCount != 1 || view.PageIndex != 0 {
		t.Errorf("no matches view = %+v", view)
	}

	if err := table.ClearFilters(); err != nil {
		t.Fatalf("ClearFilters() error = %v", err)
	}
	if view := table.View(); view.NoMatches || view.HasActiveFilters || len(view.Rows) != 5 {
		t.Errorf("after ClearFilters view = %+v", view)
	}
}

func TestTable_Intents(t *testing.T) {
	table := newPaymentTable(t, tablestate.TableOptions[payment]{})
	if err := table.SetResult(tablestate.Loaded(makePayments(25))); err != nil {
		t.Fatalf("SetResult() error = %v", err)
	}

	if err := table.NextPage(); err != nil {
		t.Fatalf("NextPage() error = %v", err)
	}
	if err := table.NextPage(); err != nil {
		t.Fatalf("NextPage() error = %v", err)
	}
	if err := table.NextPage(); err != nil {
		t.Fatalf("NextPage() error = %v", err)
	}
	view := table.View()
	if view.PageIndex != 2 || view.HasNext || !view.HasPrev {
		t.Errorf("after NextPage x3: PageIndex = %d, HasNext = %v, HasPrev = %v", view.PageIndex, view.HasNext, view.HasPrev)
	}
	assertIDs(t, "RowIDs", view.RowIDs, []string{"p21", "p22", "p23", "p24", "p25"})

	if err := table.PreviousPage(); err != nil {
		t.Fatalf("PreviousPage() error = %v", err)
	}
	if got := table.View().PageIndex; got != 1 {
		t.Errorf("after PreviousPage PageIndex = %d, want 1", got)
	}

	if err := table.ChangePageSize(25); err != nil {
		t.Fatalf("ChangePageSize() error = %v", err)
	}
	view = table.View()
	if view.PageIndex != 0 || view.PageSize != 25 || len(view.Rows) != 25 {
		t.Errorf("after ChangePageSize: PageIndex = %d, PageSize = %d, rows = %d", view.PageIndex, view.PageSize, len(view.Rows))
	}

	if err := table.FilterColumn("status", "failed"); err != nil {
		t.Fatalf("FilterColumn() error = %v", err)
	}
	if err := table.ToggleSort("amount", false); err != nil {
		t.Fatalf("ToggleSort() error = %v", err)
	}
	view = table.View()
	for i, row := range view.Rows {
		if row.Status != "failed" {
			t.Errorf("row %s has status %s", row.ID, row.Status)
		}
		if i > 0 && view.Rows[i-1].Amount > row.Amount {
			t.Errorf("rows not sorted by amount: %v", ids(view.Rows))
		}
	}
	if len(view.Sorting) != 1 || view.ColumnFilters["status"] != "failed" {
		t.Errorf("view Sorting = %v, ColumnFilters = %v", view.Sorting, view.ColumnFilters)
	}

	if err := table.ToggleSort("actions", false); !errors.Is(err, tablestate.ErrMissingAccessor) {
		t.Errorf("ToggleSort(actions) error = %v, want ErrMissingAccessor", err)
	}
}

func TestTable_Selection(t *testing.T) {
	table := newPaymentTable(t, tablestate.TableOptions[payment]{})
	if err := table.SetResult(tablestate.Loaded(makePayments(25))); err != nil {
		t.Fatalf("SetResult() error = %v", err)
	}

	if err := table.TogglePageSelection(); err != nil {
		t.Fatalf("TogglePageSelection() error = %v", err)
	}
	view := table.View()
	if !view.PageSelected || view.SelectedRowCount != 10 {
		t.Errorf("after selecting page: PageSelected = %v, SelectedRowCount = %d", view.PageSelected, view.SelectedRowCount)
	}

	if err := table.GoToPage(1); err != nil {
		t.Fatalf("GoToPage() error = %v", err)
	}
	if table.View().PageSelected {
		t.Errorf("PageSelected = true on an unselected page")
	}
	if err := table.GoToPage(0); err != nil {
		t.Fatalf("GoToPage() error = %v", err)
	}
	if err := table.TogglePageSelection(); err != nil {
		t.Fatalf("TogglePageSelection() error = %v", err)
	}
	if view := table.View(); view.HasSelection {
		t.Errorf("second TogglePageSelection left %d rows selected", view.SelectedRowCount)
	}

	if err := table.ToggleRow("p07"); err != nil {
		t.Fatalf("ToggleRow() error = %v", err)
	}
	if err := table.ToggleRow("p07"); err != nil {
		t.Fatalf("ToggleRow() error = %v", err)
	}
	if table.View().HasSelection {
		t.Errorf("ToggleRow twice left a selection")
	}

	if err := table.Search("acme"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if err := table.SelectAllMatching(); err != nil {
		t.Fatalf("SelectAllMatching() error = %v", err)
	}
	view = table.View()
	if view.SelectedRowCount != 7 {
		t.Errorf("SelectedRowCount = %d, want 7 acme payments", view.SelectedRowCount)
	}
	for _, row := range view.SelectedRows {
		if row.Merchant != "Acme" {
			t.Errorf("SelectAllMatching() selected %s of %s", row.ID, row.Merchant)
		}
	}

	if err := table.ClearSelection(); err != nil {
		t.Fatalf("ClearSelection() error = %v", err)
	}
	if table.View().HasSelection {
		t.Errorf("ClearSelection() left a selection")
	}
}

func TestTable_Actions(t *testing.T) {
	var approved []string
	handlerErr := errors.New("ledger unavailable")

	table := newPaymentTable(t, tablestate.TableOptions[payment]{
		Actions: []tablestate.Action[payment]{
			{
				Label: "Approve",
				Handler: func(selected []payment) error {
					approved = append(approved, ids(selected)...)
					return nil
				},
			},
			{
				Label: "Refund",
				Enabled: func(selected []payment) bool {
					for _, p := range selected {
						if p.Status != "settled" {
							return false
						}
					}
					return len(selected) > 0
				},
				Handler: func([]payment) error { return handlerErr },
			},
			{Label: "Export", Enabled: func([]payment) bool { return true }},
		},
	})
	if err := table.SetResult(tablestate.Loaded(makePayments(6))); err != nil {
		t.Fatalf("SetResult() error = %v", err)
	}

	view := table.View()
	wantEnabled := map[string]bool{"Approve": false, "Refund": false, "Export": true}
	for _, a := range view.Actions {
		if a.Enabled != wantEnabled[a.Label] {
			t.Errorf("action %s Enabled = %v with empty selection", a.Label, a.Enabled)
		}
	}

	if err := table.RunAction("Approve"); !errors.Is(err, tablestate.ErrActionDisabled) {
		t.Errorf("RunAction(Approve) error = %v, want ErrActionDisabled", err)
	}
	if err := table.RunAction("Delete"); !errors.Is(err, tablestate.ErrUnknownAction) {
		t.Errorf("RunAction(Delete) error = %v, want ErrUnknownAction", err)
	}
	if err := table.RunAction("Export"); err != nil {
		t.Errorf("RunAction(Export) error = %v", err)
	}

	// p01 and p04 are settled, p02 is pending
	for _, id := range []string{"p04", "p01"} {
		if err := table.ToggleRow(id); err != nil {
			t.Fatalf("ToggleRow() error = %v", err)
		}
	}
	if err := table.RunAction("Approve"); err != nil {
		t.Fatalf("RunAction(Approve) error = %v", err)
	}
	assertIDs(t, "approved", approved, []string{"p01", "p04"})

	err := table.RunAction("Refund")
	if !errors.Is(err, handlerErr) {
		t.Errorf("RunAction(Refund) error = %v, want wrapped handler error", err)
	}

	if err := table.ToggleRow("p02"); err != nil {
		t.Fatalf("ToggleRow() error = %v", err)
	}
	for _, a := range table.View().Actions {
		if a.Label == "Refund" && a.Enabled {
			t.Errorf("Refund enabled with a pending payment selected")
		}
	}
}
