package tablestate_test

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	tablestate "github.com/ideamans/go-tablestate"
)

type payment struct {
	ID       string
	Merchant string
	Amount   float64
	Status   string
	Created  time.Time
}

func paymentColumns() []tablestate.Column[payment] {
	return []tablestate.Column[payment]{
		{ID: "id", Header: "ID", Accessor: func(p payment) any { return p.ID }},
		{ID: "merchant", Header: "Merchant", Accessor: func(p payment) any { return p.Merchant }},
		{ID: "amount", Header: "Amount", Accessor: func(p payment) any { return p.Amount }, Filter: tablestate.FilterGreaterEqual},
		{ID: "status", Header: "Status", Accessor: func(p payment) any { return p.Status }, Filter: tablestate.FilterEquals},
		{ID: "created", Header: "Created", Accessor: func(p payment) any { return p.Created }, DisableSearch: true},
		{ID: "actions", Header: ""},
	}
}

func paymentID(p payment) string { return p.ID }

// makePayments returns n payments with ids p01..pNN
func makePayments(n int) []payment {
	statuses := []string{"settled", "pending", "failed"}
	merchants := []string{"Acme", "Globex", "Initech", "Umbrella"}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := make([]payment, n)
	for i := range rows {
		rows[i] = payment{
			ID:       fmt.Sprintf("p%02d", i+1),
			Merchant: merchants[i%len(merchants)],
			Amount:   float64((i*37)%100 + 1),
			Status:   statuses[i%len(statuses)],
			Created:  base.Add(time.Duration(i) * time.Hour),
		}
	}
	return rows
}

func newPaymentController(t *testing.T, rows []payment, opts tablestate.Options[payment]) *tablestate.Controller[payment] {
	t.Helper()
	if opts.RowID == nil {
		opts.RowID = paymentID
	}
	c, err := tablestate.NewController(paymentColumns(), opts)
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	if err := c.SetData(rows); err != nil {
		t.Fatalf("SetData() error = %v", err)
	}
	return c
}

func ids(rows []payment) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func assertIDs(t *testing.T, name string, got, want []string) {
	t.Helper()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}
