package tablestate_test

import (
	"strings"
	"testing"

	tablestate "github.com/ideamans/go-tablestate"
)

type amountRow struct {
	ID  string
	Amt int
}

func amountColumns() []tablestate.Column[amountRow] {
	return []tablestate.Column[amountRow]{
		{ID: "id", Accessor: func(r amountRow) any { return r.ID }},
		{ID: "amt", Accessor: func(r amountRow) any { return r.Amt }},
		{ID: "note"},
	}
}

func amountIDs(rows []amountRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestPipeline_Sort(t *testing.T) {
	p, err := tablestate.NewPipeline(amountColumns(), nil)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}

	rows := []amountRow{{"a", 5}, {"b", 5}, {"c", 1}}

	tests := []struct {
		name    string
		sorting tablestate.Sorting
		want    []string
	}{
		{"no descriptors is identity", nil, []string{"a", "b", "c"}},
		{"ascending keeps ties stable", tablestate.Sorting{{Column: "amt"}}, []string{"c", "a", "b"}},
		{"descending keeps ties stable", tablestate.Sorting{{Column: "amt", Desc: true}}, []string{"a", "b", "c"}},
		{"secondary key breaks ties", tablestate.Sorting{{Column: "amt", Desc: true}, {Column: "id", Desc: true}}, []string{"b", "a", "c"}},
		{"unknown column skipped", tablestate.Sorting{{Column: "nope"}, {Column: "amt"}}, []string{"c", "a", "b"}},
		{"accessor-less column skipped", tablestate.Sorting{{Column: "note"}}, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Sort(rows, tt.sorting)
			assertIDs(t, "Sort()", amountIDs(got), tt.want)
			assertIDs(t, "input after Sort()", amountIDs(rows), []string{"a", "b", "c"})
		})
	}
}

func TestPipeline_SortStability(t *testing.T) {
	p, err := tablestate.NewPipeline(amountColumns(), nil)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}

	// Many ties in several input orders: equal rows must keep input order
	inputs := [][]amountRow{
		{{"a", 2}, {"b", 1}, {"c", 2}, {"d", 1}, {"e", 2}, {"f", 1}},
		{{"f", 1}, {"e", 2}, {"d", 1}, {"c", 2}, {"b", 1}, {"a", 2}},
		{{"c", 2}, {"a", 2}, {"e", 2}, {"b", 1}, {"f", 1}, {"d", 1}},
	}

	for _, rows := range inputs {
		for _, desc := range []bool{false, true} {
			got := p.Sort(rows, tablestate.Sorting{{Column: "amt", Desc: desc}})

			position := map[string]int{}
			for i, r := range rows {
				position[r.ID] = i
			}
			for i := 1; i < len(got); i++ {
				prev, cur := got[i-1], got[i]
				if prev.Amt == cur.Amt && position[prev.ID] > position[cur.ID] {
					t.Errorf("Sort(desc=%v) of %v put %s before %s", desc, amountIDs(rows), prev.ID, cur.ID)
				}
			}
		}
	}
}

func TestPipeline_CustomComparator(t *testing.T) {
	rank := map[string]int{"failed": 0, "pending": 1, "settled": 2}
	columns := []tablestate.Column[payment]{
		{ID: "id", Accessor: func(p payment) any { return p.ID }},
		{
			ID:       "status",
			Accessor: func(p payment) any { return p.Status },
			Compare: func(a, b any) int {
				return rank[a.(string)] - rank[b.(string)]
			},
		},
	}
	p, err := tablestate.NewPipeline(columns, nil)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}

	rows := []payment{
		{ID: "1", Status: "settled"},
		{ID: "2", Status: "failed"},
		{ID: "3", Status: "pending"},
	}
	got := p.Sort(rows, tablestate.Sorting{{Column: "status"}})
	assertIDs(t, "Sort()", ids(got), []string{"2", "3", "1"})
}

func TestPipeline_FilterSortCommute(t *testing.T) {
	p, err := tablestate.NewPipeline(paymentColumns(), nil)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	rows := makePayments(30)
	sorting := tablestate.Sorting{{Column: "status"}}
	filters := tablestate.ColumnFilters{"amount": 40}

	filterFirst := p.Sort(p.Filter(rows, "", filters), sorting)
	sortFirst := p.Filter(p.Sort(rows, sorting), "", filters)

	assertIDs(t, "sort after filter vs filter after sort", ids(filterFirst), ids(sortFirst))

	first := tablestate.Paginate(filterFirst, 1, 5)
	second := tablestate.Paginate(sortFirst, 1, 5)
	assertIDs(t, "page contents", ids(first.Rows), ids(second.Rows))
}

func TestParseSortDescriptor(t *testing.T) {
	tests := []struct {
		in      string
		want    tablestate.SortDescriptor
		wantErr bool
	}{
		{"amount", tablestate.SortDescriptor{Column: "amount"}, false},
		{"amount:asc", tablestate.SortDescriptor{Column: "amount"}, false},
		{"amount:DESC", tablestate.SortDescriptor{Column: "amount", Desc: true}, false},
		{" created:desc ", tablestate.SortDescriptor{Column: "created", Desc: true}, false},
		{"amount:up", tablestate.SortDescriptor{}, true},
		{":desc", tablestate.SortDescriptor{}, true},
		{"", tablestate.SortDescriptor{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := tablestate.ParseSortDescriptor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSortDescriptor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSortDescriptor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSorting_String(t *testing.T) {
	s := tablestate.Sorting{{Column: "amount", Desc: true}, {Column: "id"}}
	if got := s.String(); got != "amount:desc,id:asc" {
		t.Errorf("String() = %q", got)
	}

	d, priority, ok := s.Find("id")
	if !ok || priority != 1 || d.Desc {
		t.Errorf("Find(id) = %v, %d, %v", d, priority, ok)
	}
	if _, _, ok := s.Find("merchant"); ok {
		t.Errorf("Find(merchant) found a descriptor")
	}
	if !strings.HasPrefix(s.Clone().String(), "amount") {
		t.Errorf("Clone() changed order")
	}
}
