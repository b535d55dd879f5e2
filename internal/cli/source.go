package cli

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	tablestate "github.com/ideamans/go-tablestate"
	"github.com/ideamans/go-tablestate/adapters/excel"
	"github.com/ideamans/go-tablestate/adapters/googlesheets"
	"github.com/ideamans/go-tablestate/urlstate"
)

// openSource creates the adapter named by the configuration
func openSource(ctx context.Context, cfg *AppConfig) (tablestate.Source, error) {
	switch cfg.Source.Type {
	case SourceExcel:
		return excel.New(&cfg.Source.Excel)
	case SourceGoogleSheets:
		return googlesheets.New(ctx, cfg.Source.GoogleSheets)
	default:
		return nil, fmt.Errorf("%w: unknown source type %q", tablestate.ErrInvalidConfig, cfg.Source.Type)
	}
}

func rowIDFunc(cfg *AppConfig) func(*tablestate.Record) string {
	if cfg.Source.IDField != "" {
		return tablestate.RecordFieldID(cfg.Source.IDField)
	}
	return tablestate.RecordKeyID
}

// stateFlags are the table state options of view and export
type stateFlags struct {
	search  string
	sort    []string
	filters []string
	hide    []string
	page    int
	size    int
}

func (f *stateFlags) register(cmd *cobra.Command, paging bool) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Search text matched against every column")
	cmd.Flags().StringSliceVar(&f.sort, "sort", nil, "Sort by column, e.g. amount:desc (repeatable, first is primary)")
	cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "Column filter as column=value (repeatable)")
	cmd.Flags().StringSliceVar(&f.hide, "hide", nil, "Columns to leave out")
	if paging {
		cmd.Flags().IntVar(&f.page, "page", 1, "Page number, starting at 1")
		cmd.Flags().IntVar(&f.size, "size", 0, "Rows per page (default: table.page_size)")
	}
}

// query expresses the flags as table state query parameters
func (f *stateFlags) query() (url.Values, error) {
	v := url.Values{}
	if f.search != "" {
		v.Set(urlstate.KeyGlobalFilter, f.search)
	}
	if len(f.sort) > 0 {
		v.Set(urlstate.KeySort, strings.Join(f.sort, ","))
	}
	for _, raw := range f.filters {
		column, value, ok := strings.Cut(raw, "=")
		if !ok || strings.TrimSpace(column) == "" {
			return nil, fmt.Errorf("invalid filter %q, want column=value", raw)
		}
		v.Set(urlstate.FilterPrefix+strings.TrimSpace(column), value)
	}
	if len(f.hide) > 0 {
		v.Set(urlstate.KeyHidden, strings.Join(f.hide, ","))
	}
	if f.page > 1 {
		v.Set(urlstate.KeyPage, strconv.Itoa(f.page-1))
	} else if f.page < 0 {
		return nil, fmt.Errorf("invalid page %d", f.page)
	}
	if f.size > 0 {
		v.Set(urlstate.KeySize, strconv.Itoa(f.size))
	}
	return v, nil
}

// loadController fetches the dataset and applies the state flags to it
func loadController(ctx context.Context, cfg *AppConfig, flags *stateFlags) (*tablestate.Controller[*tablestate.Record], error) {
	source, err := openSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var result tablestate.LoadResult[*tablestate.Record]
	var schema []string
	refresher := tablestate.NewRefresher(source, &cfg.Refresh, func(r tablestate.LoadResult[*tablestate.Record], s []string) {
		result, schema = r, s
	})
	if err := refresher.Load(ctx); err != nil {
		return nil, err
	}

	ctrl, err := tablestate.NewController(tablestate.RecordColumns(schema), tablestate.Options[*tablestate.Record]{
		Config: &cfg.Table,
		RowID:  rowIDFunc(cfg),
	})
	if err != nil {
		return nil, err
	}
	if err := ctrl.SetData(result.Rows); err != nil {
		return nil, err
	}

	values, err := flags.query()
	if err != nil {
		return nil, err
	}
	state, err := urlstate.Decode(values)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Restore(state); err != nil {
		return nil, err
	}
	return ctrl, nil
}
