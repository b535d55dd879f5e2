package tablestate

// Pagination is the visible window over the filtered and sorted rows
type Pagination struct {
	PageIndex int // 0-based
	PageSize  int
}

// Page is one window of rows plus the metadata needed to render pager controls
type Page[T any] struct {
	Rows      []T
	PageIndex int
	PageSize  int
	PageCount int // Always at least 1
	TotalRows int // Rows before slicing
	HasNext   bool
	HasPrev   bool
}

// PageCount returns max(ceil(total/pageSize), 1). A non-positive pageSize
// means a single unbounded page.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPageIndex limits pageIndex to [0, PageCount-1]
func ClampPageIndex(pageIndex, total, pageSize int) int {
	if pageIndex < 0 {
		return 0
	}
	if last := PageCount(total, pageSize) - 1; pageIndex > last {
		return last
	}
	return pageIndex
}

// Paginate slices rows into the requested window. It does not clamp: a
// pageIndex past the last page yields an empty window.
func Paginate[T any](rows []T, pageIndex, pageSize int) Page[T] {
	if pageIndex < 0 {
		pageIndex = 0
	}
	total := len(rows)
	page := Page[T]{
		PageIndex: pageIndex,
		PageSize:  pageSize,
		PageCount: PageCount(total, pageSize),
		TotalRows: total,
	}

	if pageSize <= 0 {
		page.Rows = []T{}
		if pageIndex == 0 {
			page.Rows = append(page.Rows, rows...)
		}
		page.HasPrev = pageIndex > 0
		return page
	}

	// Offset適用
	start := pageIndex * pageSize
	if start >= total {
		page.Rows = []T{}
	} else {
		end := start + pageSize
		if end > total {
			end = total
		}
		page.Rows = append([]T{}, rows[start:end]...)
	}

	page.HasPrev = pageIndex > 0
	page.HasNext = pageIndex < page.PageCount-1
	return page
}
