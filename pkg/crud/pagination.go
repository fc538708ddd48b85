package crud

// PageLink is one entry of the pager: a page number or an ellipsis.
type PageLink struct {
	Number   int
	Current  bool
	Ellipsis bool
}

type Pager struct {
	Page       int
	PageSize   int
	Count      int
	TotalPages int
	Links      []PageLink
}

func TotalPages(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// PageWindow lists the first page, the last page and current +/- 1, with an
// ellipsis at current +/- 2.
func PageWindow(current, total int) []PageLink {
	var out []PageLink
	for i := 1; i <= total; i++ {
		switch {
		case i == 1 || i == total || (i >= current-1 && i <= current+1):
			out = append(out, PageLink{Number: i, Current: i == current})
		case i == current-2 || i == current+2:
			out = append(out, PageLink{Ellipsis: true})
		}
	}
	return out
}

func NewPager(page, size, count int) Pager {
	total := TotalPages(count, size)
	if page < 1 {
		page = 1
	}
	if total > 0 && page > total {
		page = total
	}
	return Pager{Page: page, PageSize: size, Count: count, TotalPages: total, Links: PageWindow(page, total)}
}

func (p Pager) HasPrev() bool { return p.Page > 1 }
func (p Pager) HasNext() bool { return p.Page < p.TotalPages }
func (p Pager) Prev() int     { return p.Page - 1 }
func (p Pager) Next() int     { return p.Page + 1 }

// Paginate cuts one page out of rows held in memory.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(items) {
		return nil
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
