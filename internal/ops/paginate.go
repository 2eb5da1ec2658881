package ops

// Page describes one page of a listing.
type Page struct {
	Number int  `json:"number"`
	Total  int  `json:"total"`
	More   bool `json:"more"`
}

// Paginate returns the slice bounds of page for n items. Pages are 1-based;
// page <= 0 selects the first page and a page past the end selects the last.
// With full set, the slice runs from the page start to the end.
func Paginate(n, pageSize, page int, full bool) (start, end int, p Page) {
	if pageSize < 1 {
		pageSize = 1
	}
	total := (n + pageSize - 1) / pageSize

	if page < 1 {
		page = 1
	}
	if total > 0 && page > total {
		page = total
	}

	start = min((page-1)*pageSize, n)
	end = min(page*pageSize, n)
	if full {
		end = n
	}

	return start, end, Page{Number: page, Total: total, More: end < n}
}
