package view

// Pagination carries everything a template or API client needs to render
// page controls. Window holds the page numbers shown around the current
// page (current ±2, clamped to the valid range).
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int   `json:"total"`
	TotalPages int   `json:"total_pages"`
	Offset     int   `json:"-"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
	Window     []int `json:"window"`
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Paginate clamps page/perPage to sane bounds and derives the rest from
// the total row count. Page numbers are 1-based; an out-of-range page is
// pulled back to the last page.
func Paginate(total, page, perPage int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if total < 0 {
		total = 0
	}

	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	p := Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		Offset:     (page - 1) * perPage,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}

	lo, hi := page-2, page+2
	if lo < 1 {
		lo = 1
	}
	if hi > totalPages {
		hi = totalPages
	}
	for n := lo; n <= hi; n++ {
		p.Window = append(p.Window, n)
	}

	return p
}
