package services

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

func (p Page) normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Size
}

type PageInfo struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

func newPageInfo(p Page, total int64) PageInfo {
	return PageInfo{
		Total:      total,
		Page:       p.Number,
		Limit:      p.Size,
		TotalPages: (total + int64(p.Size) - 1) / int64(p.Size),
	}
}
