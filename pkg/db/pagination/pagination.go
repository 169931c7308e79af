package pagination

import "gorm.io/gorm"

// Page is offset pagination as exposed by the list endpoints.
type Page struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

// Normalize clamps the request to the configured bounds.
func (p Page) Normalize(defaultSize, maxSize int) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if maxSize > 0 && p.PageSize > maxSize {
		p.PageSize = maxSize
	}
	return p
}

// Offset returns the row offset for the current page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Apply adds LIMIT/OFFSET to the statement.
func (p Page) Apply(stmt *gorm.DB) *gorm.DB {
	return stmt.Offset(p.Offset()).Limit(p.PageSize)
}

// PageInfo describes the returned page of a listing.
type PageInfo struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	NextPage    *int  `json:"nextPage"`
}

// BuildPageInfo computes the page envelope for a full listing.
func BuildPageInfo(page Page, total int64) PageInfo {
	info := PageInfo{
		Total:       total,
		CurrentPage: page.Page,
		PageSize:    page.PageSize,
	}
	if int64(page.Offset()+page.PageSize) < total {
		next := page.Page + 1
		info.NextPage = &next
	}
	return info
}
