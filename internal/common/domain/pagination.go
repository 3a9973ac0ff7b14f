package domain

// PaginatedResult holds one page of items together with the total count.
type PaginatedResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// NewPaginatedResult creates a PaginatedResult.
func NewPaginatedResult[T any](items []T, total int64, page, limit int) PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return PaginatedResult[T]{Items: items, Total: total, Page: page, Limit: limit}
}

// TotalPages returns the number of pages for the current limit.
func (p PaginatedResult[T]) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}
