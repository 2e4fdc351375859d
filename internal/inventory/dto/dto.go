package dto

type LowStockFilters struct {
	LocationID string
	Page       int
	PageSize   int
}
