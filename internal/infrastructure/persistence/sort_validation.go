package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
// Sort fields arrive verbatim from request filters and end up concatenated into
// the ORDER BY clause, so anything outside the whitelist must never pass.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// StockUnitSortFields contains allowed sort fields for stock units
var StockUnitSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"lpn":               true,
	"quantity":          true,
	"reserved_quantity": true,
	"status":            true,
	"batch_number":      true,
	"expiry_date":       true,
	"fifo_date":         true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"number":     true,
	"status":     true,
}
