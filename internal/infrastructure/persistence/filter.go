package persistence

import (
	"strings"
	"time"

	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// allowedOrderColumns guards ORDER BY against injection: only plain
// identifier column names pass through.
func safeOrderColumn(name string) bool {
	for _, r := range name {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}
	return name != ""
}

// applyCommonFilters applies the filter keys shared by every document list:
// status, branch_id, customer_id and a created_at date range.
func applyCommonFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}
	return query
}

// applyOrderAndPage applies ordering and pagination from the filter.
func applyOrderAndPage(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	if !safeOrderColumn(orderBy) {
		orderBy = "created_at"
	}
	orderDir := "ASC"
	if strings.ToLower(filter.OrderDir) == "desc" || filter.OrderDir == "" {
		orderDir = "DESC"
	}
	query = query.Order(orderBy + " " + orderDir)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// paginate runs the count-then-find sequence every FindAll shares and wraps
// the result. buildQuery must return a query already scoped to the tenant
// with the common filters applied, without ordering or pagination.
func paginate[T any](filter shared.Filter, buildQuery func() *gorm.DB) (*shared.Paginated[T], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	var total int64
	if err := buildQuery().Count(&total).Error; err != nil {
		return nil, err
	}

	var items []T
	if err := applyOrderAndPage(buildQuery(), filter).Find(&items).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}
