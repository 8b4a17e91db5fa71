package repository

import "gorm.io/gorm"

// maxPageSize 单页最大条数，与接口层分页归一化保持一致
const maxPageSize = 100

// applyPagination 应用分页参数；pageSize<=0 表示不分页，超过上限时截断
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}

// listPage 统计总数后按页取数，orders 依次追加排序子句
func listPage[T any](query *gorm.DB, page, pageSize int, orders ...string) ([]T, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]T, 0)
	if total == 0 {
		return rows, 0, nil
	}
	paged := applyPagination(query, page, pageSize)
	for _, order := range orders {
		paged = paged.Order(order)
	}
	if err := paged.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
