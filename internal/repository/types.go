package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page         int
	PageSize     int
	UserID       uint
	Status       string
	OrderNo      string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	IncludeCarts bool
	WithItems    bool
}

// BoxTypeListFilter 查询盒子品类的过滤条件
type BoxTypeListFilter struct {
	Page       int
	PageSize   int
	Search     string
	OnlyActive bool
}

// DiscountListFilter 查询折扣码的过滤条件
type DiscountListFilter struct {
	Page     int
	PageSize int
	Search   string
	IsActive *bool
}

// SubscriptionListFilter 查询订阅的过滤条件
type SubscriptionListFilter struct {
	Page      int
	PageSize  int
	UserID    uint
	BoxTypeID uint
	Status    string
}

// ReviewListFilter 查询评价的过滤条件
type ReviewListFilter struct {
	Page      int
	PageSize  int
	BoxTypeID uint
	UserID    uint
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Search   string
	Role     string
}
