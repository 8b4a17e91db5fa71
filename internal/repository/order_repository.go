package repository

import (
	"time"

	"github.com/boxmart-next/internal/constants"
	"github.com/boxmart-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单数据访问接口（购物车即 status=Cart 的订单）
type OrderRepository interface {
	GetOpenCart(userID uint) (*models.Order, error)
	GetOpenCartForUpdate(userID uint) (*models.Order, error)
	CreateCart(cart *models.Order) error
	HardDelete(orderID uint) error

	GetItem(orderID, itemID uint) (*models.OrderItem, error)
	GetItemByBoxType(orderID, boxTypeID uint) (*models.OrderItem, error)
	ListItems(orderID uint) ([]models.OrderItem, error)
	CreateItem(item *models.OrderItem) error
	UpdateItem(item *models.OrderItem) error
	DeleteItem(itemID uint) error

	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDForUpdate(id uint) (*models.Order, error)
	GetByIDAndUser(id uint, userID uint) (*models.Order, error)
	GetByPayOSOrderCode(code int64) (*models.Order, error)
	ListByIDs(ids []uint) ([]models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	HasCompletedOrderWithBox(userID, orderID, boxTypeID uint) (bool, error)
	Update(order *models.Order) error
	UpdateFields(id uint, updates map[string]interface{}) error
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

func (r *GormOrderRepository) withItems(query *gorm.DB) *gorm.DB {
	return query.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	})
}

// GetOpenCart 获取用户当前购物车
func (r *GormOrderRepository) GetOpenCart(userID uint) (*models.Order, error) {
	query := r.withItems(r.db).Where("user_id = ? AND status = ?", userID, constants.OrderStatusCart)
	return takeOne[models.Order](query.Order("id asc"))
}

// GetOpenCartForUpdate 加行锁获取用户当前购物车
func (r *GormOrderRepository) GetOpenCartForUpdate(userID uint) (*models.Order, error) {
	query := r.withItems(r.db.Clauses(clause.Locking{Strength: "UPDATE"})).
		Where("user_id = ? AND status = ?", userID, constants.OrderStatusCart)
	return takeOne[models.Order](query.Order("id asc"))
}

// CreateCart 创建空购物车
func (r *GormOrderRepository) CreateCart(cart *models.Order) error {
	cart.Status = constants.OrderStatusCart
	return r.db.Omit("Items").Create(cart).Error
}

// HardDelete 物理删除订单及订单项（空购物车不保留软删除记录）
func (r *GormOrderRepository) HardDelete(orderID uint) error {
	if err := r.db.Unscoped().Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return r.db.Unscoped().Delete(&models.Order{}, orderID).Error
}

// GetItem 获取订单内指定订单项
func (r *GormOrderRepository) GetItem(orderID, itemID uint) (*models.OrderItem, error) {
	return takeOne[models.OrderItem](r.db.Where("id = ? AND order_id = ?", itemID, orderID))
}

// GetItemByBoxType 获取订单内指定品类的订单项
func (r *GormOrderRepository) GetItemByBoxType(orderID, boxTypeID uint) (*models.OrderItem, error) {
	return takeOne[models.OrderItem](r.db.Where("order_id = ? AND box_type_id = ?", orderID, boxTypeID).Order("id asc"))
}

// ListItems 获取订单项
func (r *GormOrderRepository) ListItems(orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem 创建订单项
func (r *GormOrderRepository) CreateItem(item *models.OrderItem) error {
	return r.db.Create(item).Error
}

// UpdateItem 更新订单项数量与单价快照
func (r *GormOrderRepository) UpdateItem(item *models.OrderItem) error {
	return r.db.Model(&models.OrderItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"quantity":   item.Quantity,
		"unit_price": item.UnitPrice,
		"box_name":   item.BoxName,
	}).Error
}

// DeleteItem 物理删除订单项
func (r *GormOrderRepository) DeleteItem(itemID uint) error {
	return r.db.Unscoped().Delete(&models.OrderItem{}, itemID).Error
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Omit("Items").Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = 0
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	return takeOne[models.Order](r.withItems(r.db), id)
}

// GetByIDForUpdate 加行锁获取订单
func (r *GormOrderRepository) GetByIDForUpdate(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	return takeOne[models.Order](r.withItems(r.db.Clauses(clause.Locking{Strength: "UPDATE"})), id)
}

// GetByIDAndUser 获取用户订单详情
func (r *GormOrderRepository) GetByIDAndUser(id uint, userID uint) (*models.Order, error) {
	return takeOne[models.Order](r.withItems(r.db).Where("id = ? AND user_id = ?", id, userID))
}

// GetByPayOSOrderCode 根据 PayOS 订单号获取订单
func (r *GormOrderRepository) GetByPayOSOrderCode(code int64) (*models.Order, error) {
	if code <= 0 {
		return nil, nil
	}
	return takeOne[models.Order](r.withItems(r.db).Where("payos_order_code = ?", code))
}

// ListByIDs 批量获取订单
func (r *GormOrderRepository) ListByIDs(ids []uint) ([]models.Order, error) {
	var orders []models.Order
	if len(ids) == 0 {
		return orders, nil
	}
	if err := r.db.Where("id IN ?", ids).Order("id asc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByUser 用户订单列表（不含购物车）
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	filter.IncludeCarts = false
	return r.list(r.db.Model(&models.Order{}).Where("user_id = ?", filter.UserID), filter)
}

// ListAdmin 管理端订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	return r.list(query, filter)
}

func (r *GormOrderRepository) list(query *gorm.DB, filter OrderListFilter) ([]models.Order, int64, error) {
	if !filter.IncludeCarts {
		query = query.Where("status <> ?", constants.OrderStatusCart)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if filter.WithItems {
		query = r.withItems(query)
	}
	var orders []models.Order
	if err := query.Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// HasCompletedOrderWithBox 判断用户的已完成订单中是否包含指定品类
func (r *GormOrderRepository) HasCompletedOrderWithBox(userID, orderID, boxTypeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id AND orders.deleted_at IS NULL").
		Where("orders.id = ? AND orders.user_id = ? AND orders.status = ?", orderID, userID, constants.OrderStatusCompleted).
		Where("order_items.box_type_id = ?", boxTypeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update 保存订单主表字段
func (r *GormOrderRepository) Update(order *models.Order) error {
	return r.db.Omit("Items").Save(order).Error
}

// UpdateFields 按字段更新订单
func (r *GormOrderRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateStatus 更新订单状态
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}
