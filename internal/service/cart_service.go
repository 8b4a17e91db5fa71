package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boxmart-next/internal/cache"
	"github.com/boxmart-next/internal/config"
	"github.com/boxmart-next/internal/constants"
	"github.com/boxmart-next/internal/logger"
	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultMaxLineQuantity = 1000
	defaultCartLockTTL     = 10 * time.Second
	cartLockWait           = 3 * time.Second
)

// CartService 购物车服务
// 购物车即 status=Cart 的订单，每个用户最多一个，清空后物理删除。
type CartService struct {
	orderRepo       repository.OrderRepository
	boxTypeRepo     repository.BoxTypeRepository
	store           cache.Store
	maxLineQuantity int
	lockTTL         time.Duration
}

// NewCartService 创建购物车服务
func NewCartService(orderRepo repository.OrderRepository, boxTypeRepo repository.BoxTypeRepository, store cache.Store, cfg config.OrderConfig) *CartService {
	maxLine := cfg.MaxLineQuantity
	if maxLine <= 0 {
		maxLine = defaultMaxLineQuantity
	}
	lockTTL := defaultCartLockTTL
	if cfg.CartLockSeconds > 0 {
		lockTTL = time.Duration(cfg.CartLockSeconds) * time.Second
	}
	return &CartService{
		orderRepo:       orderRepo,
		boxTypeRepo:     boxTypeRepo,
		store:           store,
		maxLineQuantity: maxLine,
		lockTTL:         lockTTL,
	}
}

// GetCart 获取用户购物车，无购物车或无商品时返回 ErrEmptyCart
func (s *CartService) GetCart(userID uint) (*models.Order, error) {
	cart, err := s.orderRepo.GetOpenCart(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	return cart, nil
}

// AddItem 加入购物车，同品类合并数量并刷新单价
func (s *CartService) AddItem(ctx context.Context, userID, boxTypeID uint, quantity int) (*models.Order, error) {
	if quantity <= 0 || quantity > s.maxLineQuantity {
		return nil, ErrInvalidQuantity
	}
	var result *models.Order
	err := s.withCartLock(ctx, userID, func(tx *gorm.DB) error {
		boxType, err := s.boxTypeRepo.WithTx(tx).GetActiveByID(boxTypeID)
		if err != nil {
			return err
		}
		if boxType == nil {
			return ErrBoxTypeNotFound
		}

		orderRepo := s.orderRepo.WithTx(tx)
		cart, err := s.loadOrCreateCart(tx, userID)
		if err != nil {
			return err
		}

		item, err := orderRepo.GetItemByBoxType(cart.ID, boxType.ID)
		if err != nil {
			return err
		}
		if item != nil {
			if item.Quantity+quantity > s.maxLineQuantity {
				return ErrInvalidQuantity
			}
			item.Quantity += quantity
			item.UnitPrice = boxType.Price
			item.BoxName = boxType.Name
			if err := orderRepo.UpdateItem(item); err != nil {
				return err
			}
		} else {
			item = &models.OrderItem{
				OrderID:   cart.ID,
				BoxTypeID: boxType.ID,
				BoxName:   boxType.Name,
				Quantity:  quantity,
				UnitPrice: boxType.Price,
			}
			item.StampCreate(userID)
			if err := orderRepo.CreateItem(item); err != nil {
				return err
			}
		}

		result, err = s.recompute(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("cart_item_added", "user_id", userID, "box_type_id", boxTypeID, "quantity", quantity, "order_id", result.ID)
	return result, nil
}

// UpdateQuantity 修改购物车行数量，0 表示删除该行；返回 nil 表示购物车已清空
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) (*models.Order, error) {
	if quantity < 0 || quantity > s.maxLineQuantity {
		return nil, ErrInvalidQuantity
	}
	var result *models.Order
	err := s.withCartLock(ctx, userID, func(tx *gorm.DB) error {
		cart, item, err := s.lockCartItem(tx, userID, itemID)
		if err != nil {
			return err
		}
		orderRepo := s.orderRepo.WithTx(tx)
		if quantity == 0 {
			if err := orderRepo.DeleteItem(item.ID); err != nil {
				return err
			}
		} else {
			item.Quantity = quantity
			if err := orderRepo.UpdateItem(item); err != nil {
				return err
			}
		}
		result, err = s.recompute(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveItem 删除购物车行；返回 nil 表示购物车已清空
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint) (*models.Order, error) {
	var result *models.Order
	err := s.withCartLock(ctx, userID, func(tx *gorm.DB) error {
		cart, item, err := s.lockCartItem(tx, userID, itemID)
		if err != nil {
			return err
		}
		if err := s.orderRepo.WithTx(tx).DeleteItem(item.ID); err != nil {
			return err
		}
		result, err = s.recompute(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ClearCart 清空购物车，无购物车时直接返回
func (s *CartService) ClearCart(ctx context.Context, userID uint) error {
	return s.withCartLock(ctx, userID, func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		cart, err := orderRepo.GetOpenCartForUpdate(userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return nil
		}
		return orderRepo.HardDelete(cart.ID)
	})
}

func (s *CartService) withCartLock(ctx context.Context, userID uint, fn func(tx *gorm.DB) error) error {
	return withUserCartLock(ctx, s.store, userID, s.lockTTL, fn)
}

// withUserCartLock 按用户串行化购物车变更与结算，并在单个事务内执行
func withUserCartLock(ctx context.Context, store cache.Store, userID uint, ttl time.Duration, fn func(tx *gorm.DB) error) error {
	unlock, err := cache.Lock(ctx, store, cartLockKey(userID), ttl, cartLockWait)
	if err != nil {
		if errors.Is(err, cache.ErrLockTimeout) {
			return ErrCartBusy
		}
		return err
	}
	defer unlock()
	return models.DB.Transaction(fn)
}

func (s *CartService) lockCartItem(tx *gorm.DB, userID, itemID uint) (*models.Order, *models.OrderItem, error) {
	orderRepo := s.orderRepo.WithTx(tx)
	cart, err := orderRepo.GetOpenCartForUpdate(userID)
	if err != nil {
		return nil, nil, err
	}
	if cart == nil {
		return nil, nil, ErrEmptyCart
	}
	item, err := orderRepo.GetItem(cart.ID, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, ErrCartItemNotFound
	}
	return cart, item, nil
}

// loadOrCreateCart 获取或创建购物车；并发创建时唯一索引冲突则回读已存在的购物车
func (s *CartService) loadOrCreateCart(tx *gorm.DB, userID uint) (*models.Order, error) {
	orderRepo := s.orderRepo.WithTx(tx)
	cart, err := orderRepo.GetOpenCartForUpdate(userID)
	if err != nil || cart != nil {
		return cart, err
	}

	cart = &models.Order{
		OrderNo: generateOrderNo(constants.OrderNoPrefixCart),
		UserID:  userID,
	}
	cart.StampCreate(userID)
	if err := tx.SavePoint("cart_create").Error; err != nil {
		return nil, err
	}
	if err := orderRepo.CreateCart(cart); err != nil {
		if !repository.IsUniqueViolation(err) {
			return nil, err
		}
		if err := tx.RollbackTo("cart_create").Error; err != nil {
			return nil, err
		}
		existing, err := orderRepo.GetOpenCartForUpdate(userID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("%w: open cart vanished after unique conflict", ErrInternal)
		}
		return existing, nil
	}
	return cart, nil
}

// recompute 按全部行重新计算总价；无行时物理删除购物车并返回 nil
func (s *CartService) recompute(tx *gorm.DB, cartID uint) (*models.Order, error) {
	orderRepo := s.orderRepo.WithTx(tx)
	items, err := orderRepo.ListItems(cartID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		if err := orderRepo.HardDelete(cartID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	breakdown := CalculatePrice(priceLinesFromItems(items), nil)
	if err := orderRepo.UpdateFields(cartID, map[string]interface{}{
		"total_price": breakdown.TotalPrice,
		"final_price": breakdown.FinalPrice,
		"updated_at":  time.Now(),
	}); err != nil {
		return nil, err
	}
	return orderRepo.GetByID(cartID)
}

func cartLockKey(userID uint) string {
	return fmt.Sprintf("cart:lock:%d", userID)
}
