package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/boxmart-next/internal/cache"
	"github.com/boxmart-next/internal/config"
	"github.com/boxmart-next/internal/constants"
	"github.com/boxmart-next/internal/logger"
	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/repository"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentLinkCanceller 取消订单关联的在线支付链接
type PaymentLinkCanceller interface {
	CancelOrderPaymentLink(ctx context.Context, order *models.Order) error
}

// OrderService 订单服务
type OrderService struct {
	orderRepo       repository.OrderRepository
	userRepo        repository.UserRepository
	boxTypeRepo     repository.BoxTypeRepository
	discountService *DiscountService
	store           cache.Store
	notifier        OrderNotifier
	linkCanceller   PaymentLinkCanceller
	maxLineQuantity int
	lockTTL         time.Duration
	now             func() time.Time
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	boxTypeRepo repository.BoxTypeRepository,
	discountService *DiscountService,
	store cache.Store,
	notifier OrderNotifier,
	cfg config.OrderConfig,
) *OrderService {
	maxLine := cfg.MaxLineQuantity
	if maxLine <= 0 {
		maxLine = defaultMaxLineQuantity
	}
	lockTTL := defaultCartLockTTL
	if cfg.CartLockSeconds > 0 {
		lockTTL = time.Duration(cfg.CartLockSeconds) * time.Second
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &OrderService{
		orderRepo:       orderRepo,
		userRepo:        userRepo,
		boxTypeRepo:     boxTypeRepo,
		discountService: discountService,
		store:           store,
		notifier:        notifier,
		maxLineQuantity: maxLine,
		lockTTL:         lockTTL,
		now:             time.Now,
	}
}

// SetPaymentLinkCanceller 注入支付链接取消器（支付服务创建后回填）
func (s *OrderService) SetPaymentLinkCanceller(canceller PaymentLinkCanceller) {
	s.linkCanceller = canceller
}

// CheckoutInput 结算输入
type CheckoutInput struct {
	UserID         uint
	DeliveryMethod string
	PaymentMethod  string
	DiscountCode   string
	RecipientName  string
	Phone          string
	Email          string
	Address        string
	Ward           string
	District       string
	City           string
	Notes          string
}

// PlaceOrderItem 直接下单的订单行
type PlaceOrderItem struct {
	BoxTypeID uint
	Quantity  int
}

// PlaceOrderInput 直接下单输入（不经过购物车）
// PriceOverride 非空时应付金额直接取该值，TotalPrice 仍为标价合计。
type PlaceOrderInput struct {
	UserID         uint
	Items          []PlaceOrderItem
	DeliveryMethod string
	PaymentMethod  string
	RecipientName  string
	Phone          string
	Email          string
	Address        string
	Notes          string
	PriceOverride  *decimal.Decimal
	SubscriptionID *uint
}

var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusCompleted: true,
		constants.OrderStatusCancelled: true,
	},
}

// Checkout 购物车结算：Cart -> Pending，折扣在同一事务内核销，提交后发送通知
func (s *OrderService) Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	input = normalizeCheckoutInput(input)
	if err := validateOrderMethods(input.DeliveryMethod, input.PaymentMethod); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrCustomerNotFound
	}
	if err := fillRecipient(&input, user); err != nil {
		return nil, err
	}

	var orderID uint
	err = withUserCartLock(ctx, s.store, input.UserID, s.lockTTL, func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		cart, err := orderRepo.GetOpenCartForUpdate(input.UserID)
		if err != nil {
			return err
		}
		if cart == nil {
			return ErrEmptyCart
		}
		items, err := orderRepo.ListItems(cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		var discount *models.Discount
		if input.DiscountCode != "" {
			discount, err = validateDiscountForUser(
				s.discountService.discountRepo.WithTx(tx),
				s.discountService.usageRepo.WithTx(tx),
				input.DiscountCode, input.UserID, s.now(),
			)
			if err != nil {
				return err
			}
		}
		breakdown := CalculatePrice(priceLinesFromItems(items), discount)

		updates := map[string]interface{}{
			"order_no":        generateOrderNo(constants.OrderNoPrefixOrder),
			"delivery_method": input.DeliveryMethod,
			"payment_method":  input.PaymentMethod,
			"recipient_name":  input.RecipientName,
			"phone":           input.Phone,
			"email":           input.Email,
			"address":         input.Address,
			"ward":            input.Ward,
			"district":        input.District,
			"city":            input.City,
			"notes":           input.Notes,
			"total_price":     breakdown.TotalPrice,
			"final_price":     breakdown.FinalPrice,
			"discount_code":   "",
			"discount_id":     nil,
			"is_paid":         false,
			"paid_at":         nil,
			"is_delivered":    false,
			"delivered_at":    nil,
			"updated_by":      models.Actor(input.UserID),
		}
		if discount != nil {
			if err := s.discountService.RedeemTx(tx, discount, input.UserID, cart.ID); err != nil {
				return err
			}
			updates["discount_code"] = discount.Code
			updates["discount_id"] = discount.ID
		}
		if err := orderRepo.UpdateStatus(cart.ID, constants.OrderStatusPending, updates); err != nil {
			return err
		}
		orderID = cart.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	logger.Infow("order_checkout_completed",
		"order_id", order.ID,
		"user_id", order.UserID,
		"order_no", order.OrderNo,
		"final_price", order.FinalPrice.String(),
		"discount_code", order.DiscountCode,
	)
	s.notifier.OrderPlaced(ctx, order)
	return order, nil
}

// PlaceOrderTx 在调用方事务中直接创建 Pending 订单，调用方提交后自行发送通知
func (s *OrderService) PlaceOrderTx(tx *gorm.DB, input PlaceOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrOrderItemsRequired
	}
	deliveryMethod := strings.TrimSpace(input.DeliveryMethod)
	if deliveryMethod == "" {
		deliveryMethod = constants.DeliveryMethodStandard
	}
	paymentMethod := strings.TrimSpace(input.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = constants.PaymentMethodCOD
	}
	if err := validateOrderMethods(deliveryMethod, paymentMethod); err != nil {
		return nil, err
	}

	boxTypeRepo := s.boxTypeRepo.WithTx(tx)
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity <= 0 || line.Quantity > s.maxLineQuantity {
			return nil, ErrInvalidQuantity
		}
		boxType, err := boxTypeRepo.GetActiveByID(line.BoxTypeID)
		if err != nil {
			return nil, err
		}
		if boxType == nil {
			return nil, ErrBoxTypeNotFound
		}
		item := models.OrderItem{
			BoxTypeID: boxType.ID,
			BoxName:   boxType.Name,
			Quantity:  line.Quantity,
			UnitPrice: boxType.Price,
		}
		item.StampCreate(input.UserID)
		items = append(items, item)
	}

	breakdown := CalculatePrice(priceLinesFromItems(items), nil)
	finalPrice := breakdown.FinalPrice
	if input.PriceOverride != nil {
		finalPrice = models.NewMoneyFromDecimal(clampZero(*input.PriceOverride))
	}

	order := &models.Order{
		OrderNo:        generateOrderNo(constants.OrderNoPrefixOrder),
		UserID:         input.UserID,
		Status:         constants.OrderStatusPending,
		TotalPrice:     breakdown.TotalPrice,
		FinalPrice:     finalPrice,
		DeliveryMethod: deliveryMethod,
		PaymentMethod:  paymentMethod,
		RecipientName:  strings.TrimSpace(input.RecipientName),
		Phone:          strings.TrimSpace(input.Phone),
		Email:          strings.TrimSpace(input.Email),
		Address:        strings.TrimSpace(input.Address),
		Notes:          strings.TrimSpace(input.Notes),
		SubscriptionID: input.SubscriptionID,
	}
	order.StampCreate(input.UserID)
	if err := s.orderRepo.WithTx(tx).Create(order, items); err != nil {
		return nil, err
	}
	return order, nil
}

// NotifyOrderPlaced 供直接下单的调用方在事务提交后触发通知
func (s *OrderService) NotifyOrderPlaced(ctx context.Context, order *models.Order) {
	s.notifier.OrderPlaced(ctx, order)
}

// GetOrder 获取用户订单（购物车不可见）
func (s *OrderService) GetOrder(userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.Status == constants.OrderStatusCart {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrOrderForbidden
	}
	return order, nil
}

// ListOrders 用户订单列表
func (s *OrderService) ListOrders(userID uint, page, pageSize int) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(repository.OrderListFilter{
		UserID:    userID,
		Page:      page,
		PageSize:  pageSize,
		WithItems: true,
	})
}

// ListAdmin 管理端订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.WithItems = true
	return s.orderRepo.ListAdmin(filter)
}

// GetOrderForAdmin 管理端获取订单详情
func (s *OrderService) GetOrderForAdmin(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// CancelOrder 用户取消未支付的待处理订单
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	var cancelled *models.Order
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil || order.Status == constants.OrderStatusCart {
			return ErrOrderNotFound
		}
		if order.UserID != userID {
			return ErrOrderForbidden
		}
		if order.Status != constants.OrderStatusPending || order.IsPaid {
			return ErrOrderStatusInvalid
		}
		now := s.now()
		if err := orderRepo.UpdateStatus(order.ID, constants.OrderStatusCancelled, map[string]interface{}{
			"cancelled_at": now,
			"updated_by":   models.Actor(userID),
		}); err != nil {
			return err
		}
		order.Status = constants.OrderStatusCancelled
		order.CancelledAt = &now
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cancelled.PaymentLinkID != "" && s.linkCanceller != nil {
		if err := s.linkCanceller.CancelOrderPaymentLink(ctx, cancelled); err != nil {
			logger.Warnw("order_cancel_payment_link_failed",
				"order_id", cancelled.ID,
				"payment_link_id", cancelled.PaymentLinkID,
				"error", err,
			)
		}
	}
	logger.Infow("order_cancelled_by_user", "order_id", cancelled.ID, "user_id", userID)
	s.notifier.OrderStatusChanged(ctx, cancelled)
	return cancelled, nil
}

// BatchUpdateStatus 管理端批量更新订单状态，任一订单不满足流转规则则整体失败
func (s *OrderService) BatchUpdateStatus(ctx context.Context, orderIDs []uint, target string, actorID uint) ([]models.Order, error) {
	target = strings.TrimSpace(target)
	if target != constants.OrderStatusProcessing &&
		target != constants.OrderStatusCompleted &&
		target != constants.OrderStatusCancelled {
		return nil, ErrInvalidOrderStatus
	}
	ids := lo.Uniq(lo.Filter(orderIDs, func(id uint, _ int) bool { return id > 0 }))
	if len(ids) == 0 {
		return nil, ErrOrderItemsRequired
	}

	changed := make([]uint, 0, len(ids))
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		now := s.now()
		for _, id := range ids {
			order, err := orderRepo.GetByIDForUpdate(id)
			if err != nil {
				return err
			}
			if order == nil || order.Status == constants.OrderStatusCart {
				return fmt.Errorf("%w: order %d", ErrOrderNotFound, id)
			}
			if order.Status == target {
				continue
			}
			if !isTransitionAllowed(order.Status, target) {
				return fmt.Errorf("%w: order %d %s -> %s", ErrOrderStatusInvalid, id, order.Status, target)
			}
			updates := map[string]interface{}{"updated_by": models.Actor(actorID)}
			switch target {
			case constants.OrderStatusCompleted:
				updates["is_delivered"] = true
				updates["delivered_at"] = now
			case constants.OrderStatusCancelled:
				updates["cancelled_at"] = now
			}
			if err := orderRepo.UpdateStatus(id, target, updates); err != nil {
				return err
			}
			changed = append(changed, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	changedSet := lo.SliceToMap(changed, func(id uint) (uint, struct{}) { return id, struct{}{} })
	for i := range orders {
		if _, ok := changedSet[orders[i].ID]; ok {
			s.notifier.OrderStatusChanged(ctx, &orders[i])
		}
	}
	logger.Infow("order_batch_status_updated",
		"target_status", target,
		"order_ids", ids,
		"changed", len(changed),
		"actor_id", actorID,
	)
	return orders, nil
}

// MarkPaid 管理端确认线下收款（COD/银行转账）
func (s *OrderService) MarkPaid(ctx context.Context, orderID, actorID uint) (*models.Order, error) {
	var paid *models.Order
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil || order.Status == constants.OrderStatusCart {
			return ErrOrderNotFound
		}
		if err := s.MarkPaidTx(tx, order, s.now(), actorID); err != nil {
			return err
		}
		paid = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.OrderStatusChanged(ctx, paid)
	return paid, nil
}

// MarkPaidTx 在调用方事务中标记订单已支付并流转到 Processing，order 须已加行锁
func (s *OrderService) MarkPaidTx(tx *gorm.DB, order *models.Order, paidAt time.Time, actorID uint) error {
	if order.IsPaid {
		return ErrOrderAlreadyPaid
	}
	if order.Status != constants.OrderStatusPending {
		return ErrOrderStatusInvalid
	}
	if err := s.orderRepo.WithTx(tx).UpdateStatus(order.ID, constants.OrderStatusProcessing, map[string]interface{}{
		"is_paid":    true,
		"paid_at":    paidAt,
		"updated_by": models.Actor(actorID),
	}); err != nil {
		return err
	}
	order.IsPaid = true
	order.PaidAt = &paidAt
	order.Status = constants.OrderStatusProcessing
	return nil
}

// CancelUnpaidTx 在调用方事务中取消未支付的待处理订单，其余状态不变并返回 false
func (s *OrderService) CancelUnpaidTx(tx *gorm.DB, order *models.Order, at time.Time) (bool, error) {
	if order.IsPaid || order.Status != constants.OrderStatusPending {
		return false, nil
	}
	if err := s.orderRepo.WithTx(tx).UpdateStatus(order.ID, constants.OrderStatusCancelled, map[string]interface{}{
		"cancelled_at": at,
	}); err != nil {
		return false, err
	}
	order.Status = constants.OrderStatusCancelled
	order.CancelledAt = &at
	return true, nil
}

// NotifyStatusChanged 供支付回调在事务提交后触发状态通知
func (s *OrderService) NotifyStatusChanged(ctx context.Context, order *models.Order) {
	s.notifier.OrderStatusChanged(ctx, order)
}

func normalizeCheckoutInput(input CheckoutInput) CheckoutInput {
	input.DeliveryMethod = strings.TrimSpace(input.DeliveryMethod)
	if input.DeliveryMethod == "" {
		input.DeliveryMethod = constants.DeliveryMethodStandard
	}
	input.PaymentMethod = strings.TrimSpace(input.PaymentMethod)
	if input.PaymentMethod == "" {
		input.PaymentMethod = constants.PaymentMethodCOD
	}
	input.DiscountCode = strings.ToUpper(strings.TrimSpace(input.DiscountCode))
	input.RecipientName = strings.TrimSpace(input.RecipientName)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = strings.TrimSpace(input.Email)
	input.Address = strings.TrimSpace(input.Address)
	input.Ward = strings.TrimSpace(input.Ward)
	input.District = strings.TrimSpace(input.District)
	input.City = strings.TrimSpace(input.City)
	input.Notes = strings.TrimSpace(input.Notes)
	return input
}

func validateOrderMethods(deliveryMethod, paymentMethod string) error {
	switch deliveryMethod {
	case constants.DeliveryMethodStandard, constants.DeliveryMethodExpress, constants.DeliveryMethodPickup:
	default:
		return ErrInvalidDeliveryMethod
	}
	switch paymentMethod {
	case constants.PaymentMethodCOD, constants.PaymentMethodPayOS, constants.PaymentMethodBankTransfer:
	default:
		return ErrInvalidPaymentMethod
	}
	return nil
}

// fillRecipient 收件信息缺省取账号资料；非自提必须有收件人、电话与地址
func fillRecipient(input *CheckoutInput, user *models.User) error {
	if input.RecipientName == "" {
		input.RecipientName = strings.TrimSpace(user.DisplayName)
	}
	if input.Phone == "" {
		input.Phone = strings.TrimSpace(user.Phone)
	}
	if input.Email == "" {
		input.Email = user.Email
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return ErrInvalidEmail
	}
	if input.DeliveryMethod == constants.DeliveryMethodPickup {
		return nil
	}
	if input.RecipientName == "" || input.Phone == "" || input.Address == "" {
		return ErrRecipientRequired
	}
	return nil
}

func isTransitionAllowed(current, target string) bool {
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

func generateOrderNo(prefix string) string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("%s%s%s", prefix, now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}

type noopNotifier struct{}

func (noopNotifier) OrderPlaced(context.Context, *models.Order)        {}
func (noopNotifier) OrderStatusChanged(context.Context, *models.Order) {}
