package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boxmart-next/internal/cache"
	"github.com/boxmart-next/internal/config"
	"github.com/boxmart-next/internal/constants"
	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/queue"
	"github.com/boxmart-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu      sync.Mutex
	placed  []uint
	changed []string
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, order *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, order.ID)
}

func (n *recordingNotifier) OrderStatusChanged(_ context.Context, order *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, order.Status)
}

type orderTestEnv struct {
	cart     *CartService
	orders   *OrderService
	discount *DiscountService
	store    *cache.MemoryStore
}

func newOrderTestEnv(t *testing.T, notifier OrderNotifier) *orderTestEnv {
	t.Helper()
	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	orderRepo := repository.NewOrderRepository(models.DB)
	boxTypeRepo := repository.NewBoxTypeRepository(models.DB)
	discountSvc := NewDiscountService(repository.NewDiscountRepository(models.DB), repository.NewUserDiscountRepository(models.DB))
	cfg := config.OrderConfig{MaxLineQuantity: 1000}
	return &orderTestEnv{
		cart:     NewCartService(orderRepo, boxTypeRepo, store, cfg),
		orders:   NewOrderService(orderRepo, repository.NewUserRepository(models.DB), boxTypeRepo, discountSvc, store, notifier, cfg),
		discount: discountSvc,
		store:    store,
	}
}

func checkoutInput(userID uint, code string) CheckoutInput {
	return CheckoutInput{
		UserID:        userID,
		DiscountCode:  code,
		RecipientName: "An",
		Phone:         "0900000000",
		Address:       "1 Le Loi",
		City:          "HCMC",
	}
}

func TestCheckoutAppliesPercentageDiscount(t *testing.T) {
	db := setupServiceTestDB(t, "checkout_discount")
	user := createTestUser(t, db, "checkout@example.com")
	box := createTestBoxType(t, db, "gift", 100000)
	discount := createTestDiscount(t, db, "SAVE10", 10, true)
	notifier := &recordingNotifier{}
	env := newOrderTestEnv(t, notifier)
	ctx := context.Background()

	if _, err := env.cart.AddItem(ctx, user.ID, box.ID, 2); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	order, err := env.orders.Checkout(ctx, checkoutInput(user.ID, "save10"))
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want Pending got %s", order.Status)
	}
	if !order.TotalPrice.Equal(decimal.NewFromInt(200000)) || !order.FinalPrice.Equal(decimal.NewFromInt(180000)) {
		t.Fatalf("want 200000/180000 got %s/%s", order.TotalPrice, order.FinalPrice)
	}
	if !strings.HasPrefix(order.OrderNo, constants.OrderNoPrefixOrder) {
		t.Fatalf("order no should be re-issued, got %s", order.OrderNo)
	}
	if order.DiscountID == nil || *order.DiscountID != discount.ID || order.DiscountCode != "SAVE10" {
		t.Fatalf("discount not stamped: %+v %s", order.DiscountID, order.DiscountCode)
	}
	if order.DeliveryMethod != constants.DeliveryMethodStandard || order.PaymentMethod != constants.PaymentMethodCOD {
		t.Fatalf("default methods not applied: %s/%s", order.DeliveryMethod, order.PaymentMethod)
	}
	if order.Email != user.Email {
		t.Fatalf("email should default to account email, got %s", order.Email)
	}

	used, err := repository.NewUserDiscountRepository(db).Exists(user.ID, discount.ID)
	if err != nil || !used {
		t.Fatalf("discount usage should be recorded, used=%v err=%v", used, err)
	}
	if _, err := env.cart.GetCart(user.ID); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("cart should be gone after checkout, got %v", err)
	}
	if len(notifier.placed) != 1 || notifier.placed[0] != order.ID {
		t.Fatalf("notifier should fire once for the order, got %v", notifier.placed)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := setupServiceTestDB(t, "checkout_empty")
	user := createTestUser(t, db, "empty@example.com")
	env := newOrderTestEnv(t, nil)

	if _, err := env.orders.Checkout(context.Background(), checkoutInput(user.ID, "")); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart got %v", err)
	}
	if !errors.Is(ErrEmptyCart, ErrNotFound) {
		t.Fatalf("empty cart should classify as not found")
	}
}

func TestCheckoutCustomerNotFound(t *testing.T) {
	setupServiceTestDB(t, "checkout_no_customer")
	env := newOrderTestEnv(t, nil)

	if _, err := env.orders.Checkout(context.Background(), checkoutInput(404, "")); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("want ErrCustomerNotFound got %v", err)
	}
}

func TestCheckoutRejectsUsedDiscountAndKeepsCart(t *testing.T) {
	db := setupServiceTestDB(t, "checkout_used_discount")
	user := createTestUser(t, db, "used@example.com")
	box := createTestBoxType(t, db, "gift", 100000)
	createTestDiscount(t, db, "SAVE10", 10, true)
	env := newOrderTestEnv(t, nil)
	ctx := context.Background()

	if _, err := env.discount.Redeem("SAVE10", user.ID, 999); err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}
	if _, err := env.cart.AddItem(ctx, user.ID, box.ID, 1); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	_, err := env.orders.Checkout(ctx, checkoutInput(user.ID, "SAVE10"))
	if !errors.Is(err, ErrDiscountAlreadyUsed) || !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrDiscountAlreadyUsed got %v", err)
	}
	cart, err := env.cart.GetCart(user.ID)
	if err != nil {
		t.Fatalf("cart should survive failed checkout: %v", err)
	}
	if cart.Status != constants.OrderStatusCart {
		t.Fatalf("cart status changed to %s", cart.Status)
	}
}

func TestCheckoutInvalidDiscount(t *testing.T) {
	db := setupServiceTestDB(t, "checkout_bad_discount")
	user := createTestUser(t, db, "bad_discount@example.com")
	box := createTestBoxType(t, db, "gift", 100000)
	env := newOrderTestEnv(t, nil)
	ctx := context.Background()

	if _, err := env.cart.AddItem(ctx, user.ID, box.ID, 1); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if _, err := env.orders.Checkout(ctx, checkoutInput(user.ID, "NOPE")); !errors.Is(err, ErrInvalidDiscount) {
		t.Fatalf("want ErrInvalidDiscount got %v", err)
	}
}

func TestCheckoutValidatesRecipient(t *testing.T) {
	db := setupServiceTestDB(t, "checkout_recipient")
	user := createTestUser(t, db, "recipient@example.com")
	env := newOrderTestEnv(t, nil)

	input := checkoutInput(user.ID, "")
	input.Address = ""
	if _, err := env.orders.Checkout(context.Background(), input); !errors.Is(err, ErrRecipientRequired) {
		t.Fatalf("want ErrRecipientRequired got %v", err)
	}
	input.DeliveryMethod = "Drone"
	if _, err := env.orders.Checkout(context.Background(), input); !errors.Is(err, ErrInvalidDeliveryMethod) {
		t.Fatalf("want ErrInvalidDeliveryMethod got %v", err)
	}
}

func TestCheckoutNotificationFailureDoesNotRollback(t *testing.T) {
	db := setupServiceTestDB(t, "checkout_notify_fail")
	user := createTestUser(t, db, "notify@example.com")
	box := createTestBoxType(t, db, "gift", 100000)

	emailSvc := NewEmailService(&config.EmailConfig{Enabled: true, Provider: "smtp"})
	var mu sync.Mutex
	var sentTo []string
	emailSvc.transport = func(_ *config.EmailConfig, toEmail, _, _ string) error {
		mu.Lock()
		defer mu.Unlock()
		sentTo = append(sentTo, toEmail)
		return errors.New("smtp down")
	}
	queueClient, _ := queue.NewClient(nil)
	notifier := NewNotificationService(
		repository.NewOrderRepository(db),
		repository.NewUserRepository(db),
		emailSvc,
		queueClient,
		config.NotificationConfig{AdminEmails: []string{"ops@example.com"}},
		config.OrderConfig{HighValueThreshold: 150000},
	)
	env := newOrderTestEnv(t, notifier)
	ctx := context.Background()

	if _, err := env.cart.AddItem(ctx, user.ID, box.ID, 2); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	order, err := env.orders.Checkout(ctx, checkoutInput(user.ID, ""))
	if err != nil {
		t.Fatalf("checkout should succeed despite email failures: %v", err)
	}
	var stored models.Order
	if err := db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusPending {
		t.Fatalf("order should stay Pending, got %s", stored.Status)
	}
	notifier.Wait()
	mu.Lock()
	defer mu.Unlock()
	// 确认邮件 + 管理员通知 + 大额告警
	if len(sentTo) != 3 {
		t.Fatalf("want 3 email attempts got %v", sentTo)
	}
}

func TestCheckoutDoesNotWaitForInlineEmail(t *testing.T) {
	db := setupServiceTestDB(t, "checkout_notify_slow")
	user := createTestUser(t, db, "slow@example.com")
	box := createTestBoxType(t, db, "gift", 50000)

	release := make(chan struct{})
	var attempts int32
	emailSvc := NewEmailService(&config.EmailConfig{Enabled: true, Provider: "smtp"})
	emailSvc.transport = func(_ *config.EmailConfig, _, _, _ string) error {
		atomic.AddInt32(&attempts, 1)
		<-release
		return nil
	}
	queueClient, _ := queue.NewClient(nil)
	notifier := NewNotificationService(
		repository.NewOrderRepository(db),
		repository.NewUserRepository(db),
		emailSvc,
		queueClient,
		config.NotificationConfig{AdminEmails: []string{"ops@example.com"}},
		config.OrderConfig{},
	)
	env := newOrderTestEnv(t, notifier)
	ctx, cancel := context.WithCancel(context.Background())

	if _, err := env.cart.AddItem(ctx, user.ID, box.ID, 1); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	done := make(chan error, 1)
	go func() {
		_, err := env.orders.Checkout(ctx, checkoutInput(user.ID, ""))
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("checkout failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		close(release)
		t.Fatalf("checkout blocked on email delivery")
	}
	// 请求结束后发送仍继续
	cancel()
	close(release)
	notifier.Wait()
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Fatalf("want confirmation and admin notice attempts, got %d", got)
	}
}

func TestPlaceOrderTxUsesPriceOverride(t *testing.T) {
	db := setupServiceTestDB(t, "place_order_override")
	user := createTestUser(t, db, "override@example.com")
	box := createTestBoxType(t, db, "blind", 100000)
	env := newOrderTestEnv(t, nil)
	override := decimal.NewFromInt(680000)

	var order *models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = env.orders.PlaceOrderTx(tx, PlaceOrderInput{
			UserID:        user.ID,
			Items:         []PlaceOrderItem{{BoxTypeID: box.ID, Quantity: 8}},
			PriceOverride: &override,
		})
		return err
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	var stored models.Order
	if err := db.Preload("Items").First(&stored, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if !stored.TotalPrice.Equal(decimal.NewFromInt(800000)) || !stored.FinalPrice.Equal(override) {
		t.Fatalf("want list 800000 final 680000 got %s/%s", stored.TotalPrice, stored.FinalPrice)
	}
	if stored.Status != constants.OrderStatusPending || len(stored.Items) != 1 || stored.Items[0].Quantity != 8 {
		t.Fatalf("unexpected stored order: %+v", stored)
	}
}

func TestBatchUpdateStatusFollowsTransitions(t *testing.T) {
	db := setupServiceTestDB(t, "batch_status")
	user := createTestUser(t, db, "batch@example.com")
	box := createTestBoxType(t, db, "gift", 100000)
	notifier := &recordingNotifier{}
	env := newOrderTestEnv(t, notifier)
	ctx := context.Background()

	var order *models.Order
	if err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = env.orders.PlaceOrderTx(tx, PlaceOrderInput{UserID: user.ID, Items: []PlaceOrderItem{{BoxTypeID: box.ID, Quantity: 1}}})
		return err
	}); err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if _, err := env.orders.BatchUpdateStatus(ctx, []uint{order.ID}, constants.OrderStatusCompleted, 1); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("Pending -> Completed should be rejected, got %v", err)
	}
	if _, err := env.orders.BatchUpdateStatus(ctx, []uint{order.ID}, "Shipped", 1); !errors.Is(err, ErrInvalidOrderStatus) {
		t.Fatalf("unknown status should be rejected, got %v", err)
	}
	if _, err := env.orders.BatchUpdateStatus(ctx, []uint{order.ID}, constants.OrderStatusProcessing, 1); err != nil {
		t.Fatalf("Pending -> Processing failed: %v", err)
	}
	orders, err := env.orders.BatchUpdateStatus(ctx, []uint{order.ID, order.ID}, constants.OrderStatusCompleted, 1)
	if err != nil {
		t.Fatalf("Processing -> Completed failed: %v", err)
	}
	if len(orders) != 1 || !orders[0].IsDelivered || orders[0].DeliveredAt == nil {
		t.Fatalf("completed order should be delivered: %+v", orders)
	}
	if len(notifier.changed) != 2 {
		t.Fatalf("want 2 status notifications got %v", notifier.changed)
	}
}

func TestCancelOrderChecksOwnershipAndStatus(t *testing.T) {
	db := setupServiceTestDB(t, "cancel_order")
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	box := createTestBoxType(t, db, "gift", 100000)
	env := newOrderTestEnv(t, nil)
	ctx := context.Background()

	var order *models.Order
	if err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = env.orders.PlaceOrderTx(tx, PlaceOrderInput{UserID: owner.ID, Items: []PlaceOrderItem{{BoxTypeID: box.ID, Quantity: 1}}})
		return err
	}); err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if _, err := env.orders.GetOrder(other.ID, order.ID); !errors.Is(err, ErrOrderForbidden) || !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want ErrOrderForbidden got %v", err)
	}
	if _, err := env.orders.CancelOrder(ctx, other.ID, order.ID); !errors.Is(err, ErrOrderForbidden) {
		t.Fatalf("other user cancel want ErrOrderForbidden got %v", err)
	}
	cancelled, err := env.orders.CancelOrder(ctx, owner.ID, order.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("unexpected cancelled order: %+v", cancelled)
	}
	if _, err := env.orders.CancelOrder(ctx, owner.ID, order.ID); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("second cancel want ErrOrderStatusInvalid got %v", err)
	}
}

func TestMarkPaidMovesToProcessing(t *testing.T) {
	db := setupServiceTestDB(t, "mark_paid")
	user := createTestUser(t, db, "paid@example.com")
	box := createTestBoxType(t, db, "gift", 100000)
	env := newOrderTestEnv(t, nil)

	var order *models.Order
	if err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = env.orders.PlaceOrderTx(tx, PlaceOrderInput{UserID: user.ID, Items: []PlaceOrderItem{{BoxTypeID: box.ID, Quantity: 1}}})
		return err
	}); err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	paid, err := env.orders.MarkPaid(context.Background(), order.ID, 1)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if !paid.IsPaid || paid.Status != constants.OrderStatusProcessing {
		t.Fatalf("unexpected paid order: %+v", paid)
	}
	if _, err := env.orders.MarkPaid(context.Background(), order.ID, 1); !errors.Is(err, ErrOrderAlreadyPaid) {
		t.Fatalf("second mark paid want ErrOrderAlreadyPaid got %v", err)
	}
}
