package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boxmart-next/internal/cache"
	"github.com/boxmart-next/internal/config"
	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/repository"

	"github.com/shopspring/decimal"
)

func newTestCartService(t *testing.T) (*CartService, *cache.MemoryStore) {
	t.Helper()
	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	svc := NewCartService(
		repository.NewOrderRepository(models.DB),
		repository.NewBoxTypeRepository(models.DB),
		store,
		config.OrderConfig{MaxLineQuantity: 1000},
	)
	return svc, store
}

func assertCartTotalInvariant(t *testing.T, cart *models.Order) {
	t.Helper()
	want := CalculatePrice(priceLinesFromItems(cart.Items), nil).TotalPrice
	if !cart.TotalPrice.Equal(want.Decimal) {
		t.Fatalf("cart total %s does not match lines %s", cart.TotalPrice, want)
	}
}

func TestCartAddItemPricesLines(t *testing.T) {
	db := setupServiceTestDB(t, "cart_add_item")
	user := createTestUser(t, db, "cart_add@example.com")
	box := createTestBoxType(t, db, "gift", 100000)
	svc, _ := newTestCartService(t)

	cart, err := svc.AddItem(context.Background(), user.ID, box.ID, 2)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if !cart.TotalPrice.Equal(decimal.NewFromInt(200000)) || !cart.FinalPrice.Equal(decimal.NewFromInt(200000)) {
		t.Fatalf("want 200000/200000 got %s/%s", cart.TotalPrice, cart.FinalPrice)
	}
	assertCartTotalInvariant(t, cart)
}

func TestCartAddItemMergesLineAndRefreshesPrice(t *testing.T) {
	db := setupServiceTestDB(t, "cart_merge_line")
	user := createTestUser(t, db, "cart_merge@example.com")
	box := createTestBoxType(t, db, "blind", 100000)
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, user.ID, box.ID, 1); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := db.Model(box).Update("price", models.NewMoneyFromInt(120000)).Error; err != nil {
		t.Fatalf("update price failed: %v", err)
	}
	cart, err := svc.AddItem(ctx, user.ID, box.ID, 2)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("line should be merged, got %+v", cart.Items)
	}
	if !cart.TotalPrice.Equal(decimal.NewFromInt(360000)) {
		t.Fatalf("merged line should use refreshed price, total=%s", cart.TotalPrice)
	}
	assertCartTotalInvariant(t, cart)

	if _, err := svc.AddItem(ctx, user.ID, box.ID, 998); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("exceeding line limit want ErrInvalidQuantity got %v", err)
	}
}

func TestCartAddItemValidation(t *testing.T) {
	db := setupServiceTestDB(t, "cart_add_validation")
	user := createTestUser(t, db, "cart_validation@example.com")
	box := createTestBoxType(t, db, "veggie", 50000)
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	for _, qty := range []int{0, -1, 1001} {
		if _, err := svc.AddItem(ctx, user.ID, box.ID, qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("quantity %d want ErrInvalidQuantity got %v", qty, err)
		}
	}
	if _, err := svc.AddItem(ctx, user.ID, box.ID+99, 1); !errors.Is(err, ErrBoxTypeNotFound) {
		t.Fatalf("unknown box want ErrBoxTypeNotFound got %v", err)
	}
	if err := db.Model(box).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate box failed: %v", err)
	}
	if _, err := svc.AddItem(ctx, user.ID, box.ID, 1); !errors.Is(err, ErrBoxTypeNotFound) {
		t.Fatalf("inactive box want ErrBoxTypeNotFound got %v", err)
	}
	if _, err := svc.GetCart(user.ID); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("failed adds must not leave a cart, got %v", err)
	}
}

func TestCartUpdateQuantityToZeroDeletesCart(t *testing.T) {
	db := setupServiceTestDB(t, "cart_update_zero")
	user := createTestUser(t, db, "cart_zero@example.com")
	box := createTestBoxType(t, db, "gift", 100000)
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, user.ID, box.ID, 2)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	cartID := cart.ID

	updated, err := svc.UpdateQuantity(ctx, user.ID, cart.Items[0].ID, 0)
	if err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}
	if updated != nil {
		t.Fatalf("emptied cart should be nil, got %+v", updated)
	}
	var count int64
	db.Unscoped().Model(&models.Order{}).Where("id = ?", cartID).Count(&count)
	if count != 0 {
		t.Fatalf("cart row should be hard deleted")
	}
	if _, err := svc.GetCart(user.ID); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("get cart want ErrEmptyCart got %v", err)
	}
}

func TestCartUpdateQuantityRecomputes(t *testing.T) {
	db := setupServiceTestDB(t, "cart_update_qty")
	user := createTestUser(t, db, "cart_qty@example.com")
	boxA := createTestBoxType(t, db, "a", 100000)
	boxB := createTestBoxType(t, db, "b", 30000)
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, user.ID, boxA.ID, 1); err != nil {
		t.Fatalf("add a failed: %v", err)
	}
	cart, err := svc.AddItem(ctx, user.ID, boxB.ID, 1)
	if err != nil {
		t.Fatalf("add b failed: %v", err)
	}

	cart, err = svc.UpdateQuantity(ctx, user.ID, cart.Items[1].ID, 5)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !cart.TotalPrice.Equal(decimal.NewFromInt(250000)) {
		t.Fatalf("total want 250000 got %s", cart.TotalPrice)
	}
	assertCartTotalInvariant(t, cart)

	if _, err := svc.UpdateQuantity(ctx, user.ID, cart.Items[1].ID, 1001); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("over limit want ErrInvalidQuantity got %v", err)
	}
	if _, err := svc.UpdateQuantity(ctx, user.ID, 9999, 1); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("unknown item want ErrCartItemNotFound got %v", err)
	}

	cart, err = svc.RemoveItem(ctx, user.ID, cart.Items[0].ID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(cart.Items) != 1 || !cart.TotalPrice.Equal(decimal.NewFromInt(150000)) {
		t.Fatalf("after remove want one line at 150000, got %d lines %s", len(cart.Items), cart.TotalPrice)
	}
}

func TestCartClearIsIdempotent(t *testing.T) {
	db := setupServiceTestDB(t, "cart_clear")
	user := createTestUser(t, db, "cart_clear@example.com")
	box := createTestBoxType(t, db, "gift", 100000)
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	if err := svc.ClearCart(ctx, user.ID); err != nil {
		t.Fatalf("clear without cart should be a no-op: %v", err)
	}
	if _, err := svc.AddItem(ctx, user.ID, box.ID, 3); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.ClearCart(ctx, user.ID); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if err := svc.ClearCart(ctx, user.ID); err != nil {
		t.Fatalf("second clear should be a no-op: %v", err)
	}
	if _, err := svc.GetCart(user.ID); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("cart should be empty, got %v", err)
	}

	// 清空后可以重新建车
	if _, err := svc.AddItem(ctx, user.ID, box.ID, 1); err != nil {
		t.Fatalf("re-add after clear failed: %v", err)
	}
}

func TestCartLockBusyReturnsConflict(t *testing.T) {
	db := setupServiceTestDB(t, "cart_lock_busy")
	user := createTestUser(t, db, "cart_busy@example.com")
	box := createTestBoxType(t, db, "gift", 100000)
	svc, store := newTestCartService(t)

	if ok, err := store.SetNX(context.Background(), cartLockKey(user.ID), "other", time.Minute); err != nil || !ok {
		t.Fatalf("preload lock failed: ok=%v err=%v", ok, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := svc.AddItem(ctx, user.ID, box.ID, 1)
	if !errors.Is(err, ErrCartBusy) {
		t.Fatalf("held lock want ErrCartBusy got %v", err)
	}
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("busy cart should be a conflict")
	}
}
