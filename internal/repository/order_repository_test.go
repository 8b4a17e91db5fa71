package repository

import (
	"testing"

	"github.com/boxmart-next/internal/constants"
	"github.com/boxmart-next/internal/models"
)

func TestOrderRepositoryOpenCartLifecycle(t *testing.T) {
	db := setupRepositoryTestDB(t, "order_repo_cart")
	repo := NewOrderRepository(db)
	user := createRepositoryTestUser(t, db, "cart_repo@example.com")
	box := createRepositoryTestBoxType(t, db, "gift", 150000)

	cart, err := repo.GetOpenCart(user.ID)
	if err != nil {
		t.Fatalf("get open cart failed: %v", err)
	}
	if cart != nil {
		t.Fatalf("expected no cart before creation")
	}

	cart = &models.Order{OrderNo: "CT-1", UserID: user.ID}
	if err := repo.CreateCart(cart); err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if err := repo.CreateItem(&models.OrderItem{
		OrderID:   cart.ID,
		BoxTypeID: box.ID,
		BoxName:   box.Name,
		Quantity:  2,
		UnitPrice: box.Price,
	}); err != nil {
		t.Fatalf("create item failed: %v", err)
	}

	locked, err := repo.GetOpenCartForUpdate(user.ID)
	if err != nil {
		t.Fatalf("get cart for update failed: %v", err)
	}
	if locked == nil || locked.ID != cart.ID || len(locked.Items) != 1 {
		t.Fatalf("unexpected locked cart: %+v", locked)
	}

	if err := repo.HardDelete(cart.ID); err != nil {
		t.Fatalf("hard delete failed: %v", err)
	}
	var remaining int64
	db.Unscoped().Model(&models.Order{}).Where("id = ?", cart.ID).Count(&remaining)
	if remaining != 0 {
		t.Fatalf("cart row should be physically removed, got %d", remaining)
	}
	db.Unscoped().Model(&models.OrderItem{}).Where("order_id = ?", cart.ID).Count(&remaining)
	if remaining != 0 {
		t.Fatalf("cart items should be physically removed, got %d", remaining)
	}
}

func TestOrderRepositoryRejectsSecondOpenCart(t *testing.T) {
	db := setupRepositoryTestDB(t, "order_repo_unique_cart")
	repo := NewOrderRepository(db)
	user := createRepositoryTestUser(t, db, "unique_cart@example.com")

	if err := repo.CreateCart(&models.Order{OrderNo: "CT-A", UserID: user.ID}); err != nil {
		t.Fatalf("create first cart failed: %v", err)
	}
	err := repo.CreateCart(&models.Order{OrderNo: "CT-B", UserID: user.ID})
	if err == nil {
		t.Fatalf("second open cart should violate unique index")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	// 已结账订单不占用购物车名额
	if err := repo.Create(&models.Order{OrderNo: "BX-A", UserID: user.ID, Status: constants.OrderStatusPending}, nil); err != nil {
		t.Fatalf("create pending order failed: %v", err)
	}
}

func TestOrderRepositoryListByUserExcludesCart(t *testing.T) {
	db := setupRepositoryTestDB(t, "order_repo_list")
	repo := NewOrderRepository(db)
	user := createRepositoryTestUser(t, db, "list_orders@example.com")
	box := createRepositoryTestBoxType(t, db, "blind", 90000)

	if err := repo.CreateCart(&models.Order{OrderNo: "CT-L", UserID: user.ID}); err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	order := &models.Order{OrderNo: "BX-L", UserID: user.ID, Status: constants.OrderStatusPending, PayOSOrderCode: 123456}
	items := []models.OrderItem{{BoxTypeID: box.ID, BoxName: box.Name, Quantity: 1, UnitPrice: box.Price}}
	if err := repo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	rows, total, err := repo.ListByUser(OrderListFilter{UserID: user.ID, Page: 1, PageSize: 10, WithItems: true})
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].OrderNo != "BX-L" {
		t.Fatalf("cart should be excluded from order list, total=%d rows=%+v", total, rows)
	}
	if len(rows[0].Items) != 1 {
		t.Fatalf("items should be preloaded, got %d", len(rows[0].Items))
	}

	adminRows, adminTotal, err := repo.ListAdmin(OrderListFilter{IncludeCarts: true})
	if err != nil {
		t.Fatalf("list admin failed: %v", err)
	}
	if adminTotal != 2 || len(adminRows) != 2 {
		t.Fatalf("admin list with carts want 2 got %d", adminTotal)
	}

	found, err := repo.GetByPayOSOrderCode(123456)
	if err != nil || found == nil || found.ID != order.ID {
		t.Fatalf("lookup by payos order code failed: order=%+v err=%v", found, err)
	}
}

func TestOrderRepositoryHasCompletedOrderWithBox(t *testing.T) {
	db := setupRepositoryTestDB(t, "order_repo_completed")
	repo := NewOrderRepository(db)
	user := createRepositoryTestUser(t, db, "completed@example.com")
	box := createRepositoryTestBoxType(t, db, "veggie", 120000)

	order := &models.Order{OrderNo: "BX-C", UserID: user.ID, Status: constants.OrderStatusPending}
	if err := repo.Create(order, []models.OrderItem{{BoxTypeID: box.ID, Quantity: 1, UnitPrice: box.Price}}); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	ok, err := repo.HasCompletedOrderWithBox(user.ID, order.ID, box.ID)
	if err != nil || ok {
		t.Fatalf("pending order should not qualify, ok=%v err=%v", ok, err)
	}
	if err := repo.UpdateStatus(order.ID, constants.OrderStatusCompleted, nil); err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	ok, err = repo.HasCompletedOrderWithBox(user.ID, order.ID, box.ID)
	if err != nil || !ok {
		t.Fatalf("completed order should qualify, ok=%v err=%v", ok, err)
	}
}
