package repository

import (
	"testing"
	"time"

	"github.com/boxmart-next/internal/models"
)

func TestDiscountRepositoryCodeLookupSkipsDeleted(t *testing.T) {
	db := setupRepositoryTestDB(t, "discount_repo_lookup")
	repo := NewDiscountRepository(db)
	now := time.Now()

	discount := &models.Discount{
		Code:      "Spring10",
		Value:     models.NewMoneyFromInt(10),
		IsActive:  true,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
	}
	if err := repo.Create(discount); err != nil {
		t.Fatalf("create discount failed: %v", err)
	}

	found, err := repo.GetByCode(" spring10 ")
	if err != nil || found == nil || found.ID != discount.ID {
		t.Fatalf("case-insensitive lookup failed: %+v err=%v", found, err)
	}

	if err := repo.Delete(discount.ID, 9); err != nil {
		t.Fatalf("delete discount failed: %v", err)
	}
	found, err = repo.GetByCode("SPRING10")
	if err != nil {
		t.Fatalf("lookup after delete failed: %v", err)
	}
	if found != nil {
		t.Fatalf("soft deleted discount should be hidden")
	}

	var raw models.Discount
	if err := db.Unscoped().First(&raw, discount.ID).Error; err != nil {
		t.Fatalf("load deleted row failed: %v", err)
	}
	if raw.DeletedBy == nil || *raw.DeletedBy != 9 {
		t.Fatalf("deleted_by should be recorded, got %v", raw.DeletedBy)
	}
}

func TestUserDiscountRepositoryEnforcesSingleUse(t *testing.T) {
	db := setupRepositoryTestDB(t, "user_discount_repo")
	repo := NewUserDiscountRepository(db)

	record := &models.UserDiscount{UserID: 1, DiscountID: 2, OrderID: 3, UsedAt: time.Now()}
	if err := repo.Create(record); err != nil {
		t.Fatalf("create usage failed: %v", err)
	}
	used, err := repo.Exists(1, 2)
	if err != nil || !used {
		t.Fatalf("usage should exist, used=%v err=%v", used, err)
	}

	err = repo.Create(&models.UserDiscount{UserID: 1, DiscountID: 2, OrderID: 4, UsedAt: time.Now()})
	if !IsUniqueViolation(err) {
		t.Fatalf("second usage should violate unique index, got %v", err)
	}
	count, err := repo.CountByDiscount(2)
	if err != nil || count != 1 {
		t.Fatalf("usage count want 1 got %d err=%v", count, err)
	}
}

func TestPaymentWebhookEventRepositoryRecordDedupes(t *testing.T) {
	db := setupRepositoryTestDB(t, "webhook_event_repo")
	repo := NewPaymentWebhookEventRepository(db)

	first, err := repo.Record(&models.PaymentWebhookEvent{Provider: "payos", EventKey: "payos:1:PAID", OrderCode: 1, Status: "PAID", ProcessedAt: time.Now()})
	if err != nil || !first {
		t.Fatalf("first record should be accepted, ok=%v err=%v", first, err)
	}
	second, err := repo.Record(&models.PaymentWebhookEvent{Provider: "payos", EventKey: "payos:1:PAID", OrderCode: 1, Status: "PAID", ProcessedAt: time.Now()})
	if err != nil || second {
		t.Fatalf("duplicate record should be ignored, ok=%v err=%v", second, err)
	}
}
