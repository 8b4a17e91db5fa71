package service

import (
	"errors"
	"testing"

	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/repository"

	"github.com/shopspring/decimal"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hộp Quà Tết":        "hop-qua-tet",
		"  Đặc biệt  #1 ":    "dac-biet-1",
		"Blind Box (Large)":  "blind-box-large",
		"":                   "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) want %q got %q", in, want, got)
		}
	}
}

func TestBoxTypeLifecycle(t *testing.T) {
	db := setupServiceTestDB(t, "box_type_lifecycle")
	svc := NewBoxTypeService(repository.NewBoxTypeRepository(db), repository.NewReviewRepository(db))

	if _, err := svc.Create(BoxTypeInput{Name: "Empty"}, 1); !errors.Is(err, ErrBoxTypeInvalid) {
		t.Fatalf("zero price want ErrBoxTypeInvalid got %v", err)
	}

	created, err := svc.Create(BoxTypeInput{Name: "Hộp Quà", Price: decimal.NewFromInt(250000)}, 1)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Slug != "hop-qua" || !created.IsActive {
		t.Fatalf("unexpected box type: %+v", created)
	}

	inactive := false
	if _, err := svc.Update(created.ID, BoxTypeInput{Name: "Hộp Quà", Price: decimal.NewFromInt(300000), IsActive: &inactive}, 1); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := svc.GetPublic(created.ID); !errors.Is(err, ErrBoxTypeNotFound) {
		t.Fatalf("inactive box should be hidden publicly, got %v", err)
	}
	rows, total, err := svc.ListPublic("", 1, 20)
	if err != nil || total != 0 || len(rows) != 0 {
		t.Fatalf("public list should be empty, got %d rows err=%v", total, err)
	}

	if err := svc.Delete(created.ID, 1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetAdmin(created.ID); !errors.Is(err, ErrBoxTypeNotFound) {
		t.Fatalf("soft deleted box want ErrBoxTypeNotFound got %v", err)
	}
	var raw models.BoxType
	if err := db.Unscoped().First(&raw, created.ID).Error; err != nil || !raw.DeletedAt.Valid {
		t.Fatalf("row should remain soft deleted, err=%v", err)
	}
	if raw.DeletedBy == nil || *raw.DeletedBy != 1 {
		t.Fatalf("deleted_by should be recorded, got %v", raw.DeletedBy)
	}
}
