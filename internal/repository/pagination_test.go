package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/boxmart-next/internal/models"

	"gorm.io/gorm"
)

func TestBoxTypeListPagination(t *testing.T) {
	db := setupRepositoryTestDB(t, "box_type_pagination")
	repo := NewBoxTypeRepository(db)
	for i := 1; i <= 5; i++ {
		row := &models.BoxType{
			Name:      fmt.Sprintf("Box %d", i),
			Slug:      fmt.Sprintf("box-%d", i),
			Price:     models.NewMoneyFromInt(int64(i * 1000)),
			IsActive:  true,
			SortOrder: i,
		}
		if err := repo.Create(row); err != nil {
			t.Fatalf("create box type failed: %v", err)
		}
	}

	rows, total, err := repo.List(BoxTypeListFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list box types failed: %v", err)
	}
	if total != 5 || len(rows) != 2 {
		t.Fatalf("want total=5 len=2, got total=%d len=%d", total, len(rows))
	}
	if rows[0].Slug != "box-3" || rows[1].Slug != "box-2" {
		t.Fatalf("page 2 should follow sort_order desc, got %s,%s", rows[0].Slug, rows[1].Slug)
	}

	rows, total, err = repo.List(BoxTypeListFilter{Page: 0, PageSize: 0})
	if err != nil || total != 5 || len(rows) != 5 {
		t.Fatalf("page size 0 should return all rows, got total=%d len=%d err=%v", total, len(rows), err)
	}

	rows, total, err = repo.List(BoxTypeListFilter{Search: "missing", Page: 1, PageSize: 10})
	if err != nil || total != 0 || rows == nil || len(rows) != 0 {
		t.Fatalf("empty result should be an empty slice, got %v total=%d err=%v", rows, total, err)
	}
}

func TestApplyPaginationClampsPageSize(t *testing.T) {
	db := setupRepositoryTestDB(t, "pagination_clamp")
	stmt := applyPagination(db.Model(&models.User{}), 3, 500).Session(&gorm.Session{DryRun: true}).Find(&[]models.User{}).Statement
	sql := stmt.SQL.String()
	if !strings.Contains(sql, "LIMIT 100") || !strings.Contains(sql, "OFFSET 200") {
		t.Fatalf("unexpected pagination sql: %s", sql)
	}
	if applyPagination(nil, 1, 10) != nil {
		t.Fatalf("nil query should stay nil")
	}
}
