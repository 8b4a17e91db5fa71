package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/boxmart-next/internal/constants"
	"github.com/boxmart-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createRepositoryTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "hash",
		Role:         constants.UserRoleCustomer,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createRepositoryTestBoxType(t *testing.T, db *gorm.DB, name string, price int64) *models.BoxType {
	t.Helper()
	boxType := &models.BoxType{
		Name:     name,
		Slug:     name,
		Price:    models.NewMoneyFromInt(price),
		IsActive: true,
	}
	if err := db.Create(boxType).Error; err != nil {
		t.Fatalf("create box type failed: %v", err)
	}
	return boxType
}
