package models

import (
	"strings"

	"github.com/boxmart-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const defaultAdminEmail = "admin@boxmart.local"

// InitDefaultAdmin 初始化默认管理员账号，返回管理员 ID
func InitDefaultAdmin(email, password string) (uint, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = defaultAdminEmail
	}

	var existing User
	err := DB.Where("role = ?", "admin").Order("id asc").Limit(1).Find(&existing).Error
	if err != nil {
		return 0, err
	}
	if existing.ID != 0 {
		return existing.ID, nil
	}

	generated := false
	if password == "" {
		password = "admin12345"
		generated = true
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	admin := User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  "Administrator",
		Role:         "admin",
		Status:       "active",
	}
	if err := DB.Create(&admin).Error; err != nil {
		return 0, err
	}

	if generated {
		logger.Warnw("default_admin_created_with_default_password", "email", email)
		logger.Warnw("default_admin_password_change_required", "email", email)
	} else {
		logger.Warnw("default_admin_created", "email", email, "password_hidden", true)
	}
	return admin.ID, nil
}
