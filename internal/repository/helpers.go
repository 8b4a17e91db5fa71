package repository

import (
	"errors"
	"strings"

	"github.com/boxmart-next/internal/models"

	"gorm.io/gorm"
)

// takeOne 查询单条记录，未找到时返回 nil, nil
func takeOne[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	var row T
	if err := query.First(&row, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// softDelete 记录删除人后执行软删除
// 模型上的 gorm.DeletedAt 让后续所有查询自动过滤已删除记录。
func softDelete(db *gorm.DB, model interface{}, id uint, actorID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(model).Where("id = ?", id).Update("deleted_by", models.Actor(actorID)).Error; err != nil {
			return err
		}
		return tx.Delete(model, id).Error
	})
}

// IsUniqueViolation 判断是否为唯一约束冲突
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}

func likePattern(search string) string {
	return "%" + strings.TrimSpace(search) + "%"
}
