package models

// AuditActors 审计操作人（创建/更新/删除）
// 时间字段与软删除字段由各模型显式声明，gorm.DeletedAt 提供统一的软删除过滤。
type AuditActors struct {
	CreatedBy *uint `gorm:"index" json:"created_by,omitempty"` // 创建人
	UpdatedBy *uint `json:"updated_by,omitempty"`              // 最后更新人
	DeletedBy *uint `json:"-"`                                 // 删除人
}

// Actor 将操作人 ID 转为可空指针（0 表示系统操作）
func Actor(id uint) *uint {
	if id == 0 {
		return nil
	}
	v := id
	return &v
}

// StampCreate 记录创建人
func (a *AuditActors) StampCreate(actorID uint) {
	a.CreatedBy = Actor(actorID)
	a.UpdatedBy = Actor(actorID)
}

// StampUpdate 记录更新人
func (a *AuditActors) StampUpdate(actorID uint) {
	a.UpdatedBy = Actor(actorID)
}
