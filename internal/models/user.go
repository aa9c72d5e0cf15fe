package models

import "time"

// User 用户（证书卡片的所有者主体）
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`                               // 主键
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"` // 邮箱
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`                // 密码哈希
	DisplayName  string    `gorm:"type:varchar(120)" json:"display_name"`              // 显示名称
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                         // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
