package models

import "time"

// Card 商户卡片（一个主体下的证书池）
type Card struct {
	ID        uint      `gorm:"primarykey" json:"id"`                   // 主键
	UserID    uint      `gorm:"index;not null" json:"user_id"`          // 所有者用户ID
	Name      string    `gorm:"type:varchar(120);not null" json:"name"` // 卡片名称
	CreatedAt time.Time `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                             // 更新时间
}

// TableName 指定表名
func (Card) TableName() string {
	return "cards"
}
