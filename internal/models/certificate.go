package models

import (
	"time"

	"github.com/liquan-next/internal/constants"
)

// Certificate 礼品证书（台账主实体）
//
// 余额只减不增；balance == 0 时状态必为 used（或余额耗尽后被扫为 expired）。
// 状态流转只允许 active → active（部分核销）、active → used（核销清零）、
// active → expired（定时扫描）。所有流转由核销引擎与过期扫描集中处理。
type Certificate struct {
	ID        uint       `gorm:"primarykey" json:"-"`                                             // 主键
	Code      string     `gorm:"type:varchar(80);uniqueIndex;not null" json:"code"`               // 证书码（对外唯一标识）
	CardID    uint       `gorm:"index;not null" json:"card_id"`                                   // 所属卡片ID
	Recipient string     `gorm:"type:varchar(255);not null" json:"recipient"`                     // 受赠人
	Amount    Money      `gorm:"type:decimal(20,2);not null" json:"amount"`                       // 面额（创建后不变）
	Balance   Money      `gorm:"type:decimal(20,2);not null" json:"balance"`                      // 剩余余额
	Status    string     `gorm:"type:varchar(24);index;not null;default:'active'" json:"status"`  // 状态
	IssuedAt  time.Time  `gorm:"not null" json:"issued_at"`                                       // 签发日期
	ExpiresAt *time.Time `gorm:"index" json:"expires_at"`                                         // 过期日期（为空表示永久有效）
	Note      string     `gorm:"type:text" json:"note,omitempty"`                                 // 备注
	CreatedAt time.Time  `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt time.Time  `json:"updated_at"`                                                      // 更新时间
}

// TableName 指定表名
func (Certificate) TableName() string {
	return "certificates"
}

// IsActive 是否处于可核销状态
func (c *Certificate) IsActive() bool {
	return c != nil && c.Status == constants.CertStatusActive
}
