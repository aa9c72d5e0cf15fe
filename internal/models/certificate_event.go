package models

import (
	"fmt"
	"time"

	"github.com/liquan-next/internal/constants"
)

// CertificateEvent 证书台账事件（只增不改）
//
// 同一证书按 created_at 升序的事件序列可完整重建余额历史：
// 面额加上所有非空 amount_delta 之和等于当前余额。
type CertificateEvent struct {
	ID            uint      `gorm:"primarykey" json:"id"`                               // 主键
	CertificateID uint      `gorm:"index;not null" json:"certificate_id"`               // 所属证书ID
	EventType     string    `gorm:"type:varchar(24);not null" json:"event_type"`        // 事件类型
	AmountDelta   *Money    `gorm:"type:decimal(20,2)" json:"amount_delta"`             // 余额变动（状态类事件为空）
	BalanceAfter  *Money    `gorm:"type:decimal(20,2)" json:"balance_after"`            // 变动后余额
	Note          string    `gorm:"type:text" json:"note,omitempty"`                    // 备注
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                            // 创建时间（排序键）
}

// TableName 指定表名
func (CertificateEvent) TableName() string {
	return "certificate_events"
}

// eventDeltaExpectations 各事件类型对 amount_delta 是否必填的约定
var eventDeltaExpectations = map[string]bool{
	constants.CertEventCreated:       false,
	constants.CertEventRedeemed:      true,
	constants.CertEventPartialRedeem: true,
	constants.CertEventExpired:       false,
	constants.CertEventCanceled:      false,
	constants.CertEventAdjusted:      true,
}

// NewCertificateEvent 构造证书事件，并校验事件类型与字段组合
func NewCertificateEvent(certificateID uint, eventType string, amountDelta, balanceAfter *Money, note string) (*CertificateEvent, error) {
	if certificateID == 0 {
		return nil, fmt.Errorf("certificate event: certificate id is required")
	}
	wantDelta, ok := eventDeltaExpectations[eventType]
	if !ok {
		return nil, fmt.Errorf("certificate event: unknown event type %q", eventType)
	}
	if wantDelta && amountDelta == nil {
		return nil, fmt.Errorf("certificate event: %s requires amount_delta", eventType)
	}
	if !wantDelta && amountDelta != nil {
		return nil, fmt.Errorf("certificate event: %s must not carry amount_delta", eventType)
	}
	if balanceAfter == nil {
		return nil, fmt.Errorf("certificate event: %s requires balance_after", eventType)
	}
	return &CertificateEvent{
		CertificateID: certificateID,
		EventType:     eventType,
		AmountDelta:   amountDelta,
		BalanceAfter:  balanceAfter,
		Note:          note,
		CreatedAt:     time.Now(),
	}, nil
}
