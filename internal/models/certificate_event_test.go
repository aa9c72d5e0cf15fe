package models

import (
	"testing"

	"github.com/liquan-next/internal/constants"

	"github.com/shopspring/decimal"
)

func TestNewCertificateEventValidatesFieldCombinations(t *testing.T) {
	delta := NewMoneyFromDecimal(decimal.NewFromInt(-100))
	after := NewMoneyFromDecimal(decimal.NewFromInt(400))

	event, err := NewCertificateEvent(1, constants.CertEventPartialRedeem, &delta, &after, "消费")
	if err != nil {
		t.Fatalf("expected valid PARTIAL_REDEEM event: %v", err)
	}
	if event.EventType != constants.CertEventPartialRedeem {
		t.Fatalf("unexpected event type %s", event.EventType)
	}

	// 状态类事件禁止携带金额变动
	if _, err := NewCertificateEvent(1, constants.CertEventExpired, &delta, &after, ""); err == nil {
		t.Fatalf("EXPIRED with amount_delta must fail")
	}
	if _, err := NewCertificateEvent(1, constants.CertEventCreated, &delta, &after, ""); err == nil {
		t.Fatalf("CREATED with amount_delta must fail")
	}

	// 金额类事件必须携带金额变动
	if _, err := NewCertificateEvent(1, constants.CertEventRedeemed, nil, &after, ""); err == nil {
		t.Fatalf("REDEEMED without amount_delta must fail")
	}
	if _, err := NewCertificateEvent(1, constants.CertEventAdjusted, nil, &after, ""); err == nil {
		t.Fatalf("ADJUSTED without amount_delta must fail")
	}

	// balance_after 恒为必填
	if _, err := NewCertificateEvent(1, constants.CertEventCreated, nil, nil, ""); err == nil {
		t.Fatalf("missing balance_after must fail")
	}

	if _, err := NewCertificateEvent(1, "UNKNOWN", nil, &after, ""); err == nil {
		t.Fatalf("unknown event type must fail")
	}
	if _, err := NewCertificateEvent(0, constants.CertEventCreated, nil, &after, ""); err == nil {
		t.Fatalf("missing certificate id must fail")
	}
}
