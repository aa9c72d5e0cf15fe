package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := NewMoneyFromDecimal(decimal.RequireFromString("12.345"))
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"12.35"` {
		t.Fatalf("expected two decimal places, got %s", data)
	}

	var fromString Money
	if err := json.Unmarshal([]byte(`"99.99"`), &fromString); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if fromString.String() != "99.99" {
		t.Fatalf("expected 99.99, got %s", fromString.String())
	}

	var fromNumber Money
	if err := json.Unmarshal([]byte(`100.5`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if fromNumber.String() != "100.50" {
		t.Fatalf("expected 100.50, got %s", fromNumber.String())
	}
}

func TestMoneyRejectsNonFinite(t *testing.T) {
	if _, err := NewMoneyFromFloat(math.NaN()); !errors.Is(err, ErrMoneyNotFinite) {
		t.Fatalf("expected ErrMoneyNotFinite for NaN, got %v", err)
	}
	if _, err := NewMoneyFromFloat(math.Inf(1)); !errors.Is(err, ErrMoneyNotFinite) {
		t.Fatalf("expected ErrMoneyNotFinite for +Inf, got %v", err)
	}
	if _, err := NewMoneyFromString("not-a-number"); err == nil {
		t.Fatalf("expected error for malformed input")
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoneyFromDecimal(decimal.NewFromInt(10))
	b := NewMoneyFromDecimal(decimal.RequireFromString("3.333"))

	diff := a.Sub(b)
	if diff.String() != "6.67" {
		t.Fatalf("expected 6.67, got %s", diff.String())
	}
	if !a.IsPositive() {
		t.Fatalf("expected positive")
	}
	neg := a.Neg()
	if neg.IsPositive() || neg.String() != "-10.00" {
		t.Fatalf("expected -10.00, got %s", neg.String())
	}
}
