package authz

import (
	"testing"

	"github.com/liquan-next/internal/models"
)

func TestCanAccessCard(t *testing.T) {
	card := &models.Card{ID: 1, UserID: 7}

	if !CanAccessCard(7, card) {
		t.Fatalf("owner must have access")
	}
	if CanAccessCard(8, card) {
		t.Fatalf("stranger must not have access")
	}
	if CanAccessCard(0, card) {
		t.Fatalf("anonymous must not have access")
	}
	if CanAccessCard(7, nil) {
		t.Fatalf("nil card must not be accessible")
	}
}
