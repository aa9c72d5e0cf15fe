package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/liquan-next/internal/constants"
	"github.com/liquan-next/internal/models"
	"github.com/liquan-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCardServiceTest(t *testing.T) (*CardService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:card_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Card{},
		&models.Certificate{},
		&models.CertificateEvent{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewCardService(repository.NewCardRepository(db)), db
}

func TestListMyCardsAutoProvisionsDefaultCard(t *testing.T) {
	svc, db := setupCardServiceTest(t)
	user := &models.User{Email: "fresh@example.com", PasswordHash: "hash"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	cards, err := svc.ListMyCards(user.ID)
	if err != nil {
		t.Fatalf("list cards failed: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected auto-provisioned card, got %d", len(cards))
	}
	if cards[0].Name != constants.DefaultCardName {
		t.Fatalf("expected default card name, got %s", cards[0].Name)
	}

	// 再次查询不再重复开通
	cards, err = svc.ListMyCards(user.ID)
	if err != nil {
		t.Fatalf("second list failed: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected single card, got %d", len(cards))
	}
}

func TestListMyCardsCountsCertificatesByStatus(t *testing.T) {
	svc, db := setupCardServiceTest(t)
	user := &models.User{Email: "stats@example.com", PasswordHash: "hash"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	card := &models.Card{UserID: user.ID, Name: "统计卡片"}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("create card failed: %v", err)
	}

	money := models.NewMoneyFromDecimal(decimal.NewFromInt(100))
	statuses := []string{
		constants.CertStatusActive,
		constants.CertStatusActive,
		constants.CertStatusUsed,
		constants.CertStatusExpired,
	}
	for i, status := range statuses {
		cert := &models.Certificate{
			Code:      fmt.Sprintf("LQSTAT%02d", i),
			CardID:    card.ID,
			Recipient: "受赠人",
			Amount:    money,
			Balance:   money,
			Status:    status,
			IssuedAt:  time.Now().UTC(),
		}
		if err := db.Create(cert).Error; err != nil {
			t.Fatalf("create certificate failed: %v", err)
		}
	}

	cards, err := svc.ListMyCards(user.ID)
	if err != nil {
		t.Fatalf("list cards failed: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	stats := cards[0]
	if stats.ActiveCount != 2 || stats.UsedCount != 1 || stats.ExpiredCount != 1 {
		t.Fatalf("unexpected stats: active=%d used=%d expired=%d", stats.ActiveCount, stats.UsedCount, stats.ExpiredCount)
	}
}

func TestRenameCardOwnership(t *testing.T) {
	svc, db := setupCardServiceTest(t)
	owner := &models.User{Email: "card-owner@example.com", PasswordHash: "hash"}
	stranger := &models.User{Email: "card-stranger@example.com", PasswordHash: "hash"}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("create owner failed: %v", err)
	}
	if err := db.Create(stranger).Error; err != nil {
		t.Fatalf("create stranger failed: %v", err)
	}
	card := &models.Card{UserID: owner.ID, Name: "旧名称"}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("create card failed: %v", err)
	}

	if _, err := svc.RenameCard(stranger.ID, card.ID, "新名称"); !errors.Is(err, ErrCardForbidden) {
		t.Fatalf("expected ErrCardForbidden, got %v", err)
	}
	if _, err := svc.RenameCard(owner.ID, card.ID+100, "新名称"); !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}

	renamed, err := svc.RenameCard(owner.ID, card.ID, "新名称")
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if renamed.Name != "新名称" {
		t.Fatalf("expected renamed card, got %s", renamed.Name)
	}
}
