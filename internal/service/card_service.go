package service

import (
	"strings"
	"time"

	"github.com/liquan-next/internal/authz"
	"github.com/liquan-next/internal/constants"
	"github.com/liquan-next/internal/logger"
	"github.com/liquan-next/internal/models"
	"github.com/liquan-next/internal/repository"
)

// CardService 卡片服务
type CardService struct {
	cardRepo repository.CardRepository
}

// NewCardService 创建卡片服务
func NewCardService(cardRepo repository.CardRepository) *CardService {
	return &CardService{cardRepo: cardRepo}
}

// CardWithStats 卡片及其证书统计
type CardWithStats struct {
	models.Card
	ActiveCount  int64 `json:"active_count"`
	UsedCount    int64 `json:"used_count"`
	ExpiredCount int64 `json:"expired_count"`
}

// ListMyCards 查询用户名下的卡片并附带证书统计
//
// 用户首次访问且名下没有卡片时自动开通一张默认卡片。
func (s *CardService) ListMyCards(userID uint) ([]CardWithStats, error) {
	if userID == 0 {
		return nil, ErrCardInvalid
	}
	cards, err := s.cardRepo.ListByUserID(userID)
	if err != nil {
		return nil, ErrCardFetchFailed
	}
	if len(cards) == 0 {
		card, err := s.provisionDefaultCard(userID)
		if err != nil {
			return nil, err
		}
		cards = []models.Card{*card}
	}

	ids := make([]uint, 0, len(cards))
	for _, card := range cards {
		ids = append(ids, card.ID)
	}
	stats, err := s.cardRepo.CountCertsByStatus(ids)
	if err != nil {
		return nil, ErrCardFetchFailed
	}
	byCard := make(map[uint]map[string]int64, len(cards))
	for _, row := range stats {
		if byCard[row.CardID] == nil {
			byCard[row.CardID] = make(map[string]int64, 3)
		}
		byCard[row.CardID][row.Status] = row.Count
	}

	result := make([]CardWithStats, 0, len(cards))
	for _, card := range cards {
		counts := byCard[card.ID]
		result = append(result, CardWithStats{
			Card:         card,
			ActiveCount:  counts[constants.CertStatusActive],
			UsedCount:    counts[constants.CertStatusUsed],
			ExpiredCount: counts[constants.CertStatusExpired],
		})
	}
	return result, nil
}

// CreateCard 创建卡片
func (s *CardService) CreateCard(userID uint, name string) (*models.Card, error) {
	if userID == 0 {
		return nil, ErrCardInvalid
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = constants.DefaultCardName
	}
	now := time.Now()
	card := &models.Card{
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cardRepo.Create(card); err != nil {
		return nil, ErrCardCreateFailed
	}
	logger.Infow("card_created", "card_id", card.ID, "user_id", userID)
	return card, nil
}

// RenameCard 重命名卡片
func (s *CardService) RenameCard(userID, cardID uint, name string) (*models.Card, error) {
	name = strings.TrimSpace(name)
	if userID == 0 || cardID == 0 || name == "" {
		return nil, ErrCardInvalid
	}
	card, err := s.cardRepo.GetByID(cardID)
	if err != nil {
		return nil, ErrCardFetchFailed
	}
	if card == nil {
		return nil, ErrCardNotFound
	}
	if !authz.CanAccessCard(userID, card) {
		return nil, ErrCardForbidden
	}
	card.Name = name
	card.UpdatedAt = time.Now()
	if err := s.cardRepo.Update(card); err != nil {
		return nil, ErrCardUpdateFailed
	}
	return card, nil
}

func (s *CardService) provisionDefaultCard(userID uint) (*models.Card, error) {
	now := time.Now()
	card := &models.Card{
		UserID:    userID,
		Name:      constants.DefaultCardName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cardRepo.Create(card); err != nil {
		return nil, ErrCardCreateFailed
	}
	logger.Infow("card_auto_provisioned", "card_id", card.ID, "user_id", userID)
	return card, nil
}
