package repository

import (
	"errors"

	"github.com/liquan-next/internal/models"

	"gorm.io/gorm"
)

// CardCertStats 卡片下证书按状态聚合的统计
type CardCertStats struct {
	CardID uint   `json:"card_id"`
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CardRepository 卡片仓储接口
type CardRepository interface {
	Create(card *models.Card) error
	GetByID(id uint) (*models.Card, error)
	ListByUserID(userID uint) ([]models.Card, error)
	Update(card *models.Card) error
	CountCertsByStatus(cardIDs []uint) ([]CardCertStats, error)
	WithTx(tx *gorm.DB) *GormCardRepository
}

// GormCardRepository GORM 卡片仓储实现
type GormCardRepository struct {
	db *gorm.DB
}

// NewCardRepository 创建卡片仓储
func NewCardRepository(db *gorm.DB) *GormCardRepository {
	return &GormCardRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCardRepository) WithTx(tx *gorm.DB) *GormCardRepository {
	if tx == nil {
		return r
	}
	return &GormCardRepository{db: tx}
}

// Create 创建卡片
func (r *GormCardRepository) Create(card *models.Card) error {
	if card == nil {
		return errors.New("invalid card")
	}
	return r.db.Create(card).Error
}

// GetByID 根据 ID 查询卡片
func (r *GormCardRepository) GetByID(id uint) (*models.Card, error) {
	if id == 0 {
		return nil, nil
	}
	var card models.Card
	if err := r.db.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// ListByUserID 查询用户名下的卡片列表
func (r *GormCardRepository) ListByUserID(userID uint) ([]models.Card, error) {
	if userID == 0 {
		return []models.Card{}, nil
	}
	var cards []models.Card
	if err := r.db.Where("user_id = ?", userID).Order("id asc").Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// Update 更新卡片
func (r *GormCardRepository) Update(card *models.Card) error {
	if card == nil {
		return errors.New("invalid card")
	}
	return r.db.Save(card).Error
}

// CountCertsByStatus 按状态统计卡片下的证书数量
func (r *GormCardRepository) CountCertsByStatus(cardIDs []uint) ([]CardCertStats, error) {
	if len(cardIDs) == 0 {
		return []CardCertStats{}, nil
	}
	var stats []CardCertStats
	err := r.db.Model(&models.Certificate{}).
		Select("card_id, status, COUNT(*) AS count").
		Where("card_id IN ?", cardIDs).
		Group("card_id, status").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
