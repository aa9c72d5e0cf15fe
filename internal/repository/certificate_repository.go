package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/liquan-next/internal/constants"
	"github.com/liquan-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CertificateRepository 证书仓储接口
//
// 核销与过期路径要求写操作在同一事务中执行，调用方先 WithTx 绑定事务，
// 再通过 GetByCodeForUpdate / ListExpiredForUpdate 取行锁。
type CertificateRepository interface {
	Create(cert *models.Certificate) error
	GetByCode(code string) (*models.Certificate, error)
	GetByCodeForUpdate(code string) (*models.Certificate, error)
	ListByCardID(cardID uint) ([]models.Certificate, error)
	Update(cert *models.Certificate) error
	AppendEvent(event *models.CertificateEvent) error
	CreateEvents(events []models.CertificateEvent) error
	ListEventsByCertificateID(certificateID uint) ([]models.CertificateEvent, error)
	ListExpiredForUpdate(asOf time.Time) ([]models.Certificate, error)
	BatchExpire(ids []uint, updatedAt time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormCertificateRepository
}

// GormCertificateRepository GORM 证书仓储实现
type GormCertificateRepository struct {
	db *gorm.DB
}

// NewCertificateRepository 创建证书仓储
func NewCertificateRepository(db *gorm.DB) *GormCertificateRepository {
	return &GormCertificateRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCertificateRepository) WithTx(tx *gorm.DB) *GormCertificateRepository {
	if tx == nil {
		return r
	}
	return &GormCertificateRepository{db: tx}
}

// Create 创建证书
func (r *GormCertificateRepository) Create(cert *models.Certificate) error {
	if cert == nil {
		return errors.New("invalid certificate")
	}
	return r.db.Create(cert).Error
}

// GetByCode 根据证书码查询证书
func (r *GormCertificateRepository) GetByCode(code string) (*models.Certificate, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var cert models.Certificate
	if err := r.db.Where("code = ?", code).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cert, nil
}

// GetByCodeForUpdate 根据证书码加锁查询证书
func (r *GormCertificateRepository) GetByCodeForUpdate(code string) (*models.Certificate, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var cert models.Certificate
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cert, nil
}

// ListByCardID 查询卡片下的证书列表
func (r *GormCertificateRepository) ListByCardID(cardID uint) ([]models.Certificate, error) {
	if cardID == 0 {
		return []models.Certificate{}, nil
	}
	var certs []models.Certificate
	if err := r.db.Where("card_id = ?", cardID).Order("id desc").Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}

// Update 更新证书
func (r *GormCertificateRepository) Update(cert *models.Certificate) error {
	if cert == nil {
		return errors.New("invalid certificate")
	}
	return r.db.Save(cert).Error
}

// AppendEvent 追加单条台账事件
func (r *GormCertificateRepository) AppendEvent(event *models.CertificateEvent) error {
	if event == nil {
		return errors.New("invalid certificate event")
	}
	return r.db.Create(event).Error
}

// CreateEvents 批量追加台账事件
func (r *GormCertificateRepository) CreateEvents(events []models.CertificateEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.Create(&events).Error
}

// ListEventsByCertificateID 查询证书的台账事件，按时间升序
func (r *GormCertificateRepository) ListEventsByCertificateID(certificateID uint) ([]models.CertificateEvent, error) {
	if certificateID == 0 {
		return []models.CertificateEvent{}, nil
	}
	var events []models.CertificateEvent
	if err := r.db.Where("certificate_id = ?", certificateID).
		Order("created_at asc, id asc").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListExpiredForUpdate 加锁查询已过有效期但仍为 active 的证书
func (r *GormCertificateRepository) ListExpiredForUpdate(asOf time.Time) ([]models.Certificate, error) {
	var certs []models.Certificate
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", constants.CertStatusActive, asOf).
		Order("id asc").
		Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}

// BatchExpire 批量把证书置为 expired，余额保持不变
func (r *GormCertificateRepository) BatchExpire(ids []uint, updatedAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	result := r.db.Model(&models.Certificate{}).
		Where("id IN ? AND status = ?", ids, constants.CertStatusActive).
		Updates(map[string]interface{}{
			"status":     constants.CertStatusExpired,
			"updated_at": updatedAt,
		})
	return result.RowsAffected, result.Error
}
