package service

import (
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/liquan-next/internal/authz"
	"github.com/liquan-next/internal/constants"
	"github.com/liquan-next/internal/logger"
	"github.com/liquan-next/internal/models"
	"github.com/liquan-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	certCodePrefix           = "LQ"
	certCodeCollisionRetries = 5
)

// CertificateService 证书服务（签发、查询与核销引擎）
//
// 所有核销路径都在单个数据库事务内完成：加锁读取、校验、扣减余额、
// 追加台账事件。锁粒度为证书行，同一证书的并发核销串行化。
type CertificateService struct {
	certRepo repository.CertificateRepository
	cardRepo repository.CardRepository
}

// NewCertificateService 创建证书服务
func NewCertificateService(certRepo repository.CertificateRepository, cardRepo repository.CardRepository) *CertificateService {
	return &CertificateService{
		certRepo: certRepo,
		cardRepo: cardRepo,
	}
}

// IssueCertificateInput 证书签发输入
type IssueCertificateInput struct {
	CardID    uint
	Recipient string
	Amount    models.Money
	IssuedAt  *time.Time
	ExpiresAt *time.Time
	Note      string
}

// RedeemResult 核销结果
type RedeemResult struct {
	Certificate *models.Certificate      `json:"certificate"`
	Event       *models.CertificateEvent `json:"event"`
}

// IssueCertificate 签发证书并写入 CREATED 事件
func (s *CertificateService) IssueCertificate(userID uint, input IssueCertificateInput) (*models.Certificate, error) {
	if userID == 0 || input.CardID == 0 {
		return nil, ErrCertInvalid
	}
	recipient := strings.TrimSpace(input.Recipient)
	if recipient == "" {
		return nil, ErrCertInvalid
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	card, err := s.cardRepo.GetByID(input.CardID)
	if err != nil {
		return nil, ErrCardFetchFailed
	}
	if card == nil {
		return nil, ErrCardNotFound
	}
	if !authz.CanAccessCard(userID, card) {
		return nil, ErrCardForbidden
	}

	issuedAt := utcMidnight(time.Now().UTC())
	if input.IssuedAt != nil {
		issuedAt = utcMidnight(input.IssuedAt.UTC())
	}
	// 有效期不要求晚于签发日，过期日在过去的证书由扫描任务收敛
	var expiresAt *time.Time
	if input.ExpiresAt != nil {
		normalized := utcMidnight(input.ExpiresAt.UTC())
		expiresAt = &normalized
	}

	money := models.NewMoneyFromDecimal(amount)
	now := time.Now()
	cert := &models.Certificate{
		CardID:    card.ID,
		Recipient: recipient,
		Amount:    money,
		Balance:   money,
		Status:    constants.CertStatusActive,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		Note:      strings.TrimSpace(input.Note),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// 证书码带唯一索引，碰撞时换码重试
	var txErr error
	for attempt := 0; attempt < certCodeCollisionRetries; attempt++ {
		cert.ID = 0
		cert.Code = generateCertCode(now, attempt)
		txErr = models.DB.Transaction(func(tx *gorm.DB) error {
			repo := s.certRepo.WithTx(tx)
			if err := repo.Create(cert); err != nil {
				return err
			}
			balanceAfter := cert.Balance
			event, err := models.NewCertificateEvent(cert.ID, constants.CertEventCreated, nil, &balanceAfter, "issued")
			if err != nil {
				return err
			}
			return repo.AppendEvent(event)
		})
		if txErr == nil {
			logger.Infow("certificate_issued",
				"code", cert.Code,
				"card_id", cert.CardID,
				"amount", cert.Amount.String(),
			)
			return cert, nil
		}
		if !errors.Is(txErr, gorm.ErrDuplicatedKey) {
			break
		}
	}
	logger.Errorw("certificate_issue_failed", "card_id", input.CardID, "error", txErr)
	return nil, ErrCertCreateFailed
}

// GetByCode 查询证书并校验归属
func (s *CertificateService) GetByCode(userID uint, code string) (*models.Certificate, error) {
	cert, _, err := s.getOwnedByCode(userID, code)
	return cert, err
}

// ListByCard 查询卡片下的证书
func (s *CertificateService) ListByCard(userID, cardID uint) ([]models.Certificate, error) {
	if userID == 0 || cardID == 0 {
		return nil, ErrCertInvalid
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
	certs, err := s.certRepo.ListByCardID(cardID)
	if err != nil {
		return nil, ErrCertFetchFailed
	}
	return certs, nil
}

// ListEvents 查询证书的台账事件，按时间升序
func (s *CertificateService) ListEvents(userID uint, code string) ([]models.CertificateEvent, error) {
	cert, _, err := s.getOwnedByCode(userID, code)
	if err != nil {
		return nil, err
	}
	events, err := s.certRepo.ListEventsByCertificateID(cert.ID)
	if err != nil {
		return nil, ErrCertFetchFailed
	}
	return events, nil
}

// RedeemFull 全额核销：余额清零并置为 used
func (s *CertificateService) RedeemFull(userID uint, code, note string) (*RedeemResult, error) {
	return s.redeem(userID, code, nil, note)
}

// RedeemPartial 部分核销：扣减指定金额，余额耗尽时置为 used
func (s *CertificateService) RedeemPartial(userID uint, code string, amount models.Money, note string) (*RedeemResult, error) {
	normalized := amount.Decimal.Round(2)
	if normalized.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	return s.redeem(userID, code, &normalized, note)
}

// redeem 核销引擎：amount 为空表示全额核销
func (s *CertificateService) redeem(userID uint, code string, amount *decimal.Decimal, note string) (*RedeemResult, error) {
	code = strings.TrimSpace(code)
	if userID == 0 || code == "" {
		return nil, ErrCertInvalid
	}

	var result RedeemResult
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.certRepo.WithTx(tx)
		cert, err := repo.GetByCodeForUpdate(code)
		if err != nil {
			return ErrCertFetchFailed
		}
		if cert == nil {
			return ErrCertNotFound
		}
		card, err := s.cardRepo.WithTx(tx).GetByID(cert.CardID)
		if err != nil {
			return ErrCardFetchFailed
		}
		if !authz.CanAccessCard(userID, card) {
			return ErrCertForbidden
		}
		switch cert.Status {
		case constants.CertStatusUsed:
			return ErrCertAlreadyRedeemed
		case constants.CertStatusExpired:
			return ErrCertExpired
		case constants.CertStatusActive:
		default:
			return ErrCertInvalid
		}

		balance := cert.Balance.Decimal
		delta := balance
		if amount != nil {
			delta = *amount
			if delta.GreaterThan(balance) {
				return ErrInsufficientBalance
			}
		}
		newBalance := balance.Sub(delta)

		cert.Balance = models.NewMoneyFromDecimal(newBalance)
		// 事件类型跟随调用路径：全额核销记 REDEEMED，部分核销恒记 PARTIAL_REDEEM
		eventType := constants.CertEventRedeemed
		if amount != nil {
			eventType = constants.CertEventPartialRedeem
		}
		if newBalance.IsZero() {
			cert.Status = constants.CertStatusUsed
		}
		cert.UpdatedAt = time.Now()
		if err := repo.Update(cert); err != nil {
			return ErrCertUpdateFailed
		}

		amountDelta := models.NewMoneyFromDecimal(delta.Neg())
		balanceAfter := cert.Balance
		event, err := models.NewCertificateEvent(cert.ID, eventType, &amountDelta, &balanceAfter, strings.TrimSpace(note))
		if err != nil {
			return ErrCertUpdateFailed
		}
		if err := repo.AppendEvent(event); err != nil {
			return ErrCertUpdateFailed
		}

		result.Certificate = cert
		result.Event = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("certificate_redeemed",
		"code", result.Certificate.Code,
		"event_type", result.Event.EventType,
		"balance_after", result.Certificate.Balance.String(),
	)
	return &result, nil
}

// getOwnedByCode 查询证书并校验归属，返回证书与所属卡片
func (s *CertificateService) getOwnedByCode(userID uint, code string) (*models.Certificate, *models.Card, error) {
	code = strings.TrimSpace(code)
	if userID == 0 || code == "" {
		return nil, nil, ErrCertInvalid
	}
	cert, err := s.certRepo.GetByCode(code)
	if err != nil {
		return nil, nil, ErrCertFetchFailed
	}
	if cert == nil {
		return nil, nil, ErrCertNotFound
	}
	card, err := s.cardRepo.GetByID(cert.CardID)
	if err != nil {
		return nil, nil, ErrCardFetchFailed
	}
	if !authz.CanAccessCard(userID, card) {
		return nil, nil, ErrCertForbidden
	}
	return cert, card, nil
}

func generateCertCode(now time.Time, index int) string {
	return strings.ToUpper(fmt.Sprintf("%s%s%02d%s", certCodePrefix, now.Format("060102150405"), index%100, randomHex(6)))
}

func randomHex(n int) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	if _, err := crand.Read(buf); err != nil {
		fallback := make([]byte, n)
		for i := range fallback {
			fallback[i] = byte('A' + (i % 26))
		}
		return string(fallback)
	}
	return hex.EncodeToString(buf)
}

// utcMidnight 截断到 UTC 当日零点
func utcMidnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
