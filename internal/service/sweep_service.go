package service

import (
	"time"

	"github.com/liquan-next/internal/constants"
	"github.com/liquan-next/internal/logger"
	"github.com/liquan-next/internal/models"
	"github.com/liquan-next/internal/repository"

	"gorm.io/gorm"
)

// SweepService 证书过期扫描
//
// 把有效期早于 UTC 当日零点、且仍为 active 的证书批量置为 expired，
// 余额保持不变，并为每张证书追加 EXPIRED 台账事件。扫描幂等，
// 重复执行对已扫过的证书不再产生任何变更。
type SweepService struct {
	certRepo repository.CertificateRepository
}

// NewSweepService 创建过期扫描服务
func NewSweepService(certRepo repository.CertificateRepository) *SweepService {
	return &SweepService{certRepo: certRepo}
}

// Sweep 执行一次过期扫描，返回本次置为 expired 的证书数量
func (s *SweepService) Sweep(asOf time.Time) (int, error) {
	cutoff := utcMidnight(asOf)

	var expired int
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.certRepo.WithTx(tx)
		certs, err := repo.ListExpiredForUpdate(cutoff)
		if err != nil {
			return err
		}
		if len(certs) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(certs))
		events := make([]models.CertificateEvent, 0, len(certs))
		for i := range certs {
			cert := &certs[i]
			ids = append(ids, cert.ID)
			balanceAfter := cert.Balance
			event, err := models.NewCertificateEvent(cert.ID, constants.CertEventExpired, nil, &balanceAfter, "auto-expired")
			if err != nil {
				return err
			}
			events = append(events, *event)
		}

		rows, err := repo.BatchExpire(ids, time.Now())
		if err != nil {
			return err
		}
		if err := repo.CreateEvents(events); err != nil {
			return err
		}
		expired = int(rows)
		return nil
	})
	if err != nil {
		logger.Errorw("cert_expire_sweep_failed", "cutoff", cutoff, "error", err)
		return 0, ErrSweepFailed
	}

	if expired > 0 {
		logger.Infow("cert_expire_sweep_done", "cutoff", cutoff, "expired", expired)
	}
	return expired, nil
}
