package service

import (
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

func setupSweepServiceTest(t *testing.T) (*SweepService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:sweep_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	return NewSweepService(repository.NewCertificateRepository(db)), db
}

func createSweepTestCert(t *testing.T, db *gorm.DB, code, status string, balance int64, expiresAt *time.Time) *models.Certificate {
	t.Helper()
	money := models.NewMoneyFromDecimal(decimal.NewFromInt(balance))
	cert := &models.Certificate{
		Code:      code,
		CardID:    1,
		Recipient: "受赠人",
		Amount:    money,
		Balance:   money,
		Status:    status,
		IssuedAt:  time.Now().UTC().AddDate(0, -1, 0),
		ExpiresAt: expiresAt,
	}
	if err := db.Create(cert).Error; err != nil {
		t.Fatalf("create certificate failed: %v", err)
	}
	return cert
}

func TestSweepExpiresOverdueActiveCertificates(t *testing.T) {
	svc, db := setupSweepServiceTest(t)
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	tomorrow := yesterday.AddDate(0, 0, 2)

	overdue := createSweepTestCert(t, db, "LQSWEEP01", constants.CertStatusActive, 500, &yesterday)
	future := createSweepTestCert(t, db, "LQSWEEP02", constants.CertStatusActive, 300, &tomorrow)
	used := createSweepTestCert(t, db, "LQSWEEP03", constants.CertStatusUsed, 0, &yesterday)
	perpetual := createSweepTestCert(t, db, "LQSWEEP04", constants.CertStatusActive, 200, nil)

	expired, err := svc.Sweep(now)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expired, got %d", expired)
	}

	var reloaded models.Certificate
	db.First(&reloaded, overdue.ID)
	if reloaded.Status != constants.CertStatusExpired {
		t.Fatalf("expected expired status, got %s", reloaded.Status)
	}
	// 过期不清零余额
	if !reloaded.Balance.Decimal.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected balance preserved, got %s", reloaded.Balance.String())
	}

	var event models.CertificateEvent
	if err := db.Where("certificate_id = ?", overdue.ID).First(&event).Error; err != nil {
		t.Fatalf("expected EXPIRED event: %v", err)
	}
	if event.EventType != constants.CertEventExpired {
		t.Fatalf("expected EXPIRED event type, got %s", event.EventType)
	}
	if event.AmountDelta != nil {
		t.Fatalf("EXPIRED event must not carry amount_delta")
	}
	if event.BalanceAfter == nil || !event.BalanceAfter.Decimal.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected balance_after 500")
	}

	// 未到期、已核销、永久有效的证书不受影响
	for _, cert := range []*models.Certificate{future, used, perpetual} {
		var current models.Certificate
		db.First(&current, cert.ID)
		if current.Status != cert.Status {
			t.Fatalf("certificate %s status changed unexpectedly to %s", cert.Code, current.Status)
		}
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	svc, db := setupSweepServiceTest(t)
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	cert := createSweepTestCert(t, db, "LQSWEEP10", constants.CertStatusActive, 100, &yesterday)

	first, err := svc.Sweep(now)
	if err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}
	if first != 1 {
		t.Fatalf("expected 1 expired on first sweep, got %d", first)
	}
	second, err := svc.Sweep(now)
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if second != 0 {
		t.Fatalf("expected 0 expired on second sweep, got %d", second)
	}

	var cnt int64
	db.Model(&models.CertificateEvent{}).Where("certificate_id = ?", cert.ID).Count(&cnt)
	if cnt != 1 {
		t.Fatalf("expected exactly 1 event, got %d", cnt)
	}
}

func TestSweepCutoffIsUTCMidnight(t *testing.T) {
	svc, db := setupSweepServiceTest(t)
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	// 今天到期的证书当天仍可用，次日才会被扫
	createSweepTestCert(t, db, "LQSWEEP20", constants.CertStatusActive, 100, &today)

	expired, err := svc.Sweep(now)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if expired != 0 {
		t.Fatalf("expected certificate expiring today to survive, got %d expired", expired)
	}

	expired, err = svc.Sweep(now.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("next-day sweep failed: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected certificate swept the next day, got %d", expired)
	}
}

func TestSweepConvergesCertificateIssuedAlreadyOverdue(t *testing.T) {
	svc, db := setupSweepServiceTest(t)
	certSvc := NewCertificateService(repository.NewCertificateRepository(db), repository.NewCardRepository(db))
	user := createCertTestUser(t, db, "overdue-issue@example.com")
	card := createCertTestCard(t, db, user.ID)

	// 有效期在过去的签发请求不被拒绝，由扫描收敛
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	cert, err := certSvc.IssueCertificate(user.ID, IssueCertificateInput{
		CardID:    card.ID,
		Recipient: "受赠人",
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
		ExpiresAt: &yesterday,
	})
	if err != nil {
		t.Fatalf("issue with past expiry failed: %v", err)
	}

	expired, err := svc.Sweep(time.Now())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expired, got %d", expired)
	}

	var reloaded models.Certificate
	db.First(&reloaded, cert.ID)
	if reloaded.Status != constants.CertStatusExpired {
		t.Fatalf("expected expired status, got %s", reloaded.Status)
	}
	if !reloaded.Balance.Decimal.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected balance preserved, got %s", reloaded.Balance.String())
	}
}
