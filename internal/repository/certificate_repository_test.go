package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/liquan-next/internal/constants"
	"github.com/liquan-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCertificateRepositoryTest(t *testing.T) (*GormCertificateRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cert_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Certificate{}, &models.CertificateEvent{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewCertificateRepository(db), db
}

func createRepoTestCert(t *testing.T, repo *GormCertificateRepository, code, status string, expiresAt *time.Time) *models.Certificate {
	t.Helper()
	money := models.NewMoneyFromDecimal(decimal.NewFromInt(100))
	cert := &models.Certificate{
		Code:      code,
		CardID:    1,
		Recipient: "受赠人",
		Amount:    money,
		Balance:   money,
		Status:    status,
		IssuedAt:  time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
	if err := repo.Create(cert); err != nil {
		t.Fatalf("create certificate failed: %v", err)
	}
	return cert
}

func TestCertificateRepositoryGetByCode(t *testing.T) {
	repo, _ := setupCertificateRepositoryTest(t)
	created := createRepoTestCert(t, repo, "LQREPO01", constants.CertStatusActive, nil)

	found, err := repo.GetByCode(" LQREPO01 ")
	if err != nil {
		t.Fatalf("get by code failed: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("expected certificate %d, got %+v", created.ID, found)
	}

	missing, err := repo.GetByCode("LQREPO404")
	if err != nil {
		t.Fatalf("get missing failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown code")
	}

	dup := createRepoTestCert(t, repo, "LQREPO02", constants.CertStatusActive, nil)
	dup.ID = 0
	dup.Code = "LQREPO01"
	if err := repo.Create(dup); err == nil {
		t.Fatalf("expected unique index violation for duplicate code")
	}
}

func TestCertificateRepositoryListEventsOrdering(t *testing.T) {
	repo, _ := setupCertificateRepositoryTest(t)
	cert := createRepoTestCert(t, repo, "LQREPO10", constants.CertStatusActive, nil)

	base := time.Now().Add(-time.Hour)
	after := models.NewMoneyFromDecimal(decimal.NewFromInt(100))
	types := []string{
		constants.CertEventCreated,
		constants.CertEventPartialRedeem,
		constants.CertEventPartialRedeem,
	}
	for i, eventType := range types {
		var delta *models.Money
		if eventType != constants.CertEventCreated {
			d := models.NewMoneyFromDecimal(decimal.NewFromInt(-10))
			delta = &d
		}
		event := &models.CertificateEvent{
			CertificateID: cert.ID,
			EventType:     eventType,
			AmountDelta:   delta,
			BalanceAfter:  &after,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.AppendEvent(event); err != nil {
			t.Fatalf("append event failed: %v", err)
		}
	}

	events, err := repo.ListEventsByCertificateID(cert.ID)
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].EventType != constants.CertEventCreated {
		t.Fatalf("expected CREATED first, got %s", events[0].EventType)
	}
	for i := 1; i < len(events); i++ {
		if events[i].CreatedAt.Before(events[i-1].CreatedAt) {
			t.Fatalf("events out of order at index %d", i)
		}
	}
}

func TestCertificateRepositoryExpireQueries(t *testing.T) {
	repo, _ := setupCertificateRepositoryTest(t)
	now := time.Now().UTC()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	overdue := createRepoTestCert(t, repo, "LQREPO20", constants.CertStatusActive, &past)
	createRepoTestCert(t, repo, "LQREPO21", constants.CertStatusActive, &future)
	createRepoTestCert(t, repo, "LQREPO22", constants.CertStatusUsed, &past)
	createRepoTestCert(t, repo, "LQREPO23", constants.CertStatusActive, nil)

	certs, err := repo.ListExpiredForUpdate(now)
	if err != nil {
		t.Fatalf("list expired failed: %v", err)
	}
	if len(certs) != 1 || certs[0].ID != overdue.ID {
		t.Fatalf("expected only overdue active certificate, got %d rows", len(certs))
	}

	rows, err := repo.BatchExpire([]uint{overdue.ID}, now)
	if err != nil {
		t.Fatalf("batch expire failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row expired, got %d", rows)
	}

	// 二次执行不再命中
	rows, err = repo.BatchExpire([]uint{overdue.ID}, now)
	if err != nil {
		t.Fatalf("second batch expire failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 rows on second expire, got %d", rows)
	}
}
