package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/liquan-next/internal/config"
	"github.com/liquan-next/internal/constants"
	"github.com/liquan-next/internal/models"
	"github.com/liquan-next/internal/provider"
	"github.com/liquan-next/internal/repository"
	"github.com/liquan-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCronTest(t *testing.T, secret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:cron_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Card{}, &models.Certificate{}, &models.CertificateEvent{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	certRepo := repository.NewCertificateRepository(db)
	container := &provider.Container{
		Config:       &config.Config{Sweep: config.SweepConfig{Secret: secret}},
		SweepService: service.NewSweepService(certRepo),
	}
	handler := New(container)

	r := gin.New()
	r.GET("/api/v1/cron/expire-certs", handler.RunExpireSweep)
	r.POST("/api/v1/cron/expire-certs", handler.RunExpireSweep)
	return r
}

func createCronTestCert(t *testing.T, code string, expiresAt time.Time) {
	t.Helper()
	money := models.NewMoneyFromDecimal(decimal.NewFromInt(200))
	cert := &models.Certificate{
		Code:      code,
		CardID:    1,
		Recipient: "受赠人",
		Amount:    money,
		Balance:   money,
		Status:    constants.CertStatusActive,
		IssuedAt:  expiresAt.Add(-30 * 24 * time.Hour),
		ExpiresAt: &expiresAt,
	}
	if err := models.DB.Create(cert).Error; err != nil {
		t.Fatalf("create certificate failed: %v", err)
	}
}

func doCronRequest(t *testing.T, r *gin.Engine, target, bearer string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	code, _ := body["status_code"].(float64)
	return int(code), body
}

func TestRunExpireSweepRejectsBadSecret(t *testing.T) {
	r := setupCronTest(t, "topsecret")

	code, _ := doCronRequest(t, r, "/api/v1/cron/expire-certs", "")
	if code != 401 {
		t.Fatalf("missing bearer: expected 401, got %d", code)
	}
	code, _ = doCronRequest(t, r, "/api/v1/cron/expire-certs", "wrong")
	if code != 401 {
		t.Fatalf("wrong bearer: expected 401, got %d", code)
	}
}

func TestRunExpireSweepRejectsWhenSecretUnset(t *testing.T) {
	r := setupCronTest(t, "")

	code, _ := doCronRequest(t, r, "/api/v1/cron/expire-certs", "anything")
	if code != 401 {
		t.Fatalf("unset secret: expected 401, got %d", code)
	}
}

func TestRunExpireSweepExpiresOverdueCertificates(t *testing.T) {
	r := setupCronTest(t, "topsecret")
	createCronTestCert(t, "LQCRON01", time.Now().UTC().Add(-48*time.Hour))
	createCronTestCert(t, "LQCRON02", time.Now().UTC().Add(48*time.Hour))

	code, body := doCronRequest(t, r, "/api/v1/cron/expire-certs", "topsecret")
	if code != 0 {
		t.Fatalf("expected success, got status_code %d (%v)", code, body)
	}
	data, _ := body["data"].(map[string]interface{})
	if expired, _ := data["expired"].(float64); int(expired) != 1 {
		t.Fatalf("expected 1 expired, got %v", data["expired"])
	}

	// 幂等：再次触发不再命中
	code, body = doCronRequest(t, r, "/api/v1/cron/expire-certs", "topsecret")
	if code != 0 {
		t.Fatalf("expected success on rerun, got %d", code)
	}
	data, _ = body["data"].(map[string]interface{})
	if expired, _ := data["expired"].(float64); int(expired) != 0 {
		t.Fatalf("expected 0 expired on rerun, got %v", data["expired"])
	}
}

func TestRunExpireSweepParsesAsOfDate(t *testing.T) {
	r := setupCronTest(t, "topsecret")
	// 明天过期的证书，仅在 as_of 推到后天时才会命中
	tomorrow := time.Now().UTC().Add(24 * time.Hour)
	createCronTestCert(t, "LQCRON10", time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC))

	code, _ := doCronRequest(t, r, "/api/v1/cron/expire-certs?as_of=not-a-date", "topsecret")
	if code != 400 {
		t.Fatalf("invalid as_of: expected 400, got %d", code)
	}

	code, body := doCronRequest(t, r, "/api/v1/cron/expire-certs", "topsecret")
	data, _ := body["data"].(map[string]interface{})
	if code != 0 || int(data["expired"].(float64)) != 0 {
		t.Fatalf("certificate must survive a sweep before its expiry date")
	}

	dayAfter := tomorrow.Add(24 * time.Hour).Format("2006-01-02")
	code, body = doCronRequest(t, r, "/api/v1/cron/expire-certs?as_of="+dayAfter, "topsecret")
	data, _ = body["data"].(map[string]interface{})
	if code != 0 || int(data["expired"].(float64)) != 1 {
		t.Fatalf("certificate must be swept once as_of passes its expiry date, got %v", body)
	}
}
