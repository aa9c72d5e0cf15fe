package main

import (
	"fmt"
	"time"

	"github.com/liquan-next/internal/config"
	"github.com/liquan-next/internal/constants"
	"github.com/liquan-next/internal/logger"
	"github.com/liquan-next/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// 演示数据：一个用户、一张卡片和几张不同状态的证书。
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo123456"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash password: %v", err)
	}
	now := time.Now()
	user := models.User{
		Email:        "demo@liquan.local",
		PasswordHash: string(hash),
		DisplayName:  "演示用户",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := models.DB.Where("email = ?", user.Email).FirstOrCreate(&user).Error; err != nil {
		stdLog.Fatalf("Failed to seed user: %v", err)
	}

	card := models.Card{
		UserID:    user.ID,
		Name:      constants.DefaultCardName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := models.DB.Where("user_id = ?", user.ID).FirstOrCreate(&card).Error; err != nil {
		stdLog.Fatalf("Failed to seed card: %v", err)
	}

	today := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	nextMonth := today.AddDate(0, 1, 0)
	yesterday := today.AddDate(0, 0, -1)

	certs := []models.Certificate{
		{
			Code:      "LQDEMO0001ACTIVE",
			CardID:    card.ID,
			Recipient: "张三",
			Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(1000)),
			Balance:   models.NewMoneyFromDecimal(decimal.NewFromInt(1000)),
			Status:    constants.CertStatusActive,
			IssuedAt:  today,
			ExpiresAt: &nextMonth,
			Note:      "演示证书",
		},
		{
			Code:      "LQDEMO0002EXPIRING",
			CardID:    card.ID,
			Recipient: "李四",
			Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
			Balance:   models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
			Status:    constants.CertStatusActive,
			IssuedAt:  today.AddDate(0, -1, 0),
			ExpiresAt: &yesterday,
			Note:      "已过有效期，等待扫描",
		},
		{
			Code:      "LQDEMO0003USED",
			CardID:    card.ID,
			Recipient: "王五",
			Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(300)),
			Balance:   models.NewMoneyFromDecimal(decimal.Zero),
			Status:    constants.CertStatusUsed,
			IssuedAt:  today.AddDate(0, -2, 0),
			Note:      "已核销完毕",
		},
	}

	for i := range certs {
		cert := &certs[i]
		cert.CreatedAt = now
		cert.UpdatedAt = now
		if err := models.DB.Where("code = ?", cert.Code).FirstOrCreate(cert).Error; err != nil {
			stdLog.Fatalf("Failed to seed certificate %s: %v", cert.Code, err)
		}
		balanceAfter := cert.Amount
		event, err := models.NewCertificateEvent(cert.ID, constants.CertEventCreated, nil, &balanceAfter, "seeded")
		if err != nil {
			stdLog.Fatalf("Failed to build created event: %v", err)
		}
		var count int64
		models.DB.Model(&models.CertificateEvent{}).
			Where("certificate_id = ? AND event_type = ?", cert.ID, constants.CertEventCreated).
			Count(&count)
		if count == 0 {
			if err := models.DB.Create(event).Error; err != nil {
				stdLog.Fatalf("Failed to seed created event: %v", err)
			}
			// 已核销证书补一条 REDEEMED 事件，保证台账可重放出当前余额
			if cert.Status == constants.CertStatusUsed {
				delta := models.NewMoneyFromDecimal(cert.Amount.Decimal.Neg())
				zero := models.NewMoneyFromDecimal(decimal.Zero)
				redeemed, err := models.NewCertificateEvent(cert.ID, constants.CertEventRedeemed, &delta, &zero, "seeded")
				if err != nil {
					stdLog.Fatalf("Failed to build redeemed event: %v", err)
				}
				if err := models.DB.Create(redeemed).Error; err != nil {
					stdLog.Fatalf("Failed to seed redeemed event: %v", err)
				}
			}
		}
	}

	fmt.Println("演示数据已就绪: demo@liquan.local / demo123456")
}
