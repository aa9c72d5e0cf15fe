package router

import (
	"github.com/liquan-next/internal/cache"
	"github.com/liquan-next/internal/config"
	publichandlers "github.com/liquan-next/internal/http/handlers/public"
	"github.com/liquan-next/internal/logger"
	"github.com/liquan-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        cache.BuildKey("rate:login"),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "登录尝试过于频繁",
	}
	registerRule := RateLimitRule{
		Prefix:        cache.BuildKey("rate:register"),
		WindowSeconds: cfg.Security.RegisterRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.RegisterRateLimit.MaxAttempts,
		Message:       "注册请求过于频繁",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", RateLimitMiddleware(redisClient, registerRule, KeyByIP), publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		}

		// cron 接口（共享密钥鉴权，见 handler 内部）
		apiV1.GET("/cron/expire-certs", publicHandler.RunExpireSweep)
		apiV1.POST("/cron/expire-certs", publicHandler.RunExpireSweep)

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.GET("/cards", publicHandler.ListMyCards)
			user.POST("/cards", publicHandler.CreateCard)
			user.PUT("/cards/:id", publicHandler.RenameCard)
			user.POST("/certs", publicHandler.IssueCertificate)
			user.GET("/certs", publicHandler.ListCertificates)
			user.GET("/certs/by-code/:code", publicHandler.GetCertificate)
			user.GET("/certs/by-code/:code/events", publicHandler.ListCertificateEvents)
			user.POST("/certs/redeem", publicHandler.RedeemCertificate)
			user.POST("/certs/redeem-partial", publicHandler.RedeemCertificatePartial)
		}
	}

	return r
}
