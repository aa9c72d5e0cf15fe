package provider

import (
	"github.com/liquan-next/internal/cache"
	"github.com/liquan-next/internal/config"
	"github.com/liquan-next/internal/logger"
	"github.com/liquan-next/internal/models"
	"github.com/liquan-next/internal/queue"
	"github.com/liquan-next/internal/repository"
	"github.com/liquan-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo repository.UserRepository
	CardRepo repository.CardRepository
	CertRepo repository.CertificateRepository

	// Services
	AuthService        *service.AuthService
	CardService        *service.CardService
	CertificateService *service.CertificateService
	SweepService       *service.SweepService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.CardRepo = repository.NewCardRepository(db)
	c.CertRepo = repository.NewCertificateRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.CardService = service.NewCardService(c.CardRepo)
	c.CertificateService = service.NewCertificateService(c.CertRepo, c.CardRepo)
	c.SweepService = service.NewSweepService(c.CertRepo)
}
