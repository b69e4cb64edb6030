package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/taichu-system/tenancy-management/internal/config"
	"github.com/taichu-system/tenancy-management/internal/events"
	"github.com/taichu-system/tenancy-management/internal/handler"
	"github.com/taichu-system/tenancy-management/internal/logger"
	"github.com/taichu-system/tenancy-management/internal/repository"
	"github.com/taichu-system/tenancy-management/internal/service"
	"github.com/taichu-system/tenancy-management/internal/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container 租赁服务的全部依赖
type Container struct {
	Config *config.Config
	Log    *logger.Logger

	// Infrastructure
	DB        *gorm.DB
	Redis     *redis.Client
	Sessions  session.Store
	Sweeper   session.Sweeper
	Publisher events.Publisher

	// Repositories
	UserRepo    *repository.UserRepository
	TenantRepo  *repository.TenantRepository
	UnitRepo    *repository.UnitRepository
	LeaseRepo   *repository.LeaseRepository
	SessionRepo *repository.SessionRepository
	AuditRepo   *repository.AuditRepository

	// Services
	TxManager         *service.TransactionManager
	AuditService      *service.AuditService
	AuthService       *service.AuthService
	UnitService       *service.UnitService
	OnboardingService *service.OnboardingService
	OccupancyService  *service.OccupancyService

	// Handlers
	HealthHandler    *handler.HealthHandler
	AuthHandler      *handler.AuthHandler
	UnitHandler      *handler.UnitHandler
	TenantHandler    *handler.TenantHandler
	LeaseHandler     *handler.LeaseHandler
	OccupancyHandler *handler.OccupancyHandler
	AuditHandler     *handler.AuditHandler
}

// NewContainer 在已打开的数据库上装配仓储、服务与处理器，会话存储和事件发布按配置选择
func NewContainer(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logger.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Log:    log,
		DB:     db,
	}

	c.UserRepo = repository.NewUserRepository(db)
	c.TenantRepo = repository.NewTenantRepository(db)
	c.UnitRepo = repository.NewUnitRepository(db)
	c.LeaseRepo = repository.NewLeaseRepository(db)
	c.SessionRepo = repository.NewSessionRepository(db)
	c.AuditRepo = repository.NewAuditRepository(db)

	if err := c.initSessions(ctx); err != nil {
		return nil, err
	}
	if err := c.initPublisher(); err != nil {
		c.Close()
		return nil, err
	}

	cipher, err := service.NewFieldCipher(cfg.Encryption.Key)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize field cipher: %w", err)
	}

	c.TxManager = service.NewTransactionManager(db, cfg.Transaction, log)
	c.AuditService = service.NewAuditService(c.AuditRepo, log)

	c.AuthService, err = service.NewAuthService(c.UserRepo, c.Sessions, c.AuditService, cfg.Auth, log)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	c.UnitService = service.NewUnitService(c.UnitRepo, c.TxManager, c.AuditService, c.Publisher, log)
	c.OnboardingService = service.NewOnboardingService(
		c.UserRepo,
		c.TenantRepo,
		c.LeaseRepo,
		c.UnitService,
		c.AuthService,
		cipher,
		c.TxManager,
		c.AuditService,
		c.Publisher,
		log,
	)
	c.OccupancyService = service.NewOccupancyService(c.UnitRepo)

	c.HealthHandler = handler.NewHealthHandler(db)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService)
	c.UnitHandler = handler.NewUnitHandler(c.UnitService)
	c.TenantHandler = handler.NewTenantHandler(c.OnboardingService)
	c.LeaseHandler = handler.NewLeaseHandler(c.OnboardingService)
	c.OccupancyHandler = handler.NewOccupancyHandler(c.OccupancyService)
	c.AuditHandler = handler.NewAuditHandler(c.AuditService)

	return c, nil
}

func (c *Container) initSessions(ctx context.Context) error {
	switch c.Config.Session.Store {
	case "redis":
		client, err := session.NewRedisClient(ctx, c.Config.Redis)
		if err != nil {
			return err
		}
		c.Redis = client
		c.Sessions = session.NewRedisStore(client, c.Config.Redis.KeyPrefix)
		c.Log.Info("Using redis session store", zap.String("addr", c.Config.Redis.Addr))
	default:
		store := session.NewDatabaseStore(c.SessionRepo)
		c.Sessions = store
		c.Sweeper = store
	}
	return nil
}

func (c *Container) initPublisher() error {
	if !c.Config.NATS.Enabled {
		c.Publisher = events.NoopPublisher{}
		return nil
	}

	nc, err := events.Connect(c.Config.NATS, c.Log)
	if err != nil {
		return err
	}
	c.Publisher = events.NewNATSPublisher(nc, c.Config.NATS.SubjectPrefix)
	c.Log.Info("Publishing domain events to NATS", zap.String("url", c.Config.NATS.URL))
	return nil
}

// Close 释放事件发布与 Redis 连接，数据库由调用方关闭
func (c *Container) Close() error {
	var errs []error
	if c.Publisher != nil {
		errs = append(errs, c.Publisher.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	return errors.Join(errs...)
}
