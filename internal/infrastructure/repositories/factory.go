package repositories

import (
	"time"

	"mediahub/internal/core/ports"
	"mediahub/internal/infrastructure/monitoring"
	"mediahub/internal/infrastructure/repositories/memory"
	redisrepo "mediahub/internal/infrastructure/repositories/redis"
	"mediahub/internal/infrastructure/repositories/relational"
	"mediahub/pkg/config"
	"mediahub/pkg/retry"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RepositoryFactory creates repositories with fallback support. Relational
// data always lives in the database; documents and tokens go to Redis when it
// is reachable.
type RepositoryFactory struct {
	db          *gorm.DB
	useRedis    bool
	memTokens   bool
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

// NewRepositoryFactory opens the database and, if enabled, Redis.
func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	db, err := relational.Open(relational.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Debug:           cfg.Logging.Level == "debug",
		Connect:         connectPolicy(cfg.Database.ConnectAttempts),
	}, logger)
	if err != nil {
		return nil, err
	}

	factory := &RepositoryFactory{
		db:        db,
		useRedis:  cfg.Redis.Enabled,
		memTokens: cfg.Auth.TokenStore == "memory",
		logger:    logger,
	}

	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory document store",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis document store")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory document store")
	}

	return factory, nil
}

func connectPolicy(attempts int) retry.Policy {
	p := retry.DefaultPolicy()
	p.Attempts = attempts
	return p
}

// DB exposes the relational handle for health checks.
func (f *RepositoryFactory) DB() *gorm.DB { return f.db }

// RedisClient is nil when Redis is disabled or unreachable.
func (f *RepositoryFactory) RedisClient() *redis.Client { return f.redisClient }

func (f *RepositoryFactory) CreateMessageRepository() ports.MessageRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisMessageRepository(f.redisClient)
	}
	return memory.NewMemoryMessageRepository()
}

// CreateTokenRepository prefers Redis and otherwise persists tokens in the
// database so they survive restarts. The memory store loses every session on
// restart.
func (f *RepositoryFactory) CreateTokenRepository() ports.TokenRepository {
	if f.memTokens {
		return memory.NewMemoryTokenRepository()
	}
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisTokenRepository(f.redisClient)
	}
	return relational.NewTokenRepository(f.db)
}

func (f *RepositoryFactory) CreateUserRepository() ports.UserRepository {
	return relational.NewUserRepository(f.db)
}

func (f *RepositoryFactory) CreateRoleRepository() ports.RoleRepository {
	return relational.NewRoleRepository(f.db)
}

func (f *RepositoryFactory) CreateBindingRepository() ports.BindingRepository {
	return relational.NewBindingRepository(f.db)
}

func (f *RepositoryFactory) CreatePasswordResetRepository() ports.PasswordResetRepository {
	return relational.NewPasswordResetRepository(f.db)
}

func (f *RepositoryFactory) CreateCommentRepository() ports.CommentRepository {
	return relational.NewCommentRepository(f.db)
}

// Close closes Redis and the database pool.
func (f *RepositoryFactory) Close() error {
	var firstErr error
	if f.redisClient != nil {
		firstErr = redisrepo.CloseRedisClient(f.redisClient)
	}
	if err := relational.Close(f.db); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// RegisterHealthChecks adds readiness checks for the stores in use.
func (f *RepositoryFactory) RegisterHealthChecks(h *monitoring.HealthChecker, timeout time.Duration) {
	h.AddDatabaseCheck(f.db, timeout)
	if f.useRedis && f.redisClient != nil {
		h.AddRedisCheck(f.redisClient, timeout)
	}
}
