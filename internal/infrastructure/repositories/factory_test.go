package repositories

import (
	"context"
	"testing"
	"time"

	"mediahub/internal/infrastructure/monitoring"
	"mediahub/internal/infrastructure/repositories/memory"
	"mediahub/internal/infrastructure/repositories/relational"
	"mediahub/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRepositoryFactory_FallsBackWithoutRedis(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.DSN = ":memory:"
	cfg.Database.MaxOpenConns = 1
	cfg.Database.MaxIdleConns = 1
	cfg.Redis.Enabled = true
	cfg.Redis.Address = "127.0.0.1:1"

	factory, err := NewRepositoryFactory(cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer factory.Close()

	assert.Nil(t, factory.RedisClient())
	assert.IsType(t, &memory.MemoryMessageRepository{}, factory.CreateMessageRepository())
	assert.IsType(t, &relational.TokenRepository{}, factory.CreateTokenRepository())
	assert.NotNil(t, factory.DB())

	health := monitoring.NewHealthChecker()
	factory.RegisterHealthChecks(health, time.Second)
	status := health.CheckAll(context.Background())
	assert.Equal(t, monitoring.StatusHealthy, status.Status)
	assert.Len(t, status.Checks, 1, "no redis check without a client")
}

func TestRepositoryFactory_MemoryTokenStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.DSN = ":memory:"
	cfg.Database.MaxOpenConns = 1
	cfg.Auth.TokenStore = "memory"

	factory, err := NewRepositoryFactory(cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer factory.Close()

	assert.IsType(t, &memory.MemoryTokenRepository{}, factory.CreateTokenRepository())
}
