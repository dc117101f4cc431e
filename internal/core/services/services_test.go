package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/ports"
	"mediahub/internal/infrastructure/repositories/memory"
	"mediahub/internal/infrastructure/repositories/relational"
)

// MockResetNotifier captures delivered reset codes.
type MockResetNotifier struct {
	mock.Mock
}

func (m *MockResetNotifier) NotifyReset(ctx context.Context, user *domain.User, code string, expiresAt time.Time) error {
	args := m.Called(ctx, user, code, expiresAt)
	return args.Error(0)
}

type fixture struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	bindings ports.BindingRepository
	tokens   ports.TokenRepository
	resets   ports.PasswordResetRepository
	comments ports.CommentRepository
	messages ports.MessageRepository

	notifier *MockResetNotifier
	now      time.Time

	auth    *AuthService
	access  *AccessService
	roleSvc *RoleService
	userSvc *UserService
	media   *MediaService
	comment *CommentService
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop().Sugar()

	db, err := relational.Open(relational.Options{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = relational.Close(db) })

	f := &fixture{
		users:    relational.NewUserRepository(db),
		roles:    relational.NewRoleRepository(db),
		bindings: relational.NewBindingRepository(db),
		tokens:   relational.NewTokenRepository(db),
		resets:   relational.NewPasswordResetRepository(db),
		comments: relational.NewCommentRepository(db),
		notifier: &MockResetNotifier{},
		now:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	messages := memory.NewMemoryMessageRepository()
	f.messages = messages

	require.NoError(t, Bootstrap(ctx, BootstrapConfig{
		AdminName:     "root",
		AdminPassword: "rootpass1",
		BcryptCost:    bcrypt.MinCost,
	}, f.users, f.roles, logger))

	f.auth = NewAuthService(AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		ResetTTL:   15 * time.Minute,
		BcryptCost: bcrypt.MinCost,
	}, f.users, f.roles, f.tokens, f.resets, f.notifier, logger).WithClock(f.clock)
	f.access = NewAccessService(f.users, f.roles, logger)
	f.roleSvc = NewRoleService(f.roles, logger)
	f.userSvc = NewUserService(f.users, f.roles, f.bindings, f.access, logger)
	f.media = NewMediaService(MediaConfig{ApprovalPoints: 10, MaxTags: 3}, messages, f.comments, f.users, logger).WithClock(f.clock)
	f.comment = NewCommentService(f.comments, messages, f.access, logger)
	f.comment.now = f.clock
	return f
}

func (f *fixture) register(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), name, "password1")
	require.NoError(t, err)
	return u
}
