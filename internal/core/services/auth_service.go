package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/ports"
	"mediahub/pkg/utils"
	"mediahub/pkg/validation"
)

// Claims is the payload of an issued token. The jti makes every login value
// unique; sub carries the user id.
type Claims struct {
	jwt.RegisteredClaims
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	ResetTTL   time.Duration
	BcryptCost int
}

type AuthService struct {
	cfg      AuthConfig
	users    ports.UserRepository
	roles    ports.RoleRepository
	tokens   ports.TokenRepository
	resets   ports.PasswordResetRepository
	notifier ports.ResetNotifier
	now      ports.Clock
	logger   *zap.SugaredLogger
}

func NewAuthService(
	cfg AuthConfig,
	users ports.UserRepository,
	roles ports.RoleRepository,
	tokens ports.TokenRepository,
	resets ports.PasswordResetRepository,
	notifier ports.ResetNotifier,
	logger *zap.SugaredLogger,
) *AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		cfg:      cfg,
		users:    users,
		roles:    roles,
		tokens:   tokens,
		resets:   resets,
		notifier: notifier,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source used for issuing and checking tokens.
func (s *AuthService) WithClock(clock ports.Clock) *AuthService {
	s.now = clock
	return s
}

func (s *AuthService) Register(ctx context.Context, name, password string) (*domain.User, error) {
	if err := validation.ValidateUsername(name); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}

	if _, err := s.users.GetByName(ctx, name); err == nil {
		return nil, fmt.Errorf("user %q already exists: %w", name, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	role, err := s.roles.GetByName(ctx, domain.RoleNameUser)
	if err != nil {
		return nil, fmt.Errorf("failed to load default role: %w", err)
	}

	hash, err := hashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		PasswordHash: hash,
		RoleIDs:      []domain.RoleID{role.ID},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Infow("user registered", "user_id", user.ID, "name", user.Name)
	return user, nil
}

// Login never tells the caller whether the name or the password was wrong.
func (s *AuthService) Login(ctx context.Context, name, password string) (*domain.AuthToken, error) {
	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrAuthenticationRequired)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warnw("login rejected", "user_id", user.ID)
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrAuthenticationRequired)
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	s.logger.Infow("user logged in", "user_id", user.ID, "expires_at", token.ExpiresAt)
	return token, nil
}

func (s *AuthService) issue(userID domain.UserID) (*domain.AuthToken, error) {
	now := s.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(s.cfg.TokenTTL)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "mediahub",
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &domain.AuthToken{
		Token:     signed,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Authenticate requires a valid signature, a stored record and an active
// state. Expiry is evaluated here, at lookup.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.UserID, error) {
	if token == "" {
		return 0, fmt.Errorf("missing token: %w", domain.ErrAuthenticationRequired)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("token expired: %w", domain.ErrAuthenticationRequired)
		}
		return 0, fmt.Errorf("invalid token: %w", domain.ErrAuthenticationRequired)
	}

	stored, err := s.tokens.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("unknown token: %w", domain.ErrAuthenticationRequired)
		}
		return 0, err
	}

	if state := stored.State(s.now()); state != domain.TokenActive {
		return 0, fmt.Errorf("token is %s: %w", state, domain.ErrAuthenticationRequired)
	}
	if claims.Subject != strconv.FormatUint(uint64(stored.UserID), 10) {
		return 0, fmt.Errorf("token subject mismatch: %w", domain.ErrAuthenticationRequired)
	}

	return stored.UserID, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.tokens.Revoke(ctx, token, s.now().UTC()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("unknown token: %w", domain.ErrAuthenticationRequired)
		}
		return err
	}
	return nil
}

func (s *AuthService) ForgetPassword(ctx context.Context, name string) error {
	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		return err
	}

	code, err := utils.GenerateResetCode()
	if err != nil {
		return err
	}
	reset := &domain.PasswordReset{
		Code:      code,
		UserID:    user.ID,
		ExpiresAt: s.now().UTC().Add(s.cfg.ResetTTL),
	}
	if err := s.resets.Save(ctx, reset); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	if err := s.notifier.NotifyReset(ctx, user, code, reset.ExpiresAt); err != nil {
		return fmt.Errorf("failed to deliver reset code: %w", err)
	}
	return nil
}

// ResetPassword consumes the code before changing the hash so a code can
// only ever be redeemed once. Existing tokens stay valid.
func (s *AuthService) ResetPassword(ctx context.Context, code, newPassword string) error {
	if err := validation.ValidateNonEmptyString(code, "reset code"); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}
	reset, err := s.resets.Get(ctx, code)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	if !reset.Usable(now) {
		return fmt.Errorf("reset code: %w", domain.ErrNotFound)
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}

	user, err := s.users.GetByID(ctx, reset.UserID)
	if err != nil {
		return err
	}
	hash, err := hashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	if err := s.resets.MarkUsed(ctx, code, now); err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Infow("password reset", "user_id", user.ID)
	return nil
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// LogResetNotifier delivers reset codes through the service log.
type LogResetNotifier struct {
	logger *zap.SugaredLogger
}

func NewLogResetNotifier(logger *zap.SugaredLogger) *LogResetNotifier {
	return &LogResetNotifier{logger: logger}
}

func (n *LogResetNotifier) NotifyReset(ctx context.Context, user *domain.User, code string, expiresAt time.Time) error {
	n.logger.Infow("password reset requested",
		"user_id", user.ID,
		"name", user.Name,
		"code", code,
		"expires_at", expiresAt,
	)
	return nil
}
