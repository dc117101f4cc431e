package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/permission"
	"mediahub/internal/core/ports"
	apperrors "mediahub/pkg/errors"
	"mediahub/pkg/logger"
	"mediahub/pkg/tracing"
)

// Keys set on the gin context for guarded handlers.
const (
	ContextUserIDKey      = "user_id"
	ContextPermissionsKey = "permissions"
	ContextTokenKey       = "token"
)

// Interceptor wraps handlers with authentication, authorization and audit.
// It holds no mutable state and may be shared by every route.
type Interceptor struct {
	auth   ports.AuthService
	access ports.AccessService
	audit  ports.AuditRecorder
	logger *zap.SugaredLogger
}

func NewInterceptor(auth ports.AuthService, access ports.AccessService, audit ports.AuditRecorder, logger *zap.SugaredLogger) *Interceptor {
	return &Interceptor{
		auth:   auth,
		access: access,
		audit:  audit,
		logger: logger,
	}
}

// Guard resolves the caller, checks that it holds every required code and only
// then runs h. With no required codes any authenticated caller passes.
func (i *Interceptor) Guard(op string, h gin.HandlerFunc, required ...permission.Code) gin.HandlerFunc {
	want := permission.NewSet(required...)

	return func(c *gin.Context) {
		entry := domain.AuditEntry{
			Operation: op,
			Method:    c.Request.Method,
			Path:      c.FullPath(),
			Caller:    c.ClientIP(),
			StartedAt: time.Now(),
			Outcome:   domain.OutcomeFailed,
		}

		defer func() {
			r := recover()
			entry.Elapsed = time.Since(entry.StartedAt)
			entry.Status = responseStatus(c)
			if r != nil {
				entry.Outcome = domain.OutcomePanicked
				entry.Status = http.StatusInternalServerError
			}
			i.record(c.Request.Context(), entry)
			if r != nil {
				panic(r)
			}
		}()

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			entry.Outcome = domain.OutcomeUnauthenticated
			abortWith(c, apperrors.NewAuthenticationRequiredError())
			return
		}

		ctx := c.Request.Context()
		userID, err := i.auth.Authenticate(ctx, token)
		if err != nil {
			entry.Outcome = domain.OutcomeUnauthenticated
			i.logger.Debugw("authentication failed", "operation", op, "error", err)
			abortWith(c, apperrors.FromDomain(err))
			return
		}
		entry.UserID = userID

		held, err := i.access.EffectivePermissions(ctx, userID)
		if err != nil {
			i.logger.Errorw("failed to resolve permissions", "operation", op, "user_id", userID, "error", err)
			abortWith(c, apperrors.FromDomain(err))
			return
		}

		decision := permission.Decide(held, want)
		if !decision.Allowed {
			entry.Outcome = domain.OutcomeDenied
			i.logger.Warnw("permission denied",
				"operation", op,
				"user_id", userID,
				"missing", decision.Missing.Strings(),
			)
			abortWith(c, apperrors.NewPermissionDeniedError())
			return
		}

		ctx = logger.WithUserID(ctx, uint64(userID))
		tracing.AddSpanAttributes(ctx,
			tracing.UserIDKey.Int64(int64(userID)),
			tracing.OperationKey.String(op),
		)
		c.Request = c.Request.WithContext(ctx)
		c.Set(ContextUserIDKey, userID)
		c.Set(ContextPermissionsKey, held)
		c.Set(ContextTokenKey, token)

		h(c)

		if len(c.Errors) == 0 {
			entry.Outcome = domain.OutcomeAllowed
		}
	}
}

// record never lets a recorder failure reach the caller.
func (i *Interceptor) record(ctx context.Context, entry domain.AuditEntry) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Errorw("audit recorder panicked", "operation", entry.Operation, "panic", fmt.Sprint(r))
		}
	}()
	if err := i.audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		i.logger.Errorw("failed to record audit entry", "operation", entry.Operation, "error", err)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// responseStatus reports the status the client will see. Handler errors are
// rendered later by ErrorHandlerMiddleware, so they are classified here.
func responseStatus(c *gin.Context) int {
	if !c.Writer.Written() && len(c.Errors) > 0 {
		return apperrors.FromDomain(c.Errors.Last().Err).HTTPStatus
	}
	return c.Writer.Status()
}

// CurrentUserID returns the caller resolved by Guard.
func CurrentUserID(c *gin.Context) (domain.UserID, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(domain.UserID)
	return id, ok
}

// CurrentPermissions returns the permission set computed for this request.
func CurrentPermissions(c *gin.Context) permission.Set {
	if v, ok := c.Get(ContextPermissionsKey); ok {
		if set, ok := v.(permission.Set); ok {
			return set
		}
	}
	return permission.NewSet()
}

func CurrentToken(c *gin.Context) string {
	return c.GetString(ContextTokenKey)
}
