// Package http exposes the REST surface. Handlers report failures through
// c.Error; ErrorHandlerMiddleware renders them into the response envelope.
package http

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"mediahub/internal/core/domain"
	"mediahub/internal/infrastructure/middleware"
	apperrors "mediahub/pkg/errors"
)

// bindJSON decodes the body into v. Domain decode failures keep their kind;
// anything else is reported as a malformed body.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		if errors.Is(err, domain.ErrUnknownVariant) || errors.Is(err, domain.ErrValidation) {
			_ = c.Error(err)
		} else {
			_ = c.Error(apperrors.NewValidationError("invalid request body"))
		}
		return false
	}
	return true
}

func uintParam(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		_ = c.Error(fmt.Errorf("%s %q is not a valid id: %w", name, c.Param(name), domain.ErrValidation))
		return 0, false
	}
	return v, true
}

// caller returns the id resolved by the interceptor. Routes using it are
// always guarded; a missing id means the route was registered without Guard.
func caller(c *gin.Context) (domain.UserID, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		_ = c.Error(domain.ErrAuthenticationRequired)
	}
	return id, ok
}
