package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"mediahub/internal/core/ports"
	"mediahub/internal/infrastructure/middleware"
	"mediahub/pkg/response"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// SetupRoutes registers the public auth routes. limit guards the credential
// endpoints against brute force.
func (h *AuthHandler) SetupRoutes(router *gin.Engine, guard *middleware.Interceptor, limit gin.HandlerFunc) {
	api := router.Group("/api/auth")
	{
		api.POST("/register", h.Register)
		api.POST("/login", limit, h.Login)
		api.POST("/forgetPassword", limit, h.ForgetPassword)
		api.POST("/resetPassword", limit, h.ResetPassword)
		api.POST("/logout", guard.Guard("auth.logout", h.Logout))
	}
}

type CredentialsRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

type ForgetPasswordRequest struct {
	Name string `json:"name" binding:"required,max=64"`
}

type ResetPasswordRequest struct {
	Code     string `json:"code" binding:"required,max=128"`
	Password string `json:"password" binding:"required,max=128"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, LoginResponse{Token: token.Token, ExpiresAt: token.ExpiresAt})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.CurrentToken(c)); err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, nil)
}

func (h *AuthHandler) ForgetPassword(c *gin.Context) {
	var req ForgetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ForgetPassword(c.Request.Context(), req.Name); err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Code, req.Password); err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, nil)
}
