package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/permission"
	"mediahub/internal/core/ports"
	"mediahub/internal/infrastructure/middleware"
	"mediahub/pkg/response"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) SetupRoutes(router *gin.Engine, guard *middleware.Interceptor) {
	api := router.Group("/api/users")
	{
		api.GET("", guard.Guard("users.list", h.ListUsers, permission.UserView))
		api.GET("/me", guard.Guard("users.me", h.GetMe))
		api.GET("/:id", guard.Guard("users.get", h.GetUser, permission.UserView))
		api.POST("/:id/roles", guard.Guard("users.assignRole", h.AssignRole, permission.UserEdit, permission.RoleView))
		api.DELETE("/:id/roles/:roleId", guard.Guard("users.unassignRole", h.UnassignRole, permission.UserEdit))
		api.POST("/:id/points", guard.Guard("users.adjustPoints", h.AdjustPoints, permission.UserEdit))

		api.GET("/me/bindings", guard.Guard("bindings.list", h.ListBindings, permission.BindingEdit))
		api.POST("/me/bindings", guard.Guard("bindings.add", h.AddBinding, permission.BindingEdit))
		api.DELETE("/me/bindings/:bindingId", guard.Guard("bindings.remove", h.RemoveBinding, permission.BindingEdit))
	}
}

type AssignRoleRequest struct {
	RoleID domain.RoleID `json:"roleId" binding:"required"`
}

type AdjustPointsRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}

type AddBindingRequest struct {
	Platform   domain.Platform `json:"platform" binding:"required"`
	ExternalID string          `json:"externalId" binding:"required,max=64"`
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	users, err := h.userService.List(c.Request.Context(), offset, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, users)
}

func (h *UserHandler) GetMe(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	h.writeProfile(c, id)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	h.writeProfile(c, domain.UserID(id))
}

func (h *UserHandler) writeProfile(c *gin.Context, id domain.UserID) {
	profile, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, profile)
}

func (h *UserHandler) AssignRole(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req AssignRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.AssignRole(c.Request.Context(), domain.UserID(id), req.RoleID); err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, nil)
}

func (h *UserHandler) UnassignRole(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	roleID, ok := uintParam(c, "roleId")
	if !ok {
		return
	}

	if err := h.userService.UnassignRole(c.Request.Context(), domain.UserID(id), domain.RoleID(roleID)); err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, nil)
}

func (h *UserHandler) AdjustPoints(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req AdjustPointsRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.AdjustPoints(c.Request.Context(), domain.UserID(id), req.Delta)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, user)
}

func (h *UserHandler) ListBindings(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	bindings, err := h.userService.ListBindings(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, bindings)
}

func (h *UserHandler) AddBinding(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req AddBindingRequest
	if !bindJSON(c, &req) {
		return
	}

	binding, err := h.userService.AddBinding(c.Request.Context(), id, req.Platform, req.ExternalID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, binding)
}

func (h *UserHandler) RemoveBinding(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	bindingID, ok := uintParam(c, "bindingId")
	if !ok {
		return
	}

	if err := h.userService.RemoveBinding(c.Request.Context(), id, bindingID); err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, nil)
}
