package http

import (
	"github.com/gin-gonic/gin"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/permission"
	"mediahub/internal/core/ports"
	"mediahub/internal/infrastructure/middleware"
	"mediahub/pkg/response"
)

type RoleHandler struct {
	roleService ports.RoleService
}

func NewRoleHandler(roleService ports.RoleService) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
	}
}

func (h *RoleHandler) SetupRoutes(router *gin.Engine, guard *middleware.Interceptor) {
	router.GET("/api/permissions", guard.Guard("permissions.list", h.ListPermissions, permission.PermissionView))

	api := router.Group("/api/roles")
	{
		api.GET("", guard.Guard("roles.list", h.ListRoles, permission.RoleView))
		api.POST("", guard.Guard("roles.create", h.CreateRole, permission.RoleEdit))
		api.GET("/:id", guard.Guard("roles.get", h.GetRole, permission.RoleView))
		api.DELETE("/:id", guard.Guard("roles.delete", h.DeleteRole, permission.RoleEdit))
		api.POST("/:id/permissions", guard.Guard("roles.grant", h.Grant, permission.RoleEdit))
		api.DELETE("/:id/permissions/:code", guard.Guard("roles.revoke", h.Revoke, permission.RoleEdit))
	}
}

type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type GrantRequest struct {
	Code permission.Code `json:"code" binding:"required"`
}

func (h *RoleHandler) ListPermissions(c *gin.Context) {
	response.OK(c, permission.All())
}

func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, roles)
}

func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req CreateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, role)
}

func (h *RoleHandler) GetRole(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	role, err := h.roleService.Get(c.Request.Context(), domain.RoleID(id))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, role)
}

func (h *RoleHandler) DeleteRole(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.roleService.Delete(c.Request.Context(), domain.RoleID(id)); err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, nil)
}

func (h *RoleHandler) Grant(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req GrantRequest
	if !bindJSON(c, &req) {
		return
	}
	h.writeRoleAfter(c, domain.RoleID(id), func() error {
		return h.roleService.Grant(c.Request.Context(), domain.RoleID(id), req.Code)
	})
}

func (h *RoleHandler) Revoke(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	code := permission.Code(c.Param("code"))
	h.writeRoleAfter(c, domain.RoleID(id), func() error {
		return h.roleService.Revoke(c.Request.Context(), domain.RoleID(id), code)
	})
}

// writeRoleAfter runs change and responds with the updated role.
func (h *RoleHandler) writeRoleAfter(c *gin.Context, id domain.RoleID, change func() error) {
	if err := change(); err != nil {
		_ = c.Error(err)
		return
	}
	role, err := h.roleService.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, role)
}
