package http

import (
	"github.com/gin-gonic/gin"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/permission"
	"mediahub/internal/core/ports"
	"mediahub/internal/infrastructure/middleware"
	"mediahub/pkg/response"
)

type CommentHandler struct {
	commentService ports.CommentService
}

func NewCommentHandler(commentService ports.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

func (h *CommentHandler) SetupRoutes(router *gin.Engine, guard *middleware.Interceptor) {
	router.GET("/api/messages/:id/comments", guard.Guard("comments.list", h.ListComments, permission.CommentView))
	router.POST("/api/messages/:id/comments", guard.Guard("comments.create", h.CreateComment, permission.CommentCreate))
	// Ownership, or comment:delete, is checked against the stored comment.
	router.DELETE("/api/comments/:commentId", guard.Guard("comments.delete", h.DeleteComment, permission.CommentView))
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	comments, err := h.commentService.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}
	response.OK(c, comments)
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	author, ok := caller(c)
	if !ok {
		return
	}
	var req CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), c.Param("id"), author, req.Content)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, comment)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	actor, ok := caller(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "commentId")
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), id, actor); err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, nil)
}
