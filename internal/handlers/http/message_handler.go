package http

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/permission"
	"mediahub/internal/core/ports"
	"mediahub/internal/infrastructure/middleware"
	"mediahub/pkg/response"
)

type MessageHandler struct {
	mediaService ports.MediaService
}

func NewMessageHandler(mediaService ports.MediaService) *MessageHandler {
	return &MessageHandler{
		mediaService: mediaService,
	}
}

func (h *MessageHandler) SetupRoutes(router *gin.Engine, guard *middleware.Interceptor) {
	api := router.Group("/api/messages")
	{
		api.POST("", guard.Guard("messages.upload", h.Upload, permission.MessageUpload))
		api.GET("", guard.Guard("messages.byTag", h.ListByTag, permission.MessageView, permission.TagView))
		api.GET("/pending", guard.Guard("messages.pending", h.ListPending, permission.MessageReview))
		api.GET("/mine", guard.Guard("messages.mine", h.ListMine, permission.MessageView))
		api.GET("/:id", guard.Guard("messages.get", h.GetMessage, permission.MessageView))
		api.GET("/:id/texts", guard.Guard("messages.texts", h.Texts, permission.MessageView))
		api.POST("/:id/review", guard.Guard("messages.review", h.Review, permission.MessageReview))
		api.DELETE("/:id", guard.Guard("messages.delete", h.Delete, permission.MessageDelete))

		api.POST("/:id/tags", guard.Guard("tags.add", h.AddTags, permission.TagView, permission.TagEdit))
		api.DELETE("/:id/tags/:tag", guard.Guard("tags.remove", h.RemoveTag, permission.TagEdit))
	}
}

// UploadRequest carries the tagged content as raw JSON; it is decoded through
// the message variant registry.
type UploadRequest struct {
	Type    string          `json:"type" binding:"required"`
	Content json.RawMessage `json:"content" binding:"required"`
	Tags    []string        `json:"tags"`
	Metas   domain.MetaList `json:"metas"`
}

type ReviewRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

type TagsRequest struct {
	Tags []string `json:"tags" binding:"required"`
}

type TextsResponse struct {
	Texts []string `json:"texts"`
}

func (h *MessageHandler) Upload(c *gin.Context) {
	uploader, ok := caller(c)
	if !ok {
		return
	}
	var req UploadRequest
	if !bindJSON(c, &req) {
		return
	}

	typ, err := domain.ParseMessageType(req.Type)
	if err != nil {
		_ = c.Error(err)
		return
	}
	content, err := domain.DecodeMessage(req.Content)
	if err != nil {
		_ = c.Error(err)
		return
	}

	info, err := h.mediaService.Upload(c.Request.Context(), ports.UploadRequest{
		UploaderID: uploader,
		Type:       typ,
		Content:    content,
		Tags:       req.Tags,
		Metas:      req.Metas,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, info)
}

func (h *MessageHandler) GetMessage(c *gin.Context) {
	info, err := h.mediaService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, info)
}

func (h *MessageHandler) Texts(c *gin.Context) {
	texts, err := h.mediaService.Texts(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, TextsResponse{Texts: texts})
}

func (h *MessageHandler) ListByTag(c *gin.Context) {
	tag, ok := c.GetQuery("tag")
	if !ok {
		_ = c.Error(fmt.Errorf("query parameter tag is required: %w", domain.ErrValidation))
		return
	}
	h.writeList(c, func() ([]*domain.MessageInfo, error) {
		return h.mediaService.ListByTag(c.Request.Context(), tag)
	})
}

func (h *MessageHandler) ListPending(c *gin.Context) {
	h.writeList(c, func() ([]*domain.MessageInfo, error) {
		return h.mediaService.ListPending(c.Request.Context())
	})
}

func (h *MessageHandler) ListMine(c *gin.Context) {
	uploader, ok := caller(c)
	if !ok {
		return
	}
	h.writeList(c, func() ([]*domain.MessageInfo, error) {
		return h.mediaService.ListMine(c.Request.Context(), uploader)
	})
}

func (h *MessageHandler) writeList(c *gin.Context, list func() ([]*domain.MessageInfo, error)) {
	infos, err := list()
	if err != nil {
		_ = c.Error(err)
		return
	}
	if infos == nil {
		infos = []*domain.MessageInfo{}
	}
	response.OK(c, infos)
}

func (h *MessageHandler) Review(c *gin.Context) {
	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	info, err := h.mediaService.Review(c.Request.Context(), c.Param("id"), *req.Approved)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, info)
}

func (h *MessageHandler) Delete(c *gin.Context) {
	if err := h.mediaService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, nil)
}

func (h *MessageHandler) AddTags(c *gin.Context) {
	var req TagsRequest
	if !bindJSON(c, &req) {
		return
	}

	info, err := h.mediaService.AddTags(c.Request.Context(), c.Param("id"), req.Tags)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, info)
}

func (h *MessageHandler) RemoveTag(c *gin.Context) {
	info, err := h.mediaService.RemoveTag(c.Request.Context(), c.Param("id"), c.Param("tag"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, info)
}
