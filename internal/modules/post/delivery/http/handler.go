package handler

import (
	"errors"
	"net/http"

	postDto "anoa.com/devconnector/internal/modules/post/dto"
	post "anoa.com/devconnector/internal/modules/post/service"
	"anoa.com/devconnector/pkg/logger"
	"anoa.com/devconnector/pkg/ratelimit"
	"anoa.com/devconnector/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PostHandler struct {
	service post.PostService
	log     logger.Logger
}

func NewPostHandler(service post.PostService, log logger.Logger) *PostHandler {
	return &PostHandler{service: service, log: log}
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	var req postDto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.CreatePost(c.Request.Context(), userID, req)
	if err != nil {
		var rateLimitErr *ratelimit.Error
		if errors.As(err, &rateLimitErr) {
			response.RetryAfter(c, rateLimitErr.RetryAfter.Seconds())
		}
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PostHandler) ListPosts(c *gin.Context) {
	res, err := h.service.ListPosts(c.Request.Context())
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid ID"})
		return
	}

	res, err := h.service.GetPostByID(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PostHandler) GetPostsByUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid ID"})
		return
	}

	res, err := h.service.GetPostsByUserID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid ID"})
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), userID, postID); err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Post removed"})
}
