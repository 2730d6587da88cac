package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"anoa.com/devconnector/internal/modules/user/dto"
	user "anoa.com/devconnector/internal/modules/user/service"
	"anoa.com/devconnector/pkg/apperror"
	"anoa.com/devconnector/pkg/logger"
	"anoa.com/devconnector/pkg/response"
	"github.com/gin-gonic/gin"
)

const maxAvatarSize = 2 << 20

type UserHandler struct {
	userService user.UserService
	log         logger.Logger
}

func NewUserHandler(userService user.UserService, log logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.userService.Register(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *UserHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.userService.Login(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	u, err := h.userService.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		response.Errors(c, http.StatusBadRequest, "Avatar image is required")
		return
	}
	if fileHeader.Size > maxAvatarSize {
		response.Errors(c, http.StatusBadRequest, "Avatar must be 2MB or smaller")
		return
	}
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		response.Errors(c, http.StatusBadRequest, "Avatar must be a jpg, png, gif or webp image")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Errors(c, http.StatusBadRequest, "Could not read avatar")
		return
	}
	defer file.Close()

	u, err := h.userService.UpdateAvatar(c.Request.Context(), userID, dto.AvatarFile{
		Reader:   file,
		FileName: fileHeader.Filename,
	})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// writeError keeps the {"errors": [...]} shape for credential failures.
func (h *UserHandler) writeError(c *gin.Context, err error) {
	if code := apperror.MapErrorToStatus(err); code == http.StatusBadRequest {
		response.Errors(c, code, apperror.PublicMessage(err))
		return
	}
	response.Error(c, h.log, err)
}
