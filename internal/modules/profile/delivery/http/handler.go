package handler

import (
	"net/http"

	profileDto "anoa.com/devconnector/internal/modules/profile/dto"
	profile "anoa.com/devconnector/internal/modules/profile/service"
	"anoa.com/devconnector/pkg/logger"
	"anoa.com/devconnector/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProfileHandler struct {
	profileService profile.ProfileService
	log            logger.Logger
}

func NewProfileHandler(profileService profile.ProfileService, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		log:            log,
	}
}

func (h *ProfileHandler) GetCurrentProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	res, err := h.profileService.GetCurrentProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	var input profileDto.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.profileService.UpsertProfile(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	res, err := h.profileService.ListProfiles(c.Request.Context())
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// GetProfileByUserID rejects a malformed id before touching the store.
func (h *ProfileHandler) GetProfileByUserID(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid ID"})
		return
	}

	res, err := h.profileService.GetProfileByUserID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	if err := h.profileService.DeleteAccount(c.Request.Context(), userID); err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "User deleted"})
}

func (h *ProfileHandler) AddExperience(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	var input profileDto.ExperienceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.profileService.AddExperience(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) RemoveExperience(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	res, err := h.profileService.RemoveExperience(c.Request.Context(), userID, c.Param("exp_id"))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) AddEducation(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	var input profileDto.EducationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.profileService.AddEducation(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) RemoveEducation(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	res, err := h.profileService.RemoveEducation(c.Request.Context(), userID, c.Param("edu_id"))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) SearchProfiles(c *gin.Context) {
	res, err := h.profileService.SearchProfiles(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
