package handlers

import (
	"github.com/clearview-hq/clearview/backend/internal/middleware"
	"github.com/clearview-hq/clearview/backend/internal/services"
	"github.com/clearview-hq/clearview/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ClientProfileHandler struct {
	profileService *services.ClientProfileService
}

func NewClientProfileHandler(db *gorm.DB) *ClientProfileHandler {
	return &ClientProfileHandler{profileService: services.NewClientProfileService(db)}
}

// Get returns the project's client profile
// GET /api/projects/:id/client
func (h *ClientProfileHandler) Get(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	profile, err := h.profileService.Get(projectID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, profile)
}

// Upsert creates or replaces the project's client profile
// PUT /api/projects/:id/client
func (h *ClientProfileHandler) Upsert(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.ClientProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.profileService.Upsert(projectID, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, profile)
}
