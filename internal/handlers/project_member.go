package handlers

import (
	"github.com/clearview-hq/clearview/backend/internal/middleware"
	"github.com/clearview-hq/clearview/backend/internal/services"
	"github.com/clearview-hq/clearview/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProjectMemberHandler exposes the project roster and the invite flow
type ProjectMemberHandler struct {
	inviteService *services.InviteService
	authService   *services.AuthService
}

func NewProjectMemberHandler(db *gorm.DB, authService *services.AuthService) *ProjectMemberHandler {
	return &ProjectMemberHandler{
		inviteService: services.NewInviteService(db),
		authService:   authService,
	}
}

// List returns members and pending invites of a project
// GET /api/projects/:id/members
func (h *ProjectMemberHandler) List(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	members, err := h.inviteService.List(projectID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, members)
}

// Invite adds a pending membership and emails the invitee
// POST /api/projects/:id/invites
func (h *ProjectMemberHandler) Invite(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	result, err := h.inviteService.Create(projectID, userID, middleware.GetUserEmail(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.LogInfo("invite", "create", "member invited", &userID,
		c.ClientIP(), c.Request.UserAgent(),
		gin.H{"project_id": projectID, "email": result.Member.Email, "role": result.Member.Role})
	response.Created(c, result)
}

// Accept claims all pending invites addressed to the caller's email
// POST /api/invites/accept
func (h *ProjectMemberHandler) Accept(c *gin.Context) {
	user, err := h.authService.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	members, err := h.inviteService.AcceptPending(user)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"members": members})
}

type updateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole changes a member's role, owner only
// PUT /api/projects/:id/members/:memberId
func (h *ProjectMemberHandler) UpdateRole(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseID(c, "memberId")
	if !ok {
		return
	}

	var req updateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.inviteService.UpdateRole(projectID, memberID, middleware.GetUserID(c), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, member)
}

// Remove deletes a membership row
// DELETE /api/projects/:id/members/:memberId
func (h *ProjectMemberHandler) Remove(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseID(c, "memberId")
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.inviteService.Remove(projectID, memberID, userID); err != nil {
		response.Error(c, err)
		return
	}

	services.LogInfo("invite", "remove", "member removed", &userID,
		c.ClientIP(), c.Request.UserAgent(),
		gin.H{"project_id": projectID, "member_id": memberID})
	response.Success(c, gin.H{"message": "member removed"})
}
