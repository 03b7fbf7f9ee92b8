package services

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/clearview-hq/clearview/backend/internal/models"
	"github.com/clearview-hq/clearview/backend/pkg/logger"
	"github.com/clearview-hq/clearview/backend/pkg/response"
	"gorm.io/gorm"
)

// InviteService manages project memberships and pending invites
type InviteService struct {
	db    *gorm.DB
	perm  *PermissionService
	email *EmailService
}

// NewInviteService creates a new invite service
func NewInviteService(db *gorm.DB) *InviteService {
	return &InviteService{
		db:    db,
		perm:  NewPermissionService(db),
		email: NewEmailService(db),
	}
}

// CreateInviteRequest is the payload for inviting a teammate
type CreateInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
	Role  string `json:"role"`
}

// InviteResult carries the created member plus a non-fatal email warning
type InviteResult struct {
	Member       *models.ProjectMember `json:"member"`
	EmailWarning string                `json:"email_warning,omitempty"`
}

// Create invites an email address to a project as a pending member.
// The invite email is best-effort: a delivery failure does not roll back
// the membership row and is reported in InviteResult.EmailWarning.
func (s *InviteService) Create(projectID, requesterID uint, requesterEmail string, req *CreateInviteRequest) (*InviteResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = models.RoleViewer
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, response.NewBadRequest("invalid email address")
	}
	if name == "" {
		return nil, response.NewBadRequest("name is required")
	}
	if !models.ValidRole(role) {
		return nil, response.NewBadRequest("role must be owner, editor or viewer")
	}

	requesterRole, err := s.perm.RequireEditor(projectID, requesterID)
	if err != nil {
		return nil, err
	}
	if role == models.RoleOwner && requesterRole != models.RoleOwner {
		return nil, response.NewForbidden("only owners can grant the owner role")
	}
	if email == strings.ToLower(requesterEmail) {
		return nil, response.NewBadRequest("you cannot invite yourself")
	}

	var existing models.ProjectMember
	err = s.db.Where("project_id = ? AND email = ?", projectID, email).First(&existing).Error
	if err == nil {
		return nil, response.NewConflict("this email is already invited to the project")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	member := &models.ProjectMember{
		ProjectID: projectID,
		Email:     email,
		Name:      name,
		Role:      role,
		Status:    models.MemberStatusPending,
		InvitedBy: requesterID,
		InvitedAt: time.Now(),
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, err
	}

	result := &InviteResult{Member: member}
	if warning := s.sendInviteEmail(projectID, requesterID, member); warning != "" {
		result.EmailWarning = warning
	}
	return result, nil
}

// sendInviteEmail dispatches the invite notification and returns a warning
// string on failure instead of an error
func (s *InviteService) sendInviteEmail(projectID, requesterID uint, member *models.ProjectMember) string {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		logger.Warnf("[Invite] project %d lookup for email failed: %v", projectID, err)
		return "invite saved but notification email could not be sent"
	}
	var inviter models.User
	if err := s.db.First(&inviter, requesterID).Error; err != nil {
		logger.Warnf("[Invite] inviter %d lookup for email failed: %v", requesterID, err)
		return "invite saved but notification email could not be sent"
	}

	subject, body := s.email.BuildInviteEmail(&InviteEmailData{
		ProjectName: project.Name,
		InviterName: inviter.Name,
		Role:        member.Role,
		AppURL:      s.appURL(),
	})

	// Sent inline rather than queued; the caller reports a delivery
	// failure as a warning, which a queued send cannot observe
	if err := s.email.Send([]string{member.Email}, subject, body); err != nil {
		logger.Warnf("[Invite] invite email to %s failed: %v", member.Email, err)
		return "invite saved but notification email could not be sent"
	}
	return ""
}

func (s *InviteService) appURL() string {
	if appCfg := GetAppConfig(); appCfg != nil {
		return appCfg.BaseURL
	}
	return ""
}

// AcceptPending links every pending invite matching the user's email to the
// user in one update. Returns the memberships that were activated.
func (s *InviteService) AcceptPending(user *models.User) ([]models.ProjectMember, error) {
	email := strings.ToLower(user.Email)
	now := time.Now()

	res := s.db.Model(&models.ProjectMember{}).
		Where("email = ? AND user_id IS NULL AND status = ?", email, models.MemberStatusPending).
		Updates(map[string]interface{}{
			"user_id":     user.ID,
			"status":      models.MemberStatusAccepted,
			"accepted_at": now,
			"name":        user.Name,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		logger.Infof("[Invite] user %d accepted %d pending invite(s)", user.ID, res.RowsAffected)
	}

	var members []models.ProjectMember
	if err := s.db.Preload("Project").
		Where("user_id = ? AND status = ?", user.ID, models.MemberStatusAccepted).
		Order("accepted_at DESC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// List returns all members and pending invites of a project. Any accepted
// member can see the roster.
func (s *InviteService) List(projectID, requesterID uint) ([]models.ProjectMember, error) {
	if _, err := s.perm.ResolveRole(projectID, requesterID); err != nil {
		return nil, err
	}

	var members []models.ProjectMember
	if err := s.db.Preload("User").
		Where("project_id = ?", projectID).
		Order("invited_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateRole changes a member's role. Owner only; the grantor rule from
// Create applies here too since only owners reach this point.
func (s *InviteService) UpdateRole(projectID, memberID, requesterID uint, role string) (*models.ProjectMember, error) {
	if !models.ValidRole(role) {
		return nil, response.NewBadRequest("role must be owner, editor or viewer")
	}
	if err := s.perm.RequireOwner(projectID, requesterID); err != nil {
		return nil, err
	}

	var member models.ProjectMember
	if err := s.db.Where("id = ? AND project_id = ?", memberID, projectID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("member not found")
		}
		return nil, err
	}

	if err := s.db.Model(&member).Update("role", role).Error; err != nil {
		return nil, err
	}
	member.Role = role
	return &member, nil
}

// Remove deletes a membership row. Owners can remove anyone; members can
// remove themselves (leave the project).
func (s *InviteService) Remove(projectID, memberID, requesterID uint) error {
	var member models.ProjectMember
	if err := s.db.Where("id = ? AND project_id = ?", memberID, projectID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("member not found")
		}
		return err
	}

	selfLeave := member.UserID != nil && *member.UserID == requesterID
	if !selfLeave {
		if err := s.perm.RequireOwner(projectID, requesterID); err != nil {
			return err
		}
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return err
	}
	if selfLeave && project.CreatedBy == requesterID {
		return response.NewBadRequest(fmt.Sprintf("the creator of %s cannot leave it", project.Name))
	}

	// Hard delete; a soft-deleted row would still occupy the
	// (project_id, email) unique index and block a later re-invite
	return s.db.Unscoped().Delete(&member).Error
}
