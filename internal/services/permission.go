package services

import (
	"errors"

	"github.com/clearview-hq/clearview/backend/internal/models"
	"github.com/clearview-hq/clearview/backend/pkg/response"
	"gorm.io/gorm"
)

// PermissionService resolves a user's effective role on a project.
type PermissionService struct {
	db *gorm.DB
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

// ResolveRole returns the caller's effective role on a project. The project
// creator is always owner; anyone else needs an accepted membership row.
func (s *PermissionService) ResolveRole(projectID, userID uint) (string, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", response.NewNotFound("project not found")
		}
		return "", err
	}

	if project.CreatedBy == userID {
		return models.RoleOwner, nil
	}

	var member models.ProjectMember
	err := s.db.Where("project_id = ? AND user_id = ? AND status = ?",
		projectID, userID, models.MemberStatusAccepted).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", response.NewForbidden("you do not have access to this project")
		}
		return "", err
	}

	return member.Role, nil
}

// RequireEditor resolves the role and rejects viewers. Change orders and
// invites are gated on owner or editor.
func (s *PermissionService) RequireEditor(projectID, userID uint) (string, error) {
	role, err := s.ResolveRole(projectID, userID)
	if err != nil {
		return "", err
	}
	if role != models.RoleOwner && role != models.RoleEditor {
		return "", response.NewForbidden("this action requires the owner or editor role")
	}
	return role, nil
}

// RequireOwner resolves the role and rejects everyone but the owner.
func (s *PermissionService) RequireOwner(projectID, userID uint) error {
	role, err := s.ResolveRole(projectID, userID)
	if err != nil {
		return err
	}
	if role != models.RoleOwner {
		return response.NewForbidden("this action requires the owner role")
	}
	return nil
}
