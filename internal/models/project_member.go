package models

import (
	"time"

	"gorm.io/gorm"
)

// Member roles, ordered by privilege.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// Membership statuses.
const (
	MemberStatusPending  = "pending"
	MemberStatusAccepted = "accepted"
)

// ValidRole reports whether role is one of the three member roles.
func ValidRole(role string) bool {
	return role == RoleOwner || role == RoleEditor || role == RoleViewer
}

// ProjectMember grants a user a role on a project. A pending invite has a
// NULL user id and is matched by email when the invitee signs in. At most
// one membership row exists per (project, email).
type ProjectMember struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ProjectID  uint           `gorm:"uniqueIndex:idx_project_email;not null" json:"project_id"`
	Project    *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID     *uint          `gorm:"index" json:"user_id"` // nil until invite accepted
	User       *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Email      string         `gorm:"uniqueIndex:idx_project_email;size:255;not null" json:"email"`
	Name       string         `gorm:"size:200" json:"name"`
	Role       string         `gorm:"size:50;default:viewer" json:"role"`     // owner, editor, viewer
	Status     string         `gorm:"size:50;default:pending" json:"status"`  // pending, accepted
	InvitedBy  uint           `json:"invited_by"`
	InvitedAt  time.Time      `json:"invited_at"`
	AcceptedAt *time.Time     `json:"accepted_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProjectMember) TableName() string { return "project_members" }
