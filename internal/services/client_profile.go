package services

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/clearview-hq/clearview/backend/internal/models"
	"github.com/clearview-hq/clearview/backend/pkg/response"
	"gorm.io/gorm"
)

// ClientProfileService maintains the one client contact record per project
type ClientProfileService struct {
	db   *gorm.DB
	perm *PermissionService
}

func NewClientProfileService(db *gorm.DB) *ClientProfileService {
	return &ClientProfileService{
		db:   db,
		perm: NewPermissionService(db),
	}
}

type ClientProfileRequest struct {
	Company      string `json:"company"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Address      string `json:"address"`
	Notes        string `json:"notes"`
}

// Get returns the project's client profile; any member can read it
func (s *ClientProfileService) Get(projectID, userID uint) (*models.ClientProfile, error) {
	if _, err := s.perm.ResolveRole(projectID, userID); err != nil {
		return nil, err
	}

	var profile models.ClientProfile
	err := s.db.Where("project_id = ?", projectID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("no client profile for this project yet")
		}
		return nil, err
	}
	return &profile, nil
}

// Upsert creates or replaces the client profile, owner/editor only
func (s *ClientProfileService) Upsert(projectID, userID uint, req *ClientProfileRequest) (*models.ClientProfile, error) {
	if _, err := s.perm.RequireEditor(projectID, userID); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.ContactEmail))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, response.NewBadRequest("invalid contact email address")
		}
	}

	var profile models.ClientProfile
	err := s.db.Where("project_id = ?", projectID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile.ProjectID = projectID
	profile.Company = strings.TrimSpace(req.Company)
	profile.ContactName = strings.TrimSpace(req.ContactName)
	profile.ContactEmail = email
	profile.ContactPhone = strings.TrimSpace(req.ContactPhone)
	profile.Address = strings.TrimSpace(req.Address)
	profile.Notes = strings.TrimSpace(req.Notes)

	if err := s.db.Save(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
