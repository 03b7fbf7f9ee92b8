package services

import (
	"errors"
	"strings"
	"time"

	"github.com/clearview-hq/clearview/backend/internal/models"
	"github.com/clearview-hq/clearview/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db   *gorm.DB
	perm *PermissionService
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{
		db:   db,
		perm: NewPermissionService(db),
	}
}

type ProjectRequest struct {
	Name          string     `json:"name" binding:"required"`
	Address       string     `json:"address"`
	Manager       string     `json:"manager"`
	ClientName    string     `json:"client_name"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	EstimatedCost float64    `json:"estimated_cost"`
	Status        string     `json:"status"`
}

func validProjectStatus(status string) bool {
	switch status {
	case models.ProjectStatusPlanning, models.ProjectStatusInProgress,
		models.ProjectStatusOnHold, models.ProjectStatusCompleted:
		return true
	}
	return false
}

// Create persists a project owned by the caller
func (s *ProjectService) Create(userID uint, req *ProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewBadRequest("project name is required")
	}
	status := req.Status
	if status == "" {
		status = models.ProjectStatusPlanning
	}
	if !validProjectStatus(status) {
		return nil, response.NewBadRequest("unknown project status")
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, response.NewBadRequest("end date cannot be before start date")
	}

	project := &models.Project{
		Name:          name,
		Address:       strings.TrimSpace(req.Address),
		Manager:       strings.TrimSpace(req.Manager),
		ClientName:    strings.TrimSpace(req.ClientName),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		EstimatedCost: req.EstimatedCost,
		Status:        status,
		CreatedBy:     userID,
	}
	if err := s.db.Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// List returns the projects a user can see: those they created plus those
// where they hold an accepted membership
func (s *ProjectService) List(userID uint) ([]models.Project, error) {
	var memberProjectIDs []uint
	if err := s.db.Model(&models.ProjectMember{}).
		Where("user_id = ? AND status = ?", userID, models.MemberStatusAccepted).
		Pluck("project_id", &memberProjectIDs).Error; err != nil {
		return nil, err
	}

	var projects []models.Project
	query := s.db.Order("created_at DESC")
	if len(memberProjectIDs) > 0 {
		query = query.Where("created_by = ? OR id IN ?", userID, memberProjectIDs)
	} else {
		query = query.Where("created_by = ?", userID)
	}
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Get returns one project; any accepted member can read it
func (s *ProjectService) Get(projectID, userID uint) (*models.Project, error) {
	if _, err := s.perm.ResolveRole(projectID, userID); err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}

// Update edits project fields, owner or editor only
func (s *ProjectService) Update(projectID, userID uint, req *ProjectRequest) (*models.Project, error) {
	if _, err := s.perm.RequireEditor(projectID, userID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = name
	}
	if req.Address != "" {
		updates["address"] = strings.TrimSpace(req.Address)
	}
	if req.Manager != "" {
		updates["manager"] = strings.TrimSpace(req.Manager)
	}
	if req.ClientName != "" {
		updates["client_name"] = strings.TrimSpace(req.ClientName)
	}
	if req.StartDate != nil {
		updates["start_date"] = req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = req.EndDate
	}
	if req.EstimatedCost > 0 {
		updates["estimated_cost"] = req.EstimatedCost
	}
	if req.Status != "" {
		if !validProjectStatus(req.Status) {
			return nil, response.NewBadRequest("unknown project status")
		}
		updates["status"] = req.Status
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Project{}).Where("id = ?", projectID).
			Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete removes a project with everything hanging off it. Owner only.
func (s *ProjectService) Delete(projectID, userID uint) error {
	if err := s.perm.RequireOwner(projectID, userID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var orderIDs []uint
		if err := tx.Model(&models.ChangeOrder{}).
			Where("project_id = ?", projectID).
			Pluck("id", &orderIDs).Error; err != nil {
			return err
		}
		if len(orderIDs) > 0 {
			if err := tx.Where("change_order_id IN ?", orderIDs).
				Delete(&models.ChangeOrderRecipient{}).Error; err != nil {
				return err
			}
			if err := tx.Where("change_order_id IN ?", orderIDs).
				Delete(&models.ChangeOrderItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", projectID).
				Delete(&models.ChangeOrder{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", projectID).
			Delete(&models.ClientProfile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).
			Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
}
