package models

import (
	"time"

	"gorm.io/gorm"
)

// Project statuses.
const (
	ProjectStatusPlanning   = "planning"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusOnHold     = "on_hold"
	ProjectStatusCompleted  = "completed"
)

// Project represents a construction project. Owned by exactly one user
// (the creator); teammates get access through ProjectMember rows.
type Project struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:200;not null" json:"name"`
	Address       string         `gorm:"size:500" json:"address"`
	Manager       string         `gorm:"size:200" json:"manager"`
	ClientName    string         `gorm:"size:200" json:"client_name"`
	StartDate     *time.Time     `json:"start_date"`
	EndDate       *time.Time     `json:"end_date"`
	EstimatedCost float64        `gorm:"default:0" json:"estimated_cost"`
	Status        string         `gorm:"size:50;default:planning" json:"status"`
	CreatedBy     uint           `gorm:"index;not null" json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }
