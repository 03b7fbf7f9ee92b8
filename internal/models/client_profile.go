package models

import "time"

// ClientProfile holds the external client's contact details for a project.
// Its contact email is the default recipient for change orders.
type ClientProfile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProjectID    uint      `gorm:"uniqueIndex;not null" json:"project_id"`
	Company      string    `gorm:"size:200" json:"company"`
	ContactName  string    `gorm:"size:200" json:"contact_name"`
	ContactEmail string    `gorm:"size:255" json:"contact_email"`
	ContactPhone string    `gorm:"size:50" json:"contact_phone"`
	Address      string    `gorm:"size:500" json:"address"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (ClientProfile) TableName() string { return "client_profiles" }
