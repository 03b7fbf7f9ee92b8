package models

import (
	"time"

	"gorm.io/gorm"
)

// Change order statuses. A pending order can move to any decided status;
// needs_info is non-terminal and can still be approved or denied; an
// internal reviewer may explicitly revert a decided order to pending.
const (
	ChangeOrderStatusPending          = "pending"
	ChangeOrderStatusApproved         = "approved"
	ChangeOrderStatusApprovedWithCond = "approved_with_conditions"
	ChangeOrderStatusDenied           = "denied"
	ChangeOrderStatusNeedsInfo        = "needs_info"
)

// ClientDecision returns true if status is a decision a client may submit
// through a secure link.
func ClientDecision(status string) bool {
	return status == ChangeOrderStatusApproved ||
		status == ChangeOrderStatusDenied ||
		status == ChangeOrderStatusNeedsInfo
}

// ChangeOrder is a proposed scope/cost amendment requiring client approval.
type ChangeOrder struct {
	ID            uint                   `gorm:"primaryKey" json:"id"`
	ProjectID     uint                   `gorm:"index;not null" json:"project_id"`
	Project       *Project               `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Number        string                 `gorm:"size:50;uniqueIndex" json:"number"`
	Subject       string                 `gorm:"size:300;not null" json:"subject"`
	Description   string                 `gorm:"type:text" json:"description"`
	Amount        float64                `gorm:"default:0" json:"amount"` // sum of line item costs
	DueDate       *time.Time             `json:"due_date"`
	Status        string                 `gorm:"size:50;default:pending" json:"status"`
	DecisionNotes string                 `gorm:"type:text" json:"decision_notes"`
	DecidedAt     *time.Time             `json:"decided_at"`
	SignedName    string                 `gorm:"size:200" json:"signed_name"`
	SignedEmail   string                 `gorm:"size:255" json:"signed_email"`
	SignatureURL  string                 `gorm:"size:500" json:"signature_url"`
	LastSentAt    *time.Time             `json:"last_sent_at"`
	LinkExpiresAt *time.Time             `json:"link_expires_at"`
	Items         []ChangeOrderItem      `gorm:"foreignKey:ChangeOrderID" json:"items,omitempty"`
	Recipients    []ChangeOrderRecipient `gorm:"foreignKey:ChangeOrderID" json:"recipients,omitempty"`
	CreatedBy     uint                   `json:"created_by"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	DeletedAt     gorm.DeletedAt         `gorm:"index" json:"-"`
}

func (ChangeOrder) TableName() string { return "change_orders" }

// ChangeOrderItem is a priced line item on a change order.
type ChangeOrderItem struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ChangeOrderID uint      `gorm:"index;not null" json:"change_order_id"`
	Description   string    `gorm:"size:500;not null" json:"description"`
	Cost          float64   `gorm:"not null" json:"cost"`
	Position      int       `gorm:"default:0" json:"position"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (ChangeOrderItem) TableName() string { return "change_order_items" }

// Secure link statuses.
const (
	RecipientStatusPending   = "pending"
	RecipientStatusCompleted = "completed"
)

// ChangeOrderRecipient is a single-use, time-limited secure link granting an
// external client access to view and respond to one change order. The
// pending → completed flip happens at most once, enforced with a conditional
// update at respond time.
type ChangeOrderRecipient struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	ChangeOrderID uint         `gorm:"index;not null" json:"change_order_id"`
	ChangeOrder   *ChangeOrder `gorm:"foreignKey:ChangeOrderID" json:"change_order,omitempty"`
	Email         string       `gorm:"size:255;not null" json:"email"`
	Name          string       `gorm:"size:200" json:"name"`
	Token         string       `gorm:"uniqueIndex;size:128;not null" json:"-"`
	Status        string       `gorm:"size:50;default:pending" json:"status"` // pending, completed
	ExpiresAt     time.Time    `gorm:"index" json:"expires_at"`
	LastViewedAt  *time.Time   `json:"last_viewed_at"`
	CompletedAt   *time.Time   `json:"completed_at"`
	Decision      string       `gorm:"size:50" json:"decision"` // decision recorded on completion
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (ChangeOrderRecipient) TableName() string { return "change_order_recipients" }

// Expired reports whether the link's expiry has passed.
func (r *ChangeOrderRecipient) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Consumed reports whether the link has already been used.
func (r *ChangeOrderRecipient) Consumed() bool {
	return r.Status == RecipientStatusCompleted
}
