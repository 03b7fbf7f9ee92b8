package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/clearview-hq/clearview/backend/internal/models"
	"github.com/clearview-hq/clearview/backend/internal/utils"
	"github.com/clearview-hq/clearview/backend/pkg/logger"
	"github.com/clearview-hq/clearview/backend/pkg/response"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// defaultLinkExpiryDays is the secure link lifetime when config is absent
const defaultLinkExpiryDays = 7

// ChangeOrderService drives the change order lifecycle: creation by an
// internal owner/editor, delivery to a client over a single-use tokenized
// link, and the client's decision coming back through that link.
type ChangeOrderService struct {
	db    *gorm.DB
	perm  *PermissionService
	email *EmailService
}

// NewChangeOrderService creates a new change order service
func NewChangeOrderService(db *gorm.DB) *ChangeOrderService {
	return &ChangeOrderService{
		db:    db,
		perm:  NewPermissionService(db),
		email: NewEmailService(db),
	}
}

// ChangeOrderItemInput is one priced line item in a create/update payload
type ChangeOrderItemInput struct {
	Description string  `json:"description" binding:"required"`
	Cost        float64 `json:"cost"`
}

// CreateChangeOrderRequest is the payload for creating a change order
type CreateChangeOrderRequest struct {
	Subject        string                 `json:"subject" binding:"required"`
	Description    string                 `json:"description"`
	DueDate        *time.Time             `json:"due_date"`
	Items          []ChangeOrderItemInput `json:"items" binding:"required,min=1"`
	RecipientEmail string                 `json:"recipient_email"`
	RecipientName  string                 `json:"recipient_name"`
}

// Create persists a change order with its line items and secure link
// recipients. The total amount is always the sum of item costs; a client
// submitted amount is ignored. The recipient defaults to the project's
// client profile contact when no explicit email is given.
func (s *ChangeOrderService) Create(projectID, userID uint, req *CreateChangeOrderRequest) (*models.ChangeOrder, error) {
	if _, err := s.perm.RequireEditor(projectID, userID); err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, response.NewBadRequest("subject is required")
	}
	if len(req.Items) == 0 {
		return nil, response.NewBadRequest("at least one line item is required")
	}

	var amount float64
	items := make([]models.ChangeOrderItem, 0, len(req.Items))
	for i, item := range req.Items {
		desc := strings.TrimSpace(item.Description)
		if desc == "" {
			return nil, response.NewBadRequest(fmt.Sprintf("line item %d has no description", i+1))
		}
		if item.Cost < 0 {
			return nil, response.NewBadRequest(fmt.Sprintf("line item %d has a negative cost", i+1))
		}
		amount += item.Cost
		items = append(items, models.ChangeOrderItem{
			Description: desc,
			Cost:        item.Cost,
			Position:    i,
		})
	}

	recipEmail, recipName, err := s.resolveRecipient(projectID, req.RecipientEmail, req.RecipientName)
	if err != nil {
		return nil, err
	}

	order := &models.ChangeOrder{
		ProjectID:   projectID,
		Number:      newChangeOrderNumber(),
		Subject:     subject,
		Description: strings.TrimSpace(req.Description),
		Amount:      amount,
		DueDate:     req.DueDate,
		Status:      models.ChangeOrderStatusPending,
		Items:       items,
		CreatedBy:   userID,
	}
	if recipEmail != "" {
		token, err := utils.GenerateSecureToken()
		if err != nil {
			return nil, err
		}
		order.Recipients = []models.ChangeOrderRecipient{{
			Email:     recipEmail,
			Name:      recipName,
			Token:     token,
			Status:    models.RecipientStatusPending,
			ExpiresAt: time.Now().Add(linkExpiry()),
		}}
	}

	if err := s.db.Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// resolveRecipient picks the client-facing recipient: an explicit email wins,
// otherwise the project's client profile contact, otherwise none
func (s *ChangeOrderService) resolveRecipient(projectID uint, email, name string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return "", "", response.NewBadRequest("invalid recipient email address")
		}
		return email, name, nil
	}

	var profile models.ClientProfile
	err := s.db.Where("project_id = ?", projectID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", nil
		}
		return "", "", err
	}
	return strings.ToLower(strings.TrimSpace(profile.ContactEmail)), profile.ContactName, nil
}

func newChangeOrderNumber() string {
	return "CO-" + strings.ToUpper(uuid.New().String()[:8])
}

func linkExpiry() time.Duration {
	days := defaultLinkExpiryDays
	if cfg := GetAppConfig(); cfg != nil && cfg.LinkExpiryDays > 0 {
		days = cfg.LinkExpiryDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// List returns a project's change orders, newest first. Any member can read.
func (s *ChangeOrderService) List(projectID, userID uint) ([]models.ChangeOrder, error) {
	if _, err := s.perm.ResolveRole(projectID, userID); err != nil {
		return nil, err
	}

	var orders []models.ChangeOrder
	if err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Get returns one change order with items and recipients
func (s *ChangeOrderService) Get(changeOrderID, userID uint) (*models.ChangeOrder, error) {
	order, err := s.loadOrder(changeOrderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.perm.ResolveRole(order.ProjectID, userID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *ChangeOrderService) loadOrder(changeOrderID uint) (*models.ChangeOrder, error) {
	var order models.ChangeOrder
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).
		Preload("Recipients").
		First(&order, changeOrderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("change order not found")
		}
		return nil, err
	}
	return &order, nil
}

// UpdateChangeOrderRequest carries editable fields for a pending order
type UpdateChangeOrderRequest struct {
	Subject     string                 `json:"subject"`
	Description string                 `json:"description"`
	DueDate     *time.Time             `json:"due_date"`
	Items       []ChangeOrderItemInput `json:"items"`
}

// Update edits a pending change order. Decided orders are immutable until
// explicitly reverted.
func (s *ChangeOrderService) Update(changeOrderID, userID uint, req *UpdateChangeOrderRequest) (*models.ChangeOrder, error) {
	order, err := s.loadOrder(changeOrderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.perm.RequireEditor(order.ProjectID, userID); err != nil {
		return nil, err
	}
	if order.Status != models.ChangeOrderStatusPending {
		return nil, response.NewBadRequest("only pending change orders can be edited")
	}

	updates := map[string]interface{}{}
	if subject := strings.TrimSpace(req.Subject); subject != "" {
		updates["subject"] = subject
	}
	if req.Description != "" {
		updates["description"] = strings.TrimSpace(req.Description)
	}
	if req.DueDate != nil {
		updates["due_date"] = req.DueDate
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(req.Items) > 0 {
			var amount float64
			items := make([]models.ChangeOrderItem, 0, len(req.Items))
			for i, item := range req.Items {
				desc := strings.TrimSpace(item.Description)
				if desc == "" {
					return response.NewBadRequest(fmt.Sprintf("line item %d has no description", i+1))
				}
				if item.Cost < 0 {
					return response.NewBadRequest(fmt.Sprintf("line item %d has a negative cost", i+1))
				}
				amount += item.Cost
				items = append(items, models.ChangeOrderItem{
					ChangeOrderID: order.ID,
					Description:   desc,
					Cost:          item.Cost,
					Position:      i,
				})
			}
			if err := tx.Where("change_order_id = ?", order.ID).
				Delete(&models.ChangeOrderItem{}).Error; err != nil {
				return err
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
			updates["amount"] = amount
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.ChangeOrder{}).Where("id = ?", order.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return s.loadOrder(changeOrderID)
}

// SendResult reports where the change order went and until when the link works
type SendResult struct {
	Order          *models.ChangeOrder `json:"change_order"`
	RecipientEmail string              `json:"recipient_email"`
	ExpiresAt      time.Time           `json:"expires_at"`
}

// Send delivers a change order to the client over email. The secure link is
// persisted before the email goes out, so a delivery failure leaves a valid
// link behind; the failure itself is returned to the caller.
func (s *ChangeOrderService) Send(changeOrderID, userID uint, emailOverride, nameOverride string) (*SendResult, error) {
	order, err := s.loadOrder(changeOrderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.perm.RequireEditor(order.ProjectID, userID); err != nil {
		return nil, err
	}

	targetEmail := strings.ToLower(strings.TrimSpace(emailOverride))
	targetName := strings.TrimSpace(nameOverride)
	if targetEmail != "" {
		if _, err := mail.ParseAddress(targetEmail); err != nil {
			return nil, response.NewBadRequest("invalid recipient email address")
		}
	} else if len(order.Recipients) > 0 {
		targetEmail = order.Recipients[0].Email
		targetName = order.Recipients[0].Name
	} else {
		targetEmail, targetName, err = s.resolveRecipient(order.ProjectID, "", "")
		if err != nil {
			return nil, err
		}
	}
	if targetEmail == "" {
		return nil, response.NewBadRequest("client email required: set one on the client profile or pass it explicitly")
	}

	recipient, err := s.ensureRecipient(order, targetEmail, targetName)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(linkExpiry())
	if err := s.db.Model(recipient).Updates(map[string]interface{}{
		"expires_at": expiresAt,
		"name":       targetName,
	}).Error; err != nil {
		return nil, err
	}
	recipient.ExpiresAt = expiresAt

	var project models.Project
	if err := s.db.First(&project, order.ProjectID).Error; err != nil {
		return nil, err
	}

	dueDate := ""
	if order.DueDate != nil {
		dueDate = order.DueDate.Format(time.DateOnly)
	}
	subject, body := s.email.BuildChangeOrderEmail(&ChangeOrderEmailData{
		ProjectName: project.Name,
		Number:      order.Number,
		Subject:     order.Subject,
		Amount:      order.Amount,
		DueDate:     dueDate,
		RespondURL:  respondURL(recipient.Token),
	})
	if err := s.email.Send([]string{recipient.Email}, subject, body); err != nil {
		logger.Errorf("[ChangeOrder] delivery of %s to %s failed: %v", order.Number, recipient.Email, err)
		return nil, response.NewServerError("the approval link was created but the email could not be sent")
	}

	now := time.Now()
	if err := s.db.Model(order).Updates(map[string]interface{}{
		"last_sent_at":    now,
		"link_expires_at": expiresAt,
	}).Error; err != nil {
		return nil, err
	}
	order.LastSentAt = &now
	order.LinkExpiresAt = &expiresAt

	return &SendResult{Order: order, RecipientEmail: recipient.Email, ExpiresAt: expiresAt}, nil
}

// ensureRecipient reuses the pending link row for an email or creates one
func (s *ChangeOrderService) ensureRecipient(order *models.ChangeOrder, email, name string) (*models.ChangeOrderRecipient, error) {
	var recipient models.ChangeOrderRecipient
	err := s.db.Where("change_order_id = ? AND email = ? AND status = ?",
		order.ID, email, models.RecipientStatusPending).
		First(&recipient).Error
	if err == nil {
		return &recipient, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	token, err := utils.GenerateSecureToken()
	if err != nil {
		return nil, err
	}
	recipient = models.ChangeOrderRecipient{
		ChangeOrderID: order.ID,
		Email:         email,
		Name:          name,
		Token:         token,
		Status:        models.RecipientStatusPending,
		ExpiresAt:     time.Now().Add(linkExpiry()),
	}
	if err := s.db.Create(&recipient).Error; err != nil {
		return nil, err
	}
	return &recipient, nil
}

func respondURL(token string) string {
	base := ""
	if cfg := GetAppConfig(); cfg != nil {
		base = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return base + "/respond?token=" + token
}

// VerifyResult is the sanitized view handed to an external client. It never
// exposes tokens, other recipients, or internal user records.
type VerifyResult struct {
	ChangeOrder *ClientChangeOrderView `json:"change_order"`
	Project     *ClientProjectView     `json:"project"`
	Client      *ClientContactView     `json:"client,omitempty"`
}

type ClientChangeOrderView struct {
	Number      string                   `json:"number"`
	Subject     string                   `json:"subject"`
	Description string                   `json:"description"`
	Amount      float64                  `json:"amount"`
	DueDate     *time.Time               `json:"due_date"`
	Status      string                   `json:"status"`
	Items       []models.ChangeOrderItem `json:"items"`
}

type ClientProjectView struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Manager string `json:"manager"`
}

type ClientContactView struct {
	Company     string `json:"company"`
	ContactName string `json:"contact_name"`
}

// Verify resolves a secure link token. Unknown tokens are 404; consumed or
// expired links are 410. A successful view stamps last_viewed_at.
func (s *ChangeOrderService) Verify(token string) (*VerifyResult, error) {
	recipient, err := s.findLink(token)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(recipient).Update("last_viewed_at", now).Error; err != nil {
		logger.Warnf("[ChangeOrder] stamping last_viewed_at on link %d failed: %v", recipient.ID, err)
	}

	order, err := s.loadOrder(recipient.ChangeOrderID)
	if err != nil {
		return nil, err
	}
	var project models.Project
	if err := s.db.First(&project, order.ProjectID).Error; err != nil {
		return nil, err
	}

	result := &VerifyResult{
		ChangeOrder: &ClientChangeOrderView{
			Number:      order.Number,
			Subject:     order.Subject,
			Description: order.Description,
			Amount:      order.Amount,
			DueDate:     order.DueDate,
			Status:      order.Status,
			Items:       order.Items,
		},
		Project: &ClientProjectView{
			Name:    project.Name,
			Address: project.Address,
			Manager: project.Manager,
		},
	}

	var profile models.ClientProfile
	if err := s.db.Where("project_id = ?", order.ProjectID).First(&profile).Error; err == nil {
		result.Client = &ClientContactView{
			Company:     profile.Company,
			ContactName: profile.ContactName,
		}
	}

	return result, nil
}

// findLink looks up a secure link token and rejects dead links
func (s *ChangeOrderService) findLink(token string) (*models.ChangeOrderRecipient, error) {
	if token == "" {
		return nil, response.NewBadRequest("token is required")
	}

	var recipient models.ChangeOrderRecipient
	err := s.db.Where("token = ?", token).First(&recipient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("link not found")
		}
		return nil, err
	}

	if recipient.Consumed() {
		return nil, response.NewGone("this link has already been used")
	}
	if recipient.Expired(time.Now()) {
		return nil, response.NewGone("this link has expired")
	}
	return &recipient, nil
}

// RespondRequest is a client's decision submitted through a secure link
type RespondRequest struct {
	Decision       string `json:"decision" binding:"required"`
	Notes          string `json:"notes"`
	SignedName     string `json:"signed_name" binding:"required"`
	SignedEmail    string `json:"signed_email" binding:"required,email"`
	SignatureImage string `json:"signature_image"`
}

// Respond records a client decision arriving through a secure link. The link
// flip to completed is a conditional update inside the transaction, so two
// concurrent submissions on the same token cannot both succeed.
func (s *ChangeOrderService) Respond(token string, req *RespondRequest) (*models.ChangeOrder, error) {
	recipient, err := s.findLink(token)
	if err != nil {
		return nil, err
	}

	decision := strings.TrimSpace(req.Decision)
	if !models.ClientDecision(decision) {
		return nil, response.NewBadRequest("decision must be approved, denied or needs_info")
	}
	notes := strings.TrimSpace(req.Notes)
	if decision == models.ChangeOrderStatusNeedsInfo && notes == "" {
		return nil, response.NewBadRequest("please describe what additional information you need")
	}
	signedName := strings.TrimSpace(req.SignedName)
	signedEmail := strings.ToLower(strings.TrimSpace(req.SignedEmail))
	if signedName == "" {
		return nil, response.NewBadRequest("signer name is required")
	}
	if _, err := mail.ParseAddress(signedEmail); err != nil {
		return nil, response.NewBadRequest("invalid signer email address")
	}

	// Upload outside the transaction; an orphaned image is acceptable, a
	// long-held transaction is not
	signatureURL := ""
	if req.SignatureImage != "" {
		data, contentType, err := DecodeSignatureDataURL(req.SignatureImage)
		if err != nil {
			return nil, err
		}
		if storage := GetStorage(); storage != nil {
			ctx, cancel := context.WithTimeout(context.Background(), storageUploadTimeout)
			defer cancel()
			signatureURL, err = storage.UploadSignature(ctx, recipient.ChangeOrderID, data, contentType)
			if err != nil {
				logger.Errorf("[ChangeOrder] signature upload for link %d failed: %v", recipient.ID, err)
				return nil, response.NewServerError("signature image could not be stored")
			}
		} else {
			logger.Warnf("[ChangeOrder] signature submitted on link %d but storage is disabled", recipient.ID)
		}
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ChangeOrderRecipient{}).
			Where("token = ? AND status = ?", token, models.RecipientStatusPending).
			Updates(map[string]interface{}{
				"status":       models.RecipientStatusCompleted,
				"decision":     decision,
				"completed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return response.NewGone("this link has already been used")
		}

		updates := map[string]interface{}{
			"status":       decision,
			"signed_name":  signedName,
			"signed_email": signedEmail,
		}
		if signatureURL != "" {
			updates["signature_url"] = signatureURL
		}
		// needs_info is not a terminal decision, so the decision fields
		// stay untouched for a later approve/deny
		if decision != models.ChangeOrderStatusNeedsInfo {
			updates["decision_notes"] = notes
			updates["decided_at"] = now
		}

		// A client response only ever moves an undecided order forward.
		// Guarded in SQL so a second link cannot overwrite a decision.
		fromStatuses := []string{models.ChangeOrderStatusPending, models.ChangeOrderStatusNeedsInfo}
		if decision == models.ChangeOrderStatusNeedsInfo {
			fromStatuses = []string{models.ChangeOrderStatusPending}
		}
		orderRes := tx.Model(&models.ChangeOrder{}).
			Where("id = ? AND status IN ?", recipient.ChangeOrderID, fromStatuses).
			Updates(updates)
		if orderRes.Error != nil {
			return orderRes.Error
		}
		if orderRes.RowsAffected != 1 {
			return response.NewGone("this change order has already been decided")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.loadOrder(recipient.ChangeOrderID)
	if err != nil {
		return nil, err
	}

	s.notifyOwners(order, decision, notes, signedName)
	return order, nil
}

// notifyOwners emails the project's internal side about a client decision.
// Best-effort: failures are logged and never bubble up.
func (s *ChangeOrderService) notifyOwners(order *models.ChangeOrder, decision, notes, signedName string) {
	var project models.Project
	if err := s.db.First(&project, order.ProjectID).Error; err != nil {
		logger.Warnf("[ChangeOrder] owner notify skipped, project %d lookup failed: %v", order.ProjectID, err)
		return
	}

	emails := map[string]bool{}
	var owner models.User
	if err := s.db.First(&owner, project.CreatedBy).Error; err == nil {
		emails[owner.Email] = true
	}
	var members []models.ProjectMember
	if err := s.db.Where("project_id = ? AND status = ? AND role = ?",
		order.ProjectID, models.MemberStatusAccepted, models.RoleOwner).
		Find(&members).Error; err == nil {
		for _, m := range members {
			emails[m.Email] = true
		}
	}
	if len(emails) == 0 {
		return
	}
	to := make([]string, 0, len(emails))
	for e := range emails {
		to = append(to, e)
	}

	subject, body := s.email.BuildDecisionEmail(&DecisionEmailData{
		ProjectName: project.Name,
		Number:      order.Number,
		Subject:     order.Subject,
		Decision:    decision,
		Notes:       notes,
		SignedName:  signedName,
	})

	if queue := GetNotifyQueue(); queue != nil {
		if err := queue.Enqueue(&EmailTask{To: to, Subject: subject, Body: body, Kind: "decision"}); err != nil {
			logger.Warnf("[ChangeOrder] decision notify enqueue failed: %v", err)
		}
		return
	}
	if err := s.email.Send(to, subject, body); err != nil {
		logger.Warnf("[ChangeOrder] decision notify failed: %v", err)
	}
}

// Decide records an internal reviewer's decision. Pending orders accept any
// decision; needs_info orders can still be approved or denied.
func (s *ChangeOrderService) Decide(changeOrderID, userID uint, decision, notes string) (*models.ChangeOrder, error) {
	order, err := s.loadOrder(changeOrderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.perm.RequireEditor(order.ProjectID, userID); err != nil {
		return nil, err
	}

	valid := decision == models.ChangeOrderStatusApproved ||
		decision == models.ChangeOrderStatusApprovedWithCond ||
		decision == models.ChangeOrderStatusDenied ||
		decision == models.ChangeOrderStatusNeedsInfo
	if !valid {
		return nil, response.NewBadRequest("unknown decision")
	}

	switch order.Status {
	case models.ChangeOrderStatusPending:
		// any decision allowed
	case models.ChangeOrderStatusNeedsInfo:
		if decision != models.ChangeOrderStatusApproved && decision != models.ChangeOrderStatusDenied {
			return nil, response.NewBadRequest("a change order awaiting information can only be approved or denied")
		}
	default:
		return nil, response.NewBadRequest("this change order has already been decided")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":         decision,
		"decision_notes": strings.TrimSpace(notes),
		"decided_at":     now,
	}
	if decision == models.ChangeOrderStatusNeedsInfo {
		delete(updates, "decided_at")
	}
	if err := s.db.Model(order).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.loadOrder(changeOrderID)
}

// Revert moves a decided change order back to pending. Explicit internal
// override, used when a client decision must be redone.
func (s *ChangeOrderService) Revert(changeOrderID, userID uint) (*models.ChangeOrder, error) {
	order, err := s.loadOrder(changeOrderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.perm.RequireEditor(order.ProjectID, userID); err != nil {
		return nil, err
	}
	if order.Status == models.ChangeOrderStatusPending {
		return nil, response.NewBadRequest("change order is already pending")
	}

	if err := s.db.Model(order).Updates(map[string]interface{}{
		"status":         models.ChangeOrderStatusPending,
		"decision_notes": "",
		"decided_at":     nil,
		"signed_name":    "",
		"signed_email":   "",
	}).Error; err != nil {
		return nil, err
	}

	return s.loadOrder(changeOrderID)
}

// Delete removes a change order with its items and secure links in one
// transaction
func (s *ChangeOrderService) Delete(changeOrderID, userID uint) error {
	order, err := s.loadOrder(changeOrderID)
	if err != nil {
		return err
	}
	if _, err := s.perm.RequireEditor(order.ProjectID, userID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("change_order_id = ?", order.ID).
			Delete(&models.ChangeOrderRecipient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("change_order_id = ?", order.ID).
			Delete(&models.ChangeOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(order).Error
	})
}
