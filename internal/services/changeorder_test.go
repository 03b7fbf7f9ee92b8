package services

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/clearview-hq/clearview/backend/internal/models"
	"gorm.io/gorm"
)

func createTestChangeOrder(t *testing.T, svc *ChangeOrderService, projectID, userID uint, recipientEmail string) *models.ChangeOrder {
	t.Helper()
	order, err := svc.Create(projectID, userID, &CreateChangeOrderRequest{
		Subject: "Kitchen cabinet upgrade",
		Items: []ChangeOrderItemInput{
			{Description: "Custom cabinets", Cost: 4200},
			{Description: "Installation labor", Cost: 1300},
		},
		RecipientEmail: recipientEmail,
	})
	if err != nil {
		t.Fatalf("failed to create change order: %v", err)
	}
	return order
}

func seedClientProfile(t *testing.T, db *gorm.DB, projectID uint, email string) {
	t.Helper()
	profile := &models.ClientProfile{
		ProjectID:    projectID,
		Company:      "Harbor Homes LLC",
		ContactName:  "Dana Harbor",
		ContactEmail: email,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to seed client profile: %v", err)
	}
}

func TestChangeOrderCreate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "client@example.com")

	if order.Amount != 5500 {
		t.Errorf("amount should be the sum of line items, got %v", order.Amount)
	}
	if order.Status != models.ChangeOrderStatusPending {
		t.Errorf("expected pending, got %s", order.Status)
	}
	if !strings.HasPrefix(order.Number, "CO-") || len(order.Number) != 11 {
		t.Errorf("unexpected number format %q", order.Number)
	}
	if len(order.Recipients) != 1 {
		t.Fatalf("expected one recipient, got %d", len(order.Recipients))
	}
	recip := order.Recipients[0]
	if recip.Email != "client@example.com" {
		t.Errorf("recipient email = %s", recip.Email)
	}
	if len(recip.Token) != 64 {
		t.Errorf("expected 64 hex char token, got %d chars", len(recip.Token))
	}
	if recip.Status != models.RecipientStatusPending {
		t.Errorf("recipient status = %s", recip.Status)
	}
}

func TestChangeOrderCreate_RecipientFromClientProfile(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	seedClientProfile(t, db, project.ID, "Dana@HarborHomes.com")
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "")
	if len(order.Recipients) != 1 {
		t.Fatalf("expected recipient derived from client profile, got %d", len(order.Recipients))
	}
	if order.Recipients[0].Email != "dana@harborhomes.com" {
		t.Errorf("recipient email = %s", order.Recipients[0].Email)
	}
	if order.Recipients[0].Name != "Dana Harbor" {
		t.Errorf("recipient name = %s", order.Recipients[0].Name)
	}
}

func TestChangeOrderCreate_Validation(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	viewer := createTestUser(t, db, "viewer@example.com", "Viewer")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	addAcceptedMember(t, db, project.ID, viewer, models.RoleViewer)
	svc := NewChangeOrderService(db)

	_, err := svc.Create(project.ID, viewer.ID, &CreateChangeOrderRequest{
		Subject: "x", Items: []ChangeOrderItemInput{{Description: "y", Cost: 1}},
	})
	if got := appErrStatus(t, err); got != http.StatusForbidden {
		t.Errorf("viewer create: expected 403, got %d", got)
	}

	_, err = svc.Create(project.ID, owner.ID, &CreateChangeOrderRequest{
		Subject: "No items",
	})
	if got := appErrStatus(t, err); got != http.StatusBadRequest {
		t.Errorf("no items: expected 400, got %d", got)
	}

	_, err = svc.Create(project.ID, owner.ID, &CreateChangeOrderRequest{
		Subject: "Bad cost",
		Items:   []ChangeOrderItemInput{{Description: "y", Cost: -5}},
	})
	if got := appErrStatus(t, err); got != http.StatusBadRequest {
		t.Errorf("negative cost: expected 400, got %d", got)
	}
}

func TestChangeOrderSend_NoRecipientEmail(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	svc := NewChangeOrderService(db)

	// No recipient on the order and no client profile
	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "")

	_, err := svc.Send(order.ID, owner.ID, "", "")
	if got := appErrStatus(t, err); got != http.StatusBadRequest {
		t.Errorf("expected 400 without a client email, got %d", got)
	}
}

func TestChangeOrderSend_EmailFailureKeepsLinkValid(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "client@example.com")

	// SMTP is unconfigured, so delivery must fail hard
	_, err := svc.Send(order.ID, owner.ID, "", "")
	if got := appErrStatus(t, err); got != http.StatusInternalServerError {
		t.Errorf("expected delivery failure to surface as 500, got %d", got)
	}

	// The link row survives and still verifies
	var recipient models.ChangeOrderRecipient
	if err := db.Where("change_order_id = ?", order.ID).First(&recipient).Error; err != nil {
		t.Fatalf("link row missing: %v", err)
	}
	if _, err := svc.Verify(recipient.Token); err != nil {
		t.Errorf("link should remain valid after a failed delivery: %v", err)
	}
}

func TestChangeOrderVerify(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	seedClientProfile(t, db, project.ID, "dana@harborhomes.com")
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "client@example.com")
	token := order.Recipients[0].Token

	result, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.ChangeOrder.Number != order.Number {
		t.Errorf("number = %s", result.ChangeOrder.Number)
	}
	if result.ChangeOrder.Amount != 5500 {
		t.Errorf("amount = %v", result.ChangeOrder.Amount)
	}
	if len(result.ChangeOrder.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(result.ChangeOrder.Items))
	}
	if result.Project.Name != project.Name {
		t.Errorf("project name = %s", result.Project.Name)
	}
	if result.Client == nil || result.Client.ContactName != "Dana Harbor" {
		t.Error("client profile missing from verify payload")
	}

	var recipient models.ChangeOrderRecipient
	db.Where("token = ?", token).First(&recipient)
	if recipient.LastViewedAt == nil {
		t.Error("last_viewed_at not stamped")
	}
}

func TestChangeOrderVerify_DeadLinks(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "client@example.com")
	token := order.Recipients[0].Token

	_, err := svc.Verify("deadbeef")
	if got := appErrStatus(t, err); got != http.StatusNotFound {
		t.Errorf("unknown token: expected 404, got %d", got)
	}

	db.Model(&models.ChangeOrderRecipient{}).Where("token = ?", token).
		Update("expires_at", time.Now().Add(-time.Hour))
	_, err = svc.Verify(token)
	if got := appErrStatus(t, err); got != http.StatusGone {
		t.Errorf("expired token: expected 410, got %d", got)
	}

	db.Model(&models.ChangeOrderRecipient{}).Where("token = ?", token).
		Updates(map[string]interface{}{
			"expires_at": time.Now().Add(time.Hour),
			"status":     models.RecipientStatusCompleted,
		})
	_, err = svc.Verify(token)
	if got := appErrStatus(t, err); got != http.StatusGone {
		t.Errorf("completed token: expected 410, got %d", got)
	}
}

func TestChangeOrderRespond_Approve(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "client@example.com")
	token := order.Recipients[0].Token

	updated, err := svc.Respond(token, &RespondRequest{
		Decision:    models.ChangeOrderStatusApproved,
		Notes:       "Looks good, proceed.",
		SignedName:  "Dana Harbor",
		SignedEmail: "Dana@HarborHomes.com",
	})
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if updated.Status != models.ChangeOrderStatusApproved {
		t.Errorf("status = %s", updated.Status)
	}
	if updated.SignedName != "Dana Harbor" {
		t.Errorf("signed_name = %s", updated.SignedName)
	}
	if updated.SignedEmail != "dana@harborhomes.com" {
		t.Errorf("signed_email = %s", updated.SignedEmail)
	}
	if updated.DecisionNotes != "Looks good, proceed." {
		t.Errorf("decision_notes = %q", updated.DecisionNotes)
	}
	if updated.DecidedAt == nil {
		t.Error("decided_at not set")
	}

	var recipient models.ChangeOrderRecipient
	db.Where("token = ?", token).First(&recipient)
	if recipient.Status != models.RecipientStatusCompleted {
		t.Errorf("link status = %s", recipient.Status)
	}
	if recipient.Decision != models.ChangeOrderStatusApproved {
		t.Errorf("link decision = %s", recipient.Decision)
	}
	if recipient.CompletedAt == nil {
		t.Error("completed_at not set")
	}
}

func TestChangeOrderRespond_SingleUse(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "client@example.com")
	token := order.Recipients[0].Token

	req := &RespondRequest{
		Decision:    models.ChangeOrderStatusDenied,
		SignedName:  "Dana Harbor",
		SignedEmail: "dana@harborhomes.com",
	}
	if _, err := svc.Respond(token, req); err != nil {
		t.Fatalf("first respond failed: %v", err)
	}

	_, err := svc.Respond(token, req)
	if got := appErrStatus(t, err); got != http.StatusGone {
		t.Errorf("second respond: expected 410, got %d", got)
	}
}

func TestChangeOrderRespond_SecondLinkCannotOverrideDecision(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "client@example.com")
	firstToken := order.Recipients[0].Token

	// Sending to a second address mints a second live link; delivery
	// fails (no SMTP seeded) but the row is persisted first
	svc.Send(order.ID, owner.ID, "partner@example.com", "Lee Partner")
	var second models.ChangeOrderRecipient
	if err := db.Where("change_order_id = ? AND email = ?", order.ID, "partner@example.com").
		First(&second).Error; err != nil {
		t.Fatalf("second link row missing: %v", err)
	}

	if _, err := svc.Respond(firstToken, &RespondRequest{
		Decision:    models.ChangeOrderStatusApproved,
		SignedName:  "Dana Harbor",
		SignedEmail: "dana@harborhomes.com",
	}); err != nil {
		t.Fatalf("first respond failed: %v", err)
	}

	_, err := svc.Respond(second.Token, &RespondRequest{
		Decision:    models.ChangeOrderStatusDenied,
		SignedName:  "Lee Partner",
		SignedEmail: "lee@example.com",
	})
	if got := appErrStatus(t, err); got != http.StatusGone {
		t.Errorf("respond on a decided order: expected 410, got %d", got)
	}

	var reloaded models.ChangeOrder
	db.First(&reloaded, order.ID)
	if reloaded.Status != models.ChangeOrderStatusApproved {
		t.Errorf("first decision must stick, got %s", reloaded.Status)
	}
	if reloaded.SignedName != "Dana Harbor" {
		t.Errorf("signed_name overwritten: %s", reloaded.SignedName)
	}

	// The failed attempt rolls back whole, leaving the second link pending
	db.Where("token = ?", second.Token).First(&second)
	if second.Status != models.RecipientStatusPending {
		t.Errorf("second link should stay pending, got %s", second.Status)
	}
}

func TestChangeOrderRespond_ResolvesNeedsInfo(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "client@example.com")
	firstToken := order.Recipients[0].Token

	if _, err := svc.Respond(firstToken, &RespondRequest{
		Decision:    models.ChangeOrderStatusNeedsInfo,
		Notes:       "Need the labor breakdown.",
		SignedName:  "Dana Harbor",
		SignedEmail: "dana@harborhomes.com",
	}); err != nil {
		t.Fatalf("needs_info respond failed: %v", err)
	}

	// A fresh link can still settle an order waiting on information
	svc.Send(order.ID, owner.ID, "client@example.com", "")
	var fresh models.ChangeOrderRecipient
	if err := db.Where("change_order_id = ? AND status = ?", order.ID, models.RecipientStatusPending).
		First(&fresh).Error; err != nil {
		t.Fatalf("fresh link row missing: %v", err)
	}

	updated, err := svc.Respond(fresh.Token, &RespondRequest{
		Decision:    models.ChangeOrderStatusApproved,
		Notes:       "Breakdown received, approved.",
		SignedName:  "Dana Harbor",
		SignedEmail: "dana@harborhomes.com",
	})
	if err != nil {
		t.Fatalf("follow-up respond failed: %v", err)
	}
	if updated.Status != models.ChangeOrderStatusApproved {
		t.Errorf("status = %s", updated.Status)
	}
}

func TestChangeOrderRespond_NeedsInfo(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "client@example.com")
	token := order.Recipients[0].Token

	// needs_info without notes mutates nothing
	_, err := svc.Respond(token, &RespondRequest{
		Decision:    models.ChangeOrderStatusNeedsInfo,
		SignedName:  "Dana Harbor",
		SignedEmail: "dana@harborhomes.com",
	})
	if got := appErrStatus(t, err); got != http.StatusBadRequest {
		t.Errorf("expected 400 without notes, got %d", got)
	}
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("link must stay usable after the rejected submit: %v", err)
	}

	updated, err := svc.Respond(token, &RespondRequest{
		Decision:    models.ChangeOrderStatusNeedsInfo,
		Notes:       "Please break down the labor cost.",
		SignedName:  "Dana Harbor",
		SignedEmail: "dana@harborhomes.com",
	})
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if updated.Status != models.ChangeOrderStatusNeedsInfo {
		t.Errorf("status = %s", updated.Status)
	}
	// needs_info is non-terminal, so the decision fields stay empty
	if updated.DecisionNotes != "" {
		t.Errorf("decision_notes should stay empty, got %q", updated.DecisionNotes)
	}
	if updated.DecidedAt != nil {
		t.Error("decided_at should stay null for needs_info")
	}
}

func TestChangeOrderRespond_BadPayload(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "client@example.com")
	token := order.Recipients[0].Token

	tests := []struct {
		name string
		req  *RespondRequest
	}{
		{"unknown decision", &RespondRequest{Decision: "maybe", SignedName: "D", SignedEmail: "d@x.com"}},
		{"internal-only decision", &RespondRequest{Decision: models.ChangeOrderStatusApprovedWithCond, SignedName: "D", SignedEmail: "d@x.com"}},
		{"missing signer name", &RespondRequest{Decision: models.ChangeOrderStatusApproved, SignedEmail: "d@x.com"}},
		{"bad signer email", &RespondRequest{Decision: models.ChangeOrderStatusApproved, SignedName: "D", SignedEmail: "not-an-email"}},
		{"bad signature image", &RespondRequest{Decision: models.ChangeOrderStatusApproved, SignedName: "D", SignedEmail: "d@x.com", SignatureImage: "nonsense"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Respond(token, tt.req)
			if got := appErrStatus(t, err); got != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", got)
			}
		})
	}
}

func TestChangeOrderDecide(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "client@example.com")

	updated, err := svc.Decide(order.ID, owner.ID, models.ChangeOrderStatusApprovedWithCond, "Approved if done by June.")
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if updated.Status != models.ChangeOrderStatusApprovedWithCond {
		t.Errorf("status = %s", updated.Status)
	}
	if updated.DecidedAt == nil {
		t.Error("decided_at not set")
	}

	// Decided orders reject further decisions
	_, err = svc.Decide(order.ID, owner.ID, models.ChangeOrderStatusDenied, "")
	if got := appErrStatus(t, err); got != http.StatusBadRequest {
		t.Errorf("expected 400 on a decided order, got %d", got)
	}
}

func TestChangeOrderDecide_NeedsInfoTransitions(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "client@example.com")

	if _, err := svc.Decide(order.ID, owner.ID, models.ChangeOrderStatusNeedsInfo, ""); err != nil {
		t.Fatalf("Decide needs_info failed: %v", err)
	}

	// needs_info can only move to approved or denied
	_, err := svc.Decide(order.ID, owner.ID, models.ChangeOrderStatusNeedsInfo, "")
	if got := appErrStatus(t, err); got != http.StatusBadRequest {
		t.Errorf("needs_info to needs_info: expected 400, got %d", got)
	}

	updated, err := svc.Decide(order.ID, owner.ID, models.ChangeOrderStatusApproved, "All clear now.")
	if err != nil {
		t.Fatalf("approve after needs_info failed: %v", err)
	}
	if updated.Status != models.ChangeOrderStatusApproved {
		t.Errorf("status = %s", updated.Status)
	}
}

func TestChangeOrderRevert(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "client@example.com")
	token := order.Recipients[0].Token

	if _, err := svc.Respond(token, &RespondRequest{
		Decision:    models.ChangeOrderStatusDenied,
		SignedName:  "Dana Harbor",
		SignedEmail: "dana@harborhomes.com",
	}); err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	reverted, err := svc.Revert(order.ID, owner.ID)
	if err != nil {
		t.Fatalf("Revert failed: %v", err)
	}
	if reverted.Status != models.ChangeOrderStatusPending {
		t.Errorf("status = %s", reverted.Status)
	}
	if reverted.DecidedAt != nil || reverted.DecisionNotes != "" || reverted.SignedName != "" {
		t.Error("decision fields not cleared")
	}

	_, err = svc.Revert(order.ID, owner.ID)
	if got := appErrStatus(t, err); got != http.StatusBadRequest {
		t.Errorf("revert of pending: expected 400, got %d", got)
	}
}

func TestChangeOrderUpdate_PendingOnly(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "client@example.com")

	updated, err := svc.Update(order.ID, owner.ID, &UpdateChangeOrderRequest{
		Subject: "Kitchen and pantry upgrade",
		Items: []ChangeOrderItemInput{
			{Description: "Custom cabinets", Cost: 4200},
			{Description: "Pantry shelving", Cost: 900},
			{Description: "Installation labor", Cost: 1500},
		},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Subject != "Kitchen and pantry upgrade" {
		t.Errorf("subject = %s", updated.Subject)
	}
	if updated.Amount != 6600 {
		t.Errorf("amount not recomputed, got %v", updated.Amount)
	}
	if len(updated.Items) != 3 {
		t.Errorf("expected 3 items, got %d", len(updated.Items))
	}

	if _, err := svc.Decide(order.ID, owner.ID, models.ChangeOrderStatusApproved, ""); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	_, err = svc.Update(order.ID, owner.ID, &UpdateChangeOrderRequest{Subject: "Too late"})
	if got := appErrStatus(t, err); got != http.StatusBadRequest {
		t.Errorf("update of decided order: expected 400, got %d", got)
	}
}

func TestChangeOrderDelete(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", "Owner")
	viewer := createTestUser(t, db, "viewer@example.com", "Viewer")
	project := createTestProject(t, db, "Riverside Duplex", owner.ID)
	addAcceptedMember(t, db, project.ID, viewer, models.RoleViewer)
	svc := NewChangeOrderService(db)

	order := createTestChangeOrder(t, svc, project.ID, owner.ID, "client@example.com")

	err := svc.Delete(order.ID, viewer.ID)
	if got := appErrStatus(t, err); got != http.StatusForbidden {
		t.Errorf("viewer delete: expected 403, got %d", got)
	}

	if err := svc.Delete(order.ID, owner.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var items, recipients int64
	db.Model(&models.ChangeOrderItem{}).Where("change_order_id = ?", order.ID).Count(&items)
	db.Model(&models.ChangeOrderRecipient{}).Where("change_order_id = ?", order.ID).Count(&recipients)
	if items != 0 || recipients != 0 {
		t.Errorf("orphaned rows after delete: items=%d recipients=%d", items, recipients)
	}

	_, err = svc.Get(order.ID, owner.ID)
	if got := appErrStatus(t, err); got != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", got)
	}
}
