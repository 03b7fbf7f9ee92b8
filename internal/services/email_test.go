package services

import (
	"strings"
	"testing"

	"github.com/clearview-hq/clearview/backend/internal/models"
)

func TestEmailService_GetConfig(t *testing.T) {
	db := newTestDB(t)
	rows := []models.SystemConfig{
		{Key: "email_enabled", Value: "true", Group: "email"},
		{Key: "email_host", Value: "smtp.example.com", Group: "email"},
		{Key: "email_port", Value: "465", Group: "email"},
		{Key: "email_from", Value: "noreply@clearview.build", Group: "email"},
		{Key: "email_use_tls", Value: "true", Group: "email"},
	}
	for i := range rows {
		db.Create(&rows[i])
	}

	cfg := NewEmailService(db).GetConfig()

	if !cfg.Enabled {
		t.Error("Enabled should be true")
	}
	if cfg.Host != "smtp.example.com" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.Port != 465 {
		t.Errorf("Port = %d, expected 465", cfg.Port)
	}
	if cfg.From != "noreply@clearview.build" {
		t.Errorf("From = %q", cfg.From)
	}
	if !cfg.UseTLS {
		t.Error("UseTLS should be true")
	}
}

func TestEmailService_GetConfig_DefaultPort(t *testing.T) {
	db := newTestDB(t)

	cfg := NewEmailService(db).GetConfig()
	if cfg.Port != 587 {
		t.Errorf("default Port = %d, expected 587", cfg.Port)
	}
}

func TestEmailService_Send_NotConfigured(t *testing.T) {
	db := newTestDB(t)

	err := NewEmailService(db).Send([]string{"client@example.com"}, "subject", "<p>hi</p>")
	if err == nil {
		t.Error("Send should fail when email is not configured")
	}
}

func TestBuildInviteEmail(t *testing.T) {
	svc := NewEmailService(nil)
	subject, body := svc.BuildInviteEmail(&InviteEmailData{
		ProjectName: "Riverside Remodel",
		InviterName: "Pat Miller",
		Role:        models.RoleEditor,
		AppURL:      "https://app.clearview.build",
	})

	if !strings.Contains(subject, "Riverside Remodel") {
		t.Errorf("subject missing project name: %q", subject)
	}
	if !strings.Contains(body, "Pat Miller") {
		t.Error("body missing inviter name")
	}
	if !strings.Contains(body, "an editor") {
		t.Error("body missing role label")
	}
	if !strings.Contains(body, "https://app.clearview.build") {
		t.Error("body missing app link")
	}
}

func TestBuildInviteEmail_EscapesHTML(t *testing.T) {
	svc := NewEmailService(nil)
	_, body := svc.BuildInviteEmail(&InviteEmailData{
		ProjectName: "<script>alert(1)</script>",
		InviterName: "Pat",
	})

	if strings.Contains(body, "<script>") {
		t.Error("project name not escaped")
	}
}

func TestBuildChangeOrderEmail(t *testing.T) {
	svc := NewEmailService(nil)
	subject, body := svc.BuildChangeOrderEmail(&ChangeOrderEmailData{
		ProjectName: "Riverside Remodel",
		Number:      "CO-1a2b3c4d",
		Subject:     "Kitchen cabinet upgrade",
		Amount:      350,
		DueDate:     "2025-07-01",
		RespondURL:  "https://app.clearview.build/respond?token=abc",
	})

	if !strings.Contains(subject, "CO-1a2b3c4d") {
		t.Errorf("subject missing number: %q", subject)
	}
	if !strings.Contains(body, "$350.00") {
		t.Error("body missing formatted amount")
	}
	if !strings.Contains(body, "https://app.clearview.build/respond?token=abc") {
		t.Error("body missing respond link")
	}
	if !strings.Contains(body, "2025-07-01") {
		t.Error("body missing due date")
	}
}

func TestBuildDecisionEmail(t *testing.T) {
	svc := NewEmailService(nil)

	cases := []struct {
		decision string
		want     string
	}{
		{models.ChangeOrderStatusApproved, "Approved"},
		{models.ChangeOrderStatusApprovedWithCond, "Approved with conditions"},
		{models.ChangeOrderStatusDenied, "Denied"},
		{models.ChangeOrderStatusNeedsInfo, "More information requested"},
	}

	for _, tc := range cases {
		subject, body := svc.BuildDecisionEmail(&DecisionEmailData{
			ProjectName: "Riverside Remodel",
			Number:      "CO-1a2b3c4d",
			Subject:     "Kitchen cabinet upgrade",
			Decision:    tc.decision,
			SignedName:  "Jordan Client",
			Notes:       "Please confirm the hinge finish.",
		})

		if !strings.Contains(subject, tc.want) {
			t.Errorf("decision %s: subject %q missing %q", tc.decision, subject, tc.want)
		}
		if !strings.Contains(body, "Jordan Client") {
			t.Errorf("decision %s: body missing signer", tc.decision)
		}
	}
}
