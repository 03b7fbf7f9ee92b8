package services

import "testing"

func TestSystemConfigSetGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewSystemConfigService(db)

	if _, err := svc.Get("missing_key"); err == nil {
		t.Error("expected an error for a missing key")
	}
	if got := svc.GetWithDefault("missing_key", "fallback"); got != "fallback" {
		t.Errorf("GetWithDefault = %q", got)
	}

	if err := svc.Set("email_host", "smtp.example.com"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, _ := svc.Get("email_host"); got != "smtp.example.com" {
		t.Errorf("Get = %q", got)
	}

	// Set on an existing key updates in place
	if err := svc.Set("email_host", "smtp2.example.com"); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}
	if got, _ := svc.Get("email_host"); got != "smtp2.example.com" {
		t.Errorf("Get after update = %q", got)
	}
}

func TestSystemConfigGetInt(t *testing.T) {
	db := newTestDB(t)
	svc := NewSystemConfigService(db)

	if got := svc.GetInt("missing", 7); got != 7 {
		t.Errorf("missing key: got %d", got)
	}
	svc.Set("some_number", "42")
	if got := svc.GetInt("some_number", 7); got != 42 {
		t.Errorf("got %d", got)
	}
	svc.Set("not_a_number", "abc")
	if got := svc.GetInt("not_a_number", 7); got != 7 {
		t.Errorf("non-numeric: got %d", got)
	}
}

func TestGetEmailConfig_MasksPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewSystemConfigService(db)

	svc.Set("email_password", "s3cret")
	cfg := svc.GetEmailConfig()
	if !cfg.PasswordSet {
		t.Error("PasswordSet should be true")
	}
	if cfg.Port != 587 {
		t.Errorf("default port = %d", cfg.Port)
	}
}
