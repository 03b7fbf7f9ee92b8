package services

import (
	"errors"
	"testing"

	"github.com/clearview-hq/clearview/backend/internal/models"
	"github.com/clearview-hq/clearview/backend/pkg/response"
)

func appErrStatus(t *testing.T, err error) int {
	t.Helper()
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *response.AppError, got %T: %v", err, err)
	}
	return appErr.HTTPStatus
}

func TestResolveRole_ProjectOwner(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@buildco.com", "Owner")
	project := createTestProject(t, db, "Riverside Remodel", owner.ID)

	svc := NewPermissionService(db)
	role, err := svc.ResolveRole(project.ID, owner.ID)
	if err != nil {
		t.Fatalf("ResolveRole() error = %v", err)
	}
	if role != models.RoleOwner {
		t.Errorf("role = %q, expected owner", role)
	}
}

func TestResolveRole_AcceptedMember(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@buildco.com", "Owner")
	editor := createTestUser(t, db, "editor@buildco.com", "Editor")
	project := createTestProject(t, db, "Riverside Remodel", owner.ID)
	addAcceptedMember(t, db, project.ID, editor, models.RoleEditor)

	svc := NewPermissionService(db)
	role, err := svc.ResolveRole(project.ID, editor.ID)
	if err != nil {
		t.Fatalf("ResolveRole() error = %v", err)
	}
	if role != models.RoleEditor {
		t.Errorf("role = %q, expected editor", role)
	}
}

func TestResolveRole_PendingMemberDenied(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@buildco.com", "Owner")
	invitee := createTestUser(t, db, "new@buildco.com", "New")
	project := createTestProject(t, db, "Riverside Remodel", owner.ID)

	// Pending invite row: user id set but status still pending
	db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    &invitee.ID,
		Email:     invitee.Email,
		Role:      models.RoleViewer,
		Status:    models.MemberStatusPending,
	})

	svc := NewPermissionService(db)
	_, err := svc.ResolveRole(project.ID, invitee.ID)
	if err == nil {
		t.Fatal("pending member should be denied")
	}
	if status := appErrStatus(t, err); status != 403 {
		t.Errorf("status = %d, expected 403", status)
	}
}

func TestResolveRole_NonMemberDenied(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@buildco.com", "Owner")
	stranger := createTestUser(t, db, "stranger@other.com", "Stranger")
	project := createTestProject(t, db, "Riverside Remodel", owner.ID)

	svc := NewPermissionService(db)
	_, err := svc.ResolveRole(project.ID, stranger.ID)
	if err == nil {
		t.Fatal("non-member should be denied")
	}
	if status := appErrStatus(t, err); status != 403 {
		t.Errorf("status = %d, expected 403", status)
	}
}

func TestResolveRole_MissingProject(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "owner@buildco.com", "Owner")

	svc := NewPermissionService(db)
	_, err := svc.ResolveRole(9999, user.ID)
	if err == nil {
		t.Fatal("missing project should error")
	}
	if status := appErrStatus(t, err); status != 404 {
		t.Errorf("status = %d, expected 404", status)
	}
}

func TestRequireEditor(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@buildco.com", "Owner")
	editor := createTestUser(t, db, "editor@buildco.com", "Editor")
	viewer := createTestUser(t, db, "viewer@buildco.com", "Viewer")
	project := createTestProject(t, db, "Riverside Remodel", owner.ID)
	addAcceptedMember(t, db, project.ID, editor, models.RoleEditor)
	addAcceptedMember(t, db, project.ID, viewer, models.RoleViewer)

	svc := NewPermissionService(db)

	if _, err := svc.RequireEditor(project.ID, owner.ID); err != nil {
		t.Errorf("owner should pass RequireEditor: %v", err)
	}
	if _, err := svc.RequireEditor(project.ID, editor.ID); err != nil {
		t.Errorf("editor should pass RequireEditor: %v", err)
	}
	if _, err := svc.RequireEditor(project.ID, viewer.ID); err == nil {
		t.Error("viewer should fail RequireEditor")
	}
}

func TestRequireOwner(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@buildco.com", "Owner")
	editor := createTestUser(t, db, "editor@buildco.com", "Editor")
	project := createTestProject(t, db, "Riverside Remodel", owner.ID)
	addAcceptedMember(t, db, project.ID, editor, models.RoleEditor)

	svc := NewPermissionService(db)

	if err := svc.RequireOwner(project.ID, owner.ID); err != nil {
		t.Errorf("owner should pass RequireOwner: %v", err)
	}
	if err := svc.RequireOwner(project.ID, editor.ID); err == nil {
		t.Error("editor should fail RequireOwner")
	}
}
