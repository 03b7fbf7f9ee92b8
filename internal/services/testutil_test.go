package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clearview-hq/clearview/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq uint64

// newTestDB opens an isolated in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddUint64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// Keep the shared in-memory database alive for the whole test.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.ChangeOrder{},
		&models.ChangeOrderItem{},
		&models.ChangeOrderRecipient{},
		&models.ClientProfile{},
		&models.SystemConfig{},
		&models.SystemLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

// createTestUser inserts a user and returns it.
func createTestUser(t *testing.T, db *gorm.DB, email, name string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: name, Password: "x", IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

// createTestProject inserts a project owned by ownerID.
func createTestProject(t *testing.T, db *gorm.DB, name string, ownerID uint) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, CreatedBy: ownerID, Status: models.ProjectStatusInProgress}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return project
}

// addAcceptedMember inserts an accepted membership row for a user.
func addAcceptedMember(t *testing.T, db *gorm.DB, projectID uint, user *models.User, role string) *models.ProjectMember {
	t.Helper()
	now := time.Now()
	member := &models.ProjectMember{
		ProjectID:  projectID,
		UserID:     &user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       role,
		Status:     models.MemberStatusAccepted,
		InvitedAt:  now,
		AcceptedAt: &now,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("create member %s: %v", user.Email, err)
	}
	return member
}
