package services

import (
	"errors"
	"strings"
	"time"

	"github.com/clearview-hq/clearview/backend/internal/config"
	"github.com/clearview-hq/clearview/backend/internal/models"
	"github.com/clearview-hq/clearview/backend/internal/utils"
	"github.com/clearview-hq/clearview/backend/pkg/logger"
	"github.com/clearview-hq/clearview/backend/pkg/response"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
	invites   *InviteService
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{
		db:        db,
		jwtConfig: jwtCfg,
		invites:   NewInviteService(db),
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token    string                 `json:"token"`
	User     *models.User           `json:"user"`
	ExpireAt time.Time              `json:"expire_at"`
	Members  []models.ProjectMember `json:"members,omitempty"`
}

// Register creates an account and immediately claims any pending project
// invites addressed to the email
func (s *AuthService) Register(req *RegisterRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewBadRequest("name is required")
	}
	if len(req.Password) < 8 {
		return nil, response.NewBadRequest("password must be at least 8 characters")
	}

	var existing models.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, response.NewConflict("an account with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Password: hashed,
		Name:     name,
		Phone:    strings.TrimSpace(req.Phone),
		Company:  strings.TrimSpace(req.Company),
		IsActive: true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}

	members, err := s.invites.AcceptPending(user)
	if err != nil {
		logger.Warnf("[Auth] accepting invites for new user %d failed: %v", user.ID, err)
		members = nil
	}

	return s.issueToken(user, members)
}

// Login authenticates a user and returns a JWT token plus their memberships
func (s *AuthService) Login(req *LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, response.NewUnauthorized("account is disabled")
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewUnauthorized("invalid email or password")
	}

	now := time.Now()
	if err := s.db.Model(&user).Update("last_login", now).Error; err != nil {
		logger.Warnf("[Auth] updating last_login for user %d failed: %v", user.ID, err)
	}
	user.LastLogin = &now

	// First login after an invite claims the pending rows
	members, err := s.invites.AcceptPending(&user)
	if err != nil {
		logger.Warnf("[Auth] accepting invites for user %d failed: %v", user.ID, err)
		members = nil
	}

	return s.issueToken(&user, members)
}

func (s *AuthService) issueToken(user *models.User, members []models.ProjectMember) (*LoginResult, error) {
	expireHours := s.jwtConfig.ExpireHour
	if expireHours <= 0 {
		expireHours = 24
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Name, expireHours)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:    token,
		User:     user,
		ExpireAt: time.Now().Add(time.Duration(expireHours) * time.Hour),
		Members:  members,
	}, nil
}

// GetUserByID returns a user by primary key
func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// ChangePassword verifies the old password before setting a new one
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return response.NewBadRequest("password must be at least 8 characters")
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(oldPassword, user.Password) {
		return response.NewUnauthorized("current password is incorrect")
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.Model(user).Update("password", hashed).Error
}

// UpdateProfileRequest carries editable account fields
type UpdateProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// UpdateProfile edits the caller's own account record
func (s *AuthService) UpdateProfile(userID uint, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = name
	}
	if req.Phone != "" {
		updates["phone"] = strings.TrimSpace(req.Phone)
	}
	if req.Company != "" {
		updates["company"] = strings.TrimSpace(req.Company)
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetUserByID(userID)
}
