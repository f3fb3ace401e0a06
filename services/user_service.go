package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/taqueria-app/models"
	"github.com/yeremiapane/taqueria-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	DB       *gorm.DB
	Audit    *AuditRecorder
	HashCost int
	Now      func() time.Time
}

func NewUserService(db *gorm.DB, audit *AuditRecorder) *UserService {
	return &UserService{DB: db, Audit: audit, HashCost: bcrypt.DefaultCost, Now: time.Now}
}

// Register creates a staff account. Admin accounts cannot be self-registered.
func (s *UserService) Register(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if !role.SelfRegisterable() {
		return nil, ErrInvalidRole
	}

	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.HashCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Password: string(hashed),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Username, user.Role)
	s.Audit.Record(ctx, AuditEntry{
		Actor:      Actor{UserID: user.ID, Username: user.Username, Role: user.Role},
		Action:     "registered",
		EntityType: EntityUser,
		EntityID:   user.ID,
	})
	return &user, nil
}

// Authenticate checks credentials and stamps last_login.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	db := s.DB.WithContext(ctx)

	var user models.User
	err := db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.Now()
	if err := db.Model(&user).Update("last_login", now).Error; err != nil {
		utils.ErrorLogger.Errorf("update last_login for %s: %v", user.Username, err)
	}
	user.LastLogin = &now

	s.Audit.Record(ctx, AuditEntry{
		Actor:      Actor{UserID: user.ID, Username: user.Username, Role: user.Role},
		Action:     "login",
		EntityType: EntityUser,
		EntityID:   user.ID,
	})
	return &user, nil
}

// Logout revokes token until it would have expired anyway.
func (s *UserService) Logout(ctx context.Context, actor Actor, token string, expiry time.Time) {
	if token != "" {
		if expiry.IsZero() {
			expiry = s.Now().Add(24 * time.Hour)
		}
		utils.BlacklistToken(token, expiry)
	}
	s.Audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     "logout",
		EntityType: EntityUser,
		EntityID:   actor.UserID,
	})
}

func (s *UserService) Get(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AccountStatus returns the stored role of a user and whether it may still act.
func (s *UserService) AccountStatus(ctx context.Context, id uint) (models.Role, bool, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Select("id", "role", "is_active").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return user.Role, user.IsActive, nil
}
