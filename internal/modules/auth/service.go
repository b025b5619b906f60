// Package auth signs staff in and out and manages admin accounts.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/forexfactory/site/internal/database"
	"github.com/forexfactory/site/internal/models"
	sessionpkg "github.com/forexfactory/site/internal/pkg/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// BcryptCost matches the cost used by the operator CLI.
const BcryptCost = 10

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("role must be admin or editor")
)

// dummyHash keeps the unknown-user path as slow as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), BcryptCost)

type Service struct {
	db  *gorm.DB
	ttl time.Duration

	// FailureDelay is slept after every failed login.
	FailureDelay time.Duration
}

func NewService(db *gorm.DB, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = sessionpkg.DefaultTTL
	}
	return &Service{db: db, ttl: ttl, FailureDelay: time.Second}
}

// TTL is the lifetime of issued sessions.
func (s *Service) TTL() time.Duration { return s.ttl }

// Login verifies credentials and opens a session. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password, ip, ua string) (string, *models.User, error) {
	db := s.db.WithContext(ctx)
	var u models.User
	err := db.Where("username = ?", strings.TrimSpace(username)).First(&u).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, err
	}

	hash := dummyHash
	if err == nil {
		hash = []byte(u.Password)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil || err != nil {
		if s.FailureDelay > 0 {
			time.Sleep(s.FailureDelay)
		}
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := db.Model(&u).UpdateColumn("last_login_at", now).Error; err != nil {
		return "", nil, err
	}
	u.LastLoginAt = &now

	token, _, err := sessionpkg.Issue(db, &u, ip, ua, s.ttl)
	if err != nil {
		return "", nil, err
	}
	return token, &u, nil
}

// Logout revokes one session. Revoking an already closed session is not an error.
func (s *Service) Logout(ctx context.Context, userID uint, sessionID string) error {
	err := sessionpkg.Revoke(s.db.WithContext(ctx), userID, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (s *Service) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// CreateUserInput describes a new staff account.
type CreateUserInput struct {
	Username string
	Password string
	Email    string
	Name     string
	Role     string
}

// CreateUser adds a staff account with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}
	role := in.Role
	if role == "" {
		role = models.RoleAdmin
	}
	if role != models.RoleAdmin && role != models.RoleEditor {
		return nil, ErrInvalidRole
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), BcryptCost)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = username
	}
	u := models.User{Username: username, Password: string(hash), Email: strings.TrimSpace(in.Email), Name: name, Role: role}
	if err := db.Create(&u).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &u, nil
}

// ResetPassword replaces the password and revokes every open session.
func (s *Service) ResetPassword(ctx context.Context, username, password string) error {
	if password == "" {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.Where("username = ?", strings.TrimSpace(username)).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := tx.Model(&u).Update("password", string(hash)).Error; err != nil {
			return err
		}
		return sessionpkg.RevokeAll(tx, u.ID)
	})
}

// ListUsers returns staff accounts, optionally restricted to one role.
func (s *Service) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	q := s.db.WithContext(ctx).Order("id ASC")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var users []models.User
	return users, q.Find(&users).Error
}
