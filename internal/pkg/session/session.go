package session

import (
	"strings"
	"time"

	"github.com/forexfactory/site/internal/models"
	jwtpkg "github.com/forexfactory/site/internal/pkg/jwt"
	"gorm.io/gorm"
)

const DefaultTTL = 7 * 24 * time.Hour

// Issue creates a DB session and signs a JWT bound to that session.
func Issue(db *gorm.DB, user *models.User, ip, ua string, ttl time.Duration) (string, *models.UserSession, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &models.UserSession{
		UserID:    user.ID,
		IP:        strings.TrimSpace(ip),
		UA:        strings.TrimSpace(ua),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := db.Create(s).Error; err != nil {
		return "", nil, err
	}

	token, err := jwtpkg.Sign(user.ID, s.ID, user.Role, ttl)
	if err != nil {
		_ = db.Delete(s).Error
		return "", nil, err
	}
	return token, s, nil
}

// IsActive reports whether the session exists, is unexpired and not revoked.
func IsActive(db *gorm.DB, userID uint, sessionID string) (bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return false, nil
	}

	var count int64
	err := db.Model(&models.UserSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL AND expires_at > ?", sessionID, userID, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Revoke marks a session revoked. Revoking an unknown or already revoked
// session returns gorm.ErrRecordNotFound.
func Revoke(db *gorm.DB, userID uint, sessionID string) error {
	now := time.Now()
	res := db.Model(&models.UserSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", sessionID, userID).
		Update("revoked_at", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RevokeAll revokes every open session of a user, e.g. after a password reset.
func RevokeAll(db *gorm.DB, userID uint) error {
	now := time.Now()
	return db.Model(&models.UserSession{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", &now).Error
}
