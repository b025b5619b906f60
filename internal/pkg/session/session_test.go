package session

import (
	"testing"
	"time"

	"github.com/forexfactory/site/internal/database/dbtest"
	"github.com/forexfactory/site/internal/models"
	jwtpkg "github.com/forexfactory/site/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIssueAndRevoke(t *testing.T) {
	db := dbtest.New(t)
	user := &models.User{Username: "alice", Password: "x", Role: models.RoleEditor}
	require.NoError(t, db.Create(user).Error)

	token, s, err := Issue(db, user, " 127.0.0.1 ", "test-agent", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", s.IP)

	claims, err := jwtpkg.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, claims.SessionID)
	assert.Equal(t, models.RoleEditor, claims.Role)

	active, err := IsActive(db, user.ID, s.ID)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, Revoke(db, user.ID, s.ID))
	active, err = IsActive(db, user.ID, s.ID)
	require.NoError(t, err)
	assert.False(t, active)

	assert.ErrorIs(t, Revoke(db, user.ID, s.ID), gorm.ErrRecordNotFound)
}

func TestIsActiveRejectsExpiredAndForeignSessions(t *testing.T) {
	db := dbtest.New(t)
	user := &models.User{Username: "bob", Password: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(user).Error)

	expired := &models.UserSession{UserID: user.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, db.Create(expired).Error)

	active, err := IsActive(db, user.ID, expired.ID)
	require.NoError(t, err)
	assert.False(t, active)

	_, s, err := Issue(db, user, "", "", time.Hour)
	require.NoError(t, err)
	active, err = IsActive(db, user.ID+1, s.ID)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, RevokeAll(db, user.ID))
	active, err = IsActive(db, user.ID, s.ID)
	require.NoError(t, err)
	assert.False(t, active)
}
