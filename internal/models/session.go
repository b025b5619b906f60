package models

import "time"

// UserSession backs every issued token; revoking the row invalidates the token.
type UserSession struct {
	UUIDBase
	UserID    uint       `json:"userId"    gorm:"index;not null"`
	IP        string     `json:"ip"        gorm:"size:64"`
	UA        string     `json:"ua"        gorm:"type:text"`
	ExpiresAt time.Time  `json:"expiresAt" gorm:"index;not null"`
	RevokedAt *time.Time `json:"revokedAt" gorm:"index"`
}

func (UserSession) TableName() string { return "user_sessions" }
