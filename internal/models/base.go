package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is the base model for content entities. Rows are hard deleted.
type Base struct {
	ID        uint      `json:"id"        gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UUIDBase is used by rows addressed by an opaque identifier.
type UUIDBase struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *UUIDBase) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}
