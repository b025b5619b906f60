package models

import "time"

// Media records an uploaded file and who uploaded it.
type Media struct {
	ID         uint         `json:"id"         gorm:"primaryKey;autoIncrement"`
	FileName   string       `json:"fileName"   gorm:"not null"`
	FilePath   string       `json:"filePath"   gorm:"type:text;not null"`
	UploadedBy uint         `json:"uploadedBy" gorm:"index;not null"`
	UploadedAt time.Time    `json:"uploadedAt" gorm:"index;autoCreateTime"`
	User       *UserSummary `json:"user,omitempty" gorm:"-"`
}

func (Media) TableName() string { return "media" }
