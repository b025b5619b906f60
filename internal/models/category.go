package models

import "time"

// Category groups blog posts. Its key column keeps the historical name category_id.
type Category struct {
	CategoryID  uint      `json:"categoryId"  gorm:"column:category_id;primaryKey;autoIncrement"`
	Name        string    `json:"name"        gorm:"size:191;uniqueIndex;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Status      string    `json:"status"      gorm:"size:20;not null;default:active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Category) TableName() string { return "categories" }

// BlogCategory is the many-to-many link between blogs and categories.
type BlogCategory struct {
	BlogID     uint `json:"blogId"     gorm:"primaryKey;autoIncrement:false"`
	CategoryID uint `json:"categoryId" gorm:"primaryKey;autoIncrement:false;index"`
}

func (BlogCategory) TableName() string { return "blog_categories" }
