package models

// Blog statuses.
const (
	BlogDraft     = "draft"
	BlogPublished = "published"
	BlogArchived  = "archived"
)

// Blog is an article. Content holds sanitized, entity-canonical HTML.
type Blog struct {
	Base
	Title         string    `json:"title"         gorm:"size:255;not null"`
	Content       string    `json:"content"       gorm:"type:longtext"`
	Excerpt       string    `json:"excerpt"       gorm:"type:text"`
	SeoSlug       string    `json:"seoSlug"       gorm:"size:191;uniqueIndex;not null"`
	FeaturedImage string    `json:"featuredImage"`
	Author        string    `json:"author"        gorm:"size:100;default:Admin"`
	Tags          string    `json:"tags"          gorm:"type:text"`
	Status        string    `json:"status"        gorm:"size:20;index;not null;default:draft"`
	CategoryID    *uint     `json:"categoryId"    gorm:"index"`
	Views         int64     `json:"views"         gorm:"not null;default:0"`
	DownloadLink  *string   `json:"downloadLink"`
	SeoMeta       []SeoMeta `json:"seoMeta,omitempty" gorm:"foreignKey:PostID"`
}

func (Blog) TableName() string { return "blogs" }

// PrimarySeo returns the effective SEO override: the first row wins.
func (b *Blog) PrimarySeo() *SeoMeta {
	if b == nil || len(b.SeoMeta) == 0 {
		return nil
	}
	first := &b.SeoMeta[0]
	for i := range b.SeoMeta {
		if b.SeoMeta[i].ID < first.ID {
			first = &b.SeoMeta[i]
		}
	}
	return first
}

// SeoMeta overrides search-engine metadata for a blog post.
type SeoMeta struct {
	Base
	PostID         uint   `json:"postId"         gorm:"index;not null"`
	SeoTitle       string `json:"seoTitle"`
	SeoDescription string `json:"seoDescription" gorm:"type:text"`
	SeoKeywords    string `json:"seoKeywords"    gorm:"type:text"`
	CanonicalURL   string `json:"canonicalUrl"`
	OgTitle        string `json:"ogTitle"`
	OgDescription  string `json:"ogDescription"  gorm:"type:text"`
	OgImage        string `json:"ogImage"`
}

func (SeoMeta) TableName() string { return "seo_meta" }
