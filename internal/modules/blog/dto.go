package blog

import "time"

// CreateBlogDTO is the admin create payload. Title and Content are required.
type CreateBlogDTO struct {
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Excerpt       string  `json:"excerpt"`
	FeaturedImage string  `json:"featuredImage"`
	Author        string  `json:"author"`
	Tags          string  `json:"tags"`
	Status        string  `json:"status"`
	SeoSlug       string  `json:"seoSlug"`
	CategoryID    *uint   `json:"categoryId"`
	CategoryIDs   []uint  `json:"categoryIds"`
	DownloadLink  *string `json:"downloadLink"`
}

// UpdateBlogDTO is a partial update. Nil fields are left untouched.
type UpdateBlogDTO struct {
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	Excerpt       *string `json:"excerpt"`
	FeaturedImage *string `json:"featuredImage"`
	Author        *string `json:"author"`
	Tags          *string `json:"tags"`
	Status        *string `json:"status"`
	SeoSlug       *string `json:"seoSlug"`
	CategoryID    *uint   `json:"categoryId"`
	CategoryIDs   *[]uint `json:"categoryIds"`
	DownloadLink  *string `json:"downloadLink"`

	SeoMetaDTO
}

// SeoMetaDTO carries optional overrides for the blog's first SeoMeta row.
type SeoMetaDTO struct {
	MetaTitle       *string `json:"metaTitle"`
	MetaDescription *string `json:"metaDescription"`
	MetaKeywords    *string `json:"metaKeywords"`
	CanonicalURL    *string `json:"canonicalUrl"`
	OgTitle         *string `json:"ogTitle"`
	OgDescription   *string `json:"ogDescription"`
	OgImage         *string `json:"ogImage"`
}

// Empty reports whether no override was supplied.
func (d SeoMetaDTO) Empty() bool {
	return d.MetaTitle == nil && d.MetaDescription == nil && d.MetaKeywords == nil &&
		d.CanonicalURL == nil && d.OgTitle == nil && d.OgDescription == nil && d.OgImage == nil
}

func (d SeoMetaDTO) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	set("seo_title", d.MetaTitle)
	set("seo_description", d.MetaDescription)
	set("seo_keywords", d.MetaKeywords)
	set("canonical_url", d.CanonicalURL)
	set("og_title", d.OgTitle)
	set("og_description", d.OgDescription)
	set("og_image", d.OgImage)
	return cols
}

// ListItem is the admin table projection.
type ListItem struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Views     int64     `json:"views"`
	CreatedAt time.Time `json:"createdAt"`
	Author    string    `json:"author"`
	SeoSlug   string    `json:"seoSlug"`
}
