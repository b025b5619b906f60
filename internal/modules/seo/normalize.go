package seo

import (
	"fmt"
	"time"

	"github.com/forexfactory/site/internal/models"
)

// Item statuses by number of issues.
const (
	StatusGood    = "good"
	StatusWarning = "warning"
	StatusError   = "error"
)

const (
	IssueMetaTitle       = "Missing meta title"
	IssueMetaDescription = "Missing meta description"
	IssueKeywords        = "Missing keywords"
)

// Item is the SEO projection of one blog or signal.
type Item struct {
	ID              uint      `json:"id"`
	Type            string    `json:"type"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	MetaTitle       string    `json:"metaTitle"`
	MetaDescription string    `json:"metaDescription"`
	Keywords        string    `json:"keywords"`
	CanonicalURL    string    `json:"canonicalUrl"`
	OgTitle         string    `json:"ogTitle"`
	OgDescription   string    `json:"ogDescription"`
	OgImage         string    `json:"ogImage"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Status          string    `json:"status"`
	Issues          []string  `json:"issues"`
}

type Stats struct {
	Total   int `json:"total"`
	Good    int `json:"good"`
	Warning int `json:"warning"`
	Error   int `json:"error"`
}

// Normalize projects blogs and signals into SEO items and tallies them.
// Blogs read their first SeoMeta row; fallbacks come from the entity itself.
func Normalize(blogs []models.Blog, signals []models.Signal) ([]Item, Stats) {
	items := make([]Item, 0, len(blogs)+len(signals))

	for i := range blogs {
		b := &blogs[i]
		seo := b.PrimarySeo()
		if seo == nil {
			seo = &models.SeoMeta{}
		}
		var issues []string
		if seo.SeoTitle == "" && b.Title == "" {
			issues = append(issues, IssueMetaTitle)
		}
		if seo.SeoDescription == "" {
			issues = append(issues, IssueMetaDescription)
		}
		if seo.SeoKeywords == "" && b.Tags == "" {
			issues = append(issues, IssueKeywords)
		}

		slug := b.SeoSlug
		if slug == "" {
			slug = fmt.Sprintf("blog/%d", b.ID)
		}
		items = append(items, Item{
			ID:              b.ID,
			Type:            "blog",
			Title:           b.Title,
			Slug:            slug,
			MetaTitle:       firstNonEmpty(seo.SeoTitle, b.Title),
			MetaDescription: seo.SeoDescription,
			Keywords:        firstNonEmpty(seo.SeoKeywords, b.Tags),
			CanonicalURL:    seo.CanonicalURL,
			OgTitle:         seo.OgTitle,
			OgDescription:   seo.OgDescription,
			OgImage:         firstNonEmpty(seo.OgImage, b.FeaturedImage),
			UpdatedAt:       b.UpdatedAt,
			Status:          statusFor(len(issues)),
			Issues:          nonNil(issues),
		})
	}

	for i := range signals {
		s := &signals[i]
		var issues []string
		if s.MetaTitle == "" && s.Name == "" && s.Title == "" {
			issues = append(issues, IssueMetaTitle)
		}
		if s.MetaDescription == "" && s.Description == "" {
			issues = append(issues, IssueMetaDescription)
		}
		if s.Keywords == "" {
			issues = append(issues, IssueKeywords)
		}

		slug := s.Slug
		if slug == "" {
			slug = fmt.Sprintf("signals/%d", s.ID)
		}
		items = append(items, Item{
			ID:              s.ID,
			Type:            "signal",
			Title:           firstNonEmpty(s.Name, s.Title),
			Slug:            slug,
			MetaTitle:       firstNonEmpty(s.MetaTitle, s.Title),
			MetaDescription: s.MetaDescription,
			Keywords:        s.Keywords,
			OgImage:         s.PreviewImage,
			UpdatedAt:       s.UpdatedAt,
			Status:          statusFor(len(issues)),
			Issues:          nonNil(issues),
		})
	}

	stats := Stats{Total: len(items)}
	for _, it := range items {
		switch it.Status {
		case StatusGood:
			stats.Good++
		case StatusWarning:
			stats.Warning++
		default:
			stats.Error++
		}
	}
	return items, stats
}

func statusFor(issues int) string {
	switch {
	case issues == 0:
		return StatusGood
	case issues == 1:
		return StatusWarning
	default:
		return StatusError
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
