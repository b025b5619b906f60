package site

import (
	"strings"

	"github.com/forexfactory/site/internal/config"
	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/pkg/htmlsafe"
)

const descriptionLength = 160

// Meta is the head metadata of a rendered page.
type Meta struct {
	Title         string
	Description   string
	Keywords      string
	Canonical     string
	OgTitle       string
	OgDescription string
	OgImage       string
	OgType        string
	NoIndex       bool
}

func pageMeta(site config.SiteConfig, title, description, path string) Meta {
	full := site.Name
	if title != "" {
		full = title + " | " + site.Name
	}
	return Meta{
		Title:         full,
		Description:   description,
		Canonical:     site.URL + path,
		OgTitle:       full,
		OgDescription: description,
		OgType:        "website",
	}
}

// blogMeta prefers the post's SEO override and falls back to its own fields.
func blogMeta(site config.SiteConfig, b *models.Blog) Meta {
	description := b.Excerpt
	if description == "" {
		description = htmlsafe.Excerpt(b.Content, descriptionLength)
	}
	m := pageMeta(site, b.Title, description, "/blog/"+b.SeoSlug)
	m.Keywords = b.Tags
	m.OgImage = b.FeaturedImage
	m.OgType = "article"

	seo := b.PrimarySeo()
	if seo == nil {
		return m
	}
	if t := strings.TrimSpace(seo.SeoTitle); t != "" {
		m.Title = t
		m.OgTitle = t
	}
	if d := strings.TrimSpace(seo.SeoDescription); d != "" {
		m.Description = d
		m.OgDescription = d
	}
	if k := strings.TrimSpace(seo.SeoKeywords); k != "" {
		m.Keywords = k
	}
	if u := strings.TrimSpace(seo.CanonicalURL); u != "" {
		m.Canonical = u
	}
	if t := strings.TrimSpace(seo.OgTitle); t != "" {
		m.OgTitle = t
	}
	if d := strings.TrimSpace(seo.OgDescription); d != "" {
		m.OgDescription = d
	}
	if img := strings.TrimSpace(seo.OgImage); img != "" {
		m.OgImage = img
	}
	return m
}

func signalMeta(site config.SiteConfig, s *models.Signal, path string) Meta {
	description := strings.TrimSpace(s.MetaDescription)
	if description == "" {
		description = htmlsafe.Excerpt(s.Description, descriptionLength)
	}
	m := pageMeta(site, s.Title, description, path)
	if t := strings.TrimSpace(s.MetaTitle); t != "" {
		m.Title = t
		m.OgTitle = t
	}
	m.Keywords = s.Keywords
	m.OgImage = s.PreviewImage
	m.OgType = "product"
	return m
}
