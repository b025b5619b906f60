package seo

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/forexfactory/site/internal/models"
	"gorm.io/gorm"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// StaticPages are listed first in the sitemap.
var StaticPages = []string{"", "/about", "/contact", "/signals", "/blog", "/downloads"}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// BuildSitemap lists static pages, published blogs and active signals.
func BuildSitemap(ctx context.Context, db *gorm.DB, baseURL string) ([]byte, error) {
	base := strings.TrimRight(baseURL, "/")
	urls := make([]sitemapURL, 0, len(StaticPages))
	for _, p := range StaticPages {
		urls = append(urls, sitemapURL{Loc: base + p, ChangeFreq: "daily", Priority: 0.8})
	}

	var blogs []models.Blog
	err := db.WithContext(ctx).Select("id, seo_slug, updated_at").
		Where("status = ?", models.BlogPublished).
		Order("id ASC").
		Find(&blogs).Error
	if err != nil {
		return nil, err
	}
	for _, b := range blogs {
		ref := b.SeoSlug
		if ref == "" {
			ref = fmt.Sprint(b.ID)
		}
		urls = append(urls, sitemapURL{
			Loc:        base + "/blog/" + ref,
			LastMod:    lastMod(b.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   0.7,
		})
	}

	var signals []models.Signal
	err = db.WithContext(ctx).Select("id, uuid, updated_at").
		Where("status = ?", models.SignalActive).
		Order("id ASC").
		Find(&signals).Error
	if err != nil {
		return nil, err
	}
	for _, s := range signals {
		urls = append(urls, sitemapURL{
			Loc:        base + "/signals/" + s.UUID,
			LastMod:    lastMod(s.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   0.9,
		})
	}

	out, err := xml.MarshalIndent(urlSet{Xmlns: sitemapNS, URLs: urls}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
