// Package seo reports metadata coverage and manages robots.txt and sitemap.xml.
package seo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/modules/blog"
	"github.com/forexfactory/site/internal/modules/signal"
	"gorm.io/gorm"
)

const (
	robotsFile  = "robots.txt"
	sitemapFile = "sitemap.xml"
)

var (
	ErrInvalidType = errors.New("invalid type")
	ErrNotFound    = errors.New("content not found")
)

// ContentDTO updates the SEO fields of a blog or signal.
type ContentDTO struct {
	Type            string  `json:"type"`
	MetaTitle       *string `json:"metaTitle"`
	MetaDescription *string `json:"metaDescription"`
	Keywords        *string `json:"keywords"`
	CanonicalURL    *string `json:"canonicalUrl"`
	OgTitle         *string `json:"ogTitle"`
	OgDescription   *string `json:"ogDescription"`
	OgImage         *string `json:"ogImage"`
}

type Service struct {
	db        *gorm.DB
	blogs     *blog.Service
	signals   *signal.Service
	publicDir string
	siteURL   string
}

func NewService(db *gorm.DB, blogs *blog.Service, signals *signal.Service, publicDir, siteURL string) *Service {
	return &Service{
		db:        db,
		blogs:     blogs,
		signals:   signals,
		publicDir: publicDir,
		siteURL:   strings.TrimRight(siteURL, "/"),
	}
}

// Content loads every blog and signal and normalizes them.
func (s *Service) Content(ctx context.Context) ([]Item, Stats, error) {
	db := s.db.WithContext(ctx)
	var blogs []models.Blog
	err := db.Preload("SeoMeta", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC").
		Find(&blogs).Error
	if err != nil {
		return nil, Stats{}, err
	}
	var signals []models.Signal
	if err := db.Order("created_at DESC").Find(&signals).Error; err != nil {
		return nil, Stats{}, err
	}
	items, stats := Normalize(blogs, signals)
	return items, stats, nil
}

// UpdateContent writes SEO overrides to a blog's SeoMeta row or to a
// signal's own columns.
func (s *Service) UpdateContent(ctx context.Context, id uint, dto *ContentDTO) error {
	switch dto.Type {
	case "blog":
		err := s.blogs.UpsertSeo(ctx, id, blog.SeoMetaDTO{
			MetaTitle:       dto.MetaTitle,
			MetaDescription: dto.MetaDescription,
			MetaKeywords:    dto.Keywords,
			CanonicalURL:    dto.CanonicalURL,
			OgTitle:         dto.OgTitle,
			OgDescription:   dto.OgDescription,
			OgImage:         dto.OgImage,
		})
		if errors.Is(err, blog.ErrNotFound) {
			return ErrNotFound
		}
		return err
	case "signal":
		update := &signal.UpdateSignalDTO{SeoDTO: signal.SeoDTO{
			MetaTitle:       dto.MetaTitle,
			MetaDescription: dto.MetaDescription,
			Keywords:        dto.Keywords,
		}}
		if dto.OgImage != nil && strings.TrimSpace(*dto.OgImage) != "" {
			update.PreviewImage = dto.OgImage
		}
		_, err := s.signals.Update(ctx, id, update)
		if errors.Is(err, signal.ErrNotFound) {
			return ErrNotFound
		}
		return err
	default:
		return ErrInvalidType
	}
}

// DefaultRobots is served until an admin saves a robots.txt.
func (s *Service) DefaultRobots() string {
	return "User-agent: *\nAllow: /\n\nSitemap: " + s.siteURL + "/sitemap.xml"
}

// Robots returns the persisted robots.txt or the default.
func (s *Service) Robots() (string, error) {
	data, err := os.ReadFile(s.path(robotsFile))
	if errors.Is(err, os.ErrNotExist) {
		return s.DefaultRobots(), nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Service) SaveRobots(content string) error {
	return s.write(robotsFile, []byte(content))
}

// SitemapPreview returns the persisted sitemap, or a freshly generated one
// when none has been written.
func (s *Service) SitemapPreview(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path(sitemapFile))
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return BuildSitemap(ctx, s.db, s.siteURL)
}

// RegenerateSitemap rebuilds sitemap.xml and overwrites the file.
func (s *Service) RegenerateSitemap(ctx context.Context) ([]byte, error) {
	data, err := BuildSitemap(ctx, s.db, s.siteURL)
	if err != nil {
		return nil, err
	}
	if err := s.write(sitemapFile, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Service) path(name string) string {
	return filepath.Join(s.publicDir, name)
}

func (s *Service) write(name string, data []byte) error {
	if err := os.MkdirAll(s.publicDir, 0o755); err != nil {
		return fmt.Errorf("create public dir: %w", err)
	}
	tmp := s.path(name + ".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return os.Rename(tmp, s.path(name))
}
