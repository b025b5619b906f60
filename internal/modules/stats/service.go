// Package stats aggregates counters for the admin dashboard.
package stats

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/forexfactory/site/internal/models"
	"gorm.io/gorm"
)

const (
	defaultTop  = 5
	tagCloudMax = 20
)

// Overview is the dashboard headline numbers.
type Overview struct {
	Blogs          int64 `json:"blogs"`
	PublishedBlogs int64 `json:"publishedBlogs"`
	DraftBlogs     int64 `json:"draftBlogs"`
	Signals        int64 `json:"signals"`
	ActiveSignals  int64 `json:"activeSignals"`
	Categories     int64 `json:"categories"`
	Media          int64 `json:"media"`
	TotalViews     int64 `json:"totalViews"`
	TotalDownloads int64 `json:"totalDownloads"`
}

type BlogRow struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	SeoSlug   string    `json:"seoSlug"`
	Status    string    `json:"status"`
	Views     int64     `json:"views"`
	CreatedAt time.Time `json:"createdAt"`
}

type SignalRow struct {
	ID        uint   `json:"id"`
	UUID      string `json:"uuid"`
	Title     string `json:"title"`
	Downloads int64  `json:"downloads"`
}

type CategoryCount struct {
	CategoryID uint   `json:"categoryId"`
	Name       string `json:"name"`
	Count      int64  `json:"count"`
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	db := s.db.WithContext(ctx)
	var o Overview
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&o.Blogs, db.Model(&models.Blog{})},
		{&o.PublishedBlogs, db.Model(&models.Blog{}).Where("status = ?", models.BlogPublished)},
		{&o.DraftBlogs, db.Model(&models.Blog{}).Where("status = ?", models.BlogDraft)},
		{&o.Signals, db.Model(&models.Signal{})},
		{&o.ActiveSignals, db.Model(&models.Signal{}).Where("status = ?", models.SignalActive)},
		{&o.Categories, db.Model(&models.Category{})},
		{&o.Media, db.Model(&models.Media{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	if err := db.Model(&models.Blog{}).Select("COALESCE(SUM(views), 0)").Scan(&o.TotalViews).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Signal{}).Select("COALESCE(SUM(downloads), 0)").Scan(&o.TotalDownloads).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// RecentBlogs returns the newest blogs of any status.
func (s *Service) RecentBlogs(ctx context.Context, limit int) ([]BlogRow, error) {
	return s.blogRows(ctx, "created_at DESC, id DESC", limit)
}

// PopularBlogs returns the most viewed blogs of any status.
func (s *Service) PopularBlogs(ctx context.Context, limit int) ([]BlogRow, error) {
	return s.blogRows(ctx, "views DESC, id DESC", limit)
}

func (s *Service) blogRows(ctx context.Context, order string, limit int) ([]BlogRow, error) {
	if limit <= 0 {
		limit = defaultTop
	}
	rows := []BlogRow{}
	err := s.db.WithContext(ctx).Model(&models.Blog{}).
		Select("id, title, seo_slug, status, views, created_at").
		Order(order).
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (s *Service) PopularSignals(ctx context.Context, limit int) ([]SignalRow, error) {
	if limit <= 0 {
		limit = defaultTop
	}
	rows := []SignalRow{}
	err := s.db.WithContext(ctx).Model(&models.Signal{}).
		Select("id, uuid, title, downloads").
		Order("downloads DESC, id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// CategoryDistribution counts blogs filed under each category.
func (s *Service) CategoryDistribution(ctx context.Context) ([]CategoryCount, error) {
	rows := []CategoryCount{}
	err := s.db.WithContext(ctx).Model(&models.Category{}).
		Select("categories.category_id, categories.name, COUNT(bc.blog_id) AS count").
		Joins("LEFT JOIN blog_categories bc ON bc.category_id = categories.category_id").
		Group("categories.category_id, categories.name").
		Order("count DESC, categories.name ASC").
		Scan(&rows).Error
	return rows, err
}

// TagCloud counts comma-separated blog tags, most used first.
func (s *Service) TagCloud(ctx context.Context) ([]TagCount, error) {
	var rows []struct{ Tags string }
	if err := s.db.WithContext(ctx).Model(&models.Blog{}).Select("tags").Where("tags <> ''").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[string]int64{}
	display := map[string]string{}
	for _, row := range rows {
		for _, t := range strings.Split(row.Tags, ",") {
			tag := strings.TrimSpace(t)
			if tag == "" {
				continue
			}
			key := strings.ToLower(tag)
			if _, ok := display[key]; !ok {
				display[key] = tag
			}
			counts[key]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for key, count := range counts {
		out = append(out, TagCount{Tag: display[key], Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > tagCloudMax {
		out = out[:tagCloudMax]
	}
	return out, nil
}
