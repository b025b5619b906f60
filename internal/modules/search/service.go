// Package search finds published blogs and signals by substring.
package search

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/pkg/htmlsafe"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	MinQueryLength = 2
	DefaultLimit   = 20
	MaxLimit       = 100
	snippetLength  = 200
)

// Result types.
const (
	TypeAll    = "all"
	TypeBlog   = "blog"
	TypeSignal = "signal"
)

type BlogHit struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	SeoSlug       string    `json:"seoSlug"`
	Content       string    `json:"content"`
	FeaturedImage string    `json:"featuredImage"`
	CreatedAt     time.Time `json:"createdAt"`
	Views         int64     `json:"views"`
}

type SignalHit struct {
	ID          uint      `json:"id"`
	UUID        string    `json:"uuid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SizeBytes   int64     `json:"sizeBytes"`
	Mime        string    `json:"mime"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Results struct {
	Blogs   []BlogHit   `json:"blogs"`
	Signals []SignalHit `json:"signals"`
	Total   int         `json:"total"`
	Query   string      `json:"query,omitempty"`
}

// Query is a normalized search request.
type Query struct {
	Text  string
	Type  string
	Limit int
}

// NewQuery trims the text, maps unknown types to all and clamps limit.
func NewQuery(text, typ string, limit int) Query {
	switch typ {
	case TypeBlog, TypeSignal:
	default:
		typ = TypeAll
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Query{Text: strings.TrimSpace(text), Type: typ, Limit: limit}
}

// Searchable reports whether the query is long enough to hit the database.
func (q Query) Searchable() bool {
	return utf8.RuneCountInString(q.Text) >= MinQueryLength
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Search runs the blog and signal lookups concurrently. Short queries
// return an empty result without touching the database.
func (s *Service) Search(ctx context.Context, q Query) (*Results, error) {
	out := &Results{Blogs: []BlogHit{}, Signals: []SignalHit{}}
	if !q.Searchable() {
		return out, nil
	}
	out.Query = q.Text

	blogLimit, signalLimit := q.Limit, q.Limit
	if q.Type == TypeAll {
		blogLimit, signalLimit = q.Limit/2, q.Limit/2
	}
	pattern := "%" + escapeLike(strings.ToLower(q.Text)) + "%"

	g, gctx := errgroup.WithContext(ctx)
	if q.Type != TypeSignal && blogLimit > 0 {
		g.Go(func() error {
			return s.db.WithContext(gctx).Model(&models.Blog{}).
				Select("id, title, seo_slug, content, featured_image, created_at, views").
				Where("status = ?", models.BlogPublished).
				Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(content) LIKE ? ESCAPE '!' OR LOWER(tags) LIKE ? ESCAPE '!')", pattern, pattern, pattern).
				Order("created_at DESC").
				Limit(blogLimit).
				Scan(&out.Blogs).Error
		})
	}
	if q.Type != TypeBlog && signalLimit > 0 {
		g.Go(func() error {
			return s.db.WithContext(gctx).Model(&models.Signal{}).
				Select("id, uuid, title, description, size_bytes, mime, created_at").
				Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", pattern, pattern).
				Order("created_at DESC").
				Limit(signalLimit).
				Scan(&out.Signals).Error
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range out.Blogs {
		out.Blogs[i].Content = htmlsafe.Excerpt(out.Blogs[i].Content, snippetLength)
	}
	for i := range out.Signals {
		out.Signals[i].Description = htmlsafe.Excerpt(out.Signals[i].Description, snippetLength)
	}
	out.Total = len(out.Blogs) + len(out.Signals)
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
