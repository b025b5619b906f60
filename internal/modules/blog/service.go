package blog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/forexfactory/site/internal/database"
	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/pkg/htmlsafe"
	"github.com/forexfactory/site/internal/pkg/pagination"
	"github.com/forexfactory/site/internal/pkg/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const excerptLength = 160

var (
	ErrMissingFields = errors.New("title and content are required")
	ErrNotFound      = errors.New("blog not found")
	ErrSlugTaken     = errors.New("slug already in use")
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log.Named("blog")}
}

// List returns the admin table rows, newest first.
func (s *Service) List(ctx context.Context) ([]ListItem, error) {
	var items []ListItem
	err := s.db.WithContext(ctx).Model(&models.Blog{}).
		Select("id, title, status, views, created_at, author, seo_slug").
		Order("created_at DESC, id DESC").
		Scan(&items).Error
	return items, err
}

// Get loads a blog with its SeoMeta rows in id order.
func (s *Service) Get(ctx context.Context, id uint) (*models.Blog, error) {
	var b models.Blog
	err := s.db.WithContext(ctx).
		Preload("SeoMeta", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&b, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// CategoryIDs lists the categories a blog is filed under.
func (s *Service) CategoryIDs(ctx context.Context, blogID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.BlogCategory{}).
		Where("blog_id = ?", blogID).
		Order("category_id ASC").
		Pluck("category_id", &ids).Error
	return ids, err
}

func (s *Service) Create(ctx context.Context, dto *CreateBlogDTO) (*models.Blog, error) {
	content := htmlsafe.Clean(dto.Content)
	if strings.TrimSpace(dto.Title) == "" || content == "" {
		return nil, ErrMissingFields
	}

	b := models.Blog{
		Title:         strings.TrimSpace(dto.Title),
		Content:       content,
		Excerpt:       strings.TrimSpace(dto.Excerpt),
		FeaturedImage: strings.TrimSpace(dto.FeaturedImage),
		Author:        strings.TrimSpace(dto.Author),
		Tags:          strings.TrimSpace(dto.Tags),
		Status:        normalizeStatus(dto.Status),
		CategoryID:    dto.CategoryID,
		DownloadLink:  dto.DownloadLink,
	}
	if b.Excerpt == "" {
		b.Excerpt = htmlsafe.Excerpt(content, excerptLength)
	}
	if b.Author == "" {
		b.Author = "Admin"
	}
	categories := memberships(dto.CategoryID, dto.CategoryIDs)
	if b.CategoryID == nil && len(categories) > 0 {
		b.CategoryID = &categories[0]
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base := slug.Make(dto.SeoSlug)
		if base == "" {
			base = slug.Make(b.Title)
		}
		if base == "" {
			base = fmt.Sprintf("blog-%d", time.Now().UnixNano())
		}
		free, err := freeSlug(tx, base, 0)
		if err != nil {
			return err
		}
		b.SeoSlug = free

		if err := tx.Create(&b).Error; err != nil {
			return err
		}
		return replaceMemberships(tx, b.ID, categories)
	})
	if err != nil {
		if database.IsDuplicate(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return &b, nil
}

// Update applies a partial update, then upserts the first SeoMeta row when
// any override is present. The two writes are sequential, not atomic.
func (s *Service) Update(ctx context.Context, id uint, dto *UpdateBlogDTO) (*models.Blog, error) {
	db := s.db.WithContext(ctx)
	var b models.Blog
	if err := db.First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	setTrimmed := func(col string, v *string) {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	if dto.Title != nil {
		if strings.TrimSpace(*dto.Title) == "" {
			return nil, ErrMissingFields
		}
		setTrimmed("title", dto.Title)
	}
	if dto.Content != nil {
		content := htmlsafe.Clean(*dto.Content)
		if content == "" {
			return nil, ErrMissingFields
		}
		updates["content"] = content
	}
	setTrimmed("excerpt", dto.Excerpt)
	setTrimmed("featured_image", dto.FeaturedImage)
	setTrimmed("author", dto.Author)
	setTrimmed("tags", dto.Tags)
	if dto.Status != nil {
		updates["status"] = normalizeStatus(*dto.Status)
	}
	if dto.CategoryID != nil {
		updates["category_id"] = *dto.CategoryID
	}
	if dto.DownloadLink != nil {
		updates["download_link"] = *dto.DownloadLink
	}
	if dto.SeoSlug != nil {
		next := slug.Make(*dto.SeoSlug)
		if next != "" && next != b.SeoSlug {
			taken, err := slugTaken(db, next, b.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrSlugTaken
			}
			updates["seo_slug"] = next
		}
	}

	if len(updates) > 0 {
		if err := db.Model(&b).Updates(updates).Error; err != nil {
			if database.IsDuplicate(err) {
				return nil, ErrSlugTaken
			}
			return nil, err
		}
	}
	if dto.CategoryIDs != nil {
		if err := db.Transaction(func(tx *gorm.DB) error {
			return replaceMemberships(tx, b.ID, memberships(dto.CategoryID, *dto.CategoryIDs))
		}); err != nil {
			return nil, err
		}
	}
	if !dto.SeoMetaDTO.Empty() {
		if err := s.upsertSeo(ctx, b.ID, dto.SeoMetaDTO); err != nil {
			s.log.Error("seo meta upsert failed after blog update", zap.Uint("blog_id", b.ID), zap.Error(err))
			return nil, err
		}
	}
	return s.Get(ctx, b.ID)
}

// UpsertSeo writes overrides into the blog's first SeoMeta row, creating it
// when absent.
func (s *Service) UpsertSeo(ctx context.Context, blogID uint, dto SeoMetaDTO) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Blog{}).Where("id = ?", blogID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return s.upsertSeo(ctx, blogID, dto)
}

func (s *Service) upsertSeo(ctx context.Context, blogID uint, dto SeoMetaDTO) error {
	db := s.db.WithContext(ctx)
	var existing models.SeoMeta
	err := db.Where("post_id = ?", blogID).Order("id ASC").First(&existing).Error
	switch {
	case err == nil:
		return db.Model(&existing).Updates(dto.columns()).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := models.SeoMeta{PostID: blogID}
		deref := func(v *string) string {
			if v == nil {
				return ""
			}
			return *v
		}
		row.SeoTitle = deref(dto.MetaTitle)
		row.SeoDescription = deref(dto.MetaDescription)
		row.SeoKeywords = deref(dto.MetaKeywords)
		row.CanonicalURL = deref(dto.CanonicalURL)
		row.OgTitle = deref(dto.OgTitle)
		row.OgDescription = deref(dto.OgDescription)
		row.OgImage = deref(dto.OgImage)
		return db.Create(&row).Error
	default:
		return err
	}
}

// Delete hard-deletes a blog with its SeoMeta rows and category memberships.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Blog{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.SeoMeta{}).Error; err != nil {
			return err
		}
		return tx.Where("blog_id = ?", id).Delete(&models.BlogCategory{}).Error
	})
}

// IncrementViews bumps the view counter in a single UPDATE.
func (s *Service) IncrementViews(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&models.Blog{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// ListPublished pages through published blogs, newest first.
func (s *Service) ListPublished(ctx context.Context, q pagination.Query) ([]models.Blog, int64, error) {
	var blogs []models.Blog
	query := s.db.WithContext(ctx).Model(&models.Blog{}).
		Where("status = ?", models.BlogPublished).
		Order("created_at DESC, id DESC")
	pag, err := pagination.Paginate(query, q, &blogs)
	if err != nil {
		return nil, 0, err
	}
	return blogs, pag.Total, nil
}

// FindPublished resolves a public blog by slug, then by numeric id.
func (s *Service) FindPublished(ctx context.Context, slugOrID string) (*models.Blog, error) {
	db := s.db.WithContext(ctx).
		Preload("SeoMeta", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("status = ?", models.BlogPublished)

	var b models.Blog
	err := db.Session(&gorm.Session{}).Where("seo_slug = ?", slugOrID).First(&b).Error
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	id, convErr := strconv.ParseUint(slugOrID, 10, 64)
	if convErr != nil || id == 0 {
		return nil, nil
	}
	err = db.Session(&gorm.Session{}).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Terms match a blog when any of them occurs in its title or tags.
type Terms []string

// Filter selects published blogs for listing sections.
type Filter struct {
	All     []Terms
	None    Terms
	Popular bool
	Limit   int
}

// Published returns published blogs matching f.
func (s *Service) Published(ctx context.Context, f Filter) ([]models.Blog, error) {
	q := s.db.WithContext(ctx).Where("status = ?", models.BlogPublished)
	for _, terms := range f.All {
		if len(terms) == 0 {
			continue
		}
		clauses := make([]string, 0, len(terms))
		args := make([]interface{}, 0, 2*len(terms))
		for _, t := range terms {
			clauses = append(clauses, "title LIKE ? OR tags LIKE ?")
			args = append(args, "%"+t+"%", "%"+t+"%")
		}
		q = q.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	for _, t := range f.None {
		q = q.Where("title NOT LIKE ? AND tags NOT LIKE ?", "%"+t+"%", "%"+t+"%")
	}
	if f.Popular {
		q = q.Order("views DESC")
	}
	q = q.Order("created_at DESC").Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var blogs []models.Blog
	return blogs, q.Find(&blogs).Error
}

// InCategory returns published blogs filed under the category, newest first.
func (s *Service) InCategory(ctx context.Context, categoryID uint, limit int) ([]models.Blog, error) {
	var blogs []models.Blog
	err := s.db.WithContext(ctx).
		Joins("JOIN blog_categories bc ON bc.blog_id = blogs.id").
		Where("bc.category_id = ? AND blogs.status = ?", categoryID, models.BlogPublished).
		Order("blogs.created_at DESC").
		Limit(limit).
		Find(&blogs).Error
	return blogs, err
}

func normalizeStatus(status string) string {
	switch s := strings.ToLower(strings.TrimSpace(status)); s {
	case models.BlogPublished, models.BlogArchived:
		return s
	default:
		return models.BlogDraft
	}
}

// memberships merges the primary category into the id list, dropping zeros
// and duplicates while keeping order.
func memberships(primary *uint, ids []uint) []uint {
	seen := make(map[uint]bool, len(ids)+1)
	out := make([]uint, 0, len(ids)+1)
	add := func(id uint) {
		if id != 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	if primary != nil {
		add(*primary)
	}
	for _, id := range ids {
		add(id)
	}
	return out
}

func replaceMemberships(tx *gorm.DB, blogID uint, categoryIDs []uint) error {
	if err := tx.Where("blog_id = ?", blogID).Delete(&models.BlogCategory{}).Error; err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	rows := make([]models.BlogCategory, len(categoryIDs))
	for i, id := range categoryIDs {
		rows[i] = models.BlogCategory{BlogID: blogID, CategoryID: id}
	}
	return tx.Create(&rows).Error
}

func slugTaken(db *gorm.DB, s string, exceptID uint) (bool, error) {
	var count int64
	q := db.Model(&models.Blog{}).Where("seo_slug = ?", s)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// freeSlug returns base, or base-2, base-3, ... whichever is unused first.
func freeSlug(db *gorm.DB, base string, exceptID uint) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		taken, err := slugTaken(db, candidate, exceptID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
