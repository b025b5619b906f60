package category

import (
	"context"
	"errors"
	"strings"

	"github.com/forexfactory/site/internal/database"
	"github.com/forexfactory/site/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNameTaken is returned when another category already uses the name.
	ErrNameTaken = errors.New("category name already exists")
	// ErrNotFound is returned by writes addressing a missing category.
	ErrNotFound = errors.New("category not found")
	// ErrNameRequired is returned when a name is blank after trimming.
	ErrNameRequired = errors.New("category name is required")
)

type CreateCategoryDTO struct {
	Name        string  `json:"name"        binding:"required"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
}

type UpdateCategoryDTO struct {
	CategoryID  uint    `json:"categoryId"  binding:"required"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// WithCount is a category plus the number of blogs filed under it.
type WithCount struct {
	models.Category
	BlogCount int64 `json:"blogCount"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns every category ordered by name with its blog count.
func (s *Service) List(ctx context.Context) ([]WithCount, error) {
	var cats []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		CategoryID uint
		Total      int64
	}
	var rows []countRow
	err := s.db.WithContext(ctx).Model(&models.Blog{}).
		Select("category_id, COUNT(*) AS total").
		Where("category_id IS NOT NULL").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Total
	}

	out := make([]WithCount, len(cats))
	for i, cat := range cats {
		out[i] = WithCount{Category: cat, BlogCount: counts[cat.CategoryID]}
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var cat models.Category
	if err := s.db.WithContext(ctx).First(&cat, "category_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

// FindByName matches case-insensitively, as category page slugs do.
func (s *Service) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var cat models.Category
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateCategoryDTO) (*models.Category, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if taken, err := s.nameTaken(ctx, name, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrNameTaken
	}

	cat := models.Category{Name: name, Description: dto.Description, Status: "active"}
	if dto.Status != "" {
		cat.Status = dto.Status
	}
	if err := s.db.WithContext(ctx).Create(&cat).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return &cat, nil
}

func (s *Service) Update(ctx context.Context, dto *UpdateCategoryDTO) (*models.Category, error) {
	cat, err := s.GetByID(ctx, dto.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrNotFound
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		if taken, err := s.nameTaken(ctx, name, cat.CategoryID); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrNameTaken
		}
		updates["name"] = name
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Status != nil {
		updates["status"] = *dto.Status
	}
	if len(updates) == 0 {
		return cat, nil
	}
	if err := s.db.WithContext(ctx).Model(cat).Updates(updates).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return s.GetByID(ctx, cat.CategoryID)
}

// Delete removes the category, its blog memberships and detaches blogs that
// used it as their primary category.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Category{}, "category_id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("category_id = ?", id).Delete(&models.BlogCategory{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Blog{}).Where("category_id = ?", id).Update("category_id", nil).Error
	})
}

func (s *Service) nameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.Category{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("category_id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
