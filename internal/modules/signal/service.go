package signal

import (
	"context"
	"errors"
	"strings"

	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/pkg/htmlsafe"
	"github.com/forexfactory/site/internal/pkg/slug"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMissingFields = errors.New("title, description and file are required")
	ErrNotFound      = errors.New("signal not found")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns every signal, newest first.
func (s *Service) List(ctx context.Context) ([]models.Signal, error) {
	var signals []models.Signal
	return signals, s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&signals).Error
}

// Latest returns up to limit active signals, newest first.
func (s *Service) Latest(ctx context.Context, limit int) ([]models.Signal, error) {
	var signals []models.Signal
	err := s.db.WithContext(ctx).
		Where("status = ?", models.SignalActive).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&signals).Error
	return signals, err
}

// Suggested returns other active signals to show next to uuid.
func (s *Service) Suggested(ctx context.Context, excludeUUID string, limit int) ([]models.Signal, error) {
	var signals []models.Signal
	err := s.db.WithContext(ctx).
		Where("status = ? AND uuid <> ?", models.SignalActive, excludeUUID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&signals).Error
	return signals, err
}

// CountActive counts publicly listed signals.
func (s *Service) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Signal{}).Where("status = ?", models.SignalActive).Count(&n).Error
	return n, err
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Signal, error) {
	return s.first(ctx, "id = ?", id)
}

// GetByUUID resolves the external identifier used by download clients.
func (s *Service) GetByUUID(ctx context.Context, id string) (*models.Signal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return s.first(ctx, "uuid = ?", id)
}

func (s *Service) first(ctx context.Context, query string, args ...interface{}) (*models.Signal, error) {
	var sig models.Signal
	if err := s.db.WithContext(ctx).Where(query, args...).First(&sig).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sig, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateSignalDTO) (*models.Signal, error) {
	title := strings.TrimSpace(dto.Title)
	description := htmlsafe.Clean(dto.Description)
	if title == "" || description == "" || strings.TrimSpace(dto.FilePath) == "" {
		return nil, ErrMissingFields
	}

	sig := models.Signal{
		UUID:                uuid.NewString(),
		Title:               title,
		Name:                strings.TrimSpace(dto.Name),
		Description:         description,
		FilePath:            strings.TrimSpace(dto.FilePath),
		PreviewImage:        strings.TrimSpace(dto.PreviewImage),
		Mime:                strings.TrimSpace(dto.Mime),
		SizeBytes:           dto.SizeBytes,
		Version:             strings.TrimSpace(dto.Version),
		Platform:            normalizePlatform(dto.Platform),
		StrategyType:        strings.TrimSpace(dto.StrategyType),
		Status:              strings.TrimSpace(dto.Status),
		IsPaid:              dto.IsPaid,
		Price:               dto.Price,
		MinBalance:          dto.MinBalance,
		RecommendedBalance:  dto.RecommendedBalance,
		SupportedPairs:      strings.TrimSpace(dto.SupportedPairs),
		Timeframe:           strings.TrimSpace(dto.Timeframe),
		Features:            dto.Features,
		Requirements:        dto.Requirements,
		InstallInstructions: htmlsafe.Clean(dto.InstallInstructions),
		Slug:                slug.Make(dto.Slug),
		MetaTitle:           strings.TrimSpace(dto.MetaTitle),
		MetaDescription:     strings.TrimSpace(dto.MetaDescription),
		Keywords:            strings.TrimSpace(dto.Keywords),
	}
	if sig.Mime == "" {
		sig.Mime = "application/octet-stream"
	}
	if sig.Status == "" {
		sig.Status = models.SignalActive
	}
	if sig.Slug == "" {
		sig.Slug = slug.Make(title)
	}
	if !sig.IsPaid {
		sig.Price = 0
	}
	if sig.SizeBytes < 0 {
		sig.SizeBytes = 0
	}

	if err := s.db.WithContext(ctx).Create(&sig).Error; err != nil {
		return nil, err
	}
	return &sig, nil
}

// Update applies a partial update. The uuid never changes.
func (s *Service) Update(ctx context.Context, id uint, dto *UpdateSignalDTO) (*models.Signal, error) {
	sig, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sig == nil {
		return nil, ErrNotFound
	}

	updates := map[string]interface{}{}
	setTrimmed := func(col string, v *string) {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	for col, v := range map[string]*string{"title": dto.Title, "file_path": dto.FilePath} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return nil, ErrMissingFields
		}
		setTrimmed(col, v)
	}
	if dto.Description != nil {
		description := htmlsafe.Clean(*dto.Description)
		if description == "" {
			return nil, ErrMissingFields
		}
		updates["description"] = description
	}
	if dto.InstallInstructions != nil {
		updates["install_instructions"] = htmlsafe.Clean(*dto.InstallInstructions)
	}
	setTrimmed("mime", dto.Mime)
	setTrimmed("name", dto.Name)
	setTrimmed("version", dto.Version)
	setTrimmed("strategy_type", dto.StrategyType)
	setTrimmed("status", dto.Status)
	setTrimmed("preview_image", dto.PreviewImage)
	setTrimmed("supported_pairs", dto.SupportedPairs)
	setTrimmed("timeframe", dto.Timeframe)
	setTrimmed("meta_title", dto.MetaTitle)
	setTrimmed("meta_description", dto.MetaDescription)
	setTrimmed("keywords", dto.Keywords)
	if dto.Platform != nil {
		updates["platform"] = normalizePlatform(*dto.Platform)
	}
	if dto.Slug != nil {
		updates["slug"] = slug.Make(*dto.Slug)
	}
	if dto.SizeBytes != nil && *dto.SizeBytes >= 0 {
		updates["size_bytes"] = *dto.SizeBytes
	}
	if dto.Features != nil {
		updates["features"] = *dto.Features
	}
	if dto.Requirements != nil {
		updates["requirements"] = *dto.Requirements
	}
	if dto.MinBalance != nil {
		updates["min_balance"] = *dto.MinBalance
	}
	if dto.RecommendedBalance != nil {
		updates["recommended_balance"] = *dto.RecommendedBalance
	}

	paid := sig.IsPaid
	if dto.IsPaid != nil {
		paid = *dto.IsPaid
		updates["is_paid"] = paid
	}
	switch {
	case !paid:
		updates["price"] = 0
	case dto.Price != nil:
		updates["price"] = *dto.Price
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(sig).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// UpdateSeo writes only the search-engine columns.
func (s *Service) UpdateSeo(ctx context.Context, id uint, dto SeoDTO) (*models.Signal, error) {
	return s.Update(ctx, id, &UpdateSignalDTO{SeoDTO: dto})
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Signal{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementDownloads bumps the download counter in a single UPDATE.
func (s *Service) IncrementDownloads(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&models.Signal{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + ?", 1)).Error
}

func normalizePlatform(p string) string {
	switch strings.ToUpper(strings.TrimSpace(p)) {
	case "MT4":
		return models.PlatformMT4
	case "MT5":
		return models.PlatformMT5
	case "BOTH":
		return models.PlatformBoth
	}
	return ""
}
