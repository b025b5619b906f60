package signal

import "github.com/forexfactory/site/internal/models"

// CreateSignalDTO is the admin create payload. Title, Description and
// FilePath are required.
type CreateSignalDTO struct {
	Title               string             `json:"title"`
	Description         string             `json:"description"`
	FilePath            string             `json:"filePath"`
	Mime                string             `json:"mime"`
	SizeBytes           int64              `json:"sizeBytes"`
	Name                string             `json:"name"`
	Version             string             `json:"version"`
	Platform            string             `json:"platform"`
	StrategyType        string             `json:"strategyType"`
	Status              string             `json:"status"`
	PreviewImage        string             `json:"previewImage"`
	Features            models.StringArray `json:"features"`
	Requirements        models.StringArray `json:"requirements"`
	InstallInstructions string             `json:"installInstructions"`
	IsPaid              bool               `json:"isPaid"`
	Price               float64            `json:"price"`
	MinBalance          *float64           `json:"minBalance"`
	RecommendedBalance  *float64           `json:"recommendedBalance"`
	SupportedPairs      string             `json:"supportedPairs"`
	Timeframe           string             `json:"timeframe"`
	Slug                string             `json:"slug"`
	MetaTitle           string             `json:"metaTitle"`
	MetaDescription     string             `json:"metaDescription"`
	Keywords            string             `json:"keywords"`
}

// UpdateSignalDTO is a partial update; the uuid is not accepted.
type UpdateSignalDTO struct {
	Title               *string             `json:"title"`
	Description         *string             `json:"description"`
	FilePath            *string             `json:"filePath"`
	Mime                *string             `json:"mime"`
	SizeBytes           *int64              `json:"sizeBytes"`
	Name                *string             `json:"name"`
	Version             *string             `json:"version"`
	Platform            *string             `json:"platform"`
	StrategyType        *string             `json:"strategyType"`
	Status              *string             `json:"status"`
	PreviewImage        *string             `json:"previewImage"`
	Features            *models.StringArray `json:"features"`
	Requirements        *models.StringArray `json:"requirements"`
	InstallInstructions *string             `json:"installInstructions"`
	IsPaid              *bool               `json:"isPaid"`
	Price               *float64            `json:"price"`
	MinBalance          *float64            `json:"minBalance"`
	RecommendedBalance  *float64            `json:"recommendedBalance"`
	SupportedPairs      *string             `json:"supportedPairs"`
	Timeframe           *string             `json:"timeframe"`
	Slug                *string             `json:"slug"`

	SeoDTO
}

// SeoDTO holds the signal's search-engine columns.
type SeoDTO struct {
	MetaTitle       *string `json:"metaTitle"`
	MetaDescription *string `json:"metaDescription"`
	Keywords        *string `json:"keywords"`
}
