package models

// Signal platforms.
const (
	PlatformMT4  = "MT4"
	PlatformMT5  = "MT5"
	PlatformBoth = "Both"
)

// SignalActive is the status listed publicly and in the sitemap.
const SignalActive = "active"

// Signal is a downloadable trading file. UUID is assigned once at creation
// and is the only identifier exposed to download clients.
type Signal struct {
	Base
	UUID                string      `json:"uuid"                gorm:"type:char(36);uniqueIndex;not null"`
	Title               string      `json:"title"               gorm:"size:255;not null"`
	Name                string      `json:"name"`
	Description         string      `json:"description"         gorm:"type:longtext"`
	FilePath            string      `json:"filePath"            gorm:"not null"`
	PreviewImage        string      `json:"previewImage"`
	Mime                string      `json:"mime"                gorm:"size:127;default:application/octet-stream"`
	SizeBytes           int64       `json:"sizeBytes"           gorm:"not null;default:0"`
	Version             string      `json:"version"             gorm:"size:50"`
	Platform            string      `json:"platform"            gorm:"size:10"`
	StrategyType        string      `json:"strategyType"        gorm:"size:100"`
	Status              string      `json:"status"              gorm:"size:20;index;not null;default:active"`
	IsPaid              bool        `json:"isPaid"              gorm:"not null;default:false"`
	Price               float64     `json:"price"               gorm:"not null;default:0"`
	MinBalance          *float64    `json:"minBalance"`
	RecommendedBalance  *float64    `json:"recommendedBalance"`
	SupportedPairs      string      `json:"supportedPairs"      gorm:"type:text"`
	Timeframe           string      `json:"timeframe"           gorm:"size:50"`
	Features            StringArray `json:"features"            gorm:"type:text"`
	Requirements        StringArray `json:"requirements"        gorm:"type:text"`
	InstallInstructions string      `json:"installInstructions" gorm:"type:longtext"`
	Slug                string      `json:"slug"                gorm:"size:191;index"`
	MetaTitle           string      `json:"metaTitle"`
	MetaDescription     string      `json:"metaDescription"     gorm:"type:text"`
	Keywords            string      `json:"keywords"            gorm:"type:text"`
	Downloads           int64       `json:"downloads"           gorm:"not null;default:0"`
}

func (Signal) TableName() string { return "signals" }
