package pagination

import (
	"strconv"

	"github.com/forexfactory/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
)

// Query holds parsed pagination parameters.
type Query struct {
	Page int
	Size int
}

// FromContext reads ?page= and ?limit= from the request, clamping both.
func FromContext(c *gin.Context, defaultSize int) Query {
	if defaultSize <= 0 {
		defaultSize = DefaultSize
	}
	return Normalize(parseIntOr(c.Query("page"), DefaultPage), parseIntOr(c.Query("limit"), defaultSize), defaultSize)
}

// Normalize clamps page to >= 1 and size to [1, MaxSize].
func Normalize(page, size, defaultSize int) Query {
	if page < 1 {
		page = DefaultPage
	}
	if size < 1 {
		size = defaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return Query{Page: page, Size: size}
}

// Offset is the number of rows skipped for this page.
func (q Query) Offset() int { return (q.Page - 1) * q.Size }

// Paginate applies limit/offset to a GORM query and returns the pagination metadata.
func Paginate[T any](db *gorm.DB, q Query, dest *[]T) (response.Pagination, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return response.Pagination{}, err
	}

	if err := db.Offset(q.Offset()).Limit(q.Size).Find(dest).Error; err != nil {
		return response.Pagination{}, err
	}

	totalPage := int((total + int64(q.Size) - 1) / int64(q.Size))

	return response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPage,
		Size:        q.Size,
		HasNextPage: q.Page < totalPage,
	}, nil
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
