package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/forexfactory/site/internal/database/dbtest"
	"github.com/forexfactory/site/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortQueryNeverTouchesDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// A nil *gorm.DB panics on first use.
	NewHandler(NewService(nil)).RegisterRoutes(r.Group("/api"), nil)

	for _, q := range []string{"a", " b ", ""} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/search?q="+url.QueryEscape(q), nil))
		require.Equal(t, http.StatusOK, w.Code)

		var res Results
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Empty(t, res.Blogs)
		assert.Empty(t, res.Signals)
		assert.Zero(t, res.Total)
	}
}

func TestNewQueryClamps(t *testing.T) {
	q := NewQuery("  gold ", "bogus", 0)
	assert.Equal(t, Query{Text: "gold", Type: TypeAll, Limit: DefaultLimit}, q)
	assert.Equal(t, MaxLimit, NewQuery("x", TypeBlog, 1000).Limit)
}

func TestSearchMatchesCaseInsensitively(t *testing.T) {
	db := dbtest.New(t)
	require.NoError(t, db.Create(&[]models.Blog{
		{Title: "Gold scalping", SeoSlug: "a", Content: "<p>x</p>", Status: models.BlogPublished},
		{Title: "Other", SeoSlug: "b", Content: "<p>about GOLD</p>", Status: models.BlogPublished},
		{Title: "Gold draft", SeoSlug: "c", Content: "<p>x</p>", Status: models.BlogDraft},
		{Title: "100% win", SeoSlug: "d", Content: "<p>x</p>", Status: models.BlogPublished},
	}).Error)
	require.NoError(t, db.Create(&models.Signal{UUID: "u1", Title: "Gold EA", FilePath: "f"}).Error)

	svc := NewService(db)
	ctx := context.Background()

	res, err := svc.Search(ctx, NewQuery("gold", TypeAll, 20))
	require.NoError(t, err)
	assert.Len(t, res.Blogs, 2)
	assert.Len(t, res.Signals, 1)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, "gold", res.Query)

	res, err = svc.Search(ctx, NewQuery("gold", TypeAll, 2))
	require.NoError(t, err)
	assert.Len(t, res.Blogs, 1)
	assert.Len(t, res.Signals, 1)

	res, err = svc.Search(ctx, NewQuery("gold", TypeSignal, 20))
	require.NoError(t, err)
	assert.Empty(t, res.Blogs)
	assert.Len(t, res.Signals, 1)

	res, err = svc.Search(ctx, NewQuery("0%", TypeBlog, 20))
	require.NoError(t, err)
	require.Len(t, res.Blogs, 1)
	assert.Equal(t, "100% win", res.Blogs[0].Title)
}
