package category

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forexfactory/site/internal/database/dbtest"
	"github.com/forexfactory/site/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/admin"))
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	svc := NewService(dbtest.New(t))
	r := newRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/admin/categories", map[string]string{"name": "MT4"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/admin/categories", map[string]string{"name": "MT4"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Category name already exists")

	w = doJSON(r, http.MethodPost, "/api/admin/categories", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListIncludesBlogCounts(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db)
	ctx := context.Background()

	indicators, err := svc.Create(ctx, &CreateCategoryDTO{Name: "Indicators"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &CreateCategoryDTO{Name: "Brokers", Status: "inactive"})
	require.NoError(t, err)

	for _, s := range []string{"a", "b"} {
		require.NoError(t, db.Create(&models.Blog{Title: s, SeoSlug: s, CategoryID: &indicators.CategoryID}).Error)
	}

	cats, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Brokers", cats[0].Name)
	assert.Equal(t, "inactive", cats[0].Status)
	assert.Equal(t, int64(0), cats[0].BlogCount)
	assert.Equal(t, int64(2), cats[1].BlogCount)
}

func TestUpdateAndDelete(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db)
	r := newRouter(svc)

	cat, err := svc.Create(context.Background(), &CreateCategoryDTO{Name: "Prop Firm"})
	require.NoError(t, err)
	blog := models.Blog{Title: "x", SeoSlug: "x", CategoryID: &cat.CategoryID}
	require.NoError(t, db.Create(&blog).Error)

	w := doJSON(r, http.MethodPut, "/api/admin/categories", map[string]any{"categoryId": cat.CategoryID, "name": "Prop Firms"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Prop Firms")

	found, err := svc.FindByName(context.Background(), "prop firms")
	require.NoError(t, err)
	require.NotNil(t, found)

	path := "/api/admin/categories?id=" + jsonNumber(cat.CategoryID)
	w = doJSON(r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var reloaded models.Blog
	require.NoError(t, db.First(&reloaded, blog.ID).Error)
	assert.Nil(t, reloaded.CategoryID)
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

// insertRivalOnce creates a category named name from inside the next
// create statement, after the service's availability check has passed.
func insertRivalOnce(t *testing.T, db *gorm.DB, name string) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("test:rival_category", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "categories" {
			return
		}
		fired = true
		rival := models.Category{Name: name, Status: "active"}
		if err := tx.Session(&gorm.Session{NewDB: true}).Create(&rival).Error; err != nil {
			tx.AddError(err)
		}
	})
	require.NoError(t, err)
}

func TestCreateMapsConstraintViolationToNameTaken(t *testing.T) {
	db := dbtest.New(t)
	r := newRouter(NewService(db))
	insertRivalOnce(t, db, "MT4")

	w := doJSON(r, http.MethodPost, "/api/admin/categories", map[string]string{"name": "MT4"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Category name already exists")
}

func TestUpdateMapsConstraintViolationToNameTaken(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db)
	cat, err := svc.Create(context.Background(), &CreateCategoryDTO{Name: "MT4"})
	require.NoError(t, err)

	// The rename check passes, then another writer claims the name.
	err = db.Callback().Update().Before("gorm:update").Register("test:rival_rename", func(tx *gorm.DB) {
		if tx.Statement.Table != "categories" {
			return
		}
		if err := tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO categories (name, status, created_at, updated_at) VALUES (?, 'active', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)", "MT5",
		).Error; err != nil {
			tx.AddError(err)
		}
	})
	require.NoError(t, err)

	w := doJSON(newRouter(svc), http.MethodPut, "/api/admin/categories", map[string]any{"categoryId": cat.CategoryID, "name": "MT5"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Category name already exists")
}

func TestBlankNamesAreRejected(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db)
	r := newRouter(svc)
	cat, err := svc.Create(context.Background(), &CreateCategoryDTO{Name: "Indicators"})
	require.NoError(t, err)

	w := doJSON(r, http.MethodPost, "/api/admin/categories", map[string]string{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Category name is required")

	w = doJSON(r, http.MethodPut, "/api/admin/categories", map[string]any{"categoryId": cat.CategoryID, "name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Category name is required")

	reloaded, err := svc.GetByID(context.Background(), cat.CategoryID)
	require.NoError(t, err)
	assert.Equal(t, "Indicators", reloaded.Name)
}
