package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/forexfactory/site/internal/config"
	"github.com/forexfactory/site/internal/database/dbtest"
	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const publicBase = "https://cdn.example.com"

func setup(t *testing.T) (*gorm.DB, *storage.Memory, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.New(t)
	store := storage.NewMemory(publicBase)
	h := NewHandler(NewService(db), store, &config.AppConfig{Upload: config.UploadConfig{MediaLimit: 2}}, nil)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/admin"))
	h.RegisterFileRoute(r)
	return db, store, r
}

func send(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
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

func TestListAttachesUploaderAndHonoursLimit(t *testing.T) {
	db, _, r := setup(t)
	user := models.User{Username: "ed", Password: "x", Name: "Ed", Email: "ed@example.com"}
	require.NoError(t, db.Create(&user).Error)

	for _, name := range []string{"a.png", "b.zip", "c.jpg"} {
		w := send(r, http.MethodPost, "/api/admin/media", map[string]any{"fileName": name, "filePath": publicBase + "/uploads/" + name, "uploadedBy": user.ID})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := send(r, http.MethodGet, "/api/admin/media", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Media []models.Media `json:"media"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Media, 2)
	require.NotNil(t, out.Media[0].User)
	assert.Equal(t, "ed@example.com", out.Media[0].User.Email)

	items, err := NewService(db).List(context.Background(), KindImage, 10)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestListFiltersKindInQuery(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"chart.PNG", "old.webp", "robot.ex4", "setfile.set", "manual.pdf", "logo.svg"} {
		require.NoError(t, db.Create(&models.Media{FileName: name, FilePath: "/" + name, UploadedBy: 1, UploadedAt: base.Add(time.Duration(i) * time.Hour)}).Error)
	}

	var loaded []int64
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:media_rows", func(tx *gorm.DB) {
		if tx.Statement.Table == "media" {
			loaded = append(loaded, tx.RowsAffected)
		}
	}))

	names := func(items []models.Media) []string {
		out := make([]string, len(items))
		for i, m := range items {
			out[i] = m.FileName
		}
		return out
	}

	images, err := svc.List(ctx, KindImage, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"logo.svg", "old.webp"}, names(images))

	files, err := svc.List(ctx, KindFile, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"manual.pdf", "setfile.set", "robot.ex4"}, names(files))

	all, err := svc.List(ctx, KindAll, 4)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	assert.Equal(t, []int64{2, 3, 4}, loaded)
}

func TestCreateRequiresFields(t *testing.T) {
	_, _, r := setup(t)
	w := send(r, http.MethodPost, "/api/admin/media", map[string]any{"fileName": "a.png"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing required fields")
}

func TestDeleteRemovesStoredObject(t *testing.T) {
	db, store, r := setup(t)
	_, err := store.Upload(context.Background(), "uploads/a.png", strings.NewReader("png"), 3, "image/png")
	require.NoError(t, err)
	m := models.Media{FileName: "a.png", FilePath: publicBase + "/uploads/a.png", UploadedBy: 1}
	require.NoError(t, db.Create(&m).Error)

	path := "/api/admin/media?id=" + strconv.Itoa(int(m.ID))
	assert.Equal(t, http.StatusOK, send(r, http.MethodDelete, path, nil).Code)
	assert.False(t, store.Has("uploads/a.png"))
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodDelete, path, nil).Code)
}

func TestServeStreamsObject(t *testing.T) {
	_, store, r := setup(t)
	_, err := store.Upload(context.Background(), "uploads/chart.png", strings.NewReader("image-bytes"), 11, "image/png")
	require.NoError(t, err)

	w := send(r, http.MethodGet, "/admin/media/uploads/chart.png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Equal(t, "image-bytes", string(body))
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, immutableCache, w.Header().Get("Cache-Control"))

	assert.Equal(t, http.StatusNotFound, send(r, http.MethodGet, "/admin/media/uploads/missing.png", nil).Code)
}
