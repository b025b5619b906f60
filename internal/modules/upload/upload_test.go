package upload

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/forexfactory/site/internal/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(maxMB int) (*storage.Memory, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	store := storage.NewMemory("https://cdn.example.com")
	r := gin.New()
	NewHandler(NewService(store, maxMB), nil).RegisterRoutes(r.Group("/api"))
	return store, r
}

func multipartRequest(t *testing.T, filename string, data []byte, folder string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if folder != "" {
		require.NoError(t, mw.WriteField("folder", folder))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestOversizeUploadNeverReachesStorage(t *testing.T) {
	store, r := setup(1)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "big.zip", make([]byte, 1<<20+1), ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "File size exceeds 1MB limit")
	assert.Equal(t, 0, store.Calls())
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func TestOversizeStreamStopsReadingAtLimit(t *testing.T) {
	store, r := setup(1)
	full := multipartRequest(t, "huge.zip", make([]byte, 8<<20), "")
	body := &countingReader{r: full.Body}

	// Chunked: no Content-Length to reject up front.
	req := httptest.NewRequest(http.MethodPost, "/api/upload", io.NopCloser(body))
	req.Header.Set("Content-Type", full.Header.Get("Content-Type"))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "File size exceeds 1MB limit")
	assert.Equal(t, 0, store.Calls())
	assert.Less(t, body.n, 2<<20)
}

func TestDeclaredOversizeIsRejectedUnread(t *testing.T) {
	store, r := setup(1)
	req := multipartRequest(t, "huge.zip", make([]byte, 4<<20), "")
	body := &countingReader{r: req.Body}
	req.Body = io.NopCloser(body)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "File size exceeds 1MB limit")
	assert.Equal(t, 0, store.Calls())
	assert.Zero(t, body.n)
}

func TestUploadStoresUnderFolder(t *testing.T) {
	store, r := setup(50)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "Robot.EX4", []byte("binary"), "signals"))
	require.Equal(t, http.StatusOK, w.Code)

	var res Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Key, "signals/"))
	assert.True(t, strings.HasSuffix(res.Key, ".ex4"))
	assert.Equal(t, "https://cdn.example.com/"+res.Key, res.URL)
	assert.Equal(t, "Robot.EX4", res.Filename)
	assert.Equal(t, int64(6), res.Size)
	assert.True(t, store.Has(res.Key))
}

func TestUploadWithoutFile(t *testing.T) {
	store, r := setup(50)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, store.Calls())
}

func TestPresign(t *testing.T) {
	_, r := setup(50)
	req := httptest.NewRequest(http.MethodPost, "/api/upload/presign", strings.NewReader(`{"filename":"a.png","folder":"../etc"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Key       string `json:"key"`
		UploadURL string `json:"uploadUrl"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, strings.HasPrefix(out.Key, "etc/"))
	assert.Contains(t, out.UploadURL, "presigned=1")
}
