package view

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"t/layout.html": {Data: []byte(`{{define "layout"}}<main>{{template "content" .}}</main>{{end}}`)},
		"t/hello.html":  {Data: []byte(`{{define "content"}}Hello {{shout .}}{{end}}`)},
		"t/broken.html": {Data: []byte(`{{define "content"}}{{.Missing.Field}}{{end}}`)},
	}
}

func TestRenderWrapsPageInLayout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	set, err := Parse(testFS(), "t/*.html", []string{"t/layout.html"}, template.FuncMap{"shout": strings.ToUpper})
	require.NoError(t, err)
	assert.True(t, set.Has("hello"))
	assert.False(t, set.Has("layout"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	require.NoError(t, set.Render(c, http.StatusTeapot, "hello", "<b>go</b>"))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "<main>Hello &lt;B&gt;GO&lt;/B&gt;</main>", w.Body.String())
}

func TestRenderFailureWritesNothing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	set, err := Parse(testFS(), "t/*.html", []string{"t/layout.html"}, template.FuncMap{"shout": strings.ToUpper})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	assert.Error(t, set.Render(c, http.StatusOK, "broken", "a string has no fields"))
	assert.Error(t, set.Render(c, http.StatusOK, "missing", nil))
	assert.Empty(t, w.Body.String())
}
