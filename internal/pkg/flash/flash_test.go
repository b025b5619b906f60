package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashRoundTrip(t *testing.T) {
	store := New("secret", false)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	require.NoError(t, store.Add(w, r, "Invalid username or password"))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	next := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	for _, c := range cookies {
		next.AddCookie(c)
	}
	w2 := httptest.NewRecorder()
	assert.Equal(t, []string{"Invalid username or password"}, store.Pop(w2, next))

	third := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	for _, c := range w2.Result().Cookies() {
		third.AddCookie(c)
	}
	assert.Empty(t, store.Pop(httptest.NewRecorder(), third))
}

func TestFlashRejectsForeignCookie(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	require.NoError(t, New("one", false).Add(w, r, "hi"))

	next := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	for _, c := range w.Result().Cookies() {
		next.AddCookie(c)
	}
	assert.Empty(t, New("two", false).Pop(httptest.NewRecorder(), next))
}
