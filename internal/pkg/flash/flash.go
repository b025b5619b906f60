// Package flash carries one-shot messages across an admin UI redirect in a
// signed cookie.
package flash

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

const cookieName = "ff_flash"

// Store reads and writes flash messages.
type Store struct {
	cookies *sessions.CookieStore
}

// New derives the cookie signing key from secret.
func New(secret string, secure bool) *Store {
	key := sha256.Sum256([]byte("flash:" + secret))
	cs := sessions.NewCookieStore(key[:])
	cs.Options = &sessions.Options{
		Path:     "/admin",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{cookies: cs}
}

// Add queues msg for the next request.
func (s *Store) Add(w http.ResponseWriter, r *http.Request, msg string) error {
	sess, _ := s.cookies.Get(r, cookieName)
	sess.AddFlash(msg)
	return sess.Save(r, w)
}

// Pop returns and clears the queued messages.
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) []string {
	sess, err := s.cookies.Get(r, cookieName)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save(r, w)
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			out = append(out, msg)
		}
	}
	return out
}
