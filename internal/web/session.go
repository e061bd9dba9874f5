package web

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/securecookie"
)

const (
	sessionCookie = "pgbrowse_session"
	sessionMaxAge = 30 * 24 * 60 * 60
)

// Flash categories.
const (
	flashError   = "error"
	flashSuccess = "success"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

// session is the per-browser state kept in a signed cookie.
type session struct {
	Target  string
	Flashes []Flash
}

type sessionStore struct {
	codec *securecookie.SecureCookie
}

// newSessionStore signs cookies with a key derived from secret.
// An empty secret yields a random key, so sessions do not survive restarts.
func newSessionStore(secret string) (*sessionStore, bool) {
	var hashKey []byte
	random := secret == ""
	if random {
		hashKey = securecookie.GenerateRandomKey(32)
	} else {
		sum := sha256.Sum256([]byte(secret))
		hashKey = sum[:]
	}

	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(sessionMaxAge)
	return &sessionStore{codec: codec}, random
}

// load returns the request's session. Missing or tampered cookies give an empty session.
func (s *sessionStore) load(r *http.Request) *session {
	sess := &session{}
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return sess
	}
	if err := s.codec.Decode(sessionCookie, c.Value, sess); err != nil {
		return &session{}
	}
	return sess
}

// save writes the session cookie. It must run before the response body is written.
func (s *sessionStore) save(w http.ResponseWriter, sess *session) error {
	encoded, err := s.codec.Encode(sessionCookie, sess)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    encoded,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (sess *session) flash(category, message string) {
	sess.Flashes = append(sess.Flashes, Flash{Category: category, Message: message})
}

func (sess *session) popFlashes() []Flash {
	f := sess.Flashes
	sess.Flashes = nil
	return f
}
