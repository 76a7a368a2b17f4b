package webui

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookie = "validator_session"

// processed names the artifacts of the session's most recent run. Paths are
// base names inside the download directory.
type processed struct {
	Output   string `json:"output"`
	Report   string `json:"report"`
	Original string `json:"original"`
	Profile  string `json:"profile"`
	Errors   int    `json:"errors"`
}

type flash struct {
	Kind    string `json:"kind"`
	Message string `json:"msg"`
}

// session is carried as the claims of an HS256 token.
type session struct {
	Email   string     `json:"email,omitempty"`
	Files   *processed `json:"files,omitempty"`
	Flashes []flash    `json:"flashes,omitempty"`
	jwt.RegisteredClaims
}

func (s *session) flash(kind, msg string) {
	s.Flashes = append(s.Flashes, flash{Kind: kind, Message: msg})
}

// loadSession returns the request's session, or an empty one when the cookie
// is missing, forged or expired.
func (s *Server) loadSession(r *http.Request) *session {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return &session{}
	}
	sess, err := s.decodeSession(c.Value)
	if err != nil {
		return &session{}
	}
	return sess
}

func (s *Server) decodeSession(raw string) (*session, error) {
	sess := &session{}
	token, err := jwt.ParseWithClaims(raw, sess, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return sess, nil
}

func (s *Server) encodeSession(sess *session) (string, error) {
	now := s.now()
	sess.IssuedAt = jwt.NewNumericDate(now)
	sess.ExpiresAt = jwt.NewNumericDate(now.Add(s.cfg.SessionTTL))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, sess).SignedString(s.secret)
}

// saveSession writes sess back as a cookie. An empty session clears it.
func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess *session) {
	if sess.Email == "" && sess.Files == nil && len(sess.Flashes) == 0 {
		if _, err := r.Cookie(sessionCookie); err == nil {
			http.SetCookie(w, &http.Cookie{Name: sessionCookie, Path: "/", MaxAge: -1, HttpOnly: true})
		}
		return
	}
	raw, err := s.encodeSession(sess)
	if err != nil {
		s.log.Error().Err(err).Msg("webui: encode session")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    raw,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
