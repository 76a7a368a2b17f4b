// Package webui is the browser front end: sign in, upload a workbook, pick a
// validation profile, and download the annotated copy and the error report.
//
// Routes:
//
//	GET       /                     → /login
//	GET|POST  /login                → sign-in form
//	GET       /logout               → clears the session
//	GET|POST  /upload               → upload form; POST runs a validation
//	GET       /download/{kind}      → kind is "output" or "report"
//	GET       /clear_files          → deletes the session's results
//	GET       /healthz              → liveness probe
//
// Session state (the signed-in user, the last run's files and pending flash
// messages) lives in a signed, expiring cookie; the server keeps none.
package webui

import (
	"bytes"
	"crypto/rand"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
	"github.com/Karanpr-18/Excel-cleaning/internal/profile"
	"github.com/Karanpr-18/Excel-cleaning/internal/retention"
)

//go:embed templates/*.html
var templateFS embed.FS

// Deps are the server's collaborators.
type Deps struct {
	Log zerolog.Logger

	// Sweeper runs after each successful upload; nil disables retention.
	Sweeper *retention.Sweeper

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server routes requests. It is safe for concurrent use.
type Server struct {
	cfg      config.Settings
	log      zerolog.Logger
	sweeper  *retention.Sweeper
	now      func() time.Time
	secret   []byte
	tmpl     *template.Template
	profiles []profileOption
	handler  http.Handler
}

type profileOption struct {
	Name  string
	Label string
}

// NewServer builds the router. With no SESSION_SECRET configured a random
// key is generated, so sessions do not survive a restart.
func NewServer(cfg config.Settings, deps Deps) *Server {
	s := &Server{
		cfg:     cfg,
		log:     deps.Log,
		sweeper: deps.Sweeper,
		now:     deps.Now,
		secret:  []byte(cfg.SessionSecret),
		tmpl:    template.Must(template.New("").ParseFS(templateFS, "templates/*.html")),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		if _, err := rand.Read(s.secret); err != nil {
			panic(err)
		}
		s.log.Warn().Msg("webui: SESSION_SECRET not set; using an ephemeral key")
	}
	for _, name := range profile.Names() {
		p, err := profile.Lookup(name)
		if err != nil {
			continue
		}
		s.profiles = append(s.profiles, profileOption{Name: p.Name(), Label: p.Label()})
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet)
	r.Handle("/upload", s.requireLogin(s.handleUpload)).Methods(http.MethodGet, http.MethodPost)
	r.Handle("/download/{kind:output|report}", s.requireLogin(s.handleDownload)).Methods(http.MethodGet)
	r.Handle("/clear_files", s.requireLogin(s.handleClearFiles)).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})

	var h http.Handler = r
	h = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("http: request")
	})(h)
	h = hlog.RemoteAddrHandler("remote")(h)
	h = hlog.NewHandler(s.log)(h)
	s.handler = h
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

type pageData struct {
	Email    string
	Flashes  []flash
	Files    *processed
	Profiles []profileOption
	MaxMB    int64
}

// render writes page with the session's pending flashes, which are consumed.
func (s *Server) render(w http.ResponseWriter, r *http.Request, sess *session, page string, status int) {
	data := pageData{
		Email:    sess.Email,
		Flashes:  sess.Flashes,
		Files:    sess.Files,
		Profiles: s.profiles,
		MaxMB:    s.cfg.MaxUploadBytes >> 20,
	}
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, page, data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("page", page).Msg("webui: template failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	sess.Flashes = nil
	s.saveSession(w, r, sess)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// redirect saves the session and sends a 303 to path.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, sess *session, path string) {
	s.saveSession(w, r, sess)
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func (s *Server) requireLogin(next func(http.ResponseWriter, *http.Request, *session)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.loadSession(r)
		if sess.Email == "" {
			sess.flash("error", "Please log in to access this page.")
			s.redirect(w, r, sess, "/login")
			return
		}
		next(w, r, sess)
	})
}
