package webui

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
	"github.com/Karanpr-18/Excel-cleaning/internal/pipeline"
	"github.com/Karanpr-18/Excel-cleaning/internal/profile"
	_ "github.com/Karanpr-18/Excel-cleaning/internal/source/csvfile"
	_ "github.com/Karanpr-18/Excel-cleaning/internal/source/xlsx"
)

const (
	defaultProfile = "kadam"
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// multipartMemory is how much of a form is held in memory before
	// spilling to temporary files.
	multipartMemory = 32 << 20
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess := s.loadSession(r)
	if r.Method == http.MethodGet {
		if sess.Email != "" {
			s.redirect(w, r, sess, "/upload")
			return
		}
		s.render(w, r, sess, "login", http.StatusOK)
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.PostFormValue("email")))
	password := r.PostFormValue("password")
	if !s.checkCredentials(email, password) {
		hlog.FromRequest(r).Warn().Str("email", email).Msg("webui: login rejected")
		sess.flash("error", "Invalid email or password.")
		s.render(w, r, sess, "login", http.StatusUnauthorized)
		return
	}
	// A fresh session drops any files left by a previous user.
	sess = &session{Email: email}
	sess.flash("success", "Login successful!")
	s.redirect(w, r, sess, "/upload")
}

// checkCredentials compares in constant time and does the same work for
// unknown emails.
func (s *Server) checkCredentials(email, password string) bool {
	want, known := s.cfg.Users[email]
	if !known {
		want = "\x00unknown-user"
	}
	ok := subtle.ConstantTimeCompare([]byte(password), []byte(want)) == 1
	return known && ok && email != ""
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := &session{}
	sess.flash("info", "You have been logged out.")
	s.redirect(w, r, sess, "/login")
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, sess *session) {
	if r.Method == http.MethodGet {
		s.render(w, r, sess, "upload", http.StatusOK)
		return
	}
	log := hlog.FromRequest(r)

	if r.ContentLength > s.cfg.MaxUploadBytes {
		s.tooLarge(w, r, sess)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.tooLarge(w, r, sess)
			return
		}
		sess.flash("error", "No file selected.")
		s.redirect(w, r, sess, "/upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, hdr, err := r.FormFile("file")
	if err != nil || hdr.Filename == "" {
		sess.flash("error", "No file selected.")
		s.redirect(w, r, sess, "/upload")
		return
	}
	defer file.Close()

	ext, err := allowedExtension(hdr.Filename)
	if err != nil {
		sess.flash("error", "Invalid file type. Please upload an Excel (.xlsx) or CSV file.")
		s.redirect(w, r, sess, "/upload")
		return
	}
	method := r.FormValue("validation_method")
	if method == "" {
		method = defaultProfile
	}
	p, err := profile.Lookup(method)
	if err != nil {
		sess.flash("error", fmt.Sprintf("Unknown validation method %q.", method))
		s.redirect(w, r, sess, "/upload")
		return
	}

	runID := uuid.NewString()
	safe := pipeline.SafeName(filepath.Base(hdr.Filename))
	uploadPath := filepath.Join(s.cfg.UploadDir, runID+"_"+safe)
	if err := saveUpload(uploadPath, file); err != nil {
		log.Error().Err(err).Str("path", uploadPath).Msg("webui: save upload")
		sess.flash("error", "Could not save the uploaded file.")
		s.redirect(w, r, sess, "/upload")
		return
	}
	defer func() {
		if err := os.Remove(uploadPath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", uploadPath).Msg("webui: remove upload")
		}
	}()

	if err := sniffFile(uploadPath, ext); err != nil {
		log.Warn().Err(err).Str("file", safe).Msg("webui: upload rejected")
		sess.flash("error", "The file content does not match its extension.")
		s.redirect(w, r, sess, "/upload")
		return
	}

	out, err := pipeline.Run(r.Context(), pipeline.Job{
		Name:      "web",
		Source:    config.Source{File: config.SourceFile{Path: uploadPath}},
		Profile:   p,
		OutputDir: s.cfg.DownloadDir,
		RunID:     runID,
	})
	if err != nil {
		log.Error().Err(err).Str("file", safe).Str("profile", p.Name()).Msg("webui: validation failed")
		if errors.Is(err, pipeline.ErrUnsupportedFile) {
			sess.flash("error", "Legacy .xls workbooks are not supported. Please save the file as .xlsx and upload again.")
		} else {
			sess.flash("error", "Error processing file: "+err.Error())
		}
		s.redirect(w, r, sess, "/upload")
		return
	}

	sess.Files = &processed{
		Output:   filepath.Base(out.Annotated),
		Report:   filepath.Base(out.Report),
		Original: strings.TrimSuffix(safe, filepath.Ext(safe)),
		Profile:  p.Label(),
		Errors:   out.Errors,
	}
	sess.flash("success", fmt.Sprintf("File processed successfully! %d issue(s) found. You can now download the results.", out.Errors))

	if s.sweeper != nil {
		if _, err := s.sweeper.Sweep(); err != nil {
			log.Warn().Err(err).Msg("webui: retention sweep")
		}
	}
	s.redirect(w, r, sess, "/upload")
}

func (s *Server) tooLarge(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.flash("error", fmt.Sprintf("File is too large. Maximum size is %d MB.", s.cfg.MaxUploadBytes>>20))
	s.render(w, r, sess, "upload", http.StatusRequestEntityTooLarge)
}

func saveUpload(path string, src io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	_, err = io.Copy(f, src)
	return err
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request, sess *session) {
	if sess.Files == nil {
		sess.flash("error", "No processed files found. Please upload a file first.")
		s.redirect(w, r, sess, "/upload")
		return
	}
	var base, name string
	switch mux.Vars(r)["kind"] {
	case "output":
		base, name = sess.Files.Output, sess.Files.Original+"_Validated_Output.xlsx"
	case "report":
		base, name = sess.Files.Report, sess.Files.Original+"_Validation_Report.xlsx"
	}
	path := filepath.Join(s.cfg.DownloadDir, filepath.Base(base))
	f, err := os.Open(path)
	if err != nil {
		sess.flash("error", "File not found. It may have been cleared or expired.")
		s.redirect(w, r, sess, "/upload")
		return
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil || !st.Mode().IsRegular() {
		sess.flash("error", "File not found. It may have been cleared or expired.")
		s.redirect(w, r, sess, "/upload")
		return
	}
	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, st.ModTime(), f)
}

func (s *Server) handleClearFiles(w http.ResponseWriter, r *http.Request, sess *session) {
	if sess.Files != nil {
		for _, base := range []string{sess.Files.Output, sess.Files.Report} {
			path := filepath.Join(s.cfg.DownloadDir, filepath.Base(base))
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				hlog.FromRequest(r).Warn().Err(err).Str("path", path).Msg("webui: clear file")
			}
		}
		sess.Files = nil
	}
	sess.flash("success", "Files cleared successfully.")
	s.redirect(w, r, sess, "/upload")
}
