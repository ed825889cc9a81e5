package web

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spacesedan/feedbackflow/internal/shell"
)

const MAX_UPLOAD_BYTES = 32 << 20

// Server exposes a single shell session over HTTP. mu guards the session's
// state; it is never held across the model or webhook calls.
type Server struct {
	mu      sync.Mutex
	session *shell.Session
	logger  *slog.Logger
}

func NewServer(session *shell.Session) *Server {
	return &Server{session: session, logger: slog.Default()}
}

// locked runs fn with the session lock held.
func (s *Server) locked(fn func(*shell.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.session)
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&requestLogFormatter{logger: s.logger}))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/upload", s.handleUpload)
	r.Post("/suggestions", s.handleSuggestions)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var view shell.View
	s.locked(func(session *shell.Session) { view = session.View() })

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Page(view).Render(r.Context(), w); err != nil {
		slog.Error("[Web] Failed to render page", slog.String("error", err.Error()))
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MAX_UPLOAD_BYTES)
	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Warn("[Web] Upload without a readable file", slog.String("error", err.Error()))
		http.Error(w, "a CSV file is required in the 'file' field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	s.locked(func(session *shell.Session) { err = session.Upload(header.Filename, file) })
	if errors.Is(err, shell.ErrBusy) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	// schema errors are shown on the page
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	uploadID := r.FormValue("upload_id")

	var (
		job *shell.Job
		err error
	)
	s.locked(func(session *shell.Session) { job, err = session.Begin(uploadID) })
	if err == nil {
		out := job.Run(r.Context())
		s.locked(func(session *shell.Session) { err = session.Finish(out) })
	}

	if errors.Is(err, shell.ErrNoAnalysis) || errors.Is(err, shell.ErrStaleUpload) || errors.Is(err, shell.ErrBusy) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	// generation and delivery failures are shown on the page
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
