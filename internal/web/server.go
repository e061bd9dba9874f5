// Package web serves the browser UI and JSON API on top of the table access layer.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/joacominatel/pgbrowse/internal/app"
	"github.com/joacominatel/pgbrowse/internal/database"
	"github.com/joacominatel/pgbrowse/internal/logger"
)

// MaxPageSize bounds the per_page parameter of the table view.
const MaxPageSize = 1000

// Options configures a Server.
type Options struct {
	SessionSecret string
	PageSize      int
	// CORSOrigins defaults to every origin.
	CORSOrigins []string
	Logger      logger.Logger
}

// Server is the HTTP front end.
type Server struct {
	svc      *app.Service
	log      logger.Logger
	sessions *sessionStore
	pages    *pongo2.TemplateSet
	pageSize int
	cors     *cors.Cors
	router   chi.Router
}

// New builds a Server with its routes.
func New(svc *app.Service, opts Options) (*Server, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	pages, err := newTemplateSet()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	sessions, random := newSessionStore(opts.SessionSecret)
	if random {
		log.Warn("No session secret configured, using a random key; sessions reset on restart")
	}

	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = 50
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		svc:      svc,
		log:      log,
		sessions: sessions,
		pages:    pages,
		pageSize: pageSize,
		cors: cors.New(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodHead},
			AllowedHeaders: []string{"*"},
			ExposedHeaders: []string{requestIDHeader},
		}),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.cors.Handler)

	r.Get("/", s.handleIndex)
	r.Get("/table/{table}", s.handleTable)
	r.Get("/query", s.handleQueryPage)
	r.Post("/execute_query", s.handleExecuteQuery)
	r.Get("/export/{table}", s.handleExport)
	r.Post("/database", s.handleSelectTarget)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tables", s.handleAPITables)
		r.Get("/table/{table}/structure", s.handleAPIStructure)
		r.Get("/targets", s.handleAPITargets)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFiles()))))

	r.NotFound(s.handleNotFound)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("Listening", logger.Ctx{"addr": addr})
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// open returns an access layer for the session's target. A target that is no
// longer configured falls back to the default one.
func (s *Server) open(sess *session) (database.Browser, error) {
	b, err := s.svc.Open(sess.Target)
	var unknown *app.ErrUnknownTarget
	if errors.As(err, &unknown) {
		sess.Target = ""
		b, err = s.svc.Open("")
	}
	return b, err
}

func (s *Server) currentTarget(sess *session) string {
	if sess.Target != "" && s.svc.HasTarget(sess.Target) {
		return sess.Target
	}
	return s.svc.DefaultTarget()
}

type targetView struct {
	Name    string
	Display string
}

// render executes a page template with the common layout context and writes it.
func (s *Server) render(w http.ResponseWriter, r *http.Request, sess *session, status int, name string, data pongo2.Context) {
	ctx := pongo2.Context{
		"flashes":        sess.popFlashes(),
		"current_target": s.currentTarget(sess),
	}
	targets := make([]targetView, 0, len(s.svc.Targets()))
	for _, t := range s.svc.Targets() {
		targets = append(targets, targetView{Name: t.Name, Display: t.DisplayString()})
	}
	ctx["targets"] = targets
	for k, v := range data {
		ctx[k] = v
	}

	tpl, err := s.pages.FromCache(name)
	if err != nil {
		s.requestLog(r).Error("Template load failed", logger.Ctx{"template": name, "err": err})
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteWriter(ctx, &buf); err != nil {
		s.requestLog(r).Error("Template render failed", logger.Ctx{"template": name, "err": err})
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := s.sessions.save(w, sess); err != nil {
		s.requestLog(r).Warn("Session save failed", logger.Ctx{"err": err})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// redirect stores the session (and its pending flashes) and redirects.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, sess *session, to string) {
	if err := s.sessions.save(w, sess); err != nil {
		s.requestLog(r).Warn("Session save failed", logger.Ctx{"err": err})
	}
	http.Redirect(w, r, to, http.StatusFound)
}
