package console

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	goConsole "github.com/MrEthical07/goConsole"
	"github.com/MrEthical07/goConsole/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Options configures a [Server].
type Options struct {
	Logger *slog.Logger
	// Metrics, when set, is mounted unguarded at /metrics.
	Metrics http.Handler
}

// Server renders console pages for one engine.
type Server struct {
	engine  *goConsole.Engine
	tmpl    *template.Template
	logger  *slog.Logger
	metrics http.Handler
	screens []screen
}

// NewServer parses the page templates and prepares the screens.
func NewServer(engine *goConsole.Engine, opts Options) (*Server, error) {
	if engine == nil {
		return nil, errors.New("console: nil engine")
	}
	tmpl, err := template.New("console").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		engine:  engine,
		tmpl:    tmpl,
		logger:  logger,
		metrics: opts.Metrics,
		screens: screens(engine),
	}, nil
}

// Handler returns the console router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestIDBridge)
	r.Use(chimw.Recoverer)

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	routes := s.engine.Config().Routes
	r.Get(routes.Login, s.loginPage)
	r.Post(routes.Login, s.loginSubmit)
	r.Post("/logout", s.logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Guard(s.engine))

		r.Get(routes.Forbidden, s.forbidden)
		r.Get("/", s.dashboard)
		r.Get("/dashboard", s.dashboard)
		r.Get("/profile", s.profile)
		for _, sc := range s.screens {
			r.Get(sc.path, s.list(sc))
			r.With(middleware.RequirePermission(s.engine, sc.prefix+"_ADD")).
				Post(sc.path, s.add(sc))
			r.With(middleware.RequirePermission(s.engine, sc.prefix+"_EDIT")).
				Get(sc.path+"/{id}/edit", s.edit(sc))
			r.With(middleware.RequirePermission(s.engine, sc.prefix+"_EDIT")).
				Post(sc.path+"/{id}", s.save(sc))
			r.With(middleware.RequirePermission(s.engine, sc.prefix+"_DELETE")).
				Post(sc.path+"/{id}/delete", s.remove(sc))
		}
		r.NotFound(s.notFound)
	})

	return r
}

// requestIDBridge forwards chi's request id to backend calls and audit events.
func requestIDBridge(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			r = r.WithContext(goConsole.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

type page struct {
	Title    string
	User     string
	Nav      []goConsole.Route
	Active   string
	Error    string
	Redirect string
	Data     any
}

func (s *Server) newPage(r *http.Request, title string) page {
	p := page{Title: title, Nav: s.engine.VisibleRoutes(), Active: r.URL.Path}
	if u, ok := s.engine.UserInfo(); ok {
		p.User = u.DisplayName()
	}
	return p
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, p); err != nil {
		s.logger.ErrorContext(r.Context(), "render page", "template", name, "error", err)
	}
}

// fail renders err. An expired session goes back through login instead.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, goConsole.ErrAuthenticationExpired) {
		http.Redirect(w, r, s.engine.LoginLocation(r.URL.RequestURI(), err), http.StatusFound)
		return
	}
	status := http.StatusBadGateway
	if errors.Is(err, goConsole.ErrForbidden) {
		status = http.StatusForbidden
	}
	p := s.newPage(r, "Error")
	p.Error = goConsole.Describe(err)
	s.render(w, r, status, "error", p)
}
