// Package web implements the dashboard server: job map, city chart and detail table for the
// selected profession, plus a JSON API over the same data
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/ando2022/job-app/app/jobs"
	"github.com/ando2022/job-app/app/settings"
	"github.com/ando2022/job-app/app/web/enums"
)

//go:embed templates/*.html templates/partials/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Server represents the web server
type Server struct {
	tables         TableProvider
	sourcePath     string
	settings       settings.Settings
	templates      map[string]*template.Template
	baseURL        string // base URL path for reverse proxy (e.g., /jobs), empty for root
	hostname       string // hostname to display in UI
	version        string
	apiLimit       float64                     // max requests per second per client on JSON API, 0 = unlimited
	csrfProtection *http.CrossOriginProtection // csrf protection for POST endpoints
}

//go:generate moq -out mocks/table_provider.go -pkg mocks -skip-ensure -fmt goimports . TableProvider

// TableProvider returns the job table loaded from a source path. Implementations are expected
// to memoize, the server asks for the table on every request.
type TableProvider interface {
	Get(path string) (*jobs.Table, error)
}

// Config holds server configuration
type Config struct {
	SourcePath string        // path of the jobs csv or sqlite file
	Tables     TableProvider // loads and caches tables
	Settings   settings.Settings
	BaseURL    string // base URL path for reverse proxy (e.g., /jobs), empty for root
	Hostname   string // hostname to display in UI
	Version    string
	APILimit   float64 // max requests per second per client on JSON API, 0 = unlimited
}

// TemplateData holds data for templates
type TemplateData struct {
	View        View
	Settings    settings.Settings
	CurrentYear int
	BaseURL     string // base URL path for reverse proxy (e.g., /jobs)
	Hostname    string // hostname to display in UI
	Theme       enums.Theme
	Version     string // application version (short form)
	FullVersion string // full application version
}

// New creates a new web server
func New(cfg Config) (*Server, error) {
	if cfg.Tables == nil {
		return nil, errors.New("web server initialization failed: table provider is required")
	}
	if cfg.SourcePath == "" {
		return nil, errors.New("web server initialization failed: source path is required")
	}
	if err := cfg.Settings.Verify(); err != nil {
		return nil, fmt.Errorf("web server initialization failed: %w", err)
	}

	s := &Server{
		tables:         cfg.Tables,
		sourcePath:     cfg.SourcePath,
		settings:       cfg.Settings,
		baseURL:        cfg.BaseURL,
		hostname:       cfg.Hostname,
		version:        cfg.Version,
		apiLimit:       cfg.APILimit,
		csrfProtection: http.NewCrossOriginProtection(),
	}

	templates, err := s.parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("web server initialization failed: failed to parse HTML templates: %w", err)
	}
	s.templates = templates

	return s, nil
}

// Run starts the web server and blocks until ctx canceled
func (s *Server) Run(ctx context.Context, address string) error {
	server := &http.Server{
		Addr:              address,
		Handler:           s.handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] failed to shutdown server: %v", err)
		}
	}()

	log.Printf("[INFO] starting web server on %s", address)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server failed: %w", err)
	}
	return nil
}

// newTemplateData creates a TemplateData with common fields populated from request
func (s *Server) newTemplateData(r *http.Request) TemplateData {
	return TemplateData{
		Settings:    s.settings,
		CurrentYear: time.Now().Year(),
		BaseURL:     s.baseURL,
		Hostname:    s.hostname,
		Theme:       s.getTheme(r),
		Version:     shortVersion(s.version),
		FullVersion: s.version,
	}
}

// handler returns the http.Handler with base URL wrapping applied
func (s *Server) handler() http.Handler {
	routes := s.routes()
	if s.baseURL == "" {
		return routes
	}

	mux := http.NewServeMux()
	mux.HandleFunc(s.baseURL, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.baseURL+"/", http.StatusMovedPermanently)
	})
	mux.Handle(s.baseURL+"/", http.StripPrefix(s.baseURL, routes))
	return mux
}

// routes returns the http.Handler with all routes configured
func (s *Server) routes() http.Handler {
	router := routegroup.New(http.NewServeMux())

	router.Use(
		rest.RealIP,
		rest.Recoverer(log.Default()),
		rest.Throttle(1000),
		rest.AppInfo("job-app", "ando2022", s.version),
		rest.Ping,
		rest.Trace,
		rest.SizeLimit(64*1024), // 64KB max request size
		logger.New(logger.Log(log.Default()), logger.Prefix("[DEBUG]")).Handler,
	)

	router.HandleFunc("GET /{$}", s.handleDashboard)

	// HTMX endpoints
	router.Mount("/api").Route(func(api *routegroup.Bundle) {
		api.Use(rest.NoCache)
		api.Use(s.csrfProtection.Handler)
		api.HandleFunc("GET /view", s.handleViewPartial)
		api.HandleFunc("POST /theme", s.handleThemeToggle)
	})

	// JSON API for programmatic access
	router.Mount("/api/v1").Route(func(api *routegroup.Bundle) {
		api.Use(rest.NoCache)
		if s.apiLimit > 0 {
			api.Use(tollbooth.HTTPMiddleware(s.apiLimiter()))
		}
		api.HandleFunc("GET /professions", s.handleAPIProfessions)
		api.HandleFunc("GET /jobs", s.handleAPIJobs)
		api.HandleFunc("GET /cities", s.handleAPICities)
		api.HandleFunc("GET /center", s.handleAPICenter)
		api.HandleFunc("GET /points", s.handleAPIPoints)
		api.HandleFunc("GET /settings/schema", s.handleAPISettingsSchema)
	})

	fsys, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Printf("[ERROR] failed to create static file system: %v", err)
		router.Handle("GET /static/", http.FileServer(http.FS(staticFS)))
	} else {
		router.HandleFiles("/static/", http.FS(fsys))
	}

	return router
}

// apiLimiter makes per-client rate limiter for the JSON API, client identified by RemoteAddr
// which rest.RealIP already set to the real client address
func (s *Server) apiLimiter() *limiter.Limiter {
	lmt := tollbooth.NewLimiter(s.apiLimit, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetIPLookup(limiter.IPLookup{Name: "RemoteAddr"})
	lmt.SetMessage(`{"error":"too many requests"}`)
	lmt.SetMessageContentType("application/json")
	return lmt
}

// render renders a template with 200 status
func (s *Server) render(w http.ResponseWriter, page, tmplName string, data any) {
	s.renderStatus(w, http.StatusOK, page, tmplName, data)
}

// renderStatus renders a template with the given status
func (s *Server) renderStatus(w http.ResponseWriter, status int, page, tmplName string, data any) {
	tmpl, ok := s.templates[page]
	if !ok {
		log.Printf("[WARN] template %s not found", page)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, tmplName, data); err != nil {
		log.Printf("[WARN] failed to execute template: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[WARN] failed to write response: %v", err)
	}
}

// parseTemplates parses all templates
func (s *Server) parseTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)

	funcMap := template.FuncMap{
		"url":     s.url,
		"percent": percent,
		"rgba":    rgba,
	}

	// base template with all partials
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templatesFS,
		"templates/base.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base template: %w", err)
	}
	templates["base.html"] = base

	// partials separately for HTMX requests
	partials, err := template.New("view.html").Funcs(funcMap).ParseFS(templatesFS, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse partials: %w", err)
	}
	templates["partials/view.html"] = partials

	return templates, nil
}

func (s *Server) getTheme(r *http.Request) enums.Theme {
	cookie, err := r.Cookie("theme")
	if err != nil {
		return enums.ThemeLight
	}
	theme, err := enums.ParseTheme(cookie.Value)
	if err != nil {
		log.Printf("[WARN] invalid theme %q: %v", cookie.Value, err)
		return enums.ThemeLight
	}
	return theme
}

// template helper functions

// percent returns share of v in max as percent, 0 for empty max
func percent(v, maxVal int) float64 {
	if maxVal <= 0 {
		return 0
	}
	return float64(v) * 100 / float64(maxVal)
}

// rgba formats [r g b a] color with alpha in 0-255 range as css rgba()
func rgba(c []int) template.CSS {
	if len(c) != 4 {
		return "rgba(0, 0, 0, 1)"
	}
	return template.CSS(fmt.Sprintf("rgba(%d, %d, %d, %.2f)", c[0], c[1], c[2], float64(c[3])/255)) // #nosec G203 - ints only
}

// url prepends the base URL to a path for reverse proxy support
func (s *Server) url(path string) string {
	return s.baseURL + path
}

// cookiePath returns the cookie path with base URL support
func (s *Server) cookiePath() string {
	if s.baseURL == "" {
		return "/"
	}
	return s.baseURL + "/"
}

// shortVersion extracts a short version string from full version
// for version like "v1.7.0-abc1234-20241225", returns "v1.7.0"
func shortVersion(fullVer string) string {
	if fullVer == "" || fullVer == "unknown" {
		return fullVer
	}
	if idx := strings.Index(fullVer, "-"); idx > 0 {
		return fullVer[:idx]
	}
	return fullVer
}
