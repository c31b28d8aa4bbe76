package web

import (
	"net/http"
	"net/url"

	log "github.com/go-pkgz/lgr"

	"github.com/ando2022/job-app/app/jobs"
	"github.com/ando2022/job-app/app/web/enums"
)

// handleDashboard renders the main dashboard for the profession from query, "All" by default
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := s.buildView(r.URL.Query().Get("profession"))
	data := s.newTemplateData(r)
	data.View = view

	if err != nil {
		log.Printf("[ERROR] failed to build dashboard: %v", err)
		s.renderStatus(w, http.StatusInternalServerError, "base.html", "base", data)
		return
	}
	s.render(w, "base.html", "base", data)
}

// handleViewPartial returns map, chart and table for the selected profession for HTMX swap
func (s *Server) handleViewPartial(w http.ResponseWriter, r *http.Request) {
	selection := r.FormValue("profession")
	view, err := s.buildView(selection)
	data := s.newTemplateData(r)
	data.View = view

	if err != nil {
		log.Printf("[ERROR] failed to build view for %q: %v", selection, err)
		s.renderStatus(w, http.StatusInternalServerError, "partials/view.html", "view", data)
		return
	}

	w.Header().Set("HX-Push-Url", s.dashboardURL(view.Selected))
	s.render(w, "partials/view.html", "view", data)
}

// handleThemeToggle toggles between light and dark theme
func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	nextTheme := enums.ThemeDark
	if s.getTheme(r) == enums.ThemeDark {
		nextTheme = enums.ThemeLight
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "theme",
		Value:    nextTheme.String(),
		Path:     s.cookiePath(),
		MaxAge:   365 * 24 * 60 * 60, // 1 year
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// trigger full page refresh for theme change
	w.Header().Set("HX-Refresh", "true")
	w.WriteHeader(http.StatusOK)
}

// dashboardURL returns the dashboard location for the selection, "All" maps to the plain root
func (s *Server) dashboardURL(selection string) string {
	if selection == "" || selection == jobs.AllProfessions {
		return s.url("/")
	}
	return s.url("/") + "?profession=" + url.QueryEscape(selection)
}
