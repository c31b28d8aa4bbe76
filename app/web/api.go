package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	log "github.com/go-pkgz/lgr"

	"github.com/ando2022/job-app/app/jobs"
	"github.com/ando2022/job-app/app/settings"
)

// APIProfessionsResponse is the JSON response for /api/v1/professions
type APIProfessionsResponse struct {
	Professions []string `json:"professions"`
}

// APIJob represents a job posting in JSON API response
type APIJob struct {
	Profession string  `json:"profession"`
	Title      string  `json:"title"`
	Link       string  `json:"link"`
	Date       string  `json:"date"`
	Location   string  `json:"location"`
	Workload   string  `json:"workload"`
	EmpType    string  `json:"emp_type"`
	Company    string  `json:"company"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// APIJobsResponse is the JSON response for /api/v1/jobs
type APIJobsResponse struct {
	Profession string   `json:"profession"`
	Total      int      `json:"total"`
	Jobs       []APIJob `json:"jobs"`
}

// APICitiesResponse is the JSON response for /api/v1/cities
type APICitiesResponse struct {
	Profession string           `json:"profession"`
	Cities     []jobs.CityCount `json:"cities"`
}

// APIPoint represents a map marker in JSON API response
type APIPoint struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Profession string  `json:"profession"`
	Title      string  `json:"title"`
	Location   string  `json:"location"`
}

// APIPointsResponse is the JSON response for /api/v1/points
type APIPointsResponse struct {
	Profession string     `json:"profession"`
	Points     []APIPoint `json:"points"`
}

// toAPIJob converts jobs.Record to APIJob
func toAPIJob(r jobs.Record) APIJob {
	return APIJob{
		Profession: r.Profession,
		Title:      r.Title,
		Link:       r.Link,
		Date:       r.Date,
		Location:   r.Location,
		Workload:   r.Workload,
		EmpType:    r.EmpType,
		Company:    r.Company,
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
	}
}

// handleAPIProfessions returns distinct professions of the source
func (s *Server) handleAPIProfessions(w http.ResponseWriter, _ *http.Request) {
	tbl, err := s.tables.Get(s.sourcePath)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, APIProfessionsResponse{Professions: jobs.Professions(tbl)})
}

// handleAPIJobs returns postings of the selected profession
func (s *Server) handleAPIJobs(w http.ResponseWriter, r *http.Request) {
	tbl, selection, ok := s.apiTable(w, r)
	if !ok {
		return
	}

	records := tbl.Records()
	resp := APIJobsResponse{Profession: selection, Total: len(records), Jobs: make([]APIJob, 0, len(records))}
	for _, rec := range records {
		resp.Jobs = append(resp.Jobs, toAPIJob(rec))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleAPICities returns top cities by posting count, n from query or 20
func (s *Server) handleAPICities(w http.ResponseWriter, r *http.Request) {
	n := jobs.DefaultTopCities
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "invalid n, positive integer expected")
			return
		}
		n = parsed
	}

	tbl, selection, ok := s.apiTable(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, APICitiesResponse{Profession: selection, Cities: jobs.TopCities(tbl, n)})
}

// handleAPICenter returns the mean position of the selected postings
func (s *Server) handleAPICenter(w http.ResponseWriter, r *http.Request) {
	tbl, _, ok := s.apiTable(w, r)
	if !ok {
		return
	}
	center, err := jobs.ViewCenter(tbl)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, center)
}

// handleAPIPoints returns map markers of the selected postings
func (s *Server) handleAPIPoints(w http.ResponseWriter, r *http.Request) {
	tbl, selection, ok := s.apiTable(w, r)
	if !ok {
		return
	}

	records := tbl.Records()
	resp := APIPointsResponse{Profession: selection, Points: make([]APIPoint, 0, len(records))}
	for _, rec := range records {
		resp.Points = append(resp.Points, APIPoint{
			Latitude:   rec.Latitude,
			Longitude:  rec.Longitude,
			Profession: rec.Profession,
			Title:      rec.Title,
			Location:   rec.Location,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleAPISettingsSchema returns JSON schema of the settings file
func (s *Server) handleAPISettingsSchema(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, settings.GenerateSchema())
}

// apiTable loads the table filtered by the profession query parameter. On failure it writes
// the error response and returns false.
func (s *Server) apiTable(w http.ResponseWriter, r *http.Request) (*jobs.Table, string, bool) {
	selection := r.URL.Query().Get("profession")
	if selection == "" {
		selection = jobs.AllProfessions
	}

	tbl, err := s.tables.Get(s.sourcePath)
	if err != nil {
		s.writeAPIError(w, err)
		return nil, selection, false
	}
	filtered, err := jobs.FilterByProfession(tbl, selection)
	if err != nil {
		s.writeAPIError(w, err)
		return nil, selection, false
	}
	return filtered, selection, true
}

// writeAPIError maps domain errors to status codes
func (s *Server) writeAPIError(w http.ResponseWriter, err error) {
	var selErr *jobs.InvalidSelectionError
	switch {
	case errors.As(err, &selErr):
		s.writeJSONError(w, http.StatusBadRequest, selErr.Error())
	case errors.Is(err, jobs.ErrEmptyTable):
		s.writeJSONError(w, http.StatusNotFound, msgNoData)
	default:
		log.Printf("[ERROR] api request failed: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, msgUnavailable)
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[WARN] failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes a JSON error response
func (s *Server) writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[WARN] failed to encode JSON error response: %v", err)
	}
}
