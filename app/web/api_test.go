package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ando2022/job-app/app/jobs"
)

func TestHandleAPIProfessions(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/api/v1/professions", http.NoBody)
	rec := httptest.NewRecorder()
	srv.handleAPIProfessions(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp APIProfessionsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"Engineer", "Nurse"}, resp.Professions)
}

func TestHandleAPIJobs(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("all by default", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/jobs", http.NoBody)
		rec := httptest.NewRecorder()
		srv.handleAPIJobs(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp APIJobsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "All", resp.Profession)
		assert.Equal(t, 5, resp.Total)
		require.Len(t, resp.Jobs, 5)
		assert.Equal(t, APIJob{Profession: "Nurse", Title: "Pflegefachperson HF", Link: "https://jobs.example.com/1",
			Date: "2025-05-01", Location: "Zurich", Workload: "80-100%", EmpType: "Permanent", Company: "Spital Zurich",
			Latitude: 47.37, Longitude: 8.54}, resp.Jobs[0])
	})

	t.Run("filtered", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/jobs?profession=Engineer", http.NoBody)
		rec := httptest.NewRecorder()
		srv.handleAPIJobs(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp APIJobsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Engineer", resp.Profession)
		assert.Equal(t, 2, resp.Total)
		for _, j := range resp.Jobs {
			assert.Equal(t, "Engineer", j.Profession)
		}
	})

	t.Run("json field names", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/jobs?profession=Engineer", http.NoBody)
		rec := httptest.NewRecorder()
		srv.handleAPIJobs(rec, req)

		var raw map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
		list, ok := raw["jobs"].([]any)
		require.True(t, ok)
		first, ok := list[0].(map[string]any)
		require.True(t, ok)
		for _, key := range []string{"profession", "title", "link", "date", "location", "workload", "emp_type", "company",
			"latitude", "longitude"} {
			assert.Contains(t, first, key)
		}
	})

	t.Run("unknown profession", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/jobs?profession=Chef", http.NoBody)
		rec := httptest.NewRecorder()
		srv.handleAPIJobs(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"unknown profession \"Chef\""}`, rec.Body.String())
	})
}

func TestHandleAPICities(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name     string
		query    string
		status   int
		expected []jobs.CityCount
	}{
		{"all", "", http.StatusOK,
			[]jobs.CityCount{{Location: "Zurich", Count: 2}, {Location: "Geneva", Count: 2}, {Location: "Bern", Count: 1}}},
		{"top 1", "?n=1", http.StatusOK, []jobs.CityCount{{Location: "Zurich", Count: 2}}},
		{"nurse", "?profession=Nurse", http.StatusOK,
			[]jobs.CityCount{{Location: "Zurich", Count: 2}, {Location: "Geneva", Count: 1}}},
		{"n larger than cities", "?n=100&profession=Engineer", http.StatusOK,
			[]jobs.CityCount{{Location: "Geneva", Count: 1}, {Location: "Bern", Count: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/cities"+tt.query, http.NoBody)
			rec := httptest.NewRecorder()
			srv.handleAPICities(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			var resp APICitiesResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.expected, resp.Cities)
		})
	}

	t.Run("job_count field", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/cities?n=1", http.NoBody)
		rec := httptest.NewRecorder()
		srv.handleAPICities(rec, req)
		assert.JSONEq(t, `{"profession":"All","cities":[{"location":"Zurich","job_count":2}]}`, rec.Body.String())
	})

	for _, n := range []string{"0", "-3", "ten"} {
		t.Run("invalid n "+n, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/cities?n="+n, http.NoBody)
			rec := httptest.NewRecorder()
			srv.handleAPICities(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid n")
		})
	}
}

func TestHandleAPICenter(t *testing.T) {
	t.Run("mean position", func(t *testing.T) {
		tbl := jobs.NewTable("jobs.csv", []jobs.Record{
			{Profession: "Nurse", Location: "Zurich", Latitude: 47.0, Longitude: 8.0},
			{Profession: "Nurse", Location: "Geneva", Latitude: 46.0, Longitude: 6.0},
		})
		srv := newTestServer(t, staticTables(tbl))
		req := httptest.NewRequest("GET", "/api/v1/center?profession=Nurse", http.NoBody)
		rec := httptest.NewRecorder()
		srv.handleAPICenter(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"latitude":46.5,"longitude":7}`, rec.Body.String())
	})

	t.Run("empty table", func(t *testing.T) {
		srv := newTestServer(t, staticTables(jobs.NewTable("empty.csv", nil)))
		req := httptest.NewRequest("GET", "/api/v1/center", http.NoBody)
		rec := httptest.NewRecorder()
		srv.handleAPICenter(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"No data to display"}`, rec.Body.String())
	})

	t.Run("unknown profession", func(t *testing.T) {
		srv := newTestServer(t, nil)
		req := httptest.NewRequest("GET", "/api/v1/center?profession=Chef", http.NoBody)
		rec := httptest.NewRecorder()
		srv.handleAPICenter(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleAPIPoints(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/api/v1/points?profession=Engineer", http.NoBody)
	rec := httptest.NewRecorder()
	srv.handleAPIPoints(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp APIPointsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Engineer", resp.Profession)
	assert.Equal(t, []APIPoint{
		{Latitude: 46.23, Longitude: 6.05, Profession: "Engineer", Title: "Software Engineer", Location: "Geneva"},
		{Latitude: 46.95, Longitude: 7.44, Profession: "Engineer", Title: "Civil <Engineer>", Location: "Bern"},
	}, resp.Points)
}

func TestHandleAPISettingsSchema(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/api/v1/settings/schema", http.NoBody)
	rec := httptest.NewRecorder()
	srv.handleAPISettingsSchema(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var schema map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&schema))
	assert.Equal(t, "Job App Settings Schema", schema["title"])
}

func TestServer_writeAPIError(t *testing.T) {
	srv := &Server{}

	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"invalid selection", &jobs.InvalidSelectionError{Selection: "X"}, http.StatusBadRequest, `unknown profession "X"`},
		{"wrapped invalid selection", errors.Join(errors.New("ctx"), &jobs.InvalidSelectionError{Selection: "Y"}),
			http.StatusBadRequest, `unknown profession "Y"`},
		{"empty table", jobs.ErrEmptyTable, http.StatusNotFound, "No data to display"},
		{"data access", &jobs.DataAccessError{Path: "a.csv", Err: os.ErrNotExist}, http.StatusInternalServerError,
			"data source unavailable"},
		{"schema", &jobs.SchemaError{Columns: []string{"longitude"}}, http.StatusInternalServerError, "data source unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.writeAPIError(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			var resp map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.msg, resp["error"])
		})
	}
}
