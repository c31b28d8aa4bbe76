package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ando2022/job-app/app/jobs"
)

const csvHeader = "profession,title,link,date,location,workload,emp_type,company,latitude,longitude\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCSV(t *testing.T) {
	tbl, err := LoadCSV("testdata/jobs.csv")
	require.NoError(t, err)
	require.Equal(t, 4, tbl.Len(), "rows with missing or NaN coordinates dropped")
	assert.Equal(t, "testdata/jobs.csv", tbl.Source())

	recs := tbl.Records()
	assert.Equal(t, jobs.Record{Profession: "Engineer", Title: "Backend Developer", Link: "https://jobs.example.ch/1",
		Date: "2025-05-02", Location: "Zurich", Workload: "80-100%", EmpType: "Permanent", Company: "Acme AG",
		Latitude: 47.3769, Longitude: 8.5417}, recs[0])
	assert.Equal(t, "Primary Teacher", recs[3].Title)
	for _, r := range recs {
		assert.NotZero(t, r.Latitude)
		assert.NotZero(t, r.Longitude)
	}
}

func TestLoadCSV_HeaderVariants(t *testing.T) {
	tbl, err := LoadCSV("testdata/bom.csv")
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	rec := tbl.Records()[0]
	assert.Equal(t, "Chef", rec.Profession, "bom stripped from first column")
	assert.Equal(t, "Cook, line", rec.Title, "header names trimmed, quoted commas kept")
	assert.InDelta(t, 47.5596, rec.Latitude, 1e-9, "column order doesn't matter")
	assert.InDelta(t, 7.5886, rec.Longitude, 1e-9)
}

func TestLoadCSV_DropsInvalidCoordinates(t *testing.T) {
	content := csvHeader +
		"A,t1,l,d,Zurich,w,e,c,47.1,8.1\n" +
		"A,t2,l,d,Zurich,w,e,c,,8.1\n" +
		"A,t3,l,d,Zurich,w,e,c,47.1,\n" +
		"A,t4,l,d,Zurich,w,e,c,null,8.1\n" +
		"A,t5,l,d,Zurich,w,e,c,47.1,abc\n" +
		"A,t6,l,d,Zurich,w,e,c,Inf,8.1\n" +
		"A,t7,l,d,Zurich,w,e,c,nan,8.1\n" +
		"A,t8,l,d,Zurich,w,e,c, 46.5 , 7.5 \n"
	tbl, err := LoadCSV(writeFile(t, "jobs.csv", content))
	require.NoError(t, err)
	recs := tbl.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "t1", recs[0].Title)
	assert.Equal(t, "t8", recs[1].Title)
	assert.InDelta(t, 46.5, recs[1].Latitude, 1e-9)
}

func TestLoadCSV_NullTextCells(t *testing.T) {
	tbl, err := LoadCSV(writeFile(t, "jobs.csv", csvHeader+"NaN,t1,l,d,Zurich,None,e,c,47.1,8.1\n"))
	require.NoError(t, err)
	rec := tbl.Records()[0]
	assert.Empty(t, rec.Profession)
	assert.Empty(t, rec.Workload)
	assert.Equal(t, "Zurich", rec.Location)
}

func TestLoadCSV_NullLocationsNotCounted(t *testing.T) {
	content := csvHeader +
		"A,t1,l,d,Zurich,w,e,c,47.1,8.1\n" +
		"A,t2,l,d,,w,e,c,47.1,8.1\n" +
		"A,t3,l,d,NaN,w,e,c,47.1,8.1\n" +
		"A,t4,l,d,None,w,e,c,47.1,8.1\n"
	tbl, err := LoadCSV(writeFile(t, "jobs.csv", content))
	require.NoError(t, err)
	require.Equal(t, 4, tbl.Len(), "rows without location kept")
	assert.Equal(t, []jobs.CityCount{{Location: "Zurich", Count: 1}}, jobs.TopCities(tbl, 20))
}

func TestLoadCSV_Errors(t *testing.T) {
	tbl := []struct {
		name       string
		content    string
		missing    bool
		wantSchema bool // direct schema error, otherwise data access error
		columns    []string
	}{
		{name: "missing file", missing: true},
		{name: "empty file", content: ""},
		{name: "ragged rows", content: csvHeader + "A,t,l,d,Zurich,w,e,c,47.1\n"},
		{name: "bad quotes", content: csvHeader + "A,\"t,l,d,Zurich,w,e,c,47.1,8.1\n"},
		{name: "no latitude", content: "profession,title,link,date,location,workload,emp_type,company,longitude\n",
			wantSchema: true, columns: []string{"latitude"}},
		{name: "no coordinates", content: "profession,title\n", wantSchema: true, columns: []string{"latitude", "longitude"}},
		{name: "no company", content: "profession,title,link,date,location,workload,emp_type,latitude,longitude\n",
			columns: []string{"company"}},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "no-such.csv")
			if !tt.missing {
				path = writeFile(t, "jobs.csv", tt.content)
			}

			res, err := LoadCSV(path)
			require.Error(t, err)
			assert.Nil(t, res)

			var dataErr *jobs.DataAccessError
			var schemaErr *jobs.SchemaError
			if tt.wantSchema {
				require.True(t, errors.As(err, &schemaErr), "%v", err)
				assert.False(t, errors.As(err, &dataErr), "%v", err)
				assert.Equal(t, tt.columns, schemaErr.Columns)
				return
			}

			require.True(t, errors.As(err, &dataErr), "%v", err)
			assert.Equal(t, path, dataErr.Path)
			if tt.missing {
				assert.True(t, errors.Is(err, os.ErrNotExist))
			}
			if tt.columns != nil {
				require.True(t, errors.As(err, &schemaErr))
				assert.Equal(t, tt.columns, schemaErr.Columns)
			}
		})
	}
}

func TestParseCoordinate(t *testing.T) {
	tbl := []struct {
		inp  string
		want float64
		ok   bool
	}{
		{"47.37", 47.37, true},
		{" -8.5 ", -8.5, true},
		{"0", 0, true},
		{"", 0, false},
		{"NaN", 0, false},
		{"<NA>", 0, false},
		{"+Inf", 0, false},
		{"1e400", 0, false},
		{"47,37", 0, false},
	}

	for _, tt := range tbl {
		v, ok := parseCoordinate(tt.inp)
		assert.Equal(t, tt.ok, ok, tt.inp)
		assert.InDelta(t, tt.want, v, 1e-9, tt.inp)
	}
}
