// Package source loads job tables from CSV files or SQLite databases and memoizes them by path.
// Rows without usable coordinates are dropped on load, so every table returned has valid
// latitude and longitude for each record.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	log "github.com/go-pkgz/lgr"

	"github.com/ando2022/job-app/app/jobs"
)

// nullTokens are cell values treated as missing, same set pandas uses by default
var nullTokens = map[string]bool{
	"": true, "nan": true, "NaN": true, "-NaN": true, "-nan": true, "NA": true, "N/A": true, "n/a": true,
	"NULL": true, "null": true, "None": true, "<NA>": true, "#N/A": true, "#NA": true,
}

// LoadCSV reads the csv file at path and returns the table of records with valid coordinates
func LoadCSV(path string) (*jobs.Table, error) {
	fh, err := os.Open(path) // #nosec G304 - path comes from trusted config
	if err != nil {
		return nil, &jobs.DataAccessError{Path: path, Err: err}
	}
	defer func() {
		if closeErr := fh.Close(); closeErr != nil {
			log.Printf("[WARN] failed to close %s: %v", path, closeErr)
		}
	}()

	records, dropped, err := readCSV(fh)
	if err != nil {
		var schemaErr *jobs.SchemaError
		if errors.As(err, &schemaErr) && isCoordinateError(schemaErr) {
			return nil, schemaErr
		}
		return nil, &jobs.DataAccessError{Path: path, Err: err}
	}

	log.Printf("[DEBUG] loaded %d records from %s, dropped %d without coordinates", len(records), path, dropped)
	return jobs.NewTable(path, records), nil
}

// readCSV parses csv with header, returns records with valid coordinates and the number of dropped rows
func readCSV(r io.Reader) (records []jobs.Record, dropped int, err error) {
	rdr := csv.NewReader(r)
	rdr.FieldsPerRecord = 0 // all rows must have the same number of fields as the header

	header, err := rdr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, errors.New("empty file, header expected")
		}
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}

	cols, err := columnIndex(header)
	if err != nil {
		return nil, 0, err
	}

	for {
		row, err := rdr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read row: %w", err)
		}

		rec, ok := makeRecord(func(col string) string { return row[cols[col]] })
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	return records, dropped, nil
}

// columnIndex maps column names to their positions and checks all required columns present
func columnIndex(header []string) (map[string]int, error) {
	res := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff") // utf-8 bom
		}
		name = strings.TrimSpace(name)
		if _, ok := res[name]; !ok {
			res[name] = i
		}
	}
	if err := checkColumns(func(col string) bool { _, ok := res[col]; return ok }); err != nil {
		return nil, err
	}
	return res, nil
}

// checkColumns verifies coordinate columns first, then descriptive columns
func checkColumns(has func(col string) bool) error {
	missing := []string{}
	for _, col := range jobs.CoordinateColumns {
		if !has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &jobs.SchemaError{Columns: missing}
	}

	for _, col := range jobs.RequiredColumns {
		if !has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &jobs.SchemaError{Columns: missing}
	}
	return nil
}

func isCoordinateError(e *jobs.SchemaError) bool {
	for _, col := range e.Columns {
		if col == jobs.ColLatitude || col == jobs.ColLongitude {
			return true
		}
	}
	return false
}

// makeRecord builds a record from a column getter, returns false if coordinates missing or invalid
func makeRecord(get func(col string) string) (jobs.Record, bool) {
	lat, ok := parseCoordinate(get(jobs.ColLatitude))
	if !ok {
		return jobs.Record{}, false
	}
	lon, ok := parseCoordinate(get(jobs.ColLongitude))
	if !ok {
		return jobs.Record{}, false
	}

	return jobs.Record{
		Profession: cell(get(jobs.ColProfession)),
		Title:      cell(get(jobs.ColTitle)),
		Link:       cell(get(jobs.ColLink)),
		Date:       cell(get(jobs.ColDate)),
		Location:   cell(get(jobs.ColLocation)),
		Workload:   cell(get(jobs.ColWorkload)),
		EmpType:    cell(get(jobs.ColEmpType)),
		Company:    cell(get(jobs.ColCompany)),
		Latitude:   lat,
		Longitude:  lon,
	}, true
}

// cell normalizes a text value, null tokens become empty strings
func cell(v string) string {
	v = strings.TrimSpace(v)
	if nullTokens[v] {
		return ""
	}
	return v
}

// parseCoordinate parses a latitude or longitude, null tokens, NaN and infinities are rejected
func parseCoordinate(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if nullTokens[v] {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
