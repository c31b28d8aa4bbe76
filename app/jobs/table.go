// Package jobs defines the job postings table and the pure operations the dashboard runs on it:
// profession filter, city aggregation and map view centre. Tables are immutable, every operation
// returns a new value and never changes its input.
package jobs

import (
	"fmt"
	"strconv"
)

// column names of the source table
const (
	ColProfession = "profession"
	ColTitle      = "title"
	ColLink       = "link"
	ColDate       = "date"
	ColLocation   = "location"
	ColWorkload   = "workload"
	ColEmpType    = "emp_type"
	ColCompany    = "company"
	ColLatitude   = "latitude"
	ColLongitude  = "longitude"
)

// RequiredColumns lists the descriptive columns every source must provide
var RequiredColumns = []string{ColProfession, ColTitle, ColLink, ColDate, ColLocation, ColWorkload, ColEmpType, ColCompany}

// CoordinateColumns lists the geographic columns every source must provide
var CoordinateColumns = []string{ColLatitude, ColLongitude}

// DetailColumns is the default projection for the detail table
var DetailColumns = []string{ColProfession, ColTitle, ColLink, ColDate, ColLocation, ColWorkload, ColEmpType, ColCompany}

// Record is a single job posting
type Record struct {
	Profession string
	Title      string
	Link       string
	Date       string
	Location   string
	Workload   string
	EmpType    string
	Company    string
	Latitude   float64
	Longitude  float64
}

// Field returns the value of a column as a string
func (r Record) Field(col string) (string, error) {
	switch col {
	case ColProfession:
		return r.Profession, nil
	case ColTitle:
		return r.Title, nil
	case ColLink:
		return r.Link, nil
	case ColDate:
		return r.Date, nil
	case ColLocation:
		return r.Location, nil
	case ColWorkload:
		return r.Workload, nil
	case ColEmpType:
		return r.EmpType, nil
	case ColCompany:
		return r.Company, nil
	case ColLatitude:
		return strconv.FormatFloat(r.Latitude, 'f', -1, 64), nil
	case ColLongitude:
		return strconv.FormatFloat(r.Longitude, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("unknown column %q", col)
}

// Table is an ordered, read-only collection of records
type Table struct {
	source  string
	records []Record
}

// NewTable makes a table from records. The slice is copied, later changes to it don't affect the table.
func NewTable(source string, records []Record) *Table {
	recs := make([]Record, len(records))
	copy(recs, records)
	return &Table{source: source, records: recs}
}

// Source returns the location the table was loaded from
func (t *Table) Source() string {
	return t.source
}

// Len returns the number of records
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns a copy of all records in table order
func (t *Table) Records() []Record {
	if t == nil {
		return []Record{}
	}
	res := make([]Record, len(t.records))
	copy(res, t.records)
	return res
}

// Project returns table rows reduced to the given columns, in table order
func (t *Table) Project(columns []string) ([][]string, error) {
	res := make([][]string, 0, t.Len())
	for _, rec := range t.Records() {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			v, err := rec.Field(col)
			if err != nil {
				return nil, fmt.Errorf("project table: %w", err)
			}
			row = append(row, v)
		}
		res = append(res, row)
	}
	return res, nil
}

// filter returns a new table with records matching fn
func (t *Table) filter(fn func(r Record) bool) *Table {
	res := &Table{source: t.source, records: make([]Record, 0, len(t.records))}
	for _, r := range t.records {
		if fn(r) {
			res.records = append(res.records, r)
		}
	}
	return res
}
