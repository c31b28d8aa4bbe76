package source

import (
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"strings"

	log "github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/ando2022/job-app/app/jobs"
)

// DefaultTable is the table name used for sqlite sources
const DefaultTable = "jobs"

var reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// sqliteRow is a row of the jobs table, all values read as nullable text
type sqliteRow struct {
	Profession sql.NullString `db:"profession"`
	Title      sql.NullString `db:"title"`
	Link       sql.NullString `db:"link"`
	Date       sql.NullString `db:"date"`
	Location   sql.NullString `db:"location"`
	Workload   sql.NullString `db:"workload"`
	EmpType    sql.NullString `db:"emp_type"`
	Company    sql.NullString `db:"company"`
	Latitude   sql.NullString `db:"latitude"`
	Longitude  sql.NullString `db:"longitude"`
}

func (r sqliteRow) get(col string) string {
	var v sql.NullString
	switch col {
	case jobs.ColProfession:
		v = r.Profession
	case jobs.ColTitle:
		v = r.Title
	case jobs.ColLink:
		v = r.Link
	case jobs.ColDate:
		v = r.Date
	case jobs.ColLocation:
		v = r.Location
	case jobs.ColWorkload:
		v = r.Workload
	case jobs.ColEmpType:
		v = r.EmpType
	case jobs.ColCompany:
		v = r.Company
	case jobs.ColLatitude:
		v = r.Latitude
	case jobs.ColLongitude:
		v = r.Longitude
	}
	if !v.Valid {
		return ""
	}
	return v.String
}

// LoadSQLite reads records from the table of sqlite database at path. The database opened read-only
// and never created, missing file reported as DataAccessError.
func LoadSQLite(path, table string) (*jobs.Table, error) {
	if !reIdentifier.MatchString(table) {
		return nil, &jobs.DataAccessError{Path: path, Err: fmt.Errorf("invalid table name %q", table)}
	}

	if _, err := os.Stat(path); err != nil {
		return nil, &jobs.DataAccessError{Path: path, Err: err}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, &jobs.DataAccessError{Path: path, Err: fmt.Errorf("failed to open database: %w", err)}
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Printf("[WARN] failed to close database %s: %v", path, closeErr)
		}
	}()
	db.SetMaxOpenConns(1) // query_only pragma is per connection

	if _, err = db.Exec("PRAGMA query_only = ON"); err != nil {
		return nil, &jobs.DataAccessError{Path: path, Err: fmt.Errorf("failed to set read-only mode: %w", err)}
	}

	return readTable(db, path, table)
}

// readTable checks columns of the table and reads its records
func readTable(db *sqlx.DB, path, table string) (*jobs.Table, error) {
	var columns []string
	if err := db.Select(&columns, "SELECT name FROM pragma_table_info(?)", table); err != nil {
		return nil, &jobs.DataAccessError{Path: path, Err: fmt.Errorf("failed to read columns of %s: %w", table, err)}
	}
	if len(columns) == 0 {
		return nil, &jobs.DataAccessError{Path: path, Err: fmt.Errorf("table %s not found", table)}
	}

	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	if err := checkColumns(func(col string) bool { return present[col] }); err != nil {
		if schemaErr, ok := err.(*jobs.SchemaError); ok && isCoordinateError(schemaErr) {
			return nil, schemaErr
		}
		return nil, &jobs.DataAccessError{Path: path, Err: err}
	}

	cols := append(append([]string{}, jobs.RequiredColumns...), jobs.CoordinateColumns...)
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table) // #nosec G201 - table name validated
	var rows []sqliteRow
	if err := db.Select(&rows, query); err != nil {
		return nil, &jobs.DataAccessError{Path: path, Err: fmt.Errorf("failed to query %s: %w", table, err)}
	}

	records := make([]jobs.Record, 0, len(rows))
	for _, row := range rows {
		if rec, ok := makeRecord(row.get); ok {
			records = append(records, rec)
		}
	}

	log.Printf("[DEBUG] loaded %d records from %s:%s, dropped %d without coordinates",
		len(records), path, table, len(rows)-len(records))
	return jobs.NewTable(path, records), nil
}
