package source

import (
	"path/filepath"
	"strings"

	"github.com/ando2022/job-app/app/jobs"
)

// LoadFunc loads a table from path
type LoadFunc func(path string) (*jobs.Table, error)

// NewLoader makes a LoadFunc picking the format by file extension: .db, .sqlite and .sqlite3 files
// are read from the given sqlite table, everything else parsed as csv
func NewLoader(table string) LoadFunc {
	if table == "" {
		table = DefaultTable
	}
	return func(path string) (*jobs.Table, error) {
		if IsSQLite(path) {
			return LoadSQLite(path, table)
		}
		return LoadCSV(path)
	}
}

// Load reads table from path, sqlite sources use DefaultTable
func Load(path string) (*jobs.Table, error) {
	return NewLoader(DefaultTable)(path)
}

// IsSQLite checks if path looks like a sqlite database
func IsSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}
