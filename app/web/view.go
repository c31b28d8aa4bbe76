package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	log "github.com/go-pkgz/lgr"

	"github.com/ando2022/job-app/app/jobs"
)

const (
	msgNoData      = "No data to display"
	msgUnavailable = "data source unavailable"
)

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// View is everything the dashboard shows for a profession selection
type View struct {
	Professions []string // selector options, "All" first
	Selected    string
	Message     string // empty-state message, set when there is nothing to show
	Total       int    // number of postings after the filter
	Cities      []jobs.CityCount
	MaxCount    int // count of the first city, used to scale bars
	Columns     []string
	Rows        [][]Cell
	MapData     template.JS // json payload for the map script
}

// Cell is a detail table cell, Href set for links
type Cell struct {
	Text string
	Href string
}

// mapData is the payload the map script renders
type mapData struct {
	Center  *jobs.Point `json:"center,omitempty"`
	Zoom    float64     `json:"zoom"`
	Pitch   float64     `json:"pitch"`
	Radius  float64     `json:"radius"`
	Color   []int       `json:"color"`
	Points  []mapPoint  `json:"points"`
	Message string      `json:"message,omitempty"`
}

type mapPoint struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Tooltip string  `json:"tooltip"`
}

// buildView loads the table and computes the view for the selection. Invalid selection and
// empty data give a view with Message set, only data source failures return an error.
func (s *Server) buildView(selection string) (View, error) {
	if selection == "" {
		selection = jobs.AllProfessions
	}
	view := View{Selected: selection, Professions: []string{jobs.AllProfessions}}

	tbl, err := s.tables.Get(s.sourcePath)
	if err != nil {
		view.Message = msgUnavailable
		view.MapData = s.encodeMap(mapData{Message: msgUnavailable})
		return view, err
	}
	view.Professions = append(view.Professions, jobs.Professions(tbl)...)

	filtered, err := jobs.FilterByProfession(tbl, selection)
	if err != nil {
		var selErr *jobs.InvalidSelectionError
		if !errors.As(err, &selErr) {
			return view, err
		}
		view.Message = selErr.Error()
		view.MapData = s.encodeMap(mapData{Message: view.Message})
		return view, nil
	}

	center, err := jobs.ViewCenter(filtered)
	if err != nil {
		if !errors.Is(err, jobs.ErrEmptyTable) {
			return view, err
		}
		view.Message = msgNoData
		view.MapData = s.encodeMap(mapData{Message: msgNoData})
		return view, nil
	}

	rows, err := filtered.Project(s.settings.Table.Columns)
	if err != nil {
		return view, fmt.Errorf("detail table: %w", err)
	}

	view.Total = filtered.Len()
	view.Cities = jobs.TopCities(filtered, s.settings.Chart.TopN)
	if len(view.Cities) > 0 {
		view.MaxCount = view.Cities[0].Count
	}
	view.Columns = s.settings.Table.Columns
	view.Rows = s.tableCells(rows)
	view.MapData = s.encodeMap(mapData{Center: &center, Points: s.mapPoints(filtered)})
	return view, nil
}

// mapPoints makes markers with tooltips filled from the record fields
func (s *Server) mapPoints(t *jobs.Table) []mapPoint {
	records := t.Records()
	res := make([]mapPoint, 0, len(records))
	for _, r := range records {
		res = append(res, mapPoint{Lat: r.Latitude, Lon: r.Longitude, Tooltip: fillTooltip(s.settings.Map.Tooltip, r)})
	}
	return res
}

// encodeMap adds map settings to the payload and encodes it as json. json.Marshal escapes
// <, > and & so the result is safe inside a script element.
func (s *Server) encodeMap(md mapData) template.JS {
	md.Zoom = s.settings.Map.Zoom
	md.Pitch = s.settings.Map.Pitch
	md.Radius = s.settings.Map.MarkerRadius
	md.Color = s.settings.Map.MarkerColor
	if md.Points == nil {
		md.Points = []mapPoint{}
	}
	data, err := json.Marshal(md)
	if err != nil {
		log.Printf("[WARN] failed to encode map data: %v", err)
		return template.JS("{}")
	}
	return template.JS(data) // #nosec G203 - json encoded, html chars escaped
}

// tableCells converts projected rows to cells, link column values with http(s) scheme become anchors
func (s *Server) tableCells(rows [][]string) [][]Cell {
	linkIdx := -1
	for i, col := range s.settings.Table.Columns {
		if col == jobs.ColLink {
			linkIdx = i
		}
	}

	res := make([][]Cell, 0, len(rows))
	for _, row := range rows {
		cells := make([]Cell, len(row))
		for i, v := range row {
			cells[i] = Cell{Text: v}
			if i == linkIdx && (strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://")) {
				cells[i].Href = v
			}
		}
		res = append(res, cells)
	}
	return res
}

// fillTooltip replaces {column} placeholders with record values, unknown placeholders stay as is
func fillTooltip(tmpl string, r jobs.Record) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		v, err := r.Field(m[1 : len(m)-1])
		if err != nil {
			return m
		}
		return v
	})
}
