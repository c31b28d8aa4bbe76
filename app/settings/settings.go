// Package settings loads dashboard presentation settings from a YAML file. All fields are optional,
// missing values take defaults matching the stock job map of Switzerland.
package settings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/ando2022/job-app/app/jobs"
)

//go:generate go run ./internal/schema ../../settings-schema.json

// Settings defines dashboard page, map, chart and table presentation
type Settings struct {
	Title       string `yaml:"title" jsonschema:"description=page title"`
	Description string `yaml:"description" jsonschema:"description=text under the page title"`
	Map         Map    `yaml:"map" jsonschema:"description=map view parameters"`
	Chart       Chart  `yaml:"chart" jsonschema:"description=city bar chart parameters"`
	Table       Table  `yaml:"table" jsonschema:"description=detail table parameters"`
}

// Map defines the map view and markers
type Map struct {
	Zoom         float64 `yaml:"zoom" jsonschema:"minimum=0,maximum=20,description=initial zoom level"`
	Pitch        float64 `yaml:"pitch" jsonschema:"minimum=0,maximum=60,description=initial camera pitch in degrees"`
	MarkerRadius float64 `yaml:"marker_radius" jsonschema:"exclusiveMinimum=0,description=marker radius in meters"`
	MarkerColor  []int   `yaml:"marker_color" jsonschema:"minItems=4,maxItems=4,description=marker color as [r g b a] 0-255"`
	Tooltip      string  `yaml:"tooltip" jsonschema:"description=tooltip template with {column} placeholders"`
}

// Chart defines the city bar chart
type Chart struct {
	TopN  int    `yaml:"top_n" jsonschema:"minimum=1,description=number of cities in the chart"`
	Title string `yaml:"title" jsonschema:"description=chart title"`
}

// Table defines the detail table
type Table struct {
	Columns []string `yaml:"columns" jsonschema:"description=columns shown in the detail table"`
}

// Default returns settings of the stock dashboard
func Default() Settings {
	return Settings{
		Title:       "Job Map of Switzerland",
		Description: "Explore job postings across Switzerland by profession, location, and type.",
		Map: Map{
			Zoom:         6.5,
			Pitch:        0,
			MarkerRadius: 8000,
			MarkerColor:  []int{200, 30, 0, 160},
			Tooltip:      "{profession}\n{title}\n{location}",
		},
		Chart: Chart{TopN: jobs.DefaultTopCities, Title: "Top 20 Cities by Job Count"},
		Table: Table{Columns: append([]string{}, jobs.DetailColumns...)},
	}
}

// Load reads settings from YAML file, empty path returns defaults
func Load(path string) (Settings, error) {
	if path == "" {
		return Default(), nil
	}
	fh, err := os.Open(path) // #nosec G304 - path comes from trusted config
	if err != nil {
		return Settings{}, fmt.Errorf("can't open settings %s: %w", path, err)
	}
	defer fh.Close() //nolint:errcheck // read-only file

	res, err := Parse(fh)
	if err != nil {
		return Settings{}, fmt.Errorf("can't load settings %s: %w", path, err)
	}
	return res, nil
}

// Parse decodes YAML settings on top of defaults and verifies the result
func Parse(r io.Reader) (Settings, error) {
	res := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&res); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if err := res.Verify(); err != nil {
		return Settings{}, err
	}
	return res, nil
}

// Verify checks settings values
func (s Settings) Verify() error {
	errs := []string{}
	if s.Map.Zoom < 0 || s.Map.Zoom > 20 {
		errs = append(errs, fmt.Sprintf("map.zoom %v out of range 0-20", s.Map.Zoom))
	}
	if s.Map.Pitch < 0 || s.Map.Pitch > 60 {
		errs = append(errs, fmt.Sprintf("map.pitch %v out of range 0-60", s.Map.Pitch))
	}
	if s.Map.MarkerRadius <= 0 {
		errs = append(errs, "map.marker_radius must be positive")
	}
	if len(s.Map.MarkerColor) != 4 {
		errs = append(errs, fmt.Sprintf("map.marker_color needs 4 components, got %d", len(s.Map.MarkerColor)))
	}
	for _, c := range s.Map.MarkerColor {
		if c < 0 || c > 255 {
			errs = append(errs, fmt.Sprintf("map.marker_color component %d out of range 0-255", c))
			break
		}
	}
	if s.Chart.TopN < 1 {
		errs = append(errs, "chart.top_n must be at least 1")
	}
	if len(s.Table.Columns) == 0 {
		errs = append(errs, "table.columns can't be empty")
	}
	for _, col := range s.Table.Columns {
		if _, err := (jobs.Record{}).Field(col); err != nil {
			errs = append(errs, fmt.Sprintf("table.columns: %v", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid settings: %s", strings.Join(errs, "; "))
	}
	return nil
}

// GenerateSchema generates a JSON schema for the settings file
func GenerateSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{FieldNameTag: "yaml", RequiredFromJSONSchemaTags: true}
	schema := r.Reflect(&Settings{})
	schema.Title = "Job App Settings Schema"
	schema.Description = "Schema for job-app dashboard settings file"
	return schema
}
