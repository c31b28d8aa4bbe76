package jobs

import (
	"sort"
)

// AllProfessions is the selection which disables the profession filter
const AllProfessions = "All"

// DefaultTopCities is the number of cities in the aggregate when none requested
const DefaultTopCities = 20

// CityCount is the number of postings in a location
type CityCount struct {
	Location string `json:"location"`
	Count    int    `json:"job_count"`
}

// Point is a geographic position
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Professions returns distinct non-empty professions of the table, sorted
func Professions(t *Table) []string {
	seen := map[string]bool{}
	res := []string{}
	for _, r := range t.Records() {
		if r.Profession == "" || seen[r.Profession] {
			continue
		}
		seen[r.Profession] = true
		res = append(res, r.Profession)
	}
	sort.Strings(res)
	return res
}

// FilterByProfession keeps records with the selected profession. AllProfessions returns the table itself.
// Selection outside of the table's professions is rejected with InvalidSelectionError.
func FilterByProfession(t *Table, selection string) (*Table, error) {
	if selection == AllProfessions {
		return t, nil
	}
	if selection == "" || t == nil {
		return nil, &InvalidSelectionError{Selection: selection}
	}

	res := t.filter(func(r Record) bool { return r.Profession == selection })
	if res.Len() == 0 {
		return nil, &InvalidSelectionError{Selection: selection}
	}
	return res, nil
}

// TopCities counts records per location and returns up to n locations with the most records.
// Records without location are not counted. Locations with equal counts keep the order
// of their first appearance in the table.
func TopCities(t *Table, n int) []CityCount {
	if n <= 0 {
		n = DefaultTopCities
	}

	idx := map[string]int{}
	res := []CityCount{}
	for _, r := range t.Records() {
		if r.Location == "" {
			continue
		}
		if i, ok := idx[r.Location]; ok {
			res[i].Count++
			continue
		}
		idx[r.Location] = len(res)
		res = append(res, CityCount{Location: r.Location, Count: 1})
	}

	sort.SliceStable(res, func(i, j int) bool { return res[i].Count > res[j].Count })
	if len(res) > n {
		res = res[:n]
	}
	return res
}

// ViewCenter returns the mean position of all records
func ViewCenter(t *Table) (Point, error) {
	if t.Len() == 0 {
		return Point{}, ErrEmptyTable
	}
	var lat, lon float64
	for _, r := range t.records {
		lat += r.Latitude
		lon += r.Longitude
	}
	n := float64(len(t.records))
	return Point{Lat: lat / n, Lon: lon / n}, nil
}
