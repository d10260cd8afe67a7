package gazetteer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PleiadesReader streams the curated Pleiades places CSV. The file carries a
// header row; the reader keys the id, title, reprLat and reprLong columns by
// name so column reordering between dataset refreshes is harmless.
type PleiadesReader struct {
	cr      *csv.Reader
	col     map[string]int
	skipped int64
}

// NewPleiadesReader prepares a streaming reader over a Pleiades CSV dump.
func NewPleiadesReader(r io.Reader) (*PleiadesReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("pleiades header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"id", "title", "reprLat", "reprLong"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("pleiades header: missing column %q", name)
		}
	}
	return &PleiadesReader{cr: cr, col: col}, nil
}

// Next returns the next place record, silently skipping rows without usable
// coordinates (many Pleiades places are unlocated).
func (p *PleiadesReader) Next() (Record, error) {
	for {
		row, err := p.cr.Read()
		if err != nil {
			return Record{}, err
		}
		field := func(name string) string {
			i := p.col[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		id, errID := strconv.ParseInt(field("id"), 10, 64)
		lat, errLat := strconv.ParseFloat(field("reprLat"), 64)
		lon, errLon := strconv.ParseFloat(field("reprLong"), 64)
		name := field("title")
		if errID != nil || errLat != nil || errLon != nil || name == "" {
			p.skipped++
			continue
		}
		return Record{ID: id, Name: name, Lat: lat, Lon: lon}, nil
	}
}

// Skipped reports how many rows were dropped for missing coordinates.
func (p *PleiadesReader) Skipped() int64 { return p.skipped }

// geonames column positions, per the dataset README:
// 0 geonameid, 1 name, 3 alternatenames (comma separated), 4 latitude,
// 5 longitude.
const (
	geonamesID       = 0
	geonamesName     = 1
	geonamesAltNames = 3
	geonamesLat      = 4
	geonamesLon      = 5
	geonamesMinCols  = 6
)

// GeonamesReader streams the tab-delimited GeoNames allCountries dump one
// line at a time.
type GeonamesReader struct {
	sc      *bufio.Scanner
	skipped int64
}

// NewGeonamesReader prepares a streaming reader over a GeoNames dump. Lines
// can run long (the alternate-names column alone is up to 10k characters),
// so the scanner buffer is widened accordingly.
func NewGeonamesReader(r io.Reader) *GeonamesReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &GeonamesReader{sc: sc}
}

// Next returns the next place record, including its alternate names as
// extra lookup keys. Malformed lines are skipped and counted.
func (g *GeonamesReader) Next() (Record, error) {
	for g.sc.Scan() {
		cols := strings.Split(g.sc.Text(), "\t")
		if len(cols) < geonamesMinCols {
			g.skipped++
			continue
		}
		id, errID := strconv.ParseInt(cols[geonamesID], 10, 64)
		lat, errLat := strconv.ParseFloat(cols[geonamesLat], 64)
		lon, errLon := strconv.ParseFloat(cols[geonamesLon], 64)
		name := strings.TrimSpace(cols[geonamesName])
		if errID != nil || errLat != nil || errLon != nil || name == "" {
			g.skipped++
			continue
		}
		rec := Record{ID: id, Name: name, Lat: lat, Lon: lon}
		for _, alt := range strings.Split(cols[geonamesAltNames], ",") {
			alt = strings.TrimSpace(alt)
			if alt != "" && alt != name {
				rec.AltNames = append(rec.AltNames, alt)
			}
		}
		return rec, nil
	}
	if err := g.sc.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

// Skipped reports how many lines were dropped as malformed.
func (g *GeonamesReader) Skipped() int64 { return g.skipped }
