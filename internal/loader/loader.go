// Package loader reads gym and store locations from Overpass API exports and
// clean CSV files into validated point sets.
package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/gymzone-cli/internal/geo"
)

// unknownName is the placeholder some exports use for unnamed places.
const unknownName = "Unknown"

// Stats counts what happened to each input record.
type Stats struct {
	Read          int `json:"read"`
	Kept          int `json:"kept"`
	MissingName   int `json:"missing_name"`
	MissingCoords int `json:"missing_coords"`
	OutOfRange    int `json:"out_of_range"`
}

// Dropped returns the number of records rejected for any reason.
func (s Stats) Dropped() int {
	return s.MissingName + s.MissingCoords + s.OutOfRange
}

// record is a raw location before validation. Coordinates are pointers so an
// absent value is distinguishable from zero.
type record struct {
	ID        int64
	Name      string
	Latitude  *float64
	Longitude *float64
}

// collector validates records and accumulates the kept points.
type collector struct {
	source string
	points []geo.Point
	stats  Stats
}

func (c *collector) add(r record) {
	c.stats.Read++
	log := zap.L().With(zap.String("source", c.source), zap.Int64("id", r.ID))

	name := cleanName(r.Name)
	if name == "" {
		c.stats.MissingName++
		log.Debug("loader: drop record without name")
		return
	}
	if r.Latitude == nil || r.Longitude == nil {
		c.stats.MissingCoords++
		log.Debug("loader: drop record without coordinates", zap.String("name", name))
		return
	}

	p := geo.Point{ID: r.ID, Name: name, Latitude: *r.Latitude, Longitude: *r.Longitude}
	if err := p.Validate(); err != nil {
		c.stats.OutOfRange++
		log.Warn("loader: drop record", zap.Error(err))
		return
	}

	c.points = append(c.points, p)
	c.stats.Kept++
}

func (c *collector) finish() ([]geo.Point, Stats) {
	if c.points == nil {
		c.points = []geo.Point{}
	}
	if c.stats.Dropped() > 0 {
		zap.L().Warn("loader: dropped invalid records",
			zap.String("source", c.source),
			zap.Int("read", c.stats.Read),
			zap.Int("kept", c.stats.Kept),
			zap.Int("missing_name", c.stats.MissingName),
			zap.Int("missing_coords", c.stats.MissingCoords),
			zap.Int("out_of_range", c.stats.OutOfRange),
		)
	}
	return c.points, c.stats
}

// cleanName trims and NFC-normalizes a place name. Placeholder names come
// back empty.
func cleanName(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	if s == unknownName {
		return ""
	}
	return s
}

// LoadFile reads a point set, choosing the parser by file extension: .json
// for Overpass exports and .csv for clean files.
func LoadFile(path string) ([]geo.Point, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, eris.Wrapf(err, "loader: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var (
		points []geo.Point
		stats  Stats
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		points, stats, err = ParseOverpass(f)
	case ".csv":
		points, stats, err = ReadCSV(f)
	default:
		return nil, Stats{}, eris.Errorf("loader: unsupported file extension %q", ext)
	}
	if err != nil {
		return nil, stats, eris.Wrapf(err, "loader: load %s", path)
	}

	zap.L().Info("loader: loaded points",
		zap.String("path", path),
		zap.Int("kept", stats.Kept),
		zap.Int("dropped", stats.Dropped()),
	)
	return points, stats, nil
}
