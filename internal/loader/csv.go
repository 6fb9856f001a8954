package loader

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/gymzone-cli/internal/geo"
)

// csvRow is the clean CSV layout: ID,Name,Latitude,Longitude. Coordinates
// stay text until validation so blank cells count as missing.
type csvRow struct {
	ID        int64  `csv:"ID"`
	Name      string `csv:"Name"`
	Latitude  string `csv:"Latitude"`
	Longitude string `csv:"Longitude"`
}

func (r csvRow) record() (record, error) {
	lat, err := parseCoord(r.Latitude)
	if err != nil {
		return record{}, eris.Wrapf(err, "latitude of %d", r.ID)
	}
	lon, err := parseCoord(r.Longitude)
	if err != nil {
		return record{}, eris.Wrapf(err, "longitude of %d", r.ID)
	}
	return record{ID: r.ID, Name: r.Name, Latitude: lat, Longitude: lon}, nil
}

func parseCoord(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ReadCSV reads a clean point CSV. Rows go through the same validation as
// Overpass elements, so a hand-edited file cannot smuggle in bad coordinates.
func ReadCSV(r io.Reader) ([]geo.Point, Stats, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if err == io.EOF {
			return nil, Stats{}, eris.New("csv: missing header")
		}
		return nil, Stats{}, eris.Wrap(err, "csv: read header")
	}

	c := &collector{source: "csv"}
	for {
		var row csvRow
		err := dec.Decode(&row)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, c.stats, eris.Wrapf(err, "csv: decode row %d", c.stats.Read+1)
		}
		rec, err := row.record()
		if err != nil {
			return nil, c.stats, eris.Wrapf(err, "csv: parse row %d", c.stats.Read+1)
		}
		c.add(rec)
	}

	points, stats := c.finish()
	return points, stats, nil
}

// WriteCSV writes points in the clean CSV layout. The header is written even
// when there are no points.
func WriteCSV(w io.Writer, points []geo.Point) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(csvRow{}); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	for _, p := range points {
		row := csvRow{ID: p.ID, Name: p.Name, Latitude: formatCoord(p.Latitude), Longitude: formatCoord(p.Longitude)}
		if err := enc.Encode(row); err != nil {
			return eris.Wrapf(err, "csv: write point %d", p.ID)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "csv: flush")
	}
	return nil
}
