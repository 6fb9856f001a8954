package loader

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/gymzone-cli/internal/geo"
)

// element is one Overpass result. Nodes carry lat/lon directly; ways and
// relations exported with "out center" carry a center instead.
type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *center           `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type center struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func (e element) record() record {
	r := record{ID: e.ID, Name: e.Tags["name"], Latitude: e.Lat, Longitude: e.Lon}
	if e.Center != nil {
		if r.Latitude == nil {
			r.Latitude = e.Center.Lat
		}
		if r.Longitude == nil {
			r.Longitude = e.Center.Lon
		}
	}
	return r
}

// ParseOverpass streams an Overpass API JSON document and returns the valid,
// named points in document order. Elements are decoded one at a time so large
// exports are never held in memory twice.
func ParseOverpass(r io.Reader) ([]geo.Point, Stats, error) {
	dec := json.NewDecoder(r)
	c := &collector{source: "overpass"}

	if err := expectDelim(dec, '{'); err != nil {
		return nil, Stats{}, err
	}

	found := false
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, c.stats, eris.Wrap(err, "overpass: read key")
		}
		key, _ := tok.(string)
		if key != "elements" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, c.stats, eris.Wrapf(err, "overpass: skip %q", key)
			}
			continue
		}

		found = true
		if err := expectDelim(dec, '['); err != nil {
			return nil, c.stats, err
		}
		for dec.More() {
			var e element
			if err := dec.Decode(&e); err != nil {
				return nil, c.stats, eris.Wrap(err, "overpass: decode element")
			}
			c.add(e.record())
		}
		if err := expectDelim(dec, ']'); err != nil {
			return nil, c.stats, err
		}
	}

	if !found {
		return nil, c.stats, eris.New("overpass: document has no elements array")
	}

	points, stats := c.finish()
	return points, stats, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return eris.Wrapf(err, "overpass: expected %q", want)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return eris.Errorf("overpass: expected %q, got %v", want, tok)
	}
	return nil
}
