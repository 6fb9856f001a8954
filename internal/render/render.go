// Package render draws clustered gyms, stores and recommended zones as an
// interactive HTML map, a PNG scatter plot and GeoJSON.
package render

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/gymzone-cli/internal/cluster"
	"github.com/sells-group/gymzone-cli/internal/geo"
	"github.com/sells-group/gymzone-cli/internal/pipeline"
	"github.com/sells-group/gymzone-cli/internal/selector"
)

// Output file names written by WriteAll.
const (
	MapFile     = "gym_store_map.html"
	ScatterFile = "gyms_vs_stores.png"
	DensityFile = "density.png"
	GeoJSONFile = "zones.geojson"
)

// Data is everything the renderers draw.
type Data struct {
	Assignments []cluster.Assignment
	Stores      []geo.Point
	Selection   selector.Selection
}

// FromResult collects render data from a pipeline run.
func FromResult(res *pipeline.Result, stores []geo.Point) Data {
	return Data{
		Assignments: res.Assignments,
		Stores:      stores,
		Selection:   res.Selection,
	}
}

// Gyms returns the assigned gym points in input order.
func (d Data) Gyms() []geo.Point {
	out := make([]geo.Point, len(d.Assignments))
	for i, a := range d.Assignments {
		out[i] = a.Point
	}
	return out
}

// WriteAll renders the map, scatter and density plots and GeoJSON into dir
// and returns the written paths. The PNGs are skipped when there are no
// points to draw.
func WriteAll(dir string, data Data) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "render: create %s", dir)
	}

	mapPath := filepath.Join(dir, MapFile)
	if err := writeFile(mapPath, func(f *os.File) error { return MapHTML(f, data) }); err != nil {
		return nil, err
	}

	geoPath := filepath.Join(dir, GeoJSONFile)
	if err := writeFile(geoPath, func(f *os.File) error { return GeoJSON(f, data) }); err != nil {
		return nil, err
	}

	paths := []string{mapPath, geoPath}

	gyms := data.Gyms()
	if len(gyms) == 0 && len(data.Stores) == 0 {
		zap.L().Info("render: no points, skipping plots", zap.String("dir", dir))
	} else {
		scatterPath := filepath.Join(dir, ScatterFile)
		if err := ScatterPNG(scatterPath, gyms, data.Stores); err != nil {
			return nil, err
		}
		densityPath := filepath.Join(dir, DensityFile)
		if err := DensityPNG(densityPath, gyms, data.Stores); err != nil {
			return nil, err
		}
		paths = append(paths, scatterPath, densityPath)
	}

	zap.L().Info("render: wrote outputs", zap.Strings("paths", paths))
	return paths, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "render: create %s", path)
	}
	if err := fn(f); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrapf(f.Close(), "render: close %s", path)
}
