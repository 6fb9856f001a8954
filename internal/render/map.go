package render

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rotisserie/eris"

	"github.com/sells-group/gymzone-cli/internal/geo"
)

// Series names on the HTML map.
const (
	SeriesClustered   = "Clustered gyms"
	SeriesNoise       = "Unclustered gyms"
	SeriesStores      = "Supplement stores"
	SeriesRecommended = "Recommended zones"
)

// mapPadDeg pads the axis bounds around the data.
const mapPadDeg = 0.02

// MapHTML writes an interactive longitude/latitude scatter map.
func MapHTML(w io.Writer, data Data) error {
	var clustered, noise, stores, zones []opts.ScatterData
	b := newBounds()

	for _, a := range data.Assignments {
		b.add(a.Point.Latitude, a.Point.Longitude)
		pt := pointData(a.Point)
		if a.IsNoise() {
			noise = append(noise, pt)
			continue
		}
		pt.Name = fmt.Sprintf("%s (cluster %d)", a.Point.Name, a.ClusterID)
		clustered = append(clustered, pt)
	}
	for _, s := range data.Stores {
		b.add(s.Latitude, s.Longitude)
		stores = append(stores, pointData(s))
	}
	for _, r := range data.Selection.Recommendations {
		p := r.Profile
		b.add(p.Centroid.Latitude, p.Centroid.Longitude)
		zones = append(zones, opts.ScatterData{
			Name:       fmt.Sprintf("#%d: %d gyms, %d stores, %.2f km spread", r.Rank, p.GymCount, p.NearbyStoreCount, p.SpreadKm),
			Value:      []interface{}{p.Centroid.Longitude, p.Centroid.Latitude},
			Symbol:     "diamond",
			SymbolSize: 18,
		})
	}

	minLat, maxLat, minLon, maxLon := b.padded(mapPadDeg)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Gym Zone Recommendations", Width: "1100px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Gyms and Supplement Stores",
			Subtitle: fmt.Sprintf("gyms=%d stores=%d zones=%d decision=%s", len(data.Assignments), len(data.Stores), len(zones), data.Selection.Decision),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Min: minLon, Max: maxLon, Name: "Longitude", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: minLat, Max: maxLat, Name: "Latitude", NameLocation: "middle", NameGap: 40}),
	)
	scatter.AddSeries(SeriesClustered, clustered, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	scatter.AddSeries(SeriesNoise, noise, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	scatter.AddSeries(SeriesStores, stores, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	scatter.AddSeries(SeriesRecommended, zones)

	if err := scatter.Render(w); err != nil {
		return eris.Wrap(err, "render: map")
	}
	return nil
}

func pointData(p geo.Point) opts.ScatterData {
	return opts.ScatterData{Name: p.Name, Value: []interface{}{p.Longitude, p.Latitude}}
}

type bounds struct {
	minLat, maxLat, minLon, maxLon float64
}

func newBounds() *bounds {
	return &bounds{
		minLat: math.Inf(1), maxLat: math.Inf(-1),
		minLon: math.Inf(1), maxLon: math.Inf(-1),
	}
}

func (b *bounds) add(lat, lon float64) {
	b.minLat = math.Min(b.minLat, lat)
	b.maxLat = math.Max(b.maxLat, lat)
	b.minLon = math.Min(b.minLon, lon)
	b.maxLon = math.Max(b.maxLon, lon)
}

// padded returns the bounds widened by pad degrees, or a world extent when
// nothing was added.
func (b *bounds) padded(pad float64) (minLat, maxLat, minLon, maxLon float64) {
	if math.IsInf(b.minLat, 1) {
		return -90, 90, -180, 180
	}
	return b.minLat - pad, b.maxLat + pad, b.minLon - pad, b.maxLon + pad
}
