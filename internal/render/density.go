package render

import (
	"image/color"
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sells-group/gymzone-cli/internal/geo"
)

// Density grid settings. The kernel bandwidth never drops below 1.5 cells so
// every point lands weight on its nearest cell centre.
const (
	densityCells        = 60
	densityBandwidthKm  = 2.0
	densityPadDeg       = 0.02
	densityPaletteSteps = 64
)

// DensityPNG plots Gaussian kernel densities of gyms (blue) and stores (red)
// as two translucent heat map layers over a shared lat/lon grid. An empty
// set contributes no layer.
func DensityPNG(path string, gyms, stores []geo.Point) error {
	if len(gyms) == 0 && len(stores) == 0 {
		return eris.New("render: no points to plot")
	}

	b := newBounds()
	for _, p := range gyms {
		b.add(p.Latitude, p.Longitude)
	}
	for _, p := range stores {
		b.add(p.Latitude, p.Longitude)
	}
	minLat, maxLat, minLon, maxLon := b.padded(densityPadDeg)

	p := plot.New()
	p.Title.Text = "Gym (blue) and Supplement Store (red) Density"
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	for _, layer := range []struct {
		points []geo.Point
		base   color.NRGBA
	}{
		{gyms, color.NRGBA{R: 31, G: 119, B: 180}},
		{stores, color.NRGBA{R: 214, G: 39, B: 40}},
	} {
		g := newDensityGrid(layer.points, minLat, maxLat, minLon, maxLon, densityCells)
		if g.max <= 0 {
			continue
		}
		h := plotter.NewHeatMap(g, fadePalette{base: layer.base, steps: densityPaletteSteps})
		h.Min, h.Max = 0, g.max
		p.Add(h)
	}

	if err := p.Save(10*vg.Inch, 8*vg.Inch, path); err != nil {
		return eris.Wrapf(err, "render: save %s", path)
	}
	return nil
}

// densityGrid is a plotter.GridXYZ of kernel-weighted counts at cell centres.
type densityGrid struct {
	lons, lats []float64
	z          [][]float64 // [col][row]
	max        float64
}

func newDensityGrid(points []geo.Point, minLat, maxLat, minLon, maxLon float64, cells int) *densityGrid {
	g := &densityGrid{
		lons: cellCentres(minLon, maxLon, cells),
		lats: cellCentres(minLat, maxLat, cells),
		z:    make([][]float64, cells),
	}

	cellKm := geo.HaversineKm(minLat, minLon, maxLat, minLon) / float64(cells)
	h := math.Max(densityBandwidthKm, 1.5*cellKm)
	twoH2 := 2 * h * h

	for c, lon := range g.lons {
		g.z[c] = make([]float64, cells)
		for r, lat := range g.lats {
			var sum float64
			for _, pt := range points {
				d := geo.HaversineKm(lat, lon, pt.Latitude, pt.Longitude)
				sum += math.Exp(-d * d / twoH2)
			}
			g.z[c][r] = sum
			g.max = math.Max(g.max, sum)
		}
	}
	return g
}

func cellCentres(lo, hi float64, n int) []float64 {
	step := (hi - lo) / float64(n)
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (float64(i)+0.5)*step
	}
	return out
}

func (g *densityGrid) Dims() (c, r int) { return len(g.lons), len(g.lats) }
func (g *densityGrid) Z(c, r int) float64 { return g.z[c][r] }
func (g *densityGrid) X(c int) float64 { return g.lons[c] }
func (g *densityGrid) Y(r int) float64 { return g.lats[r] }

var _ plotter.GridXYZ = (*densityGrid)(nil)

// fadePalette runs from fully transparent to mostly opaque in one hue, so
// overlaid layers stay readable and empty cells draw nothing.
type fadePalette struct {
	base  color.NRGBA
	steps int
}

func (f fadePalette) Colors() []color.Color {
	out := make([]color.Color, f.steps)
	for i := range out {
		c := f.base
		c.A = uint8(200 * i / (f.steps - 1))
		out[i] = c
	}
	return out
}
