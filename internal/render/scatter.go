package render

import (
	"image/color"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/sells-group/gymzone-cli/internal/geo"
)

var (
	gymColor   = color.RGBA{R: 31, G: 119, B: 180, A: 160}
	storeColor = color.RGBA{R: 214, G: 39, B: 40, A: 160}
)

// ScatterPNG plots gyms against stores by longitude and latitude. The image
// format follows the file extension.
func ScatterPNG(path string, gyms, stores []geo.Point) error {
	if len(gyms) == 0 && len(stores) == 0 {
		return eris.New("render: no points to plot")
	}

	p := plot.New()
	p.Title.Text = "Gyms vs Supplement Stores"
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.Add(plotter.NewGrid())

	if err := addScatter(p, "Gyms", gyms, gymColor, draw.CircleGlyph{}); err != nil {
		return err
	}
	if err := addScatter(p, "Supplement Stores", stores, storeColor, draw.TriangleGlyph{}); err != nil {
		return err
	}

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return eris.Wrapf(err, "render: save %s", path)
	}
	return nil
}

func addScatter(p *plot.Plot, label string, points []geo.Point, c color.Color, shape draw.GlyphDrawer) error {
	if len(points) == 0 {
		return nil
	}
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: pt.Longitude, Y: pt.Latitude}
	}

	s, err := plotter.NewScatter(xys)
	if err != nil {
		return eris.Wrapf(err, "render: %s scatter", label)
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Shape = shape
	s.GlyphStyle.Radius = vg.Points(3)

	p.Add(s)
	p.Legend.Add(label, s)
	return nil
}
