package cluster

import (
	"math"
	"sort"

	"github.com/sells-group/gymzone-cli/internal/geo"
)

// cellSlack widens grid cells slightly so rounding never pushes a true
// neighbour two cells away.
const cellSlack = 1.01

// neighborhood answers radius queries over a fixed point slice.
type neighborhood interface {
	// regionQuery returns the indices of all points within the radius of
	// points[idx], idx included, in ascending order.
	regionQuery(idx int) []int
}

type cellKey struct {
	row, col int64
}

// gridIndex buckets points into latitude/longitude cells. Rows are RadiusKm
// of latitude tall. Columns are wide enough that, at the highest latitude any
// neighbourhood can reach, RadiusKm never spans more than one column, and
// they wrap at the antimeridian.
type gridIndex struct {
	points   []geo.Point
	radiusKm float64
	rowDeg   float64
	colDeg   float64
	cols     int64
	cells    map[cellKey][]int
}

func newGridIndex(points []geo.Point, radiusKm float64) *gridIndex {
	rowDeg := geo.KmToLatDegrees(radiusKm) * cellSlack

	var maxAbsLat float64
	for _, p := range points {
		maxAbsLat = math.Max(maxAbsLat, math.Abs(p.Latitude))
	}

	// A great-circle path of length d between two points never leaves the
	// band |lat| <= maxAbsLat + d, and along it each degree of longitude is at
	// least cos(bound) degrees of arc long.
	cols := int64(1)
	colDeg := 360.0
	if bound := maxAbsLat + rowDeg; bound < 89 {
		minColDeg := rowDeg / math.Cos(bound*math.Pi/180)
		if n := int64(math.Floor(360 / minColDeg)); n >= 3 {
			cols = n
			colDeg = 360 / float64(n)
		}
	}

	gi := &gridIndex{
		points:   points,
		radiusKm: radiusKm,
		rowDeg:   rowDeg,
		colDeg:   colDeg,
		cols:     cols,
		cells:    make(map[cellKey][]int),
	}
	for i, p := range points {
		k := gi.cellOf(p)
		gi.cells[k] = append(gi.cells[k], i)
	}
	return gi
}

func (gi *gridIndex) cellOf(p geo.Point) cellKey {
	row := int64(math.Floor((p.Latitude + 90) / gi.rowDeg))
	col := int64(math.Floor((p.Longitude+180)/gi.colDeg)) % gi.cols
	return cellKey{row: row, col: col}
}

func (gi *gridIndex) regionQuery(idx int) []int {
	p := gi.points[idx]
	home := gi.cellOf(p)

	colOffsets := []int64{-1, 0, 1}
	if gi.cols == 1 {
		colOffsets = []int64{0}
	}

	var neighbors []int
	for dr := int64(-1); dr <= 1; dr++ {
		for _, dc := range colOffsets {
			k := cellKey{
				row: home.row + dr,
				col: ((home.col+dc)%gi.cols + gi.cols) % gi.cols,
			}
			for _, cand := range gi.cells[k] {
				q := gi.points[cand]
				if geo.HaversineKm(p.Latitude, p.Longitude, q.Latitude, q.Longitude) <= gi.radiusKm {
					neighbors = append(neighbors, cand)
				}
			}
		}
	}

	sort.Ints(neighbors)
	return neighbors
}

var _ neighborhood = (*gridIndex)(nil)
