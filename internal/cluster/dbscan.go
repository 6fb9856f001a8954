package cluster

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/gymzone-cli/internal/geo"
)

// NoiseID labels points that belong to no cluster.
const NoiseID = -1

// unvisited marks points not yet reached by the scan.
const unvisited = -2

// Default clustering parameters for gym locations.
const (
	DefaultRadiusKm  = 4.5
	DefaultMinPoints = 3
)

// ErrInvariant marks internal consistency failures. These are bugs, never
// bad input.
var ErrInvariant = eris.New("cluster: invariant violated")

// Params holds DBSCAN parameters.
type Params struct {
	RadiusKm  float64 `json:"radius_km" yaml:"radius_km"`   // neighbourhood radius (great-circle km)
	MinPoints int     `json:"min_points" yaml:"min_points"` // neighbours, self included, needed for a core point
}

// DefaultParams returns the production clustering parameters.
func DefaultParams() Params {
	return Params{RadiusKm: DefaultRadiusKm, MinPoints: DefaultMinPoints}
}

// Validate checks that the parameters can produce a clustering.
func (p Params) Validate() error {
	if p.RadiusKm <= 0 {
		return eris.Errorf("cluster: radius_km must be > 0, got %g", p.RadiusKm)
	}
	if p.MinPoints < 1 {
		return eris.Errorf("cluster: min_points must be >= 1, got %d", p.MinPoints)
	}
	return nil
}

// Assignment attaches a cluster label to a point.
type Assignment struct {
	Point     geo.Point `json:"point" yaml:"point"`
	ClusterID int       `json:"cluster_id" yaml:"cluster_id"`
}

// IsNoise reports whether the point was left unclustered.
func (a Assignment) IsNoise() bool {
	return a.ClusterID == NoiseID
}

// Cluster is a non-empty group of points in input order.
type Cluster struct {
	ID      int         `json:"id" yaml:"id"`
	Members []geo.Point `json:"members" yaml:"members"`
}

// Result is the outcome of a clustering run. Assignments has one entry per
// input point, in input order.
type Result struct {
	Params      Params       `json:"params" yaml:"params"`
	Assignments []Assignment `json:"assignments" yaml:"assignments"`
	Clusters    []Cluster    `json:"clusters" yaml:"clusters"`
}

// NoiseCount returns how many points were labelled noise.
func (r *Result) NoiseCount() int {
	n := 0
	for _, a := range r.Assignments {
		if a.IsNoise() {
			n++
		}
	}
	return n
}

// Labels maps point IDs to cluster IDs. Point IDs are expected to be unique
// within a point set.
func (r *Result) Labels() map[int64]int {
	labels := make(map[int64]int, len(r.Assignments))
	for _, a := range r.Assignments {
		labels[a.Point.ID] = a.ClusterID
	}
	return labels
}

// DBSCAN clusters points with the haversine metric.
func DBSCAN(points []geo.Point, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return &Result{Params: params, Assignments: []Assignment{}, Clusters: []Cluster{}}, nil
	}
	return run(points, params, newGridIndex(points, params.RadiusKm))
}

func run(points []geo.Point, params Params, nb neighborhood) (*Result, error) {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}

	next := 0
	for i := range points {
		if labels[i] != unvisited {
			continue
		}

		neighbors := nb.regionQuery(i)
		if len(neighbors) < params.MinPoints {
			labels[i] = NoiseID
			continue
		}

		expandCluster(nb, labels, i, neighbors, next, params.MinPoints)
		next++
	}

	return buildResult(points, labels, next, params)
}

// expandCluster grows cluster id from a core seed point.
func expandCluster(nb neighborhood, labels []int, seed int, neighbors []int, id, minPts int) {
	labels[seed] = id

	queue := neighbors
	for j := 0; j < len(queue); j++ {
		idx := queue[j]

		if labels[idx] == NoiseID {
			labels[idx] = id // noise becomes a border point
			continue
		}
		if labels[idx] != unvisited {
			continue
		}

		labels[idx] = id
		next := nb.regionQuery(idx)
		if len(next) >= minPts {
			queue = append(queue, next...)
		}
	}
}

func buildResult(points []geo.Point, labels []int, numClusters int, params Params) (*Result, error) {
	res := &Result{
		Params:      params,
		Assignments: make([]Assignment, len(points)),
		Clusters:    make([]Cluster, numClusters),
	}
	for id := range res.Clusters {
		res.Clusters[id].ID = id
	}

	for i, p := range points {
		label := labels[i]
		if label == unvisited || label < NoiseID || label >= numClusters {
			return nil, eris.Wrapf(ErrInvariant, "point %d (%q) has label %d", p.ID, p.Name, label)
		}
		res.Assignments[i] = Assignment{Point: p, ClusterID: label}
		if label != NoiseID {
			res.Clusters[label].Members = append(res.Clusters[label].Members, p)
		}
	}

	for _, c := range res.Clusters {
		if len(c.Members) == 0 {
			return nil, eris.Wrapf(ErrInvariant, "cluster %d has no members", c.ID)
		}
	}

	return res, nil
}
