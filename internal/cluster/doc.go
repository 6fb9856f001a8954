// Package cluster groups gym locations into density-based clusters.
//
// The algorithm is DBSCAN over great-circle (haversine) distance. Two points
// are neighbours when they are at most RadiusKm apart; a point with at least
// MinPoints neighbours (itself included) is a core point. Clusters grow from
// core points in input order and a border point belongs to the first cluster
// whose expansion reaches it. Points reachable from no core point are noise.
//
// Output is deterministic for a fixed input order: cluster IDs are assigned
// 0, 1, 2, ... in the order their seed points appear, and neighbour queues are
// processed in ascending input index.
package cluster
