// Package pipeline wires clustering, feature extraction and selection into a
// single synchronous recommendation run.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/gymzone-cli/internal/cluster"
	"github.com/sells-group/gymzone-cli/internal/config"
	"github.com/sells-group/gymzone-cli/internal/features"
	"github.com/sells-group/gymzone-cli/internal/geo"
	"github.com/sells-group/gymzone-cli/internal/selector"
)

// Phase names, in execution order.
const (
	PhaseCluster  = "1_cluster"
	PhaseFeatures = "2_features"
	PhaseSelect   = "3_select"
)

// PhaseStatus is the outcome of one phase.
type PhaseStatus string

// Phase statuses.
const (
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
)

// PhaseResult records timing for one phase of a run.
type PhaseResult struct {
	Name     string      `json:"name" yaml:"name"`
	Status   PhaseStatus `json:"status" yaml:"status"`
	Duration int64       `json:"duration_ms" yaml:"duration_ms"`
	Error    string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// Options bundles the parameters of every stage.
type Options struct {
	Cluster  cluster.Params   `json:"cluster" yaml:"cluster"`
	Features features.Options `json:"features" yaml:"features"`
	Selector selector.Options `json:"selector" yaml:"selector"`
}

// DefaultOptions returns the production parameters.
func DefaultOptions() Options {
	return Options{
		Cluster:  cluster.DefaultParams(),
		Features: features.DefaultOptions(),
		Selector: selector.DefaultOptions(),
	}
}

// OptionsFromConfig maps loaded configuration onto stage options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Cluster: cluster.Params{
			RadiusKm:  cfg.Cluster.RadiusKm,
			MinPoints: cfg.Cluster.MinPoints,
		},
		Features: features.Options{
			StoreRadiusKm: cfg.Features.StoreRadiusKm,
			DenseRadiusKm: cfg.Features.DenseRadiusKm,
			Workers:       cfg.Features.Workers,
		},
		Selector: selector.Options{
			MaxLatitude: cfg.Selector.MaxLatitude,
		},
	}
}

// Validate checks every stage's options.
func (o Options) Validate() error {
	if err := o.Cluster.Validate(); err != nil {
		return err
	}
	if err := o.Features.Validate(); err != nil {
		return err
	}
	return o.Selector.Validate()
}

// Result is everything a run produced. It is handed read-only to reporting
// and rendering.
type Result struct {
	RunID       string               `json:"run_id" yaml:"run_id"`
	Options     Options              `json:"options" yaml:"options"`
	GymCount    int                  `json:"gym_count" yaml:"gym_count"`
	StoreCount  int                  `json:"store_count" yaml:"store_count"`
	Assignments []cluster.Assignment `json:"assignments" yaml:"assignments"`
	Clusters    []cluster.Cluster    `json:"clusters" yaml:"clusters"`
	Profiles    []features.Profile   `json:"profiles" yaml:"profiles"`
	Selection   selector.Selection   `json:"selection" yaml:"selection"`
	Phases      []PhaseResult        `json:"phases" yaml:"phases"`
}

// NoiseCount returns the number of gyms left unclustered.
func (r *Result) NoiseCount() int {
	n := 0
	for _, a := range r.Assignments {
		if a.IsNoise() {
			n++
		}
	}
	return n
}

// Pipeline runs recommendation passes with a fixed set of options.
type Pipeline struct {
	opts      Options
	clusterer *cluster.Clusterer
}

// New creates a Pipeline after validating its options.
func New(opts Options) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, eris.Wrap(err, "pipeline: invalid options")
	}
	return &Pipeline{
		opts:      opts,
		clusterer: cluster.NewClusterer(opts.Cluster),
	}, nil
}

// Run executes clustering, feature extraction and selection. Inputs are
// never modified.
func Run(ctx context.Context, gyms, stores []geo.Point, opts Options) (*Result, error) {
	p, err := New(opts)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, gyms, stores)
}

// Run executes one recommendation pass.
func (p *Pipeline) Run(ctx context.Context, gyms, stores []geo.Point) (*Result, error) {
	result := &Result{
		RunID:      uuid.NewString(),
		Options:    p.opts,
		GymCount:   len(gyms),
		StoreCount: len(stores),
	}
	log := zap.L().With(zap.String("run_id", result.RunID))
	log.Info("pipeline: starting run",
		zap.Int("gyms", len(gyms)),
		zap.Int("stores", len(stores)),
	)

	trackPhase := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		phase := PhaseResult{
			Name:     name,
			Status:   PhaseStatusComplete,
			Duration: time.Since(start).Milliseconds(),
		}
		if err != nil {
			phase.Status = PhaseStatusFailed
			phase.Error = err.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", phase.Duration),
				zap.Error(err),
			)
		} else {
			log.Debug("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", phase.Duration),
			)
		}
		result.Phases = append(result.Phases, phase)
		return err
	}

	// ===== Phase 1: Cluster gyms =====
	err := trackPhase(PhaseCluster, func() error {
		clustered, err := p.clusterer.Cluster(gyms)
		if err != nil {
			return err
		}
		result.Assignments = clustered.Assignments
		result.Clusters = clustered.Clusters
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: cluster")
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// ===== Phase 2: Profile clusters =====
	err = trackPhase(PhaseFeatures, func() error {
		profiles, err := features.Extract(ctx, result.Clusters, stores, p.opts.Features)
		if err != nil {
			return err
		}
		result.Profiles = profiles
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: features")
	}

	// ===== Phase 3: Select zones =====
	_ = trackPhase(PhaseSelect, func() error {
		result.Selection = selector.Select(result.Profiles, p.opts.Selector)
		return nil
	})

	fields := []zap.Field{
		zap.Int("clusters", len(result.Clusters)),
		zap.Int("noise", result.NoiseCount()),
		zap.String("decision", string(result.Selection.Decision)),
		zap.Int("recommended", len(result.Selection.Recommendations)),
	}
	if recs := result.Selection.Recommendations; len(recs) > 0 {
		fields = append(fields, zap.Float64("top_score", recs[0].Profile.Score))
	}
	log.Info("pipeline: run complete", fields...)

	return result, nil
}
