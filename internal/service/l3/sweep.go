package l3_service

import (
	"context"
	"fmt"
	"strategysim/internal/domain"
	"strategysim/internal/logger"
	l2_service "strategysim/internal/service/l2"
)

type sweepJob struct {
	Key   domain.ParameterKey
	Point l2_service.SweepPoint
}

// runSweeps varies one parameter at a time across its grid, holding the
// rest at baseline. entries come back ordered by ascending value
func (h sensitivityServiceHandler) runSweeps(ctx context.Context, run *analysisRun) (domain.SensitivityMaps, int, error) {
	log := logger.FromContext(ctx)

	jobs := []sweepJob{}
	for _, key := range domain.AllParameterKeys() {
		points, err := run.sampler.Grid(run.baseline, key.Category, key.Parameter, run.cfg.SweepPoints)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to build sweep grid for %s: %w", key, err)
		}
		for _, p := range points {
			jobs = append(jobs, sweepJob{Key: key, Point: p})
		}
	}
	for _, key := range run.ranges.DegenerateKeys() {
		log.Warnf("range for %s is a single point, its sweep has one entry", key)
	}

	results := runWorkers(
		ctx,
		run.workers,
		len(jobs),
		func(ctx context.Context, i int) (*domain.SimulationResult, error) {
			return run.simulate(jobs[i].Point.Parameters)
		},
		nil,
	)

	out := domain.SensitivityMaps{}
	for i, job := range jobs {
		if _, ok := out[job.Key.Category]; !ok {
			out[job.Key.Category] = map[string][]domain.SensitivityMapEntry{}
		}
		entry := domain.SensitivityMapEntry{
			Value: job.Point.Value,
		}
		res := results[i]
		if res == nil {
			entry.Error = errString(fmt.Errorf("sweep point was not run"))
		} else if res.Err != nil {
			log.Warnw("sweep point failed", "parameter", job.Key.String(), "value", job.Point.Value, "error", res.Err)
			entry.Error = errString(res.Err)
		} else {
			entry.Metrics = res.Value.Metrics
		}
		out[job.Key.Category][job.Key.Parameter] = append(out[job.Key.Category][job.Key.Parameter], entry)
	}

	return out, len(jobs), nil
}

func errString(err error) *string {
	s := err.Error()
	return &s
}
