package l3_service

import (
	"context"
	"errors"
	"strategysim/internal/domain"
	"strategysim/internal/logger"
	l1_service "strategysim/internal/service/l1"
)

const progressEvery = 1000

// sample i draws parameters and simulates on its own pair of derived
// seeds, so results don't depend on worker count or scheduling
func monteCarloSeeds(seed int64, i int) (paramSeed, simSeed int64) {
	return l1_service.DeriveSeed(seed, uint64(2*i+1)), l1_service.DeriveSeed(seed, uint64(2*i+2))
}

// runMonteCarlo draws NumSimulations independent parameter sets and
// simulates each one. SampleBudget and MaxDuration cut the batch short;
// ctx cancellation does too. whatever completed is returned in index order
func (h sensitivityServiceHandler) runMonteCarlo(ctx context.Context, run *analysisRun) ([]domain.MonteCarloSample, domain.BatchSummary) {
	log := logger.FromContext(ctx)

	requested := run.cfg.NumSimulations
	toRun := requested
	abortReason := ""
	if run.cfg.SampleBudget > 0 && run.cfg.SampleBudget < requested {
		toRun = run.cfg.SampleBudget
		abortReason = "sample budget reached"
	}

	batchCtx := ctx
	if run.cfg.MaxDuration > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, run.cfg.MaxDuration)
		defer cancel()
	}

	results := runWorkers(
		batchCtx,
		run.workers,
		toRun,
		func(ctx context.Context, i int) (domain.MonteCarloSample, error) {
			paramSeed, simSeed := monteCarloSeeds(run.cfg.Seed, i)
			params := run.sampler.Sample(l1_service.NewSeededRandomSource(paramSeed))
			sample := domain.MonteCarloSample{
				Simulation: i,
				Seed:       simSeed,
				Parameters: params,
			}
			if err := params.Validate(run.ranges); err != nil {
				return sample, err
			}
			res, err := run.simulator.Simulate(params, simSeed)
			if err != nil {
				return sample, err
			}
			metrics := res.Metrics
			sample.Metrics = &metrics
			return sample, nil
		},
		func(completed int, res *workResult[domain.MonteCarloSample]) {
			if completed%progressEvery == 0 {
				log.Infof("completed %d/%d monte carlo samples", completed, toRun)
			}
		},
	)

	samples := make([]domain.MonteCarloSample, 0, toRun)
	batch := domain.BatchSummary{
		Requested: requested,
	}
	for i, res := range results {
		if res == nil {
			continue
		}
		sample := res.Value
		if res.Err != nil {
			// a panic leaves Value zeroed, so fill in what's known
			paramSeed, simSeed := monteCarloSeeds(run.cfg.Seed, i)
			if sample.Parameters == nil {
				sample.Parameters = run.sampler.Sample(l1_service.NewSeededRandomSource(paramSeed))
			}
			sample.Simulation = i
			sample.Seed = simSeed
			sample.Metrics = nil
			sample.Error = errString(res.Err)
			batch.Failed++
			log.Warnw("monte carlo sample failed",
				"simulation", i,
				"parameters", sample.Parameters.Flatten(),
				"error", res.Err,
			)
		} else {
			batch.Succeeded++
		}
		samples = append(samples, sample)
	}

	batch.Completed = batch.Succeeded + batch.Failed
	batch.Skipped = requested - batch.Completed
	batch.Partial = batch.Skipped > 0
	if batch.Completed < toRun {
		switch {
		case errors.Is(batchCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
			abortReason = "max duration exceeded"
		case ctx.Err() != nil:
			abortReason = ctx.Err().Error()
		}
	}
	if batch.Partial {
		batch.AbortReason = abortReason
		log.Warnf("monte carlo batch cut short after %d/%d samples: %s", batch.Completed, requested, abortReason)
	}

	return samples, batch
}

// successfulSamples keeps the samples that produced metrics. failed
// samples are left out of every aggregate
func successfulSamples(samples []domain.MonteCarloSample) []domain.MonteCarloSample {
	out := make([]domain.MonteCarloSample, 0, len(samples))
	for _, s := range samples {
		if !s.Failed() && s.Metrics != nil {
			out = append(out, s)
		}
	}
	return out
}
