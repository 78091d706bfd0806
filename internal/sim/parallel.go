package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Factory builds an independent simulator for one member of an ensemble.
type Factory func() (*Simulator, error)

// Ensemble runs the same seed system under several configs concurrently,
// each on its own universe.
type Ensemble struct {
	build Factory
}

func NewEnsemble(build Factory) *Ensemble {
	return &Ensemble{build: build}
}

// Run returns one result per config, in order.
func (e *Ensemble) Run(ctx context.Context, cfgs []Config) ([]*Result, error) {
	results := make([]*Result, len(cfgs))
	errs := make([]error, len(cfgs))

	var wg sync.WaitGroup
	for i, cfg := range cfgs {
		wg.Add(1)
		go func(idx int, cfg Config) {
			defer wg.Done()

			s, err := e.build()
			if err != nil {
				errs[idx] = fmt.Errorf("member %d: %w", idx, err)
				return
			}
			results[idx], err = s.Run(ctx, cfg)
			if err != nil {
				errs[idx] = fmt.Errorf("member %d: %w", idx, err)
			}
		}(i, cfg)
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}
