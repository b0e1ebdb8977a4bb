package reconcile

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{Counts: make(map[ActionType]int)}
}

// Add appends an action to the plan.
func (p *Plan) Add(action Action) {
	p.Actions = append(p.Actions, action)
	p.Counts[action.Type]++
}

// Count returns the number of planned actions of type t.
func (p *Plan) Count(t ActionType) int {
	return p.Counts[t]
}

// Apply executes the plan's actions in order. A failing action does not stop the
// ones after it; every failure is returned joined. Dry runs execute nothing.
func Apply(ctx context.Context, plan *Plan, exec Executor, opts Options) (executed int, err error) {
	if opts.DryRun || plan == nil {
		return 0, nil
	}

	var errs []error
	for _, action := range plan.Actions {
		if ctxErr := ctx.Err(); ctxErr != nil {
			errs = append(errs, ctxErr)
			break
		}
		if err := exec.Execute(ctx, action); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", action.Type, action.Key, err))
			continue
		}
		executed++
	}
	return executed, errors.Join(errs...)
}

// Gather runs the loaders concurrently and waits for all of them. The first error
// cancels the context handed to the others and is returned.
func Gather(ctx context.Context, loaders ...func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, load := range loaders {
		g.Go(func() error { return load(gctx) })
	}
	return g.Wait()
}
