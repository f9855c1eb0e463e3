package application

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

// TallyMiddleware wraps a tally with cross-cutting behavior such as
// metrics or tracing.
type TallyMiddleware func(ports.Tally) ports.Tally

// Suite runs a configured set of tally methods over one election
// concurrently. Engines are pure functions of the election, so the
// runs share the election without copying; conversions build their own
// elections.
type Suite struct {
	tallies     ports.TallyRegistry
	strategies  ports.StrategyRegistry
	middlewares []TallyMiddleware
}

// SuiteOption customizes suite construction.
type SuiteOption func(*Suite)

// WithMiddleware wraps every tally the suite runs, outermost last.
func WithMiddleware(mw ...TallyMiddleware) SuiteOption {
	return func(s *Suite) { s.middlewares = append(s.middlewares, mw...) }
}

// NewSuite creates a suite runner over the given registries.
func NewSuite(tallies ports.TallyRegistry, strategies ports.StrategyRegistry, opts ...SuiteOption) *Suite {
	s := &Suite{tallies: tallies, strategies: strategies}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MethodRun is the outcome of one configured method.
type MethodRun struct {
	// Method names the tally that produced the result.
	Method string

	// Conversion names the ballot conversion applied first, if any.
	Conversion string

	// Result is the computed outcome.
	Result domain.Result

	// ConversionNotices carries the assumptions the conversion made.
	// They must accompany the result wherever it is reported.
	ConversionNotices []domain.Notice
}

// Run executes every configured method concurrently and returns the
// outcomes in configuration order. The election is validated once up
// front; the first failing method cancels the remaining ones.
func (s *Suite) Run(ctx context.Context, cfg *SuiteConfig, e *domain.Election) ([]MethodRun, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	runs := make([]MethodRun, len(cfg.Methods))
	g, ctx := errgroup.WithContext(ctx)

	for i, mc := range cfg.Methods {
		g.Go(func() error {
			run, err := s.runMethod(ctx, mc, e)
			if err != nil {
				return err
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

// runMethod builds and executes a single configured method: optional
// conversion first, then the wrapped tally.
func (s *Suite) runMethod(ctx context.Context, mc MethodConfig, e *domain.Election) (MethodRun, error) {
	run := MethodRun{Method: mc.Method, Conversion: mc.Conversion}

	params, err := paramsToMap(mc.Parameters)
	if err != nil {
		return run, err
	}
	tally, err := s.tallies.CreateTally(mc.Method, params)
	if err != nil {
		return run, err
	}
	for _, mw := range s.middlewares {
		tally = mw(tally)
	}

	input := e
	if mc.Conversion != "" {
		convParams, err := paramsToMap(mc.ConversionParameters)
		if err != nil {
			return run, err
		}
		strategy, err := s.strategies.CreateStrategy(mc.Conversion, convParams)
		if err != nil {
			return run, err
		}
		converted, notes, err := strategy.Convert(ctx, e)
		if err != nil {
			return run, err
		}
		input = converted
		run.ConversionNotices = notes
	}

	result, err := tally.Tally(ctx, input)
	if err != nil {
		return run, err
	}
	run.Result = result
	return run, nil
}
