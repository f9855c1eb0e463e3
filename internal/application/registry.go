// Package application wires the tally and conversion building blocks
// into usable workflows: registries that construct engines by name,
// a YAML configuration document for method suites, and a concurrent
// suite runner.
package application

import (
	"sort"
	"sync"

	"github.com/ahrav/go-tally/infrastructure/convert"
	"github.com/ahrav/go-tally/infrastructure/tallies"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

// Verify interface compliance at compile time.
var (
	_ ports.TallyRegistry    = (*DefaultTallyRegistry)(nil)
	_ ports.StrategyRegistry = (*DefaultStrategyRegistry)(nil)
)

// DefaultTallyRegistry implements ports.TallyRegistry with a factory
// map guarded by an RWMutex. It comes pre-loaded with the five built-in
// methods and supports dynamic registration of additional ones.
type DefaultTallyRegistry struct {
	// factories maps method names to their factory functions.
	factories map[string]ports.TallyFactory
	// mu protects concurrent access to the factories map.
	mu sync.RWMutex
}

// NewDefaultTallyRegistry creates a tally registry with the standard
// methods pre-registered: plurality, irv, pairwise, star, and approval.
func NewDefaultTallyRegistry() *DefaultTallyRegistry {
	r := &DefaultTallyRegistry{factories: make(map[string]ports.TallyFactory)}

	r.factories[tallies.MethodPlurality] = tallies.CreatePlurality
	r.factories[tallies.MethodIRV] = tallies.CreateIRV
	r.factories[tallies.MethodPairwise] = tallies.CreatePairwise
	r.factories[tallies.MethodSTAR] = tallies.CreateSTAR
	r.factories[tallies.MethodApproval] = tallies.CreateApproval

	return r
}

// CreateTally instantiates the named method with the given
// configuration. An unknown method is a configuration error, reported
// before any ballot is touched.
func (r *DefaultTallyRegistry) CreateTally(method string, config map[string]any) (ports.Tally, error) {
	r.mu.RLock()
	factory, exists := r.factories[method]
	r.mu.RUnlock()

	if !exists {
		return nil, domain.NewConfigError(method, "unsupported tally method", domain.ErrInvalidConfiguration)
	}
	if config == nil {
		config = make(map[string]any)
	}

	tally, err := factory(config)
	if err != nil {
		return nil, err
	}
	if err := tally.Validate(); err != nil {
		return nil, err
	}
	return tally, nil
}

// RegisterTally adds or replaces a factory for the named method.
func (r *DefaultTallyRegistry) RegisterTally(method string, factory ports.TallyFactory) error {
	if method == "" {
		return domain.NewConfigError("registry", "method name cannot be empty", domain.ErrInvalidConfiguration)
	}
	if factory == nil {
		return domain.NewConfigError(method, "factory cannot be nil", domain.ErrInvalidConfiguration)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[method] = factory
	return nil
}

// ListTallies returns the registered method names in sorted order.
func (r *DefaultTallyRegistry) ListTallies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultStrategyRegistry implements ports.StrategyRegistry with the
// same factory-map shape as the tally registry.
type DefaultStrategyRegistry struct {
	factories map[string]ports.StrategyFactory
	mu        sync.RWMutex
}

// NewDefaultStrategyRegistry creates a strategy registry with the
// built-in conversions pre-registered.
func NewDefaultStrategyRegistry() *DefaultStrategyRegistry {
	r := &DefaultStrategyRegistry{factories: make(map[string]ports.StrategyFactory)}

	r.factories[convert.StrategyFavoriteViableHalf] = convert.CreateFavoriteViableHalf
	r.factories[convert.StrategyAllRankedApproved] = convert.CreateAllRankedApproved
	r.factories[convert.StrategyLeastApprovalFirst] = convert.CreateLeastApprovalFirst
	r.factories[convert.StrategyRatingsFromRanks] = convert.CreateRatingsFromRanks
	r.factories[convert.StrategyRanksFromRatings] = convert.CreateRanksFromRatings

	return r
}

// CreateStrategy instantiates the named strategy with the given
// configuration.
func (r *DefaultStrategyRegistry) CreateStrategy(name string, config map[string]any) (ports.ConversionStrategy, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, domain.NewConfigError(name, "unsupported conversion strategy", domain.ErrInvalidConfiguration)
	}
	if config == nil {
		config = make(map[string]any)
	}

	strategy, err := factory(config)
	if err != nil {
		return nil, err
	}
	if err := strategy.Validate(); err != nil {
		return nil, err
	}
	return strategy, nil
}

// RegisterStrategy adds or replaces a factory for the named strategy.
func (r *DefaultStrategyRegistry) RegisterStrategy(name string, factory ports.StrategyFactory) error {
	if name == "" {
		return domain.NewConfigError("registry", "strategy name cannot be empty", domain.ErrInvalidConfiguration)
	}
	if factory == nil {
		return domain.NewConfigError(name, "factory cannot be nil", domain.ErrInvalidConfiguration)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
	return nil
}

// ListStrategies returns the registered strategy names in sorted order.
func (r *DefaultStrategyRegistry) ListStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
