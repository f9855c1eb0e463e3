// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the tally, codec, and conversion
// implementations. These interfaces enable dependency inversion and make
// the system testable.
package ports

import (
	"context"

	"github.com/ahrav/go-tally/internal/domain"
)

// Tally computes an election result for one voting method. Implementations
// are stateless, deterministic, pure functions of the election and their
// configuration, and therefore safe for concurrent use. The election is
// read-only: a tally that needs transformed ballots must obtain a new
// election from a ConversionStrategy rather than mutate its input.
type Tally interface {
	// Name returns the unique method identifier, used for registry
	// lookups, metric labels, and span names.
	Name() string

	// Tally computes the result for the given election. The context
	// carries tracing metadata only; tally computation defines no
	// cancellation points.
	//
	// Errors follow the shared taxonomy: *domain.ConfigError before any
	// computation for invalid parameters or an empty candidate pool,
	// *domain.DataError for semantically inconsistent ballots. Estimation
	// conditions are not errors; they produce a complete result carrying
	// a disclaimer or warning notice.
	Tally(ctx context.Context, e *domain.Election) (domain.Result, error)

	// Validate checks that the tally's configuration is internally
	// consistent. It is called at construction and before execution.
	Validate() error
}

// ConversionStrategy transforms ballots from one expressive form to
// another, producing a new election and leaving the source untouched.
// Each documented conversion option is a separate implementation
// selectable by name, so new strategies can be added without modifying
// any tally.
type ConversionStrategy interface {
	// Name returns the strategy identifier used for registry lookups.
	Name() string

	// Convert builds a new election in the target ballot form. The
	// returned notices document every assumption the conversion made
	// and must accompany any result computed from the converted ballots.
	Convert(ctx context.Context, e *domain.Election) (*domain.Election, []domain.Notice, error)

	// Validate checks that the strategy's configuration is internally
	// consistent.
	Validate() error
}

// TallyFactory creates a tally from a flexible configuration map.
// The map is the boundary representation used by YAML method documents.
type TallyFactory func(config map[string]any) (Tally, error)

// StrategyFactory creates a conversion strategy from a flexible
// configuration map.
type StrategyFactory func(config map[string]any) (ConversionStrategy, error)

// TallyRegistry provides lookup and construction of tallies by method
// name. Implementations must be safe for concurrent use.
type TallyRegistry interface {
	// CreateTally instantiates the named method with the given
	// configuration.
	CreateTally(method string, config map[string]any) (Tally, error)

	// RegisterTally adds or replaces a factory for the named method.
	RegisterTally(method string, factory TallyFactory) error

	// ListTallies returns the registered method names in sorted order.
	ListTallies() []string
}

// StrategyRegistry provides lookup and construction of conversion
// strategies by name. Implementations must be safe for concurrent use.
type StrategyRegistry interface {
	// CreateStrategy instantiates the named strategy with the given
	// configuration.
	CreateStrategy(name string, config map[string]any) (ConversionStrategy, error)

	// RegisterStrategy adds or replaces a factory for the named strategy.
	RegisterStrategy(name string, factory StrategyFactory) error

	// ListStrategies returns the registered strategy names in sorted order.
	ListStrategies() []string
}

// MetricsCollector abstracts the metrics backend so middleware can be
// tested without a live Prometheus registry.
type MetricsCollector interface {
	// RecordTally records one tally invocation with its outcome status
	// and wall-clock duration in seconds.
	RecordTally(method, status string, seconds float64)
}
