package tallies

import (
	"github.com/ahrav/go-tally/internal/ports"
)

// CreatePlurality builds the plurality tally from a configuration map.
// The method takes no parameters; the map is accepted for factory
// signature uniformity.
func CreatePlurality(config map[string]any) (ports.Tally, error) {
	return NewPlurality(), nil
}

// CreateIRV builds the ranked-elimination tally from a configuration map.
func CreateIRV(config map[string]any) (ports.Tally, error) {
	return NewIRV(), nil
}

// CreatePairwise builds the pairwise tally from a configuration map.
func CreatePairwise(config map[string]any) (ports.Tally, error) {
	return NewPairwise(), nil
}

// CreateSTAR builds the score-runoff tally from a configuration map,
// overriding defaults with any provided values.
func CreateSTAR(config map[string]any) (ports.Tally, error) {
	starConfig := DefaultSTARConfig()

	if v, ok := config["default_max_rating"]; ok {
		switch n := v.(type) {
		case int:
			starConfig.DefaultMaxRating = n
		case float64:
			starConfig.DefaultMaxRating = int(n)
		}
	}

	return NewSTAR(starConfig)
}

// CreateApproval builds the approval tally from a configuration map,
// overriding defaults with any provided values.
func CreateApproval(config map[string]any) (ports.Tally, error) {
	approvalConfig := DefaultApprovalConfig()

	if mode, ok := config["mode"].(string); ok {
		approvalConfig.Mode = mode
	}
	if strategy, ok := config["strategy"].(string); ok {
		approvalConfig.Strategy = strategy
	}

	return NewApproval(approvalConfig)
}
