package convert

import (
	"github.com/ahrav/go-tally/internal/ports"
)

// CreateFavoriteViableHalf builds the strategic ranked-to-approval
// conversion from a configuration map. The strategy takes no
// parameters; the map is accepted for factory signature uniformity.
func CreateFavoriteViableHalf(config map[string]any) (ports.ConversionStrategy, error) {
	return NewFavoriteViableHalf(), nil
}

// CreateAllRankedApproved builds the rank-as-approval conversion from a
// configuration map.
func CreateAllRankedApproved(config map[string]any) (ports.ConversionStrategy, error) {
	return NewAllRankedApproved(), nil
}

// CreateLeastApprovalFirst builds the approval-to-ranked conversion
// from a configuration map.
func CreateLeastApprovalFirst(config map[string]any) (ports.ConversionStrategy, error) {
	return NewLeastApprovalFirst(), nil
}

// CreateRatingsFromRanks builds the rank-to-rating conversion from a
// configuration map, overriding defaults with any provided values.
func CreateRatingsFromRanks(config map[string]any) (ports.ConversionStrategy, error) {
	c := DefaultRatingsFromRanksConfig()

	if v, ok := config["max_rating"]; ok {
		switch n := v.(type) {
		case int:
			c.MaxRating = n
		case float64:
			c.MaxRating = int(n)
		}
	}

	return NewRatingsFromRanks(c)
}

// CreateRanksFromRatings builds the rating-to-rank conversion from a
// configuration map.
func CreateRanksFromRatings(config map[string]any) (ports.ConversionStrategy, error) {
	return NewRanksFromRatings(), nil
}
