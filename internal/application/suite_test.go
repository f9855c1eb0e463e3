package application

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
	"github.com/ahrav/go-tally/internal/testutils"
)

func newSuite(opts ...SuiteOption) *Suite {
	return NewSuite(NewDefaultTallyRegistry(), NewDefaultStrategyRegistry(), opts...)
}

func TestSuiteRunsAllMethods(t *testing.T) {
	doc := []byte(`
version: "1.0"
methods:
  - method: plurality
  - method: irv
  - method: pairwise
  - method: star
`)
	cfg, err := ParseSuiteConfig(doc)
	require.NoError(t, err)

	runs, err := newSuite().Run(context.Background(), cfg, testutils.TennesseeRanked())
	require.NoError(t, err)
	require.Len(t, runs, 4)

	// The same hundred ballots crown three different winners.
	assert.Equal(t, []string{"Memph"}, runs[0].Result.WinnerTokens())
	assert.Equal(t, []string{"Knox"}, runs[1].Result.WinnerTokens())
	assert.Equal(t, []string{"Nash"}, runs[2].Result.WinnerTokens())
	assert.Equal(t, []string{"Nash"}, runs[3].Result.WinnerTokens())

	for i, run := range runs {
		assert.Equal(t, cfg.Methods[i].Method, run.Method, "results keep configuration order")
		assert.Equal(t, run.Method, run.Result.Method())
	}
}

func TestSuiteAppliesConversion(t *testing.T) {
	doc := []byte(`
version: "1.0"
methods:
  - method: approval
    conversion: favorite_viable_half
`)
	cfg, err := ParseSuiteConfig(doc)
	require.NoError(t, err)

	runs, err := newSuite().Run(context.Background(), cfg, testutils.TennesseeRanked())
	require.NoError(t, err)
	require.Len(t, runs, 1)

	assert.Equal(t, "favorite_viable_half", runs[0].Conversion)
	require.NotEmpty(t, runs[0].ConversionNotices)
	assert.Equal(t, domain.NoticeDisclaimer, runs[0].ConversionNotices[0].Kind)
	assert.Equal(t, []string{"Nash"}, runs[0].Result.WinnerTokens())
}

func TestSuitePropagatesUnknownMethod(t *testing.T) {
	cfg := &SuiteConfig{
		Version: "1.0",
		Methods: []MethodConfig{{Method: "borda"}},
	}

	_, err := newSuite().Run(context.Background(), cfg, testutils.TennesseeRanked())

	var ce *domain.ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestSuiteValidatesElectionOnce(t *testing.T) {
	cfg := &SuiteConfig{
		Version: "1.0",
		Methods: []MethodConfig{{Method: "plurality"}},
	}
	bad := testutils.TennesseeRanked()
	bad.Ballots = append(bad.Ballots, testutils.RankedBallot(1, []string{"Springfield"}))

	_, err := newSuite().Run(context.Background(), cfg, bad)

	var de *domain.DataError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, domain.ErrUnknownCandidate)
}

func TestSuiteAppliesMiddleware(t *testing.T) {
	var wrapped atomic.Int32
	counting := func(next ports.Tally) ports.Tally {
		wrapped.Add(1)
		return next
	}

	cfg := &SuiteConfig{
		Version: "1.0",
		Methods: []MethodConfig{{Method: "plurality"}, {Method: "irv"}},
	}

	_, err := newSuite(WithMiddleware(counting)).Run(context.Background(), cfg, testutils.TennesseeRanked())
	require.NoError(t, err)
	assert.Equal(t, int32(2), wrapped.Load())
}
