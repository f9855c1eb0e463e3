package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/infrastructure/tallies"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/testutils"
)

func TestTracingTallyPassesThroughResult(t *testing.T) {
	wrapped := NewTracingTally(tallies.NewIRV())

	res, err := wrapped.Tally(context.Background(), testutils.TennesseeRanked())
	require.NoError(t, err)
	assert.Equal(t, []string{"Knox"}, res.WinnerTokens())
	assert.Equal(t, "irv", wrapped.Name())
}

func TestTracingTallyPassesThroughError(t *testing.T) {
	wrapped := NewTracingTally(tallies.NewIRV())

	_, err := wrapped.Tally(context.Background(), &domain.Election{})

	var ce *domain.ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestWithTracingWrapsTally(t *testing.T) {
	wrapped := WithTracing()(tallies.NewPlurality())
	assert.IsType(t, (*TracingTally)(nil), wrapped)
}
