package common

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisErrorMatchesSentinel(t *testing.T) {
	err := InvalidArgument("spectrum", "sampling period must be positive, got %v", -1.0)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.False(t, errors.Is(err, ErrInsufficientData))
	assert.Equal(t, "spectrum: sampling period must be positive, got -1", err.Error())

	wrapped := fmt.Errorf("run: %w", InsufficientData("pulse", "pulse 3 requested, 2 detected"))
	assert.True(t, errors.Is(wrapped, ErrInsufficientData))

	var analysisErr *AnalysisError
	require.True(t, errors.As(wrapped, &analysisErr))
	assert.Equal(t, ErrCodeInsufficientData, analysisErr.Code)
}

func TestValidateSamples(t *testing.T) {
	assert.NoError(t, ValidateSamples("op", []float64{1}, 1e-3))
	assert.ErrorIs(t, ValidateSamples("op", nil, 1e-3), ErrInvalidArgument)
	assert.ErrorIs(t, ValidateSamples("op", []float64{1}, 0), ErrInvalidArgument)
	assert.ErrorIs(t, ValidateSamples("op", []float64{1}, math.NaN()), ErrInvalidArgument)
	assert.ErrorIs(t, ValidateSamples("op", []float64{1}, math.Inf(1)), ErrInvalidArgument)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.ErrorIs(t, ValidateSamples("op", []float64{1, v, 2}, 1e-3), ErrInvalidArgument, v)
	}
}

func TestRelativeError(t *testing.T) {
	assert.InDelta(t, 0.01, RelativeError(1.01, 1), 1e-12)
	assert.InDelta(t, 0.5, RelativeError(-1, -2), 1e-12)
	assert.InDelta(t, 0.25, RelativeError(-0.25, 0), 1e-12)
}

func TestMeanAndRMS(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.InDelta(t, 5.5, Mean(data), 1e-12)
	assert.InDelta(t, math.Sqrt(38.5), RMS(data), 1e-12)
	assert.Zero(t, Mean(nil))
	assert.Zero(t, RMS(nil))
}

func TestCrossingIndex(t *testing.T) {
	assert.InDelta(t, 4.5, CrossingIndex(5, 0, 1, 0.5), 1e-12)
	assert.InDelta(t, 4.25, CrossingIndex(5, 1, -1, 0.5), 1e-12)
	assert.InDelta(t, 5.0, CrossingIndex(5, 2, 2, 2), 1e-12)
}

func TestParabolicVertex(t *testing.T) {
	// y = 4 - (x-0.25)^2 sampled at -1, 0, 1
	f := func(x float64) float64 { return 4 - (x-0.25)*(x-0.25) }
	offset, value, ok := ParabolicVertex(f(-1), f(0), f(1))
	require.True(t, ok)
	assert.InDelta(t, 0.25, offset, 1e-12)
	assert.InDelta(t, 4.0, value, 1e-12)

	_, value, ok = ParabolicVertex(1, 2, 3)
	assert.False(t, ok)
	assert.Equal(t, 2.0, value)
}

func TestSignals(t *testing.T) {
	assert.Equal(t, 4410, SampleCount(44100, 0.1))

	sine := Sine(440, 1, 44100, 0.1)
	require.Len(t, sine, 4410)
	assert.InDelta(t, 0.0, sine[0], 1e-12)

	square := Square(1, 1, 0.5, 1000, 2)
	require.Len(t, square, 2000)
	assert.Equal(t, 1.0, square[0])
	assert.Equal(t, 1.0, square[499])
	assert.Equal(t, -1.0, square[500])
	assert.Equal(t, 1.0, square[1000])

	impulse := Impulse(5, 2)
	assert.Equal(t, []float64{0, 0, 1, 0, 0}, impulse)
}
