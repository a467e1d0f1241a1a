package temporal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-bench/algorithms/common"
	"github.com/RyanBlaney/sonido-bench/algorithms/windowing"
)

func TestDcRmsZeroWaveform(t *testing.T) {
	analyzer := NewDcRms()
	for _, w := range windowing.Windows() {
		result, err := analyzer.Process(make([]float64, 100), 1e-3, w)
		require.NoError(t, err, w)
		assert.Zero(t, result.DCValue, w)
		assert.Zero(t, result.RMSValue, w)
	}
}

func TestDcRmsLowSideLobeImpulse(t *testing.T) {
	analyzer := NewDcRms()

	result, err := analyzer.Process(common.Impulse(5, 0), 1.0, windowing.LowSideLobe)
	require.NoError(t, err)
	assert.InDelta(t, 13.45e-6, result.DCValue, 0.05e-6)
	assert.InDelta(t, 20.20e-6, result.RMSValue, 0.05e-6)

	result, err = analyzer.Process(common.Impulse(5, 1), 1.0, windowing.LowSideLobe)
	require.NoError(t, err)
	assert.InEpsilon(t, 0.03648, result.DCValue, 1e-3)
	assert.InEpsilon(t, 0.0548, result.RMSValue, 1e-3)

	for _, index := range []int{2, 3} {
		result, err = analyzer.Process(common.Impulse(5, index), 1.0, windowing.LowSideLobe)
		require.NoError(t, err)
		assert.InEpsilon(t, 0.46352, result.DCValue, 1e-3, "index %d", index)
		assert.InEpsilon(t, 0.69635, result.RMSValue, 1e-3, "index %d", index)
	}
}

func TestDcRmsRectangular(t *testing.T) {
	samples := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	result, err := NewDcRms().Process(samples, 0.1, windowing.Rectangular)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.DCValue, 5.5)
	assert.GreaterOrEqual(t, result.RMSValue, 6.2)
	assert.InDelta(t, 5.5, result.DCValue, 1e-12)
	assert.InDelta(t, common.RMS(samples), result.RMSValue, 1e-12)
}

func TestDcRmsWindowedSineWithOffset(t *testing.T) {
	// 10 full periods of 0.5 + sin: windowed DC reads the offset, RMS sqrt(0.25 + 0.5)
	sine := common.Sine(10, 1, 1000, 1)
	samples := make([]float64, len(sine))
	for i, v := range sine {
		samples[i] = 0.5 + v
	}

	for _, w := range []windowing.ProcessingWindow{windowing.Hann, windowing.Hamming, windowing.BlackmanHarris} {
		result, err := NewDcRms().Process(samples, 1e-3, w)
		require.NoError(t, err)
		assert.InEpsilon(t, 0.5, result.DCValue, 1e-6, w)
		assert.InEpsilon(t, 0.8660254, result.RMSValue, 1e-2, w)
	}
}

func TestDcRmsValidation(t *testing.T) {
	analyzer := NewDcRms()

	_, err := analyzer.Process(nil, 1e-3, windowing.Hann)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = analyzer.Process([]float64{1, 2}, 0, windowing.Hann)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = analyzer.Process([]float64{1, 2}, -1, windowing.Hann)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = analyzer.Process([]float64{1, 2}, 1e-3, windowing.ProcessingWindow("bogus"))
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	w, err := windowing.Generate(windowing.DefaultWindowConfig(3))
	require.NoError(t, err)
	_, err = analyzer.ProcessWithWindow([]float64{1, 2}, w)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestDcRmsDeterministic(t *testing.T) {
	samples := common.Sine(3, 2, 100, 1)
	first, err := NewDcRms().Process(samples, 0.01, windowing.FlatTop)
	require.NoError(t, err)
	second, err := NewDcRms().Process(samples, 0.01, windowing.FlatTop)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDcRmsRejectsNonFiniteSamples(t *testing.T) {
	analyzer := NewDcRms()
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := analyzer.Process([]float64{1, v, 2}, 1e-3, windowing.Hann)
		assert.ErrorIs(t, err, common.ErrInvalidArgument, v)

		w, err := windowing.Generate(windowing.DefaultWindowConfig(3))
		require.NoError(t, err)
		_, err = analyzer.ProcessWithWindow([]float64{1, v, 2}, w)
		assert.ErrorIs(t, err, common.ErrInvalidArgument, v)
	}
}

func TestDcRmsWithWindowRejectsEmptySamples(t *testing.T) {
	_, err := NewDcRms().ProcessWithWindow(nil, &windowing.Window{})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = NewDcRms().ProcessWithWindow([]float64{1}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}
