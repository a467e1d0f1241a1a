package windowing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-bench/algorithms/common"
)

func TestCoefficientsLength(t *testing.T) {
	for _, w := range Windows() {
		coeffs, err := Coefficients(w, 64)
		require.NoError(t, err, w)
		assert.Len(t, coeffs, 64, w)
		assert.True(t, common.AllFinite(coeffs), w)
	}
}

func TestCoefficientsRejectsNonPositiveLength(t *testing.T) {
	for _, length := range []int{0, -3} {
		_, err := Coefficients(Hann, length)
		assert.ErrorIs(t, err, common.ErrInvalidArgument)
	}

	_, err := Coefficients(ProcessingWindow("parzen"), 16)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestLowSideLobeFiveSamples(t *testing.T) {
	coeffs, err := Coefficients(LowSideLobe, 5)
	require.NoError(t, err)

	want := []float64{2.173e-5, 0.05895034829, 0.74907683171, 0.74907683171, 0.05895034829}
	for i := range want {
		assert.InDelta(t, want[i], coeffs[i], 1e-9, "index %d", i)
	}
}

func TestPeriodicSymmetry(t *testing.T) {
	const n = 32
	for _, w := range Windows() {
		coeffs, err := Coefficients(w, n)
		require.NoError(t, err)
		for i := 1; i < n; i++ {
			assert.InDelta(t, coeffs[i], coeffs[n-i], 1e-12, "%s index %d", w, i)
		}
	}
}

func TestGainsMatchLongWindows(t *testing.T) {
	const n = 8192
	for _, w := range Windows() {
		cfg := DefaultWindowConfig(n)
		cfg.Type = w
		window, err := Generate(cfg)
		require.NoError(t, err)

		assert.InEpsilon(t, common.Mean(window.Coefficients), window.CoherentGain, 1e-3, w)
		assert.InEpsilon(t, common.MeanSquare(window.Coefficients), window.PowerGain, 1e-3, w)
		assert.InEpsilon(t, window.PowerGain/(window.CoherentGain*window.CoherentGain), window.ENBW, 1e-12, w)
	}
}

func TestKnownGains(t *testing.T) {
	cases := []struct {
		window   ProcessingWindow
		coherent float64
		enbw     float64
	}{
		{Rectangular, 1.0, 1.0},
		{Hann, 0.5, 1.5},
		{Hamming, 0.54, 1.3628},
		{Blackman, 0.42, 1.7268},
		{BlackmanHarris, 0.35875, 2.0044},
		{FlatTop, 0.21557895, 3.7702},
	}
	for _, tc := range cases {
		props, err := PropertiesOf(tc.window)
		require.NoError(t, err)
		assert.InDelta(t, tc.coherent, props.CoherentGain, 1e-9, tc.window)
		assert.InDelta(t, tc.enbw, props.ENBW, 1e-3, tc.window)
	}
}

func TestTukeyLimits(t *testing.T) {
	hann, err := Coefficients(Hann, 16)
	require.NoError(t, err)

	tukey, err := Generate(&WindowConfig{Type: Tukey, Size: 16, Alpha: 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, hann, tukey.Coefficients, 1e-12)
	assert.InDelta(t, 0.5, tukey.CoherentGain, 1e-12)

	flat, err := Generate(&WindowConfig{Type: Tukey, Size: 16, Alpha: 0})
	require.NoError(t, err)
	for _, c := range flat.Coefficients {
		assert.Equal(t, 1.0, c)
	}

	_, err = Generate(&WindowConfig{Type: Tukey, Size: 16, Alpha: 1.5})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	_, err = Generate(&WindowConfig{Type: Kaiser, Size: 16, Beta: -1})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestKaiserZeroBetaIsRectangular(t *testing.T) {
	window, err := Generate(&WindowConfig{Type: Kaiser, Size: 8, Beta: 0})
	require.NoError(t, err)
	for _, c := range window.Coefficients {
		assert.InDelta(t, 1.0, c, 1e-12)
	}
	assert.InDelta(t, 1.0, window.CoherentGain, 1e-12)
}

func TestApply(t *testing.T) {
	window, err := Generate(DefaultWindowConfig(4))
	require.NoError(t, err)

	signal := []float64{2, 2, 2, 2}
	windowed, err := window.Apply(signal)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1, 2, 1}, windowed, 1e-12)
	assert.Equal(t, []float64{2, 2, 2, 2}, signal)

	require.NoError(t, window.ApplyInPlace(signal))
	assert.InDeltaSlice(t, windowed, signal, 1e-12)

	_, err = window.Apply([]float64{1})
	assert.Error(t, err)
}

func TestParseProcessingWindow(t *testing.T) {
	w, err := ParseProcessingWindow("Low-Side-Lobe")
	require.NoError(t, err)
	assert.Equal(t, LowSideLobe, w)

	w, err = ParseProcessingWindow("blackman harris")
	require.NoError(t, err)
	assert.Equal(t, BlackmanHarris, w)

	_, err = ParseProcessingWindow("gaussian")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestBesselI0(t *testing.T) {
	assert.InDelta(t, 1.0, besselI0(0), 1e-15)
	assert.InEpsilon(t, 1.2660658777520082, besselI0(1), 1e-12)
	assert.InEpsilon(t, 2815.716628466254, besselI0(10), 1e-10)
	assert.False(t, math.IsInf(besselI0(50), 0))
}
