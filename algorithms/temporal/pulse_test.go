package temporal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-bench/algorithms/common"
)

const pulseSampleRate = 1000.0

// 1 Hz, 50% duty, starts high: falling edges near 0.5, 1.5, 2.5 s and rising near 1, 2 s
func squareTrain() []float64 {
	return common.Square(1, 1, 0.5, pulseSampleRate, 3)
}

func relativeSettings(polarity Polarity, pulseNumber int) PulseSettings {
	settings := DefaultPulseSettings()
	settings.Polarity = polarity
	settings.ReferenceLevels = ReferenceLevels{High: 95, Middle: 50, Low: 5}
	settings.PulseNumber = pulseNumber
	return settings
}

func TestPulseHighPolarity(t *testing.T) {
	result, err := NewPulseAnalyzer().ProcessPulse(squareTrain(), 1/pulseSampleRate, relativeSettings(PolarityHigh, 1))
	require.NoError(t, err)

	assert.Equal(t, 1, result.PulseNumber)
	assert.InDelta(t, 1.25, result.PulseCenter, 0.01)
	assert.InEpsilon(t, 0.5, result.PulseDuration, 0.01)
	assert.InDelta(t, 0.9, result.RefLevelHigh, 1e-9)
	assert.InDelta(t, 0.0, result.RefLevelMiddle, 1e-9)
	assert.InDelta(t, -0.9, result.RefLevelLow, 1e-9)

	require.NotNil(t, result.Periodicity)
	assert.InEpsilon(t, 1.0, result.Periodicity.Period, 0.01)
	assert.InEpsilon(t, 1.0, result.Periodicity.Frequency(), 0.01)
	assert.InEpsilon(t, 0.5, result.Periodicity.DutyCycle, 0.01)
}

func TestPulseLowPolarity(t *testing.T) {
	result, err := NewPulseAnalyzer().ProcessPulse(squareTrain(), 1/pulseSampleRate, relativeSettings(PolarityLow, 1))
	require.NoError(t, err)

	assert.InDelta(t, 0.75, result.PulseCenter, 0.01)
	assert.InEpsilon(t, 0.5, result.PulseDuration, 0.01)
	require.NotNil(t, result.Periodicity)
	assert.InEpsilon(t, 1.0, result.Periodicity.Period, 0.01)
	assert.InEpsilon(t, 0.5, result.Periodicity.DutyCycle, 0.01)
}

func TestPulseAllPulses(t *testing.T) {
	analyzer := NewPulseAnalyzer()

	high, err := analyzer.Process(squareTrain(), 1/pulseSampleRate, relativeSettings(PolarityHigh, 0))
	require.NoError(t, err)
	require.Len(t, high, 2)
	assert.Equal(t, 2, high[1].PulseNumber)
	assert.InDelta(t, 2.25, high[1].PulseCenter, 0.01)
	// the last pulse borrows the preceding period
	require.NotNil(t, high[1].Periodicity)
	assert.InEpsilon(t, 1.0, high[1].Periodicity.Period, 0.01)

	low, err := analyzer.Process(squareTrain(), 1/pulseSampleRate, relativeSettings(PolarityLow, 0))
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.InDelta(t, 0.75, low[0].PulseCenter, 0.01)
	assert.InDelta(t, 1.75, low[1].PulseCenter, 0.01)
}

func TestPulseAbsoluteLevelsAndT0(t *testing.T) {
	samples := common.SquareLevels(1, 0, 5, 0.25, pulseSampleRate, 3)
	settings := PulseSettings{
		T0:              10,
		Polarity:        PolarityHigh,
		ReferenceLevels: ReferenceLevels{High: 4, Middle: 2.5, Low: 1},
		Unit:            ReferenceAbsolute,
		PulseNumber:     1,
		ExportMode:      ExportAll,
	}

	result, err := NewPulseAnalyzer().ProcessPulse(samples, 1/pulseSampleRate, settings)
	require.NoError(t, err)
	assert.InDelta(t, 11.125, result.PulseCenter, 0.01)
	assert.InEpsilon(t, 0.25, result.PulseDuration, 0.01)
	assert.Equal(t, 4.0, result.RefLevelHigh)
	require.NotNil(t, result.Periodicity)
	assert.InEpsilon(t, 0.25, result.Periodicity.DutyCycle, 0.01)
}

func TestPulsePeakLevelMethod(t *testing.T) {
	settings := relativeSettings(PolarityHigh, 1)
	settings.PercentLevels = &PercentLevelsSettings{Method: LevelsPeak}

	result, err := NewPulseAnalyzer().ProcessPulse(squareTrain(), 1/pulseSampleRate, settings)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, result.PulseCenter, 0.01)
	assert.InDelta(t, 0.9, result.RefLevelHigh, 1e-9)
}

func TestPulseRuntIsIgnored(t *testing.T) {
	// a runt reaches 0.6 between 10 and 20 and never reaches the high level
	samples := make([]float64, 50)
	for i := 10; i < 20; i++ {
		samples[i] = 0.6
	}
	for i := 30; i < 40; i++ {
		samples[i] = 1
	}
	settings := PulseSettings{
		Polarity:        PolarityHigh,
		ReferenceLevels: ReferenceLevels{High: 0.9, Middle: 0.5, Low: 0.1},
		Unit:            ReferenceAbsolute,
		ExportMode:      ExportIgnorePeriodicity,
	}

	results, err := NewPulseAnalyzer().Process(samples, 1, settings)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 34.5, results[0].PulseCenter, 1e-9)
	assert.InDelta(t, 10.0, results[0].PulseDuration, 1e-9)
	assert.Nil(t, results[0].Periodicity)
}

func TestPulseSinglePulsePeriodicity(t *testing.T) {
	// one low pulse between 0.5 and 1 s followed by a partial high state
	samples := common.Square(1, 1, 0.5, pulseSampleRate, 1.2)
	analyzer := NewPulseAnalyzer()

	_, err := analyzer.Process(samples, 1/pulseSampleRate, relativeSettings(PolarityHigh, 0))
	assert.ErrorIs(t, err, common.ErrInsufficientData)

	_, err = analyzer.Process(samples, 1/pulseSampleRate, relativeSettings(PolarityLow, 0))
	assert.ErrorIs(t, err, common.ErrInsufficientData)

	settings := relativeSettings(PolarityLow, 1)
	settings.ExportMode = ExportIgnorePeriodicity
	result, err := analyzer.ProcessPulse(samples, 1/pulseSampleRate, settings)
	require.NoError(t, err)
	assert.InEpsilon(t, 0.5, result.PulseDuration, 0.01)
	assert.Nil(t, result.Periodicity)
}

func TestPulseNumberBeyondDetected(t *testing.T) {
	_, err := NewPulseAnalyzer().Process(squareTrain(), 1/pulseSampleRate, relativeSettings(PolarityHigh, 3))
	assert.ErrorIs(t, err, common.ErrInsufficientData)

	_, err = NewPulseAnalyzer().Process(make([]float64, 100), 1/pulseSampleRate, PulseSettings{
		Polarity:        PolarityHigh,
		ReferenceLevels: ReferenceLevels{High: 0.9, Middle: 0.5, Low: 0.1},
		Unit:            ReferenceAbsolute,
		ExportMode:      ExportAll,
	})
	assert.ErrorIs(t, err, common.ErrInsufficientData)
}

func TestPulseValidation(t *testing.T) {
	mutate := func(fn func(*PulseSettings)) PulseSettings {
		s := relativeSettings(PolarityHigh, 1)
		fn(&s)
		return s
	}

	cases := []struct {
		name     string
		samples  []float64
		period   float64
		settings PulseSettings
	}{
		{"empty samples", nil, 1e-3, relativeSettings(PolarityHigh, 1)},
		{"zero sampling period", squareTrain(), 0, relativeSettings(PolarityHigh, 1)},
		{"nan t0", squareTrain(), 1e-3, mutate(func(s *PulseSettings) { s.T0 = math.NaN() })},
		{"unknown polarity", squareTrain(), 1e-3, mutate(func(s *PulseSettings) { s.Polarity = "both" })},
		{"unknown export mode", squareTrain(), 1e-3, mutate(func(s *PulseSettings) { s.ExportMode = "none" })},
		{"negative pulse number", squareTrain(), 1e-3, mutate(func(s *PulseSettings) { s.PulseNumber = -1 })},
		{"unordered levels", squareTrain(), 1e-3, mutate(func(s *PulseSettings) { s.ReferenceLevels.Middle = 95 })},
		{"percent above 100", squareTrain(), 1e-3, mutate(func(s *PulseSettings) { s.ReferenceLevels.High = 110 })},
		{"percent below 0", squareTrain(), 1e-3, mutate(func(s *PulseSettings) { s.ReferenceLevels.Low = -5 })},
		{"missing percent settings", squareTrain(), 1e-3, mutate(func(s *PulseSettings) { s.PercentLevels = nil })},
		{"bad histogram size", squareTrain(), 1e-3, mutate(func(s *PulseSettings) {
			s.PercentLevels = &PercentLevelsSettings{Method: LevelsHistogram, HistogramSize: 0}
		})},
		{"unknown unit", squareTrain(), 1e-3, mutate(func(s *PulseSettings) { s.Unit = "volts" })},
		{"flat waveform", make([]float64, 100), 1e-3, relativeSettings(PolarityHigh, 1)},
	}

	analyzer := NewPulseAnalyzer()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := analyzer.Process(tc.samples, tc.period, tc.settings)
			assert.ErrorIs(t, err, common.ErrInvalidArgument)
		})
	}

	_, err := analyzer.ProcessPulse(squareTrain(), 1e-3, relativeSettings(PolarityHigh, 0))
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestPulseDeterministic(t *testing.T) {
	analyzer := NewPulseAnalyzer()
	first, err := analyzer.Process(squareTrain(), 1/pulseSampleRate, relativeSettings(PolarityHigh, 0))
	require.NoError(t, err)
	second, err := analyzer.Process(squareTrain(), 1/pulseSampleRate, relativeSettings(PolarityHigh, 0))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPulseRejectsNonFiniteSamples(t *testing.T) {
	analyzer := NewPulseAnalyzer()
	peak := relativeSettings(PolarityHigh, 1)
	peak.PercentLevels = &PercentLevelsSettings{Method: LevelsPeak}
	absolute := relativeSettings(PolarityHigh, 1)
	absolute.Unit = ReferenceAbsolute
	absolute.ReferenceLevels = ReferenceLevels{High: 0.9, Middle: 0, Low: -0.9}
	absolute.PercentLevels = nil

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		samples := squareTrain()
		samples[1200] = v

		for name, settings := range map[string]PulseSettings{
			"histogram": relativeSettings(PolarityHigh, 1),
			"peak":      peak,
			"absolute":  absolute,
		} {
			_, err := analyzer.Process(samples, 1e-3, settings)
			assert.ErrorIs(t, err, common.ErrInvalidArgument, "%s %v", name, v)
		}
	}
}
