package harmonic

import (
	"cmp"
	"math"
	"slices"

	"github.com/RyanBlaney/sonido-bench/algorithms/common"
	"github.com/RyanBlaney/sonido-bench/algorithms/spectral"
	"github.com/RyanBlaney/sonido-bench/algorithms/windowing"
)

// SortingMode orders detected tones
type SortingMode string

const (
	SortIncreasingFrequencies SortingMode = "increasing_frequencies"
	SortDecreasingAmplitudes  SortingMode = "decreasing_amplitudes"
)

// Valid reports whether m is a known sorting mode
func (m SortingMode) Valid() bool {
	return m == SortIncreasingFrequencies || m == SortDecreasingAmplitudes
}

// DefaultToneWindow is the window used when tones are detected straight from samples
const DefaultToneWindow = windowing.Hann

// WaveformTone is a detected spectral peak
type WaveformTone struct {
	Frequency    float64 `json:"frequency" yaml:"frequency"`
	Amplitude    float64 `json:"amplitude" yaml:"amplitude"`
	PhaseRadians float64 `json:"phase_radians" yaml:"phase_radians"`
}

// PhaseDegrees returns the tone phase in degrees
func (t WaveformTone) PhaseDegrees() float64 {
	return t.PhaseRadians * 180 / math.Pi
}

// MultipleTonesProcessingResult holds the tones in the requested order
type MultipleTonesProcessingResult struct {
	DetectedTones []WaveformTone         `json:"detected_tones" yaml:"detected_tones"`
	AmplitudeType spectral.AmplitudeType `json:"amplitude_type" yaml:"amplitude_type"`
}

// ToneDetector finds local maxima of an amplitude spectrum above a threshold
type ToneDetector struct {
	engine *spectral.AmplitudePhase
	refine bool
}

// ToneDetectorOption configures a ToneDetector
type ToneDetectorOption func(*ToneDetector)

// WithPeakRefinement enables parabolic interpolation of peak frequency and amplitude
// between neighbouring bins
func WithPeakRefinement() ToneDetectorOption {
	return func(d *ToneDetector) {
		d.refine = true
	}
}

// NewToneDetector creates a new multi-tone detector
func NewToneDetector(opts ...ToneDetectorOption) *ToneDetector {
	d := &ToneDetector{
		engine: spectral.NewAmplitudePhase(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type peak struct {
	bin       int
	frequency float64
	amplitude float64
}

// Detect scans spectrum for tones. threshold is a linear amplitude in the
// spectrum's amplitude type; maxTones of 0 keeps every peak. No peak above the
// threshold yields an empty result, not an error.
func (d *ToneDetector) Detect(spectrum *spectral.AmplitudePhaseSpectrum, threshold float64, maxTones int, sorting SortingMode) (*MultipleTonesProcessingResult, error) {
	const op = "multiple tones"
	if err := validateSpectrum(op, spectrum); err != nil {
		return nil, err
	}
	if math.IsNaN(threshold) || threshold < 0 {
		return nil, common.InvalidArgument(op, "threshold must be non-negative, got %v", threshold)
	}
	if maxTones < 0 {
		return nil, common.InvalidArgument(op, "max tones must be non-negative, got %d", maxTones)
	}
	if !sorting.Valid() {
		return nil, common.InvalidArgument(op, "unknown sorting mode %q", sorting)
	}

	amplitudes := spectrum.LinearAmplitudes()
	peaks := d.findPeaks(spectrum, amplitudes, threshold)

	// Rank by amplitude, lower frequency first on ties
	slices.SortStableFunc(peaks, func(a, b peak) int {
		if c := cmp.Compare(b.amplitude, a.amplitude); c != 0 {
			return c
		}
		return cmp.Compare(a.frequency, b.frequency)
	})

	if maxTones > 0 && len(peaks) > maxTones {
		peaks = peaks[:maxTones]
	}

	if sorting == SortIncreasingFrequencies {
		slices.SortStableFunc(peaks, func(a, b peak) int {
			return cmp.Compare(a.frequency, b.frequency)
		})
	}

	tones := make([]WaveformTone, len(peaks))
	for i, p := range peaks {
		tones[i] = WaveformTone{
			Frequency:    p.frequency,
			Amplitude:    p.amplitude,
			PhaseRadians: spectrum.PhaseRadians(p.bin),
		}
	}

	return &MultipleTonesProcessingResult{
		DetectedTones: tones,
		AmplitudeType: spectrum.AmplitudeType,
	}, nil
}

// DetectFromWaveform computes a linear, radian spectrum with DefaultToneWindow and
// detects tones on it. Both the spectrum and the tones are returned.
func (d *ToneDetector) DetectFromWaveform(
	samples []float64,
	samplingPeriod float64,
	amplitudeType spectral.AmplitudeType,
	threshold float64,
	maxTones int,
	sorting SortingMode,
) (*spectral.AmplitudePhaseSpectrum, *MultipleTonesProcessingResult, error) {
	spectrum, err := d.engine.Process(samples, samplingPeriod, false, amplitudeType, spectral.PhaseRadian, DefaultToneWindow)
	if err != nil {
		return nil, nil, err
	}

	result, err := d.Detect(spectrum, threshold, maxTones, sorting)
	if err != nil {
		return nil, nil, err
	}
	return spectrum, result, nil
}

// findPeaks returns the bins strictly greater than both neighbours and at or
// above threshold
func (d *ToneDetector) findPeaks(spectrum *spectral.AmplitudePhaseSpectrum, amplitudes []float64, threshold float64) []peak {
	var peaks []peak

	for i := 1; i < len(amplitudes)-1; i++ {
		if amplitudes[i] <= amplitudes[i-1] || amplitudes[i] <= amplitudes[i+1] {
			continue
		}
		if amplitudes[i] < threshold {
			continue
		}

		p := peak{
			bin:       i,
			frequency: spectrum.Frequency(i),
			amplitude: amplitudes[i],
		}
		if d.refine {
			p = refinePeak(spectrum, amplitudes, p)
		}
		peaks = append(peaks, p)
	}

	return peaks
}

// refinePeak refines a peak location using parabolic interpolation
func refinePeak(spectrum *spectral.AmplitudePhaseSpectrum, amplitudes []float64, p peak) peak {
	offset, value, ok := common.ParabolicVertex(amplitudes[p.bin-1], amplitudes[p.bin], amplitudes[p.bin+1])
	if !ok {
		return p
	}

	p.frequency = spectrum.F0 + (float64(p.bin)+offset)*spectrum.DF
	p.amplitude = value
	return p
}

func validateSpectrum(op string, spectrum *spectral.AmplitudePhaseSpectrum) error {
	if spectrum == nil {
		return common.InvalidArgument(op, "spectrum is required")
	}
	if len(spectrum.Amplitudes) == 0 {
		return common.InvalidArgument(op, "spectrum has no amplitudes")
	}
	if len(spectrum.Amplitudes) != len(spectrum.Phases) {
		return common.InvalidArgument(op, "spectrum has %d amplitudes but %d phases",
			len(spectrum.Amplitudes), len(spectrum.Phases))
	}
	if !common.IsFinite(spectrum.DF) || spectrum.DF <= 0 {
		return common.InvalidArgument(op, "spectrum frequency step must be positive, got %v", spectrum.DF)
	}
	if !spectrum.AmplitudeType.Valid() {
		return common.InvalidArgument(op, "unknown amplitude type %q", spectrum.AmplitudeType)
	}
	if !spectrum.PhaseUnit.Valid() {
		return common.InvalidArgument(op, "unknown phase unit %q", spectrum.PhaseUnit)
	}
	return nil
}
