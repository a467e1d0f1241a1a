package spectral

import (
	"math"
	"math/cmplx"
	"slices"

	"github.com/RyanBlaney/sonido-bench/algorithms/common"
	"github.com/RyanBlaney/sonido-bench/algorithms/windowing"
)

// AmplitudeType selects peak or RMS amplitude scaling
type AmplitudeType string

const (
	AmplitudePeak AmplitudeType = "peak"
	AmplitudeRMS  AmplitudeType = "rms"
)

// Valid reports whether t is a known amplitude type
func (t AmplitudeType) Valid() bool {
	return t == AmplitudePeak || t == AmplitudeRMS
}

// PhaseUnit selects the unit of reported phases
type PhaseUnit string

const (
	PhaseRadian PhaseUnit = "radian"
	PhaseDegree PhaseUnit = "degree"
)

// Valid reports whether u is a known phase unit
func (u PhaseUnit) Valid() bool {
	return u == PhaseRadian || u == PhaseDegree
}

// MinimumAmplitude clamps linear amplitudes before dB conversion (-240 dB)
const MinimumAmplitude = 1e-12

// AmplitudePhaseSpectrum is a single-sided spectrum. Amplitudes and Phases are
// parallel and ordered by frequency, bin i sitting at F0 + i*DF.
type AmplitudePhaseSpectrum struct {
	F0                float64       `json:"f0" yaml:"f0"`
	DF                float64       `json:"df" yaml:"df"`
	Amplitudes        []float64     `json:"amplitudes" yaml:"amplitudes"`
	Phases            []float64     `json:"phases" yaml:"phases"`
	AmplitudeType     AmplitudeType `json:"amplitude_type" yaml:"amplitude_type"`
	AmplitudeUnitIsDB bool          `json:"amplitude_unit_is_db" yaml:"amplitude_unit_is_db"`
	PhaseUnit         PhaseUnit     `json:"phase_unit" yaml:"phase_unit"`
}

// Len returns the number of bins
func (s *AmplitudePhaseSpectrum) Len() int {
	return len(s.Amplitudes)
}

// Frequency returns the frequency of bin i
func (s *AmplitudePhaseSpectrum) Frequency(i int) float64 {
	return s.F0 + float64(i)*s.DF
}

// Frequencies returns the frequency of every bin
func (s *AmplitudePhaseSpectrum) Frequencies() []float64 {
	freqs := make([]float64, len(s.Amplitudes))
	for i := range freqs {
		freqs[i] = s.Frequency(i)
	}
	return freqs
}

// LinearAmplitudes returns the amplitudes in linear units regardless of
// AmplitudeUnitIsDB
func (s *AmplitudePhaseSpectrum) LinearAmplitudes() []float64 {
	if !s.AmplitudeUnitIsDB {
		return slices.Clone(s.Amplitudes)
	}
	linear := make([]float64, len(s.Amplitudes))
	for i, db := range s.Amplitudes {
		linear[i] = DBToAmplitude(db)
	}
	return linear
}

// PhaseRadians returns the phase of bin i in radians
func (s *AmplitudePhaseSpectrum) PhaseRadians(i int) float64 {
	if s.PhaseUnit == PhaseDegree {
		return s.Phases[i] * math.Pi / 180
	}
	return s.Phases[i]
}

// PeakBin returns the index and value of the largest amplitude
func (s *AmplitudePhaseSpectrum) PeakBin() (int, float64) {
	if len(s.Amplitudes) == 0 {
		return -1, 0
	}
	idx := 0
	for i, a := range s.Amplitudes {
		if a > s.Amplitudes[idx] {
			idx = i
		}
	}
	return idx, s.Amplitudes[idx]
}

// AmplitudeToDB converts a linear amplitude to dB, clamped at MinimumAmplitude
func AmplitudeToDB(amplitude float64) float64 {
	return 20 * math.Log10(math.Max(amplitude, MinimumAmplitude))
}

// DBToAmplitude converts dB back to a linear amplitude
func DBToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}

// AmplitudePhase computes windowed single-sided amplitude/phase spectra
type AmplitudePhase struct {
	fft *FFT
}

// NewAmplitudePhase creates a new spectrum engine
func NewAmplitudePhase() *AmplitudePhase {
	return &AmplitudePhase{
		fft: NewFFT(),
	}
}

// Process windows samples, transforms them and scales the non-negative half.
//
// Peak scaling is 2/N and RMS scaling 2/(N*sqrt2), both divided by the window's
// coherent gain so a bin-centred tone reads its true amplitude. The zero-frequency
// bin gets half the factor since it has no mirror image.
func (a *AmplitudePhase) Process(
	samples []float64,
	samplingPeriod float64,
	amplitudeMustBeDB bool,
	amplitudeType AmplitudeType,
	phaseUnit PhaseUnit,
	window windowing.ProcessingWindow,
) (*AmplitudePhaseSpectrum, error) {
	const op = "amplitude/phase spectrum"
	if err := common.ValidateSamples(op, samples, samplingPeriod); err != nil {
		return nil, err
	}
	if !amplitudeType.Valid() {
		return nil, common.InvalidArgument(op, "unknown amplitude type %q", amplitudeType)
	}
	if !phaseUnit.Valid() {
		return nil, common.InvalidArgument(op, "unknown phase unit %q", phaseUnit)
	}

	cfg := windowing.DefaultWindowConfig(len(samples))
	cfg.Type = window
	w, err := windowing.Generate(cfg)
	if err != nil {
		return nil, err
	}

	windowed, err := w.Apply(samples)
	if err != nil {
		return nil, common.InvalidArgument(op, "%v", err)
	}

	n := len(samples)
	bins := a.fft.ComputeSingleSided(windowed)

	scale := 2.0 / (float64(n) * w.CoherentGain)
	if amplitudeType == AmplitudeRMS {
		scale /= math.Sqrt2
	}

	amplitudes := make([]float64, len(bins))
	phases := make([]float64, len(bins))
	for i, bin := range bins {
		factor := scale
		if i == 0 {
			factor /= 2
		}
		amplitudes[i] = cmplx.Abs(bin) * factor
		phases[i] = cmplx.Phase(bin)

		if amplitudeMustBeDB {
			amplitudes[i] = AmplitudeToDB(amplitudes[i])
		}
		if phaseUnit == PhaseDegree {
			phases[i] *= 180 / math.Pi
		}
	}

	return &AmplitudePhaseSpectrum{
		F0:                0,
		DF:                1.0 / (float64(n) * samplingPeriod),
		Amplitudes:        amplitudes,
		Phases:            phases,
		AmplitudeType:     amplitudeType,
		AmplitudeUnitIsDB: amplitudeMustBeDB,
		PhaseUnit:         phaseUnit,
	}, nil
}
