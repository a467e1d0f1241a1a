package measurement

import (
	"slices"

	"github.com/RyanBlaney/sonido-bench/algorithms/common"
)

// Waveform is a uniformly sampled capture. Samples[i] was taken at
// T0 + i*SamplingPeriod seconds.
type Waveform struct {
	Samples        []float64 `json:"samples" yaml:"samples"`
	SamplingPeriod float64   `json:"sampling_period" yaml:"sampling_period"`
	T0             float64   `json:"t0" yaml:"t0"`
}

// NewWaveform copies samples into a validated Waveform
func NewWaveform(samples []float64, samplingPeriod, t0 float64) (*Waveform, error) {
	const op = "waveform"
	if err := common.ValidateSamples(op, samples, samplingPeriod); err != nil {
		return nil, err
	}
	if !common.IsFinite(t0) {
		return nil, common.InvalidArgument(op, "t0 must be finite, got %v", t0)
	}
	if !common.AllFinite(samples) {
		return nil, common.InvalidArgument(op, "samples must be finite")
	}
	return &Waveform{
		Samples:        slices.Clone(samples),
		SamplingPeriod: samplingPeriod,
		T0:             t0,
	}, nil
}

// Len returns the number of samples
func (w *Waveform) Len() int {
	return len(w.Samples)
}

// SamplingRate returns 1/SamplingPeriod in Hz
func (w *Waveform) SamplingRate() float64 {
	return 1 / w.SamplingPeriod
}

// Duration returns the time spanned by the samples, Len()*SamplingPeriod
func (w *Waveform) Duration() float64 {
	return float64(len(w.Samples)) * w.SamplingPeriod
}

// Time returns the timestamp of sample i
func (w *Waveform) Time(i int) float64 {
	return w.T0 + float64(i)*w.SamplingPeriod
}
