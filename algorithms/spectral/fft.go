package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the full complex spectrum of a real signal.
// go-dsp handles every length, including non powers of two (Bluestein).
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// ComputeSingleSided returns the bins strictly below Nyquist: (N+1)/2 bins for
// a length-N input. The remaining bins of a real signal are conjugate mirrors.
func (f *FFT) ComputeSingleSided(x []float64) []complex128 {
	full := f.Compute(x)
	return full[:SingleSidedBins(len(x))]
}

// SingleSidedBins returns the number of non-negative frequency bins reported for
// an n-sample transform
func SingleSidedBins(n int) int {
	return (n + 1) / 2
}
