package common

import "math"

// Deterministic test signals used for bench fixtures and the generate command

// SampleCount returns the number of samples covering duration at sampleRate
func SampleCount(sampleRate, duration float64) int {
	if sampleRate <= 0 || duration <= 0 {
		return 0
	}
	return int(math.Round(sampleRate * duration))
}

// Sine generates amplitude*sin(2*pi*frequency*t) starting at t = 0
func Sine(frequency, amplitude, sampleRate, duration float64) []float64 {
	n := SampleCount(sampleRate, duration)
	signal := make([]float64, n)
	for i := range n {
		signal[i] = amplitude * math.Sin(2*math.Pi*frequency*float64(i)/sampleRate)
	}
	return signal
}

// Square generates a square wave alternating between +amplitude and -amplitude.
// Each period starts high and stays high for dutyCycle of the period.
func Square(frequency, amplitude, dutyCycle, sampleRate, duration float64) []float64 {
	return SquareLevels(frequency, -amplitude, amplitude, dutyCycle, sampleRate, duration)
}

// SquareLevels generates a square wave between the low and high levels
func SquareLevels(frequency, low, high, dutyCycle, sampleRate, duration float64) []float64 {
	n := SampleCount(sampleRate, duration)
	signal := make([]float64, n)
	for i := range n {
		frac := math.Mod(frequency*float64(i)/sampleRate, 1.0)
		if frac < dutyCycle {
			signal[i] = high
		} else {
			signal[i] = low
		}
	}
	return signal
}

// Impulse returns a length-n buffer holding 1 at index and 0 elsewhere
func Impulse(n, index int) []float64 {
	signal := make([]float64, n)
	if index >= 0 && index < n {
		signal[index] = 1.0
	}
	return signal
}
