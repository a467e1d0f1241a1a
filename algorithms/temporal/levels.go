package temporal

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-bench/algorithms/common"
)

// LevelMethod selects how the high and low state levels of a pulse train are estimated
type LevelMethod string

const (
	LevelsHistogram LevelMethod = "histogram"
	LevelsPeak      LevelMethod = "peak"
)

// DefaultHistogramSize is the bin count used when none is configured
const DefaultHistogramSize = 256

// PercentLevelsSettings configures level estimation for relative reference levels
type PercentLevelsSettings struct {
	Method        LevelMethod `json:"method" yaml:"method"`
	HistogramSize int         `json:"histogram_size" yaml:"histogram_size"`
}

// DefaultPercentLevelsSettings returns histogram estimation with DefaultHistogramSize bins
func DefaultPercentLevelsSettings() *PercentLevelsSettings {
	return &PercentLevelsSettings{
		Method:        LevelsHistogram,
		HistogramSize: DefaultHistogramSize,
	}
}

// Estimator returns the LevelEstimator selected by the settings
func (s *PercentLevelsSettings) Estimator() (LevelEstimator, error) {
	const op = "level estimation"
	switch s.Method {
	case LevelsHistogram:
		if s.HistogramSize < 2 {
			return nil, common.InvalidArgument(op, "histogram size must be at least 2, got %d", s.HistogramSize)
		}
		return &HistogramLevels{Bins: s.HistogramSize}, nil
	case LevelsPeak:
		return &PeakLevels{}, nil
	default:
		return nil, common.InvalidArgument(op, "unknown level method %q", s.Method)
	}
}

// Levels is an estimated pair of state levels
type Levels struct {
	High float64 `json:"high" yaml:"high"`
	Low  float64 `json:"low" yaml:"low"`
}

// Amplitude returns High - Low
func (l Levels) Amplitude() float64 {
	return l.High - l.Low
}

// At returns the level sitting percent of the way from Low to High
func (l Levels) At(percent float64) float64 {
	return l.Low + percent/100*l.Amplitude()
}

// LevelEstimator estimates the high and low state levels of a waveform
type LevelEstimator interface {
	EstimateLevels(samples []float64) (Levels, error)
}

// PeakLevels uses the waveform minimum and maximum
type PeakLevels struct{}

// EstimateLevels returns the sample extremes
func (p *PeakLevels) EstimateLevels(samples []float64) (Levels, error) {
	if len(samples) == 0 {
		return Levels{}, common.InvalidArgument("peak levels", "samples must not be empty")
	}
	if !common.AllFinite(samples) {
		return Levels{}, common.InvalidArgument("peak levels", "samples must be finite")
	}
	levels := Levels{High: floats.Max(samples), Low: floats.Min(samples)}
	if levels.Amplitude() <= 0 {
		return Levels{}, common.InvalidArgument("peak levels", "waveform is flat at %v", levels.High)
	}
	return levels, nil
}

// HistogramLevels splits the amplitude histogram at the midpoint of the sample
// range and takes the most populated bin of each half as a state level. The
// level is the mean of the samples in that bin, so ideal two-level signals read
// their exact levels regardless of bin width.
type HistogramLevels struct {
	Bins int
}

// EstimateLevels returns the modal levels of the lower and upper halves
func (h *HistogramLevels) EstimateLevels(samples []float64) (Levels, error) {
	const op = "histogram levels"
	if len(samples) == 0 {
		return Levels{}, common.InvalidArgument(op, "samples must not be empty")
	}
	if !common.AllFinite(samples) {
		return Levels{}, common.InvalidArgument(op, "samples must be finite")
	}
	if h.Bins < 2 {
		return Levels{}, common.InvalidArgument(op, "histogram size must be at least 2, got %d", h.Bins)
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi <= lo {
		return Levels{}, common.InvalidArgument(op, "waveform is flat at %v", lo)
	}

	dividers := make([]float64, h.Bins+1)
	floats.Span(dividers, lo, hi)
	// stat.Histogram requires every sample strictly below the last divider
	dividers[h.Bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	half := h.Bins / 2
	lowBin := modalBin(counts[:half], 0)
	highBin := modalBin(counts[half:], half)

	return Levels{
		High: binMean(sorted, dividers, highBin),
		Low:  binMean(sorted, dividers, lowBin),
	}, nil
}

// modalBin returns offset plus the index of the largest count, the first on ties
func modalBin(counts []float64, offset int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best + offset
}

// binMean averages the sorted samples falling in [dividers[bin], dividers[bin+1])
func binMean(sorted, dividers []float64, bin int) float64 {
	lower, upper := dividers[bin], dividers[bin+1]
	start, _ := slices.BinarySearch(sorted, lower)

	sum := 0.0
	count := 0
	for _, v := range sorted[start:] {
		if v >= upper {
			break
		}
		sum += v
		count++
	}
	if count == 0 {
		return (lower + upper) / 2
	}
	return sum / float64(count)
}
