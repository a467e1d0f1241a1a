package temporal

import (
	"math"

	"github.com/RyanBlaney/sonido-bench/algorithms/common"
)

// Polarity selects positive-going (high) or negative-going (low) pulses
type Polarity string

const (
	PolarityHigh Polarity = "high"
	PolarityLow  Polarity = "low"
)

// ReferenceLevelUnit tells whether reference levels are physical values or
// percentages of the estimated low-to-high amplitude
type ReferenceLevelUnit string

const (
	ReferenceAbsolute        ReferenceLevelUnit = "absolute"
	ReferenceRelativePercent ReferenceLevelUnit = "relative_percent"
)

// ExportMode controls whether periodicity is measured alongside each pulse
type ExportMode string

const (
	ExportAll               ExportMode = "all"
	ExportIgnorePeriodicity ExportMode = "ignore_waveform_periodicity_analysis"
)

// ReferenceLevels are the thresholds that delimit and time a pulse
type ReferenceLevels struct {
	High   float64 `json:"high" yaml:"high"`
	Middle float64 `json:"middle" yaml:"middle"`
	Low    float64 `json:"low" yaml:"low"`
}

// DefaultPercentReferenceLevels returns the 90/50/10 percent levels
func DefaultPercentReferenceLevels() ReferenceLevels {
	return ReferenceLevels{High: 90, Middle: 50, Low: 10}
}

// PulseSettings configures a pulse measurement
type PulseSettings struct {
	T0              float64                `json:"t0" yaml:"t0"`
	Polarity        Polarity               `json:"polarity" yaml:"polarity"`
	ReferenceLevels ReferenceLevels        `json:"reference_levels" yaml:"reference_levels"`
	Unit            ReferenceLevelUnit     `json:"reference_levels_unit" yaml:"reference_levels_unit"`
	PercentLevels   *PercentLevelsSettings `json:"percent_levels_settings,omitempty" yaml:"percent_levels_settings,omitempty"`
	// PulseNumber selects one pulse (1-based); 0 measures every pulse
	PulseNumber int        `json:"pulse_number" yaml:"pulse_number"`
	ExportMode  ExportMode `json:"export_mode" yaml:"export_mode"`
}

// DefaultPulseSettings measures every high pulse at 90/50/10 percent levels
// estimated from the histogram, including periodicity
func DefaultPulseSettings() PulseSettings {
	return PulseSettings{
		Polarity:        PolarityHigh,
		ReferenceLevels: DefaultPercentReferenceLevels(),
		Unit:            ReferenceRelativePercent,
		PercentLevels:   DefaultPercentLevelsSettings(),
		ExportMode:      ExportAll,
	}
}

// PulseAnalogProcessingResult is the measurement of one pulse
type PulseAnalogProcessingResult struct {
	PulseNumber    int                                        `json:"pulse_number" yaml:"pulse_number"`
	PulseCenter    float64                                    `json:"pulse_center" yaml:"pulse_center"`
	PulseDuration  float64                                    `json:"pulse_duration" yaml:"pulse_duration"`
	RefLevelHigh   float64                                    `json:"ref_level_high" yaml:"ref_level_high"`
	RefLevelMiddle float64                                    `json:"ref_level_middle" yaml:"ref_level_middle"`
	RefLevelLow    float64                                    `json:"ref_level_low" yaml:"ref_level_low"`
	Periodicity    *WaveformPeriodicityAnalogProcessingResult `json:"periodicity,omitempty" yaml:"periodicity,omitempty"`
}

// PulseAnalyzer measures pulses from reference-level crossings
type PulseAnalyzer struct{}

// NewPulseAnalyzer creates a new pulse analyzer
func NewPulseAnalyzer() *PulseAnalyzer {
	return &PulseAnalyzer{}
}

// edge is a completed low-to-high or high-to-low transition, located at its
// middle-level crossing as a fractional sample index
type edge struct {
	rising bool
	index  float64
}

type pulse struct {
	leading  edge
	trailing edge
}

// Process measures the selected pulse, or every complete pulse when
// settings.PulseNumber is 0. Results are in chronological order.
func (p *PulseAnalyzer) Process(samples []float64, samplingPeriod float64, settings PulseSettings) ([]PulseAnalogProcessingResult, error) {
	const op = "pulse"
	if err := validatePulseSettings(op, samples, samplingPeriod, settings); err != nil {
		return nil, err
	}

	levels, err := resolveReferenceLevels(op, samples, settings)
	if err != nil {
		return nil, err
	}

	edges := findEdges(samples, levels)
	pulses, leading := pairPulses(edges, settings.Polarity)
	if len(pulses) == 0 {
		return nil, common.InsufficientData(op, "no complete %s pulse found", settings.Polarity)
	}

	first, last := 0, len(pulses)-1
	if settings.PulseNumber > 0 {
		if settings.PulseNumber > len(pulses) {
			return nil, common.InsufficientData(op, "pulse %d requested but only %d detected",
				settings.PulseNumber, len(pulses))
		}
		first = settings.PulseNumber - 1
		last = first
	}

	toTime := func(index float64) float64 {
		return settings.T0 + index*samplingPeriod
	}

	results := make([]PulseAnalogProcessingResult, 0, last-first+1)
	for k := first; k <= last; k++ {
		pl := pulses[k]
		start, end := toTime(pl.leading.index), toTime(pl.trailing.index)

		result := PulseAnalogProcessingResult{
			PulseNumber:    k + 1,
			PulseCenter:    (start + end) / 2,
			PulseDuration:  end - start,
			RefLevelHigh:   levels.High,
			RefLevelMiddle: levels.Middle,
			RefLevelLow:    levels.Low,
		}

		if settings.ExportMode == ExportAll {
			periodicity, err := measurePeriodicity(op, leading, k, result.PulseDuration, samplingPeriod, settings.Polarity)
			if err != nil {
				return nil, err
			}
			result.Periodicity = periodicity
		}

		results = append(results, result)
	}

	return results, nil
}

// ProcessPulse measures the single pulse settings.PulseNumber (1-based)
func (p *PulseAnalyzer) ProcessPulse(samples []float64, samplingPeriod float64, settings PulseSettings) (PulseAnalogProcessingResult, error) {
	if settings.PulseNumber < 1 {
		return PulseAnalogProcessingResult{}, common.InvalidArgument("pulse", "pulse number must be at least 1, got %d", settings.PulseNumber)
	}
	results, err := p.Process(samples, samplingPeriod, settings)
	if err != nil {
		return PulseAnalogProcessingResult{}, err
	}
	return results[0], nil
}

func validatePulseSettings(op string, samples []float64, samplingPeriod float64, settings PulseSettings) error {
	if err := common.ValidateSamples(op, samples, samplingPeriod); err != nil {
		return err
	}
	if !common.IsFinite(settings.T0) {
		return common.InvalidArgument(op, "t0 must be finite, got %v", settings.T0)
	}
	if settings.Polarity != PolarityHigh && settings.Polarity != PolarityLow {
		return common.InvalidArgument(op, "unknown polarity %q", settings.Polarity)
	}
	if settings.ExportMode != ExportAll && settings.ExportMode != ExportIgnorePeriodicity {
		return common.InvalidArgument(op, "unknown export mode %q", settings.ExportMode)
	}
	if settings.PulseNumber < 0 {
		return common.InvalidArgument(op, "pulse number must not be negative, got %d", settings.PulseNumber)
	}

	ref := settings.ReferenceLevels
	if !(ref.High > ref.Middle && ref.Middle > ref.Low) {
		return common.InvalidArgument(op, "reference levels must satisfy high > middle > low, got %v/%v/%v",
			ref.High, ref.Middle, ref.Low)
	}

	switch settings.Unit {
	case ReferenceAbsolute:
	case ReferenceRelativePercent:
		if ref.Low < 0 || ref.High > 100 {
			return common.InvalidArgument(op, "percent reference levels must lie within [0, 100], got %v/%v/%v",
				ref.High, ref.Middle, ref.Low)
		}
		if settings.PercentLevels == nil {
			return common.InvalidArgument(op, "percent levels settings are required for relative reference levels")
		}
		if _, err := settings.PercentLevels.Estimator(); err != nil {
			return err
		}
	default:
		return common.InvalidArgument(op, "unknown reference level unit %q", settings.Unit)
	}
	return nil
}

// resolveReferenceLevels converts the configured levels into absolute values
func resolveReferenceLevels(op string, samples []float64, settings PulseSettings) (ReferenceLevels, error) {
	if settings.Unit == ReferenceAbsolute {
		return settings.ReferenceLevels, nil
	}

	estimator, err := settings.PercentLevels.Estimator()
	if err != nil {
		return ReferenceLevels{}, err
	}
	states, err := estimator.EstimateLevels(samples)
	if err != nil {
		return ReferenceLevels{}, err
	}

	ref := settings.ReferenceLevels
	levels := ReferenceLevels{
		High:   states.At(ref.High),
		Middle: states.At(ref.Middle),
		Low:    states.At(ref.Low),
	}
	if !(levels.High > levels.Middle && levels.Middle > levels.Low) {
		return ReferenceLevels{}, common.InvalidArgument(op, "estimated reference levels are degenerate: %v/%v/%v",
			levels.High, levels.Middle, levels.Low)
	}
	return levels, nil
}

// findEdges walks the waveform through low and high states. A transition between
// them is an edge, timed at the last middle-level crossing in the right direction.
func findEdges(samples []float64, levels ReferenceLevels) []edge {
	const (
		stateUnknown = iota
		stateLow
		stateHigh
	)

	state := stateUnknown
	riseCross, fallCross := math.NaN(), math.NaN()
	var edges []edge

	for i, v := range samples {
		if i > 0 {
			prev := samples[i-1]
			if prev < levels.Middle && v >= levels.Middle {
				riseCross = common.CrossingIndex(i, prev, v, levels.Middle)
			}
			if prev > levels.Middle && v <= levels.Middle {
				fallCross = common.CrossingIndex(i, prev, v, levels.Middle)
			}
		}

		switch {
		case v <= levels.Low && state != stateLow:
			if state == stateHigh && !math.IsNaN(fallCross) {
				edges = append(edges, edge{rising: false, index: fallCross})
			}
			state = stateLow
			riseCross = math.NaN()
		case v >= levels.High && state != stateHigh:
			if state == stateLow && !math.IsNaN(riseCross) {
				edges = append(edges, edge{rising: true, index: riseCross})
			}
			state = stateHigh
			fallCross = math.NaN()
		}
	}

	return edges
}

// pairPulses groups edges into pulses of the given polarity and also returns the
// leading edge of every pulse-starting transition, complete pulse or not
func pairPulses(edges []edge, polarity Polarity) ([]pulse, []float64) {
	leadingRising := polarity == PolarityHigh

	var pulses []pulse
	var leading []float64
	for i, e := range edges {
		if e.rising != leadingRising {
			continue
		}
		leading = append(leading, e.index)
		// edges alternate, so the next one is always the trailing edge
		if i+1 < len(edges) {
			pulses = append(pulses, pulse{leading: e, trailing: edges[i+1]})
		}
	}
	return pulses, leading
}

// measurePeriodicity uses the distance from pulse k's leading edge to the next
// leading edge, or from the previous one for the final pulse
func measurePeriodicity(op string, leading []float64, k int, duration, samplingPeriod float64, polarity Polarity) (*WaveformPeriodicityAnalogProcessingResult, error) {
	var periodSamples float64
	switch {
	case k+1 < len(leading):
		periodSamples = leading[k+1] - leading[k]
	case k > 0:
		periodSamples = leading[k] - leading[k-1]
	default:
		return nil, common.InsufficientData(op, "periodicity needs at least two leading edges, found %d", len(leading))
	}

	period := periodSamples * samplingPeriod
	duty := duration / period
	if polarity == PolarityLow {
		duty = 1 - duty
	}
	return NewWaveformPeriodicityAnalogProcessingResult(period, duty)
}
