package temporal

import (
	"github.com/RyanBlaney/sonido-bench/algorithms/common"
)

// WaveformPeriodicityAnalogProcessingResult describes a periodic pulse train
type WaveformPeriodicityAnalogProcessingResult struct {
	Period    float64 `json:"period" yaml:"period"`
	DutyCycle float64 `json:"duty_cycle" yaml:"duty_cycle"`
}

// NewWaveformPeriodicityAnalogProcessingResult validates period > 0 and duty cycle in [0, 1]
func NewWaveformPeriodicityAnalogProcessingResult(period, dutyCycle float64) (*WaveformPeriodicityAnalogProcessingResult, error) {
	const op = "waveform periodicity"
	if !common.IsFinite(period) || period <= 0 {
		return nil, common.InvalidArgument(op, "period must be positive, got %v", period)
	}
	if !common.IsFinite(dutyCycle) || dutyCycle < 0 || dutyCycle > 1 {
		return nil, common.InvalidArgument(op, "duty cycle must be within [0, 1], got %v", dutyCycle)
	}
	return &WaveformPeriodicityAnalogProcessingResult{Period: period, DutyCycle: dutyCycle}, nil
}

// Frequency returns 1/Period
func (r *WaveformPeriodicityAnalogProcessingResult) Frequency() float64 {
	return 1 / r.Period
}

// DutyCyclePercent returns the duty cycle in percent
func (r *WaveformPeriodicityAnalogProcessingResult) DutyCyclePercent() float64 {
	return 100 * r.DutyCycle
}
