package measurement

import (
	"github.com/RyanBlaney/sonido-bench/algorithms/common"
	"github.com/RyanBlaney/sonido-bench/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-bench/algorithms/spectral"
	"github.com/RyanBlaney/sonido-bench/algorithms/temporal"
	"github.com/RyanBlaney/sonido-bench/algorithms/windowing"
	"github.com/RyanBlaney/sonido-bench/logging"
)

// SpectrumConfig selects the representation of computed spectra
type SpectrumConfig struct {
	AmplitudeType spectral.AmplitudeType `json:"amplitude_type" yaml:"amplitude_type"`
	DB            bool                   `json:"db" yaml:"db"`
	PhaseUnit     spectral.PhaseUnit     `json:"phase_unit" yaml:"phase_unit"`
}

// TonesConfig configures multi-tone detection
type TonesConfig struct {
	Window    windowing.ProcessingWindow `json:"window" yaml:"window"`
	Threshold float64                    `json:"threshold" yaml:"threshold"`
	MaxTones  int                        `json:"max_tones" yaml:"max_tones"`
	Sorting   harmonic.SortingMode       `json:"sorting" yaml:"sorting"`
	Refine    bool                       `json:"refine" yaml:"refine"`
}

// AnalyzerConfig holds the settings applied to every waveform the Analyzer measures
type AnalyzerConfig struct {
	Window   windowing.ProcessingWindow `json:"window" yaml:"window"`
	Spectrum SpectrumConfig             `json:"spectrum" yaml:"spectrum"`
	Tones    TonesConfig                `json:"tones" yaml:"tones"`
	// Pulse.T0 is ignored; the waveform's T0 is used instead
	Pulse temporal.PulseSettings `json:"pulse" yaml:"pulse"`
}

// DefaultAnalyzerConfig returns a Hann-windowed peak/radian configuration with
// 90/50/10 percent pulse levels
func DefaultAnalyzerConfig() *AnalyzerConfig {
	return &AnalyzerConfig{
		Window: windowing.Hann,
		Spectrum: SpectrumConfig{
			AmplitudeType: spectral.AmplitudePeak,
			PhaseUnit:     spectral.PhaseRadian,
		},
		Tones: TonesConfig{
			Window:    harmonic.DefaultToneWindow,
			Threshold: 0.1,
			Sorting:   harmonic.SortDecreasingAmplitudes,
		},
		Pulse: temporal.DefaultPulseSettings(),
	}
}

// Validate checks every enum and numeric setting
func (c *AnalyzerConfig) Validate() error {
	const op = "analyzer config"
	if !c.Window.Valid() {
		return common.InvalidArgument(op, "unknown window %q", c.Window)
	}
	if !c.Spectrum.AmplitudeType.Valid() {
		return common.InvalidArgument(op, "unknown amplitude type %q", c.Spectrum.AmplitudeType)
	}
	if !c.Spectrum.PhaseUnit.Valid() {
		return common.InvalidArgument(op, "unknown phase unit %q", c.Spectrum.PhaseUnit)
	}
	if !c.Tones.Window.Valid() {
		return common.InvalidArgument(op, "unknown tone window %q", c.Tones.Window)
	}
	if !common.IsFinite(c.Tones.Threshold) || c.Tones.Threshold < 0 {
		return common.InvalidArgument(op, "tone threshold must be non-negative, got %v", c.Tones.Threshold)
	}
	if c.Tones.MaxTones < 0 {
		return common.InvalidArgument(op, "max tones must be non-negative, got %d", c.Tones.MaxTones)
	}
	if !c.Tones.Sorting.Valid() {
		return common.InvalidArgument(op, "unknown sorting mode %q", c.Tones.Sorting)
	}
	return nil
}

// Analyzer runs the waveform analyzers with a fixed configuration. It holds no
// mutable state and may be shared between goroutines.
type Analyzer struct {
	config   *AnalyzerConfig
	dcRms    *temporal.DcRms
	spectrum *spectral.AmplitudePhase
	tones    *harmonic.ToneDetector
	pulse    *temporal.PulseAnalyzer
	logger   logging.Logger
}

// NewAnalyzer creates an Analyzer logging through the global logger. A nil
// config uses DefaultAnalyzerConfig.
func NewAnalyzer(config *AnalyzerConfig) (*Analyzer, error) {
	return NewAnalyzerWithLogger(config, logging.GetGlobalLogger())
}

// NewAnalyzerWithLogger creates an Analyzer logging through logger
func NewAnalyzerWithLogger(config *AnalyzerConfig, logger logging.Logger) (*Analyzer, error) {
	if config == nil {
		config = DefaultAnalyzerConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}

	var toneOpts []harmonic.ToneDetectorOption
	if config.Tones.Refine {
		toneOpts = append(toneOpts, harmonic.WithPeakRefinement())
	}

	return &Analyzer{
		config:   config,
		dcRms:    temporal.NewDcRms(),
		spectrum: spectral.NewAmplitudePhase(),
		tones:    harmonic.NewToneDetector(toneOpts...),
		pulse:    temporal.NewPulseAnalyzer(),
		logger: logger.WithFields(logging.Fields{
			"component": "waveform_analyzer",
		}),
	}, nil
}

// Config returns the analyzer configuration
func (a *Analyzer) Config() *AnalyzerConfig {
	return a.config
}

func (a *Analyzer) waveformLogger(function string, w *Waveform) logging.Logger {
	return a.logger.WithFields(logging.Fields{
		"function":        function,
		"samples":         w.Len(),
		"sampling_period": w.SamplingPeriod,
	})
}

// DcRms measures the DC and RMS levels with the configured window
func (a *Analyzer) DcRms(w *Waveform) (temporal.DcRmsProcessingResult, error) {
	if w == nil {
		return temporal.DcRmsProcessingResult{}, common.InvalidArgument("dc rms", "waveform is required")
	}
	logger := a.waveformLogger("DcRms", w)

	result, err := a.dcRms.Process(w.Samples, w.SamplingPeriod, a.config.Window)
	if err != nil {
		logger.Debug("DC/RMS measurement failed", logging.Fields{"error": err.Error()})
		return temporal.DcRmsProcessingResult{}, err
	}

	logger.Debug("DC/RMS measured", logging.Fields{
		"window": a.config.Window,
		"dc":     result.DCValue,
		"rms":    result.RMSValue,
	})
	return result, nil
}

// Spectrum computes the amplitude/phase spectrum with the configured window
func (a *Analyzer) Spectrum(w *Waveform) (*spectral.AmplitudePhaseSpectrum, error) {
	if w == nil {
		return nil, common.InvalidArgument("amplitude phase", "waveform is required")
	}
	logger := a.waveformLogger("Spectrum", w)

	cfg := a.config.Spectrum
	spectrum, err := a.spectrum.Process(w.Samples, w.SamplingPeriod, cfg.DB, cfg.AmplitudeType, cfg.PhaseUnit, a.config.Window)
	if err != nil {
		logger.Debug("Spectrum computation failed", logging.Fields{"error": err.Error()})
		return nil, err
	}

	peakBin, peakAmplitude := spectrum.PeakBin()
	logger.Debug("Spectrum computed", logging.Fields{
		"window":         a.config.Window,
		"bins":           spectrum.Len(),
		"df":             spectrum.DF,
		"peak_frequency": spectrum.Frequency(peakBin),
		"peak_amplitude": peakAmplitude,
	})
	return spectrum, nil
}

// Tones detects the tones of w on a linear spectrum computed with the tone window
func (a *Analyzer) Tones(w *Waveform) (*harmonic.MultipleTonesProcessingResult, error) {
	if w == nil {
		return nil, common.InvalidArgument("multiple tones", "waveform is required")
	}
	logger := a.waveformLogger("Tones", w)

	cfg := a.config.Tones
	spectrum, err := a.spectrum.Process(w.Samples, w.SamplingPeriod, false, a.config.Spectrum.AmplitudeType, spectral.PhaseRadian, cfg.Window)
	if err != nil {
		logger.Debug("Tone spectrum computation failed", logging.Fields{"error": err.Error()})
		return nil, err
	}

	result, err := a.tones.Detect(spectrum, cfg.Threshold, cfg.MaxTones, cfg.Sorting)
	if err != nil {
		logger.Debug("Tone detection failed", logging.Fields{"error": err.Error()})
		return nil, err
	}

	logger.Debug("Tones detected", logging.Fields{
		"window":    cfg.Window,
		"threshold": cfg.Threshold,
		"tones":     len(result.DetectedTones),
	})
	return result, nil
}

// Pulse measures the configured pulse, or every pulse when PulseNumber is 0
func (a *Analyzer) Pulse(w *Waveform) ([]temporal.PulseAnalogProcessingResult, error) {
	if w == nil {
		return nil, common.InvalidArgument("pulse", "waveform is required")
	}
	logger := a.waveformLogger("Pulse", w)

	settings := a.config.Pulse
	settings.T0 = w.T0

	results, err := a.pulse.Process(w.Samples, w.SamplingPeriod, settings)
	if err != nil {
		logger.Debug("Pulse measurement failed", logging.Fields{"error": err.Error()})
		return nil, err
	}

	fields := logging.Fields{
		"polarity":     settings.Polarity,
		"pulses":       len(results),
		"ref_level_hi": results[0].RefLevelHigh,
		"ref_level_lo": results[0].RefLevelLow,
	}
	if p := results[0].Periodicity; p != nil {
		fields["period"] = p.Period
		fields["duty_cycle"] = p.DutyCycle
	}
	logger.Debug("Pulses measured", fields)
	return results, nil
}
