package configs

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-bench/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-bench/algorithms/spectral"
	"github.com/RyanBlaney/sonido-bench/algorithms/temporal"
	"github.com/RyanBlaney/sonido-bench/algorithms/windowing"
	"github.com/RyanBlaney/sonido-bench/logging"
	"github.com/RyanBlaney/sonido-bench/measurement"
	"github.com/RyanBlaney/sonido-bench/transcode"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`

	// Analysis window for DC/RMS and spectra
	Window string `mapstructure:"window"`

	Spectrum SpectrumConfig `mapstructure:"spectrum"`
	Tones    TonesConfig    `mapstructure:"tones"`
	Pulse    PulseConfig    `mapstructure:"pulse"`
	Input    InputConfig    `mapstructure:"input"`
	Export   ExportConfig   `mapstructure:"export"`
}

// SpectrumConfig contains spectrum representation settings
type SpectrumConfig struct {
	AmplitudeType string `mapstructure:"amplitude_type"`
	DB            bool   `mapstructure:"db"`
	PhaseUnit     string `mapstructure:"phase_unit"`
}

// TonesConfig contains multi-tone detection settings
type TonesConfig struct {
	Window    string  `mapstructure:"window"`
	Threshold float64 `mapstructure:"threshold"`
	MaxTones  int     `mapstructure:"max_tones"`
	Sorting   string  `mapstructure:"sorting"`
	Refine    bool    `mapstructure:"refine"`
}

// ReferenceLevelsConfig contains pulse reference levels
type ReferenceLevelsConfig struct {
	High   float64 `mapstructure:"high"`
	Middle float64 `mapstructure:"middle"`
	Low    float64 `mapstructure:"low"`
}

// PulseConfig contains pulse and periodicity settings
type PulseConfig struct {
	Polarity           string                `mapstructure:"polarity"`
	ReferenceLevels    ReferenceLevelsConfig `mapstructure:"reference_levels"`
	ReferenceLevelUnit string                `mapstructure:"reference_level_unit"`
	LevelMethod        string                `mapstructure:"level_method"`
	HistogramSize      int                   `mapstructure:"histogram_size"`
	PulseNumber        int                   `mapstructure:"pulse_number"`
	ExportMode         string                `mapstructure:"export_mode"`
}

// InputConfig contains waveform decoding settings
type InputConfig struct {
	Format         string  `mapstructure:"format"`
	Delimiter      string  `mapstructure:"delimiter"`
	SamplingPeriod float64 `mapstructure:"sampling_period"`
	T0             float64 `mapstructure:"t0"`
	TimeTolerance  float64 `mapstructure:"time_tolerance"`
}

// ExportConfig contains spectrum export settings
type ExportConfig struct {
	Format      string `mapstructure:"format"`
	Delimiter   string `mapstructure:"delimiter"`
	Compression string `mapstructure:"compression"`
}

// LoadConfig loads configuration from v, applying defaults for unset keys
func LoadConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if _, err := logging.ParseLevel(config.LogLevel); err != nil {
		return err
	}

	switch config.OutputFormat {
	case "json", "yaml", "table":
	default:
		return fmt.Errorf("output format must be json, yaml or table, got %q", config.OutputFormat)
	}

	analyzerConfig, err := config.AnalyzerConfig()
	if err != nil {
		return err
	}
	if err := analyzerConfig.Validate(); err != nil {
		return err
	}

	switch transcode.InputFormat(config.Input.Format) {
	case transcode.FormatAuto, transcode.FormatDelimited, transcode.FormatF64LE:
	default:
		return fmt.Errorf("unknown input format %q", config.Input.Format)
	}
	if config.Input.SamplingPeriod < 0 {
		return fmt.Errorf("input sampling period cannot be negative")
	}
	if config.Input.TimeTolerance <= 0 {
		return fmt.Errorf("input time tolerance must be positive")
	}
	if _, err := parseDelimiter(config.Input.Delimiter); err != nil {
		return fmt.Errorf("input delimiter: %w", err)
	}

	if _, err := transcode.ParseExportFormat(config.Export.Format); err != nil {
		return err
	}
	if _, err := parseDelimiter(config.Export.Delimiter); err != nil {
		return fmt.Errorf("export delimiter: %w", err)
	}

	return nil
}

// AnalyzerConfig converts the analysis sections into a measurement.AnalyzerConfig.
// Enum values are parsed but not range checked; call Validate on the result.
func (c *Config) AnalyzerConfig() (*measurement.AnalyzerConfig, error) {
	window, err := windowing.ParseProcessingWindow(c.Window)
	if err != nil {
		return nil, err
	}
	toneWindow, err := windowing.ParseProcessingWindow(c.Tones.Window)
	if err != nil {
		return nil, fmt.Errorf("tones: %w", err)
	}

	pulse := temporal.PulseSettings{
		Polarity: temporal.Polarity(c.Pulse.Polarity),
		ReferenceLevels: temporal.ReferenceLevels{
			High:   c.Pulse.ReferenceLevels.High,
			Middle: c.Pulse.ReferenceLevels.Middle,
			Low:    c.Pulse.ReferenceLevels.Low,
		},
		Unit:        temporal.ReferenceLevelUnit(c.Pulse.ReferenceLevelUnit),
		PulseNumber: c.Pulse.PulseNumber,
		ExportMode:  temporal.ExportMode(c.Pulse.ExportMode),
	}
	if pulse.Unit == temporal.ReferenceRelativePercent {
		pulse.PercentLevels = &temporal.PercentLevelsSettings{
			Method:        temporal.LevelMethod(c.Pulse.LevelMethod),
			HistogramSize: c.Pulse.HistogramSize,
		}
	}

	return &measurement.AnalyzerConfig{
		Window: window,
		Spectrum: measurement.SpectrumConfig{
			AmplitudeType: spectral.AmplitudeType(c.Spectrum.AmplitudeType),
			DB:            c.Spectrum.DB,
			PhaseUnit:     spectral.PhaseUnit(c.Spectrum.PhaseUnit),
		},
		Tones: measurement.TonesConfig{
			Window:    toneWindow,
			Threshold: c.Tones.Threshold,
			MaxTones:  c.Tones.MaxTones,
			Sorting:   harmonic.SortingMode(c.Tones.Sorting),
			Refine:    c.Tones.Refine,
		},
		Pulse: pulse,
	}, nil
}

// DecoderConfig converts the input section into a transcode.DecoderConfig
func (c *Config) DecoderConfig() (*transcode.DecoderConfig, error) {
	delimiter, err := parseDelimiter(c.Input.Delimiter)
	if err != nil {
		return nil, err
	}
	return &transcode.DecoderConfig{
		Format:         transcode.InputFormat(c.Input.Format),
		Delimiter:      delimiter,
		SamplingPeriod: c.Input.SamplingPeriod,
		T0:             c.Input.T0,
		TimeTolerance:  c.Input.TimeTolerance,
	}, nil
}

// EncoderConfig converts the export section into a transcode.EncoderConfig
func (c *Config) EncoderConfig() (*transcode.EncoderConfig, error) {
	format, err := transcode.ParseExportFormat(c.Export.Format)
	if err != nil {
		return nil, err
	}
	delimiter, err := parseDelimiter(c.Export.Delimiter)
	if err != nil {
		return nil, err
	}
	if delimiter == 0 {
		delimiter = ','
	}
	return &transcode.EncoderConfig{
		Format:      format,
		Delimiter:   delimiter,
		Compression: c.Export.Compression,
	}, nil
}

// parseDelimiter accepts "", a single character, or the names tab, comma and semicolon
func parseDelimiter(value string) (rune, error) {
	switch value {
	case "", "auto":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	return r, nil
}
