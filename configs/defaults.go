package configs

import (
	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-bench/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-bench/algorithms/spectral"
	"github.com/RyanBlaney/sonido-bench/algorithms/temporal"
	"github.com/RyanBlaney/sonido-bench/algorithms/windowing"
	"github.com/RyanBlaney/sonido-bench/transcode"
)

// EnvPrefix prefixes every environment variable read by the configuration
const EnvPrefix = "SONIDO_BENCH"

// SetDefaults sets default configuration values for keys not already set
func SetDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("output_format", "table")
	v.SetDefault("window", string(windowing.Hann))

	// Spectrum defaults
	v.SetDefault("spectrum.amplitude_type", string(spectral.AmplitudePeak))
	v.SetDefault("spectrum.db", false)
	v.SetDefault("spectrum.phase_unit", string(spectral.PhaseRadian))

	// Tone detection defaults
	v.SetDefault("tones.window", string(harmonic.DefaultToneWindow))
	v.SetDefault("tones.threshold", 0.1)
	v.SetDefault("tones.max_tones", 0)
	v.SetDefault("tones.sorting", string(harmonic.SortDecreasingAmplitudes))
	v.SetDefault("tones.refine", false)

	// Pulse defaults
	levels := temporal.DefaultPercentReferenceLevels()
	v.SetDefault("pulse.polarity", string(temporal.PolarityHigh))
	v.SetDefault("pulse.reference_levels.high", levels.High)
	v.SetDefault("pulse.reference_levels.middle", levels.Middle)
	v.SetDefault("pulse.reference_levels.low", levels.Low)
	v.SetDefault("pulse.reference_level_unit", string(temporal.ReferenceRelativePercent))
	v.SetDefault("pulse.level_method", string(temporal.LevelsHistogram))
	v.SetDefault("pulse.histogram_size", temporal.DefaultHistogramSize)
	v.SetDefault("pulse.pulse_number", 0)
	v.SetDefault("pulse.export_mode", string(temporal.ExportAll))

	// Input defaults
	v.SetDefault("input.format", string(transcode.FormatAuto))
	v.SetDefault("input.delimiter", "")
	v.SetDefault("input.sampling_period", 0.0)
	v.SetDefault("input.t0", 0.0)
	v.SetDefault("input.time_tolerance", 0.01)

	// Export defaults
	v.SetDefault("export.format", string(transcode.ExportDelimited))
	v.SetDefault("export.delimiter", ",")
	v.SetDefault("export.compression", "snappy")
}
