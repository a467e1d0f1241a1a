package configs

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-bench/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-bench/algorithms/temporal"
	"github.com/RyanBlaney/sonido-bench/algorithms/windowing"
	"github.com/RyanBlaney/sonido-bench/measurement"
	"github.com/RyanBlaney/sonido-bench/transcode"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(viper.New())
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(config))

	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "table", config.OutputFormat)
	assert.Equal(t, "hann", config.Window)
	assert.Equal(t, 256, config.Pulse.HistogramSize)

	analyzerConfig, err := config.AnalyzerConfig()
	require.NoError(t, err)
	assert.Equal(t, measurement.DefaultAnalyzerConfig(), analyzerConfig)
}

func TestLoadConfigFromYAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
log_level: debug
output_format: json
window: Blackman-Harris
tones:
  threshold: 0.15
  max_tones: 4
  sorting: increasing_frequencies
pulse:
  polarity: low
  reference_levels:
    high: 95
    middle: 50
    low: 5
  level_method: peak
input:
  delimiter: tab
  sampling_period: 0.001
export:
  format: parquet
`)))

	config, err := LoadConfig(v)
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(config))

	analyzerConfig, err := config.AnalyzerConfig()
	require.NoError(t, err)
	assert.Equal(t, windowing.BlackmanHarris, analyzerConfig.Window)
	assert.Equal(t, harmonic.SortIncreasingFrequencies, analyzerConfig.Tones.Sorting)
	assert.Equal(t, 4, analyzerConfig.Tones.MaxTones)
	assert.Equal(t, temporal.PolarityLow, analyzerConfig.Pulse.Polarity)
	assert.Equal(t, temporal.ReferenceLevels{High: 95, Middle: 50, Low: 5}, analyzerConfig.Pulse.ReferenceLevels)
	require.NotNil(t, analyzerConfig.Pulse.PercentLevels)
	assert.Equal(t, temporal.LevelsPeak, analyzerConfig.Pulse.PercentLevels.Method)

	decoderConfig, err := config.DecoderConfig()
	require.NoError(t, err)
	assert.Equal(t, '\t', decoderConfig.Delimiter)
	assert.Equal(t, 0.001, decoderConfig.SamplingPeriod)

	encoderConfig, err := config.EncoderConfig()
	require.NoError(t, err)
	assert.Equal(t, transcode.ExportParquet, encoderConfig.Format)
}

func TestAbsoluteLevelsDropPercentSettings(t *testing.T) {
	v := viper.New()
	v.Set("pulse.reference_level_unit", "absolute")
	v.Set("pulse.reference_levels.high", 4.0)
	v.Set("pulse.reference_levels.middle", 2.5)
	v.Set("pulse.reference_levels.low", 1.0)

	config, err := LoadConfig(v)
	require.NoError(t, err)
	analyzerConfig, err := config.AnalyzerConfig()
	require.NoError(t, err)
	assert.Equal(t, temporal.ReferenceAbsolute, analyzerConfig.Pulse.Unit)
	assert.Nil(t, analyzerConfig.Pulse.PercentLevels)
}

func TestValidateConfigRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"log level":      func(c *Config) { c.LogLevel = "loud" },
		"output format":  func(c *Config) { c.OutputFormat = "xml" },
		"window":         func(c *Config) { c.Window = "gaussian" },
		"tone window":    func(c *Config) { c.Tones.Window = "gaussian" },
		"amplitude type": func(c *Config) { c.Spectrum.AmplitudeType = "peak_to_peak" },
		"threshold":      func(c *Config) { c.Tones.Threshold = -0.5 },
		"sorting":        func(c *Config) { c.Tones.Sorting = "random" },
		"input format":   func(c *Config) { c.Input.Format = "wav" },
		"sampling":       func(c *Config) { c.Input.SamplingPeriod = -1 },
		"tolerance":      func(c *Config) { c.Input.TimeTolerance = 0 },
		"delimiter":      func(c *Config) { c.Input.Delimiter = "::" },
		"export format":  func(c *Config) { c.Export.Format = "xlsx" },
	}
	for name, mutate := range cases {
		config, err := LoadConfig(viper.New())
		require.NoError(t, err, name)
		mutate(config)
		assert.Error(t, ValidateConfig(config), name)
	}
}

func TestParseDelimiter(t *testing.T) {
	for input, want := range map[string]rune{
		"":          0,
		"auto":      0,
		"tab":       '\t',
		`\t`:        '\t',
		"comma":     ',',
		"semicolon": ';',
		"|":         '|',
	} {
		got, err := parseDelimiter(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}
