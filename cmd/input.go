package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-bench/measurement"
	"github.com/RyanBlaney/sonido-bench/transcode"
)

// addInputFlags registers the waveform decoding flags shared by the analysis commands
func addInputFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("format", "auto", "input format (auto, delimited, f64le)")
	flags.String("delimiter", "", "input delimiter, detected when empty (tab, comma, semicolon or a character)")
	flags.Float64("sampling-period", 0, "sampling period in seconds, required for value-only and raw input")
	flags.Float64("t0", 0, "time of the first sample for inputs without a time column")

	annotateKey(flags, "format", "input.format")
	annotateKey(flags, "delimiter", "input.delimiter")
	annotateKey(flags, "sampling-period", "input.sampling_period")
	annotateKey(flags, "t0", "input.t0")
}

// loadWaveform decodes filename with the configured input settings
func loadWaveform(filename string) (*measurement.Waveform, error) {
	decoderConfig, err := appConfig.DecoderConfig()
	if err != nil {
		return nil, err
	}

	waveform, err := transcode.NewDecoder(decoderConfig).DecodeFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load waveform: %w", err)
	}
	return waveform, nil
}

// newAnalyzer builds a measurement.Analyzer from the configuration
func newAnalyzer() (*measurement.Analyzer, error) {
	analyzerConfig, err := appConfig.AnalyzerConfig()
	if err != nil {
		return nil, err
	}
	return measurement.NewAnalyzer(analyzerConfig)
}
