package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-bench/algorithms/temporal"
)

var pulseCmd = &cobra.Command{
	Use:   "pulse [file]",
	Short: "Measure pulse timing and periodicity",
	Long: `Measure pulse center, duration and the period and duty cycle of a pulse
train. Reference levels are absolute values or percentages of the state
levels estimated from the waveform histogram or extremes.

Examples:
  sonido-bench pulse clock.csv
  sonido-bench pulse --polarity low --pulse-number 1 clock.csv
  sonido-bench pulse --ref-unit absolute --ref-high 4 --ref-mid 2.5 --ref-low 1 clock.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runPulse,
}

func init() {
	rootCmd.AddCommand(pulseCmd)

	levels := temporal.DefaultPercentReferenceLevels()
	flags := pulseCmd.Flags()
	flags.String("polarity", string(temporal.PolarityHigh), "pulse polarity (high, low)")
	flags.Float64("ref-high", levels.High, "high reference level")
	flags.Float64("ref-mid", levels.Middle, "middle reference level")
	flags.Float64("ref-low", levels.Low, "low reference level")
	flags.String("ref-unit", string(temporal.ReferenceRelativePercent), "reference level unit (relative_percent, absolute)")
	flags.String("level-method", string(temporal.LevelsHistogram), "state level estimation (histogram, peak)")
	flags.Int("histogram-size", temporal.DefaultHistogramSize, "histogram bins for state level estimation")
	flags.Int("pulse-number", 0, "pulse to measure, 1 for the first, 0 for all")
	flags.String("export-mode", string(temporal.ExportAll), "export mode (all, ignore_waveform_periodicity_analysis)")

	annotateKey(flags, "polarity", "pulse.polarity")
	annotateKey(flags, "ref-high", "pulse.reference_levels.high")
	annotateKey(flags, "ref-mid", "pulse.reference_levels.middle")
	annotateKey(flags, "ref-low", "pulse.reference_levels.low")
	annotateKey(flags, "ref-unit", "pulse.reference_level_unit")
	annotateKey(flags, "level-method", "pulse.level_method")
	annotateKey(flags, "histogram-size", "pulse.histogram_size")
	annotateKey(flags, "pulse-number", "pulse.pulse_number")
	annotateKey(flags, "export-mode", "pulse.export_mode")
	addInputFlags(pulseCmd)
}

type pulseOutput struct {
	File   string                                 `json:"file" yaml:"file"`
	Pulses []temporal.PulseAnalogProcessingResult `json:"pulses" yaml:"pulses"`
}

func (o pulseOutput) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(o.Pulses))
	for _, p := range o.Pulses {
		period, frequency, duty := "-", "-", "-"
		if p.Periodicity != nil {
			period = formatValue(p.Periodicity.Period)
			frequency = formatValue(p.Periodicity.Frequency())
			duty = formatValue(p.Periodicity.DutyCyclePercent())
		}
		rows = append(rows, []string{
			fmt.Sprint(p.PulseNumber),
			formatValue(p.PulseCenter),
			formatValue(p.PulseDuration),
			period,
			frequency,
			duty,
		})
	}
	return []string{"#", "CENTER", "DURATION", "PERIOD", "FREQUENCY", "DUTY %"}, rows
}

func runPulse(cmd *cobra.Command, args []string) error {
	waveform, err := loadWaveform(args[0])
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer()
	if err != nil {
		return err
	}

	results, err := analyzer.Pulse(waveform)
	if err != nil {
		return fmt.Errorf("pulse measurement failed: %w", err)
	}

	return printResult(pulseOutput{File: args[0], Pulses: results})
}
