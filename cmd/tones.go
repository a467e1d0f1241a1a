package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-bench/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-bench/algorithms/spectral"
)

var tonesCmd = &cobra.Command{
	Use:   "tones [file]",
	Short: "Detect tones in a waveform",
	Long: `Detect the spectral peaks of a waveform whose amplitude reaches the
threshold. Tones are ranked by amplitude, limited by --max-tones, then
ordered by the sorting mode.

Examples:
  sonido-bench tones --threshold 0.15 square.csv
  sonido-bench tones --max-tones 3 --sorting increasing_frequencies square.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runTones,
}

func init() {
	rootCmd.AddCommand(tonesCmd)

	flags := tonesCmd.Flags()
	flags.String("window", string(harmonic.DefaultToneWindow), "processing window for the tone spectrum")
	flags.String("amplitude-type", string(spectral.AmplitudePeak), "amplitude type (peak, rms)")
	flags.Float64("threshold", 0.1, "minimum linear tone amplitude")
	flags.Int("max-tones", 0, "maximum number of tones, 0 for all")
	flags.String("sorting", string(harmonic.SortDecreasingAmplitudes), "sorting (decreasing_amplitudes, increasing_frequencies)")
	flags.Bool("refine", false, "interpolate peak frequency and amplitude between bins")

	annotateKey(flags, "window", "tones.window")
	annotateKey(flags, "amplitude-type", "spectrum.amplitude_type")
	annotateKey(flags, "threshold", "tones.threshold")
	annotateKey(flags, "max-tones", "tones.max_tones")
	annotateKey(flags, "sorting", "tones.sorting")
	annotateKey(flags, "refine", "tones.refine")
	addInputFlags(tonesCmd)
}

type tonesOutput struct {
	File                                   string `json:"file" yaml:"file"`
	harmonic.MultipleTonesProcessingResult `yaml:",inline"`
}

func (o tonesOutput) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(o.DetectedTones))
	for i, tone := range o.DetectedTones {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			formatValue(tone.Frequency),
			formatValue(tone.Amplitude),
			formatValue(tone.PhaseDegrees()),
		})
	}
	return []string{"#", "FREQUENCY", "AMPLITUDE (" + string(o.AmplitudeType) + ")", "PHASE (deg)"}, rows
}

func runTones(cmd *cobra.Command, args []string) error {
	waveform, err := loadWaveform(args[0])
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer()
	if err != nil {
		return err
	}

	result, err := analyzer.Tones(waveform)
	if err != nil {
		return fmt.Errorf("tone detection failed: %w", err)
	}

	return printResult(tonesOutput{File: args[0], MultipleTonesProcessingResult: *result})
}
