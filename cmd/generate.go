package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-bench/algorithms/common"
	"github.com/RyanBlaney/sonido-bench/logging"
	"github.com/RyanBlaney/sonido-bench/measurement"
	"github.com/RyanBlaney/sonido-bench/transcode"
)

var (
	generateFrequency  float64
	generateAmplitude  float64
	generateOffset     float64
	generateDutyCycle  float64
	generateSampleRate float64
	generateDuration   float64
	generateOutput     string
)

var generateCmd = &cobra.Command{
	Use:   "generate [sine|square]",
	Short: "Generate a test waveform",
	Long: `Generate a deterministic sine or square waveform as "time,value" rows,
suitable as a fixture for the analysis commands.

Examples:
  sonido-bench generate sine --frequency 440 --sample-rate 44100 --duration 0.1
  sonido-bench generate square --frequency 1 --sample-rate 1000 --duration 3 --out clock.csv`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"sine", "square"},
	RunE:      runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.Float64Var(&generateFrequency, "frequency", 440, "frequency in Hz")
	flags.Float64Var(&generateAmplitude, "amplitude", 1, "peak amplitude")
	flags.Float64Var(&generateOffset, "offset", 0, "DC offset added to every sample")
	flags.Float64Var(&generateDutyCycle, "duty-cycle", 0.5, "square wave duty cycle in [0, 1]")
	flags.Float64Var(&generateSampleRate, "sample-rate", 44100, "sample rate in Hz")
	flags.Float64Var(&generateDuration, "duration", 0.1, "duration in seconds")
	flags.StringVar(&generateOutput, "out", "", "output file (default stdout)")
}

// generateSamples builds the requested signal; kind is sine or square
func generateSamples(kind string) ([]float64, error) {
	if generateSampleRate <= 0 || generateDuration <= 0 {
		return nil, fmt.Errorf("sample rate and duration must be positive")
	}
	if common.SampleCount(generateSampleRate, generateDuration) == 0 {
		return nil, fmt.Errorf("duration %v s at %v Hz yields no samples", generateDuration, generateSampleRate)
	}

	var samples []float64
	switch kind {
	case "sine":
		samples = common.Sine(generateFrequency, generateAmplitude, generateSampleRate, generateDuration)
	case "square":
		if generateDutyCycle < 0 || generateDutyCycle > 1 {
			return nil, fmt.Errorf("duty cycle must be within [0, 1], got %v", generateDutyCycle)
		}
		samples = common.Square(generateFrequency, generateAmplitude, generateDutyCycle, generateSampleRate, generateDuration)
	default:
		return nil, fmt.Errorf("unknown waveform %q (want sine or square)", kind)
	}

	for i := range samples {
		samples[i] += generateOffset
	}
	return samples, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	samples, err := generateSamples(args[0])
	if err != nil {
		return err
	}

	waveform, err := measurement.NewWaveform(samples, 1/generateSampleRate, 0)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if generateOutput != "" {
		f, err := os.Create(generateOutput)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", generateOutput, err)
		}
		defer f.Close()
		out = f
	}

	if err := transcode.EncodeWaveform(out, waveform); err != nil {
		return fmt.Errorf("failed to write waveform: %w", err)
	}

	logging.Debug("Waveform generated", logging.Fields{
		"kind":    args[0],
		"samples": waveform.Len(),
		"file":    generateOutput,
	})
	return nil
}
