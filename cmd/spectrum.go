package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-bench/algorithms/spectral"
	"github.com/RyanBlaney/sonido-bench/algorithms/windowing"
	"github.com/RyanBlaney/sonido-bench/logging"
	"github.com/RyanBlaney/sonido-bench/transcode"
)

var (
	spectrumExport string
	spectrumFull   bool
)

var spectrumCmd = &cobra.Command{
	Use:   "spectrum [file]",
	Short: "Compute the amplitude/phase spectrum",
	Long: `Compute the single-sided amplitude and phase spectrum of a waveform.

The summary reports the strongest bin. Use --export to write every
(frequency, amplitude) pair as delimited text, or as Parquet rows that also
carry the phase.

Examples:
  sonido-bench spectrum capture.csv
  sonido-bench spectrum --amplitude-type rms --db capture.csv
  sonido-bench spectrum --export spectrum.parquet --export-format parquet capture.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSpectrum,
}

func init() {
	rootCmd.AddCommand(spectrumCmd)

	flags := spectrumCmd.Flags()
	flags.String("window", string(windowing.Hann), "processing window")
	flags.String("amplitude-type", string(spectral.AmplitudePeak), "amplitude type (peak, rms)")
	flags.Bool("db", false, "report amplitudes in dB")
	flags.String("phase-unit", string(spectral.PhaseRadian), "phase unit (radian, degree)")
	flags.String("export-format", string(transcode.ExportDelimited), "export format (csv, parquet)")
	flags.StringVar(&spectrumExport, "export", "", "write the full spectrum to this file")
	flags.BoolVar(&spectrumFull, "full", false, "include every bin in the output")

	annotateKey(flags, "window", "window")
	annotateKey(flags, "amplitude-type", "spectrum.amplitude_type")
	annotateKey(flags, "db", "spectrum.db")
	annotateKey(flags, "phase-unit", "spectrum.phase_unit")
	annotateKey(flags, "export-format", "export.format")
	addInputFlags(spectrumCmd)
}

type spectrumOutput struct {
	File          string                           `json:"file" yaml:"file"`
	Window        windowing.ProcessingWindow       `json:"window" yaml:"window"`
	Bins          int                              `json:"bins" yaml:"bins"`
	DF            float64                          `json:"df" yaml:"df"`
	PeakFrequency float64                          `json:"peak_frequency" yaml:"peak_frequency"`
	PeakAmplitude float64                          `json:"peak_amplitude" yaml:"peak_amplitude"`
	Export        string                           `json:"export,omitempty" yaml:"export,omitempty"`
	Spectrum      *spectral.AmplitudePhaseSpectrum `json:"spectrum,omitempty" yaml:"spectrum,omitempty"`
}

func (o spectrumOutput) Table() ([]string, [][]string) {
	headers := []string{"FILE", "WINDOW", "BINS", "DF", "PEAK FREQUENCY", "PEAK AMPLITUDE"}
	summary := []string{
		o.File, string(o.Window), fmt.Sprint(o.Bins), formatValue(o.DF),
		formatValue(o.PeakFrequency), formatValue(o.PeakAmplitude),
	}
	if o.Spectrum == nil {
		return headers, [][]string{summary}
	}

	rows := make([][]string, 0, o.Spectrum.Len())
	for i := range o.Spectrum.Len() {
		rows = append(rows, []string{
			formatValue(o.Spectrum.Frequency(i)),
			formatValue(o.Spectrum.Amplitudes[i]),
			formatValue(o.Spectrum.Phases[i]),
		})
	}
	return []string{"FREQUENCY", "AMPLITUDE", "PHASE"}, rows
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	waveform, err := loadWaveform(args[0])
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer()
	if err != nil {
		return err
	}

	spectrum, err := analyzer.Spectrum(waveform)
	if err != nil {
		return fmt.Errorf("spectrum computation failed: %w", err)
	}

	if spectrumExport != "" {
		encoderConfig, err := appConfig.EncoderConfig()
		if err != nil {
			return err
		}
		if err := transcode.NewSpectrumEncoder(encoderConfig).EncodeFile(spectrumExport, spectrum); err != nil {
			return fmt.Errorf("spectrum export failed: %w", err)
		}
		if encoderConfig.Format == transcode.ExportParquet {
			if err := verifyParquetExport(spectrumExport, spectrum.Len()); err != nil {
				return err
			}
		}
		logging.Info("Spectrum exported", logging.Fields{
			"file":   spectrumExport,
			"format": encoderConfig.Format,
			"bins":   spectrum.Len(),
		})
	}

	bin, amplitude := spectrum.PeakBin()
	output := spectrumOutput{
		File:          args[0],
		Window:        analyzer.Config().Window,
		Bins:          spectrum.Len(),
		DF:            spectrum.DF,
		PeakFrequency: spectrum.Frequency(bin),
		PeakAmplitude: amplitude,
		Export:        spectrumExport,
	}
	if spectrumFull {
		output.Spectrum = spectrum
	}
	return printResult(output)
}

// verifyParquetExport reads the exported file back and checks the row count
func verifyParquetExport(filename string, bins int) error {
	rows, err := transcode.ReadSpectrumParquetFile(filename)
	if err != nil {
		return fmt.Errorf("spectrum export verification failed: %w", err)
	}
	if len(rows) != bins {
		return fmt.Errorf("spectrum export verification failed: %s holds %d rows, expected %d", filename, len(rows), bins)
	}
	return nil
}
