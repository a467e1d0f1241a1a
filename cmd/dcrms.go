package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-bench/algorithms/windowing"
)

var dcrmsCmd = &cobra.Command{
	Use:   "dcrms [file]",
	Short: "Measure DC and RMS levels",
	Long: `Measure the DC and RMS levels of a waveform. The samples are weighted by
the selected window and corrected by its coherent and power gain.

Examples:
  sonido-bench dcrms capture.csv
  sonido-bench dcrms --window low_side_lobe --sampling-period 1e-6 capture.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runDcRms,
}

func init() {
	rootCmd.AddCommand(dcrmsCmd)

	dcrmsCmd.Flags().String("window", string(windowing.Hann), "processing window")
	annotateKey(dcrmsCmd.Flags(), "window", "window")
	addInputFlags(dcrmsCmd)
}

type dcRmsOutput struct {
	File     string                     `json:"file" yaml:"file"`
	Window   windowing.ProcessingWindow `json:"window" yaml:"window"`
	Samples  int                        `json:"samples" yaml:"samples"`
	DCValue  float64                    `json:"dc_value" yaml:"dc_value"`
	RMSValue float64                    `json:"rms_value" yaml:"rms_value"`
}

func (o dcRmsOutput) Table() ([]string, [][]string) {
	return []string{"FILE", "WINDOW", "SAMPLES", "DC", "RMS"}, [][]string{{
		o.File, string(o.Window), fmt.Sprint(o.Samples), formatValue(o.DCValue), formatValue(o.RMSValue),
	}}
}

func runDcRms(cmd *cobra.Command, args []string) error {
	waveform, err := loadWaveform(args[0])
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer()
	if err != nil {
		return err
	}

	result, err := analyzer.DcRms(waveform)
	if err != nil {
		return fmt.Errorf("dc/rms measurement failed: %w", err)
	}

	return printResult(dcRmsOutput{
		File:     args[0],
		Window:   analyzer.Config().Window,
		Samples:  waveform.Len(),
		DCValue:  result.DCValue,
		RMSValue: result.RMSValue,
	})
}
