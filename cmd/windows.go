package cmd

import (
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-bench/algorithms/windowing"
)

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List processing windows and their correction gains",
	Args:  cobra.NoArgs,
	RunE:  runWindows,
}

func init() {
	rootCmd.AddCommand(windowsCmd)
}

type windowsOutput []windowing.Properties

func (o windowsOutput) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(o))
	for _, p := range o {
		parametric := ""
		if p.Parametric {
			parametric = "yes"
		}
		rows = append(rows, []string{
			string(p.Window),
			formatValue(p.CoherentGain),
			formatValue(p.PowerGain),
			formatValue(p.ENBW),
			parametric,
		})
	}
	return []string{"WINDOW", "COHERENT GAIN", "POWER GAIN", "ENBW (bins)", "PARAMETRIC"}, rows
}

func runWindows(cmd *cobra.Command, args []string) error {
	var output windowsOutput
	for _, w := range windowing.Windows() {
		properties, err := windowing.PropertiesOf(w)
		if err != nil {
			return err
		}
		output = append(output, properties)
	}
	return printResult(output)
}
