package temporal

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-bench/algorithms/common"
	"github.com/RyanBlaney/sonido-bench/algorithms/windowing"
)

// DcRmsProcessingResult holds windowed DC and RMS estimates
type DcRmsProcessingResult struct {
	DCValue  float64 `json:"dc_value" yaml:"dc_value"`
	RMSValue float64 `json:"rms_value" yaml:"rms_value"`
}

// DcRms estimates the DC and RMS levels of a waveform under a spectral window.
// Windowing suppresses the contribution of a partial period at the buffer edges;
// the window gains are divided out so a full-scale constant still reads unchanged.
type DcRms struct{}

// NewDcRms creates a new DC/RMS analyzer
func NewDcRms() *DcRms {
	return &DcRms{}
}

// Process computes dc = mean(x*w)/CG and rms = sqrt(mean((x*w)^2)/PG), where CG and
// PG are the window's coherent and power gains. Rectangular yields the plain mean
// and RMS.
func (d *DcRms) Process(samples []float64, samplingPeriod float64, window windowing.ProcessingWindow) (DcRmsProcessingResult, error) {
	const op = "dc/rms"
	if err := common.ValidateSamples(op, samples, samplingPeriod); err != nil {
		return DcRmsProcessingResult{}, err
	}

	cfg := windowing.DefaultWindowConfig(len(samples))
	cfg.Type = window
	w, err := windowing.Generate(cfg)
	if err != nil {
		return DcRmsProcessingResult{}, err
	}

	return d.ProcessWithWindow(samples, w)
}

// ProcessWithWindow runs the analysis with a pre-generated window whose size
// must match the sample count
func (d *DcRms) ProcessWithWindow(samples []float64, w *windowing.Window) (DcRmsProcessingResult, error) {
	const op = "dc/rms"
	if w == nil {
		return DcRmsProcessingResult{}, common.InvalidArgument(op, "window is required")
	}
	if len(samples) == 0 {
		return DcRmsProcessingResult{}, common.InvalidArgument(op, "samples must not be empty")
	}
	if !common.AllFinite(samples) {
		return DcRmsProcessingResult{}, common.InvalidArgument(op, "samples must be finite")
	}
	windowed, err := w.Apply(samples)
	if err != nil {
		return DcRmsProcessingResult{}, common.InvalidArgument(op, "%v", err)
	}

	n := float64(len(windowed))
	dc := floats.Sum(windowed) / n / w.CoherentGain
	rms := math.Sqrt(floats.Dot(windowed, windowed) / n / w.PowerGain)

	return DcRmsProcessingResult{DCValue: dc, RMSValue: rms}, nil
}
