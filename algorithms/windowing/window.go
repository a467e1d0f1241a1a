// Package windowing generates spectral window coefficients together with the
// correction factors the DC/RMS and spectrum analyzers divide out.
//
// All windows are periodic (DFT-even): w[n] = f(n/N) for n = 0..N-1, so a
// window of length N is one period of a length-N cyclic sequence.
package windowing

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-bench/algorithms/common"
)

// ProcessingWindow selects a window function
type ProcessingWindow string

const (
	Rectangular             ProcessingWindow = "rectangular"
	Hann                    ProcessingWindow = "hann"
	Hamming                 ProcessingWindow = "hamming"
	Blackman                ProcessingWindow = "blackman"
	ExactBlackman           ProcessingWindow = "exact_blackman"
	BlackmanHarris          ProcessingWindow = "blackman_harris"
	BlackmanNuttall         ProcessingWindow = "blackman_nuttall"
	SevenTermBlackmanHarris ProcessingWindow = "seven_term_blackman_harris"
	FlatTop                 ProcessingWindow = "flat_top"
	LowSideLobe             ProcessingWindow = "low_side_lobe"
	Triangle                ProcessingWindow = "triangle"
	Welch                   ProcessingWindow = "welch"
	Kaiser                  ProcessingWindow = "kaiser"
	Tukey                   ProcessingWindow = "tukey"
)

const (
	DefaultKaiserBeta = 8.6
	DefaultTukeyAlpha = 0.5
)

// WindowConfig holds window configuration parameters
type WindowConfig struct {
	Type  ProcessingWindow `json:"type" yaml:"type"`
	Size  int              `json:"size" yaml:"size"`
	Beta  float64          `json:"beta" yaml:"beta"`   // Kaiser shape parameter
	Alpha float64          `json:"alpha" yaml:"alpha"` // Tukey taper fraction (0.0 to 1.0)
}

// Window holds generated coefficients and their correction factors
type Window struct {
	Type         ProcessingWindow `json:"type"`
	Size         int              `json:"size"`
	Coefficients []float64        `json:"coefficients"`
	CoherentGain float64          `json:"coherent_gain"` // mean of the window, divides DC and amplitudes
	PowerGain    float64          `json:"power_gain"`    // mean square of the window, divides power
	ENBW         float64          `json:"enbw"`          // equivalent noise bandwidth in bins
}

// Properties describes a window's correction factors independent of length
type Properties struct {
	Window       ProcessingWindow `json:"window" yaml:"window"`
	CoherentGain float64          `json:"coherent_gain" yaml:"coherent_gain"`
	PowerGain    float64          `json:"power_gain" yaml:"power_gain"`
	ENBW         float64          `json:"enbw" yaml:"enbw"`
	Parametric   bool             `json:"parametric" yaml:"parametric"`
}

type definition struct {
	generate func(n int, cfg *WindowConfig) []float64
	// gains returns coherent and power gain; coeffs is only consulted by
	// windows without a closed form
	gains      func(cfg *WindowConfig, coeffs []float64) (coherent, power float64)
	parametric bool
}

var definitions = map[ProcessingWindow]definition{
	Rectangular:             cosineSumDefinition(rectangularTerms),
	Hann:                    cosineSumDefinition(hannTerms),
	Hamming:                 cosineSumDefinition(hammingTerms),
	Blackman:                cosineSumDefinition(blackmanTerms),
	ExactBlackman:           cosineSumDefinition(exactBlackmanTerms),
	BlackmanHarris:          cosineSumDefinition(blackmanHarrisTerms),
	BlackmanNuttall:         cosineSumDefinition(blackmanNuttallTerms),
	SevenTermBlackmanHarris: cosineSumDefinition(sevenTermBlackmanHarrisTerms),
	FlatTop:                 cosineSumDefinition(flatTopTerms),
	LowSideLobe:             cosineSumDefinition(lowSideLobeTerms),
	Triangle: {
		generate: func(n int, _ *WindowConfig) []float64 { return generateTriangle(n) },
		gains:    func(*WindowConfig, []float64) (float64, float64) { return 1.0 / 2.0, 1.0 / 3.0 },
	},
	Welch: {
		generate: func(n int, _ *WindowConfig) []float64 { return generateWelch(n) },
		gains:    func(*WindowConfig, []float64) (float64, float64) { return 2.0 / 3.0, 8.0 / 15.0 },
	},
	Kaiser: {
		generate:   func(n int, cfg *WindowConfig) []float64 { return generateKaiser(n, cfg.Beta) },
		gains:      measuredGains,
		parametric: true,
	},
	Tukey: {
		generate:   func(n int, cfg *WindowConfig) []float64 { return generateTukey(n, cfg.Alpha) },
		gains:      tukeyGains,
		parametric: true,
	},
}

// Windows lists every supported window in a stable order
func Windows() []ProcessingWindow {
	out := make([]ProcessingWindow, 0, len(definitions))
	for w := range definitions {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// ParseProcessingWindow accepts window names case-insensitively, with '-' or ' ' for '_'
func ParseProcessingWindow(name string) (ProcessingWindow, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	w := ProcessingWindow(normalized)
	if _, ok := definitions[w]; !ok {
		return "", common.InvalidArgument("parse window", "unknown processing window %q", name)
	}
	return w, nil
}

// Valid reports whether w names a supported window
func (w ProcessingWindow) Valid() bool {
	_, ok := definitions[w]
	return ok
}

func (w ProcessingWindow) String() string {
	return string(w)
}

// DefaultWindowConfig returns a Hann configuration for the given size
func DefaultWindowConfig(size int) *WindowConfig {
	return &WindowConfig{
		Type:  Hann,
		Size:  size,
		Beta:  DefaultKaiserBeta,
		Alpha: DefaultTukeyAlpha,
	}
}

// Coefficients returns length coefficients of window using default shape parameters
func Coefficients(window ProcessingWindow, length int) ([]float64, error) {
	cfg := DefaultWindowConfig(length)
	cfg.Type = window
	w, err := Generate(cfg)
	if err != nil {
		return nil, err
	}
	return w.Coefficients, nil
}

// Generate creates a window with the specified configuration
func Generate(config *WindowConfig) (*Window, error) {
	if config == nil {
		return nil, common.InvalidArgument("generate window", "window configuration is required")
	}
	def, err := validateConfig(config)
	if err != nil {
		return nil, err
	}

	coefficients := def.generate(config.Size, config)
	coherent, power := def.gains(config, coefficients)

	return &Window{
		Type:         config.Type,
		Size:         config.Size,
		Coefficients: coefficients,
		CoherentGain: coherent,
		PowerGain:    power,
		ENBW:         power / (coherent * coherent),
	}, nil
}

// PropertiesOf returns the correction factors of window with default shape parameters.
// Parametric windows without a closed form are measured at length 4096.
func PropertiesOf(window ProcessingWindow) (Properties, error) {
	cfg := DefaultWindowConfig(4096)
	cfg.Type = window
	w, err := Generate(cfg)
	if err != nil {
		return Properties{}, err
	}
	return Properties{
		Window:       window,
		CoherentGain: w.CoherentGain,
		PowerGain:    w.PowerGain,
		ENBW:         w.ENBW,
		Parametric:   definitions[window].parametric,
	}, nil
}

// validateConfig validates window configuration
func validateConfig(config *WindowConfig) (definition, error) {
	def, ok := definitions[config.Type]
	if !ok {
		return definition{}, common.InvalidArgument("generate window", "unknown processing window %q", config.Type)
	}
	if config.Size <= 0 {
		return definition{}, common.InvalidArgument("generate window", "window length must be positive: %d", config.Size)
	}

	switch config.Type {
	case Kaiser:
		if config.Beta < 0 || !common.IsFinite(config.Beta) {
			return definition{}, common.InvalidArgument("generate window", "Kaiser beta parameter must be non-negative: %v", config.Beta)
		}
	case Tukey:
		if config.Alpha < 0 || config.Alpha > 1 || math.IsNaN(config.Alpha) {
			return definition{}, common.InvalidArgument("generate window", "Tukey alpha parameter must be between 0 and 1: %v", config.Alpha)
		}
	}
	return def, nil
}

// Apply applies the window to a signal (creates new array)
func (w *Window) Apply(signal []float64) ([]float64, error) {
	if len(signal) != w.Size {
		return nil, fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), w.Size)
	}
	return floats.MulTo(make([]float64, w.Size), signal, w.Coefficients), nil
}

// ApplyInPlace applies the window to a signal in-place
func (w *Window) ApplyInPlace(signal []float64) error {
	if len(signal) != w.Size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), w.Size)
	}
	floats.Mul(signal, w.Coefficients)
	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (w *Window) GetCoefficients() []float64 {
	return slices.Clone(w.Coefficients)
}

// measuredGains derives the gains from the generated coefficients
func measuredGains(_ *WindowConfig, coeffs []float64) (float64, float64) {
	return common.Mean(coeffs), common.MeanSquare(coeffs)
}
