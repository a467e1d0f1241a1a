package transcode

import (
	"bytes"
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-bench/algorithms/common"
	"github.com/RyanBlaney/sonido-bench/logging"
	"github.com/RyanBlaney/sonido-bench/measurement"
)

// InputFormat is the on-disk layout of a captured waveform
type InputFormat string

const (
	// FormatAuto picks the format from the file extension, see FormatForFile
	FormatAuto InputFormat = "auto"
	// FormatDelimited is text with one sample per row, as "value" or "time,value"
	FormatDelimited InputFormat = "delimited"
	// FormatF64LE is raw little-endian float64 samples with no header
	FormatF64LE InputFormat = "f64le"
)

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	Format InputFormat `json:"format"`
	// Delimiter of 0 detects comma, tab or semicolon from the first data row
	Delimiter rune `json:"delimiter"`
	// SamplingPeriod is required for value-only and raw inputs and overrides
	// the period inferred from a time column when set
	SamplingPeriod float64 `json:"sampling_period"`
	T0             float64 `json:"t0"`
	// TimeTolerance is the allowed relative deviation of each time step from the first
	TimeTolerance float64 `json:"time_tolerance"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		Format:        FormatAuto,
		TimeTolerance: 0.01,
	}
}

// Decoder reads waveforms captured by bench instruments or exported by other tools
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new waveform decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// FormatForFile picks the input format from a file extension
func FormatForFile(filename string) InputFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".f64", ".bin", ".raw":
		return FormatF64LE
	default:
		return FormatDelimited
	}
}

// DecodeFile decodes a waveform file
func (d *Decoder) DecodeFile(filename string) (*measurement.Waveform, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "waveform_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	logger.Debug("Starting waveform file decode")

	data, err := os.ReadFile(filename)
	if err != nil {
		logger.Error(err, "Failed to read waveform file")
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	if d.config.Format == FormatAuto {
		config := *d.config
		config.Format = FormatForFile(filename)
		return NewDecoder(&config).DecodeBytes(data)
	}
	return d.DecodeBytes(data)
}

// DecodeReader decodes a waveform from an io.Reader
func (d *Decoder) DecodeReader(reader io.Reader) (*measurement.Waveform, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read waveform data: %w", err)
	}
	return d.DecodeBytes(data)
}

// DecodeBytes decodes a waveform held in memory. FormatAuto is read as delimited text.
func (d *Decoder) DecodeBytes(data []byte) (*measurement.Waveform, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "waveform_decoder",
		"function":  "DecodeBytes",
		"data_size": len(data),
		"format":    d.config.Format,
	})

	if len(data) == 0 {
		return nil, fmt.Errorf("empty waveform data")
	}

	var (
		waveform *measurement.Waveform
		err      error
	)
	switch d.config.Format {
	case FormatDelimited, FormatAuto, "":
		waveform, err = d.decodeDelimited(data)
	case FormatF64LE:
		waveform, err = d.decodeF64LE(data)
	default:
		err = fmt.Errorf("unsupported input format %q", d.config.Format)
	}
	if err != nil {
		logger.Error(err, "Failed to decode waveform")
		return nil, err
	}

	logger.Debug("Waveform decoded", logging.Fields{
		"samples":         waveform.Len(),
		"sampling_period": waveform.SamplingPeriod,
		"t0":              waveform.T0,
	})
	return waveform, nil
}

func (d *Decoder) decodeF64LE(data []byte) (*measurement.Waveform, error) {
	if d.config.SamplingPeriod <= 0 {
		return nil, fmt.Errorf("sampling period is required for %s input", FormatF64LE)
	}
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("raw input length %d is not a multiple of 8 bytes", len(data))
	}

	samples := bytesToFloat64(data)
	return measurement.NewWaveform(samples, d.config.SamplingPeriod, d.config.T0)
}

func (d *Decoder) decodeDelimited(data []byte) (*measurement.Waveform, error) {
	delimiter := d.config.Delimiter
	if delimiter == 0 {
		delimiter = detectDelimiter(data)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		times   []float64
		samples []float64
		columns int
		row     int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse waveform text: %w", err)
		}
		row++

		values, ok := parseRecord(record)
		if !ok {
			// only the first row may be a header
			if row == 1 {
				continue
			}
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: non-numeric value in %q", line, strings.Join(record, string(delimiter)))
		}

		if columns == 0 {
			columns = len(values)
			if columns > 2 {
				return nil, fmt.Errorf("expected 1 or 2 columns, found %d", columns)
			}
		}
		if len(values) != columns {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d columns, found %d", line, columns, len(values))
		}

		if columns == 2 {
			times = append(times, values[0])
			samples = append(samples, values[1])
		} else {
			samples = append(samples, values[0])
		}
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples found")
	}

	samplingPeriod, t0 := d.config.SamplingPeriod, d.config.T0
	if columns == 2 {
		t0 = times[0]
		if samplingPeriod <= 0 {
			if len(times) < 2 {
				return nil, fmt.Errorf("at least two timestamps are needed to infer the sampling period")
			}
			samplingPeriod = times[1] - times[0]
		}
		if err := d.checkUniform(times, samplingPeriod); err != nil {
			return nil, err
		}
	} else if samplingPeriod <= 0 {
		return nil, fmt.Errorf("sampling period is required for value-only input")
	}

	return measurement.NewWaveform(samples, samplingPeriod, t0)
}

// checkUniform rejects time columns whose steps stray from samplingPeriod
func (d *Decoder) checkUniform(times []float64, samplingPeriod float64) error {
	if samplingPeriod <= 0 {
		return fmt.Errorf("timestamps must increase, first step is %v", samplingPeriod)
	}
	for i := 1; i < len(times); i++ {
		step := times[i] - times[i-1]
		if common.RelativeError(step, samplingPeriod) > d.config.TimeTolerance {
			return fmt.Errorf("non-uniform sampling at row %d: step %v, expected %v", i+1, step, samplingPeriod)
		}
	}
	return nil
}

// detectDelimiter inspects the first non-comment line
func detectDelimiter(data []byte) rune {
	for line := range strings.Lines(string(data)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch {
		case strings.ContainsRune(line, '\t'):
			return '\t'
		case strings.ContainsRune(line, ';'):
			return ';'
		default:
			return ','
		}
	}
	return ','
}

func parseRecord(record []string) ([]float64, bool) {
	values := make([]float64, 0, len(record))
	for _, field := range record {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	return values, len(values) > 0
}

// bytesToFloat64 converts raw little-endian float64 bytes to []float64
func bytesToFloat64(data []byte) []float64 {
	sampleCount := len(data) / 8
	samples := make([]float64, sampleCount)

	for i := range sampleCount {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}

	return samples
}
