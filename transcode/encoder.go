package transcode

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	parquet "github.com/parquet-go/parquet-go"

	"github.com/RyanBlaney/sonido-bench/algorithms/spectral"
	"github.com/RyanBlaney/sonido-bench/logging"
	"github.com/RyanBlaney/sonido-bench/measurement"
)

// ExportFormat selects how spectra are written
type ExportFormat string

const (
	ExportDelimited ExportFormat = "csv"
	ExportParquet   ExportFormat = "parquet"
)

// ParseExportFormat validates an export format name
func ParseExportFormat(name string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(name)); f {
	case ExportDelimited, ExportParquet:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or parquet)", name)
}

// SpectrumRow is one bin of an exported spectrum
type SpectrumRow struct {
	Frequency float64 `parquet:"frequency" json:"frequency"`
	Amplitude float64 `parquet:"amplitude" json:"amplitude"`
	Phase     float64 `parquet:"phase" json:"phase"`
}

// EncoderConfig holds spectrum encoder configuration
type EncoderConfig struct {
	Format    ExportFormat `json:"format"`
	Delimiter rune         `json:"delimiter"`
	// Compression applies to Parquet output: snappy, zstd, gzip or none
	Compression string `json:"compression"`
}

// DefaultEncoderConfig returns comma-delimited export
func DefaultEncoderConfig() *EncoderConfig {
	return &EncoderConfig{
		Format:      ExportDelimited,
		Delimiter:   ',',
		Compression: "snappy",
	}
}

// SpectrumEncoder writes amplitude/phase spectra for diagnostics and offline analysis
type SpectrumEncoder struct {
	config *EncoderConfig
}

// NewSpectrumEncoder creates a new spectrum encoder
func NewSpectrumEncoder(config *EncoderConfig) *SpectrumEncoder {
	if config == nil {
		config = DefaultEncoderConfig()
	}
	return &SpectrumEncoder{config: config}
}

// SpectrumRows flattens a spectrum into one row per bin
func SpectrumRows(spectrum *spectral.AmplitudePhaseSpectrum) []SpectrumRow {
	rows := make([]SpectrumRow, spectrum.Len())
	for i := range rows {
		rows[i] = SpectrumRow{
			Frequency: spectrum.Frequency(i),
			Amplitude: spectrum.Amplitudes[i],
			Phase:     spectrum.Phases[i],
		}
	}
	return rows
}

// EncodeFile writes spectrum to filename, replacing any existing file
func (e *SpectrumEncoder) EncodeFile(filename string, spectrum *spectral.AmplitudePhaseSpectrum) error {
	logger := logging.WithFields(logging.Fields{
		"component": "spectrum_encoder",
		"function":  "EncodeFile",
		"filename":  filename,
		"format":    e.config.Format,
	})

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}

	if err := e.Encode(f, spectrum); err != nil {
		f.Close()
		logger.Error(err, "Failed to encode spectrum")
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filename, err)
	}

	logger.Debug("Spectrum exported", logging.Fields{
		"bins": spectrum.Len(),
	})
	return nil
}

// Encode writes spectrum to w in the configured format. Delimited output has
// two columns, frequency and amplitude; Parquet rows also carry the phase.
func (e *SpectrumEncoder) Encode(w io.Writer, spectrum *spectral.AmplitudePhaseSpectrum) error {
	if spectrum == nil || spectrum.Len() == 0 {
		return fmt.Errorf("spectrum is empty")
	}
	if len(spectrum.Phases) != spectrum.Len() {
		return fmt.Errorf("spectrum has %d amplitudes but %d phases", spectrum.Len(), len(spectrum.Phases))
	}

	switch e.config.Format {
	case ExportDelimited, "":
		return e.encodeDelimited(w, spectrum)
	case ExportParquet:
		return e.encodeParquet(w, spectrum)
	default:
		return fmt.Errorf("unsupported export format %q", e.config.Format)
	}
}

func (e *SpectrumEncoder) encodeDelimited(w io.Writer, spectrum *spectral.AmplitudePhaseSpectrum) error {
	writer := csv.NewWriter(w)
	if e.config.Delimiter != 0 {
		writer.Comma = e.config.Delimiter
	}

	for _, row := range SpectrumRows(spectrum) {
		record := []string{formatFloat(row.Frequency), formatFloat(row.Amplitude)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write spectrum row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (e *SpectrumEncoder) encodeParquet(w io.Writer, spectrum *spectral.AmplitudePhaseSpectrum) error {
	var options []parquet.WriterOption
	if compression := parquetCompression(e.config.Compression); compression != nil {
		options = append(options, compression)
	}

	pw := parquet.NewGenericWriter[SpectrumRow](w, options...)
	if _, err := pw.Write(SpectrumRows(spectrum)); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

func parquetCompression(name string) parquet.WriterOption {
	switch strings.ToLower(name) {
	case "none", "uncompressed":
		return nil
	case "zstd":
		return parquet.Compression(&parquet.Zstd)
	case "gzip", "gz":
		return parquet.Compression(&parquet.Gzip)
	default:
		return parquet.Compression(&parquet.Snappy)
	}
}

// ReadSpectrumParquet reads size bytes of rows written by the Parquet encoder
func ReadSpectrumParquet(r io.ReaderAt, size int64) ([]SpectrumRow, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet data: %w", err)
	}

	gr := parquet.NewGenericReader[SpectrumRow](file)
	defer gr.Close()

	out := make([]SpectrumRow, 0, file.NumRows())
	batch := make([]SpectrumRow, 1024)
	for {
		n, err := gr.Read(batch)
		if n > 0 {
			out = append(out, batch[:n]...)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return out, nil
}

// ReadSpectrumParquetFile reads a spectrum exported with ExportParquet
func ReadSpectrumParquetFile(filename string) ([]SpectrumRow, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", filename, err)
	}
	return ReadSpectrumParquet(f, info.Size())
}

// EncodeWaveform writes w as "time,value" rows that Decoder reads back
func EncodeWaveform(out io.Writer, w *measurement.Waveform) error {
	if w == nil || w.Len() == 0 {
		return fmt.Errorf("waveform is empty")
	}

	buffered := bufio.NewWriter(out)
	writer := csv.NewWriter(buffered)
	if err := writer.Write([]string{"time", "value"}); err != nil {
		return err
	}
	for i, v := range w.Samples {
		if err := writer.Write([]string{formatFloat(w.Time(i)), formatFloat(v)}); err != nil {
			return fmt.Errorf("failed to write waveform row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return buffered.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
