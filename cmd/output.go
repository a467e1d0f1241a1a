package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Formatter renders command results
type Formatter interface {
	Format(data any) ([]byte, error)
}

// Tabular is implemented by results that can be shown as a table
type Tabular interface {
	Table() (headers []string, rows [][]string)
}

// JSONFormatter renders indented JSON
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data any) ([]byte, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// YAMLFormatter renders YAML documents
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TableFormatter renders Tabular data as aligned columns and falls back to YAML
type TableFormatter struct{}

func (f *TableFormatter) Format(data any) ([]byte, error) {
	table, ok := data.(Tabular)
	if !ok {
		return (&YAMLFormatter{}).Format(data)
	}

	headers, rows := table.Table()

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	writeRow(w, headers)
	for _, row := range rows {
		writeRow(w, row)
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow(w io.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, cell)
	}
	fmt.Fprintln(w)
}

func newFormatter(format string) Formatter {
	switch format {
	case "json":
		return &JSONFormatter{}
	case "yaml":
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// printResult writes data to stdout in the configured output format
func printResult(data any) error {
	format := "table"
	if appConfig != nil {
		format = appConfig.OutputFormat
	}

	out, err := newFormatter(format).Format(data)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}
