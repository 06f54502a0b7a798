// Package report renders key differences for people and for tooling.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/k0ns0l/localedrift/internal/audit"
	"github.com/k0ns0l/localedrift/internal/errors"
	"github.com/k0ns0l/localedrift/internal/keydiff"
	"github.com/k0ns0l/localedrift/internal/security"
)

// Format is an output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

const (
	headerDifferences = "Differences found:"
	noDifferences     = "No differences found. Files are identical."
)

// ParseFormat converts a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML, FormatCSV:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", formatError(s)
	}
}

// Difference is the serialized form of a keydiff.Record
type Difference struct {
	Path    string       `json:"path" yaml:"path"`
	Side    keydiff.Side `json:"side" yaml:"side"`
	Message string       `json:"message" yaml:"message"`
}

// Report is the structured output of a single comparison
type Report struct {
	Identical   bool            `json:"identical" yaml:"identical"`
	Summary     keydiff.Summary `json:"summary" yaml:"summary"`
	Differences []Difference    `json:"differences" yaml:"differences"`
}

// New builds a report from diff records
func New(records []keydiff.Record) *Report {
	return &Report{
		Identical:   keydiff.Identical(records),
		Summary:     keydiff.Summarize(records),
		Differences: differences(records),
	}
}

// LocaleReport is one target locale inside an audit report
type LocaleReport struct {
	Locale string `json:"locale" yaml:"locale"`
	File   string `json:"file" yaml:"file"`
	Size   int64  `json:"size" yaml:"size"`
	Report `yaml:",inline"`
}

// AuditReport is the structured output of an audit
type AuditReport struct {
	Reference string          `json:"reference" yaml:"reference"`
	Identical bool            `json:"identical" yaml:"identical"`
	Summary   keydiff.Summary `json:"summary" yaml:"summary"`
	Locales   []LocaleReport  `json:"locales" yaml:"locales"`
}

// NewAudit builds an audit report from pair results
func NewAudit(reference string, results []audit.PairResult) *AuditReport {
	r := &AuditReport{
		Reference: reference,
		Identical: true,
		Locales:   make([]LocaleReport, 0, len(results)),
	}

	for _, p := range results {
		lr := LocaleReport{
			Locale: p.Locale,
			File:   p.File,
			Size:   p.Size,
			Report: *New(p.Records),
		}
		r.Locales = append(r.Locales, lr)

		r.Identical = r.Identical && lr.Identical
		r.Summary.Total += lr.Summary.Total
		r.Summary.FirstOnly += lr.Summary.FirstOnly
		r.Summary.SecondOnly += lr.Summary.SecondOnly
	}

	return r
}

// Render writes the records of one comparison in the given format
func Render(w io.Writer, records []keydiff.Record, format Format) error {
	var err error
	switch format {
	case FormatText, "":
		err = renderText(w, records)
	case FormatJSON:
		err = encodeJSON(w, New(records))
	case FormatYAML:
		err = encodeYAML(w, New(records))
	case FormatCSV:
		err = renderCSV(w, []string{"path", "side", "message"}, func(emit func(...string) error) error {
			for _, r := range records {
				if err := emit(r.Path, r.Side.String(), r.String()); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return formatError(string(format))
	}

	if err != nil {
		return writeError(err)
	}
	return nil
}

// RenderAudit writes the results of an audit in the given format.
// reference names the locale every result was compared against.
func RenderAudit(w io.Writer, reference string, results []audit.PairResult, format Format) error {
	var err error
	switch format {
	case FormatText, "":
		err = renderAuditText(w, reference, results)
	case FormatJSON:
		err = encodeJSON(w, NewAudit(reference, results))
	case FormatYAML:
		err = encodeYAML(w, NewAudit(reference, results))
	case FormatCSV:
		err = renderCSV(w, []string{"locale", "path", "side", "message"}, func(emit func(...string) error) error {
			for _, p := range results {
				for _, r := range p.Records {
					if err := emit(p.Locale, r.Path, r.Side.String(), r.String()); err != nil {
						return err
					}
				}
			}
			return nil
		})
	default:
		return formatError(string(format))
	}

	if err != nil {
		return writeError(err)
	}
	return nil
}

// WriteFile renders into memory and writes the result to path, so a
// failed render never leaves a truncated report behind.
func WriteFile(path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}

	if err := security.SafeWriteFile(path, buf.Bytes()); err != nil {
		return writeError(err).WithContext("path", path)
	}
	return nil
}

func renderText(w io.Writer, records []keydiff.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, noDifferences)
		return err
	}

	if _, err := fmt.Fprintln(w, headerDifferences); err != nil {
		return err
	}
	for _, r := range records {
		if _, err := fmt.Fprintln(w, r.String()); err != nil {
			return err
		}
	}
	return nil
}

func renderAuditText(w io.Writer, reference string, results []audit.PairResult) error {
	if _, err := fmt.Fprintf(w, "Reference locale: %s\n", reference); err != nil {
		return err
	}

	drifted := 0
	total := 0
	for _, p := range results {
		if _, err := fmt.Fprintf(w, "\n[%s] %s (%s)\n", p.Locale, p.File, humanize.Bytes(uint64(p.Size))); err != nil {
			return err
		}
		if err := renderText(w, p.Records); err != nil {
			return err
		}
		if p.Drifted() {
			drifted++
			total += len(p.Records)
		}
	}

	_, err := fmt.Fprintf(w, "\nTotal: %s across %d of %d locale(s)\n",
		pluralize(total, "difference"), drifted, len(results))
	return err
}

func renderCSV(w io.Writer, header []string, rows func(emit func(...string) error) error) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return err
	}
	if err := rows(func(fields ...string) error { return writer.Write(fields) }); err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

func encodeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func encodeYAML(w io.Writer, v interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

func differences(records []keydiff.Record) []Difference {
	out := make([]Difference, 0, len(records))
	for _, r := range records {
		out = append(out, Difference{Path: r.Path, Side: r.Side, Message: r.String()})
	}
	return out
}

func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}

func formatError(format string) *errors.LocaleDriftError {
	return errors.NewError(errors.ErrReportFormat.Type, errors.ErrReportFormat.Code,
		fmt.Sprintf("unsupported output format %q", format)).
		WithGuidance("Use one of: text, json, yaml, csv").
		WithContext("format", format)
}

func writeError(err error) *errors.LocaleDriftError {
	return errors.WrapError(err, errors.ErrReportWrite.Type, errors.ErrReportWrite.Code, errors.ErrReportWrite.Message).
		WithSeverity(errors.ErrReportWrite.Severity).
		WithGuidance(errors.ErrReportWrite.Guidance)
}
