// Package audit compares every locale file in a directory against a
// reference locale.
package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/k0ns0l/localedrift/internal/errors"
	"github.com/k0ns0l/localedrift/internal/keydiff"
	"github.com/k0ns0l/localedrift/internal/loader"
	"github.com/k0ns0l/localedrift/internal/logging"
)

// DefaultExtensions are used when Options.Extensions is empty
var DefaultExtensions = []string{".json", ".yaml", ".yml", ".toml"}

// Options configures an Auditor
type Options struct {
	// Extensions selects which files in the directory are locale files.
	Extensions []string
	// RootLabel overrides the per-locale root label when set.
	RootLabel string
}

// PairResult is the outcome of diffing the reference against one locale.
// First is always the reference, second the target.
type PairResult struct {
	Locale  string           `json:"locale" yaml:"locale"`
	File    string           `json:"file" yaml:"file"`
	Size    int64            `json:"size" yaml:"size"`
	Records []keydiff.Record `json:"differences" yaml:"differences"`
	Summary keydiff.Summary  `json:"summary" yaml:"summary"`
}

// Drifted reports whether the pair has any differences
func (p PairResult) Drifted() bool {
	return len(p.Records) > 0
}

// Result is the outcome of an audit run
type Result struct {
	Directory     string        `json:"directory" yaml:"directory"`
	Reference     string        `json:"reference" yaml:"reference"`
	ReferenceFile string        `json:"reference_file" yaml:"reference_file"`
	Pairs         []PairResult  `json:"locales" yaml:"locales"`
	StartedAt     time.Time     `json:"started_at" yaml:"started_at"`
	Duration      time.Duration `json:"duration" yaml:"duration"`
	BytesRead     int64         `json:"bytes_read" yaml:"bytes_read"`
}

// Drifted reports whether any locale differs from the reference
func (r *Result) Drifted() bool {
	for _, p := range r.Pairs {
		if p.Drifted() {
			return true
		}
	}
	return false
}

// Summary totals the records of every pair
func (r *Result) Summary() keydiff.Summary {
	var total keydiff.Summary
	for _, p := range r.Pairs {
		total.Total += p.Summary.Total
		total.FirstOnly += p.Summary.FirstOnly
		total.SecondOnly += p.Summary.SecondOnly
	}
	return total
}

// DriftedLocales returns the names of locales with differences
func (r *Result) DriftedLocales() []string {
	var names []string
	for _, p := range r.Pairs {
		if p.Drifted() {
			names = append(names, p.Locale)
		}
	}
	return names
}

// Auditor runs reference audits over locale directories
type Auditor struct {
	loader     *loader.Loader
	logger     *logging.Logger
	extensions []string
	rootLabel  string
}

// New creates an auditor
func New(opts Options, logger *logging.Logger) *Auditor {
	if logger == nil {
		logger = logging.Discard()
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	return &Auditor{
		loader:     loader.New(logger),
		logger:     logger.WithComponent("audit"),
		extensions: extensions,
		rootLabel:  opts.RootLabel,
	}
}

// Discover lists the locale files directly inside dir, sorted by name
func (a *Auditor) Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		sentinel := errors.ErrDocumentUnreadable
		if os.IsNotExist(err) {
			sentinel = errors.ErrDocumentNotFound
		}
		return nil, errors.WrapError(err, sentinel.Type, sentinel.Code, "failed to read locale directory").
			WithSeverity(errors.SeverityHigh).
			WithRecoverable(sentinel.Recoverable).
			WithGuidance("Check locales.directory in the configuration or pass the directory as an argument").
			WithContext("path", dir)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if a.hasLocaleExtension(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// ResolveReference finds the reference file among the discovered files.
// The reference may be a file name ("en.json") or a bare locale name ("en").
func (a *Auditor) ResolveReference(files []string, reference string) (string, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return "", errors.NewError(errors.ErrorTypeConfig, errors.CodeConfigInvalid, "reference locale is empty").
			WithGuidance("Set locales.reference or pass --reference")
	}

	var matches []string
	for _, f := range files {
		base := filepath.Base(f)
		if base == reference || f == reference {
			return f, nil
		}
		if loader.LocaleName(f) == reference {
			matches = append(matches, f)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", errors.NewError(errors.ErrorTypeDocument, errors.CodeDocumentNotFound,
			fmt.Sprintf("reference locale %q not found", reference)).
			WithSeverity(errors.SeverityHigh).
			WithGuidance("Check locales.reference and locales.extensions in the configuration").
			WithContext("reference", reference)
	default:
		return "", errors.NewError(errors.ErrorTypeConfig, errors.CodeConfigInvalid,
			fmt.Sprintf("reference locale %q is ambiguous", reference)).
			WithGuidance("Name the reference with its extension, for example "+filepath.Base(matches[0])).
			WithContext("candidates", matches)
	}
}

// Run diffs the reference locale against every other locale in dir.
// All files are loaded before any comparison, so a load failure returns
// no partial result.
func (a *Auditor) Run(ctx context.Context, dir, reference string) (*Result, error) {
	start := time.Now()
	a.logger.LogOperation(ctx, "audit", "directory", dir, "reference", reference)

	result, err := a.run(ctx, dir, reference, start)
	if err != nil {
		a.logger.LogOperationFailure(ctx, "audit", err, time.Since(start), "directory", dir)
		return nil, err
	}

	a.logger.LogOperationSuccess(ctx, "audit", result.Duration,
		"directory", dir,
		"locales", len(result.Pairs),
		"differences", result.Summary().Total)

	return result, nil
}

func (a *Auditor) run(ctx context.Context, dir, reference string, start time.Time) (*Result, error) {
	files, err := a.Discover(dir)
	if err != nil {
		return nil, err
	}

	refPath, err := a.ResolveReference(files, reference)
	if err != nil {
		return nil, err
	}

	names := localeNames(files)
	docs := make([]*loader.Document, 0, len(files))
	var refDoc *loader.Document
	var bytesRead int64

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := a.loader.Load(f)
		if err != nil {
			return nil, err
		}
		bytesRead += doc.Size

		if f == refPath {
			refDoc = doc
			continue
		}
		docs = append(docs, doc)
	}

	result := &Result{
		Directory:     dir,
		Reference:     names[refPath],
		ReferenceFile: refPath,
		Pairs:         make([]PairResult, 0, len(docs)),
		StartedAt:     start,
		BytesRead:     bytesRead,
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Pairs = append(result.Pairs, a.compare(refDoc, doc, names[doc.Path]))
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (a *Auditor) compare(ref, target *loader.Document, name string) PairResult {
	label := a.rootLabel
	if label == "" {
		label = name
	}

	records := keydiff.Diff(ref.Tree, target.Tree, label)
	summary := keydiff.Summarize(records)

	if len(records) > 0 {
		a.logger.Info("Locale drift detected",
			"locale", name,
			"missing_in_locale", summary.FirstOnly,
			"missing_in_reference", summary.SecondOnly)
	}

	return PairResult{
		Locale:  name,
		File:    target.Path,
		Size:    target.Size,
		Records: records,
		Summary: summary,
	}
}

// localeNames maps each file to its locale name. Files sharing a locale
// name, such as fr.json and fr.yaml, keep their extension so their report
// sections and key paths stay distinct.
func localeNames(files []string) map[string]string {
	counts := make(map[string]int, len(files))
	for _, f := range files {
		counts[loader.LocaleName(f)]++
	}

	names := make(map[string]string, len(files))
	for _, f := range files {
		name := loader.LocaleName(f)
		if counts[name] > 1 {
			name = filepath.Base(f)
		}
		names[f] = name
	}
	return names
}

func (a *Auditor) hasLocaleExtension(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range a.extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
