// Package loader reads localization files into ordered locale trees.
//
// Every supported format keeps keys in the order they appear in the file,
// so diffs over loaded trees are reproducible across runs.
package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/k0ns0l/localedrift/internal/errors"
	"github.com/k0ns0l/localedrift/internal/locale"
	"github.com/k0ns0l/localedrift/internal/logging"
	"github.com/k0ns0l/localedrift/internal/security"
)

// Format identifies the syntax of a locale file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is a loaded locale file
type Document struct {
	Path     string
	Format   Format
	Size     int64
	LoadedAt time.Time
	Tree     *locale.Tree
}

// Name returns the file name without directory or extension, which is
// usually the locale code ("en", "pt-BR").
func (d *Document) Name() string {
	return LocaleName(d.Path)
}

// Loader loads locale documents from disk
type Loader struct {
	logger      *logging.Logger
	allowedDirs []string
}

// New creates a loader. When allowedDirs are given, only files inside them
// can be loaded.
func New(logger *logging.Logger, allowedDirs ...string) *Loader {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Loader{
		logger:      logger.WithComponent("loader"),
		allowedDirs: allowedDirs,
	}
}

// Load reads path, choosing the parser from the file extension
func (l *Loader) Load(path string) (*Document, error) {
	return l.LoadWithFormat(path, DetectFormat(path))
}

// LoadWithFormat reads path with an explicit parser
func (l *Loader) LoadWithFormat(path string, format Format) (*Document, error) {
	data, err := security.SafeReadFile(path, l.allowedDirs...)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, documentError(errors.ErrDocumentNotFound, err, path)
		}
		return nil, documentError(errors.ErrDocumentUnreadable, err, path)
	}

	tree, err := Parse(data, format)
	if err != nil {
		return nil, documentError(errors.ErrDocumentMalformed, err, path).
			WithContext("format", string(format))
	}

	doc := &Document{
		Path:     path,
		Format:   format,
		Size:     int64(len(data)),
		LoadedAt: time.Now(),
		Tree:     tree,
	}

	// LeafCount walks the whole tree
	if l.logger.IsDebugEnabled() {
		l.logger.WithDocument(path).Debug("Loaded locale document",
			"format", format,
			"size", humanize.Bytes(uint64(doc.Size)),
			"top_level_keys", tree.Len(),
			"leaves", tree.LeafCount())
	}

	return doc, nil
}

// Parse decodes data in the given format. The top level must be a mapping.
func Parse(data []byte, format Format) (*locale.Tree, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	switch format {
	case FormatJSON:
		return parseJSON(data)
	case FormatYAML:
		return parseYAML(data)
	case FormatTOML:
		return parseTOML(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// DetectFormat maps a file extension to a format. Unknown extensions are
// read as JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// ParseFormat converts a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported input format %q (supported: json, yaml, toml)", s)
	}
}

// LocaleName strips the directory and extension from a locale file path
func LocaleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads a locale document with a default loader
func Load(path string) (*Document, error) {
	return New(nil).Load(path)
}

// documentError raises a fresh error carrying the sentinel's identity
func documentError(sentinel *errors.LocaleDriftError, cause error, path string) *errors.LocaleDriftError {
	return errors.WrapError(cause, sentinel.Type, sentinel.Code, sentinel.Message).
		WithSeverity(sentinel.Severity).
		WithRecoverable(sentinel.Recoverable).
		WithGuidance(sentinel.Guidance).
		WithContext("path", path)
}
