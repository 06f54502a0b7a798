// Package deprecation tracks configuration keys that LocaleDrift still reads
// but no longer documents, and warns about them once per run.
package deprecation

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/k0ns0l/localedrift/internal/logging"
)

// SuppressEnv silences every deprecation warning when set to "true"
const SuppressEnv = "LOCALEDRIFT_SUPPRESS_DEPRECATION_WARNINGS"

// Severity represents the severity level of a deprecation
type Severity int

const (
	// SeverityInfo for informational deprecations
	SeverityInfo Severity = iota
	// SeverityWarning for keys that are ignored or will be removed soon
	SeverityWarning
	// SeverityCritical for keys whose removal is imminent
	SeverityCritical
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Notice describes one deprecated configuration key
type Notice struct {
	Key         string   `json:"key" yaml:"key"`
	Since       string   `json:"since" yaml:"since"`
	RemovedIn   string   `json:"removed_in,omitempty" yaml:"removed_in,omitempty"`
	Replacement string   `json:"replacement,omitempty" yaml:"replacement,omitempty"`
	Reason      string   `json:"reason" yaml:"reason"`
	Severity    Severity `json:"severity" yaml:"severity"`
	// Carry copies the old value onto Replacement when the replacement
	// key is not set explicitly.
	Carry bool `json:"carry" yaml:"carry"`
}

// Message renders the one-line warning for a notice
func (n *Notice) Message() string {
	message := fmt.Sprintf("%s is deprecated", n.Key)
	if n.Replacement != "" {
		message += fmt.Sprintf(", use %s instead", n.Replacement)
	}
	if n.RemovedIn != "" {
		message += fmt.Sprintf(" (removed in %s)", n.RemovedIn)
	}
	return message
}

var builtin = []*Notice{
	{
		Key:         "compare.root",
		Since:       "0.2.0",
		RemovedIn:   "0.5.0",
		Replacement: "compare.root_label",
		Reason:      "Renamed to make clear the value only labels reported paths",
		Severity:    SeverityWarning,
		Carry:       true,
	},
	{
		Key:         "watch.enabled",
		Since:       "0.3.0",
		RemovedIn:   "0.4.0",
		Replacement: "watch.run_on_start",
		Reason:      "The watch command always schedules audits; the key is ignored",
		Severity:    SeverityWarning,
	},
	{
		Key:       "locales.recursive",
		Since:     "0.3.0",
		RemovedIn: "0.4.0",
		Reason:    "Locale discovery only reads the top level of the directory; the key is ignored",
		Severity:  SeverityInfo,
	},
}

// Lookup returns the built-in notice for a configuration key
func Lookup(key string) (*Notice, bool) {
	key = strings.ToLower(key)
	for _, n := range builtin {
		if n.Key == key {
			return n, true
		}
	}
	return nil, false
}

// Present returns the built-in notices whose key appears in keys, in
// registration order.
func Present(keys []string) []*Notice {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[strings.ToLower(k)] = true
	}

	var found []*Notice
	for _, n := range builtin {
		if set[n.Key] {
			found = append(found, n)
		}
	}
	return found
}

// Manager handles deprecation notices and warnings
type Manager struct {
	logger  *logging.Logger
	mu      sync.Mutex
	notices map[string]*Notice
	warned  map[string]bool
}

// NewManager creates a manager preloaded with the built-in notices
func NewManager(logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	m := &Manager{
		logger:  logger,
		notices: make(map[string]*Notice),
		warned:  make(map[string]bool),
	}
	for _, n := range builtin {
		m.Register(n)
	}
	return m
}

// Register adds or replaces a notice
func (m *Manager) Register(notice *Notice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices[strings.ToLower(notice.Key)] = notice
}

// WarnOnce logs the warning for key unless it was already shown. It
// reports whether a warning was emitted.
func (m *Manager) WarnOnce(key string) bool {
	m.mu.Lock()
	key = strings.ToLower(key)
	notice, exists := m.notices[key]
	if !exists || m.warned[key] {
		m.mu.Unlock()
		return false
	}
	m.warned[key] = true
	m.mu.Unlock()

	return m.show(notice)
}

// WarnKeys warns once for every deprecated key in keys and returns how
// many warnings were emitted.
func (m *Manager) WarnKeys(keys []string) int {
	count := 0
	for _, key := range keys {
		if m.WarnOnce(key) {
			count++
		}
	}
	return count
}

func (m *Manager) show(notice *Notice) bool {
	if os.Getenv(SuppressEnv) == "true" {
		return false
	}

	args := []interface{}{"key", notice.Key, "since", notice.Since, "severity", notice.Severity.String()}
	if notice.Replacement != "" {
		args = append(args, "replacement", notice.Replacement)
	}

	// Warn is the lowest level shown by default
	if notice.Severity == SeverityCritical {
		m.logger.Error(notice.Message(), args...)
	} else {
		m.logger.Warn(notice.Message(), args...)
	}
	return true
}

// FormatNotice formats a notice as a block for CLI display
func FormatNotice(notice *Notice) string {
	var lines []string

	header := fmt.Sprintf("DEPRECATION %s: %s", notice.Severity, notice.Key)
	lines = append(lines, header)
	lines = append(lines, strings.Repeat("-", len(header)))

	if notice.Reason != "" {
		lines = append(lines, fmt.Sprintf("Reason: %s", notice.Reason))
	}
	if notice.Replacement != "" {
		lines = append(lines, fmt.Sprintf("Use instead: %s", notice.Replacement))
	}
	if notice.Since != "" {
		lines = append(lines, fmt.Sprintf("Deprecated since: %s", notice.Since))
	}
	if notice.RemovedIn != "" {
		lines = append(lines, fmt.Sprintf("Removed in: %s", notice.RemovedIn))
	}

	return strings.Join(lines, "\n")
}
