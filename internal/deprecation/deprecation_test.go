package deprecation

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k0ns0l/localedrift/internal/logging"
)

func newTestManager(t *testing.T) (*Manager, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewManager(logging.NewLoggerWithWriter(logging.DefaultLoggerConfig(), &buf)), &buf
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{SeverityInfo, "INFO"},
		{SeverityWarning, "WARNING"},
		{SeverityCritical, "CRITICAL"},
		{Severity(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.severity.String())
	}
}

func TestLookup(t *testing.T) {
	notice, ok := Lookup("watch.enabled")
	require.True(t, ok)
	assert.Equal(t, "watch.run_on_start", notice.Replacement)

	_, ok = Lookup("Compare.Root")
	assert.True(t, ok, "keys are case-insensitive like viper keys")

	_, ok = Lookup("compare.root_label")
	assert.False(t, ok)
}

func TestPresent(t *testing.T) {
	found := Present([]string{"compare.root_label", "watch.enabled", "compare.root", "logging.level"})
	require.Len(t, found, 2)
	assert.Equal(t, "compare.root", found[0].Key)
	assert.Equal(t, "watch.enabled", found[1].Key)

	assert.Nil(t, Present([]string{"compare.root_label"}))
	assert.Nil(t, Present(nil))
}

func TestNoticeMessage(t *testing.T) {
	notice := &Notice{Key: "a.b", Replacement: "a.c", RemovedIn: "1.0.0"}
	assert.Equal(t, "a.b is deprecated, use a.c instead (removed in 1.0.0)", notice.Message())

	assert.Equal(t, "a.b is deprecated", (&Notice{Key: "a.b"}).Message())
}

func TestWarnOnce(t *testing.T) {
	manager, buf := newTestManager(t)

	assert.True(t, manager.WarnOnce("watch.enabled"))
	assert.False(t, manager.WarnOnce("watch.enabled"), "second warning is suppressed")
	assert.False(t, manager.WarnOnce("compare.root_label"), "unknown keys never warn")

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "watch.enabled is deprecated, use watch.run_on_start instead")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("watch.enabled is deprecated")))
}

func TestWarnKeys(t *testing.T) {
	manager, buf := newTestManager(t)

	count := manager.WarnKeys([]string{"compare.root", "locales.recursive", "compare.root", "project.name"})
	assert.Equal(t, 2, count)
	assert.Contains(t, buf.String(), "locales.recursive is deprecated")
	assert.Contains(t, buf.String(), "severity=INFO")
	assert.NotContains(t, buf.String(), "level=INFO", "informational notices still show at the default level")
}

func TestWarnSeverities(t *testing.T) {
	manager, buf := newTestManager(t)
	manager.Register(&Notice{Key: "old.critical", Severity: SeverityCritical})

	assert.True(t, manager.WarnOnce("old.critical"))
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestWarnSuppressed(t *testing.T) {
	t.Setenv(SuppressEnv, "true")
	manager, buf := newTestManager(t)

	assert.False(t, manager.WarnOnce("watch.enabled"))
	assert.Empty(t, buf.String())
}

func TestRegister(t *testing.T) {
	manager, buf := newTestManager(t)
	manager.Register(&Notice{Key: "Output.Colour", Replacement: "output.color", Severity: SeverityInfo})

	assert.True(t, manager.WarnOnce("output.colour"))
	assert.Contains(t, buf.String(), "Output.Colour is deprecated, use output.color instead")
}

func TestFormatNotice(t *testing.T) {
	notice, ok := Lookup("compare.root")
	require.True(t, ok)

	formatted := FormatNotice(notice)
	assert.Contains(t, formatted, "DEPRECATION WARNING: compare.root\n")
	assert.Contains(t, formatted, "Use instead: compare.root_label")
	assert.Contains(t, formatted, "Deprecated since: 0.2.0")
	assert.Contains(t, formatted, "Removed in: 0.5.0")

	minimal := FormatNotice(&Notice{Key: "x", Severity: SeverityInfo})
	assert.Equal(t, "DEPRECATION INFO: x\n"+strings.Repeat("-", len("DEPRECATION INFO: x")), minimal)
}
