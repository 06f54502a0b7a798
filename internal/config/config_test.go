package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	ldErrors "github.com/k0ns0l/localedrift/internal/errors"
	"github.com/k0ns0l/localedrift/internal/logging"
	"github.com/k0ns0l/localedrift/internal/recovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "LocaleDrift Project", config.Project.Name)
	assert.Equal(t, "root", config.Compare.RootLabel)
	assert.Equal(t, "text", config.Compare.OutputFormat)
	assert.False(t, config.Compare.FailOnDrift)
	assert.Equal(t, "./locales", config.Locales.Directory)
	assert.Equal(t, "en", config.Locales.Reference)
	assert.Equal(t, []string{".json", ".yaml", ".yml", ".toml"}, config.Locales.Extensions)
	assert.Equal(t, "@every 5m", config.Watch.Schedule)
	assert.True(t, config.Watch.RunOnStart)
	assert.Equal(t, 3, config.Watch.Retry.MaxAttempts)
	assert.Equal(t, logging.LogLevelWarn, config.Logging.Level)

	assert.NoError(t, ValidateConfig(config))
}

func TestLoadConfig_ValidConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "test-config.yaml")

	configContent := `
project:
  name: "Mobile App"
  description: "React Native translations"

compare:
  root_label: "translation"
  output_format: "json"
  fail_on_drift: true

locales:
  directory: "./src/locales"
  reference: "pt"
  extensions: [".json"]

watch:
  run_on_start: false
  schedule: "*/10 * * * *"
  retry:
    max_attempts: 5
    initial_delay: 500ms
    strategy: linear

logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0o644))

	config, err := LoadConfig(configFile)
	require.NoError(t, err)

	assert.Equal(t, "Mobile App", config.Project.Name)
	assert.Equal(t, "translation", config.Compare.RootLabel)
	assert.Equal(t, "json", config.Compare.OutputFormat)
	assert.True(t, config.Compare.FailOnDrift)
	assert.Equal(t, "./src/locales", config.Locales.Directory)
	assert.Equal(t, "pt", config.Locales.Reference)
	assert.Equal(t, []string{".json"}, config.Locales.Extensions)
	assert.False(t, config.Watch.RunOnStart)
	assert.Equal(t, "*/10 * * * *", config.Watch.Schedule)
	assert.Equal(t, 5, config.Watch.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, config.Watch.Retry.InitialDelay)
	assert.Equal(t, recovery.StrategyLinear, config.Watch.Retry.Strategy)
	assert.Equal(t, 30*time.Second, config.Watch.Retry.MaxDelay, "unset retry keys keep defaults")
	assert.Equal(t, logging.LogLevelDebug, config.Logging.Level)
	assert.Equal(t, logging.LogFormatJSON, config.Logging.Format)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("compare:\n  root_label: \"\"\n"), 0o644))

	config, err := LoadConfig(configFile)
	require.NoError(t, err)

	assert.Equal(t, "", config.Compare.RootLabel)
	assert.Equal(t, "text", config.Compare.OutputFormat)
	assert.Equal(t, "en", config.Locales.Reference)
}

func TestLoadConfig_NonExistentFile(t *testing.T) {
	config, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, "LocaleDrift Project", config.Project.Name)
	assert.Equal(t, "root", config.Compare.RootLabel)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "invalid-config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("project:\n  name: \"x\"\n  broken: [\n"), 0o644))

	_, err := LoadConfig(configFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "bad-values.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("compare:\n  output_format: xml\n"), 0o644))

	_, err := LoadConfig(configFile)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ldErrors.ErrConfigInvalid))

	var validationErrs ValidationErrors
	require.True(t, errors.As(err, &validationErrs))
	assert.Equal(t, "compare.output_format", validationErrs[0].Field)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("LOCALEDRIFT_LOCALES_REFERENCE", "es")
	t.Setenv("LOCALEDRIFT_COMPARE_ROOT_LABEL", "messages")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "es", config.Locales.Reference)
	assert.Equal(t, "messages", config.Compare.RootLabel)
}

func TestLoadConfig_DeprecatedKeys(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "legacy.yaml")
	content := "compare:\n  root: messages\nwatch:\n  enabled: true\n"
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

	config, err := LoadConfig(configFile)
	require.NoError(t, err)

	assert.Equal(t, []string{"compare.root", "watch.enabled"}, config.DeprecatedKeys())
	assert.Equal(t, "messages", config.Compare.RootLabel, "renamed key carries its value")
	assert.True(t, config.Watch.RunOnStart)
}

func TestLoadConfig_DeprecatedKeyLosesToReplacement(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "both.yaml")
	content := "compare:\n  root: messages\n  root_label: translation\n"
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

	config, err := LoadConfig(configFile)
	require.NoError(t, err)
	assert.Equal(t, "translation", config.Compare.RootLabel)

	t.Setenv("LOCALEDRIFT_COMPARE_ROOT_LABEL", "env")
	onlyLegacy := filepath.Join(t.TempDir(), "legacy.yaml")
	require.NoError(t, os.WriteFile(onlyLegacy, []byte("compare:\n  root: messages\n"), 0o644))

	config, err = LoadConfig(onlyLegacy)
	require.NoError(t, err)
	assert.Equal(t, "env", config.Compare.RootLabel)
}

func TestLoadConfig_NoDeprecatedKeys(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, config.DeprecatedKeys())
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("APP_ROOT", "/srv/app")

	config := DefaultConfig()
	config.Locales.Directory = "${APP_ROOT}/locales"
	config.Logging.Output = "${MISSING_LOG_DIR}/drift.log"

	substituteEnvVars(config)

	assert.Equal(t, "/srv/app/locales", config.Locales.Directory)
	assert.Equal(t, "${MISSING_LOG_DIR}/drift.log", config.Logging.Output)
}

func TestSubstituteEnvVars_ChannelSettings(t *testing.T) {
	t.Setenv("CI_TOKEN", "s3cret")
	t.Setenv("CI_HOST", "ci.example.com")

	config := DefaultConfig()
	config.Alerting.Channels = []AlertChannelConfig{{
		Name: "ci",
		Type: "webhook",
		Settings: map[string]interface{}{
			"url":     "https://${CI_HOST}/hooks",
			"retries": 3,
			"headers": map[string]interface{}{
				"authorization": "Bearer ${CI_TOKEN}",
				"x-trace":       map[string]interface{}{"id": "${CI_TOKEN}"},
			},
			"tags": []interface{}{"${CI_HOST}", 7},
		},
	}}

	substituteEnvVars(config)

	settings := config.Alerting.Channels[0].Settings
	assert.Equal(t, "https://ci.example.com/hooks", settings["url"])
	assert.Equal(t, 3, settings["retries"])

	headers, ok := settings["headers"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Bearer s3cret", headers["authorization"])
	assert.Equal(t, map[string]interface{}{"id": "s3cret"}, headers["x-trace"])
	assert.Equal(t, []interface{}{"ci.example.com", 7}, settings["tags"])
}

func TestLoadConfig_AlertingChannels(t *testing.T) {
	t.Setenv("SLACK_HOOK", "https://hooks.slack.com/services/T0/B0/secret")
	configFile := filepath.Join(t.TempDir(), "alerts.yaml")
	content := `
alerting:
  enabled: true
  channels:
    - name: team
      type: slack
      enabled: true
      settings:
        webhook_url: "${SLACK_HOOK}"
        channel: "#i18n"
    - name: ci
      type: webhook
      enabled: false
      settings:
        url: "https://ci.example.com/hooks/locales"
        headers:
          X-Token: "${SLACK_HOOK}"
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

	config, err := LoadConfig(configFile)
	require.NoError(t, err)

	assert.True(t, config.Alerting.Enabled)
	assert.Equal(t, 10, config.Alerting.MaxPaths)
	require.Len(t, config.Alerting.Channels, 2)
	assert.Equal(t, "slack", config.Alerting.Channels[0].Type)
	assert.Equal(t, "https://hooks.slack.com/services/T0/B0/secret", config.Alerting.Channels[0].Settings["webhook_url"])
	assert.Equal(t, "#i18n", config.Alerting.Channels[0].Settings["channel"])
	assert.False(t, config.Alerting.Channels[1].Enabled)
	headers, ok := config.Alerting.Channels[1].Settings["headers"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "https://hooks.slack.com/services/T0/B0/secret", headers["x-token"], "nested settings are expanded too")
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() {
		os.Unsetenv("LOCALEDRIFT_TEST_DOTENV_HOOK")
		os.Unsetenv("LOCALEDRIFT_TEST_DOTENV_KEPT")
	})
	t.Setenv("LOCALEDRIFT_TEST_DOTENV_KEPT", "from-environment")

	dotenv := "LOCALEDRIFT_TEST_DOTENV_HOOK=https://ci.example.com/hooks/from-dotenv\nLOCALEDRIFT_TEST_DOTENV_KEPT=from-dotenv\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o600))

	configFile := filepath.Join(dir, "alerts.yaml")
	content := `
alerting:
  channels:
    - name: ci
      type: webhook
      enabled: true
      settings:
        url: "${LOCALEDRIFT_TEST_DOTENV_HOOK}"
        method: "${LOCALEDRIFT_TEST_DOTENV_KEPT}"
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

	config, err := LoadConfig(configFile)
	require.NoError(t, err)

	require.Len(t, config.Alerting.Channels, 1)
	settings := config.Alerting.Channels[0].Settings
	assert.Equal(t, "https://ci.example.com/hooks/from-dotenv", settings["url"])
	assert.Equal(t, "from-environment", settings["method"], "existing variables win over .env")
}

func TestSaveAndReloadConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "nested", ".localedrift.yaml")

	require.NoError(t, CreateDefaultConfigFile(configFile))
	assert.True(t, ConfigExists(configFile))

	config, err := LoadConfig(configFile)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Locales, config.Locales)
	assert.Equal(t, DefaultConfig().Compare, config.Compare)
}

func TestGetConfigFilePath(t *testing.T) {
	assert.Equal(t, DefaultConfigFile, GetConfigFilePath(""))
	assert.Equal(t, "custom.yaml", GetConfigFilePath("custom.yaml"))
}
