package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/k0ns0l/localedrift/internal/deprecation"
	"github.com/k0ns0l/localedrift/internal/errors"
	"github.com/k0ns0l/localedrift/internal/logging"
	"github.com/k0ns0l/localedrift/internal/recovery"
	"github.com/spf13/viper"
)

// DefaultConfigFile is the file looked up in the working directory when no
// --config flag is given.
const DefaultConfigFile = ".localedrift.yaml"

// Config represents the complete LocaleDrift configuration
type Config struct {
	Project  ProjectConfig        `yaml:"project" mapstructure:"project" json:"project"`
	Compare  CompareConfig        `yaml:"compare" mapstructure:"compare" json:"compare"`
	Locales  LocalesConfig        `yaml:"locales" mapstructure:"locales" json:"locales"`
	Watch    WatchConfig          `yaml:"watch" mapstructure:"watch" json:"watch"`
	Alerting AlertingConfig       `yaml:"alerting" mapstructure:"alerting" json:"alerting"`
	Logging  logging.LoggerConfig `yaml:"logging" mapstructure:"logging" json:"logging"`

	deprecated []string
}

// DeprecatedKeys lists the deprecated keys set in the loaded config file
func (c *Config) DeprecatedKeys() []string {
	return c.deprecated
}

// ProjectConfig contains project-level settings
type ProjectConfig struct {
	Name        string `yaml:"name" mapstructure:"name" json:"name"`
	Description string `yaml:"description" mapstructure:"description" json:"description"`
}

// CompareConfig controls how two locale files are compared and reported
type CompareConfig struct {
	// RootLabel is the first segment of every reported key path; empty
	// means paths start at the top-level key.
	RootLabel    string `yaml:"root_label" mapstructure:"root_label" json:"root_label"`
	OutputFormat string `yaml:"output_format" mapstructure:"output_format" json:"output_format"`
	FailOnDrift  bool   `yaml:"fail_on_drift" mapstructure:"fail_on_drift" json:"fail_on_drift"`
}

// LocalesConfig describes where locale files live for audit and watch
type LocalesConfig struct {
	Directory  string   `yaml:"directory" mapstructure:"directory" json:"directory"`
	Reference  string   `yaml:"reference" mapstructure:"reference" json:"reference"`
	Extensions []string `yaml:"extensions" mapstructure:"extensions" json:"extensions"`
}

// WatchConfig controls the scheduled audit
type WatchConfig struct {
	Schedule string `yaml:"schedule" mapstructure:"schedule" json:"schedule"`
	// RunOnStart audits once immediately instead of waiting for the
	// first tick.
	RunOnStart bool `yaml:"run_on_start" mapstructure:"run_on_start" json:"run_on_start"`
	// Retry applies to each run; malformed or unreadable files are
	// retried since they are often caught mid-save.
	Retry recovery.Config `yaml:"retry" mapstructure:"retry" json:"retry"`
}

// AlertingConfig controls the notifications watch sends when drift is found
type AlertingConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled" json:"enabled"`
	// MaxPaths caps the key paths listed per locale in one notification.
	MaxPaths int                  `yaml:"max_paths" mapstructure:"max_paths" json:"max_paths"`
	Channels []AlertChannelConfig `yaml:"channels" mapstructure:"channels" json:"channels"`
}

// AlertChannelConfig represents a single alert channel
type AlertChannelConfig struct {
	Type     string                 `yaml:"type" mapstructure:"type" json:"type"` // slack, webhook
	Name     string                 `yaml:"name" mapstructure:"name" json:"name"`
	Enabled  bool                   `yaml:"enabled" mapstructure:"enabled" json:"enabled"`
	Settings map[string]interface{} `yaml:"settings" mapstructure:"settings" json:"settings"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Name:        "LocaleDrift Project",
			Description: "Localization key drift checks",
		},
		Compare: CompareConfig{
			RootLabel:    "root",
			OutputFormat: "text",
			FailOnDrift:  false,
		},
		Locales: LocalesConfig{
			Directory:  "./locales",
			Reference:  "en",
			Extensions: []string{".json", ".yaml", ".yml", ".toml"},
		},
		Watch: WatchConfig{
			Schedule:   "@every 5m",
			RunOnStart: true,
			Retry:      recovery.DefaultConfig(),
		},
		Alerting: AlertingConfig{
			Enabled:  false,
			MaxPaths: 10,
		},
		Logging: logging.DefaultLoggerConfig(),
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configFile string) (*Config, error) {
	loadDotEnv(configFile)

	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, ".yaml"))
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("LOCALEDRIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is OK, we'll use defaults
		} else {
			return nil, errors.WrapError(err, errors.ErrorTypeConfig, errors.CodeConfigRead, "failed to read config file").
				WithSeverity(errors.SeverityHigh).
				WithGuidance("Check file permissions and YAML syntax").
				WithContext("path", configFile)
		}
	}

	deprecated := carryDeprecated(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeConfig, errors.CodeConfigUnmarshal, "failed to unmarshal config").
			WithSeverity(errors.SeverityHigh).
			WithGuidance("Check configuration file structure and field types")
	}

	config.deprecated = deprecated
	substituteEnvVars(config)

	if err := ValidateConfig(config); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeConfig, errors.CodeConfigInvalid, "configuration validation failed").
			WithSeverity(errors.SeverityHigh).
			WithGuidance("Run 'localedrift config validate' for detailed error information")
	}

	return config, nil
}

// carryDeprecated finds deprecated keys in the config file and makes the
// old value of a renamed key the default for its replacement, so the new
// key still wins when set in the file or the environment.
func carryDeprecated(v *viper.Viper) []string {
	var keys []string
	for _, notice := range deprecation.Present(v.AllKeys()) {
		if !v.InConfig(notice.Key) {
			continue
		}
		keys = append(keys, notice.Key)
		if notice.Carry && notice.Replacement != "" {
			v.SetDefault(notice.Replacement, v.Get(notice.Key))
		}
	}
	return keys
}

// setDefaults sets default values in Viper
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("project.name", defaults.Project.Name)
	v.SetDefault("project.description", defaults.Project.Description)

	v.SetDefault("compare.root_label", defaults.Compare.RootLabel)
	v.SetDefault("compare.output_format", defaults.Compare.OutputFormat)
	v.SetDefault("compare.fail_on_drift", defaults.Compare.FailOnDrift)

	v.SetDefault("locales.directory", defaults.Locales.Directory)
	v.SetDefault("locales.reference", defaults.Locales.Reference)
	v.SetDefault("locales.extensions", defaults.Locales.Extensions)

	v.SetDefault("watch.schedule", defaults.Watch.Schedule)
	v.SetDefault("watch.run_on_start", defaults.Watch.RunOnStart)
	v.SetDefault("watch.retry.max_attempts", defaults.Watch.Retry.MaxAttempts)
	v.SetDefault("watch.retry.initial_delay", defaults.Watch.Retry.InitialDelay)
	v.SetDefault("watch.retry.max_delay", defaults.Watch.Retry.MaxDelay)
	v.SetDefault("watch.retry.strategy", string(defaults.Watch.Retry.Strategy))
	v.SetDefault("watch.retry.jitter", defaults.Watch.Retry.Jitter)
	v.SetDefault("watch.retry.jitter_percent", defaults.Watch.Retry.JitterPercent)

	v.SetDefault("alerting.enabled", defaults.Alerting.Enabled)
	v.SetDefault("alerting.max_paths", defaults.Alerting.MaxPaths)

	v.SetDefault("logging.level", string(defaults.Logging.Level))
	v.SetDefault("logging.format", string(defaults.Logging.Format))
	v.SetDefault("logging.output", defaults.Logging.Output)
	v.SetDefault("logging.time_format", defaults.Logging.TimeFormat)
	v.SetDefault("logging.add_source", defaults.Logging.AddSource)
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars expands ${VAR} references in path-like settings
func substituteEnvVars(config *Config) {
	config.Locales.Directory = expandEnv(config.Locales.Directory)
	config.Logging.Output = expandEnv(config.Logging.Output)

	// webhook URLs and headers usually carry a secret
	for _, channel := range config.Alerting.Channels {
		for key, value := range channel.Settings {
			channel.Settings[key] = expandSetting(value)
		}
	}
}

// expandSetting expands strings at any depth of a channel setting
func expandSetting(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return expandEnv(v)
	case map[string]interface{}:
		for key, nested := range v {
			v[key] = expandSetting(nested)
		}
		return v
	case []interface{}:
		for i, nested := range v {
			v[i] = expandSetting(nested)
		}
		return v
	default:
		return value
	}
}

// loadDotEnv reads the .env file next to the config file, if any.
// Variables already present in the environment are left alone.
func loadDotEnv(configFile string) {
	dir := "."
	if configFile != "" {
		dir = filepath.Dir(configFile)
	}
	_ = godotenv.Load(filepath.Join(dir, ".env"))
}

func expandEnv(value string) string {
	return envVarRegex.ReplaceAllStringFunc(value, func(match string) string {
		envVar := strings.Trim(match, "${}")
		if envValue := os.Getenv(envVar); envValue != "" {
			return envValue
		}
		return match
	})
}
