package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/k0ns0l/localedrift/internal/logging"
	"github.com/k0ns0l/localedrift/internal/recovery"
	"github.com/robfig/cron/v3"
)

// SupportedOutputFormats lists the report formats the CLI can render.
var SupportedOutputFormats = []string{"text", "json", "yaml", "csv"}

// SupportedExtensions lists the locale file extensions the loader understands.
var SupportedExtensions = []string{".json", ".yaml", ".yml", ".toml"}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("configuration validation failed with %d error(s):\n- %s",
		len(e), strings.Join(messages, "\n- "))
}

// ValidateConfig validates the entire configuration and reports every
// problem at once
func ValidateConfig(config *Config) error {
	var errors ValidationErrors

	errors = append(errors, validateProject(&config.Project)...)
	errors = append(errors, validateCompare(&config.Compare)...)
	errors = append(errors, validateLocales(&config.Locales)...)
	errors = append(errors, validateWatch(&config.Watch)...)
	errors = append(errors, validateAlerting(&config.Alerting)...)
	errors = append(errors, validateLogging(&config.Logging)...)

	if len(errors) > 0 {
		return errors
	}

	return nil
}

func validateProject(project *ProjectConfig) ValidationErrors {
	var errors ValidationErrors

	if strings.TrimSpace(project.Name) == "" {
		errors = append(errors, ValidationError{
			Field:   "project.name",
			Value:   project.Name,
			Message: "project name cannot be empty",
		})
	}

	if len(project.Name) > 100 {
		errors = append(errors, ValidationError{
			Field:   "project.name",
			Value:   project.Name,
			Message: "project name cannot exceed 100 characters",
		})
	}

	if len(project.Description) > 500 {
		errors = append(errors, ValidationError{
			Field:   "project.description",
			Value:   project.Description,
			Message: "project description cannot exceed 500 characters",
		})
	}

	return errors
}

func validateCompare(compare *CompareConfig) ValidationErrors {
	var errors ValidationErrors

	if !IsSupportedOutputFormat(compare.OutputFormat) {
		errors = append(errors, ValidationError{
			Field:   "compare.output_format",
			Value:   compare.OutputFormat,
			Message: fmt.Sprintf("unsupported output format (supported: %s)", strings.Join(SupportedOutputFormats, ", ")),
		})
	}

	if strings.ContainsAny(compare.RootLabel, "\n\r") {
		errors = append(errors, ValidationError{
			Field:   "compare.root_label",
			Value:   compare.RootLabel,
			Message: "root label cannot contain line breaks",
		})
	}

	return errors
}

func validateLocales(locales *LocalesConfig) ValidationErrors {
	var errors ValidationErrors

	if strings.TrimSpace(locales.Directory) == "" {
		errors = append(errors, ValidationError{
			Field:   "locales.directory",
			Value:   locales.Directory,
			Message: "locales directory cannot be empty",
		})
	}

	if strings.TrimSpace(locales.Reference) == "" {
		errors = append(errors, ValidationError{
			Field:   "locales.reference",
			Value:   locales.Reference,
			Message: "reference locale cannot be empty",
		})
	}

	if len(locales.Extensions) == 0 {
		errors = append(errors, ValidationError{
			Field:   "locales.extensions",
			Value:   locales.Extensions,
			Message: "at least one locale file extension is required",
		})
	}

	for i, ext := range locales.Extensions {
		if !isSupportedExtension(ext) {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("locales.extensions[%d]", i),
				Value:   ext,
				Message: fmt.Sprintf("unsupported extension (supported: %s)", strings.Join(SupportedExtensions, ", ")),
			})
		}
	}

	return errors
}

func validateWatch(watch *WatchConfig) ValidationErrors {
	var errors ValidationErrors

	if strings.TrimSpace(watch.Schedule) == "" {
		errors = append(errors, ValidationError{
			Field:   "watch.schedule",
			Value:   watch.Schedule,
			Message: "schedule cannot be empty",
		})
		return errors
	}

	if _, err := cron.ParseStandard(watch.Schedule); err != nil {
		errors = append(errors, ValidationError{
			Field:   "watch.schedule",
			Value:   watch.Schedule,
			Message: fmt.Sprintf("invalid cron schedule: %v", err),
		})
	}

	return append(errors, validateRetry(&watch.Retry)...)
}

func validateRetry(retry *recovery.Config) ValidationErrors {
	var errors ValidationErrors

	if retry.MaxAttempts < 1 || retry.MaxAttempts > 10 {
		errors = append(errors, ValidationError{
			Field:   "watch.retry.max_attempts",
			Value:   retry.MaxAttempts,
			Message: "max attempts must be between 1 and 10",
		})
	}

	if retry.InitialDelay < 0 || retry.MaxDelay < 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.retry.initial_delay",
			Value:   retry.InitialDelay,
			Message: "retry delays cannot be negative",
		})
	}

	if !recovery.ValidStrategy(retry.Strategy) {
		errors = append(errors, ValidationError{
			Field:   "watch.retry.strategy",
			Value:   retry.Strategy,
			Message: "unsupported retry strategy (supported: fixed, linear, exponential)",
		})
	}

	if retry.JitterPercent < 0 || retry.JitterPercent > 1 {
		errors = append(errors, ValidationError{
			Field:   "watch.retry.jitter_percent",
			Value:   retry.JitterPercent,
			Message: "jitter percent must be between 0 and 1",
		})
	}

	return errors
}

// SupportedAlertChannels lists the channel types watch can notify
var SupportedAlertChannels = []string{"slack", "webhook"}

func validateAlerting(alerting *AlertingConfig) ValidationErrors {
	var errors ValidationErrors

	if alerting.MaxPaths < 0 {
		errors = append(errors, ValidationError{
			Field:   "alerting.max_paths",
			Value:   alerting.MaxPaths,
			Message: "max paths cannot be negative",
		})
	}

	channelNames := make(map[string]bool)
	for i, channel := range alerting.Channels {
		fieldPrefix := fmt.Sprintf("alerting.channels[%d]", i)

		if strings.TrimSpace(channel.Name) == "" {
			errors = append(errors, ValidationError{
				Field:   fieldPrefix + ".name",
				Value:   channel.Name,
				Message: "alert channel name cannot be empty",
			})
		} else {
			if channelNames[channel.Name] {
				errors = append(errors, ValidationError{
					Field:   fieldPrefix + ".name",
					Value:   channel.Name,
					Message: "duplicate alert channel name",
				})
			}
			channelNames[channel.Name] = true
		}

		var urlKey string
		switch channel.Type {
		case "slack":
			urlKey = "webhook_url"
		case "webhook":
			urlKey = "url"
		default:
			errors = append(errors, ValidationError{
				Field:   fieldPrefix + ".type",
				Value:   channel.Type,
				Message: fmt.Sprintf("invalid alert channel type (supported: %s)", strings.Join(SupportedAlertChannels, ", ")),
			})
			continue
		}

		raw, _ := channel.Settings[urlKey].(string)
		if !isHTTPURL(raw) {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s.settings.%s", fieldPrefix, urlKey),
				Value:   raw,
				Message: "a valid http or https URL is required",
			})
		}
	}

	return errors
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func validateLogging(cfg *logging.LoggerConfig) ValidationErrors {
	var errors ValidationErrors

	if !logging.ValidLevel(cfg.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   cfg.Level,
			Message: "unsupported log level (supported: debug, info, warn, error)",
		})
	}

	if cfg.Format != logging.LogFormatText && cfg.Format != logging.LogFormatJSON {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   cfg.Format,
			Message: "unsupported log format (supported: text, json)",
		})
	}

	return errors
}

// IsSupportedOutputFormat reports whether format can be rendered.
func IsSupportedOutputFormat(format string) bool {
	for _, f := range SupportedOutputFormats {
		if f == format {
			return true
		}
	}
	return false
}

func isSupportedExtension(ext string) bool {
	for _, e := range SupportedExtensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
