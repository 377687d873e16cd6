package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// cronParser mirrors the scheduler: optional seconds field plus descriptors.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

var testCredentialPattern = regexp.MustCompile(`(?i)test|demo|example|placeholder|your_`)

type rule struct {
	fn  validator.Func
	msg string
}

var customRules = map[string]rule{
	"environment": {fn: oneOf("development", "staging", "production"), msg: "must be one of: development, staging, production"},
	"loglevel":    {fn: oneOf("debug", "info", "warn", "error"), msg: "must be one of: debug, info, warn, error"},
	"binmode":     {fn: oneOf(BinModeCoarse, BinModeFine), msg: "must be one of: " + BinModeCoarse + ", " + BinModeFine},
	"cronspec":    {fn: validateCronSpec, msg: "must be a valid cron expression"},
}

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()
	for tag, r := range customRules {
		if err := v.RegisterValidation(tag, r.fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate runs the struct tags first, then the cross-field checks.
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return formatValidationErrors(fieldErrs)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return validateCrossField(cfg)
}

func oneOf(allowed ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}
}

func validateCronSpec(fl validator.FieldLevel) bool {
	_, err := cronParser.Parse(fl.Field().String())
	return err == nil
}

// validateCrossField reports every cross-field problem at once.
func validateCrossField(cfg *Config) error {
	var errs []error

	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		errs = append(errs, errors.New("production environment requires SSL mode to be 'require' or 'verify-full'"))
	}
	if cfg.Database.MinConnections > cfg.Database.MaxConnections {
		errs = append(errs, fmt.Errorf("min_connections (%d) cannot exceed max_connections (%d)",
			cfg.Database.MinConnections, cfg.Database.MaxConnections))
	}

	seen := make(map[string]struct{}, len(cfg.DataIngestion.Sources))
	for _, src := range cfg.DataIngestion.Sources {
		if _, dup := seen[src.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate data source name %q", src.Name))
		}
		seen[src.Name] = struct{}{}

		if src.Type == SourceTypeFile && src.Path == "" {
			errs = append(errs, fmt.Errorf("data source %q: file sources require a path", src.Name))
		}
		if src.Type == SourceTypeRemote && src.URL == "" {
			errs = append(errs, fmt.Errorf("data source %q: remote sources require a url", src.Name))
		}
	}

	for _, col := range cfg.Features.DropColumns {
		if strings.TrimSpace(col) == "" {
			errs = append(errs, errors.New("drop_columns must not contain empty names"))
			break
		}
	}

	return errors.Join(errs...)
}

func formatValidationErrors(fieldErrs validator.ValidationErrors) error {
	var b strings.Builder
	b.WriteString("configuration validation failed:\n")
	for _, fe := range fieldErrs {
		fmt.Fprintf(&b, "- Field '%s' %s\n", fe.StructField(), describeTag(fe))
	}
	return errors.New(b.String())
}

func describeTag(fe validator.FieldError) string {
	if r, ok := customRules[fe.Tag()]; ok {
		return r.msg
	}
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "url":
		return fmt.Sprintf("must be a valid URL, got '%v'", fe.Value())
	case "oneof":
		return fmt.Sprintf("has invalid value '%v' (allowed: %s)", fe.Value(), fe.Param())
	case "min", "max", "gt", "gte", "lt", "lte":
		return fmt.Sprintf("violates %s=%s", fe.Tag(), fe.Param())
	default:
		return "failed validation: " + fe.Tag()
	}
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if !cfg.IsProduction() {
		return nil
	}
	if cfg.Database.SSLMode == "disable" {
		return errors.New("production environment requires database SSL mode to be 'require' or 'verify-full'")
	}
	if testCredentialPattern.MatchString(cfg.Classifier.APIKey) {
		return errors.New("production environment should not use a test classifier API key")
	}
	if !strings.HasPrefix(cfg.Classifier.URL, "https://") {
		return errors.New("production environment requires an https classifier URL")
	}
	return nil
}
