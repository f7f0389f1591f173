package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config key (e.g., "blank_lines")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidFormatters returns the formatter names Config.Formatters accepts.
func ValidFormatters() []string {
	return []string{FormatterOrder, FormatterDocstring}
}

// maxBlankLines bounds blank_lines; PEP 8 never asks for more than two.
const maxBlankLines = 2

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	for _, expr := range c.Include {
		if _, err := regexp.Compile(expr); err != nil {
			errors = append(errors, ValidationError{
				Field:   "include",
				Value:   expr,
				Message: "must be a valid regular expression",
			})
		}
	}

	for _, pattern := range c.Exclude {
		if strings.TrimSpace(pattern) == "" {
			errors = append(errors, ValidationError{
				Field:   "exclude",
				Value:   pattern,
				Message: "must not be blank",
			})
		}
	}

	if len(c.Formatters) == 0 {
		errors = append(errors, ValidationError{
			Field:   "formatters",
			Value:   c.Formatters,
			Message: "must name at least one formatter",
		})
	}
	seen := make(map[string]struct{})
	for _, name := range c.Formatters {
		if !slices.Contains(ValidFormatters(), name) {
			errors = append(errors, ValidationError{
				Field:   "formatters",
				Value:   name,
				Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidFormatters(), ", ")),
			})
			continue
		}
		if _, dup := seen[name]; dup {
			errors = append(errors, ValidationError{
				Field:   "formatters",
				Value:   name,
				Message: "must not be listed twice",
			})
		}
		seen[name] = struct{}{}
	}

	for _, dec := range c.HelperDecorators {
		if dec == "" || strings.HasPrefix(dec, "@") {
			errors = append(errors, ValidationError{
				Field:   "helper_decorators",
				Value:   dec,
				Message: "must be a decorator name without the leading @",
			})
		}
	}

	if c.BlankLines < 0 || c.BlankLines > maxBlankLines {
		errors = append(errors, ValidationError{
			Field:   "blank_lines",
			Value:   c.BlankLines,
			Message: fmt.Sprintf("must be between 0 and %d", maxBlankLines),
		})
	}

	if c.Jobs < 0 {
		errors = append(errors, ValidationError{
			Field:   "jobs",
			Value:   c.Jobs,
			Message: "must be non-negative",
		})
	}

	return errors
}
