package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(field, value, entityType string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("is required for %s", entityType),
		}
	}
	return nil
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// OutputFormats lists the accepted values of output.format.
var OutputFormats = []string{"console", "json", "yaml", "table"}

// Validate checks the whole configuration and returns ValidationErrors.
func (c Config) Validate() error {
	var errs ValidationErrors

	required := []struct{ field, value string }{
		{"schema.nameField", c.Schema.NameField},
		{"schema.expressionField", c.Schema.ExpressionField},
		{"schema.dependencyField", c.Schema.DependencyField},
		{"schema.dependencyValueField", c.Schema.DependencyValueField},
	}
	for _, r := range required {
		if err := ValidateRequired(r.field, r.value, "schema"); err != nil {
			errs = append(errs, err.(ValidationError))
		}
	}

	if len(c.Schema.AddressFields)+len(c.Schema.ParameterFields)+len(c.Schema.BodyFields) == 0 {
		errs.Add("schema", "at least one address, parameter or body field is required")
	}

	if c.Output.Format != "" {
		if err := ValidateOneOf("output.format", c.Output.Format, OutputFormats); err != nil {
			errs = append(errs, err.(ValidationError))
		}
	}

	seen := make(map[string]bool)
	for i, rule := range c.CanonicalAddresses {
		field := fmt.Sprintf("canonicalAddresses[%d]", i)
		if err := rule.Validate(); err != nil {
			errs.Add(field, err.Error(), rule)
			continue
		}
		if seen[rule.Variable] {
			errs.Add(field, fmt.Sprintf("duplicate rule for variable %s", rule.Variable), rule)
		}
		seen[rule.Variable] = true
	}

	for i, name := range c.IgnoreVariables {
		if strings.TrimSpace(name) == "" {
			errs.Add(fmt.Sprintf("ignoreVariables[%d]", i), "must not be empty")
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
