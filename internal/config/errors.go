package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ConfigurationError represents a structured error that occurs during configuration loading
type ConfigurationError struct {
	FilePath  string `json:"filePath"`  // Full path to the file that caused the error
	FileName  string `json:"fileName"`  // Base name of the file
	ErrorType string `json:"errorType"` // Type of error (parse, validation, io)
	Message   string `json:"message"`   // Human-readable error message
	Details   string `json:"details"`   // Additional details about the error
}

// Error implements the error interface
func (ce ConfigurationError) Error() string {
	if ce.Details == "" {
		return fmt.Sprintf("%s: %s", ce.FileName, ce.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ce.FileName, ce.Message, ce.Details)
}

// DetailedError returns a detailed error message with all context
func (ce ConfigurationError) DetailedError() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Configuration Error: %s", ce.FileName))
	parts = append(parts, fmt.Sprintf("  File: %s", ce.FilePath))
	parts = append(parts, fmt.Sprintf("  Type: %s", ce.ErrorType))
	parts = append(parts, fmt.Sprintf("  Error: %s", ce.Message))

	if ce.Details != "" {
		parts = append(parts, fmt.Sprintf("  Details: %s", ce.Details))
	}

	return strings.Join(parts, "\n")
}

// NewConfigurationError creates a new configuration error for filePath
func NewConfigurationError(filePath, errorType, message, details string) ConfigurationError {
	return ConfigurationError{
		FilePath:  filePath,
		FileName:  filepath.Base(filePath),
		ErrorType: errorType,
		Message:   message,
		Details:   details,
	}
}
