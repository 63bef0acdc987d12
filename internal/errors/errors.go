package errors

import (
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// CommandError represents a child-process execution error
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// MetadataCode identifies a recognized way a binary's version resource
// can fail to be read. Any read failure outside these three codes is
// unknown and must be propagated instead of recovered.
type MetadataCode string

const (
	CodeInvalidSignature  MetadataCode = "invalidSignature"
	CodeNoResourceSection MetadataCode = "noResourceSection"
	CodeNoVersionResource MetadataCode = "noVersionResource"
)

// MetadataError reports that a binary's embedded version metadata could
// not be read. Callers recover from it by falling back to the default
// quirk set; it never fails the surrounding task.
type MetadataError struct {
	Path string
	Code MetadataCode
}

func (e MetadataError) Error() string {
	switch e.Code {
	case CodeInvalidSignature:
		return fmt.Sprintf("'%s' is not a valid PE executable", e.Path)
	case CodeNoResourceSection:
		return fmt.Sprintf("'%s' has no resource section", e.Path)
	case CodeNoVersionResource:
		return fmt.Sprintf("'%s' has no version resource", e.Path)
	}
	return fmt.Sprintf("'%s': unreadable version metadata (%s)", e.Path, e.Code)
}

// UnsupportedVersionError reports a binary older than the minimum
// version this tool knows how to drive. It is fatal to the calling task.
type UnsupportedVersionError struct {
	Detected string
	Minimum  string
}

func (e UnsupportedVersionError) Error() string {
	return fmt.Sprintf("NuGet %s is not supported (minimum supported version is %s)", e.Detected, e.Minimum)
}

// WrapCommandNotFound wraps command not found errors with helpful suggestions
func WrapCommandNotFound(command string, err error) error {
	return CommandError{
		Command:    command,
		Message:    "command not found",
		Suggestion: fmt.Sprintf("Make sure '%s' is installed and in your PATH", command),
	}
}
