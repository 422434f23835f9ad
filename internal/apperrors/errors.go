// Package apperrors defines the application-level error types shared by the
// registry, installer, and genome commands.
package apperrors

import (
	"errors"
	"fmt"
)

// UsageError indicates a missing or malformed argument. The CLI prints the
// usage banner alongside it.
type UsageError struct {
	Message string
	Usage   string
}

func (e *UsageError) Error() string {
	if e.Usage == "" {
		return e.Message
	}
	return fmt.Sprintf("%s\n\nUsage: %s", e.Message, e.Usage)
}

// NewUsageError creates a new usage error.
func NewUsageError(message, usage string) *UsageError {
	return &UsageError{Message: message, Usage: usage}
}

// NotFoundError indicates a referenced profile, path, or binary is absent.
// Path is the exact location that was expected; Remedy, when set, is a
// command the operator can run to fix it.
type NotFoundError struct {
	What   string
	Path   string
	Remedy string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s not found: %s", e.What, e.Path)
	if e.Remedy != "" {
		msg += fmt.Sprintf("\n  try: %s", e.Remedy)
	}
	return msg
}

// NewNotFoundError creates a new not-found error.
func NewNotFoundError(what, path, remedy string) *NotFoundError {
	return &NotFoundError{What: what, Path: path, Remedy: remedy}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// PermissionError indicates a directory or file is not writable or
// executable. The remediation is suggested, never executed: the tool does
// not escalate privileges on its own.
type PermissionError struct {
	Path   string
	Remedy string
}

func (e *PermissionError) Error() string {
	msg := fmt.Sprintf("permission denied: %s", e.Path)
	if e.Remedy != "" {
		msg += fmt.Sprintf("\n  try: %s", e.Remedy)
	}
	return msg
}

// NewPermissionError creates a new permission error.
func NewPermissionError(path, remedy string) *PermissionError {
	return &PermissionError{Path: path, Remedy: remedy}
}

// VersionIncompatibleError indicates a detected tool version below the
// required floor. Hard marks the absolute floor (no override possible);
// otherwise the caller may prompt for confirmation and proceed.
type VersionIncompatibleError struct {
	Tool     string
	Detected string
	Minimum  string
	Hard     bool
}

func (e *VersionIncompatibleError) Error() string {
	kind := "below recommended"
	if e.Hard {
		kind = "below minimum supported"
	}
	return fmt.Sprintf("%s version %s is %s version %s", e.Tool, e.Detected, kind, e.Minimum)
}

// NewVersionIncompatibleError creates a new version-incompatible error.
func NewVersionIncompatibleError(tool, detected, minimum string, hard bool) *VersionIncompatibleError {
	return &VersionIncompatibleError{Tool: tool, Detected: detected, Minimum: minimum, Hard: hard}
}
