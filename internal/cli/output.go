package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rickgao/eedraws/internal/api"
	"github.com/rickgao/eedraws/internal/report"
	"github.com/rickgao/eedraws/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Nothing to report, declined prompt, interrupted
	ExitCommandError = 2 // Fetch, parse, storage or configuration failure
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message; Err's message is used when empty
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// classify maps a domain error to an ExitError. Errors that already carry a
// code pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var (
		exitErr  *ExitError
		netErr   *api.NetworkError
		parseErr *api.ParseError
		ioErr    *store.IOError
		emptyErr *report.EmptyDatasetError
	)
	switch {
	case errors.As(err, &exitErr):
		return err
	case errors.As(err, &netErr):
		return WrapExitError(ExitCommandError, "fetch draws", err)
	case errors.As(err, &parseErr):
		return WrapExitError(ExitCommandError, "parse draws", err)
	case errors.As(err, &ioErr):
		return WrapExitError(ExitCommandError, "dataset", err)
	case errors.As(err, &emptyErr):
		return &ExitError{Code: ExitFailure, Err: err}
	case errors.Is(err, context.Canceled):
		return WrapExitError(ExitFailure, "interrupted", err)
	default:
		return WrapExitError(ExitFailure, "error", err)
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    int    `json:"code"` // exit code
	Message string `json:"message"`
}

// JSON reports whether output is machine-readable.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success outputs data. In text mode, text is called to write the
// human-readable form.
func (f *OutputFormatter) Success(data any, text func(w io.Writer) error) error {
	if f.JSON() {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	return text(f.Writer)
}

// Error outputs err in the configured format. Text errors are left to the
// caller, which prints them to stderr.
func (f *OutputFormatter) Error(err error) error {
	if !f.JSON() {
		return nil
	}
	return f.encode(CLIResponse{
		Status: "error",
		Error:  &CLIError{Code: GetExitCode(err), Message: err.Error()},
	})
}

func (f *OutputFormatter) encode(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
