package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Test failure (scenarios failed, golden mismatch)
	ExitCommandError = 2 // Command error (bad expression, schema or database)
)

// Error codes reported by commands. Schema and data failures carry the
// codes of schema.LoadError (E0xx, E1xx).
const (
	ErrCodeGeneric     = "E001"
	ErrCodeParse       = "E201" // expression does not compile
	ErrCodeLower       = "E202" // expression has no SQL form
	ErrCodeEval        = "E203" // evaluation failed
	ErrCodeStore       = "E204" // database failure
	ErrCodeWriteFailed = "E205" // output file could not be written
	ErrCodeTestFailed  = "E_TEST_FAILED"
)

// ExitError ends a command with a specific exit code.
//
// Reported is set once the failure has been written to stdout by an
// OutputFormatter; Execute prints every other error to stderr.
type ExitError struct {
	Code     int    // ExitFailure or ExitCommandError
	ErrCode  string // error code of the response, if any
	Message  string
	Err      error
	Reported bool
}

func (e *ExitError) Error() string {
	switch {
	case e.Err == nil:
		return e.Message
	case e.Message == "":
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
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

// GetExitCode extracts the exit code from an error. Errors that are not
// an ExitError come from flag and argument parsing and map to
// ExitCommandError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// OutputFormatter writes command results as text or as a JSON CLIResponse.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose output; defaults to Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"` // "E201", "E110", ...
	Message string `json:"message"`
	Details any    `json:"details,omitempty"` // e.g. {"position": 4}
}

// Success writes data. Text mode prints its default format; commands with
// a richer text layout write to Writer themselves.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes an error response.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err under code and returns the command error for it.
func (f *OutputFormatter) Fail(code string, err error, details any) *ExitError {
	_ = f.Error(code, err.Error(), details)
	return &ExitError{Code: ExitCommandError, ErrCode: code, Err: err, Reported: true}
}

// VerboseLog writes a diagnostic line when verbose mode is enabled. It
// goes to ErrWriter so JSON on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
