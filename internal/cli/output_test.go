package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_Success(t *testing.T) {
	testCases := []struct {
		name   string
		format string
		want   string
	}{
		{"json", "json", `{"status":"ok","data":{"rows":2}}` + "\n"},
		{"text", "text", "map[rows:2]\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: tc.format, Writer: buf}
			require.NoError(t, formatter.Success(map[string]int{"rows": 2}))
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error(ErrCodeParse, "Expression expected", map[string]int{"position": 5}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeParse, resp.Error.Code)
	assert.Equal(t, "Expression expected", resp.Error.Message)
	assert.Equal(t, map[string]any{"position": float64(5)}, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	testCases := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tc.verbose}

			require.NoError(t, formatter.Error(ErrCodeLower, "cannot lower: aggregate Any", map[string]int{"position": 0}))
			assert.Contains(t, buf.String(), "Error [E202]: cannot lower: aggregate Any\n")
			if tc.wantDetails {
				assert.Contains(t, buf.String(), "Details: map[position:0]")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}
	cause := errors.New("no such table: people")

	exitErr := formatter.Fail(ErrCodeStore, cause, nil)
	assert.Equal(t, "Error [E204]: no such table: people\n", buf.String())
	assert.Equal(t, ExitCommandError, exitErr.Code)
	assert.Equal(t, ErrCodeStore, exitErr.ErrCode)
	assert.True(t, exitErr.Reported)
	assert.ErrorIs(t, exitErr, cause)
	assert.Equal(t, "no such table: people", exitErr.Error())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	testCases := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, diag := &bytes.Buffer{}, &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: tc.verbose}

			formatter.VerboseLog("Loaded %d row(s) from %s", 3, "people_data.yaml")

			assert.Empty(t, out.String())
			if tc.wantLog {
				assert.Equal(t, "Loaded 3 row(s) from people_data.yaml\n", diag.String())
			} else {
				assert.Empty(t, diag.String())
			}
		})
	}
}

func TestExitError(t *testing.T) {
	cause := errors.New("permission denied")

	testCases := []struct {
		name string
		err  *ExitError
		want string
	}{
		{"message", NewExitError(ExitFailure, "2 scenario(s) failed"), "2 scenario(s) failed"},
		{"wrapped", WrapExitError(ExitCommandError, "failed to find scenarios", cause), "failed to find scenarios: permission denied"},
		{"bare cause", &ExitError{Code: ExitCommandError, Err: cause}, "permission denied"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestGetExitCode(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"test failure", NewExitError(ExitFailure, "failed"), ExitFailure},
		{"wrapped exit error", fmt.Errorf("run: %w", NewExitError(ExitCommandError, "bad")), ExitCommandError},
		{"flag error", errors.New(`unknown flag: --nope`), ExitCommandError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GetExitCode(tc.err))
		})
	}
}
