package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	peopleSchema = "../harness/testdata/people.yaml"
	peopleData   = "../harness/testdata/people_data.yaml"
	scenariosDir = "../harness/testdata/scenarios"
)

// runCLI executes the CLI and returns stdout, stderr and the exit code.
func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Execute(args, &out, &errOut)
	return out.String(), errOut.String(), code
}

// person appends the schema flags of the sample Person type.
func person(args ...string) []string {
	return append(args, "--schema", peopleSchema, "--type", "Person")
}

// decodeResponse parses a JSON CLI response.
func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "dynq", cmd.Use)
	assert.Contains(t, cmd.Long, "SQLite")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "order", "sql", "eval", "query", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestCommandFlags(t *testing.T) {
	testCases := []struct {
		command string
		flags   []string
	}{
		{"compile", []string{"schema", "type", "result", "lambda", "output"}},
		{"order", []string{"schema", "type"}},
		{"sql", []string{"schema", "type", "table", "order-by", "select"}},
		{"eval", []string{"schema", "type", "data", "order-by", "select", "max-steps"}},
		{"query", []string{"schema", "type", "table", "order-by", "select", "db", "load"}},
		{"test", []string{"update", "filter"}},
	}

	for _, tc := range testCases {
		t.Run(tc.command, func(t *testing.T) {
			sub, _, err := NewRootCommand().Find([]string{tc.command})
			require.NoError(t, err)
			for _, name := range tc.flags {
				assert.NotNil(t, sub.Flags().Lookup(name), "flag --%s", name)
			}
		})
	}
}

func TestExecute_InvalidFormat(t *testing.T) {
	_, stderr, code := runCLI(t, person("compile", "Age", "--format", "xml")...)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, `invalid format "xml"`)
}

func TestExecute_MissingRequiredFlag(t *testing.T) {
	_, stderr, code := runCLI(t, "compile", "Age")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "required flag")
}

func TestExecute_UnknownCommand(t *testing.T) {
	_, stderr, code := runCLI(t, "frobnicate")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "unknown command")
}

func TestExecute_Verbose(t *testing.T) {
	_, stderr, code := runCLI(t, person("compile", "Age > 1", "-v")...)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stderr, "schema loaded")
	assert.Contains(t, stderr, "Compiled")
}
