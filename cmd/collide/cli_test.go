package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args and returns stdout and the
// command error. Flag variables are reset first since cobra keeps them
// between executions.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	inspectJSON = false
	queryCompound, queryMin, queryMax = "", "", ""
	containsCompound, containsPoint = "", ""
	logLevel = ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.toml")))
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCLIInspect(t *testing.T) {
	out, _, err := runCLI(t, "inspect", bracketExample)
	require.NoError(t, err)
	for _, want := range []string{`Compound "bracket"`, "Parts: 2", `Compound "dumbbell"`, "warning:"} {
		assert.Contains(t, out, want)
	}
}

func TestCLIInspectJSON(t *testing.T) {
	out, _, err := runCLI(t, "inspect", "--json", bracketExample)
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	require.Len(t, report.Compounds, 2)
	assert.Equal(t, [2]float64{3, 3}, report.Compounds[0].AABB.Max)
}

func TestCLIInspectEvalError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.collide")
	require.NoError(t, os.WriteFile(path, []byte(`(compound "none")`), 0o644))

	_, errOut, err := runCLI(t, "inspect", path)
	require.Error(t, err)
	assert.Contains(t, errOut, "error:")
}

func TestCLIQuery(t *testing.T) {
	out, _, err := runCLI(t, "query", bracketExample, "--compound", "bracket", "--min", "0.2,1.5", "--max", "0.8,2.5")
	require.NoError(t, err)
	assert.Equal(t, "1 part(s)\n1\n", out)
}

func TestCLIQueryBadPoint(t *testing.T) {
	_, _, err := runCLI(t, "query", bracketExample, "--compound", "bracket", "--min", "0.2", "--max", "1,1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--min")
}

func TestCLIContains(t *testing.T) {
	out, _, err := runCLI(t, "contains", bracketExample, "--compound", "bracket", "--point", "2,2")
	require.NoError(t, err)
	assert.Regexp(t, `^outside\n`, out)

	out, _, err = runCLI(t, "contains", bracketExample, "--compound", "bracket", "--point", "0.5, 2")
	require.NoError(t, err)
	assert.Regexp(t, `^inside \(parts \[1\]\)`, out)
}

func TestCLILogLevel(t *testing.T) {
	_, _, err := runCLI(t, "inspect", bracketExample, "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestParseVec(t *testing.T) {
	tests := []struct {
		in      string
		x, y    float64
		wantErr bool
	}{
		{"1,2", 1, 2, false},
		{" -1.5 , 3e2 ", -1.5, 300, false},
		{"1", 0, 0, true},
		{"1,2,3", 0, 0, true},
		{"a,2", 0, 0, true},
	}
	for _, tt := range tests {
		v, err := parseVec(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.x, v.X, tt.in)
		assert.Equal(t, tt.y, v.Y, tt.in)
	}
}
