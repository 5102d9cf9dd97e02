package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbalona/reinsurance/pkg/serialization"
)

const testProgram = `
input "gross" {
  default = [100, 200, 300]
}

layer "qs" {
  type    = "quota_share"
  source  = "gross"
  cession = 0.4
}

output "net" {
  base   = "gross"
  deduct = ["qs.recovery"]
}
`

func writeTestProgram(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.hcl")
	require.NoError(t, os.WriteFile(path, []byte(testProgram), 0o644))
	return path
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-version"}, &out))
	assert.Contains(t, out.String(), "reinsurance")
}

func TestRunRequiresProgram(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(nil, &out))
}

func TestRunVisualize(t *testing.T) {
	path := writeTestProgram(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"-program", path, "-visualize"}, &out))
	assert.Contains(t, out.String(), "digraph")
	assert.Contains(t, out.String(), "qs")
}

func TestRunComputeWithDefaults(t *testing.T) {
	path := writeTestProgram(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"-program", path}, &out))

	var results map[string]serialization.ArrayPayload
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Contains(t, results, "net")
	assert.Equal(t, []int{3}, results["net"].Shape)
	assert.Equal(t, []float64{60, 120, 180}, results["net"].Data)
}

func TestRunComputeWithInputsFile(t *testing.T) {
	path := writeTestProgram(t)

	inputsPath := filepath.Join(t.TempDir(), "inputs.json")
	payload := map[string]serialization.ArrayPayload{
		"gross": {Shape: []int{2}, Data: []float64{10, 20}},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(inputsPath, data, 0o644))

	var out bytes.Buffer
	require.NoError(t, run([]string{"-program", path, "-inputs", inputsPath, "-backend", "parallel"}, &out))

	var results map[string]serialization.ArrayPayload
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	assert.Equal(t, []float64{6, 12}, results["net"].Data)
}

func TestRunExportEnvelope(t *testing.T) {
	path := writeTestProgram(t)
	exportPath := filepath.Join(t.TempDir(), "graph.envelope")

	var out bytes.Buffer
	require.NoError(t, run([]string{"-program", path, "-export", exportPath}, &out))
	assert.Empty(t, out.String())

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)

	var env serialization.GraphEnvelope
	require.NoError(t, serialization.DefaultPipeline().Unmarshal(data, &env))
	assert.Equal(t, []string{"gross"}, env.Inputs)
	assert.Equal(t, []string{"net"}, env.Outputs)
	assert.NotEmpty(t, env.Nodes)
}
