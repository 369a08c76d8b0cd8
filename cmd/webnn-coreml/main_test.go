package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomlx/go-coreml/proto/coreml/milspec"
	"github.com/gomlx/webnn-coreml/coreml"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

const reluGraph = `{
  "operands": [
    {"id": 1, "kind": "input", "name": "x", "dataType": "%s", "shape": [2, 3]},
    {"id": 2, "kind": "constant", "dataType": "%s", "shape": [2, 3], "values": [1, 2, 3, 4, 5, 6]},
    {"id": 3, "kind": "intermediate", "dataType": "%s", "shape": [2, 3]},
    {"id": 4, "kind": "output", "name": "y", "dataType": "%s", "shape": [2, 3]}
  ],
  "operations": [
    {"op": "add", "a": 1, "b": 2, "output": 3},
    {"op": "relu", "input": 3, "output": 4}
  ]
}`

// writeGraph writes the relu graph with operands of dataType to dir.
func writeGraph(t *testing.T, dir, name, dataType string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := strings.ReplaceAll(reluGraph, "%s", dataType)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompileAndInspect(t *testing.T) {
	graphs := t.TempDir()
	workDir := t.TempDir()
	good := writeGraph(t, graphs, "good.json", "float32")
	bad := writeGraph(t, graphs, "bad.json", "int64")

	out, err := run(t, "compile", "--workdir", workDir, "--parallel", "2", good, bad)
	require.ErrorContains(t, err, "1 of 2 graphs failed to compile")
	require.Contains(t, out, "input_x_1[2 3]")
	require.Contains(t, out, "output_y_4[2 3]")
	require.Contains(t, out, "NotSupported")

	packages := must.M1(os.ReadDir(workDir))
	require.Len(t, packages, 1, "only the valid graph is written")
	require.True(t, strings.HasSuffix(packages[0].Name(), coreml.PackageExtension))

	out, err = run(t, "inspect", filepath.Join(workDir, packages[0].Name()))
	require.NoError(t, err)
	require.Contains(t, out, "Specification version: 8")
	for _, want := range []string{"input_x_1", "output_y_4", "FLOAT32", "relu", "add", "const"} {
		require.Contains(t, out, want)
	}

	out, err = run(t, "inspect", "--text", filepath.Join(workDir, packages[0].Name()))
	require.NoError(t, err)
	require.Contains(t, out, "specificationVersion: 8")
}

func TestOperationCounts(t *testing.T) {
	block := func(types ...string) *milspec.Function {
		ops := make([]*milspec.Operation, len(types))
		for i, opType := range types {
			ops[i] = &milspec.Operation{Type: opType}
		}
		return &milspec.Function{BlockSpecializations: map[string]*milspec.Block{"CoreML7": {Operations: ops}}}
	}
	program := &milspec.Program{Functions: map[string]*milspec.Function{
		"predict": block("relu", "const", "relu"),
		"main":    block("add"),
		"encode":  block("mul", "add"),
	}}
	want := [][]string{
		{"encode", "add", "1"},
		{"encode", "mul", "1"},
		{"main", "add", "1"},
		{"predict", "const", "1"},
		{"predict", "relu", "2"},
	}
	for range 5 {
		require.Equal(t, want, operationCounts(program))
	}
}

func TestCompileFromEnvironment(t *testing.T) {
	workDir := t.TempDir()
	t.Setenv("WEBNN_COREML_WORKDIR", workDir)
	t.Setenv("WEBNN_COREML_SPEC_VERSION", "9")
	good := writeGraph(t, t.TempDir(), "good.json", "float16")

	_, err := run(t, "compile", good)
	require.NoError(t, err)
	packages := must.M1(os.ReadDir(workDir))
	require.Len(t, packages, 1)

	m, entries, err := loadPackage(filepath.Join(workDir, packages[0].Name()))
	require.NoError(t, err)
	require.Equal(t, int32(9), m.GetSpecificationVersion())
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Data, 6*2)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeGraph(t, dir, "good.json", "float32")
	out, err := run(t, "validate", good)
	require.NoError(t, err)
	require.Contains(t, out, "ok")

	missing := filepath.Join(dir, "missing.json")
	_, err = run(t, "validate", good, missing)
	require.ErrorContains(t, err, "1 of 2 graphs cannot be lowered")
	require.Empty(t, must.M1(filepath.Glob(filepath.Join(dir, "*"+coreml.PackageExtension))))
}

func TestEnv(t *testing.T) {
	t.Setenv("WEBNN_COREML_PARALLEL", "5")
	out, err := run(t, "env")
	require.NoError(t, err)
	require.Contains(t, out, "WEBNN_COREML_PARALLEL")
	require.Contains(t, out, "5")
}
