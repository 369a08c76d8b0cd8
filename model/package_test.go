package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gomlx/go-coreml/proto/coreml/spec"
	"github.com/gomlx/webnn-coreml/blob"
	"github.com/google/uuid"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func buildTestModel(t *testing.T, weights *blob.Writer) *spec.Model {
	t.Helper()
	data := make([]byte, 4*512)
	offset, err := weights.AddBlob(blob.DataTypeFloat32, data)
	require.NoError(t, err)

	b := NewBuilder("main")
	x := b.Input("x", Float32, 1, 512)
	w := b.BlobConst("w", Float32, []int64{1, 512}, blob.ModelPath, offset)
	b.Output("y", b.Mul("y", x, w))
	program, err := b.Build()
	require.NoError(t, err)
	m, err := ToModel(program, b.InputSpecs(), b.OutputSpecs(), DefaultOptions())
	require.NoError(t, err)
	return m
}

func TestSavePackage(t *testing.T) {
	weights := blob.NewWriter()
	m := buildTestModel(t, weights)
	packagePath := filepath.Join(t.TempDir(), "test.mlpackage")
	if err := SavePackage(m, weights, packagePath); err != nil {
		t.Fatalf("SavePackage() error = %v", err)
	}

	modelPath := filepath.Join(packagePath, DataDir, ModelFileName)
	var loaded spec.Model
	require.NoError(t, proto.Unmarshal(must.M1(os.ReadFile(modelPath)), &loaded))
	require.Equal(t, int32(8), loaded.SpecificationVersion)
	require.Len(t, loaded.Description.Input, 1)
	require.Equal(t, "x", loaded.Description.Input[0].Name)
	require.Equal(t, []int64{1, 512}, loaded.Description.Input[0].Type.GetMultiArrayType().Shape)
	require.NotNil(t, loaded.GetMlProgram())

	entries, err := blob.ReadFile(filepath.Join(packagePath, DataDir, WeightsDir, blob.FileName))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, uint64(blob.Alignment), entries[0].MetadataOffset)
	require.Len(t, entries[0].Data, 4*512)

	var manifestData struct {
		FileFormatVersion   string `json:"fileFormatVersion"`
		ItemInfoEntries     map[string]manifestItem
		RootModelIdentifier string `json:"rootModelIdentifier"`
	}
	require.NoError(t, json.Unmarshal(must.M1(os.ReadFile(filepath.Join(packagePath, ManifestName))), &manifestData))
	require.Equal(t, "1.0.0", manifestData.FileFormatVersion)
	require.Len(t, manifestData.ItemInfoEntries, 2)
	root, found := manifestData.ItemInfoEntries[manifestData.RootModelIdentifier]
	require.True(t, found)
	require.Equal(t, ModelFileName, root.Path)
	for id, item := range manifestData.ItemInfoEntries {
		require.NoError(t, uuid.Validate(id))
		require.Equal(t, "com.apple.CoreML", item.Author)
		if id != manifestData.RootModelIdentifier {
			require.Equal(t, "weights/weights.bin", item.Path)
		}
	}
}

func TestSavePackageDeterministic(t *testing.T) {
	dir := t.TempDir()
	var models, weightFiles [][]byte
	for _, name := range []string{"a.mlpackage", "b.mlpackage"} {
		weights := blob.NewWriter()
		packagePath := filepath.Join(dir, name)
		require.NoError(t, SavePackage(buildTestModel(t, weights), weights, packagePath))
		models = append(models, must.M1(os.ReadFile(filepath.Join(packagePath, DataDir, ModelFileName))))
		weightFiles = append(weightFiles, must.M1(os.ReadFile(filepath.Join(packagePath, DataDir, WeightsDir, blob.FileName))))
	}
	require.Equal(t, models[0], models[1])
	require.Equal(t, weightFiles[0], weightFiles[1])
}

func TestSavePackageWithoutWeights(t *testing.T) {
	b := NewBuilder("main")
	x := b.Input("x", Float16, 4)
	b.Output("y", b.Op("relu", map[string]*Value{"x": x}, "y", Float16, []int64{4}))
	program := must.M1(b.Build())
	m := must.M1(ToModel(program, b.InputSpecs(), b.OutputSpecs(), DefaultOptions()))

	packagePath := filepath.Join(t.TempDir(), "empty.mlpackage")
	require.NoError(t, SavePackage(m, nil, packagePath))
	info, err := os.Stat(filepath.Join(packagePath, DataDir, WeightsDir, blob.FileName))
	require.NoError(t, err)
	require.Equal(t, int64(blob.Alignment), info.Size())
}

func TestSavePackageArtifactError(t *testing.T) {
	dir := t.TempDir()
	// A regular file where the package directory should be.
	packagePath := filepath.Join(dir, "blocked.mlpackage")
	require.NoError(t, os.WriteFile(packagePath, nil, 0o644))

	err := SavePackage(&spec.Model{}, nil, packagePath)
	require.Error(t, err)
	var artifactErr *ArtifactError
	require.True(t, errors.As(err, &artifactErr))
	require.Equal(t, "blocked.mlpackage", artifactErr.Artifact)
}

func TestToModelRejectsFeatures(t *testing.T) {
	program := &Program{Version: 1}
	_, err := ToModel(program, []FeatureSpec{{Name: "x", DType: Bool, Shape: []int64{2}}}, nil, DefaultOptions())
	require.ErrorContains(t, err, `input "x"`)
	_, err = ToModel(program, nil, []FeatureSpec{{Name: "y", DType: Float32}}, DefaultOptions())
	require.ErrorContains(t, err, "scalars")
}
