package model

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gomlx/go-coreml/proto/coreml/spec"
	"github.com/gomlx/webnn-coreml/blob"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"google.golang.org/protobuf/proto"
)

// Layout of an .mlpackage directory.
const (
	DataDir       = "Data"
	ModelFileName = "model.mlmodel"
	WeightsDir    = "weights"
	ManifestName  = "Manifest.json"
)

// SerializeOptions configures the model descriptor.
type SerializeOptions struct {
	// SpecificationVersion of the CoreML model format. ML Programs using the CoreML7 opset
	// require at least 8 (iOS 17 / macOS 14).
	SpecificationVersion int32

	// ShortDescription is stored in the model metadata, if set.
	ShortDescription string
}

// DefaultOptions returns the default serialization options.
func DefaultOptions() SerializeOptions {
	return SerializeOptions{SpecificationVersion: 8}
}

// ToModel wraps program into a CoreML model with the given input and output feature
// descriptions. Features are multi-arrays of float16, float32 or int32.
func ToModel(program *Program, inputs, outputs []FeatureSpec, opts SerializeOptions) (*spec.Model, error) {
	description := &spec.ModelDescription{}
	for _, f := range inputs {
		fd, err := featureDescription(f)
		if err != nil {
			return nil, errors.WithMessagef(err, "input %q", f.Name)
		}
		description.Input = append(description.Input, fd)
	}
	for _, f := range outputs {
		fd, err := featureDescription(f)
		if err != nil {
			return nil, errors.WithMessagef(err, "output %q", f.Name)
		}
		description.Output = append(description.Output, fd)
	}
	if opts.ShortDescription != "" {
		description.Metadata = &spec.Metadata{ShortDescription: opts.ShortDescription}
	}
	return &spec.Model{
		SpecificationVersion: opts.SpecificationVersion,
		Description:          description,
		Type:                 &spec.Model_MlProgram{MlProgram: program},
	}, nil
}

func featureDescription(f FeatureSpec) (*spec.FeatureDescription, error) {
	var arrayType spec.ArrayFeatureType_ArrayDataType
	switch f.DType {
	case Float32:
		arrayType = spec.ArrayFeatureType_FLOAT32
	case Float16:
		arrayType = spec.ArrayFeatureType_FLOAT16
	case Int32:
		arrayType = spec.ArrayFeatureType_INT32
	default:
		return nil, errors.Errorf("data type %s cannot be a model feature", f.DType)
	}
	if len(f.Shape) == 0 {
		return nil, errors.New("model features cannot be scalars")
	}
	return &spec.FeatureDescription{
		Name: f.Name,
		Type: &spec.FeatureType{
			Type: &spec.FeatureType_MultiArrayType{
				MultiArrayType: &spec.ArrayFeatureType{
					Shape:    f.Shape,
					DataType: arrayType,
				},
			},
		},
	}, nil
}

// ArtifactError is returned when a file of the package cannot be produced.
type ArtifactError struct {
	// Artifact is the package relative path of the file, or the package itself.
	Artifact string
	Err      error
}

func (e *ArtifactError) Error() string {
	return e.Artifact + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ArtifactError) Unwrap() error { return e.Err }

// Cause returns the underlying error, for github.com/pkg/errors.
func (e *ArtifactError) Cause() error { return e.Err }

func artifactError(artifact string, err error) error {
	return &ArtifactError{Artifact: artifact, Err: err}
}

type manifestItem struct {
	Author      string `json:"author"`
	Description string `json:"description"`
	Name        string `json:"name"`
	Path        string `json:"path"`
}

type manifest struct {
	FileFormatVersion   string                                      `json:"fileFormatVersion"`
	ItemInfoEntries     *orderedmap.OrderedMap[string, manifestItem] `json:"itemInfoEntries"`
	RootModelIdentifier string                                      `json:"rootModelIdentifier"`
}

// newManifest lists the model and its weights, in that order, under fresh identifiers.
func newManifest() *manifest {
	modelID, weightsID := uuid.NewString(), uuid.NewString()
	entries := orderedmap.New[string, manifestItem]()
	entries.Set(modelID, manifestItem{
		Author:      "com.apple.CoreML",
		Description: "CoreML Model Specification",
		Name:        ModelFileName,
		Path:        ModelFileName,
	})
	entries.Set(weightsID, manifestItem{
		Author:      "com.apple.CoreML",
		Description: "CoreML Model Weights",
		Name:        blob.FileName,
		Path:        WeightsDir + "/" + blob.FileName,
	})
	return &manifest{
		FileFormatVersion:   "1.0.0",
		ItemInfoEntries:     entries,
		RootModelIdentifier: modelID,
	}
}

// SavePackage writes m and its weights as the package directory packagePath:
//
//	<packagePath>/Data/model.mlmodel
//	<packagePath>/Data/weights/weights.bin
//	<packagePath>/Manifest.json
//
// The weights file is always written, with only its header if there are no weights.
// The model is marshalled deterministically. Errors are *ArtifactError.
func SavePackage(m *spec.Model, weights *blob.Writer, packagePath string) error {
	weightsDir := filepath.Join(packagePath, DataDir, WeightsDir)
	if err := os.MkdirAll(weightsDir, 0o755); err != nil {
		return artifactError(filepath.Base(packagePath), errors.Wrap(err, "create package directories"))
	}

	modelArtifact := filepath.Join(DataDir, ModelFileName)
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(m)
	if err != nil {
		return artifactError(modelArtifact, errors.Wrap(err, "marshal model"))
	}
	if err := os.WriteFile(filepath.Join(packagePath, modelArtifact), data, 0o644); err != nil {
		return artifactError(modelArtifact, errors.Wrap(err, "write model"))
	}

	weightsArtifact := filepath.Join(DataDir, WeightsDir, blob.FileName)
	if weights == nil {
		weights = blob.NewWriter()
	}
	if err := weights.WriteFile(filepath.Join(packagePath, weightsArtifact)); err != nil {
		return artifactError(weightsArtifact, err)
	}

	manifestData, err := json.MarshalIndent(newManifest(), "", "  ")
	if err != nil {
		return artifactError(ManifestName, errors.Wrap(err, "marshal manifest"))
	}
	if err := os.WriteFile(filepath.Join(packagePath, ManifestName), manifestData, 0o644); err != nil {
		return artifactError(ManifestName, errors.Wrap(err, "write manifest"))
	}
	return nil
}
