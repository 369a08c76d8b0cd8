// Package coreml lowers WebNN graphs to CoreML ML Programs and writes them as
// .mlpackage directories.
//
// Example usage:
//
//	graph := ... // a *webnn.GraphInfo
//	result, err := coreml.CreateAndBuild(graph, workingDir)
//	if coreml.IsNotSupported(err) {
//		// The graph uses a feature CoreML cannot express.
//	}
//	fmt.Println(result.PackagePath)
//
// The package is laid out as:
//
//	<workingDir>/<uuid>.mlpackage/Data/model.mlmodel
//	<workingDir>/<uuid>.mlpackage/Data/weights/weights.bin
//	<workingDir>/<uuid>.mlpackage/Manifest.json
package coreml

import (
	"os"
	"path/filepath"

	"github.com/gomlx/go-coreml/proto/coreml/spec"
	"github.com/gomlx/webnn-coreml/blob"
	"github.com/gomlx/webnn-coreml/model"
	"github.com/gomlx/webnn-coreml/validation"
	"github.com/gomlx/webnn-coreml/webnn"
	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

// PackageExtension is the extension of the package directories.
const PackageExtension = ".mlpackage"

// InputInfo describes an input of the model.
type InputInfo struct {
	// Name is the name of the input in the graph.
	Name string
	// MILName is the name of the model feature.
	MILName string
	// Shape of the model feature, scalars are declared as [1].
	Shape    []int64
	DataType webnn.DataType
}

// OutputInfo describes an output of the model.
type OutputInfo struct {
	Name     string
	MILName  string
	Shape    []int64
	DataType webnn.DataType
}

// Lowered is a graph lowered to a CoreML model, kept in memory until Save.
type Lowered struct {
	Model   *spec.Model
	Weights *blob.Writer
	Inputs  []InputInfo
	Outputs []OutputInfo

	// Placeholder is set when the graph has no inputs and the model declares the
	// placeholder input instead.
	Placeholder bool
}

// Save writes the package to packagePath.
func (l *Lowered) Save(packagePath string) error {
	if err := model.SavePackage(l.Model, l.Weights, packagePath); err != nil {
		return wrapError(CodeUnknown, err, "writing %s", packagePath)
	}
	return nil
}

// Result is the handle of a written package.
type Result struct {
	PackagePath string
	Inputs      []InputInfo
	Outputs     []OutputInfo
	Placeholder bool
}

// Lower validates graph against ContextProperties and lowers it. No file is written.
func Lower(graph *webnn.GraphInfo, opts ...Option) (*Lowered, error) {
	cfg := newConfig(opts)
	if err := validation.ValidateGraph(graph, ContextProperties()); err != nil {
		return nil, wrapError(CodeNotSupported, err, "invalid graph")
	}

	e := newEmitter(graph, cfg)
	if err := e.emitGraph(); err != nil {
		return nil, err
	}
	program, err := e.mil.Build()
	if err != nil {
		return nil, wrapError(CodeUnknown, err, "building the MIL program")
	}
	m, err := model.ToModel(program, e.mil.InputSpecs(), e.mil.OutputSpecs(), model.SerializeOptions{
		SpecificationVersion: cfg.specificationVersion,
		ShortDescription:     "Converted from WebNN",
	})
	if err != nil {
		return nil, wrapError(CodeUnknown, err, "building the model")
	}

	lowered := &Lowered{
		Model:       m,
		Weights:     e.weights,
		Inputs:      e.inputs,
		Placeholder: len(graph.InputOperands) == 0,
	}
	for _, id := range graph.OutputOperands {
		operand := graph.Operands[id]
		v := e.outputs[id]
		lowered.Outputs = append(lowered.Outputs, OutputInfo{
			Name:     operand.Name,
			MILName:  v.Name(),
			Shape:    v.Shape(),
			DataType: operand.Descriptor.DataType(),
		})
	}
	klog.V(1).Infof("lowered %d operations to %d MIL operations, %d constants in the weights file (%d bytes)",
		len(graph.Operations), e.mil.NumOperations(), e.weights.Count(), e.weights.Size())
	return lowered, nil
}

// CreateAndBuild lowers graph and writes it to a new package directory in workingDir,
// named after a random UUID.
//
// Errors are *Error: CodeNotSupported when the graph cannot be expressed in CoreML,
// CodeUnknown when writing the package fails. On failure the package directory is
// removed, unless WithKeepPackageOnError(true) is given.
func CreateAndBuild(graph *webnn.GraphInfo, workingDir string, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)
	lowered, err := Lower(graph, opts...)
	if err != nil {
		return nil, err
	}

	packagePath := filepath.Join(workingDir, uuid.NewString()+PackageExtension)
	if err := lowered.Save(packagePath); err != nil {
		if !cfg.keepPackageOnError {
			if rmErr := os.RemoveAll(packagePath); rmErr != nil {
				klog.Warningf("failed to remove %s: %v", packagePath, rmErr)
			}
		}
		return nil, err
	}
	klog.V(1).Infof("wrote %s", packagePath)
	return &Result{
		PackagePath: packagePath,
		Inputs:      lowered.Inputs,
		Outputs:     lowered.Outputs,
		Placeholder: lowered.Placeholder,
	}, nil
}
