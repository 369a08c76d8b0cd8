// Package model provides a builder for CoreML MIL programs and the serialization of
// programs into .mlpackage directories.
//
// MIL (Machine Learning Intermediate Language) is CoreML's graph representation. The
// builder records operations in emission order into a single block of a single function.
// Callers choose the name, data type and shape of every value they create; the builder
// does not infer or check them.
//
// Example usage:
//
//	b := model.NewBuilder("main")
//	x := b.Input("x", model.Float32, 2, 3)
//	y := b.Op("relu", map[string]*model.Value{"x": x}, "y", model.Float32, []int64{2, 3})
//	b.Output("y", y)
//	program := b.Build()
package model

import (
	"fmt"

	"github.com/gomlx/go-coreml/proto/coreml/milspec"
	"github.com/pkg/errors"
)

// DType represents a data type for tensors.
type DType = milspec.DataType

// Data type constants used by the builder.
const (
	Float16 = milspec.DataType_FLOAT16
	Float32 = milspec.DataType_FLOAT32
	Int8    = milspec.DataType_INT8
	UInt8   = milspec.DataType_UINT8
	Int32   = milspec.DataType_INT32
	Bool    = milspec.DataType_BOOL
	String  = milspec.DataType_STRING
)

// Value represents a named value in the MIL graph: an input, an operation output, or an
// immediate constant that is embedded in the operations that use it.
type Value struct {
	name     string
	dtype    DType
	shape    []int64
	builder  *Builder
	isConst  bool
	constVal *milspec.Value
}

// Name returns the value's name. Immediates have no name.
func (v *Value) Name() string {
	return v.name
}

// Shape returns the value's shape.
func (v *Value) Shape() []int64 {
	return v.shape
}

// DType returns the value's data type.
func (v *Value) DType() DType {
	return v.dtype
}

// IsConst returns true if this value is an immediate constant.
func (v *Value) IsConst() bool {
	return v.isConst
}

// Rank returns the number of dimensions of the value.
func (v *Value) Rank() int {
	return len(v.shape)
}

// FeatureSpec describes a model input or output, or one output of an operation.
type FeatureSpec struct {
	Name  string
	DType DType
	Shape []int64
}

// Builder constructs MIL programs.
type Builder struct {
	name       string
	opset      string
	inputs     []*Value
	outputs    []string
	operations []*milspec.Operation
	values     map[string]*Value
	err        error // first error encountered during building
}

// Err returns the first error encountered during building, if any.
func (b *Builder) Err() error {
	return b.err
}

// setErr records the first error encountered.
func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// NewBuilder creates a new MIL program builder.
// The name is used as the function name in the program.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:   name,
		opset:  "CoreML7",
		values: make(map[string]*Value),
	}
}

// SetOpset sets the operation set version (e.g. "CoreML6", "CoreML7").
func (b *Builder) SetOpset(opset string) *Builder {
	b.opset = opset
	return b
}

// NumOperations returns the number of operations emitted so far.
func (b *Builder) NumOperations() int {
	return len(b.operations)
}

// Operations returns the operations emitted so far, in order.
func (b *Builder) Operations() []*milspec.Operation {
	return b.operations
}

// register records a named value, duplicated names are an error.
func (b *Builder) register(v *Value) *Value {
	if _, found := b.values[v.name]; found {
		b.setErr(errors.Errorf("value %q is defined twice", v.name))
	}
	b.values[v.name] = v
	return v
}

// Input adds an input to the program.
func (b *Builder) Input(name string, dtype DType, shape ...int64) *Value {
	v := b.register(&Value{name: name, dtype: dtype, shape: shape, builder: b})
	b.inputs = append(b.inputs, v)
	return v
}

// Output marks a value as an output of the program. When name differs from the value's
// name an identity operation renames it.
func (b *Builder) Output(name string, v *Value) {
	if name == v.name {
		b.outputs = append(b.outputs, name)
		return
	}
	renamed := b.Identity(name, v)
	b.outputs = append(b.outputs, renamed.name)
}

// Identity creates an identity operation that copies a value with a new name.
func (b *Builder) Identity(name string, x *Value) *Value {
	return b.Op("identity", map[string]*Value{"x": x}, name, x.dtype, x.shape)
}

// Op adds an operation with a single output and returns the output value.
func (b *Builder) Op(opType string, inputs map[string]*Value, name string, dtype DType, shape []int64) *Value {
	return b.appendOp(opType, inputs, nil, []FeatureSpec{{Name: name, DType: dtype, Shape: shape}})[0]
}

// OpWithListArg adds an operation whose listArgs parameters take a list of values (e.g.
// the "values" of concat).
func (b *Builder) OpWithListArg(opType string, inputs map[string]*Value, listArgs map[string][]*Value,
	name string, dtype DType, shape []int64) *Value {
	return b.appendOp(opType, inputs, listArgs, []FeatureSpec{{Name: name, DType: dtype, Shape: shape}})[0]
}

// MultiOutputOp adds an operation with several outputs (e.g. split).
func (b *Builder) MultiOutputOp(opType string, inputs map[string]*Value, outputs []FeatureSpec) []*Value {
	return b.appendOp(opType, inputs, nil, outputs)
}

// argument binds v either by name or, for immediates, by value.
func argument(v *Value) *milspec.Argument_Binding {
	if v.isConst {
		return &milspec.Argument_Binding{Binding: &milspec.Argument_Binding_Value{Value: v.constVal}}
	}
	return &milspec.Argument_Binding{Binding: &milspec.Argument_Binding_Name{Name: v.name}}
}

func (b *Builder) appendOp(opType string, inputs map[string]*Value, listArgs map[string][]*Value, outputs []FeatureSpec) []*Value {
	opInputs := make(map[string]*milspec.Argument, len(inputs)+len(listArgs))
	for param, v := range inputs {
		if v == nil {
			b.setErr(errors.Errorf("%s: input %q is nil", opType, param))
			continue
		}
		opInputs[param] = &milspec.Argument{Arguments: []*milspec.Argument_Binding{argument(v)}}
	}
	for param, values := range listArgs {
		bindings := make([]*milspec.Argument_Binding, len(values))
		for i, v := range values {
			bindings[i] = argument(v)
		}
		opInputs[param] = &milspec.Argument{Arguments: bindings}
	}

	op := &milspec.Operation{Type: opType, Inputs: opInputs}
	results := make([]*Value, len(outputs))
	for i, out := range outputs {
		op.Outputs = append(op.Outputs, namedValueType(out.Name, out.DType, out.Shape))
		results[i] = b.register(&Value{name: out.Name, dtype: out.DType, shape: out.Shape, builder: b})
	}
	b.operations = append(b.operations, op)
	return results
}

// tensorType returns the MIL type of a tensor with static dimensions.
func tensorType(dtype DType, shape []int64) *milspec.ValueType {
	tt := &milspec.TensorType{
		DataType:   dtype,
		Rank:       int64(len(shape)),
		Dimensions: make([]*milspec.Dimension, len(shape)),
	}
	for i, dim := range shape {
		tt.Dimensions[i] = &milspec.Dimension{
			Dimension: &milspec.Dimension_Constant{
				Constant: &milspec.Dimension_ConstantDimension{Size: uint64(dim)},
			},
		}
	}
	return &milspec.ValueType{Type: &milspec.ValueType_TensorType{TensorType: tt}}
}

func namedValueType(name string, dtype DType, shape []int64) *milspec.NamedValueType {
	return &milspec.NamedValueType{Name: name, Type: tensorType(dtype, shape)}
}

// InputSpecs returns the input feature specifications.
func (b *Builder) InputSpecs() []FeatureSpec {
	specs := make([]FeatureSpec, len(b.inputs))
	for i, v := range b.inputs {
		specs[i] = FeatureSpec{Name: v.name, DType: v.dtype, Shape: v.shape}
	}
	return specs
}

// OutputSpecs returns the output feature specifications.
func (b *Builder) OutputSpecs() []FeatureSpec {
	specs := make([]FeatureSpec, len(b.outputs))
	for i, name := range b.outputs {
		v := b.values[name]
		specs[i] = FeatureSpec{Name: name, DType: v.dtype, Shape: v.shape}
	}
	return specs
}

// Program is an alias for the MIL Program type.
type Program = milspec.Program

// Build constructs the final MIL Program, or returns the first error recorded while
// building.
func (b *Builder) Build() (*Program, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.outputs) == 0 {
		return nil, errors.New("program has no outputs")
	}
	inputs := make([]*milspec.NamedValueType, len(b.inputs))
	for i, v := range b.inputs {
		inputs[i] = namedValueType(v.name, v.dtype, v.shape)
	}
	block := &milspec.Block{
		Outputs:    b.outputs,
		Operations: b.operations,
	}
	function := &milspec.Function{
		Inputs:               inputs,
		Opset:                b.opset,
		BlockSpecializations: map[string]*milspec.Block{b.opset: block},
	}
	return &milspec.Program{
		Version:   1,
		Functions: map[string]*milspec.Function{b.name: function},
	}, nil
}

// String returns a one line summary, used in logs.
func (b *Builder) String() string {
	return fmt.Sprintf("MIL function %q (%s): %d inputs, %d operations, %d outputs",
		b.name, b.opset, len(b.inputs), len(b.operations), len(b.outputs))
}
