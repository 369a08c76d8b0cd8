package validation

import (
	"fmt"

	"github.com/gomlx/webnn-coreml/webnn"
	"github.com/pkg/errors"
)

// descriptorLookup resolves operand ids to descriptors, remembering the first missing one.
type descriptorLookup struct {
	graph *webnn.GraphInfo
	err   error
}

func (l *descriptorLookup) get(id webnn.OperandID) webnn.OperandDescriptor {
	operand, ok := l.graph.Operands[id]
	if !ok && l.err == nil {
		l.err = errors.Errorf("operand %d does not exist", id)
	}
	return operand.Descriptor
}

func (l *descriptorLookup) optional(id *webnn.OperandID) *webnn.OperandDescriptor {
	if id == nil {
		return nil
	}
	desc := l.get(*id)
	return &desc
}

func single(desc webnn.OperandDescriptor, err error) ([]webnn.OperandDescriptor, error) {
	if err != nil {
		return nil, err
	}
	return []webnn.OperandDescriptor{desc}, nil
}

// InferOutputs validates op within graph and returns the inferred descriptors of its
// outputs, in the order of op.OutputIDs(). Operations whose attributes are carried by
// their output operands (cast, expand, reshape and split) read them from graph.
func InferOutputs(graph *webnn.GraphInfo, props webnn.ContextProperties, op webnn.Operation) ([]webnn.OperandDescriptor, error) {
	l := &descriptorLookup{graph: graph}
	for _, id := range op.InputIDs() {
		l.get(id)
	}
	for _, id := range op.OutputIDs() {
		l.get(id)
	}
	if l.err != nil {
		return nil, l.err
	}

	switch op := op.(type) {
	case *webnn.ArgMinMax:
		return single(ValidateArgMinMax(props, op.ArgKind, l.get(op.Input), op.Axis, op.KeepDimensions, l.get(op.Output).DataType()))
	case *webnn.BatchNormalization:
		return single(ValidateBatchNormalization(props, l.get(op.Input), l.get(op.Mean), l.get(op.Variance),
			l.optional(op.Scale), l.optional(op.Bias), op.BatchNormalizationAttributes))
	case *webnn.Clamp:
		return single(ValidateClamp(props, l.get(op.Input), op.MinValue, op.MaxValue))
	case *webnn.Concat:
		inputs := make([]webnn.OperandDescriptor, len(op.Inputs))
		for i, id := range op.Inputs {
			inputs[i] = l.get(id)
		}
		return single(ValidateConcat(props, inputs, op.Axis))
	case *webnn.Conv2d:
		if op.ConvKind == webnn.Conv2dTransposed {
			return single(ValidateConvTranspose2d(props, l.get(op.Input), l.get(op.Filter), l.optional(op.Bias), op.Conv2dAttributes))
		}
		return single(ValidateConv2d(props, l.get(op.Input), l.get(op.Filter), l.optional(op.Bias), op.Conv2dAttributes))
	case *webnn.ElementWiseBinary:
		return single(ValidateElementWiseBinary(props, op.BinaryKind, l.get(op.LHS), l.get(op.RHS)))
	case *webnn.ElementWiseUnary:
		return single(ValidateElementWiseUnary(props, op.UnaryKind, l.get(op.Input), l.get(op.Output).DataType()))
	case *webnn.Expand:
		return single(ValidateExpand(props, l.get(op.Input), l.get(op.Output).Shape()))
	case *webnn.Gather:
		return single(ValidateGather(props, l.get(op.Input), l.get(op.Indices), op.Axis))
	case *webnn.Gemm:
		return single(ValidateGemm(props, l.get(op.A), l.get(op.B), l.optional(op.C), op.GemmAttributes))
	case *webnn.Gru:
		return ValidateGru(props, l.get(op.Input), l.get(op.Weight), l.get(op.RecurrentWeight), RecurrentDescriptors{
			Bias:               l.optional(op.Bias),
			RecurrentBias:      l.optional(op.RecurrentBias),
			InitialHiddenState: l.optional(op.InitialHiddenState),
		}, op)
	case *webnn.GruCell:
		return single(ValidateGruCell(props, l.get(op.Input), l.get(op.Weight), l.get(op.RecurrentWeight), l.get(op.HiddenState),
			RecurrentDescriptors{Bias: l.optional(op.Bias), RecurrentBias: l.optional(op.RecurrentBias)}, op.GruAttributes))
	case *webnn.InstanceNormalization:
		return single(ValidateInstanceNormalization(props, l.get(op.Input), l.optional(op.Scale), l.optional(op.Bias), op.Layout))
	case *webnn.LayerNormalization:
		return single(ValidateLayerNormalization(props, l.get(op.Input), l.optional(op.Scale), l.optional(op.Bias), op.Axes))
	case *webnn.Lstm:
		return ValidateLstm(props, l.get(op.Input), l.get(op.Weight), l.get(op.RecurrentWeight), RecurrentDescriptors{
			Bias:               l.optional(op.Bias),
			RecurrentBias:      l.optional(op.RecurrentBias),
			Peephole:           l.optional(op.Peephole),
			InitialHiddenState: l.optional(op.InitialHiddenState),
			InitialCellState:   l.optional(op.InitialCellState),
		}, op)
	case *webnn.LstmCell:
		return ValidateLstmCell(props, l.get(op.Input), l.get(op.Weight), l.get(op.RecurrentWeight), l.get(op.HiddenState),
			l.get(op.CellState), RecurrentDescriptors{
				Bias:          l.optional(op.Bias),
				RecurrentBias: l.optional(op.RecurrentBias),
				Peephole:      l.optional(op.Peephole),
			}, op.LstmAttributes)
	case *webnn.Matmul:
		return single(ValidateMatmul(props, l.get(op.A), l.get(op.B)))
	case *webnn.Pad:
		return single(ValidatePad(props, l.get(op.Input), op.BeginningPadding, op.EndingPadding))
	case *webnn.Pool2d:
		return single(ValidatePool2d(props, op.PoolKind, l.get(op.Input), op.Pool2dAttributes))
	case *webnn.Prelu:
		return single(ValidatePrelu(props, l.get(op.Input), l.get(op.Slope)))
	case *webnn.Reduce:
		return single(ValidateReduce(props, op.ReduceKind, l.get(op.Input), op.Axes, op.KeepDimensions))
	case *webnn.Resample2d:
		return single(ValidateResample2d(props, l.get(op.Input), op.Resample2dAttributes))
	case *webnn.Reshape:
		return single(ValidateReshape(props, l.get(op.Input), l.get(op.Output).Shape()))
	case *webnn.Slice:
		return single(ValidateSlice(props, l.get(op.Input), op.SliceAttributes))
	case *webnn.Softmax:
		return single(ValidateSoftmax(props, l.get(op.Input), op.Axis))
	case *webnn.Split:
		splits := make([]uint32, len(op.Outputs))
		for i, id := range op.Outputs {
			if shape := l.get(id).Shape(); int(op.Axis) < len(shape) {
				splits[i] = shape[op.Axis]
			}
		}
		return ValidateSplit(props, l.get(op.Input), op.Axis, splits)
	case *webnn.Transpose:
		return single(ValidateTranspose(props, l.get(op.Input), op.Permutation))
	case *webnn.Where:
		return single(ValidateWhere(props, l.get(op.Condition), l.get(op.TrueValue), l.get(op.FalseValue)))
	case *webnn.Elu, *webnn.Gelu, *webnn.HardSigmoid, *webnn.HardSwish, *webnn.LeakyRelu, *webnn.Linear,
		*webnn.Relu, *webnn.Sigmoid, *webnn.Softplus, *webnn.Softsign, *webnn.Tanh:
		return single(ValidateActivation(props, op.Kind(), l.get(op.InputIDs()[0])))
	}
	return nil, errors.Errorf("unknown operation %T", op)
}

// ValidateGraph checks the structure of graph and every one of its operations against
// props:
//
//   - declared inputs and outputs exist, have the right kind, unique non-empty names
//     (outputs may be unnamed) and supported data types, and are declared once;
//   - constants own a buffer of the right length and have supported data types;
//   - no operand exceeds the maximum rank;
//   - operations only read operands that are defined before them, and every operand is
//     produced at most once;
//   - the declared descriptors of the outputs of each operation match the inferred ones;
//   - every declared output is produced.
func ValidateGraph(graph *webnn.GraphInfo, props webnn.ContextProperties) error {
	limits := props.DataTypeLimits
	for _, id := range graph.SortedOperandIDs() {
		operand := graph.Operands[id]
		if props.MaxTensorRank > 0 && operand.Descriptor.Rank() > props.MaxTensorRank {
			return errors.Errorf("operand %d has rank %d, the maximum supported rank is %d", id, operand.Descriptor.Rank(), props.MaxTensorRank)
		}
		if operand.Kind == webnn.KindConstant {
			if err := checkDataType(fmt.Sprintf("constant %d", id), operand.Descriptor.DataType(), limits.Constant); err != nil {
				return err
			}
			data, ok := graph.ConstantData[id]
			if !ok {
				return errors.Errorf("constant %d has no data", id)
			}
			if uint64(len(data)) != operand.Descriptor.PackedByteLength() {
				return errors.Errorf("constant %d has %d bytes of data, %s requires %d",
					id, len(data), operand.Descriptor, operand.Descriptor.PackedByteLength())
			}
		}
	}

	defined := make(map[webnn.OperandID]bool)
	names := make(map[string]bool)
	for _, id := range graph.InputOperands {
		operand, ok := graph.Operands[id]
		if !ok || operand.Kind != webnn.KindInput {
			return errors.Errorf("graph input %d is not an input operand", id)
		}
		if operand.Name == "" || names[operand.Name] {
			return errors.Errorf("graph input %d must have a unique non-empty name, got %q", id, operand.Name)
		}
		names[operand.Name] = true
		if err := checkDataType(fmt.Sprintf("input %q", operand.Name), operand.Descriptor.DataType(), limits.Input); err != nil {
			return err
		}
		defined[id] = true
	}
	for id, operand := range graph.Operands {
		if operand.Kind == webnn.KindConstant {
			defined[id] = true
		}
	}
	declaredOutputs := make(map[webnn.OperandID]bool)
	for _, id := range graph.OutputOperands {
		operand, ok := graph.Operands[id]
		if !ok || operand.Kind != webnn.KindOutput {
			return errors.Errorf("graph output %d is not an output operand", id)
		}
		if declaredOutputs[id] {
			return errors.Errorf("graph output %d is declared more than once", id)
		}
		declaredOutputs[id] = true
		if operand.Name != "" {
			if names[operand.Name] {
				return errors.Errorf("graph output %d name %q is not unique", id, operand.Name)
			}
			names[operand.Name] = true
		}
		if err := checkDataType(fmt.Sprintf("output %d", id), operand.Descriptor.DataType(), limits.Output); err != nil {
			return err
		}
	}

	for i, op := range graph.Operations {
		for _, id := range op.InputIDs() {
			if !defined[id] {
				return errors.Errorf("operation #%d (%s) reads operand %d before it is defined", i, op.Kind(), id)
			}
		}
		inferred, err := InferOutputs(graph, props, op)
		if err != nil {
			return errors.WithMessagef(err, "operation #%d (%s)", i, op.Kind())
		}
		outputIDs := op.OutputIDs()
		if len(inferred) != len(outputIDs) {
			return errors.Errorf("operation #%d (%s) declares %d outputs, %d expected", i, op.Kind(), len(outputIDs), len(inferred))
		}
		for j, id := range outputIDs {
			operand := graph.Operands[id]
			if defined[id] {
				return errors.Errorf("operation #%d (%s) output %d is already defined", i, op.Kind(), id)
			}
			if operand.Kind != webnn.KindIntermediate && operand.Kind != webnn.KindOutput {
				return errors.Errorf("operation #%d (%s) output %d is a %s operand", i, op.Kind(), id, operand.Kind)
			}
			if !operand.Descriptor.Equal(inferred[j]) {
				return errors.Errorf("operation #%d (%s) output %d is declared as %s, inferred %s",
					i, op.Kind(), id, operand.Descriptor, inferred[j])
			}
			defined[id] = true
		}
	}
	for _, id := range graph.OutputOperands {
		if !defined[id] {
			return errors.Errorf("graph output %d is not produced by any operation", id)
		}
	}
	return nil
}
