package validation

import (
	"slices"

	"github.com/gomlx/webnn-coreml/webnn"
	"github.com/pkg/errors"
)

// reducedShape returns shape with the axes set to 1 (keepDimensions) or removed.
func reducedShape(shape []uint32, axes []uint32, keepDimensions bool) []uint32 {
	output := make([]uint32, 0, len(shape))
	for i, dim := range shape {
		if !slices.Contains(axes, uint32(i)) {
			output = append(output, dim)
		} else if keepDimensions {
			output = append(output, 1)
		}
	}
	return output
}

// ValidateReduce validates the reductions. Reducing over no axes returns the input.
func ValidateReduce(props webnn.ContextProperties, kind webnn.ReduceKind, input webnn.OperandDescriptor,
	axes []uint32, keepDimensions bool) (output webnn.OperandDescriptor, err error) {
	supported := props.DataTypeLimits.ReduceInput
	switch kind {
	case webnn.ReduceMean, webnn.ReduceL2, webnn.ReduceLogSum, webnn.ReduceLogSumExp:
		supported = props.DataTypeLimits.ReduceFloatInput
	}
	if err = checkDataType(kind.String()+" input", input.DataType(), supported); err != nil {
		return
	}
	if err = checkAxes(axes, input.Rank()); err != nil {
		err = errors.WithMessagef(err, "%s axes", kind)
		return
	}
	return newDescriptor(kind.String(), input.DataType(), reducedShape(input.Shape(), axes, keepDimensions))
}

// ValidateArgMinMax validates argMin and argMax. A scalar input is accepted with axis 0
// and produces a scalar.
func ValidateArgMinMax(props webnn.ContextProperties, kind webnn.ArgMinMaxKind, input webnn.OperandDescriptor,
	axis uint32, keepDimensions bool, outputDataType webnn.DataType) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType(kind.String()+" input", input.DataType(), props.DataTypeLimits.ArgMinMaxInput); err != nil {
		return
	}
	if err = checkDataType(kind.String()+" output", outputDataType, props.DataTypeLimits.ArgMinMaxOutput); err != nil {
		return
	}
	if input.IsScalar() {
		if axis != 0 {
			err = errors.Errorf("%s axis must be 0 for scalar inputs, got %d", kind, axis)
			return
		}
		return newDescriptor(kind.String(), outputDataType, nil)
	}
	if int(axis) >= input.Rank() {
		err = errors.Errorf("%s axis (%d) must be in the range [0, %d)", kind, axis, input.Rank())
		return
	}
	return newDescriptor(kind.String(), outputDataType, reducedShape(input.Shape(), []uint32{axis}, keepDimensions))
}

// ValidateSoftmax validates softmax along axis.
func ValidateSoftmax(props webnn.ContextProperties, input webnn.OperandDescriptor, axis uint32) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("softmax input", input.DataType(), props.DataTypeLimits.SoftmaxInput); err != nil {
		return
	}
	if int(axis) >= input.Rank() {
		err = errors.Errorf("softmax axis (%d) must be in the range [0, %d)", axis, input.Rank())
		return
	}
	return input, nil
}
