package validation

import (
	"math"

	"github.com/gomlx/webnn-coreml/webnn"
	"github.com/pkg/errors"
)

// binaryLimits returns the data types accepted by the inputs of a binary operation.
func binaryLimits(limits webnn.DataTypeLimits, kind webnn.BinaryKind) webnn.SupportedDataTypes {
	switch {
	case kind == webnn.BinaryPow:
		return limits.PowInput
	case kind.IsComparison():
		return limits.CompareInput
	case kind.IsLogical():
		return limits.LogicalInput
	}
	return limits.ArithmeticInput
}

// ValidateElementWiseBinary validates the arithmetic, comparison and logical binary
// operations. The inputs must have the same data type and broadcastable shapes.
// Comparisons and logical operations produce uint8.
func ValidateElementWiseBinary(props webnn.ContextProperties, kind webnn.BinaryKind, lhs, rhs webnn.OperandDescriptor) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType(kind.String()+" input", lhs.DataType(), binaryLimits(props.DataTypeLimits, kind)); err != nil {
		return
	}
	if lhs.DataType() != rhs.DataType() {
		err = errors.Errorf("%s inputs must have the same data type, got %s and %s",
			kind, webnn.DataTypeName(lhs.DataType()), webnn.DataTypeName(rhs.DataType()))
		return
	}
	shape, err := BroadcastShapes(lhs.Shape(), rhs.Shape(), true)
	if err != nil {
		err = errors.WithMessagef(err, "%s", kind)
		return
	}
	dt := lhs.DataType()
	if kind.IsComparison() || kind.IsLogical() {
		dt = webnn.Uint8
	}
	return newDescriptor(kind.String(), dt, shape)
}

// unaryLimits returns the data types accepted by a unary operation.
func unaryLimits(limits webnn.DataTypeLimits, kind webnn.UnaryKind) webnn.SupportedDataTypes {
	switch kind {
	case webnn.UnaryAbs:
		return limits.AbsInput
	case webnn.UnaryNeg:
		return limits.NegInput
	case webnn.UnarySign:
		return limits.SignInput
	case webnn.UnaryIdentity:
		return limits.IdentityInput
	case webnn.UnaryLogicalNot:
		return limits.LogicalInput
	case webnn.UnaryCast:
		return limits.CastInput
	}
	return limits.FloatUnaryInput
}

// ValidateElementWiseUnary validates a unary operation. outputDataType is only used by
// cast, the other operations keep the input data type (uint8 for logicalNot).
func ValidateElementWiseUnary(props webnn.ContextProperties, kind webnn.UnaryKind, input webnn.OperandDescriptor,
	outputDataType webnn.DataType) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType(kind.String()+" input", input.DataType(), unaryLimits(props.DataTypeLimits, kind)); err != nil {
		return
	}
	if kind == webnn.UnaryCast {
		if err = checkDataType("cast output", outputDataType, props.DataTypeLimits.CastInput); err != nil {
			return
		}
		return input.WithDataType(outputDataType), nil
	}
	return input, nil
}

// ValidateActivation validates the element-wise activations: elu, gelu, hardSigmoid,
// hardSwish, leakyRelu, linear, relu, sigmoid, softplus, softsign and tanh.
func ValidateActivation(props webnn.ContextProperties, kind string, input webnn.OperandDescriptor) (output webnn.OperandDescriptor, err error) {
	supported := props.DataTypeLimits.FloatActivationInput
	if kind == "relu" {
		supported = props.DataTypeLimits.ReluInput
	}
	if err = checkDataType(kind+" input", input.DataType(), supported); err != nil {
		return
	}
	return input, nil
}

// ValidateClamp validates clamp, minValue must not exceed maxValue.
func ValidateClamp(props webnn.ContextProperties, input webnn.OperandDescriptor, minValue, maxValue float32) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("clamp input", input.DataType(), props.DataTypeLimits.ClampInput); err != nil {
		return
	}
	if math.IsNaN(float64(minValue)) || math.IsNaN(float64(maxValue)) {
		err = errors.New("clamp bounds must not be NaN")
		return
	}
	if minValue > maxValue {
		err = errors.Errorf("clamp minimum value (%g) must be less than or equal to the maximum value (%g)", minValue, maxValue)
		return
	}
	return input, nil
}

// ValidatePrelu validates prelu, slope must be broadcastable to the input.
func ValidatePrelu(props webnn.ContextProperties, input, slope webnn.OperandDescriptor) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("prelu input", input.DataType(), props.DataTypeLimits.PreluInput); err != nil {
		return
	}
	if err = checkSameDataType("slope", input, slope); err != nil {
		return
	}
	if _, err = BroadcastShapes(slope.Shape(), input.Shape(), false); err != nil {
		err = errors.WithMessage(err, "prelu slope")
		return
	}
	return input, nil
}

// ValidateWhere validates where: the condition is uint8, the values share their data
// type, and the three shapes broadcast together.
func ValidateWhere(props webnn.ContextProperties, condition, trueValue, falseValue webnn.OperandDescriptor) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("where condition", condition.DataType(), props.DataTypeLimits.WhereCondition); err != nil {
		return
	}
	if err = checkDataType("where values", trueValue.DataType(), props.DataTypeLimits.WhereValue); err != nil {
		return
	}
	if err = checkSameDataType("falseValue", trueValue, falseValue); err != nil {
		return
	}
	shape, err := BroadcastShapes(trueValue.Shape(), falseValue.Shape(), true)
	if err == nil {
		shape, err = BroadcastShapes(condition.Shape(), shape, true)
	}
	if err != nil {
		err = errors.WithMessage(err, "where")
		return
	}
	return newDescriptor("where", trueValue.DataType(), shape)
}
