package coreml

import (
	"math"

	"github.com/gomlx/webnn-coreml/model"
	"github.com/gomlx/webnn-coreml/webnn"
)

var binaryOpTypes = map[webnn.BinaryKind]string{
	webnn.BinaryAdd:            "add",
	webnn.BinarySub:            "sub",
	webnn.BinaryMul:            "mul",
	webnn.BinaryDiv:            "real_div",
	webnn.BinaryMax:            "maximum",
	webnn.BinaryMin:            "minimum",
	webnn.BinaryPow:            "pow",
	webnn.BinaryEqual:          "equal",
	webnn.BinaryNotEqual:       "not_equal",
	webnn.BinaryGreater:        "greater",
	webnn.BinaryGreaterOrEqual: "greater_equal",
	webnn.BinaryLesser:         "less",
	webnn.BinaryLesserOrEqual:  "less_equal",
	webnn.BinaryLogicalAnd:     "logical_and",
	webnn.BinaryLogicalOr:      "logical_or",
	webnn.BinaryLogicalXor:     "logical_xor",
}

// emitElementWiseBinary lowers the arithmetic operations to their MIL equivalent.
// Comparisons produce booleans that are cast to uint8, logical operations also cast
// their uint8 inputs to booleans.
func emitElementWiseBinary(e *emitter, op *webnn.ElementWiseBinary) error {
	opType, found := binaryOpTypes[op.BinaryKind]
	if !found {
		return notSupported("%s is not supported by CoreML", op.BinaryKind)
	}
	lhs, rhs := e.value(op.LHS), e.value(op.RHS)
	name := e.target(op.Output)
	switch {
	case op.BinaryKind.IsComparison():
		cond := e.mil.Compare(opType, e.tmp(), lhs, rhs)
		e.define(op.Output, e.mil.Cast(name, cond, model.UInt8))
	case op.BinaryKind.IsLogical():
		lhs = e.mil.Cast(e.tmp(), lhs, model.Bool)
		rhs = e.mil.Cast(e.tmp(), rhs, model.Bool)
		cond := e.mil.Logical(opType, e.tmp(), lhs, rhs)
		e.define(op.Output, e.mil.Cast(name, cond, model.UInt8))
	default:
		e.define(op.Output, e.mil.Op(opType, map[string]*model.Value{"x": lhs, "y": rhs},
			name, mustMILDataType(e.desc(op.Output).DataType()), dims(e.desc(op.Output))))
	}
	return nil
}

var unaryOpTypes = map[webnn.UnaryKind]string{
	webnn.UnaryAbs:        "abs",
	webnn.UnaryCeil:       "ceil",
	webnn.UnaryCos:        "cos",
	webnn.UnaryExp:        "exp",
	webnn.UnaryFloor:      "floor",
	webnn.UnaryLog:        "log",
	webnn.UnaryReciprocal: "inverse",
	webnn.UnarySin:        "sin",
	webnn.UnarySqrt:       "sqrt",
	webnn.UnaryTan:        "tan",
	webnn.UnaryErf:        "erf",
	webnn.UnaryIdentity:   "identity",
	webnn.UnarySign:       "sign",
}

// emitElementWiseUnary lowers the unary operations. neg is a multiplication by -1,
// logicalNot goes through booleans.
func emitElementWiseUnary(e *emitter, op *webnn.ElementWiseUnary) error {
	x := e.value(op.Input)
	name := e.target(op.Output)
	switch op.UnaryKind {
	case webnn.UnaryNeg:
		e.define(op.Output, e.mil.Mul(name, x, e.scalar(x, -1)))
		return nil
	case webnn.UnaryLogicalNot:
		cond := e.mil.Cast(e.tmp(), x, model.Bool)
		cond = e.mil.LogicalNot(e.tmp(), cond)
		e.define(op.Output, e.mil.Cast(name, cond, model.UInt8))
		return nil
	case webnn.UnaryCast:
		e.define(op.Output, e.mil.Cast(name, x, mustMILDataType(e.desc(op.Output).DataType())))
		return nil
	}

	opType, found := unaryOpTypes[op.UnaryKind]
	if !found {
		return notSupported("%s is not supported by CoreML", op.UnaryKind)
	}
	inputs := map[string]*model.Value{"x": x}
	if op.UnaryKind == webnn.UnaryReciprocal {
		// inverse computes 1 / (x + epsilon).
		inputs["epsilon"] = e.scalar(x, 0)
	}
	e.define(op.Output, e.mil.Op(opType, inputs, name, x.DType(), x.Shape()))
	return nil
}

// emitActivation lowers an activation with a MIL equivalent. params are scalar inputs of
// the type of the input.
func emitActivation(e *emitter, input, output webnn.OperandID, opType string, params map[string]float32) error {
	x := e.value(input)
	inputs := map[string]*model.Value{"x": x}
	for param, v := range params {
		inputs[param] = e.scalar(x, float64(v))
	}
	e.define(output, e.mil.Op(opType, inputs, e.target(output), x.DType(), x.Shape()))
	return nil
}

func emitGelu(e *emitter, op *webnn.Gelu) error {
	x := e.value(op.Input)
	e.define(op.Output, e.mil.Op("gelu", map[string]*model.Value{
		"x":    x,
		"mode": e.mil.StringConst("EXACT"),
	}, e.target(op.Output), x.DType(), x.Shape()))
	return nil
}

// emitLinear lowers alpha * x + beta.
func emitLinear(e *emitter, op *webnn.Linear) error {
	x := e.value(op.Input)
	scaled := e.mil.Mul(e.tmp(), x, e.scalar(x, float64(op.Alpha)))
	e.define(op.Output, e.mil.Add(e.target(op.Output), scaled, e.scalar(x, float64(op.Beta))))
	return nil
}

// emitHardSwish lowers x * hardSigmoid(x, 1/6, 1/2).
func emitHardSwish(e *emitter, op *webnn.HardSwish) error {
	x := e.value(op.Input)
	gate := e.mil.SigmoidHard(e.tmp(), x, 1.0/6, 0.5)
	e.define(op.Output, e.mil.Mul(e.target(op.Output), x, gate))
	return nil
}

// emitClamp lowers clamp to clip for floats and to maximum and minimum for int32, which
// clip does not accept.
func emitClamp(e *emitter, op *webnn.Clamp) error {
	x := e.value(op.Input)
	name := e.target(op.Output)
	if x.DType() != model.Int32 {
		e.define(op.Output, e.mil.Op("clip", map[string]*model.Value{
			"x":     x,
			"alpha": e.scalar(x, float64(op.MinValue)),
			"beta":  e.scalar(x, float64(op.MaxValue)),
		}, name, x.DType(), x.Shape()))
		return nil
	}
	low := max(float64(op.MinValue), math.MinInt32)
	high := min(float64(op.MaxValue), math.MaxInt32)
	clamped := e.mil.Maximum(e.tmp(), x, e.scalar(x, low))
	e.define(op.Output, e.mil.Minimum(name, clamped, e.scalar(x, high)))
	return nil
}

// emitPrelu lowers max(x, 0) + slope * min(x, 0).
func emitPrelu(e *emitter, op *webnn.Prelu) error {
	x, slope := e.value(op.Input), e.value(op.Slope)
	zero := e.scalar(x, 0)
	positive := e.mil.Maximum(e.tmp(), x, zero)
	negative := e.mil.Minimum(e.tmp(), x, zero)
	negative = e.mil.Mul(e.tmp(), negative, slope)
	e.define(op.Output, e.mil.Add(e.target(op.Output), positive, negative))
	return nil
}

// emitWhere lowers where to select, with the uint8 condition cast to booleans.
func emitWhere(e *emitter, op *webnn.Where) error {
	cond := e.mil.Cast(e.tmp(), e.value(op.Condition), model.Bool)
	e.define(op.Output, e.mil.Select(e.target(op.Output), cond, e.value(op.TrueValue), e.value(op.FalseValue)))
	return nil
}
