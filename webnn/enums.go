package webnn

import (
	"fmt"

	"github.com/pkg/errors"
)

// enumString returns names[v] or a generic rendering for out of range values.
func enumString[T ~int](names []string, v T) string {
	if int(v) >= 0 && int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%T(%d)", v, int(v))
}

// parseEnum sets *v to the index of text in names.
func parseEnum[T ~int](names []string, text []byte, v *T) error {
	for i, name := range names {
		if name == string(text) {
			*v = T(i)
			return nil
		}
	}
	return errors.Errorf("unknown %T %q, valid values are %q", *v, text, names)
}

var layoutNames = []string{"nchw", "nhwc"}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *InputOperandLayout) UnmarshalText(text []byte) error {
	return parseEnum(layoutNames, text, l)
}

// Conv2dKind selects between direct and transposed convolutions.
type Conv2dKind int

const (
	Conv2dDirect Conv2dKind = iota
	Conv2dTransposed
)

var conv2dKindNames = []string{"conv2d", "convTranspose2d"}

func (k Conv2dKind) String() string { return enumString(conv2dKindNames, k) }

// PaddingMode of the pad operation.
type PaddingMode int

const (
	PaddingConstant PaddingMode = iota
	PaddingEdge
	PaddingReflection
	PaddingSymmetric
)

var paddingModeNames = []string{"constant", "edge", "reflection", "symmetric"}

func (m PaddingMode) String() string { return enumString(paddingModeNames, m) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *PaddingMode) UnmarshalText(text []byte) error {
	return parseEnum(paddingModeNames, text, m)
}

// PoolKind of a pool2d operation.
type PoolKind int

const (
	PoolAverage PoolKind = iota
	PoolMax
	PoolL2
)

var poolKindNames = []string{"averagePool2d", "maxPool2d", "l2Pool2d"}

func (k PoolKind) String() string { return enumString(poolKindNames, k) }

// RoundingType used to compute pooling output sizes when they are not given.
type RoundingType int

const (
	RoundingFloor RoundingType = iota
	RoundingCeil
)

var roundingTypeNames = []string{"floor", "ceil"}

func (r RoundingType) String() string { return enumString(roundingTypeNames, r) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RoundingType) UnmarshalText(text []byte) error {
	return parseEnum(roundingTypeNames, text, r)
}

// ReduceKind of a reduction.
type ReduceKind int

const (
	ReduceL1 ReduceKind = iota
	ReduceL2
	ReduceLogSum
	ReduceLogSumExp
	ReduceMax
	ReduceMean
	ReduceMin
	ReduceProduct
	ReduceSum
	ReduceSumSquare
)

var reduceKindNames = []string{
	"reduceL1", "reduceL2", "reduceLogSum", "reduceLogSumExp", "reduceMax",
	"reduceMean", "reduceMin", "reduceProduct", "reduceSum", "reduceSumSquare",
}

func (k ReduceKind) String() string { return enumString(reduceKindNames, k) }

// BinaryKind of an element-wise binary operation.
type BinaryKind int

const (
	BinaryAdd BinaryKind = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMax
	BinaryMin
	BinaryPow
	BinaryEqual
	BinaryNotEqual
	BinaryGreater
	BinaryGreaterOrEqual
	BinaryLesser
	BinaryLesserOrEqual
	BinaryLogicalAnd
	BinaryLogicalOr
	BinaryLogicalXor
)

var binaryKindNames = []string{
	"add", "sub", "mul", "div", "max", "min", "pow",
	"equal", "notEqual", "greater", "greaterOrEqual", "lesser", "lesserOrEqual",
	"logicalAnd", "logicalOr", "logicalXor",
}

func (k BinaryKind) String() string { return enumString(binaryKindNames, k) }

// IsComparison returns whether the operation produces a uint8 boolean tensor out of two
// numeric tensors.
func (k BinaryKind) IsComparison() bool {
	return k >= BinaryEqual && k <= BinaryLesserOrEqual
}

// IsLogical returns whether the operation works on uint8 boolean tensors.
func (k BinaryKind) IsLogical() bool {
	return k >= BinaryLogicalAnd && k <= BinaryLogicalXor
}

// UnaryKind of an element-wise unary operation.
type UnaryKind int

const (
	UnaryAbs UnaryKind = iota
	UnaryCeil
	UnaryCos
	UnaryExp
	UnaryFloor
	UnaryLog
	UnaryNeg
	UnaryReciprocal
	UnarySin
	UnarySqrt
	UnaryTan
	UnaryErf
	UnaryIdentity
	UnaryLogicalNot
	UnarySign
	UnaryCast
)

var unaryKindNames = []string{
	"abs", "ceil", "cos", "exp", "floor", "log", "neg", "reciprocal", "sin", "sqrt", "tan",
	"erf", "identity", "logicalNot", "sign", "cast",
}

func (k UnaryKind) String() string { return enumString(unaryKindNames, k) }

// ArgMinMaxKind selects between argMin and argMax.
type ArgMinMaxKind int

const (
	ArgMin ArgMinMaxKind = iota
	ArgMax
)

var argMinMaxKindNames = []string{"argMin", "argMax"}

func (k ArgMinMaxKind) String() string { return enumString(argMinMaxKindNames, k) }

// InterpolationMode of resample2d.
type InterpolationMode int

const (
	InterpolationNearestNeighbor InterpolationMode = iota
	InterpolationLinear
)

var interpolationModeNames = []string{"nearest-neighbor", "linear"}

func (m InterpolationMode) String() string { return enumString(interpolationModeNames, m) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *InterpolationMode) UnmarshalText(text []byte) error {
	return parseEnum(interpolationModeNames, text, m)
}

// RecurrentDirection of gru and lstm.
type RecurrentDirection int

const (
	DirectionForward RecurrentDirection = iota
	DirectionBackward
	DirectionBoth
)

var recurrentDirectionNames = []string{"forward", "backward", "both"}

func (d RecurrentDirection) String() string { return enumString(recurrentDirectionNames, d) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *RecurrentDirection) UnmarshalText(text []byte) error {
	return parseEnum(recurrentDirectionNames, text, d)
}

// NumDirections returns 2 for bidirectional networks and 1 otherwise.
func (d RecurrentDirection) NumDirections() uint32 {
	if d == DirectionBoth {
		return 2
	}
	return 1
}

// RecurrentActivation is an activation function of a recurrent network gate.
type RecurrentActivation int

const (
	ActivationRelu RecurrentActivation = iota
	ActivationSigmoid
	ActivationTanh
)

var recurrentActivationNames = []string{"relu", "sigmoid", "tanh"}

func (a RecurrentActivation) String() string { return enumString(recurrentActivationNames, a) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *RecurrentActivation) UnmarshalText(text []byte) error {
	return parseEnum(recurrentActivationNames, text, a)
}

// GruWeightLayout is the order of the gates in gru weights.
type GruWeightLayout int

const (
	GruLayoutZrn GruWeightLayout = iota
	GruLayoutRzn
)

var gruWeightLayoutNames = []string{"zrn", "rzn"}

func (l GruWeightLayout) String() string { return enumString(gruWeightLayoutNames, l) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *GruWeightLayout) UnmarshalText(text []byte) error {
	return parseEnum(gruWeightLayoutNames, text, l)
}

// LstmWeightLayout is the order of the gates in lstm weights.
type LstmWeightLayout int

const (
	LstmLayoutIofg LstmWeightLayout = iota
	LstmLayoutIfgo
)

var lstmWeightLayoutNames = []string{"iofg", "ifgo"}

func (l LstmWeightLayout) String() string { return enumString(lstmWeightLayoutNames, l) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *LstmWeightLayout) UnmarshalText(text []byte) error {
	return parseEnum(lstmWeightLayoutNames, text, l)
}
