package webnn

// InputOperandLayout is the preferred memory layout of 4-D image-like operands.
type InputOperandLayout int

const (
	// LayoutNCHW is [batch, channels, height, width].
	LayoutNCHW InputOperandLayout = iota
	// LayoutNHWC is [batch, height, width, channels].
	LayoutNHWC
)

func (l InputOperandLayout) String() string { return enumString(layoutNames, l) }

// Resample2DAxes lists the spatial axes pairs a backend can resample.
type Resample2DAxes int

const (
	// Resample2DAxesAny allows {0,1}, {1,2} and {2,3}.
	Resample2DAxesAny Resample2DAxes = iota
	// Resample2DAxesChannelsFirst only allows {2,3}.
	Resample2DAxesChannelsFirst
	// Resample2DAxesChannelsLast only allows {1,2}.
	Resample2DAxesChannelsLast
)

// DataTypeLimits enumerates, per argument position, the data types a backend accepts.
type DataTypeLimits struct {
	Input    SupportedDataTypes
	Constant SupportedDataTypes
	Output   SupportedDataTypes

	ArgMinMaxInput       SupportedDataTypes
	ArgMinMaxOutput      SupportedDataTypes
	BatchNormInput       SupportedDataTypes
	CastInput            SupportedDataTypes
	ClampInput           SupportedDataTypes
	ConcatInputs         SupportedDataTypes
	Conv2dInput          SupportedDataTypes
	ConvTranspose2dInput SupportedDataTypes
	ExpandInput          SupportedDataTypes
	GatherInput          SupportedDataTypes
	GatherIndices        SupportedDataTypes
	GemmInput            SupportedDataTypes
	GruInput             SupportedDataTypes
	LstmInput            SupportedDataTypes
	InstanceNormInput    SupportedDataTypes
	LayerNormInput       SupportedDataTypes
	MatmulInput          SupportedDataTypes
	PadInput             SupportedDataTypes
	Pool2dInput          SupportedDataTypes
	PreluInput           SupportedDataTypes
	Resample2dInput      SupportedDataTypes
	ReshapeInput         SupportedDataTypes
	SliceInput           SupportedDataTypes
	SoftmaxInput         SupportedDataTypes
	SplitInput           SupportedDataTypes
	TransposeInput       SupportedDataTypes
	WhereCondition       SupportedDataTypes
	WhereValue           SupportedDataTypes

	// Element-wise binary operations.
	ArithmeticInput SupportedDataTypes // add, sub, mul, div, max, min
	PowInput        SupportedDataTypes
	CompareInput    SupportedDataTypes // equal, greater, lesser, ...
	LogicalInput    SupportedDataTypes // logicalAnd, logicalOr, logicalXor, logicalNot

	// Element-wise unary operations.
	AbsInput        SupportedDataTypes
	NegInput        SupportedDataTypes
	SignInput       SupportedDataTypes
	FloatUnaryInput SupportedDataTypes // ceil, cos, erf, exp, floor, log, reciprocal, sin, sqrt, tan
	IdentityInput   SupportedDataTypes

	// Activations (elu, gelu, hardSigmoid, hardSwish, leakyRelu, linear, relu, sigmoid,
	// softplus, softsign, tanh).
	FloatActivationInput SupportedDataTypes
	ReluInput            SupportedDataTypes

	// Reductions.
	ReduceFloatInput SupportedDataTypes // mean, L2, logSum, logSumExp
	ReduceInput      SupportedDataTypes // sum, product, L1, sumSquare, max, min
}

// ContextProperties describes what a backend can execute. They are used both to validate
// a graph and, by the backend, to lower it.
type ContextProperties struct {
	InputOperandLayout InputOperandLayout
	Resample2DAxes     Resample2DAxes

	// MaxTensorRank is the largest rank of any operand, 0 means unlimited.
	MaxTensorRank int

	DataTypeLimits DataTypeLimits
}

// DefaultDataTypeLimits returns the limits of the WebNN specification, i.e. what a backend
// supporting everything would accept.
func DefaultDataTypeLimits() DataTypeLimits {
	floats := FloatDataTypes
	floatsAndInt32 := NewSupportedDataTypes(Float32, Float16, Int32)
	numbers := NewSupportedDataTypes(Float32, Float16, Int32, Uint32, Int64, Uint64)
	return DataTypeLimits{
		Input:    AllDataTypes,
		Constant: AllDataTypes,
		Output:   AllDataTypes,

		ArgMinMaxInput:       AllDataTypes,
		ArgMinMaxOutput:      NewSupportedDataTypes(Int32, Int64),
		BatchNormInput:       floats,
		CastInput:            AllDataTypes,
		ClampInput:           AllDataTypes,
		ConcatInputs:         AllDataTypes,
		Conv2dInput:          floats,
		ConvTranspose2dInput: floats,
		ExpandInput:          AllDataTypes,
		GatherInput:          AllDataTypes,
		GatherIndices:        NewSupportedDataTypes(Int32, Uint32, Int64),
		GemmInput:            floats,
		GruInput:             floats,
		LstmInput:            floats,
		InstanceNormInput:    floats,
		LayerNormInput:       floats,
		MatmulInput:          floats,
		PadInput:             AllDataTypes,
		Pool2dInput:          floats,
		PreluInput:           NewSupportedDataTypes(Float32, Float16, Int32, Int64, Int8),
		Resample2dInput:      floats,
		ReshapeInput:         AllDataTypes,
		SliceInput:           AllDataTypes,
		SoftmaxInput:         floats,
		SplitInput:           AllDataTypes,
		TransposeInput:       AllDataTypes,
		WhereCondition:       NewSupportedDataTypes(Uint8),
		WhereValue:           AllDataTypes,

		ArithmeticInput: numbers,
		PowInput:        numbers,
		CompareInput:    numbers,
		LogicalInput:    NewSupportedDataTypes(Uint8),

		AbsInput:        FloatAndSignedIntDataTypes,
		NegInput:        FloatAndSignedIntDataTypes,
		SignInput:       FloatAndSignedIntDataTypes,
		FloatUnaryInput: floats,
		IdentityInput:   AllDataTypes,

		FloatActivationInput: floats,
		ReluInput:            NewSupportedDataTypes(Float32, Float16, Int32, Int64, Int8),

		ReduceFloatInput: floats,
		ReduceInput:      floatsAndInt32.Union(NewSupportedDataTypes(Uint32, Int64, Uint64)),
	}
}
