package webnn

// Operation is one node of a graph. It is a closed set: the concrete types are the
// pointer types declared in this file.
type Operation interface {
	// Kind returns the WebNN name of the operation, e.g. "conv2d" or "reduceMean".
	Kind() string

	// InputIDs returns the ids of the operands read by the operation, optional operands
	// that are not set are omitted.
	InputIDs() []OperandID

	// OutputIDs returns the ids of the operands produced by the operation.
	OutputIDs() []OperandID

	isOperation()
}

// Size2d holds a (height, width) pair.
type Size2d struct {
	Height uint32 `json:"height"`
	Width  uint32 `json:"width"`
}

// Padding2d holds the padding of the two spatial dimensions.
type Padding2d struct {
	Beginning Size2d `json:"beginning"`
	Ending    Size2d `json:"ending"`
}

// appendOptional appends the ids that are set.
func appendOptional(ids []OperandID, optional ...*OperandID) []OperandID {
	for _, id := range optional {
		if id != nil {
			ids = append(ids, *id)
		}
	}
	return ids
}

// ArgMinMax returns the indices of the minimum or maximum values along an axis.
type ArgMinMax struct {
	ArgKind         ArgMinMaxKind `json:"-"`
	Input           OperandID     `json:"input"`
	Output          OperandID     `json:"output"`
	Axis            uint32        `json:"axis"`
	KeepDimensions  bool          `json:"keepDimensions"`
	SelectLastIndex bool          `json:"selectLastIndex"`
}

// BatchNormalizationAttributes configure batchNormalization.
type BatchNormalizationAttributes struct {
	Axis    uint32  `json:"axis"`
	Epsilon float32 `json:"epsilon"`
}

// BatchNormalization normalizes the input along all axes but Axis.
type BatchNormalization struct {
	BatchNormalizationAttributes
	Input    OperandID  `json:"input"`
	Mean     OperandID  `json:"mean"`
	Variance OperandID  `json:"variance"`
	Scale    *OperandID `json:"scale,omitempty"`
	Bias     *OperandID `json:"bias,omitempty"`
	Output   OperandID  `json:"output"`
}

// Clamp limits the input to [MinValue, MaxValue].
type Clamp struct {
	Input    OperandID `json:"input"`
	Output   OperandID `json:"output"`
	MinValue float32   `json:"minValue"`
	MaxValue float32   `json:"maxValue"`
}

// Concat joins its inputs along Axis.
type Concat struct {
	Inputs []OperandID `json:"inputs"`
	Output OperandID   `json:"output"`
	Axis   uint32      `json:"axis"`
}

// Conv2dAttributes configure conv2d and convTranspose2d. The filter layout follows the
// context input layout: "oihw" (transposed "iohw") for NCHW and "ohwi" for NHWC.
type Conv2dAttributes struct {
	Padding   Padding2d `json:"padding"`
	Strides   Size2d    `json:"strides"`
	Dilations Size2d    `json:"dilations"`
	Groups    uint32    `json:"groups"`

	// OutputPadding is only used by transposed convolutions.
	OutputPadding Size2d `json:"outputPadding"`
	// OutputSizes, only for transposed convolutions, overrides the computed spatial sizes
	// when set.
	OutputSizes *Size2d `json:"outputSizes,omitempty"`
}

// Conv2d is a direct or transposed 2-D convolution.
type Conv2d struct {
	Conv2dAttributes
	ConvKind Conv2dKind `json:"-"`
	Input    OperandID  `json:"input"`
	Filter   OperandID  `json:"filter"`
	Bias     *OperandID `json:"bias,omitempty"`
	Output   OperandID  `json:"output"`
}

// ElementWiseBinary is one of the element-wise operations with two broadcastable inputs.
type ElementWiseBinary struct {
	BinaryKind BinaryKind `json:"-"`
	LHS        OperandID  `json:"a"`
	RHS        OperandID  `json:"b"`
	Output     OperandID  `json:"output"`
}

// ElementWiseUnary is one of the element-wise operations with a single input. For cast
// the target data type is the data type of the output operand.
type ElementWiseUnary struct {
	UnaryKind UnaryKind `json:"-"`
	Input     OperandID `json:"input"`
	Output    OperandID `json:"output"`
}

// Elu is the exponential linear unit.
type Elu struct {
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
	Alpha  float32   `json:"alpha"`
}

// Expand broadcasts the input to the shape of the output.
type Expand struct {
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
}

// Gather takes the slices of Input at Indices along Axis.
type Gather struct {
	Input   OperandID `json:"input"`
	Indices OperandID `json:"indices"`
	Output  OperandID `json:"output"`
	Axis    uint32    `json:"axis"`
}

// Gelu is the gaussian error linear unit.
type Gelu struct {
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
}

// GemmAttributes configure gemm.
type GemmAttributes struct {
	Alpha      float32 `json:"alpha"`
	Beta       float32 `json:"beta"`
	ATranspose bool    `json:"aTranspose"`
	BTranspose bool    `json:"bTranspose"`
}

// Gemm computes alpha * A * B + beta * C.
type Gemm struct {
	GemmAttributes
	A      OperandID  `json:"a"`
	B      OperandID  `json:"b"`
	C      *OperandID `json:"c,omitempty"`
	Output OperandID  `json:"output"`
}

// GruAttributes configure gru and gruCell.
type GruAttributes struct {
	HiddenSize  uint32                `json:"hiddenSize"`
	ResetAfter  bool                  `json:"resetAfter"`
	Layout      GruWeightLayout       `json:"layout"`
	Activations []RecurrentActivation `json:"activations"`
}

// Gru is a gated recurrent unit network.
type Gru struct {
	GruAttributes
	Steps          uint32             `json:"steps"`
	ReturnSequence bool               `json:"returnSequence"`
	Direction      RecurrentDirection `json:"direction"`

	Input              OperandID   `json:"input"`
	Weight             OperandID   `json:"weight"`
	RecurrentWeight    OperandID   `json:"recurrentWeight"`
	Bias               *OperandID  `json:"bias,omitempty"`
	RecurrentBias      *OperandID  `json:"recurrentBias,omitempty"`
	InitialHiddenState *OperandID  `json:"initialHiddenState,omitempty"`
	Outputs            []OperandID `json:"outputs"`
}

// GruCell is a single step of a gated recurrent unit.
type GruCell struct {
	GruAttributes
	Input           OperandID  `json:"input"`
	Weight          OperandID  `json:"weight"`
	RecurrentWeight OperandID  `json:"recurrentWeight"`
	HiddenState     OperandID  `json:"hiddenState"`
	Bias            *OperandID `json:"bias,omitempty"`
	RecurrentBias   *OperandID `json:"recurrentBias,omitempty"`
	Output          OperandID  `json:"output"`
}

// HardSigmoid computes max(0, min(1, alpha * x + beta)).
type HardSigmoid struct {
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
	Alpha  float32   `json:"alpha"`
	Beta   float32   `json:"beta"`
}

// HardSwish computes x * max(0, min(6, x + 3)) / 6.
type HardSwish struct {
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
}

// InstanceNormalization normalizes each channel of each batch element.
type InstanceNormalization struct {
	Input   OperandID          `json:"input"`
	Scale   *OperandID         `json:"scale,omitempty"`
	Bias    *OperandID         `json:"bias,omitempty"`
	Output  OperandID          `json:"output"`
	Epsilon float32            `json:"epsilon"`
	Layout  InputOperandLayout `json:"layout"`
}

// LayerNormalization normalizes the input along Axes.
type LayerNormalization struct {
	Input   OperandID  `json:"input"`
	Scale   *OperandID `json:"scale,omitempty"`
	Bias    *OperandID `json:"bias,omitempty"`
	Output  OperandID  `json:"output"`
	Axes    []uint32   `json:"axes"`
	Epsilon float32    `json:"epsilon"`
}

// LeakyRelu computes max(0, x) + alpha * min(0, x).
type LeakyRelu struct {
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
	Alpha  float32   `json:"alpha"`
}

// Linear computes alpha * x + beta.
type Linear struct {
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
	Alpha  float32   `json:"alpha"`
	Beta   float32   `json:"beta"`
}

// LstmAttributes configure lstm and lstmCell.
type LstmAttributes struct {
	HiddenSize  uint32                `json:"hiddenSize"`
	Layout      LstmWeightLayout      `json:"layout"`
	Activations []RecurrentActivation `json:"activations"`
}

// Lstm is a long short-term memory network.
type Lstm struct {
	LstmAttributes
	Steps          uint32             `json:"steps"`
	ReturnSequence bool               `json:"returnSequence"`
	Direction      RecurrentDirection `json:"direction"`

	Input              OperandID   `json:"input"`
	Weight             OperandID   `json:"weight"`
	RecurrentWeight    OperandID   `json:"recurrentWeight"`
	Bias               *OperandID  `json:"bias,omitempty"`
	RecurrentBias      *OperandID  `json:"recurrentBias,omitempty"`
	Peephole           *OperandID  `json:"peepholeWeight,omitempty"`
	InitialHiddenState *OperandID  `json:"initialHiddenState,omitempty"`
	InitialCellState   *OperandID  `json:"initialCellState,omitempty"`
	Outputs            []OperandID `json:"outputs"`
}

// LstmCell is a single step of a long short-term memory network.
type LstmCell struct {
	LstmAttributes
	Input           OperandID   `json:"input"`
	Weight          OperandID   `json:"weight"`
	RecurrentWeight OperandID   `json:"recurrentWeight"`
	HiddenState     OperandID   `json:"hiddenState"`
	CellState       OperandID   `json:"cellState"`
	Bias            *OperandID  `json:"bias,omitempty"`
	RecurrentBias   *OperandID  `json:"recurrentBias,omitempty"`
	Peephole        *OperandID  `json:"peepholeWeight,omitempty"`
	Outputs         []OperandID `json:"outputs"`
}

// Matmul is a (batched) matrix multiplication.
type Matmul struct {
	A      OperandID `json:"a"`
	B      OperandID `json:"b"`
	Output OperandID `json:"output"`
}

// Pad extends each dimension of the input.
type Pad struct {
	Input            OperandID   `json:"input"`
	Output           OperandID   `json:"output"`
	BeginningPadding []uint32    `json:"beginningPadding"`
	EndingPadding    []uint32    `json:"endingPadding"`
	Mode             PaddingMode `json:"mode"`
	Value            float32     `json:"value"`
}

// Pool2dAttributes configure the pool2d family. A zero WindowDimensions means global
// pooling over the spatial dimensions.
type Pool2dAttributes struct {
	WindowDimensions Size2d       `json:"windowDimensions"`
	Padding          Padding2d    `json:"padding"`
	Strides          Size2d       `json:"strides"`
	Dilations        Size2d       `json:"dilations"`
	RoundingType     RoundingType `json:"roundingType"`
	// OutputSizes overrides RoundingType when set, it must be either the floor or the ceil
	// of the computed sizes.
	OutputSizes *Size2d `json:"outputSizes,omitempty"`
}

// Pool2d is an average, max or L2 2-D pooling.
type Pool2d struct {
	Pool2dAttributes
	PoolKind PoolKind  `json:"-"`
	Input    OperandID `json:"input"`
	Output   OperandID `json:"output"`
}

// Prelu computes max(0, x) + slope * min(0, x), slope broadcasts to x.
type Prelu struct {
	Input  OperandID `json:"input"`
	Slope  OperandID `json:"slope"`
	Output OperandID `json:"output"`
}

// Reduce is one of the reductions along Axes.
type Reduce struct {
	ReduceKind     ReduceKind `json:"-"`
	Input          OperandID  `json:"input"`
	Output         OperandID  `json:"output"`
	Axes           []uint32   `json:"axes"`
	KeepDimensions bool       `json:"keepDimensions"`
}

// Relu is the rectified linear unit.
type Relu struct {
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
}

// Resample2dAttributes configure resample2d. Exactly one of Scales or Sizes is set, when
// Sizes is set it must match the output shape.
type Resample2dAttributes struct {
	Mode   InterpolationMode `json:"mode"`
	Scales []float32         `json:"scales,omitempty"`
	Sizes  []uint32          `json:"sizes,omitempty"`
	Axes   [2]uint32         `json:"axes"`
}

// Resample2d resizes two adjacent dimensions.
type Resample2d struct {
	Resample2dAttributes
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
}

// Reshape changes the shape of the input to the shape of the output.
type Reshape struct {
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
}

// Sigmoid computes 1 / (1 + exp(-x)).
type Sigmoid struct {
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
}

// SliceAttributes configure slice. Strides may be empty, meaning 1 for every dimension.
type SliceAttributes struct {
	Starts  []uint32 `json:"starts"`
	Sizes   []uint32 `json:"sizes"`
	Strides []uint32 `json:"strides,omitempty"`
}

// Slice extracts a strided window of the input.
type Slice struct {
	SliceAttributes
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
}

// Softmax normalizes the exponentials of the input along Axis.
type Softmax struct {
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
	Axis   uint32    `json:"axis"`
}

// Softplus computes ln(1 + exp(x)).
type Softplus struct {
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
}

// Softsign computes x / (1 + |x|).
type Softsign struct {
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
}

// Split cuts the input along Axis, the size of each piece is given by the shape of the
// corresponding output.
type Split struct {
	Input   OperandID   `json:"input"`
	Outputs []OperandID `json:"outputs"`
	Axis    uint32      `json:"axis"`
}

// Tanh is the hyperbolic tangent.
type Tanh struct {
	Input  OperandID `json:"input"`
	Output OperandID `json:"output"`
}

// Transpose permutes the dimensions of the input.
type Transpose struct {
	Input       OperandID `json:"input"`
	Output      OperandID `json:"output"`
	Permutation []uint32  `json:"permutation"`
}

// Where selects TrueValue where Condition is non-zero and FalseValue otherwise.
type Where struct {
	Condition  OperandID `json:"condition"`
	TrueValue  OperandID `json:"trueValue"`
	FalseValue OperandID `json:"falseValue"`
	Output     OperandID `json:"output"`
}

func (op *ArgMinMax) Kind() string             { return op.ArgKind.String() }
func (op *BatchNormalization) Kind() string    { return "batchNormalization" }
func (op *Clamp) Kind() string                 { return "clamp" }
func (op *Concat) Kind() string                { return "concat" }
func (op *Conv2d) Kind() string                { return op.ConvKind.String() }
func (op *ElementWiseBinary) Kind() string     { return op.BinaryKind.String() }
func (op *ElementWiseUnary) Kind() string      { return op.UnaryKind.String() }
func (op *Elu) Kind() string                   { return "elu" }
func (op *Expand) Kind() string                { return "expand" }
func (op *Gather) Kind() string                { return "gather" }
func (op *Gelu) Kind() string                  { return "gelu" }
func (op *Gemm) Kind() string                  { return "gemm" }
func (op *Gru) Kind() string                   { return "gru" }
func (op *GruCell) Kind() string               { return "gruCell" }
func (op *HardSigmoid) Kind() string           { return "hardSigmoid" }
func (op *HardSwish) Kind() string             { return "hardSwish" }
func (op *InstanceNormalization) Kind() string { return "instanceNormalization" }
func (op *LayerNormalization) Kind() string    { return "layerNormalization" }
func (op *LeakyRelu) Kind() string             { return "leakyRelu" }
func (op *Linear) Kind() string                { return "linear" }
func (op *Lstm) Kind() string                  { return "lstm" }
func (op *LstmCell) Kind() string              { return "lstmCell" }
func (op *Matmul) Kind() string                { return "matmul" }
func (op *Pad) Kind() string                   { return "pad" }
func (op *Pool2d) Kind() string                { return op.PoolKind.String() }
func (op *Prelu) Kind() string                 { return "prelu" }
func (op *Reduce) Kind() string                { return op.ReduceKind.String() }
func (op *Relu) Kind() string                  { return "relu" }
func (op *Resample2d) Kind() string            { return "resample2d" }
func (op *Reshape) Kind() string               { return "reshape" }
func (op *Sigmoid) Kind() string               { return "sigmoid" }
func (op *Slice) Kind() string                 { return "slice" }
func (op *Softmax) Kind() string               { return "softmax" }
func (op *Softplus) Kind() string              { return "softplus" }
func (op *Softsign) Kind() string              { return "softsign" }
func (op *Split) Kind() string                 { return "split" }
func (op *Tanh) Kind() string                  { return "tanh" }
func (op *Transpose) Kind() string             { return "transpose" }
func (op *Where) Kind() string                 { return "where" }

func (op *ArgMinMax) InputIDs() []OperandID { return []OperandID{op.Input} }
func (op *BatchNormalization) InputIDs() []OperandID {
	return appendOptional([]OperandID{op.Input, op.Mean, op.Variance}, op.Scale, op.Bias)
}
func (op *Clamp) InputIDs() []OperandID  { return []OperandID{op.Input} }
func (op *Concat) InputIDs() []OperandID { return op.Inputs }
func (op *Conv2d) InputIDs() []OperandID {
	return appendOptional([]OperandID{op.Input, op.Filter}, op.Bias)
}
func (op *ElementWiseBinary) InputIDs() []OperandID { return []OperandID{op.LHS, op.RHS} }
func (op *ElementWiseUnary) InputIDs() []OperandID  { return []OperandID{op.Input} }
func (op *Elu) InputIDs() []OperandID               { return []OperandID{op.Input} }
func (op *Expand) InputIDs() []OperandID            { return []OperandID{op.Input} }
func (op *Gather) InputIDs() []OperandID            { return []OperandID{op.Input, op.Indices} }
func (op *Gelu) InputIDs() []OperandID              { return []OperandID{op.Input} }
func (op *Gemm) InputIDs() []OperandID              { return appendOptional([]OperandID{op.A, op.B}, op.C) }
func (op *Gru) InputIDs() []OperandID {
	return appendOptional([]OperandID{op.Input, op.Weight, op.RecurrentWeight},
		op.Bias, op.RecurrentBias, op.InitialHiddenState)
}
func (op *GruCell) InputIDs() []OperandID {
	return appendOptional([]OperandID{op.Input, op.Weight, op.RecurrentWeight, op.HiddenState},
		op.Bias, op.RecurrentBias)
}
func (op *HardSigmoid) InputIDs() []OperandID { return []OperandID{op.Input} }
func (op *HardSwish) InputIDs() []OperandID   { return []OperandID{op.Input} }
func (op *InstanceNormalization) InputIDs() []OperandID {
	return appendOptional([]OperandID{op.Input}, op.Scale, op.Bias)
}
func (op *LayerNormalization) InputIDs() []OperandID {
	return appendOptional([]OperandID{op.Input}, op.Scale, op.Bias)
}
func (op *LeakyRelu) InputIDs() []OperandID { return []OperandID{op.Input} }
func (op *Linear) InputIDs() []OperandID    { return []OperandID{op.Input} }
func (op *Lstm) InputIDs() []OperandID {
	return appendOptional([]OperandID{op.Input, op.Weight, op.RecurrentWeight},
		op.Bias, op.RecurrentBias, op.Peephole, op.InitialHiddenState, op.InitialCellState)
}
func (op *LstmCell) InputIDs() []OperandID {
	return appendOptional([]OperandID{op.Input, op.Weight, op.RecurrentWeight, op.HiddenState, op.CellState},
		op.Bias, op.RecurrentBias, op.Peephole)
}
func (op *Matmul) InputIDs() []OperandID     { return []OperandID{op.A, op.B} }
func (op *Pad) InputIDs() []OperandID        { return []OperandID{op.Input} }
func (op *Pool2d) InputIDs() []OperandID     { return []OperandID{op.Input} }
func (op *Prelu) InputIDs() []OperandID      { return []OperandID{op.Input, op.Slope} }
func (op *Reduce) InputIDs() []OperandID     { return []OperandID{op.Input} }
func (op *Relu) InputIDs() []OperandID       { return []OperandID{op.Input} }
func (op *Resample2d) InputIDs() []OperandID { return []OperandID{op.Input} }
func (op *Reshape) InputIDs() []OperandID    { return []OperandID{op.Input} }
func (op *Sigmoid) InputIDs() []OperandID    { return []OperandID{op.Input} }
func (op *Slice) InputIDs() []OperandID      { return []OperandID{op.Input} }
func (op *Softmax) InputIDs() []OperandID    { return []OperandID{op.Input} }
func (op *Softplus) InputIDs() []OperandID   { return []OperandID{op.Input} }
func (op *Softsign) InputIDs() []OperandID   { return []OperandID{op.Input} }
func (op *Split) InputIDs() []OperandID      { return []OperandID{op.Input} }
func (op *Tanh) InputIDs() []OperandID       { return []OperandID{op.Input} }
func (op *Transpose) InputIDs() []OperandID  { return []OperandID{op.Input} }
func (op *Where) InputIDs() []OperandID {
	return []OperandID{op.Condition, op.TrueValue, op.FalseValue}
}

func (op *ArgMinMax) OutputIDs() []OperandID             { return []OperandID{op.Output} }
func (op *BatchNormalization) OutputIDs() []OperandID    { return []OperandID{op.Output} }
func (op *Clamp) OutputIDs() []OperandID                 { return []OperandID{op.Output} }
func (op *Concat) OutputIDs() []OperandID                { return []OperandID{op.Output} }
func (op *Conv2d) OutputIDs() []OperandID                { return []OperandID{op.Output} }
func (op *ElementWiseBinary) OutputIDs() []OperandID     { return []OperandID{op.Output} }
func (op *ElementWiseUnary) OutputIDs() []OperandID      { return []OperandID{op.Output} }
func (op *Elu) OutputIDs() []OperandID                   { return []OperandID{op.Output} }
func (op *Expand) OutputIDs() []OperandID                { return []OperandID{op.Output} }
func (op *Gather) OutputIDs() []OperandID                { return []OperandID{op.Output} }
func (op *Gelu) OutputIDs() []OperandID                  { return []OperandID{op.Output} }
func (op *Gemm) OutputIDs() []OperandID                  { return []OperandID{op.Output} }
func (op *Gru) OutputIDs() []OperandID                   { return op.Outputs }
func (op *GruCell) OutputIDs() []OperandID               { return []OperandID{op.Output} }
func (op *HardSigmoid) OutputIDs() []OperandID           { return []OperandID{op.Output} }
func (op *HardSwish) OutputIDs() []OperandID             { return []OperandID{op.Output} }
func (op *InstanceNormalization) OutputIDs() []OperandID { return []OperandID{op.Output} }
func (op *LayerNormalization) OutputIDs() []OperandID    { return []OperandID{op.Output} }
func (op *LeakyRelu) OutputIDs() []OperandID             { return []OperandID{op.Output} }
func (op *Linear) OutputIDs() []OperandID                { return []OperandID{op.Output} }
func (op *Lstm) OutputIDs() []OperandID                  { return op.Outputs }
func (op *LstmCell) OutputIDs() []OperandID              { return op.Outputs }
func (op *Matmul) OutputIDs() []OperandID                { return []OperandID{op.Output} }
func (op *Pad) OutputIDs() []OperandID                   { return []OperandID{op.Output} }
func (op *Pool2d) OutputIDs() []OperandID                { return []OperandID{op.Output} }
func (op *Prelu) OutputIDs() []OperandID                 { return []OperandID{op.Output} }
func (op *Reduce) OutputIDs() []OperandID                { return []OperandID{op.Output} }
func (op *Relu) OutputIDs() []OperandID                  { return []OperandID{op.Output} }
func (op *Resample2d) OutputIDs() []OperandID            { return []OperandID{op.Output} }
func (op *Reshape) OutputIDs() []OperandID               { return []OperandID{op.Output} }
func (op *Sigmoid) OutputIDs() []OperandID               { return []OperandID{op.Output} }
func (op *Slice) OutputIDs() []OperandID                 { return []OperandID{op.Output} }
func (op *Softmax) OutputIDs() []OperandID               { return []OperandID{op.Output} }
func (op *Softplus) OutputIDs() []OperandID              { return []OperandID{op.Output} }
func (op *Softsign) OutputIDs() []OperandID              { return []OperandID{op.Output} }
func (op *Split) OutputIDs() []OperandID                 { return op.Outputs }
func (op *Tanh) OutputIDs() []OperandID                  { return []OperandID{op.Output} }
func (op *Transpose) OutputIDs() []OperandID             { return []OperandID{op.Output} }
func (op *Where) OutputIDs() []OperandID                 { return []OperandID{op.Output} }

func (*ArgMinMax) isOperation()             {}
func (*BatchNormalization) isOperation()    {}
func (*Clamp) isOperation()                 {}
func (*Concat) isOperation()                {}
func (*Conv2d) isOperation()                {}
func (*ElementWiseBinary) isOperation()     {}
func (*ElementWiseUnary) isOperation()      {}
func (*Elu) isOperation()                   {}
func (*Expand) isOperation()                {}
func (*Gather) isOperation()                {}
func (*Gelu) isOperation()                  {}
func (*Gemm) isOperation()                  {}
func (*Gru) isOperation()                   {}
func (*GruCell) isOperation()               {}
func (*HardSigmoid) isOperation()           {}
func (*HardSwish) isOperation()             {}
func (*InstanceNormalization) isOperation() {}
func (*LayerNormalization) isOperation()    {}
func (*LeakyRelu) isOperation()             {}
func (*Linear) isOperation()                {}
func (*Lstm) isOperation()                  {}
func (*LstmCell) isOperation()              {}
func (*Matmul) isOperation()                {}
func (*Pad) isOperation()                   {}
func (*Pool2d) isOperation()                {}
func (*Prelu) isOperation()                 {}
func (*Reduce) isOperation()                {}
func (*Relu) isOperation()                  {}
func (*Resample2d) isOperation()            {}
func (*Reshape) isOperation()               {}
func (*Sigmoid) isOperation()               {}
func (*Slice) isOperation()                 {}
func (*Softmax) isOperation()               {}
func (*Softplus) isOperation()              {}
func (*Softsign) isOperation()              {}
func (*Split) isOperation()                 {}
func (*Tanh) isOperation()                  {}
func (*Transpose) isOperation()             {}
func (*Where) isOperation()                 {}
