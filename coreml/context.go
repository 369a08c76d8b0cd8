package coreml

import "github.com/gomlx/webnn-coreml/webnn"

// MaxTensorRank is the largest rank of the tensors of a CoreML program.
const MaxTensorRank = 5

// ContextProperties returns what the CoreML backend can execute: NCHW layout,
// resampling of the last two axes, tensors of rank up to 5 and the data types of the
// MIL operations each WebNN operation is lowered to.
func ContextProperties() webnn.ContextProperties {
	floats := webnn.FloatDataTypes
	floatsAndInt32 := webnn.NewSupportedDataTypes(webnn.Float32, webnn.Float16, webnn.Int32)
	mil := floatsAndInt32.Union(webnn.NewSupportedDataTypes(webnn.Int8, webnn.Uint8))
	uint8s := webnn.NewSupportedDataTypes(webnn.Uint8)
	return webnn.ContextProperties{
		InputOperandLayout: webnn.LayoutNCHW,
		Resample2DAxes:     webnn.Resample2DAxesChannelsFirst,
		MaxTensorRank:      MaxTensorRank,
		DataTypeLimits: webnn.DataTypeLimits{
			Input:    floatsAndInt32,
			Constant: mil,
			Output:   floatsAndInt32,

			ArgMinMaxInput:       floatsAndInt32,
			ArgMinMaxOutput:      webnn.NewSupportedDataTypes(webnn.Int32),
			BatchNormInput:       floats,
			CastInput:            mil,
			ClampInput:           floatsAndInt32,
			ConcatInputs:         floatsAndInt32,
			Conv2dInput:          floats,
			ConvTranspose2dInput: floats,
			ExpandInput:          floatsAndInt32,
			GatherInput:          floatsAndInt32,
			GatherIndices:        webnn.NewSupportedDataTypes(webnn.Int32),
			GemmInput:            floats,
			GruInput:             floats,
			LstmInput:            floats,
			InstanceNormInput:    floats,
			LayerNormInput:       floats,
			MatmulInput:          floats,
			PadInput:             floats,
			Pool2dInput:          floats,
			PreluInput:           floats,
			Resample2dInput:      floats,
			ReshapeInput:         mil,
			SliceInput:           floatsAndInt32,
			SoftmaxInput:         floats,
			SplitInput:           floatsAndInt32,
			TransposeInput:       mil,
			WhereCondition:       uint8s,
			WhereValue:           floatsAndInt32,

			ArithmeticInput: floatsAndInt32,
			PowInput:        floats,
			CompareInput:    floatsAndInt32,
			LogicalInput:    uint8s,

			AbsInput:        floatsAndInt32,
			NegInput:        floatsAndInt32,
			SignInput:       floatsAndInt32,
			FloatUnaryInput: floats,
			IdentityInput:   mil,

			FloatActivationInput: floats,
			ReluInput:            floats,

			ReduceFloatInput: floats,
			ReduceInput:      floatsAndInt32,
		},
	}
}
