package coreml

import (
	"github.com/gomlx/webnn-coreml/model"
	"github.com/gomlx/webnn-coreml/validation"
	"github.com/gomlx/webnn-coreml/webnn"
)

// spatialPadding returns the MIL pad of a 2-D operation: [top, bottom, left, right].
func spatialPadding(p webnn.Padding2d) []int32 {
	return []int32{
		int32(p.Beginning.Height), int32(p.Ending.Height),
		int32(p.Beginning.Width), int32(p.Ending.Width),
	}
}

func size2d(s webnn.Size2d) []int32 {
	return []int32{int32(s.Height), int32(s.Width)}
}

// emitConv2d lowers conv2d and convTranspose2d. The filter layouts (oihw and iohw) are
// the ones MIL expects. MIL requires a constant bias, others are added after the
// convolution.
func emitConv2d(e *emitter, op *webnn.Conv2d) error {
	x, filter := e.value(op.Input), e.value(op.Filter)
	outDesc := e.desc(op.Output)
	outShape := dims(outDesc)
	inputs := map[string]*model.Value{
		"x":         x,
		"weight":    filter,
		"strides":   e.mil.Int32sConst(size2d(op.Strides)...),
		"dilations": e.mil.Int32sConst(size2d(op.Dilations)...),
		"pad_type":  e.mil.StringConst("custom"),
		"pad":       e.mil.Int32sConst(spatialPadding(op.Padding)...),
		"groups":    e.mil.Int32Const(int32(op.Groups)),
	}
	opType := "conv"
	if op.ConvKind == webnn.Conv2dTransposed {
		opType = "conv_transpose"
		inputs["output_shape"] = e.mil.Int32sConst(toInt32s(outShape)...)
	}

	addBias := op.Bias != nil && !e.isConstant(*op.Bias)
	if op.Bias != nil && !addBias {
		inputs["bias"] = e.value(*op.Bias)
	}
	name := e.target(op.Output)
	convName := name
	if addBias {
		convName = e.tmp()
	}
	conv := e.mil.Op(opType, inputs, convName, x.DType(), outShape)
	if !addBias {
		e.define(op.Output, conv)
		return nil
	}
	bias := e.mil.Reshape(e.tmp(), e.value(*op.Bias), []int64{1, outShape[1], 1, 1})
	e.define(op.Output, e.mil.Add(name, conv, bias))
	return nil
}

var poolOpTypes = map[webnn.PoolKind]string{
	webnn.PoolAverage: "avg_pool",
	webnn.PoolMax:     "max_pool",
	webnn.PoolL2:      "l2_pool",
}

var globalPoolOpTypes = map[webnn.PoolKind]string{
	webnn.PoolAverage: "reduce_mean",
	webnn.PoolMax:     "reduce_max",
	webnn.PoolL2:      "reduce_l2_norm",
}

// emitPool2d lowers the pooling operations. Pooling over the whole spatial dimensions
// becomes a reduction. MIL pooling has no dilations.
func emitPool2d(e *emitter, op *webnn.Pool2d) error {
	if op.Dilations.Height > 1 || op.Dilations.Width > 1 {
		return notSupported("%s with dilations %dx%d is not supported by CoreML", op.PoolKind, op.Dilations.Height, op.Dilations.Width)
	}
	x := e.value(op.Input)
	inShape := x.Shape()
	outShape := dims(e.desc(op.Output))
	window := op.WindowDimensions
	if window.Height == 0 && window.Width == 0 {
		window = webnn.Size2d{Height: uint32(inShape[2]), Width: uint32(inShape[3])}
	}
	strides := op.Strides
	name := e.target(op.Output)

	noPadding := op.Padding == webnn.Padding2d{}
	if noPadding && int64(window.Height) == inShape[2] && int64(window.Width) == inShape[3] {
		e.define(op.Output, e.mil.Reduce(globalPoolOpTypes[op.PoolKind], name, x, []int64{2, 3}, true))
		return nil
	}

	// The output sizes were validated to be either the floor or the ceil of the computed
	// sizes.
	floorHeight, err := validation.CalculateConv2dOutputSize(uint32(inShape[2]), window.Height,
		op.Padding.Beginning.Height, op.Padding.Ending.Height, strides.Height, 1)
	if err != nil {
		return notSupported("%s: %v", op.PoolKind, err)
	}
	floorWidth, err := validation.CalculateConv2dOutputSize(uint32(inShape[3]), window.Width,
		op.Padding.Beginning.Width, op.Padding.Ending.Width, strides.Width, 1)
	if err != nil {
		return notSupported("%s: %v", op.PoolKind, err)
	}
	ceilMode := outShape[2] != int64(floorHeight) || outShape[3] != int64(floorWidth)

	inputs := map[string]*model.Value{
		"x":            x,
		"kernel_sizes": e.mil.Int32sConst(size2d(window)...),
		"strides":      e.mil.Int32sConst(size2d(strides)...),
		"pad_type":     e.mil.StringConst("custom"),
		"pad":          e.mil.Int32sConst(spatialPadding(op.Padding)...),
	}
	switch op.PoolKind {
	case webnn.PoolAverage:
		inputs["exclude_padding_from_average"] = e.mil.BoolConst(true)
		inputs["ceil_mode"] = e.mil.BoolConst(ceilMode)
	case webnn.PoolMax:
		inputs["ceil_mode"] = e.mil.BoolConst(ceilMode)
	case webnn.PoolL2:
		if ceilMode {
			return notSupported("l2Pool2d with ceil rounding is not supported by CoreML")
		}
	}
	e.define(op.Output, e.mil.Op(poolOpTypes[op.PoolKind], inputs, name, x.DType(), outShape))
	return nil
}

func toInt32s(values []int64) []int32 {
	result := make([]int32, len(values))
	for i, v := range values {
		result[i] = int32(v)
	}
	return result
}
