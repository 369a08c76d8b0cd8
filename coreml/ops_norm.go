package coreml

import (
	"github.com/gomlx/webnn-coreml/model"
	"github.com/gomlx/webnn-coreml/webnn"
)

// emitBatchNormalization lowers batchNormalization of the channels of an NCHW input. MIL
// takes its parameters as constants.
func emitBatchNormalization(e *emitter, op *webnn.BatchNormalization) error {
	if op.Axis != 1 {
		return notSupported("batchNormalization on axis %d is not supported by CoreML, only axis 1 is", op.Axis)
	}
	x := e.value(op.Input)
	if rank := x.Rank(); rank < 3 || rank > 5 {
		return notSupported("batchNormalization of a %d-D input is not supported by CoreML", rank)
	}
	inputs := map[string]*model.Value{
		"x":       x,
		"epsilon": e.scalar(x, float64(op.Epsilon)),
	}
	params := []struct {
		name string
		id   *webnn.OperandID
	}{{"mean", &op.Mean}, {"variance", &op.Variance}, {"gamma", op.Scale}, {"beta", op.Bias}}
	for _, param := range params {
		if param.id == nil {
			continue
		}
		if !e.isConstant(*param.id) {
			return notSupported("batchNormalization with a non-constant %s is not supported by CoreML", param.name)
		}
		inputs[param.name] = e.value(*param.id)
	}
	e.define(op.Output, e.mil.Op("batch_norm", inputs, e.target(op.Output), x.DType(), x.Shape()))
	return nil
}

// scaleAndShift multiplies v by the optional scale and adds the optional bias, both
// reshaped to shape. The last operation is named name.
func scaleAndShift(e *emitter, v *model.Value, scale, bias *webnn.OperandID, shape []int64, name string) *model.Value {
	if scale != nil {
		scaleName := name
		if bias != nil {
			scaleName = e.tmp()
		}
		s := e.mil.Reshape(e.tmp(), e.value(*scale), shape)
		v = e.mil.Mul(scaleName, v, s)
	}
	if bias != nil {
		b := e.mil.Reshape(e.tmp(), e.value(*bias), shape)
		v = e.mil.Add(name, v, b)
	}
	return v
}

// emitInstanceNormalization lowers instanceNormalization of an NCHW input to
// instance_norm followed by the per channel scale and bias.
func emitInstanceNormalization(e *emitter, op *webnn.InstanceNormalization) error {
	if op.Layout != webnn.LayoutNCHW {
		return notSupported("instanceNormalization with layout %s is not supported by CoreML", op.Layout)
	}
	x := e.value(op.Input)
	name := e.target(op.Output)
	normName := name
	if op.Scale != nil || op.Bias != nil {
		normName = e.tmp()
	}
	v := e.mil.Op("instance_norm", map[string]*model.Value{
		"x":       x,
		"epsilon": e.scalar(x, float64(op.Epsilon)),
	}, normName, x.DType(), x.Shape())
	shape := []int64{1, x.Shape()[1], 1, 1}
	e.define(op.Output, scaleAndShift(e, v, op.Scale, op.Bias, shape, name))
	return nil
}

// emitLayerNormalization lowers layerNormalization to layer_norm followed by the scale and
// bias, reshaped to broadcast along the normalized axes. The axes must be increasing so
// that the parameters keep their layout.
func emitLayerNormalization(e *emitter, op *webnn.LayerNormalization) error {
	if len(op.Axes) == 0 {
		return notSupported("layerNormalization without axes is not supported by CoreML")
	}
	for i := 1; i < len(op.Axes); i++ {
		if op.Axes[i] <= op.Axes[i-1] {
			return notSupported("layerNormalization with axes %v is not supported by CoreML, axes must be increasing", op.Axes)
		}
	}
	x := e.value(op.Input)
	name := e.target(op.Output)
	axes := make([]int64, len(op.Axes))
	shape := make([]int64, x.Rank())
	for i := range shape {
		shape[i] = 1
	}
	for i, axis := range op.Axes {
		axes[i] = int64(axis)
		shape[axis] = x.Shape()[axis]
	}
	normName := name
	if op.Scale != nil || op.Bias != nil {
		normName = e.tmp()
	}
	v := e.mil.Op("layer_norm", map[string]*model.Value{
		"x":       x,
		"axes":    e.mil.Int32sConst(toInt32s(axes)...),
		"epsilon": e.scalar(x, float64(op.Epsilon)),
	}, normName, x.DType(), x.Shape())
	e.define(op.Output, scaleAndShift(e, v, op.Scale, op.Bias, shape, name))
	return nil
}
