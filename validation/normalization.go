package validation

import (
	"github.com/gomlx/webnn-coreml/webnn"
	"github.com/pkg/errors"
)

func checkOptionalParameter(what string, input webnn.OperandDescriptor, param *webnn.OperandDescriptor, shape ...uint32) error {
	if param == nil {
		return nil
	}
	if err := checkSameDataType(what, input, *param); err != nil {
		return err
	}
	return checkShape(what, *param, shape...)
}

// ValidateBatchNormalization validates batchNormalization: mean, variance, scale and
// bias are 1-D tensors of the size of the input dimension axis.
func ValidateBatchNormalization(props webnn.ContextProperties, input, mean, variance webnn.OperandDescriptor,
	scale, bias *webnn.OperandDescriptor, attrs webnn.BatchNormalizationAttributes) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("batchNormalization input", input.DataType(), props.DataTypeLimits.BatchNormInput); err != nil {
		return
	}
	if int(attrs.Axis) >= input.Rank() {
		err = errors.Errorf("batchNormalization axis (%d) must be in the range [0, %d)", attrs.Axis, input.Rank())
		return
	}
	size := input.Shape()[attrs.Axis]
	for _, param := range []struct {
		name string
		desc *webnn.OperandDescriptor
	}{{"mean", &mean}, {"variance", &variance}, {"scale", scale}, {"bias", bias}} {
		if err = checkOptionalParameter("batchNormalization "+param.name, input, param.desc, size); err != nil {
			return
		}
	}
	return input, nil
}

// ValidateInstanceNormalization validates instanceNormalization of a 4-D input, scale
// and bias are 1-D tensors of the size of the channels.
func ValidateInstanceNormalization(props webnn.ContextProperties, input webnn.OperandDescriptor, scale, bias *webnn.OperandDescriptor,
	layout webnn.InputOperandLayout) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("instanceNormalization input", input.DataType(), props.DataTypeLimits.InstanceNormInput); err != nil {
		return
	}
	if err = checkRank("instanceNormalization input", input, 4); err != nil {
		return
	}
	c, _, _ := spatialAxes(layout)
	channels := input.Shape()[c]
	if err = checkOptionalParameter("instanceNormalization scale", input, scale, channels); err != nil {
		return
	}
	if err = checkOptionalParameter("instanceNormalization bias", input, bias, channels); err != nil {
		return
	}
	return input, nil
}

// ValidateLayerNormalization validates layerNormalization over axes, scale and bias have
// the dimensions of the input at axes, in the order of axes.
func ValidateLayerNormalization(props webnn.ContextProperties, input webnn.OperandDescriptor, scale, bias *webnn.OperandDescriptor,
	axes []uint32) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("layerNormalization input", input.DataType(), props.DataTypeLimits.LayerNormInput); err != nil {
		return
	}
	if err = checkAxes(axes, input.Rank()); err != nil {
		err = errors.WithMessage(err, "layerNormalization axes")
		return
	}
	shape := make([]uint32, len(axes))
	for i, axis := range axes {
		shape[i] = input.Shape()[axis]
	}
	if err = checkOptionalParameter("layerNormalization scale", input, scale, shape...); err != nil {
		return
	}
	if err = checkOptionalParameter("layerNormalization bias", input, bias, shape...); err != nil {
		return
	}
	return input, nil
}
