package validation

import (
	"math"
	"slices"

	"github.com/gomlx/webnn-coreml/webnn"
	"github.com/pkg/errors"
)

// ValidateConcat validates the concatenation of inputs along axis: all inputs share the
// data type, the rank and every dimension but axis.
func ValidateConcat(props webnn.ContextProperties, inputs []webnn.OperandDescriptor, axis uint32) (output webnn.OperandDescriptor, err error) {
	if len(inputs) == 0 {
		err = errors.New("concat requires at least one input")
		return
	}
	first := inputs[0]
	if err = checkDataType("concat inputs", first.DataType(), props.DataTypeLimits.ConcatInputs); err != nil {
		return
	}
	if int(axis) >= first.Rank() {
		err = errors.Errorf("concat axis (%d) must be in the range [0, %d)", axis, first.Rank())
		return
	}
	shape := slices.Clone(first.Shape())
	for i, input := range inputs[1:] {
		if err = checkSameDataType("concat inputs", first, input); err != nil {
			return
		}
		if input.Rank() != first.Rank() {
			err = errors.Errorf("concat inputs must have the same rank, input #%d has shape %v and input #0 has %v",
				i+1, input.Shape(), first.Shape())
			return
		}
		for d, dim := range input.Shape() {
			if d == int(axis) {
				continue
			}
			if dim != shape[d] {
				err = errors.Errorf("concat inputs must have the same dimensions except on axis %d, input #%d has shape %v and input #0 has %v",
					axis, i+1, input.Shape(), first.Shape())
				return
			}
		}
		var ok bool
		if shape[axis], ok = checkedAdd(shape[axis], input.Shape()[axis]); !ok {
			err = errors.Errorf("concat output dimension %d is too large", axis)
			return
		}
	}
	return newDescriptor("concat", first.DataType(), shape)
}

// ValidateGather validates gather: the output shape is the input shape with the axis
// dimension replaced by the shape of the indices.
func ValidateGather(props webnn.ContextProperties, input, indices webnn.OperandDescriptor, axis uint32) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("gather input", input.DataType(), props.DataTypeLimits.GatherInput); err != nil {
		return
	}
	if err = checkDataType("gather indices", indices.DataType(), props.DataTypeLimits.GatherIndices); err != nil {
		return
	}
	if int(axis) >= input.Rank() {
		err = errors.Errorf("gather axis (%d) must be in the range [0, %d)", axis, input.Rank())
		return
	}
	inShape := input.Shape()
	shape := make([]uint32, 0, input.Rank()-1+indices.Rank())
	shape = append(shape, inShape[:axis]...)
	shape = append(shape, indices.Shape()...)
	shape = append(shape, inShape[axis+1:]...)
	return newDescriptor("gather", input.DataType(), shape)
}

// ValidatePad validates pad: every dimension grows by its beginning and ending padding.
func ValidatePad(props webnn.ContextProperties, input webnn.OperandDescriptor, beginningPadding, endingPadding []uint32) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("pad input", input.DataType(), props.DataTypeLimits.PadInput); err != nil {
		return
	}
	if len(beginningPadding) != input.Rank() || len(endingPadding) != input.Rank() {
		err = errors.Errorf("pad beginning (%v) and ending (%v) paddings must have one value per input dimension (%d)",
			beginningPadding, endingPadding, input.Rank())
		return
	}
	shape := make([]uint32, input.Rank())
	for i, dim := range input.Shape() {
		var ok bool
		if shape[i], ok = checkedAdd(dim, beginningPadding[i], endingPadding[i]); !ok {
			err = errors.Errorf("pad output dimension %d is too large", i)
			return
		}
	}
	return newDescriptor("pad", input.DataType(), shape)
}

// ValidateSlice validates slice. Empty strides mean 1 for every dimension.
func ValidateSlice(props webnn.ContextProperties, input webnn.OperandDescriptor, attrs webnn.SliceAttributes) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("slice input", input.DataType(), props.DataTypeLimits.SliceInput); err != nil {
		return
	}
	rank := input.Rank()
	if len(attrs.Starts) != rank || len(attrs.Sizes) != rank {
		err = errors.Errorf("slice starts (%v) and sizes (%v) must have one value per input dimension (%d)",
			attrs.Starts, attrs.Sizes, rank)
		return
	}
	if len(attrs.Strides) != 0 && len(attrs.Strides) != rank {
		err = errors.Errorf("slice strides (%v) must have one value per input dimension (%d)", attrs.Strides, rank)
		return
	}
	shape := make([]uint32, rank)
	for i, dim := range input.Shape() {
		start, size, stride := attrs.Starts[i], attrs.Sizes[i], uint32(1)
		if len(attrs.Strides) > 0 {
			stride = attrs.Strides[i]
		}
		if size == 0 || stride == 0 {
			err = errors.Errorf("slice size and stride of dimension %d must be greater than 0", i)
			return
		}
		end, ok := checkedAdd(start, size)
		if !ok || end > dim {
			err = errors.Errorf("slice of dimension %d (start %d, size %d) is out of the bounds of %d", i, start, size, dim)
			return
		}
		shape[i] = 1 + (size-1)/stride
	}
	return newDescriptor("slice", input.DataType(), shape)
}

// ValidateSplit validates split of the input along axis into pieces of the given sizes.
func ValidateSplit(props webnn.ContextProperties, input webnn.OperandDescriptor, axis uint32, splits []uint32) (outputs []webnn.OperandDescriptor, err error) {
	if err = checkDataType("split input", input.DataType(), props.DataTypeLimits.SplitInput); err != nil {
		return
	}
	if int(axis) >= input.Rank() {
		err = errors.Errorf("split axis (%d) must be in the range [0, %d)", axis, input.Rank())
		return
	}
	if len(splits) == 0 {
		err = errors.New("split requires at least one output")
		return
	}
	total, ok := checkedAdd(splits...)
	if !ok || total != input.Shape()[axis] {
		err = errors.Errorf("split sizes %v must sum to the dimension %d of the input (%d)", splits, axis, input.Shape()[axis])
		return
	}
	outputs = make([]webnn.OperandDescriptor, len(splits))
	for i, size := range splits {
		shape := slices.Clone(input.Shape())
		shape[axis] = size
		if outputs[i], err = newDescriptor("split", input.DataType(), shape); err != nil {
			return nil, err
		}
	}
	return outputs, nil
}

// ValidateTranspose validates transpose, permutation must be a permutation of the axes.
func ValidateTranspose(props webnn.ContextProperties, input webnn.OperandDescriptor, permutation []uint32) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("transpose input", input.DataType(), props.DataTypeLimits.TransposeInput); err != nil {
		return
	}
	if len(permutation) != input.Rank() {
		err = errors.Errorf("transpose permutation %v must have one value per input dimension (%d)", permutation, input.Rank())
		return
	}
	if err = checkAxes(permutation, input.Rank()); err != nil {
		err = errors.WithMessage(err, "transpose permutation")
		return
	}
	shape := make([]uint32, len(permutation))
	for i, axis := range permutation {
		shape[i] = input.Shape()[axis]
	}
	return newDescriptor("transpose", input.DataType(), shape)
}

// ValidateReshape validates reshape to newShape, the number of elements must not change.
func ValidateReshape(props webnn.ContextProperties, input webnn.OperandDescriptor, newShape []uint32) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("reshape input", input.DataType(), props.DataTypeLimits.ReshapeInput); err != nil {
		return
	}
	if output, err = newDescriptor("reshape", input.DataType(), newShape); err != nil {
		return
	}
	if output.NumberOfElements() != input.NumberOfElements() {
		err = errors.Errorf("reshape of %v to %v changes the number of elements", input.Shape(), newShape)
		return
	}
	return output, nil
}

// ValidateExpand validates expand of the input to newShape, the input must be
// broadcastable to it.
func ValidateExpand(props webnn.ContextProperties, input webnn.OperandDescriptor, newShape []uint32) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("expand input", input.DataType(), props.DataTypeLimits.ExpandInput); err != nil {
		return
	}
	if _, err = BroadcastShapes(input.Shape(), newShape, false); err != nil {
		err = errors.WithMessage(err, "expand")
		return
	}
	return newDescriptor("expand", input.DataType(), newShape)
}

// validResample2dAxes returns whether the backend can resample the axes pair.
func validResample2dAxes(allowed webnn.Resample2DAxes, axes [2]uint32) bool {
	switch allowed {
	case webnn.Resample2DAxesChannelsFirst:
		return axes == [2]uint32{2, 3}
	case webnn.Resample2DAxesChannelsLast:
		return axes == [2]uint32{1, 2}
	}
	return axes == [2]uint32{0, 1} || axes == [2]uint32{1, 2} || axes == [2]uint32{2, 3}
}

// ValidateResample2d validates resample2d of a 4-D input on two adjacent axes. Sizes take
// precedence over scales, scaled sizes are floor(inputSize * scale).
func ValidateResample2d(props webnn.ContextProperties, input webnn.OperandDescriptor, attrs webnn.Resample2dAttributes) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("resample2d input", input.DataType(), props.DataTypeLimits.Resample2dInput); err != nil {
		return
	}
	if err = checkRank("resample2d input", input, 4); err != nil {
		return
	}
	if !validResample2dAxes(props.Resample2DAxes, attrs.Axes) {
		err = errors.Errorf("resample2d axes %v are not supported", attrs.Axes)
		return
	}
	shape := slices.Clone(input.Shape())
	switch {
	case len(attrs.Sizes) > 0:
		if len(attrs.Sizes) != 2 {
			err = errors.Errorf("resample2d sizes %v must have 2 values", attrs.Sizes)
			return
		}
		for i, axis := range attrs.Axes {
			if attrs.Sizes[i] == 0 {
				err = errors.Errorf("resample2d sizes %v must be greater than 0", attrs.Sizes)
				return
			}
			shape[axis] = attrs.Sizes[i]
		}
	case len(attrs.Scales) == 2:
		for i, axis := range attrs.Axes {
			scale := float64(attrs.Scales[i])
			if !(scale > 0) || math.IsInf(scale, 0) {
				err = errors.Errorf("resample2d scales %v must be greater than 0", attrs.Scales)
				return
			}
			size := math.Floor(float64(shape[axis]) * scale)
			if size < 1 || size > math.MaxUint32 {
				err = errors.Errorf("resample2d scaled size of axis %d (%g) must be in the range [1, %d]", axis, size, uint32(math.MaxUint32))
				return
			}
			shape[axis] = uint32(size)
		}
	default:
		err = errors.Errorf("resample2d requires 2 sizes or 2 scales, got sizes %v and scales %v", attrs.Sizes, attrs.Scales)
		return
	}
	return newDescriptor("resample2d", input.DataType(), shape)
}
