package validation

import (
	"math"

	"github.com/gomlx/webnn-coreml/webnn"
	"github.com/pkg/errors"
)

// effectiveFilterSize returns (filterSize-1)*dilation + 1.
func effectiveFilterSize(filterSize, dilation uint32) (uint32, error) {
	if filterSize == 0 || dilation == 0 {
		return 0, errors.Errorf("filter size (%d) and dilation (%d) must be greater than 0", filterSize, dilation)
	}
	size, ok := checkedMul(filterSize-1, dilation)
	if ok {
		size, ok = checkedAdd(size, 1)
	}
	if !ok {
		return 0, errors.Errorf("effective filter size of filter %d with dilation %d is too large", filterSize, dilation)
	}
	return size, nil
}

// CalculateConv2dOutputSize returns the spatial size of a direct convolution output:
// (inputSize + beginningPadding + endingPadding - ((filterSize-1)*dilation + 1)) / stride + 1.
func CalculateConv2dOutputSize(inputSize, filterSize, beginningPadding, endingPadding, stride, dilation uint32) (uint32, error) {
	if stride == 0 {
		return 0, errors.New("stride must be greater than 0")
	}
	effective, err := effectiveFilterSize(filterSize, dilation)
	if err != nil {
		return 0, err
	}
	padded, ok := checkedAdd(inputSize, beginningPadding, endingPadding)
	if !ok {
		return 0, errors.Errorf("padded input size %d+%d+%d is too large", inputSize, beginningPadding, endingPadding)
	}
	if padded < effective {
		return 0, errors.Errorf("padded input size (%d) is smaller than the effective filter size (%d)", padded, effective)
	}
	return (padded-effective)/stride + 1, nil
}

// CalculateConvTranspose2dOutputSize returns the spatial size of a transposed convolution
// output: (inputSize-1)*stride + ((filterSize-1)*dilation + 1) - beginningPadding - endingPadding + outputPadding.
func CalculateConvTranspose2dOutputSize(inputSize, filterSize, beginningPadding, endingPadding, stride, dilation, outputPadding uint32) (uint32, error) {
	if stride == 0 || inputSize == 0 {
		return 0, errors.Errorf("input size (%d) and stride (%d) must be greater than 0", inputSize, stride)
	}
	effective, err := effectiveFilterSize(filterSize, dilation)
	if err != nil {
		return 0, err
	}
	size, ok := checkedMul(inputSize-1, stride)
	if ok {
		size, ok = checkedAdd(size, effective, outputPadding)
	}
	if !ok {
		return 0, errors.New("transposed convolution output size is too large")
	}
	padding := uint64(beginningPadding) + uint64(endingPadding)
	if uint64(size) <= padding {
		return 0, errors.Errorf("transposed convolution output size (%d) minus the padding (%d) must be greater than 0", size, padding)
	}
	return size - uint32(padding), nil
}

// spatialAxes returns the (channels, height, width) axes of a 4-D input in the layout.
func spatialAxes(layout webnn.InputOperandLayout) (channels, height, width int) {
	if layout == webnn.LayoutNHWC {
		return 3, 1, 2
	}
	return 1, 2, 3
}

// outputShape4D builds a 4-D shape in the layout.
func outputShape4D(layout webnn.InputOperandLayout, batch, channels, height, width uint32) []uint32 {
	if layout == webnn.LayoutNHWC {
		return []uint32{batch, height, width, channels}
	}
	return []uint32{batch, channels, height, width}
}

func checkConvAttributes(attrs webnn.Conv2dAttributes) error {
	if attrs.Strides.Height == 0 || attrs.Strides.Width == 0 {
		return errors.Errorf("strides must be greater than 0, got %v", attrs.Strides)
	}
	if attrs.Dilations.Height == 0 || attrs.Dilations.Width == 0 {
		return errors.Errorf("dilations must be greater than 0, got %v", attrs.Dilations)
	}
	if attrs.Groups == 0 {
		return errors.New("groups must be greater than 0")
	}
	return nil
}

func checkConvBias(bias *webnn.OperandDescriptor, input webnn.OperandDescriptor, outputChannels uint32) error {
	if bias == nil {
		return nil
	}
	if err := checkShape("bias", *bias, outputChannels); err != nil {
		return err
	}
	return checkSameDataType("bias", input, *bias)
}

// ValidateConv2d validates a direct 2-D convolution. The filter is "oihw" for NCHW
// contexts and "ohwi" for NHWC ones.
func ValidateConv2d(props webnn.ContextProperties, input, filter webnn.OperandDescriptor, bias *webnn.OperandDescriptor,
	attrs webnn.Conv2dAttributes) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("conv2d input", input.DataType(), props.DataTypeLimits.Conv2dInput); err != nil {
		return
	}
	if err = checkRank("conv2d input", input, 4); err != nil {
		return
	}
	if err = checkRank("conv2d filter", filter, 4); err != nil {
		return
	}
	if err = checkSameDataType("filter", input, filter); err != nil {
		return
	}
	if err = checkConvAttributes(attrs); err != nil {
		return
	}

	layout := props.InputOperandLayout
	c, h, w := spatialAxes(layout)
	inShape, fShape := input.Shape(), filter.Shape()
	batch, inputChannels := inShape[0], inShape[c]

	// oihw or ohwi.
	outputChannels, filterInputChannels := fShape[0], fShape[1]
	filterHeight, filterWidth := fShape[2], fShape[3]
	if layout == webnn.LayoutNHWC {
		filterHeight, filterWidth, filterInputChannels = fShape[1], fShape[2], fShape[3]
	}
	if inputChannels%attrs.Groups != 0 || filterInputChannels != inputChannels/attrs.Groups {
		err = errors.Errorf("conv2d input channels (%d) must be equal to groups (%d) times the filter input channels (%d)",
			inputChannels, attrs.Groups, filterInputChannels)
		return
	}
	if outputChannels%attrs.Groups != 0 {
		err = errors.Errorf("conv2d output channels (%d) must be evenly divisible by groups (%d)", outputChannels, attrs.Groups)
		return
	}
	if err = checkConvBias(bias, input, outputChannels); err != nil {
		return
	}

	outHeight, err := CalculateConv2dOutputSize(inShape[h], filterHeight, attrs.Padding.Beginning.Height,
		attrs.Padding.Ending.Height, attrs.Strides.Height, attrs.Dilations.Height)
	if err != nil {
		err = errors.WithMessage(err, "conv2d output height")
		return
	}
	outWidth, err := CalculateConv2dOutputSize(inShape[w], filterWidth, attrs.Padding.Beginning.Width,
		attrs.Padding.Ending.Width, attrs.Strides.Width, attrs.Dilations.Width)
	if err != nil {
		err = errors.WithMessage(err, "conv2d output width")
		return
	}
	return newDescriptor("conv2d", input.DataType(), outputShape4D(layout, batch, outputChannels, outHeight, outWidth))
}

// ValidateConvTranspose2d validates a transposed 2-D convolution. The filter is "iohw"
// for NCHW contexts and "ohwi" for NHWC ones.
func ValidateConvTranspose2d(props webnn.ContextProperties, input, filter webnn.OperandDescriptor, bias *webnn.OperandDescriptor,
	attrs webnn.Conv2dAttributes) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType("convTranspose2d input", input.DataType(), props.DataTypeLimits.ConvTranspose2dInput); err != nil {
		return
	}
	if err = checkRank("convTranspose2d input", input, 4); err != nil {
		return
	}
	if err = checkRank("convTranspose2d filter", filter, 4); err != nil {
		return
	}
	if err = checkSameDataType("filter", input, filter); err != nil {
		return
	}
	if err = checkConvAttributes(attrs); err != nil {
		return
	}

	layout := props.InputOperandLayout
	c, h, w := spatialAxes(layout)
	inShape, fShape := input.Shape(), filter.Shape()
	batch, inputChannels := inShape[0], inShape[c]

	// iohw or ohwi.
	filterInputChannels, filterOutputChannels := fShape[0], fShape[1]
	filterHeight, filterWidth := fShape[2], fShape[3]
	if layout == webnn.LayoutNHWC {
		filterOutputChannels, filterHeight, filterWidth, filterInputChannels = fShape[0], fShape[1], fShape[2], fShape[3]
	}
	if filterInputChannels != inputChannels {
		err = errors.Errorf("convTranspose2d input channels (%d) must match the filter input channels (%d)",
			inputChannels, filterInputChannels)
		return
	}
	outputChannels, ok := checkedMul(filterOutputChannels, attrs.Groups)
	if !ok {
		err = errors.New("convTranspose2d output channels are too large")
		return
	}
	if err = checkConvBias(bias, input, outputChannels); err != nil {
		return
	}
	if attrs.OutputPadding.Height >= attrs.Strides.Height || attrs.OutputPadding.Width >= attrs.Strides.Width {
		err = errors.Errorf("convTranspose2d output padding %v must be smaller than the strides %v", attrs.OutputPadding, attrs.Strides)
		return
	}

	var sizes [2]uint32
	for i, dim := range []struct {
		name                           string
		in, filter, begin, end, stride uint32
		dilation, outputPadding        uint32
		explicit                       func(webnn.Size2d) uint32
	}{
		{"height", inShape[h], filterHeight, attrs.Padding.Beginning.Height, attrs.Padding.Ending.Height,
			attrs.Strides.Height, attrs.Dilations.Height, attrs.OutputPadding.Height, func(s webnn.Size2d) uint32 { return s.Height }},
		{"width", inShape[w], filterWidth, attrs.Padding.Beginning.Width, attrs.Padding.Ending.Width,
			attrs.Strides.Width, attrs.Dilations.Width, attrs.OutputPadding.Width, func(s webnn.Size2d) uint32 { return s.Width }},
	} {
		if attrs.OutputSizes == nil {
			sizes[i], err = CalculateConvTranspose2dOutputSize(dim.in, dim.filter, dim.begin, dim.end, dim.stride, dim.dilation, dim.outputPadding)
			if err != nil {
				err = errors.WithMessagef(err, "convTranspose2d output %s", dim.name)
				return
			}
			continue
		}
		var computed uint32
		computed, err = CalculateConvTranspose2dOutputSize(dim.in, dim.filter, dim.begin, dim.end, dim.stride, dim.dilation, 0)
		if err != nil {
			err = errors.WithMessagef(err, "convTranspose2d output %s", dim.name)
			return
		}
		explicit := dim.explicit(*attrs.OutputSizes)
		if explicit < computed || uint64(explicit) >= uint64(computed)+uint64(dim.stride) {
			err = errors.Errorf("convTranspose2d output %s (%d) must be in the range [%d, %d)",
				dim.name, explicit, computed, uint64(computed)+uint64(dim.stride))
			return
		}
		sizes[i] = explicit
	}
	return newDescriptor("convTranspose2d", input.DataType(), outputShape4D(layout, batch, outputChannels, sizes[0], sizes[1]))
}

// poolOutputSize returns the floor and ceil rounded output sizes of a pooling window.
func poolOutputSize(inputSize, windowSize, beginningPadding, endingPadding, stride, dilation uint32) (floor, ceil uint32, err error) {
	if stride == 0 {
		err = errors.New("stride must be greater than 0")
		return
	}
	effective, err := effectiveFilterSize(windowSize, dilation)
	if err != nil {
		return
	}
	padded, ok := checkedAdd(inputSize, beginningPadding, endingPadding)
	if !ok {
		err = errors.Errorf("padded input size %d+%d+%d is too large", inputSize, beginningPadding, endingPadding)
		return
	}
	if padded < effective {
		err = errors.Errorf("padded input size (%d) is smaller than the effective window size (%d)", padded, effective)
		return
	}
	size := float64(padded-effective)/float64(stride) + 1
	if size > math.MaxUint32 {
		err = errors.New("pooling output size is too large")
		return
	}
	return uint32(math.Floor(size)), uint32(math.Ceil(size)), nil
}

// ValidatePool2d validates averagePool2d, maxPool2d and l2Pool2d. A zero window means
// the whole spatial extent of the input.
func ValidatePool2d(props webnn.ContextProperties, kind webnn.PoolKind, input webnn.OperandDescriptor,
	attrs webnn.Pool2dAttributes) (output webnn.OperandDescriptor, err error) {
	if err = checkDataType(kind.String()+" input", input.DataType(), props.DataTypeLimits.Pool2dInput); err != nil {
		return
	}
	if err = checkRank(kind.String()+" input", input, 4); err != nil {
		return
	}
	if attrs.Strides.Height == 0 || attrs.Strides.Width == 0 {
		err = errors.Errorf("strides must be greater than 0, got %v", attrs.Strides)
		return
	}
	if attrs.Dilations.Height == 0 || attrs.Dilations.Width == 0 {
		err = errors.Errorf("dilations must be greater than 0, got %v", attrs.Dilations)
		return
	}

	layout := props.InputOperandLayout
	c, h, w := spatialAxes(layout)
	inShape := input.Shape()
	window := attrs.WindowDimensions
	if window == (webnn.Size2d{}) {
		window = webnn.Size2d{Height: inShape[h], Width: inShape[w]}
	}

	floorH, ceilH, err := poolOutputSize(inShape[h], window.Height, attrs.Padding.Beginning.Height,
		attrs.Padding.Ending.Height, attrs.Strides.Height, attrs.Dilations.Height)
	if err != nil {
		err = errors.WithMessagef(err, "%s output height", kind)
		return
	}
	floorW, ceilW, err := poolOutputSize(inShape[w], window.Width, attrs.Padding.Beginning.Width,
		attrs.Padding.Ending.Width, attrs.Strides.Width, attrs.Dilations.Width)
	if err != nil {
		err = errors.WithMessagef(err, "%s output width", kind)
		return
	}

	outH, outW := floorH, floorW
	switch {
	case attrs.OutputSizes != nil:
		outH, outW = attrs.OutputSizes.Height, attrs.OutputSizes.Width
		if (outH != floorH && outH != ceilH) || (outW != floorW && outW != ceilW) {
			err = errors.Errorf("%s output sizes %v must be either the floor (%d, %d) or the ceil (%d, %d) of the computed sizes",
				kind, *attrs.OutputSizes, floorH, floorW, ceilH, ceilW)
			return
		}
	case attrs.RoundingType == webnn.RoundingCeil:
		outH, outW = ceilH, ceilW
	}
	return newDescriptor(kind.String(), input.DataType(), outputShape4D(layout, inShape[0], inShape[c], outH, outW))
}
