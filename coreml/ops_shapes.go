package coreml

import (
	"slices"

	"github.com/gomlx/webnn-coreml/model"
	"github.com/gomlx/webnn-coreml/webnn"
)

func emitConcat(e *emitter, op *webnn.Concat) error {
	values := make([]*model.Value, len(op.Inputs))
	for i, id := range op.Inputs {
		values[i] = e.value(id)
	}
	e.define(op.Output, e.mil.OpWithListArg("concat", map[string]*model.Value{
		"axis":       e.mil.Int32Const(int32(op.Axis)),
		"interleave": e.mil.BoolConst(false),
	}, map[string][]*model.Value{"values": values},
		e.target(op.Output), values[0].DType(), dims(e.desc(op.Output))))
	return nil
}

// emitExpand lowers expand to a reshape adding the leading dimensions, if any, and a tile
// repeating the dimensions of size 1.
func emitExpand(e *emitter, op *webnn.Expand) error {
	x := e.value(op.Input)
	outShape := dims(e.desc(op.Output))
	name := e.target(op.Output)
	if slices.Equal(x.Shape(), outShape) {
		e.define(op.Output, e.mil.Identity(name, x))
		return nil
	}

	padded := make([]int64, len(outShape))
	offset := len(outShape) - x.Rank()
	for i := range padded {
		padded[i] = 1
		if i >= offset {
			padded[i] = x.Shape()[i-offset]
		}
	}
	reps := make([]int64, len(outShape))
	tiled := false
	for i, dim := range outShape {
		reps[i] = dim / padded[i]
		tiled = tiled || reps[i] != 1
	}
	if !tiled {
		e.define(op.Output, e.mil.Reshape(name, x, outShape))
		return nil
	}
	if offset > 0 {
		x = e.mil.Reshape(e.tmp(), x, padded)
	}
	e.define(op.Output, e.mil.Tile(name, x, reps))
	return nil
}

func emitGather(e *emitter, op *webnn.Gather) error {
	x := e.value(op.Input)
	e.define(op.Output, e.mil.Op("gather", map[string]*model.Value{
		"x":                x,
		"indices":          e.value(op.Indices),
		"axis":             e.mil.Int32Const(int32(op.Axis)),
		"batch_dims":       e.mil.Int32Const(0),
		"validate_indices": e.mil.BoolConst(false),
	}, e.target(op.Output), x.DType(), dims(e.desc(op.Output))))
	return nil
}

var padModes = map[webnn.PaddingMode]string{
	webnn.PaddingConstant:   "constant",
	webnn.PaddingEdge:       "replicate",
	webnn.PaddingReflection: "reflect",
}

// emitPad lowers pad. MIL only pads the last two dimensions in the reflect and replicate
// modes, and takes only their four paddings then. It has no symmetric mode.
func emitPad(e *emitter, op *webnn.Pad) error {
	mode, found := padModes[op.Mode]
	if !found {
		return notSupported("pad mode %s is not supported by CoreML", op.Mode)
	}
	x := e.value(op.Input)
	rank := x.Rank()
	pad := make([]int32, 0, 2*rank)
	for axis := range rank {
		begin, end := op.BeginningPadding[axis], op.EndingPadding[axis]
		if op.Mode != webnn.PaddingConstant && axis < rank-2 && (begin != 0 || end != 0) {
			return notSupported("pad mode %s on axis %d is not supported by CoreML, only the last two axes can be padded", op.Mode, axis)
		}
		pad = append(pad, int32(begin), int32(end))
	}
	if op.Mode != webnn.PaddingConstant && rank > 2 {
		pad = pad[2*(rank-2):]
	}
	e.define(op.Output, e.mil.Op("pad", map[string]*model.Value{
		"x":            x,
		"pad":          e.mil.Int32sConst(pad...),
		"mode":         e.mil.StringConst(mode),
		"constant_val": e.scalar(x, float64(op.Value)),
	}, e.target(op.Output), x.DType(), dims(e.desc(op.Output))))
	return nil
}

func emitReshape(e *emitter, op *webnn.Reshape) error {
	e.define(op.Output, e.mil.Reshape(e.target(op.Output), e.value(op.Input), dims(e.desc(op.Output))))
	return nil
}

// emitResample2d lowers resample2d to a resize of the spatial dimensions of an NCHW
// input to the sizes of the output.
func emitResample2d(e *emitter, op *webnn.Resample2d) error {
	if op.Axes != [2]uint32{2, 3} {
		return notSupported("resample2d on axes %v is not supported by CoreML, only [2 3] is", op.Axes)
	}
	x := e.value(op.Input)
	outShape := dims(e.desc(op.Output))
	inputs := map[string]*model.Value{
		"x":                  x,
		"target_size_height": e.mil.Int32Const(int32(outShape[2])),
		"target_size_width":  e.mil.Int32Const(int32(outShape[3])),
	}
	opType := "resize_nearest_neighbor"
	if op.Mode == webnn.InterpolationLinear {
		opType = "resize_bilinear"
		inputs["sampling_mode"] = e.mil.StringConst("UNALIGN_CORNERS")
	}
	e.define(op.Output, e.mil.Op(opType, inputs, e.target(op.Output), x.DType(), outShape))
	return nil
}

// emitSlice lowers slice to slice_by_index. Sizes are the extents of the windows, so the
// end of each dimension is start+size whatever the stride.
func emitSlice(e *emitter, op *webnn.Slice) error {
	x := e.value(op.Input)
	name := e.target(op.Output)
	rank := x.Rank()
	if rank == 0 {
		e.define(op.Output, e.mil.Identity(name, x))
		return nil
	}
	begin := make([]int32, rank)
	end := make([]int32, rank)
	stride := make([]int32, rank)
	for axis := range rank {
		step := uint32(1)
		if len(op.Strides) > 0 {
			step = op.Strides[axis]
		}
		begin[axis] = int32(op.Starts[axis])
		end[axis] = int32(op.Starts[axis] + op.Sizes[axis])
		stride[axis] = int32(step)
	}
	e.define(op.Output, e.mil.Op("slice_by_index", map[string]*model.Value{
		"x":      x,
		"begin":  e.mil.Int32sConst(begin...),
		"end":    e.mil.Int32sConst(end...),
		"stride": e.mil.Int32sConst(stride...),
	}, name, x.DType(), dims(e.desc(op.Output))))
	return nil
}

// emitSplit lowers split, the sizes of the pieces are the sizes of the outputs along the
// axis.
func emitSplit(e *emitter, op *webnn.Split) error {
	x := e.value(op.Input)
	sizes := make([]int32, len(op.Outputs))
	outputs := make([]model.FeatureSpec, len(op.Outputs))
	for i, id := range op.Outputs {
		shape := dims(e.desc(id))
		sizes[i] = int32(shape[op.Axis])
		outputs[i] = model.FeatureSpec{Name: e.target(id), DType: x.DType(), Shape: shape}
	}
	values := e.mil.MultiOutputOp("split", map[string]*model.Value{
		"x":           x,
		"split_sizes": e.mil.Int32sConst(sizes...),
		"axis":        e.mil.Int32Const(int32(op.Axis)),
	}, outputs)
	for i, id := range op.Outputs {
		e.define(id, values[i])
	}
	return nil
}

func emitTranspose(e *emitter, op *webnn.Transpose) error {
	x := e.value(op.Input)
	name := e.target(op.Output)
	if x.Rank() == 0 {
		e.define(op.Output, e.mil.Identity(name, x))
		return nil
	}
	perm := make([]int64, len(op.Permutation))
	for i, axis := range op.Permutation {
		perm[i] = int64(axis)
	}
	e.define(op.Output, e.mil.Transpose(name, x, perm))
	return nil
}
