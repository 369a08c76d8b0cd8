package model

import "github.com/pkg/errors"

// This file contains typed builders for the MIL operations that are composed to lower
// operations without a native equivalent. Each takes the name of its output.
// MIL operations are documented at:
// https://apple.github.io/coremltools/docs-guides/source/ops-reference.html

func (b *Builder) binary(opType, name string, x, y *Value, dtype DType) *Value {
	return b.Op(opType, map[string]*Value{
		"x": x,
		"y": y,
	}, name, dtype, broadcastShape(x.shape, y.shape))
}

// Add performs element-wise addition: z = x + y.
func (b *Builder) Add(name string, x, y *Value) *Value {
	return b.binary("add", name, x, y, x.dtype)
}

// Sub performs element-wise subtraction: z = x - y.
func (b *Builder) Sub(name string, x, y *Value) *Value {
	return b.binary("sub", name, x, y, x.dtype)
}

// Mul performs element-wise multiplication: z = x * y.
func (b *Builder) Mul(name string, x, y *Value) *Value {
	return b.binary("mul", name, x, y, x.dtype)
}

// Maximum computes element-wise maximum: z = max(x, y).
func (b *Builder) Maximum(name string, x, y *Value) *Value {
	return b.binary("maximum", name, x, y, x.dtype)
}

// Minimum computes element-wise minimum: z = min(x, y).
func (b *Builder) Minimum(name string, x, y *Value) *Value {
	return b.binary("minimum", name, x, y, x.dtype)
}

// Compare emits one of the comparison operations (equal, not_equal, greater,
// greater_equal, less, less_equal), producing booleans.
func (b *Builder) Compare(opType, name string, x, y *Value) *Value {
	return b.binary(opType, name, x, y, Bool)
}

// Logical emits logical_and, logical_or or logical_xor on booleans.
func (b *Builder) Logical(opType, name string, x, y *Value) *Value {
	return b.binary(opType, name, x, y, Bool)
}

// LogicalNot computes the element-wise negation of booleans.
func (b *Builder) LogicalNot(name string, x *Value) *Value {
	return b.Op("logical_not", map[string]*Value{"x": x}, name, Bool, x.shape)
}

// Cast converts a tensor to a different dtype.
func (b *Builder) Cast(name string, x *Value, dtype DType) *Value {
	return b.Op("cast", map[string]*Value{
		"x":     x,
		"dtype": b.StringConst(DTypeName(dtype)),
	}, name, dtype, x.shape)
}

// DTypeName returns the MIL spelling of dtype, as used by cast. It panics for data types
// cast cannot produce.
func DTypeName(dtype DType) string {
	switch dtype {
	case Float32:
		return "fp32"
	case Float16:
		return "fp16"
	case Int32:
		return "int32"
	case Int8:
		return "int8"
	case UInt8:
		return "uint8"
	case Bool:
		return "bool"
	}
	panic(errors.Errorf("data type %s has no MIL cast name", dtype))
}

// Reshape changes the shape of x, the number of elements must not change.
func (b *Builder) Reshape(name string, x *Value, shape []int64) *Value {
	return b.Op("reshape", map[string]*Value{
		"x":     x,
		"shape": b.Int32sConst(toInt32Slice(shape)...),
	}, name, x.dtype, shape)
}

// Tile repeats x reps[i] times along each axis i.
func (b *Builder) Tile(name string, x *Value, reps []int64) *Value {
	shape := make([]int64, len(x.shape))
	for i, dim := range x.shape {
		shape[i] = dim * reps[i]
	}
	return b.Op("tile", map[string]*Value{
		"x":    x,
		"reps": b.Int32sConst(toInt32Slice(reps)...),
	}, name, x.dtype, shape)
}

// Transpose permutes the axes of x.
func (b *Builder) Transpose(name string, x *Value, perm []int64) *Value {
	shape := make([]int64, len(perm))
	for i, axis := range perm {
		shape[i] = x.shape[axis]
	}
	return b.Op("transpose", map[string]*Value{
		"x":    x,
		"perm": b.Int32sConst(toInt32Slice(perm)...),
	}, name, x.dtype, shape)
}

// MatMul performs matrix multiplication with optional transposes.
// x: [..., M, K], y: [..., K, N] -> z: [..., M, N], the batch dimensions broadcast.
func (b *Builder) MatMul(name string, x, y *Value, transposeX, transposeY bool) *Value {
	xShape, yShape := x.shape, y.shape
	m := xShape[len(xShape)-2]
	if transposeX {
		m = xShape[len(xShape)-1]
	}
	n := yShape[len(yShape)-1]
	if transposeY {
		n = yShape[len(yShape)-2]
	}
	shape := append(broadcastShape(xShape[:len(xShape)-2], yShape[:len(yShape)-2]), m, n)
	return b.Op("matmul", map[string]*Value{
		"x":           x,
		"y":           y,
		"transpose_x": b.BoolConst(transposeX),
		"transpose_y": b.BoolConst(transposeY),
	}, name, x.dtype, shape)
}

// Select takes a where cond is true and bVal elsewhere.
func (b *Builder) Select(name string, cond, a, bVal *Value) *Value {
	shape := broadcastShape(cond.shape, broadcastShape(a.shape, bVal.shape))
	return b.Op("select", map[string]*Value{
		"cond": cond,
		"a":    a,
		"b":    bVal,
	}, name, a.dtype, shape)
}

// SigmoidHard computes min(max(alpha * x + beta, 0), 1).
func (b *Builder) SigmoidHard(name string, x *Value, alpha, beta float32) *Value {
	return b.Op("sigmoid_hard", map[string]*Value{
		"x":     x,
		"alpha": b.ScalarConst(x.dtype, float64(alpha)),
		"beta":  b.ScalarConst(x.dtype, float64(beta)),
	}, name, x.dtype, x.shape)
}

// Reduce emits one of the reduce_* operations over axes.
func (b *Builder) Reduce(opType, name string, x *Value, axes []int64, keepDims bool) *Value {
	return b.Op(opType, map[string]*Value{
		"x":         x,
		"axes":      b.Int32sConst(toInt32Slice(axes)...),
		"keep_dims": b.BoolConst(keepDims),
	}, name, x.dtype, computeReduceShape(x.shape, axes, keepDims))
}

// Helper functions

func toInt32Slice(s []int64) []int32 {
	result := make([]int32, len(s))
	for i, v := range s {
		result[i] = int32(v)
	}
	return result
}

// broadcastShape aligns a and b on their trailing dimensions. The shapes are assumed to be
// broadcastable.
func broadcastShape(a, b []int64) []int64 {
	rank := max(len(a), len(b))
	result := make([]int64, rank)
	for i := range rank {
		ai, bi := int64(1), int64(1)
		if i < len(a) {
			ai = a[len(a)-1-i]
		}
		if i < len(b) {
			bi = b[len(b)-1-i]
		}
		result[rank-1-i] = max(ai, bi)
		if ai == 1 || bi == 1 {
			result[rank-1-i] = ai * bi
		}
	}
	return result
}

func computeReduceShape(shape []int64, axes []int64, keepDims bool) []int64 {
	reduced := make(map[int64]bool, len(axes))
	for _, a := range axes {
		reduced[a] = true
	}
	result := make([]int64, 0, len(shape))
	for i, dim := range shape {
		switch {
		case !reduced[int64(i)]:
			result = append(result, dim)
		case keepDims:
			result = append(result, 1)
		}
	}
	return result
}
