package coreml

import (
	"github.com/gomlx/webnn-coreml/model"
	"github.com/gomlx/webnn-coreml/webnn"
)

var reduceOpTypes = map[webnn.ReduceKind]string{
	webnn.ReduceL1:        "reduce_l1_norm",
	webnn.ReduceL2:        "reduce_l2_norm",
	webnn.ReduceLogSum:    "reduce_log_sum",
	webnn.ReduceLogSumExp: "reduce_log_sum_exp",
	webnn.ReduceMax:       "reduce_max",
	webnn.ReduceMean:      "reduce_mean",
	webnn.ReduceMin:       "reduce_min",
	webnn.ReduceProduct:   "reduce_prod",
	webnn.ReduceSum:       "reduce_sum",
	webnn.ReduceSumSquare: "reduce_sum_square",
}

// emitReduce lowers the reductions. Reducing over no axes is an identity.
func emitReduce(e *emitter, op *webnn.Reduce) error {
	x := e.value(op.Input)
	name := e.target(op.Output)
	if len(op.Axes) == 0 {
		e.define(op.Output, e.mil.Identity(name, x))
		return nil
	}
	axes := make([]int64, len(op.Axes))
	for i, axis := range op.Axes {
		axes[i] = int64(axis)
	}
	e.define(op.Output, e.mil.Reduce(reduceOpTypes[op.ReduceKind], name, x, axes, op.KeepDimensions))
	return nil
}

// emitArgMinMax lowers argMin and argMax. MIL does not reduce scalars: they are reshaped
// to [1] and the result reshaped back to a scalar.
func emitArgMinMax(e *emitter, op *webnn.ArgMinMax) error {
	if op.SelectLastIndex {
		return notSupported("%s selecting the last index is not supported by CoreML", op.ArgKind)
	}
	opType := "reduce_argmin"
	if op.ArgKind == webnn.ArgMax {
		opType = "reduce_argmax"
	}
	x := e.value(op.Input)
	name := e.target(op.Output)
	scalar := x.Rank() == 0
	if scalar {
		x = e.mil.Reshape(e.tmp(), x, []int64{1})
	}
	shape := dims(e.desc(op.Output))
	argName := name
	if scalar && op.KeepDimensions {
		shape = []int64{1}
		argName = e.tmp()
	}
	v := e.mil.Op(opType, map[string]*model.Value{
		"x":         x,
		"axis":      e.mil.Int32Const(int32(op.Axis)),
		"keep_dims": e.mil.BoolConst(op.KeepDimensions),
	}, argName, model.Int32, shape)
	if scalar && op.KeepDimensions {
		v = e.mil.Reshape(name, v, []int64{})
	}
	e.define(op.Output, v)
	return nil
}

func emitSoftmax(e *emitter, op *webnn.Softmax) error {
	x := e.value(op.Input)
	e.define(op.Output, e.mil.Op("softmax", map[string]*model.Value{
		"x":    x,
		"axis": e.mil.Int32Const(int32(op.Axis)),
	}, e.target(op.Output), x.DType(), x.Shape()))
	return nil
}

func emitMatmul(e *emitter, op *webnn.Matmul) error {
	e.define(op.Output, e.mil.MatMul(e.target(op.Output), e.value(op.A), e.value(op.B), false, false))
	return nil
}

// emitGemm lowers alpha * A * B + beta * C to matmul followed by the scaling and the
// addition of C, each only when needed.
func emitGemm(e *emitter, op *webnn.Gemm) error {
	a, b := e.value(op.A), e.value(op.B)
	name := e.target(op.Output)
	scaleA := op.Alpha != 1
	addC := op.C != nil && op.Beta != 0

	if !scaleA && !addC {
		e.define(op.Output, e.mil.MatMul(name, a, b, op.ATranspose, op.BTranspose))
		return nil
	}
	v := e.mil.MatMul(e.tmp(), a, b, op.ATranspose, op.BTranspose)
	if scaleA {
		vName := name
		if addC {
			vName = e.tmp()
		}
		v = e.mil.Mul(vName, v, e.scalar(v, float64(op.Alpha)))
	}
	if addC {
		c := e.value(*op.C)
		if op.Beta != 1 {
			c = e.mil.Mul(e.tmp(), c, e.scalar(c, float64(op.Beta)))
		}
		v = e.mil.Add(name, v, c)
	}
	e.define(op.Output, v)
	return nil
}
