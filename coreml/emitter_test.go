package coreml

import (
	"os"
	"testing"

	"github.com/gomlx/go-coreml/proto/coreml/milspec"
	"github.com/gomlx/webnn-coreml/webnn"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

func lowerBlock(t *testing.T, graph *webnn.GraphInfo) *milspec.Block {
	t.Helper()
	lowered, err := Lower(graph)
	require.NoError(t, err)
	return mainBlock(t, lowered.Model)
}

// immediateFloats returns the float values of the immediate bound to param of op.
func immediateFloats(t *testing.T, op *milspec.Operation, param string) []float32 {
	t.Helper()
	arg, found := op.Inputs[param]
	require.True(t, found, "%s has no input %q", op.Type, param)
	return arg.Arguments[0].GetValue().GetImmediateValue().GetTensor().GetFloats().GetValues()
}

func immediateInts(t *testing.T, op *milspec.Operation, param string) []int32 {
	t.Helper()
	arg, found := op.Inputs[param]
	require.True(t, found, "%s has no input %q", op.Type, param)
	return arg.Arguments[0].GetValue().GetImmediateValue().GetTensor().GetInts().GetValues()
}

func immediateStrings(t *testing.T, op *milspec.Operation, param string) []string {
	t.Helper()
	arg, found := op.Inputs[param]
	require.True(t, found, "%s has no input %q", op.Type, param)
	return arg.Arguments[0].GetValue().GetImmediateValue().GetTensor().GetStrings().GetValues()
}

// unaryGraph builds x -> op -> y, where build returns the operation given the ids.
func unaryGraph(in, out webnn.OperandDescriptor, build func(x, y webnn.OperandID) webnn.Operation) *webnn.GraphInfo {
	b := webnn.NewGraphBuilder()
	x := b.Input("x", in)
	y := b.Output("y", out)
	b.Add(build(x, y))
	return b.Build()
}

func TestDecompositions(t *testing.T) {
	t.Run("linear", func(t *testing.T) {
		block := lowerBlock(t, unaryGraph(f32(2, 3), f32(2, 3), func(x, y webnn.OperandID) webnn.Operation {
			return &webnn.Linear{Input: x, Output: y, Alpha: 2, Beta: 1}
		}))
		require.Equal(t, []string{"mul", "add"}, opTypes(block.Operations))
		require.Equal(t, []float32{2}, immediateFloats(t, block.Operations[0], "y"))
		require.Equal(t, []float32{1}, immediateFloats(t, block.Operations[1], "y"))
		require.Equal(t, "output_y_2", block.Operations[1].Outputs[0].Name)
	})

	t.Run("hardSwish", func(t *testing.T) {
		block := lowerBlock(t, unaryGraph(f32(4), f32(4), func(x, y webnn.OperandID) webnn.Operation {
			return &webnn.HardSwish{Input: x, Output: y}
		}))
		require.Equal(t, []string{"sigmoid_hard", "mul"}, opTypes(block.Operations))
		require.InDelta(t, 1.0/6, immediateFloats(t, block.Operations[0], "alpha")[0], 1e-7)
		require.Equal(t, []float32{0.5}, immediateFloats(t, block.Operations[0], "beta"))
	})

	t.Run("neg", func(t *testing.T) {
		block := lowerBlock(t, unaryGraph(f32(4), f32(4), func(x, y webnn.OperandID) webnn.Operation {
			return &webnn.ElementWiseUnary{UnaryKind: webnn.UnaryNeg, Input: x, Output: y}
		}))
		require.Equal(t, []string{"mul"}, opTypes(block.Operations))
		require.Equal(t, []float32{-1}, immediateFloats(t, block.Operations[0], "y"))
	})

	t.Run("int32 neg", func(t *testing.T) {
		i32 := desc(webnn.Int32, 4)
		block := lowerBlock(t, unaryGraph(i32, i32, func(x, y webnn.OperandID) webnn.Operation {
			return &webnn.ElementWiseUnary{UnaryKind: webnn.UnaryNeg, Input: x, Output: y}
		}))
		require.Equal(t, []int32{-1}, immediateInts(t, block.Operations[0], "y"))
	})

	t.Run("int32 clamp", func(t *testing.T) {
		i32 := desc(webnn.Int32, 4)
		block := lowerBlock(t, unaryGraph(i32, i32, func(x, y webnn.OperandID) webnn.Operation {
			return &webnn.Clamp{Input: x, Output: y, MinValue: 0, MaxValue: 6}
		}))
		require.Equal(t, []string{"maximum", "minimum"}, opTypes(block.Operations))
		require.Equal(t, []int32{0}, immediateInts(t, block.Operations[0], "y"))
		require.Equal(t, []int32{6}, immediateInts(t, block.Operations[1], "y"))
	})

	t.Run("float clamp", func(t *testing.T) {
		block := lowerBlock(t, unaryGraph(f32(4), f32(4), func(x, y webnn.OperandID) webnn.Operation {
			return &webnn.Clamp{Input: x, Output: y, MinValue: -1, MaxValue: 1}
		}))
		require.Equal(t, []string{"clip"}, opTypes(block.Operations))
	})

	t.Run("expand", func(t *testing.T) {
		block := lowerBlock(t, unaryGraph(f32(3), f32(2, 3), func(x, y webnn.OperandID) webnn.Operation {
			return &webnn.Expand{Input: x, Output: y}
		}))
		require.Equal(t, []string{"reshape", "tile"}, opTypes(block.Operations))
		require.Equal(t, []int32{1, 3}, immediateInts(t, block.Operations[0], "shape"))
		require.Equal(t, []int32{2, 1}, immediateInts(t, block.Operations[1], "reps"))
	})

	t.Run("reduce without axes", func(t *testing.T) {
		block := lowerBlock(t, unaryGraph(f32(2, 3), f32(2, 3), func(x, y webnn.OperandID) webnn.Operation {
			return &webnn.Reduce{ReduceKind: webnn.ReduceSum, Input: x, Output: y}
		}))
		require.Equal(t, []string{"identity"}, opTypes(block.Operations))
	})

	t.Run("reduce", func(t *testing.T) {
		block := lowerBlock(t, unaryGraph(f32(2, 3), f32(2), func(x, y webnn.OperandID) webnn.Operation {
			return &webnn.Reduce{ReduceKind: webnn.ReduceLogSumExp, Input: x, Output: y, Axes: []uint32{1}}
		}))
		require.Equal(t, []string{"reduce_log_sum_exp"}, opTypes(block.Operations))
		require.Equal(t, []int32{1}, immediateInts(t, block.Operations[0], "axes"))
	})

	t.Run("global average pooling", func(t *testing.T) {
		block := lowerBlock(t, unaryGraph(f32(1, 3, 4, 4), f32(1, 3, 1, 1), func(x, y webnn.OperandID) webnn.Operation {
			return &webnn.Pool2d{
				Pool2dAttributes: webnn.Pool2dAttributes{
					Strides:   webnn.Size2d{Height: 1, Width: 1},
					Dilations: webnn.Size2d{Height: 1, Width: 1},
				},
				PoolKind: webnn.PoolAverage,
				Input:    x,
				Output:   y,
			}
		}))
		require.Equal(t, []string{"reduce_mean"}, opTypes(block.Operations))
		require.Equal(t, []int32{2, 3}, immediateInts(t, block.Operations[0], "axes"))
	})

	t.Run("max pooling", func(t *testing.T) {
		block := lowerBlock(t, unaryGraph(f32(1, 3, 5, 5), f32(1, 3, 3, 3), func(x, y webnn.OperandID) webnn.Operation {
			return &webnn.Pool2d{
				Pool2dAttributes: webnn.Pool2dAttributes{
					WindowDimensions: webnn.Size2d{Height: 2, Width: 2},
					Strides:          webnn.Size2d{Height: 2, Width: 2},
					Dilations:        webnn.Size2d{Height: 1, Width: 1},
					RoundingType:     webnn.RoundingCeil,
				},
				PoolKind: webnn.PoolMax,
				Input:    x,
				Output:   y,
			}
		}))
		require.Equal(t, []string{"max_pool"}, opTypes(block.Operations))
		ceilMode := block.Operations[0].Inputs["ceil_mode"].Arguments[0].GetValue().GetImmediateValue().GetTensor().GetBools().GetValues()
		require.Equal(t, []bool{true}, ceilMode)
	})

	t.Run("argMax of a scalar", func(t *testing.T) {
		block := lowerBlock(t, unaryGraph(f32(), desc(webnn.Int32), func(x, y webnn.OperandID) webnn.Operation {
			return &webnn.ArgMinMax{ArgKind: webnn.ArgMax, Input: x, Output: y, KeepDimensions: true}
		}))
		// Input bridging, reshape to [1], reduction, reshape back and output bridging.
		require.Equal(t, []string{"reshape", "reshape", "reduce_argmax", "reshape", "reshape"}, opTypes(block.Operations))
	})
}

func TestGemm(t *testing.T) {
	b := webnn.NewGraphBuilder()
	a := b.Input("a", f32(2, 3))
	bConst := b.Constant(f32(3, 4), make([]byte, 12*4))
	c := b.Constant(f32(4), webnn.Float32Bytes(1, 2, 3, 4))
	y := b.Output("y", f32(2, 4))
	b.Add(&webnn.Gemm{
		GemmAttributes: webnn.GemmAttributes{Alpha: 2, Beta: 0.5},
		A:              a,
		B:              bConst,
		C:              webnn.OptionalID(c),
		Output:         y,
	})
	lowered, err := Lower(b.Build())
	require.NoError(t, err)
	block := mainBlock(t, lowered.Model)
	require.Equal(t, []string{"const", "const", "matmul", "mul", "mul", "add"}, opTypes(block.Operations))
	require.Equal(t, []float32{2}, immediateFloats(t, block.Operations[3], "y"))
	require.Equal(t, []float32{0.5}, immediateFloats(t, block.Operations[4], "y"))
	require.Equal(t, "output_y_4", block.Operations[5].Outputs[0].Name)
	require.Equal(t, 2, lowered.Weights.Count())

	// Without alpha and C, gemm is a single matmul.
	b = webnn.NewGraphBuilder()
	a = b.Input("a", f32(3, 2))
	bIn := b.Input("b", f32(3, 4))
	y = b.Output("y", f32(2, 4))
	b.Add(&webnn.Gemm{GemmAttributes: webnn.GemmAttributes{Alpha: 1, Beta: 1, ATranspose: true}, A: a, B: bIn, Output: y})
	block = lowerBlock(t, b.Build())
	require.Equal(t, []string{"matmul"}, opTypes(block.Operations))
	transposeX := block.Operations[0].Inputs["transpose_x"].Arguments[0].GetValue().GetImmediateValue().GetTensor().GetBools().GetValues()
	require.Equal(t, []bool{true}, transposeX)
}

func TestComparisonAndLogical(t *testing.T) {
	b := webnn.NewGraphBuilder()
	x := b.Input("x", f32(4))
	y := b.Input("y", f32(4))
	greater := b.Intermediate(desc(webnn.Uint8, 4))
	not := b.Intermediate(desc(webnn.Uint8, 4))
	out := b.Output("out", f32(4))
	b.Add(&webnn.ElementWiseBinary{BinaryKind: webnn.BinaryGreater, LHS: x, RHS: y, Output: greater})
	b.Add(&webnn.ElementWiseUnary{UnaryKind: webnn.UnaryLogicalNot, Input: greater, Output: not})
	b.Add(&webnn.ElementWiseUnary{UnaryKind: webnn.UnaryCast, Input: not, Output: out})

	block := lowerBlock(t, b.Build())
	require.Equal(t, []string{"greater", "cast", "cast", "logical_not", "cast", "cast"}, opTypes(block.Operations))
	require.Equal(t, "var_3", block.Operations[1].Outputs[0].Name)
	require.Equal(t, "var_4", block.Operations[4].Outputs[0].Name)
	require.Equal(t, []string{"output_out_5"}, block.Outputs)
}

func TestConv2dWithInputBias(t *testing.T) {
	b := webnn.NewGraphBuilder()
	x := b.Input("x", f32(1, 3, 8, 8))
	bias := b.Input("bias", f32(3))
	filter := b.Constant(f32(3, 3, 3, 3), make([]byte, 81*4))
	y := b.Output("y", f32(1, 3, 6, 6))
	b.Add(&webnn.Conv2d{
		Conv2dAttributes: webnn.Conv2dAttributes{
			Strides:   webnn.Size2d{Height: 1, Width: 1},
			Dilations: webnn.Size2d{Height: 1, Width: 1},
			Groups:    1,
		},
		Input:  x,
		Filter: filter,
		Bias:   webnn.OptionalID(bias),
		Output: y,
	})
	block := lowerBlock(t, b.Build())
	require.Equal(t, []string{"const", "conv", "reshape", "add"}, opTypes(block.Operations))
	require.NotContains(t, block.Operations[1].Inputs, "bias")
	require.Equal(t, []int32{1, 3, 1, 1}, immediateInts(t, block.Operations[2], "shape"))
}

func TestSplit(t *testing.T) {
	b := webnn.NewGraphBuilder()
	x := b.Input("x", f32(2, 6))
	first := b.Output("first", f32(2, 2))
	second := b.Output("second", f32(2, 4))
	b.Add(&webnn.Split{Input: x, Outputs: []webnn.OperandID{first, second}, Axis: 1})

	block := lowerBlock(t, b.Build())
	require.Equal(t, []string{"split"}, opTypes(block.Operations))
	require.Len(t, block.Operations[0].Outputs, 2)
	require.Equal(t, []int32{2, 4}, immediateInts(t, block.Operations[0], "split_sizes"))
	require.Equal(t, []string{"output_first_2", "output_second_3"}, block.Outputs)
}

func TestConcatShape(t *testing.T) {
	b := webnn.NewGraphBuilder()
	x := b.Input("x", f32(2, 3))
	y := b.Input("y", f32(2, 5))
	out := b.Output("", f32(2, 8))
	b.Add(&webnn.Concat{Inputs: []webnn.OperandID{x, y}, Output: out, Axis: 1})

	block := lowerBlock(t, b.Build())
	require.Equal(t, []string{"concat"}, opTypes(block.Operations))
	require.Len(t, block.Operations[0].Inputs["values"].Arguments, 2)
	require.Equal(t, []string{"output_3"}, block.Outputs)
}

func TestNotSupported(t *testing.T) {
	tests := []struct {
		name  string
		graph *webnn.GraphInfo
		want  string
	}{
		{
			name: "pool dilations",
			graph: unaryGraph(f32(1, 3, 8, 8), f32(1, 3, 6, 6), func(x, y webnn.OperandID) webnn.Operation {
				return &webnn.Pool2d{
					Pool2dAttributes: webnn.Pool2dAttributes{
						WindowDimensions: webnn.Size2d{Height: 2, Width: 2},
						Strides:          webnn.Size2d{Height: 1, Width: 1},
						Dilations:        webnn.Size2d{Height: 2, Width: 2},
					},
					PoolKind: webnn.PoolMax,
					Input:    x,
					Output:   y,
				}
			}),
			want: "dilations",
		},
		{
			name: "symmetric pad",
			graph: unaryGraph(f32(2, 3), f32(4, 5), func(x, y webnn.OperandID) webnn.Operation {
				return &webnn.Pad{Input: x, Output: y, BeginningPadding: []uint32{1, 1}, EndingPadding: []uint32{1, 1},
					Mode: webnn.PaddingSymmetric}
			}),
			want: "symmetric",
		},
		{
			name: "reflection pad of the first axis",
			graph: unaryGraph(f32(2, 3, 4), f32(3, 3, 4), func(x, y webnn.OperandID) webnn.Operation {
				return &webnn.Pad{Input: x, Output: y, BeginningPadding: []uint32{1, 0, 0}, EndingPadding: []uint32{0, 0, 0},
					Mode: webnn.PaddingReflection}
			}),
			want: "last two axes",
		},
		{
			name: "argMax selecting the last index",
			graph: unaryGraph(f32(2, 3), desc(webnn.Int32, 2), func(x, y webnn.OperandID) webnn.Operation {
				return &webnn.ArgMinMax{ArgKind: webnn.ArgMax, Input: x, Output: y, Axis: 1, SelectLastIndex: true}
			}),
			want: "last index",
		},
		{
			name: "layerNormalization axes",
			graph: unaryGraph(f32(1, 2, 3, 4), f32(1, 2, 3, 4), func(x, y webnn.OperandID) webnn.Operation {
				return &webnn.LayerNormalization{Input: x, Output: y, Axes: []uint32{3, 2}, Epsilon: 1e-5}
			}),
			want: "increasing",
		},
		{
			name: "instanceNormalization NHWC",
			graph: unaryGraph(f32(1, 4, 4, 3), f32(1, 4, 4, 3), func(x, y webnn.OperandID) webnn.Operation {
				return &webnn.InstanceNormalization{Input: x, Output: y, Epsilon: 1e-5, Layout: webnn.LayoutNHWC}
			}),
			want: "nhwc",
		},
		{
			name: "unsupported input type",
			graph: unaryGraph(desc(webnn.Uint32, 4), desc(webnn.Uint32, 4), func(x, y webnn.OperandID) webnn.Operation {
				return &webnn.Relu{Input: x, Output: y}
			}),
			want: "uint32",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Lower(tc.graph)
			require.Error(t, err)
			require.True(t, IsNotSupported(err), "expected a not supported error, got %v", err)
			require.ErrorContains(t, err, tc.want)
		})
	}
}

func TestLowering(t *testing.T) {
	tests := []struct {
		name  string
		graph func() *webnn.GraphInfo
		ops   []string
		check func(t *testing.T, ops []*milspec.Operation)
	}{
		{
			name: "slice",
			graph: func() *webnn.GraphInfo {
				return unaryGraph(f32(4, 6), f32(2, 3), func(x, y webnn.OperandID) webnn.Operation {
					return &webnn.Slice{SliceAttributes: webnn.SliceAttributes{Starts: []uint32{1, 2}, Sizes: []uint32{2, 3}}, Input: x, Output: y}
				})
			},
			ops: []string{"slice_by_index"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []int32{1, 2}, immediateInts(t, ops[0], "begin"))
				require.Equal(t, []int32{3, 5}, immediateInts(t, ops[0], "end"))
				require.Equal(t, []int32{1, 1}, immediateInts(t, ops[0], "stride"))
			},
		},
		{
			// A window of 6 elements with stride 2 takes elements 0, 2 and 4.
			name: "strided slice",
			graph: func() *webnn.GraphInfo {
				return unaryGraph(f32(10), f32(3), func(x, y webnn.OperandID) webnn.Operation {
					return &webnn.Slice{SliceAttributes: webnn.SliceAttributes{Starts: []uint32{0}, Sizes: []uint32{6}, Strides: []uint32{2}},
						Input: x, Output: y}
				})
			},
			ops: []string{"slice_by_index"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []int32{0}, immediateInts(t, ops[0], "begin"))
				require.Equal(t, []int32{6}, immediateInts(t, ops[0], "end"))
				require.Equal(t, []int32{2}, immediateInts(t, ops[0], "stride"))
			},
		},
		{
			name: "strided slice with an offset",
			graph: func() *webnn.GraphInfo {
				return unaryGraph(f32(3, 9), f32(3, 3), func(x, y webnn.OperandID) webnn.Operation {
					return &webnn.Slice{SliceAttributes: webnn.SliceAttributes{Starts: []uint32{0, 2}, Sizes: []uint32{3, 7}, Strides: []uint32{1, 3}},
						Input: x, Output: y}
				})
			},
			ops: []string{"slice_by_index"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []int32{3, 9}, immediateInts(t, ops[0], "end"))
				require.Equal(t, []int32{1, 3}, immediateInts(t, ops[0], "stride"))
			},
		},
		{
			name: "constant pad",
			graph: func() *webnn.GraphInfo {
				return unaryGraph(f32(2, 3), f32(3, 5), func(x, y webnn.OperandID) webnn.Operation {
					return &webnn.Pad{Input: x, Output: y, BeginningPadding: []uint32{1, 0}, EndingPadding: []uint32{0, 2},
						Mode: webnn.PaddingConstant, Value: 0.5}
				})
			},
			ops: []string{"pad"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []int32{1, 0, 0, 2}, immediateInts(t, ops[0], "pad"))
				require.Equal(t, []string{"constant"}, immediateStrings(t, ops[0], "mode"))
				require.Equal(t, []float32{0.5}, immediateFloats(t, ops[0], "constant_val"))
			},
		},
		{
			name: "constant pad of every axis",
			graph: func() *webnn.GraphInfo {
				return unaryGraph(f32(2, 3, 4), f32(3, 3, 6), func(x, y webnn.OperandID) webnn.Operation {
					return &webnn.Pad{Input: x, Output: y, BeginningPadding: []uint32{1, 0, 1}, EndingPadding: []uint32{0, 0, 1}}
				})
			},
			ops: []string{"pad"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []int32{1, 0, 0, 0, 1, 1}, immediateInts(t, ops[0], "pad"))
			},
		},
		{
			name: "reflection pad",
			graph: func() *webnn.GraphInfo {
				return unaryGraph(f32(1, 1, 4, 4), f32(1, 1, 6, 8), func(x, y webnn.OperandID) webnn.Operation {
					return &webnn.Pad{Input: x, Output: y, BeginningPadding: []uint32{0, 0, 1, 2}, EndingPadding: []uint32{0, 0, 1, 2},
						Mode: webnn.PaddingReflection}
				})
			},
			ops: []string{"pad"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []int32{1, 1, 2, 2}, immediateInts(t, ops[0], "pad"))
				require.Equal(t, []string{"reflect"}, immediateStrings(t, ops[0], "mode"))
			},
		},
		{
			name: "edge pad",
			graph: func() *webnn.GraphInfo {
				return unaryGraph(f32(2, 3, 4), f32(2, 4, 5), func(x, y webnn.OperandID) webnn.Operation {
					return &webnn.Pad{Input: x, Output: y, BeginningPadding: []uint32{0, 1, 0}, EndingPadding: []uint32{0, 0, 1},
						Mode: webnn.PaddingEdge}
				})
			},
			ops: []string{"pad"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []int32{1, 0, 0, 1}, immediateInts(t, ops[0], "pad"))
				require.Equal(t, []string{"replicate"}, immediateStrings(t, ops[0], "mode"))
			},
		},
		{
			name: "resample2d sizes",
			graph: func() *webnn.GraphInfo {
				return unaryGraph(f32(1, 3, 4, 4), f32(1, 3, 8, 6), func(x, y webnn.OperandID) webnn.Operation {
					return &webnn.Resample2d{Resample2dAttributes: webnn.Resample2dAttributes{Sizes: []uint32{8, 6}, Axes: [2]uint32{2, 3}},
						Input: x, Output: y}
				})
			},
			ops: []string{"resize_nearest_neighbor"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []int32{8}, immediateInts(t, ops[0], "target_size_height"))
				require.Equal(t, []int32{6}, immediateInts(t, ops[0], "target_size_width"))
			},
		},
		{
			name: "resample2d scales",
			graph: func() *webnn.GraphInfo {
				return unaryGraph(f32(1, 3, 4, 4), f32(1, 3, 8, 2), func(x, y webnn.OperandID) webnn.Operation {
					return &webnn.Resample2d{Resample2dAttributes: webnn.Resample2dAttributes{Mode: webnn.InterpolationLinear,
						Scales: []float32{2, 0.5}, Axes: [2]uint32{2, 3}}, Input: x, Output: y}
				})
			},
			ops: []string{"resize_bilinear"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []int32{8}, immediateInts(t, ops[0], "target_size_height"))
				require.Equal(t, []int32{2}, immediateInts(t, ops[0], "target_size_width"))
				require.Equal(t, []string{"UNALIGN_CORNERS"}, immediateStrings(t, ops[0], "sampling_mode"))
			},
		},
		{
			name: "gather",
			graph: func() *webnn.GraphInfo {
				b := webnn.NewGraphBuilder()
				x := b.Input("x", f32(5, 4))
				indices := b.Input("indices", desc(webnn.Int32, 3))
				y := b.Output("y", f32(5, 3))
				b.Add(&webnn.Gather{Input: x, Indices: indices, Output: y, Axis: 1})
				return b.Build()
			},
			ops: []string{"gather"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []int32{1}, immediateInts(t, ops[0], "axis"))
				require.Equal(t, "input_indices_2", ops[0].Inputs["indices"].Arguments[0].GetName())
			},
		},
		{
			name: "transpose",
			graph: func() *webnn.GraphInfo {
				return unaryGraph(f32(2, 3, 4), f32(4, 2, 3), func(x, y webnn.OperandID) webnn.Operation {
					return &webnn.Transpose{Input: x, Output: y, Permutation: []uint32{2, 0, 1}}
				})
			},
			ops: []string{"transpose"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []int32{2, 0, 1}, immediateInts(t, ops[0], "perm"))
			},
		},
		{
			name: "where",
			graph: func() *webnn.GraphInfo {
				b := webnn.NewGraphBuilder()
				cond := b.Constant(desc(webnn.Uint8, 4), []byte{1, 0, 1, 0})
				x := b.Input("x", f32(4))
				y := b.Input("y", f32(4))
				out := b.Output("out", f32(4))
				b.Add(&webnn.Where{Condition: cond, TrueValue: x, FalseValue: y, Output: out})
				return b.Build()
			},
			ops: []string{"const", "cast", "select"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []string{"bool"}, immediateStrings(t, ops[1], "dtype"))
				require.Equal(t, ops[1].Outputs[0].Name, ops[2].Inputs["cond"].Arguments[0].GetName())
				require.Equal(t, "input_x_2", ops[2].Inputs["a"].Arguments[0].GetName())
				require.Equal(t, "input_y_3", ops[2].Inputs["b"].Arguments[0].GetName())
			},
		},
		{
			name: "prelu",
			graph: func() *webnn.GraphInfo {
				b := webnn.NewGraphBuilder()
				x := b.Input("x", f32(2, 3))
				slope := b.Constant(f32(3), webnn.Float32Bytes(0.1, 0.2, 0.3))
				y := b.Output("y", f32(2, 3))
				b.Add(&webnn.Prelu{Input: x, Slope: slope, Output: y})
				return b.Build()
			},
			ops: []string{"const", "maximum", "minimum", "mul", "add"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []float32{0}, immediateFloats(t, ops[1], "y"))
				require.Equal(t, []float32{0}, immediateFloats(t, ops[2], "y"))
				require.Equal(t, "var_2", ops[3].Inputs["y"].Arguments[0].GetName())
				require.Equal(t, "output_y_3", ops[4].Outputs[0].Name)
			},
		},
		{
			name: "layerNormalization",
			graph: func() *webnn.GraphInfo {
				b := webnn.NewGraphBuilder()
				x := b.Input("x", f32(2, 3, 4))
				scale := b.Constant(f32(3, 4), make([]byte, 12*4))
				bias := b.Constant(f32(3, 4), make([]byte, 12*4))
				y := b.Output("y", f32(2, 3, 4))
				b.Add(&webnn.LayerNormalization{Input: x, Scale: &scale, Bias: &bias, Output: y, Axes: []uint32{1, 2}, Epsilon: 1e-3})
				return b.Build()
			},
			ops: []string{"const", "const", "layer_norm", "reshape", "mul", "reshape", "add"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []int32{1, 2}, immediateInts(t, ops[2], "axes"))
				require.Equal(t, []float32{1e-3}, immediateFloats(t, ops[2], "epsilon"))
				require.Equal(t, []int32{1, 3, 4}, immediateInts(t, ops[3], "shape"))
				require.Equal(t, "output_y_4", ops[6].Outputs[0].Name)
			},
		},
		{
			name: "convTranspose2d with output sizes",
			graph: func() *webnn.GraphInfo {
				b := webnn.NewGraphBuilder()
				x := b.Input("x", f32(1, 2, 3, 3))
				filter := b.Constant(f32(2, 1, 3, 3), make([]byte, 18*4))
				y := b.Output("y", f32(1, 1, 8, 8))
				b.Add(&webnn.Conv2d{
					ConvKind: webnn.Conv2dTransposed,
					Conv2dAttributes: webnn.Conv2dAttributes{
						Strides:     webnn.Size2d{Height: 2, Width: 2},
						Dilations:   webnn.Size2d{Height: 1, Width: 1},
						Groups:      1,
						OutputSizes: &webnn.Size2d{Height: 8, Width: 8},
					},
					Input:  x,
					Filter: filter,
					Output: y,
				})
				return b.Build()
			},
			ops: []string{"const", "conv_transpose"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []int32{1, 1, 8, 8}, immediateInts(t, ops[1], "output_shape"))
				require.Equal(t, []int32{2, 2}, immediateInts(t, ops[1], "strides"))
				require.Equal(t, []int32{0, 0, 0, 0}, immediateInts(t, ops[1], "pad"))
			},
		},
		{
			name: "logicalNot",
			graph: func() *webnn.GraphInfo {
				b := webnn.NewGraphBuilder()
				x := b.Input("x", f32(4))
				y := b.Input("y", f32(4))
				equal := b.Intermediate(desc(webnn.Uint8, 4))
				not := b.Intermediate(desc(webnn.Uint8, 4))
				out := b.Output("out", desc(webnn.Int32, 4))
				b.Add(&webnn.ElementWiseBinary{BinaryKind: webnn.BinaryEqual, LHS: x, RHS: y, Output: equal})
				b.Add(&webnn.ElementWiseUnary{UnaryKind: webnn.UnaryLogicalNot, Input: equal, Output: not})
				b.Add(&webnn.ElementWiseUnary{UnaryKind: webnn.UnaryCast, Input: not, Output: out})
				return b.Build()
			},
			ops: []string{"equal", "cast", "cast", "logical_not", "cast", "cast"},
			check: func(t *testing.T, ops []*milspec.Operation) {
				require.Equal(t, []string{"bool"}, immediateStrings(t, ops[2], "dtype"))
				require.Equal(t, "var_3", ops[2].Inputs["x"].Arguments[0].GetName())
				require.Equal(t, ops[2].Outputs[0].Name, ops[3].Inputs["x"].Arguments[0].GetName())
				require.Equal(t, []string{"uint8"}, immediateStrings(t, ops[4], "dtype"))
				require.Equal(t, "var_4", ops[4].Outputs[0].Name)
				require.Equal(t, []string{"int32"}, immediateStrings(t, ops[5], "dtype"))
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			block := lowerBlock(t, tc.graph())
			require.Equal(t, tc.ops, opTypes(block.Operations))
			tc.check(t, block.Operations)
		})
	}
}

func TestRecurrentNotSupported(t *testing.T) {
	b := webnn.NewGraphBuilder()
	x := b.Input("x", f32(2, 4))
	h := b.Input("h", f32(2, 3))
	weight := b.Constant(f32(9, 4), make([]byte, 9*4*4))
	recurrentWeight := b.Constant(f32(9, 3), make([]byte, 9*3*4))
	out := b.Output("out", f32(2, 3))
	b.Add(&webnn.GruCell{
		GruAttributes: webnn.GruAttributes{
			HiddenSize:  3,
			Activations: []webnn.RecurrentActivation{webnn.ActivationSigmoid, webnn.ActivationTanh},
		},
		Input:           x,
		Weight:          weight,
		RecurrentWeight: recurrentWeight,
		HiddenState:     h,
		Output:          out,
	})

	dir := t.TempDir()
	_, err := CreateAndBuild(b.Build(), dir)
	require.True(t, IsNotSupported(err), "expected a not supported error, got %v", err)
	require.ErrorContains(t, err, "operation #0 (gruCell)")
	require.Empty(t, must.M1(os.ReadDir(dir)))
}

func TestBatchNormalization(t *testing.T) {
	build := func(constantMean bool) *webnn.GraphInfo {
		b := webnn.NewGraphBuilder()
		x := b.Input("x", f32(1, 2, 4, 4))
		var mean webnn.OperandID
		if constantMean {
			mean = b.Constant(f32(2), webnn.Float32Bytes(0, 1))
		} else {
			mean = b.Input("mean", f32(2))
		}
		variance := b.Constant(f32(2), webnn.Float32Bytes(1, 2))
		y := b.Output("y", f32(1, 2, 4, 4))
		b.Add(&webnn.BatchNormalization{
			BatchNormalizationAttributes: webnn.BatchNormalizationAttributes{Axis: 1, Epsilon: 1e-5},
			Input:                        x,
			Mean:                         mean,
			Variance:                     variance,
			Output:                       y,
		})
		return b.Build()
	}

	block := lowerBlock(t, build(true))
	require.Equal(t, []string{"const", "const", "batch_norm"}, opTypes(block.Operations))
	require.NotContains(t, block.Operations[2].Inputs, "gamma")

	_, err := Lower(build(false))
	require.True(t, IsNotSupported(err), "expected a not supported error, got %v", err)
	require.ErrorContains(t, err, "non-constant mean")
}

func TestInstanceNormalization(t *testing.T) {
	b := webnn.NewGraphBuilder()
	x := b.Input("x", f32(1, 2, 4, 4))
	scale := b.Constant(f32(2), webnn.Float32Bytes(1, 2))
	bias := b.Constant(f32(2), webnn.Float32Bytes(0, 1))
	y := b.Output("y", f32(1, 2, 4, 4))
	b.Add(&webnn.InstanceNormalization{
		Input:   x,
		Scale:   webnn.OptionalID(scale),
		Bias:    webnn.OptionalID(bias),
		Output:  y,
		Epsilon: 1e-5,
	})
	block := lowerBlock(t, b.Build())
	require.Equal(t, []string{"const", "const", "instance_norm", "reshape", "mul", "reshape", "add"}, opTypes(block.Operations))
	require.Equal(t, []int32{1, 2, 1, 1}, immediateInts(t, block.Operations[3], "shape"))
	require.Equal(t, "output_y_4", block.Operations[6].Outputs[0].Name)
}
