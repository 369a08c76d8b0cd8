package model

import (
	"testing"

	"github.com/gomlx/go-coreml/proto/coreml/milspec"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func opTypes(ops []*milspec.Operation) []string {
	types := make([]string, len(ops))
	for i, op := range ops {
		types[i] = op.Type
	}
	return types
}

// immediate returns the immediate tensor bound to param of op.
func immediate(t *testing.T, op *milspec.Operation, param string) *milspec.TensorValue {
	t.Helper()
	arg, found := op.Inputs[param]
	require.True(t, found, "%s has no input %q", op.Type, param)
	require.Len(t, arg.Arguments, 1)
	tensor := arg.Arguments[0].GetValue().GetImmediateValue().GetTensor()
	require.NotNil(t, tensor, "%s input %q is not an immediate tensor", op.Type, param)
	return tensor
}

func TestBuilderProgram(t *testing.T) {
	b := NewBuilder("main")
	x := b.Input("x", Float32, 2, 3)
	sum := b.Add("sum", x, b.ScalarConst(Float32, 1))
	b.Output("y", sum)

	program, err := b.Build()
	require.NoError(t, err)
	if program.Version != 1 {
		t.Errorf("expected version 1, got %d", program.Version)
	}
	mainFunc, ok := program.Functions["main"]
	if !ok {
		t.Fatal("expected 'main' function")
	}
	require.Len(t, mainFunc.Inputs, 1)
	require.Equal(t, "x", mainFunc.Inputs[0].Name)

	block, ok := mainFunc.BlockSpecializations["CoreML7"]
	if !ok {
		t.Fatal("expected block specialization for CoreML7")
	}
	// Constants are inlined, so only add and the renaming identity are operations.
	require.Equal(t, []string{"add", "identity"}, opTypes(block.Operations))
	require.Equal(t, []string{"y"}, block.Outputs)
	require.Equal(t, []float32{1}, immediate(t, block.Operations[0], "y").GetFloats().GetValues())

	if diff := cmp.Diff([]FeatureSpec{{Name: "y", DType: Float32, Shape: []int64{2, 3}}}, b.OutputSpecs()); diff != "" {
		t.Errorf("OutputSpecs() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderErrors(t *testing.T) {
	t.Run("duplicate name", func(t *testing.T) {
		b := NewBuilder("main")
		x := b.Input("x", Float32, 4)
		b.Op("relu", map[string]*Value{"x": x}, "x", Float32, []int64{4})
		require.Error(t, b.Err())
		_, err := b.Build()
		require.ErrorContains(t, err, "defined twice")
	})

	t.Run("nil input", func(t *testing.T) {
		b := NewBuilder("main")
		y := b.Op("relu", map[string]*Value{"x": nil}, "y", Float32, []int64{4})
		b.Output("y", y)
		_, err := b.Build()
		require.ErrorContains(t, err, "is nil")
	})

	t.Run("no outputs", func(t *testing.T) {
		b := NewBuilder("main")
		b.Input("x", Float32, 4)
		_, err := b.Build()
		require.ErrorContains(t, err, "no outputs")
	})

	t.Run("unsupported immediate", func(t *testing.T) {
		b := NewBuilder("main")
		b.Const(Float32, []int64{2}, []float64{1, 2})
		require.Error(t, b.Err())
	})
}

func TestCast(t *testing.T) {
	b := NewBuilder("main")
	x := b.Input("x", Float32, 2, 3)
	casted := b.Cast("casted", x, UInt8)
	b.Output("casted", casted)

	require.Equal(t, UInt8, casted.DType())
	require.Equal(t, []int64{2, 3}, casted.Shape())
	program, err := b.Build()
	require.NoError(t, err)
	op := program.Functions["main"].BlockSpecializations["CoreML7"].Operations[0]
	require.Equal(t, "cast", op.Type)
	require.Equal(t, []string{"uint8"}, immediate(t, op, "dtype").GetStrings().GetValues())
}

func TestDTypeName(t *testing.T) {
	for dtype, want := range map[DType]string{Float32: "fp32", Float16: "fp16", Int32: "int32", Int8: "int8", UInt8: "uint8", Bool: "bool"} {
		require.Equal(t, want, DTypeName(dtype))
	}
	require.Panics(t, func() { DTypeName(String) })
}

func TestOpShapes(t *testing.T) {
	b := NewBuilder("main")
	x := b.Input("x", Float32, 2, 3, 4)
	y := b.Input("y", Float32, 5, 4)

	require.Equal(t, []int64{2, 3, 5}, b.MatMul("mm", x, y, false, true).Shape())
	require.Equal(t, []int64{2, 4, 3}, b.Transpose("tr", x, []int64{0, 2, 1}).Shape())
	require.Equal(t, []int64{4, 3, 8}, b.Tile("tile", x, []int64{2, 1, 2}).Shape())
	require.Equal(t, []int64{6, 4}, b.Reshape("rs", x, []int64{6, 4}).Shape())
	require.Equal(t, []int64{2, 1, 4}, b.Reduce("reduce_sum", "rsum", x, []int64{1}, true).Shape())
	require.Equal(t, []int64{4}, b.Reduce("reduce_max", "rmax", x, []int64{0, 1}, false).Shape())

	cond := b.Compare("greater", "gt", x, b.ScalarConst(Float32, 0))
	require.Equal(t, Bool, cond.DType())
	sel := b.Select("sel", cond, x, b.ScalarConst(Float32, 0))
	require.Equal(t, []int64{2, 3, 4}, sel.Shape())
	require.NoError(t, b.Err())
	require.Equal(t, 8, b.NumOperations())
}

func TestBroadcastShape(t *testing.T) {
	tests := []struct {
		a, b, want []int64
	}{
		{[]int64{2, 3}, []int64{2, 3}, []int64{2, 3}},
		{[]int64{2, 3}, nil, []int64{2, 3}},
		{[]int64{4, 1, 3}, []int64{5, 1}, []int64{4, 5, 3}},
		{[]int64{1}, []int64{0}, []int64{0}},
	}
	for _, tt := range tests {
		got := broadcastShape(tt.a, tt.b)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("broadcastShape(%v, %v) mismatch (-want +got):\n%s", tt.a, tt.b, diff)
		}
	}
}

func TestConstants(t *testing.T) {
	b := NewBuilder("main")
	half := b.Const(Float16, []int64{3}, []float32{1, 2, 3})
	require.True(t, half.IsConst())
	require.Empty(t, half.Name())
	raw := half.constVal.GetImmediateValue().GetTensor().GetBytes().GetValues()
	// 1.0 in float16 is 0x3C00, little-endian.
	require.Equal(t, []byte{0x00, 0x3C, 0x00, 0x40, 0x00, 0x42}, raw)

	indices := b.ConstOp("indices", Int32, []int64{2}, []int32{0, 1})
	weights := b.BlobConst("weights", Float32, []int64{8, 8}, "@model_path/weights/weights.bin", 64)
	require.NoError(t, b.Err())
	require.Equal(t, "indices", indices.Name())
	require.Equal(t, []int64{8, 8}, weights.Shape())

	ops := b.Operations()
	require.Equal(t, []string{"const", "const"}, opTypes(ops))
	require.Equal(t, []int32{0, 1}, ops[0].Attributes["val"].GetImmediateValue().GetTensor().GetInts().GetValues())
	blobVal := ops[1].Attributes["val"].GetBlobFileValue()
	require.Equal(t, "@model_path/weights/weights.bin", blobVal.GetFileName())
	require.Equal(t, uint64(64), blobVal.GetOffset())
	require.Equal(t, []string{"weights"}, ops[1].Attributes["name"].GetImmediateValue().GetTensor().GetStrings().GetValues())
}
