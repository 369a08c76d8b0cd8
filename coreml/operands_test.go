package coreml

import (
	"testing"

	"github.com/gomlx/webnn-coreml/model"
	"github.com/gomlx/webnn-coreml/webnn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	for input, want := range map[string]string{
		"input":        "input",
		"my input:0":   "myinput0",
		"a-b.c/d":      "abcd",
		"keep_@_chars": "keep_@_chars",
		"ünïcode":      "ncode",
		"":             "",
	} {
		require.Equal(t, want, sanitize(input), "sanitize(%q)", input)
	}
}

func TestOperandName(t *testing.T) {
	f := f32(2)
	tests := []struct {
		id      webnn.OperandID
		operand webnn.Operand
		want    string
	}{
		{1, webnn.Operand{Kind: webnn.KindInput, Descriptor: f, Name: "x:0"}, "input_x0_1"},
		{7, webnn.Operand{Kind: webnn.KindOutput, Descriptor: f, Name: "logits"}, "output_logits_7"},
		{8, webnn.Operand{Kind: webnn.KindOutput, Descriptor: f}, "output_8"},
		{3, webnn.Operand{Kind: webnn.KindConstant, Descriptor: f}, "var_3"},
		{4, webnn.Operand{Kind: webnn.KindIntermediate, Descriptor: f, Name: "hidden"}, "var_4"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, operandName(tc.id, tc.operand))
	}
}

func TestOperandArena(t *testing.T) {
	a := newOperandArena()
	require.Equal(t, "internal_0", a.internalName())
	require.Equal(t, "internal_1", a.internalName())

	b := model.NewBuilder("main")
	input := b.Input("input_x_1", model.Float32, 1)
	scalar := b.Reshape(a.internalName(), input, []int64{})
	_, found := a.lookup(1)
	require.False(t, found)

	a.bind(1, input, f32())
	a.bind(1, scalar, f32())
	info, found := a.lookup(1)
	require.True(t, found)
	require.Equal(t, "internal_2", info.name)
	require.Empty(t, info.dims)
	require.Equal(t, model.Float32, info.dtype)
	require.Len(t, a.infos, 2)
}

func TestErrors(t *testing.T) {
	err := notSupported("%s is not supported", "gru")
	require.True(t, IsNotSupported(err))
	require.False(t, IsUnknown(err))
	require.Equal(t, "NotSupported: gru is not supported", err.Error())

	err = withContext(err, "operation #%d (%s)", 2, "gru")
	require.True(t, IsNotSupported(err))
	require.Equal(t, "NotSupported: operation #2 (gru): gru is not supported", err.Error())

	cause := errors.New("disk full")
	err = wrapError(CodeUnknown, cause, "writing %s", "weights.bin")
	require.True(t, IsUnknown(errors.Wrap(err, "build")))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "Unknown: writing weights.bin: disk full", err.Error())

	err = withContext(cause, "lowering")
	require.True(t, IsUnknown(err))
}
