package envconfig

import (
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkDir(t *testing.T) {
	t.Setenv("WEBNN_COREML_WORKDIR", "")
	require.Equal(t, os.TempDir(), WorkDir())
	t.Setenv("WEBNN_COREML_WORKDIR", " '/tmp/packages' ")
	require.Equal(t, "/tmp/packages", WorkDir())
}

func TestVerbosity(t *testing.T) {
	cases := map[string]int{
		"":      0,
		"false": 0,
		"0":     0,
		"true":  1,
		"1":     1,
		"3":     3,
		"-2":    0,
		"loud":  0,
	}
	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("WEBNN_COREML_DEBUG", value)
			require.Equal(t, want, Verbosity())
		})
	}
}

func TestParallel(t *testing.T) {
	t.Setenv("WEBNN_COREML_PARALLEL", "")
	require.Equal(t, uint(runtime.GOMAXPROCS(0)), Parallel())
	t.Setenv("WEBNN_COREML_PARALLEL", "3")
	require.Equal(t, uint(3), Parallel())
	t.Setenv("WEBNN_COREML_PARALLEL", "many")
	require.Equal(t, uint(runtime.GOMAXPROCS(0)), Parallel())
}

func TestBool(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"false": false,
		"0":     false,
		"true":  true,
		"1":     true,
		"yes":   true,
	}
	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("WEBNN_COREML_KEEP_FAILED", value)
			require.Equal(t, want, KeepFailed())
		})
	}
}

func TestValues(t *testing.T) {
	t.Setenv("WEBNN_COREML_SPEC_VERSION", "9")
	t.Setenv("WEBNN_COREML_PARALLEL", "2")
	values := Values()
	require.Len(t, values, len(AsMap()))
	require.Equal(t, "9", values["WEBNN_COREML_SPEC_VERSION"])
	require.Equal(t, "2", values["WEBNN_COREML_PARALLEL"])
}
