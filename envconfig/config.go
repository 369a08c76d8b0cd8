// Package envconfig reads the configuration of the webnn-coreml tools from the environment.
//
// Every setting is a function reading its variable on each call, so tests can change
// the environment with t.Setenv.
package envconfig

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"k8s.io/klog/v2"
)

// WorkDir returns the directory where packages are written.
// Configurable via WEBNN_COREML_WORKDIR, the system temporary directory by default.
func WorkDir() string {
	if s := Var("WEBNN_COREML_WORKDIR"); s != "" {
		return s
	}
	return os.TempDir()
}

// Verbosity returns the klog verbosity.
// Configurable via WEBNN_COREML_DEBUG: a boolean enables level 1, an integer sets the level.
func Verbosity() int {
	s := Var("WEBNN_COREML_DEBUG")
	if s == "" {
		return 0
	}
	if b, err := strconv.ParseBool(s); err == nil {
		if b {
			return 1
		}
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	klog.Warningf("invalid WEBNN_COREML_DEBUG=%q, debugging disabled", s)
	return 0
}

// Parallel returns how many graphs are compiled concurrently.
// Configurable via WEBNN_COREML_PARALLEL, GOMAXPROCS by default.
func Parallel() uint {
	n := Uint("WEBNN_COREML_PARALLEL", 0)()
	if n == 0 {
		return uint(runtime.GOMAXPROCS(0))
	}
	return n
}

var (
	// KeepFailed keeps partially written packages. Configurable via WEBNN_COREML_KEEP_FAILED.
	KeepFailed = Bool("WEBNN_COREML_KEEP_FAILED")
	// SpecificationVersion overrides the CoreML specification version of the written models.
	// Configurable via WEBNN_COREML_SPEC_VERSION, 0 keeps the default.
	SpecificationVersion = Uint("WEBNN_COREML_SPEC_VERSION", 0)
)

// Var returns the environment variable key, trimmed of spaces and quotes.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// BoolWithDefault returns a function reading the boolean variable k. A value that does not
// parse counts as true.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool returns a function reading the boolean variable k, false by default.
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// Uint returns a function reading the unsigned integer variable key.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				klog.Warningf("invalid environment variable %s=%q, using the default %d", key, s, defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// EnvVar is a configuration variable with its current value.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every configuration variable keyed by name.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"WEBNN_COREML_WORKDIR":      {"WEBNN_COREML_WORKDIR", WorkDir(), "Directory where packages are written (default: the temporary directory)"},
		"WEBNN_COREML_DEBUG":        {"WEBNN_COREML_DEBUG", Verbosity(), "Log verbosity (e.g. WEBNN_COREML_DEBUG=1)"},
		"WEBNN_COREML_PARALLEL":     {"WEBNN_COREML_PARALLEL", Parallel(), "Maximum number of graphs compiled concurrently"},
		"WEBNN_COREML_KEEP_FAILED":  {"WEBNN_COREML_KEEP_FAILED", KeepFailed(), "Keep partially written packages"},
		"WEBNN_COREML_SPEC_VERSION": {"WEBNN_COREML_SPEC_VERSION", SpecificationVersion(), "CoreML specification version of the models (default: 8)"},
	}
}

// Values returns the current value of every configuration variable as a string.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
