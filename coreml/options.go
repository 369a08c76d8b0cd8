package coreml

import "github.com/gomlx/webnn-coreml/model"

type config struct {
	opset                string
	specificationVersion int32
	functionName         string
	keepPackageOnError   bool
}

func newConfig(opts []Option) *config {
	c := &config{
		opset:                "CoreML7",
		specificationVersion: model.DefaultOptions().SpecificationVersion,
		functionName:         "main",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures the lowering of a graph.
type Option func(*config)

// WithOpset sets the MIL operation set of the program, "CoreML7" by default.
func WithOpset(opset string) Option {
	return func(c *config) {
		c.opset = opset
	}
}

// WithSpecificationVersion sets the CoreML model specification version, 8 by default.
func WithSpecificationVersion(version int32) Option {
	return func(c *config) {
		c.specificationVersion = version
	}
}

// WithFunctionName sets the name of the MIL function, "main" by default.
func WithFunctionName(name string) Option {
	return func(c *config) {
		c.functionName = name
	}
}

// WithKeepPackageOnError keeps a partially written package directory when writing it
// fails. By default it is removed.
func WithKeepPackageOnError(keep bool) Option {
	return func(c *config) {
		c.keepPackageOnError = keep
	}
}
