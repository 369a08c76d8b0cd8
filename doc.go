// Package webnncoreml compiles WebNN graphs to CoreML ML Programs.
//
// A WebNN graph (operands, constant buffers and an ordered list of operations) is
// validated, lowered to MIL (Model Intermediate Language) operations and written as a
// self-contained .mlpackage directory that CoreML can compile and run.
//
// # Architecture
//
// The module is organized into several packages:
//
//   - webnn: the graph description, data types, operand descriptors and operations
//   - validation: shape and data type inference of every WebNN operation
//   - blob: the weights.bin file holding the constants of a model
//   - model: MIL program building and .mlpackage writing
//   - coreml: lowering of a graph, operation by operation, and the package driver
//   - envconfig: configuration read from WEBNN_COREML_* environment variables
//   - cmd/webnn-coreml: command line tool compiling JSON graph files
//
// # Usage
//
//	import "github.com/gomlx/webnn-coreml/coreml"
//
//	graph, err := webnn.LoadGraphJSON("graph.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := coreml.CreateAndBuild(graph, workingDir)
//	if coreml.IsNotSupported(err) {
//	    // Fall back to another backend.
//	}
//	fmt.Println(result.PackagePath)
//
// The written package is laid out as:
//
//	<uuid>.mlpackage/Manifest.json
//	<uuid>.mlpackage/Data/model.mlmodel
//	<uuid>.mlpackage/Data/weights/weights.bin
//
// Compiling and running the package requires macOS and is not done by this module.
package webnncoreml
