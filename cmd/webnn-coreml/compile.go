package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gomlx/webnn-coreml/coreml"
	"github.com/gomlx/webnn-coreml/envconfig"
	"github.com/gomlx/webnn-coreml/webnn"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// compileResult is the outcome of compiling one graph file.
type compileResult struct {
	file   string
	result *coreml.Result
	err    error
}

func newCompileCmd() *cobra.Command {
	compileCmd := &cobra.Command{
		Use:   "compile GRAPH.json...",
		Short: "Compile WebNN graphs to .mlpackage directories",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compileHandler,
	}
	compileCmd.Flags().String("workdir", "", "Directory where the packages are written (default $WEBNN_COREML_WORKDIR or the temporary directory)")
	compileCmd.Flags().Uint("parallel", 0, "Maximum number of graphs compiled concurrently (default $WEBNN_COREML_PARALLEL or GOMAXPROCS)")
	compileCmd.Flags().Int32("spec-version", 0, "CoreML specification version of the models (default $WEBNN_COREML_SPEC_VERSION or 8)")
	compileCmd.Flags().Bool("keep-failed", false, "Keep partially written packages (default $WEBNN_COREML_KEEP_FAILED)")
	return compileCmd
}

// compileOptions returns the coreml options from the flags, falling back to the
// environment.
func compileOptions(cmd *cobra.Command) ([]coreml.Option, error) {
	var opts []coreml.Option
	version, err := cmd.Flags().GetInt32("spec-version")
	if err != nil {
		return nil, err
	}
	if version == 0 {
		version = int32(envconfig.SpecificationVersion())
	}
	if version != 0 {
		opts = append(opts, coreml.WithSpecificationVersion(version))
	}

	keep := envconfig.KeepFailed()
	if cmd.Flags().Changed("keep-failed") {
		if keep, err = cmd.Flags().GetBool("keep-failed"); err != nil {
			return nil, err
		}
	}
	opts = append(opts, coreml.WithKeepPackageOnError(keep))
	return opts, nil
}

func compileHandler(cmd *cobra.Command, args []string) error {
	workDir, err := cmd.Flags().GetString("workdir")
	if err != nil {
		return err
	}
	if workDir == "" {
		workDir = envconfig.WorkDir()
	}
	parallel, err := cmd.Flags().GetUint("parallel")
	if err != nil {
		return err
	}
	if parallel == 0 {
		parallel = envconfig.Parallel()
	}
	opts, err := compileOptions(cmd)
	if err != nil {
		return err
	}

	results := compileFiles(args, workDir, int(parallel), opts)
	table := newTable(cmd, "GRAPH", "PACKAGE", "INPUTS", "OUTPUTS", "STATUS")
	var failed int
	for _, r := range results {
		if r.err != nil {
			failed++
			table.Append([]string{r.file, "-", "-", "-", r.err.Error()})
			continue
		}
		table.Append([]string{
			r.file,
			r.result.PackagePath,
			inputNames(r.result.Inputs, r.result.Placeholder),
			outputNames(r.result.Outputs),
			"ok",
		})
	}
	table.Render()
	if failed > 0 {
		return errors.Errorf("%d of %d graphs failed to compile", failed, len(results))
	}
	return nil
}

// compileFiles compiles every graph file into workDir, at most parallel at a time. The
// results are in the order of files.
func compileFiles(files []string, workDir string, parallel int, opts []coreml.Option) []compileResult {
	results := make([]compileResult, len(files))
	var g errgroup.Group
	g.SetLimit(max(parallel, 1))
	for i, file := range files {
		g.Go(func() error {
			results[i] = compileFile(file, workDir, opts)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func compileFile(file, workDir string, opts []coreml.Option) compileResult {
	r := compileResult{file: file}
	graph, err := webnn.LoadGraphJSON(file)
	if err != nil {
		r.err = err
		return r
	}
	r.result, r.err = coreml.CreateAndBuild(graph, workDir, opts...)
	if r.err != nil {
		klog.V(1).Infof("%s: %v", file, r.err)
	} else {
		klog.V(1).Infof("%s: compiled to %s", file, filepath.Base(r.result.PackagePath))
	}
	return r
}

func inputNames(inputs []coreml.InputInfo, placeholder bool) string {
	if placeholder {
		return "(placeholder)"
	}
	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = fmt.Sprintf("%s%v", in.MILName, in.Shape)
	}
	return strings.Join(names, ", ")
}

func outputNames(outputs []coreml.OutputInfo) string {
	names := make([]string, len(outputs))
	for i, out := range outputs {
		names[i] = fmt.Sprintf("%s%v", out.MILName, out.Shape)
	}
	return strings.Join(names, ", ")
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate GRAPH.json...",
		Short: "Check that WebNN graphs can be lowered to CoreML, without writing packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := newTable(cmd, "GRAPH", "OPERATIONS", "MIL OPERATIONS", "STATUS")
			var failed int
			for _, file := range args {
				row, err := validateFile(file)
				if err != nil {
					failed++
				}
				table.Append(row)
			}
			table.Render()
			if failed > 0 {
				return errors.Errorf("%d of %d graphs cannot be lowered", failed, len(args))
			}
			return nil
		},
	}
}

// validateFile lowers the graph in file and returns its table row.
func validateFile(file string) ([]string, error) {
	graph, err := webnn.LoadGraphJSON(file)
	if err != nil {
		return []string{file, "-", "-", err.Error()}, err
	}
	numOps := fmt.Sprint(len(graph.Operations))
	lowered, err := coreml.Lower(graph)
	if err != nil {
		return []string{file, numOps, "-", err.Error()}, err
	}
	var milOps int
	for _, fn := range lowered.Model.GetMlProgram().GetFunctions() {
		for _, block := range fn.GetBlockSpecializations() {
			milOps += len(block.GetOperations())
		}
	}
	return []string{file, numOps, fmt.Sprint(milOps), "ok"}, nil
}
