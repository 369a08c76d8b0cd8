package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/emirpasic/gods/v2/maps/treemap"
	"github.com/gomlx/go-coreml/proto/coreml/milspec"
	"github.com/gomlx/go-coreml/proto/coreml/spec"
	"github.com/gomlx/webnn-coreml/blob"
	"github.com/gomlx/webnn-coreml/model"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
)

func newInspectCmd() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect PACKAGE.mlpackage",
		Short: "Show the features, operations and weights of a written package",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectHandler,
	}
	inspectCmd.Flags().Bool("text", false, "Print the whole model in protobuf text format")
	return inspectCmd
}

// loadPackage reads the model and the weights of the package at packagePath.
func loadPackage(packagePath string) (*spec.Model, []blob.Entry, error) {
	dataDir := filepath.Join(packagePath, model.DataDir)
	data, err := os.ReadFile(filepath.Join(dataDir, model.ModelFileName))
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading the model")
	}
	m := &spec.Model{}
	if err := proto.Unmarshal(data, m); err != nil {
		return nil, nil, errors.Wrapf(err, "parsing %s", model.ModelFileName)
	}
	entries, err := blob.ReadFile(filepath.Join(dataDir, model.WeightsDir, blob.FileName))
	if err != nil {
		return nil, nil, err
	}
	return m, entries, nil
}

func inspectHandler(cmd *cobra.Command, args []string) error {
	m, entries, err := loadPackage(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if text, _ := cmd.Flags().GetBool("text"); text {
		fmt.Fprintln(out, prototext.MarshalOptions{Multiline: true, Indent: "  "}.Format(m))
		return nil
	}

	fmt.Fprintf(out, "Specification version: %d\n\n", m.GetSpecificationVersion())
	table := newTable(cmd, "FEATURE", "NAME", "TYPE", "SHAPE")
	for _, f := range m.GetDescription().GetInput() {
		table.Append(featureRow("input", f))
	}
	for _, f := range m.GetDescription().GetOutput() {
		table.Append(featureRow("output", f))
	}
	table.Render()
	fmt.Fprintln(out)

	table = newTable(cmd, "FUNCTION", "OPERATION", "COUNT")
	table.AppendBulk(operationCounts(m.GetMlProgram()))
	table.Render()
	fmt.Fprintln(out)

	table = newTable(cmd, "OFFSET", "TYPE", "BYTES")
	for _, entry := range entries {
		table.Append([]string{fmt.Sprint(entry.MetadataOffset), entry.DataType().String(), fmt.Sprint(len(entry.Data))})
	}
	table.Render()
	return nil
}

// operationCounts returns the number of operations of each type, per function, sorted by
// function name and operation type.
func operationCounts(program *milspec.Program) [][]string {
	functions := treemap.New[string, *milspec.Function]()
	for fnName, fn := range program.GetFunctions() {
		functions.Put(fnName, fn)
	}
	var rows [][]string
	fnIt := functions.Iterator()
	for fnIt.Next() {
		counts := treemap.New[string, int]()
		for _, block := range fnIt.Value().GetBlockSpecializations() {
			for _, op := range block.GetOperations() {
				n, _ := counts.Get(op.GetType())
				counts.Put(op.GetType(), n+1)
			}
		}
		it := counts.Iterator()
		for it.Next() {
			rows = append(rows, []string{fnIt.Key(), it.Key(), fmt.Sprint(it.Value())})
		}
	}
	return rows
}

func featureRow(kind string, f *spec.FeatureDescription) []string {
	array := f.GetType().GetMultiArrayType()
	if array == nil {
		return []string{kind, f.GetName(), "-", "-"}
	}
	return []string{kind, f.GetName(), array.GetDataType().String(), fmt.Sprint(array.GetShape())}
}
