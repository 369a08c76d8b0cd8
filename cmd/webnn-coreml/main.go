// webnn-coreml compiles WebNN graphs, given as JSON files, to CoreML .mlpackage directories.
//
// Usage:
//
//	webnn-coreml compile [--workdir DIR] graph.json...
//	webnn-coreml validate graph.json...
//	webnn-coreml inspect [--text] DIR.mlpackage
//	webnn-coreml env
//
// Configuration defaults are read from the WEBNN_COREML_* environment variables, see
// `webnn-coreml env`.
package main

import (
	"flag"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/gomlx/webnn-coreml/envconfig"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

// klogFlags holds the klog flags (-v, --logtostderr, ...) shared by every command.
var klogFlags = flag.NewFlagSet("klog", flag.ContinueOnError)

func init() {
	klog.InitFlags(klogFlags)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "webnn-coreml",
		Short:         "Compile WebNN graphs to CoreML packages",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("v") {
				return nil
			}
			if v := envconfig.Verbosity(); v > 0 {
				return klogFlags.Set("v", strconv.Itoa(v))
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)

	rootCmd.AddCommand(
		newCompileCmd(),
		newValidateCmd(),
		newInspectCmd(),
		newEnvCmd(),
	)
	return rootCmd
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show the configuration read from the environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vars := envconfig.AsMap()
			var data [][]string
			for _, name := range slices.Sorted(maps.Keys(vars)) {
				v := vars[name]
				data = append(data, []string{name, fmt.Sprintf("%v", v.Value), v.Description})
			}
			table := newTable(cmd, "NAME", "VALUE", "DESCRIPTION")
			table.AppendBulk(data)
			table.Render()
			return nil
		},
	}
}

// newTable returns a borderless table writing to the command output.
func newTable(cmd *cobra.Command, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

func main() {
	defer klog.Flush()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		klog.Flush()
		os.Exit(1)
	}
}
