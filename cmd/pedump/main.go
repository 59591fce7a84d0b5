package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
	"go.uber.org/zap"

	"github.com/veilmont/pedump/pe"
)

var (
	flagVerbose bool
	flagNoColor bool
	flagMmap    bool
	flagDebug   bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pedump [file]",
		Short: "Inspect the header region of Windows PE files",
		Long: `pedump decodes the header region of a Windows Portable Executable:
the DOS marker, the COFF file header, and the PE optional header with
its data-directory table. Nothing past the directory table is touched.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug || env.Bool("PEDUMP_DEBUG") {
				if l, err := zap.NewDevelopment(); err == nil {
					pe.SetLogger(l)
				}
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runDump(args[0])
		},
	}

	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"emit the decoder's section-by-section dump to stderr")
	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false,
		"disable colored output")
	root.PersistentFlags().BoolVar(&flagMmap, "mmap", false,
		"memory-map the input file instead of buffered reads")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"enable the library's debug logging")

	root.AddCommand(newDumpCmd(), newWatchCmd(), newBrowseCmd())
	return root
}
