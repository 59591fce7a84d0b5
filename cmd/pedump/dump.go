package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/spf13/cobra"

	"github.com/veilmont/pedump/pe"
)

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file>",
		Short: "Decode and pretty-print the PE headers of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args[0])
		},
	}
}

func runDump(path string) error {
	headers, err := decodeFile(path)
	if err != nil {
		return err
	}
	return render(os.Stdout, path, headers)
}

// decodeFile decodes the headers of the file at path, memory-mapping the
// input when --mmap is set.
func decodeFile(path string) (*pe.Headers, error) {
	var opts []pe.Option
	if flagVerbose {
		opts = append(opts, pe.WithDump(os.Stderr))
	}

	if !flagMmap {
		return pe.Open(path, opts...)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	defer m.Unmap()

	return pe.DecodeHeaders(bytes.NewReader(m), opts...)
}
