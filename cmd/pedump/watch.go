package main

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file> [file...]",
		Short: "Re-decode and re-print headers whenever a watched file changes",
		Long: `watch decodes each file once, then re-decodes on every write or
create event. A decode failure is reported and watching continues.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, path := range args {
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		if err := runDump(path); err != nil {
			fmt.Fprintf(os.Stderr, "decode %s: %v\n", path, err)
		}
	}

	fmt.Fprintf(os.Stderr, "watching %d file(s), ctrl-c to stop\n", len(args))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Printf("\n--- %s changed ---\n", event.Name)
			if err := runDump(event.Name); err != nil {
				fmt.Fprintf(os.Stderr, "decode %s: %v\n", event.Name, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}
