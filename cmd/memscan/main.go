// Command memscan is an interactive external-process memory scanner and
// patcher: attach to a pid, search its writable regions for candidate
// values, refine the candidate set, and optionally freeze or rewrite
// matches.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dsmmcken/memscan/internal/config"
	"github.com/dsmmcken/memscan/internal/engine"
	"github.com/dsmmcken/memscan/internal/memio"
	"github.com/dsmmcken/memscan/internal/output"
	"github.com/dsmmcken/memscan/internal/replcmd"
)

var (
	pidFlag              int
	withoutPtraceFlag    bool
	windowsLineReader    bool
	verboseFlag          bool
	quietFlag            bool
	configDirFlag        string
	freezeIntervalMSFlag int
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "memscan",
		Short:         "Interactive external-process memory scanner and patcher",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verboseFlag && quietFlag {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}
			if pidFlag <= 0 {
				return fmt.Errorf("-p <pid> is required")
			}
			output.SetVerbosity(verboseFlag, quietFlag)
			return nil
		},
		RunE: runRepl,
	}

	flags := root.Flags()
	flags.IntVarP(&pidFlag, "pid", "p", 0, "target process id (required)")
	flags.BoolVarP(&withoutPtraceFlag, "without-ptrace", "w", false, "attach-less mode: write through /proc/<pid>/mem directly, required for freeze")
	flags.BoolVarP(&windowsLineReader, "windows-line-reader", "l", false, "use the Windows-style line reader")
	flags.IntVar(&freezeIntervalMSFlag, "freeze-interval-ms", 0, "freeze rewrite interval in milliseconds (default 1)")

	pflags := root.PersistentFlags()
	pflags.BoolVarP(&verboseFlag, "verbose", "v", false, "extra detail to stderr")
	pflags.BoolVarP(&quietFlag, "quiet", "q", false, "suppress non-essential output")
	pflags.StringVar(&configDirFlag, "config-dir", "", "override config directory (default: ~/.memscan)")

	return root
}

func runRepl(cmd *cobra.Command, args []string) error {
	log := output.Logger()

	config.SetConfigDir(configDirFlag)
	resolved, err := config.Resolve("", freezeIntervalMSFlag)
	if err != nil {
		return err
	}

	if withoutPtraceFlag {
		log.Info("Without Ptrace Mode")
	}
	if windowsLineReader {
		log.Info("Windows Mode")
	}

	port := memio.New(pidFlag, withoutPtraceFlag)
	eng := engine.New(port, engine.Options{
		StoragePrefix:  resolved.StoragePrefix,
		FreezeInterval: resolved.FreezeInterval,
		IgnoreExtra:    resolved.IgnoreExtra,
		Log:            log,
	})

	replcmd.InstallSignalHandler(eng, log)

	historyPath := filepath.Join(resolved.StoragePrefix, "mempatch_history.txt")
	if err := replcmd.Run(eng, os.Stdin, os.Stdout, log, historyPath); err != nil {
		return err
	}
	return eng.Exit()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(output.ExitError)
	}
}
