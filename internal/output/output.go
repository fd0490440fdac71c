// Package output wires the process-wide logger and exit-code constants
// shared by the engine and the REPL.
package output

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Exit codes, per the two-code model: a clean shutdown exits 0, anything
// terminated by a signal or an unrecoverable usage/target error exits 1.
const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitInterrupted = 1
)

var log = logrus.New()

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
}

// Logger returns the process-wide logger used by the engine and the REPL.
func Logger() *logrus.Logger {
	return log
}

// SetVerbosity maps -v/-q flags onto a logrus level: verbose requests
// Debug, quiet requests Warn, neither leaves the default Info.
func SetVerbosity(verbose, quiet bool) {
	switch {
	case verbose:
		log.SetLevel(logrus.DebugLevel)
	case quiet:
		log.SetLevel(logrus.WarnLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
}
