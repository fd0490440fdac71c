package replcmd

import (
	"os"

	"github.com/sirupsen/logrus"
)

// historyFile appends every accepted command line to a plain-text file, one
// per line, the way the original tool's LineReader persisted session
// history.
type historyFile struct {
	f   *os.File
	log *logrus.Logger
}

// openHistory opens path for append, creating it if necessary. A failure to
// open is logged and history is simply disabled for the session; it never
// blocks the REPL.
func openHistory(path string, log *logrus.Logger) *historyFile {
	if path == "" {
		return &historyFile{log: log}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.WithError(err).Warn("history: could not open history file; continuing without it")
		return &historyFile{log: log}
	}
	return &historyFile{f: f, log: log}
}

func (h *historyFile) append(line string) {
	if h.f == nil {
		return
	}
	if _, err := h.f.WriteString(line + "\n"); err != nil {
		h.log.WithError(err).Warn("history: write failed")
	}
}

func (h *historyFile) Close() error {
	if h.f == nil {
		return nil
	}
	return h.f.Close()
}
