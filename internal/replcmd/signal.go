package replcmd

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/dsmmcken/memscan/internal/engine"
)

// activeEngine is a process-wide, non-owning reference to the Engine
// currently driving the REPL. The signal handler only ever reads it; it
// never affects the Engine's lifetime.
var activeEngine atomic.Pointer[engine.Engine]

// InstallSignalHandler hands the handler a weak reference to e and starts a
// goroutine that terminates cleanly on SIGINT/SIGTERM/SIGHUP/SIGQUIT: each
// one terminates freeze workers, detaches, and exits 1. SIGSEGV is
// deliberately not caught — recovering from it inside the Go runtime cannot
// be done safely, and a corrupted target-memory state is not something the
// REPL should try to paper over.
func InstallSignalHandler(e *engine.Engine, log *logrus.Logger) {
	activeEngine.Store(e)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	go func() {
		sig := <-ch
		log.Warnf("received %v, shutting down", sig)
		if eng := activeEngine.Load(); eng != nil {
			if err := eng.Exit(); err != nil {
				log.WithError(err).Warn("exit during signal shutdown failed")
			}
		}
		os.Exit(1)
	}()
}
