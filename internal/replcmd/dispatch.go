// Package replcmd implements the command loop: a bufio.Scanner reading
// lines, a lowercase-token dispatch table with short aliases, plain-text
// history, and the process-wide signal handler that hands the REPL's
// Engine a clean shutdown path.
package replcmd

import (
	"strings"

	"github.com/dsmmcken/memscan/internal/engine"
)

// Handler executes one parsed command against e.
type Handler func(e *engine.Engine, args []string) error

// dispatch maps the lowercase command token to its Handler. l/f/c are the
// short aliases for lookup/filter/change, recovered from the original
// command table.
var dispatch = map[string]Handler{
	"attach":           handleAttach,
	"detach":           handleDetach,
	"lookup":           handleLookup,
	"l":                handleLookup,
	"filter":           handleFilter,
	"f":                handleFilter,
	"pair_filter":      handlePairFilter,
	"change":           handleChange,
	"c":                handleChange,
	"replace":          handleReplace,
	"diff":             handleDiff,
	"scope":            handleScope,
	"clear":            handleClear,
	"save":             handleSave,
	"load":             handleLoad,
	"dump":             handleDump,
	"dumpall":          handleDumpAll,
	"freeze":           handleFreeze,
	"freeze_terminate": handleFreezeTerminate,
	"result":           handleResult,
	"help":             handleHelp,
	"exit":             handleExit,
	"quit":             handleExit,
}

// lookupHandler resolves a lowercase command token to its Handler.
func lookupHandler(token string) (Handler, bool) {
	h, ok := dispatch[strings.ToLower(token)]
	return h, ok
}
