package replcmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dsmmcken/memscan/internal/engine"
	"github.com/dsmmcken/memscan/internal/memaddr"
	"github.com/dsmmcken/memscan/internal/typedval"
)

// out is where handlers print command results; Run redirects it to whatever
// writer the caller supplied.
var out io.Writer = os.Stdout

// SetOutput redirects handler output.
func SetOutput(w io.Writer) {
	out = w
}

func printf(format string, args ...any) {
	fmt.Fprintf(out, format, args...)
}

func parseAddr(s string) (memaddr.Address, error) {
	s = strings.ReplaceAll(s, "_", "")
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("bad address %q: %w", s, err)
	}
	return memaddr.Address(v), nil
}

func parseTyped(typeToken string, valueFields []string) (typedval.TypedValue, error) {
	typ := typedval.ParseType(strings.ToLower(typeToken))
	if typ == typedval.Invalid {
		return typedval.TypedValue{}, fmt.Errorf("unknown type %q", typeToken)
	}
	text := strings.Join(valueFields, " ")
	return typedval.New(typ, text)
}

func defaultPath(e *engine.Engine, args []string, name string) string {
	if len(args) > 0 {
		return args[0]
	}
	return filepath.Join(e.StoragePrefix(), name)
}

func handleAttach(e *engine.Engine, args []string) error {
	return e.Attach()
}

func handleDetach(e *engine.Engine, args []string) error {
	return e.Detach()
}

func handleLookup(e *engine.Engine, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: lookup <type> <value>")
	}
	tv, err := parseTyped(args[0], args[1:])
	if err != nil {
		return err
	}
	if err := e.Lookup(tv); err != nil {
		return err
	}
	printf("lookup: %d candidates\n", len(e.Candidates()))
	return nil
}

func handleFilter(e *engine.Engine, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: filter <type> <value>")
	}
	tv, err := parseTyped(args[0], args[1:])
	if err != nil {
		return err
	}
	if err := e.Filter(tv); err != nil {
		return err
	}
	printf("filter: %d candidates\n", len(e.Candidates()))
	return nil
}

func handlePairFilter(e *engine.Engine, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: pair_filter <type> <value> <k>")
	}
	k, err := strconv.Atoi(args[len(args)-1])
	if err != nil {
		return fmt.Errorf("bad k %q: %w", args[len(args)-1], err)
	}
	tv, err := parseTyped(args[0], args[1:len(args)-1])
	if err != nil {
		return err
	}
	if err := e.PairFilter(tv, k); err != nil {
		return err
	}
	printf("pair_filter: %d candidates\n", len(e.Candidates()))
	return nil
}

func handleChange(e *engine.Engine, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: change <type> <value>")
	}
	tv, err := parseTyped(args[0], args[1:])
	if err != nil {
		return err
	}
	return e.Change(tv)
}

func handleReplace(e *engine.Engine, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: replace <addr> <type> <value>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	tv, err := parseTyped(args[1], args[2:])
	if err != nil {
		return err
	}
	before := tv.String()
	if err := e.Replace(addr, tv); err != nil {
		return err
	}
	printf("Change: %v -> %s\n", addr, before)
	return nil
}

func handleDiff(e *engine.Engine, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: diff <start|upper|lower|same|change|end>")
	}
	if err := e.Diff(strings.ToLower(args[0])); err != nil {
		return err
	}
	printf("diff %s: %d candidates\n", args[0], len(e.Candidates()))
	return nil
}

func handleScope(e *engine.Engine, args []string) error {
	e.Scope(strings.Join(args, " "))
	return nil
}

func handleClear(e *engine.Engine, args []string) error {
	e.Clear()
	return nil
}

func handleSave(e *engine.Engine, args []string) error {
	return e.Save(defaultPath(e, args, "mempatch_state.txt"))
}

func handleLoad(e *engine.Engine, args []string) error {
	return e.Load(defaultPath(e, args, "mempatch_state.txt"))
}

func handleDump(e *engine.Engine, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: dump <hexaddr> <hexlen>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	length, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 64)
	if err != nil {
		return fmt.Errorf("bad length %q: %w", args[1], err)
	}
	text, err := e.Dump(addr, length)
	if err != nil {
		return err
	}
	printf("%s\n", text)
	return nil
}

func handleDumpAll(e *engine.Engine, args []string) error {
	return e.DumpAll(defaultPath(e, args, "mempatch_dump.dat"))
}

func handleFreeze(e *engine.Engine, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: freeze <addr> <type> <value>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	tv, err := parseTyped(args[1], args[2:])
	if err != nil {
		return err
	}
	return e.Freeze(addr, tv)
}

func handleFreezeTerminate(e *engine.Engine, args []string) error {
	return e.FreezeTerminate()
}

func handleResult(e *engine.Engine, args []string) error {
	printf("%s", e.Result())
	return nil
}

func handleHelp(e *engine.Engine, args []string) error {
	printf("%s", engine.Help())
	return nil
}

func handleExit(e *engine.Engine, args []string) error {
	return e.Exit()
}
