package replcmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dsmmcken/memscan/internal/engine"
)

// Run drives the command loop: read a line, skip blanks and comments,
// dispatch the lowercase first token, log and continue on error. It
// returns when the input is exhausted or the exit command ran.
func Run(e *engine.Engine, in io.Reader, output io.Writer, log *logrus.Logger, historyPath string) error {
	SetOutput(output)
	hist := openHistory(historyPath, log)
	defer hist.Close()

	scanner := bufio.NewScanner(in)
	fmt.Fprint(output, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "/") {
			fmt.Fprint(output, "> ")
			continue
		}
		hist.append(line)

		fields := strings.Fields(line)
		token, args := strings.ToLower(fields[0]), fields[1:]

		handler, ok := lookupHandler(token)
		if !ok {
			log.Warnf("unknown command %q; try 'help'", token)
			fmt.Fprint(output, "> ")
			continue
		}

		if err := handler(e, args); err != nil {
			log.WithError(err).Warn("command failed")
		}
		if token == "exit" || token == "quit" {
			return nil
		}
		fmt.Fprint(output, "> ")
	}
	return scanner.Err()
}
