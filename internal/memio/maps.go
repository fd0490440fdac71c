package memio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dsmmcken/memscan/internal/memaddr"
)

// MapsLine is one parsed record of /proc/<pid>/maps (or the Windows
// backend's synthetic equivalent): start-end perms offset dev inode
// pathname.
type MapsLine struct {
	Start, End memaddr.Address
	Perms      string
	Pathname   string
}

// ParseMapsLine parses a single /proc/<pid>/maps line of the form
// "start-end perms offset dev inode pathname". The pathname field is
// optional (anonymous mappings have none) and, when present, may contain
// spaces itself in rare cases, so it is taken as everything remaining
// after the fifth field.
func ParseMapsLine(line string) (MapsLine, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return MapsLine{}, fmt.Errorf("memio: malformed maps line %q", line)
	}

	addrRange := strings.SplitN(fields[0], "-", 2)
	if len(addrRange) != 2 {
		return MapsLine{}, fmt.Errorf("memio: malformed address range %q", fields[0])
	}
	start, err := strconv.ParseUint(addrRange[0], 16, 64)
	if err != nil {
		return MapsLine{}, fmt.Errorf("memio: parse start address: %w", err)
	}
	end, err := strconv.ParseUint(addrRange[1], 16, 64)
	if err != nil {
		return MapsLine{}, fmt.Errorf("memio: parse end address: %w", err)
	}

	var pathname string
	if len(fields) > 5 {
		idx := indexNthField(line, 5)
		pathname = strings.TrimSpace(line[idx:])
	}

	return MapsLine{
		Start:    memaddr.Address(start),
		End:      memaddr.Address(end),
		Perms:    fields[1],
		Pathname: pathname,
	}, nil
}

// indexNthField returns the byte offset in line where the (0-indexed) nth
// whitespace-delimited field begins.
func indexNthField(line string, n int) int {
	inField := false
	count := -1
	for i, c := range line {
		isSpace := c == ' ' || c == '\t'
		if !isSpace && !inField {
			inField = true
			count++
			if count == n {
				return i
			}
		}
		if isSpace {
			inField = false
		}
	}
	return len(line)
}

// Acceptable reports whether a maps line's permission bits make the region
// eligible at all: readable, writable, and not shared-mapped
// (perms[0]=='r' && perms[1]=='w' && perms[3]!='s').
func (m MapsLine) Acceptable() bool {
	if len(m.Perms) < 4 {
		return false
	}
	return m.Perms[0] == 'r' && m.Perms[1] == 'w' && m.Perms[3] != 's'
}

// Ignored reports whether m's pathname matches any ignore-list prefix
// substring.
func (m MapsLine) Ignored(ignoreList []string) bool {
	for _, prefix := range ignoreList {
		if strings.Contains(m.Pathname, prefix) {
			return true
		}
	}
	return false
}

// InScope reports whether m's pathname contains scope as a substring, or
// is always true when scope is empty.
func (m MapsLine) InScope(scope string) bool {
	if scope == "" {
		return true
	}
	return strings.Contains(m.Pathname, scope)
}

// ParseMapsContent parses the full content of /proc/<pid>/maps (or its
// Windows synthetic equivalent) into a RangeSet of accepted, non-ignored,
// in-scope regions.
func ParseMapsContent(r io.Reader, scope string, ignoreList []string) (memaddr.RangeSet, error) {
	var out memaddr.RangeSet
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		parsed, err := ParseMapsLine(line)
		if err != nil {
			continue
		}
		if !parsed.Acceptable() {
			continue
		}
		if parsed.Ignored(ignoreList) {
			continue
		}
		if !parsed.InScope(scope) {
			continue
		}
		out = append(out, memaddr.Range{
			Start:   parsed.Start,
			End:     parsed.End,
			Comment: parsed.Pathname,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("memio: scan maps: %w", err)
	}
	out.Sort()
	return out, nil
}
