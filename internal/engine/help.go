package engine

// Help returns the command usage text, recovered from the original
// Patcher::PrintCommandUsage.
func Help() string {
	return `commands:
  l <type> <value>        lookup: scan every writable region for value
  f <type> <value>        filter: keep candidates whose memory still equals value
  pair_filter <type> <value> <k>
                           lookup again, keep the k prior candidates nearest
                           a fresh match by address
  c <type> <value>        change: write value to every surviving candidate
  replace <addr> <type> <value>
                           write value to a single address
  diff start              snapshot every region
  diff upper|lower|same|change
                           compare current memory against the snapshot (or,
                           with no snapshot, against stored candidate values)
  diff end                discard the active snapshot
  scope <substring>        restrict region enumeration to pathnames containing substring
  clear                    empty the candidate set
  save <path>              write region set and candidate set to path
  load <path>              replace region set and candidate set from path
  dump <addr> <length>     hex-dump length bytes at addr
  dumpall <path>           write every region's raw bytes to path
  freeze <addr> <type> <value>
                           repeatedly rewrite addr until freeze_terminate
  freeze_terminate         stop every active freeze worker
  result                   print the current candidate set
  help                     print this text
  exit                     terminate freeze workers, detach, quit

types: ascii utf16 utf32 hex int int_big long long_big float float_big double double_big float_fuzzy
`
}
