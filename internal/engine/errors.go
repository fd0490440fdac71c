package engine

import "fmt"

// UsageError covers a bad command, bad argument, unknown type, or
// misaligned diff footprint: reported, the command is aborted, the REPL
// continues.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return "usage: " + e.Msg }

func usageErrorf(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// TargetError covers an attach/detach syscall failure, a /proc open
// failure, a maps parse failure, or a ReadProcessMemory failure: logged
// with errno/kind, the offending operation is aborted, the CandidateSet is
// preserved.
type TargetError struct {
	Op  string
	Err error
}

func (e *TargetError) Error() string { return fmt.Sprintf("target error during %s: %v", e.Op, e.Err) }
func (e *TargetError) Unwrap() error { return e.Err }

func targetErrorf(op string, err error) error {
	return &TargetError{Op: op, Err: err}
}

// PartialIO covers a short read/write: logged, the scanner skips the
// affected region or candidate, no abort.
type PartialIO struct {
	Msg string
}

func (e *PartialIO) Error() string { return "partial io: " + e.Msg }

// VerificationError covers a post-write readback mismatch: logged per
// address, the surviving CandidateSet is unchanged.
type VerificationError struct {
	Msg string
}

func (e *VerificationError) Error() string { return "verification failed: " + e.Msg }
