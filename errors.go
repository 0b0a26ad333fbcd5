package main

import "fmt"

// Exit codes surfaced through cliError.
const (
	exitFailure  = 1
	exitConfig   = 2
	exitProvider = 3
)

// cliError carries an exit code and a user-facing message alongside the
// underlying cause. main prints it once; cobra's own printing is silenced.
type cliError struct {
	code  int
	msg   string
	cause error
}

func (e *cliError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *cliError) Unwrap() error { return e.cause }

func (e *cliError) ExitCode() int {
	if e.code == 0 {
		return exitFailure
	}
	return e.code
}
