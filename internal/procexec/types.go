package procexec

import (
	"fmt"
	"strings"
	"time"
)

// Target names where a process's combined output goes. Resolution order is
// fixed: a per-call override beats the runner's shared sink, which beats the
// caller's inherited stdout/stderr.
type Target int

const (
	TargetInherit Target = iota
	TargetShared
	TargetOverride
)

func (t Target) String() string {
	switch t {
	case TargetShared:
		return "shared"
	case TargetOverride:
		return "override"
	default:
		return "inherit"
	}
}

// Result describes one finished invocation. A non-zero exit is reported
// through ExitCode; Err is set only when the process could not be started or
// was stopped by its context.
type Result struct {
	Command  []string
	ExitCode int
	Err      error
	Duration time.Duration
}

func (r Result) Failed() bool {
	return r.Err != nil || r.ExitCode != 0
}

// AsError converts a failed result into an error for reporting; it returns nil
// for a successful result.
func (r Result) AsError() error {
	if r.Err != nil {
		return fmt.Errorf("%s: %w", commandName(r.Command), r.Err)
	}
	if r.ExitCode != 0 {
		return &ExitError{Command: r.Command, Code: r.ExitCode}
	}
	return nil
}

// ExitError reports a process that ran and exited non-zero.
type ExitError struct {
	Command []string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", commandName(e.Command), e.Code)
}

func commandName(command []string) string {
	if len(command) == 0 {
		return "<empty command>"
	}
	return command[0]
}

// CommandLine renders a command for logging.
func CommandLine(command []string) string {
	return strings.Join(command, " ")
}
