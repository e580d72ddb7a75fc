package cli

import (
	"errors"
	"strconv"

	"github.com/populist-vote/platform-sub000/internal/platform/redis"
	dErrors "github.com/populist-vote/platform-sub000/pkg/domain-errors"
)

// Process exit codes.
const (
	ExitOK           = 0
	ExitRecordErrors = 2
	ExitUsage        = 3
	ExitInfra        = 4
	ExitLockHeld     = 5
)

// exitError carries the exit code a command wants the process to end with.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return "exit status " + strconv.Itoa(e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func withExit(code int, err error) error {
	return &exitError{code: code, err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch {
	case errors.Is(err, redis.ErrLockHeld), dErrors.HasCode(err, dErrors.CodeLockHeld):
		return ExitLockHeld
	case dErrors.HasCode(err, dErrors.CodeInvalidInput):
		return ExitUsage
	default:
		return ExitInfra
	}
}
