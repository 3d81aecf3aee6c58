// Package fault defines the failure taxonomy shared by every pipeline component.
//
// All failures are fatal: nothing in kup retries or rolls back. Callers classify
// errors with errors.Is against the sentinels and extract details with errors.As.
package fault

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conn-castle/kup/internal/messages"
)

var (
	// ErrConfiguration marks invalid or missing inputs detected before any mutation.
	ErrConfiguration = errors.New(messages.FaultConfiguration)
	// ErrExternalStep marks an external command that could not start or exited unsuccessfully.
	ErrExternalStep = errors.New(messages.FaultExternalStep)
	// ErrFilesystem marks a failed deletion, copy, or write.
	ErrFilesystem = errors.New(messages.FaultFilesystem)
)

// Configf returns a ConfigurationError with a formatted message.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// StepError reports an external step that failed.
type StepError struct {
	Step     string
	Command  []string
	ExitCode int
	Err      error
}

func (e *StepError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf(messages.FaultStepExitFmt, e.Step, strings.Join(e.Command, " "), e.ExitCode)
	}
	return fmt.Sprintf(messages.FaultStepStartFmt, e.Step, strings.Join(e.Command, " "), e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrExternalStep) match any StepError.
func (e *StepError) Is(target error) bool { return target == ErrExternalStep }

// FSError reports a filesystem mutation that failed.
type FSError struct {
	Op   string
	Path string
	Err  error
}

func (e *FSError) Error() string {
	return fmt.Sprintf(messages.FaultFSFmt, e.Op, e.Path, e.Err)
}

func (e *FSError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrFilesystem) match any FSError.
func (e *FSError) Is(target error) bool { return target == ErrFilesystem }

// FS wraps err as an FSError, returning nil when err is nil.
// op names the operation (read, write, remove); path is the file it touched.
func FS(op string, path string, err error) error {
	if err == nil {
		return nil
	}
	return &FSError{Op: op, Path: path, Err: err}
}

// StageError attributes a failure to the pipeline stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf(messages.FaultStageFmt, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Kind returns a short label for the category of err.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return messages.FaultKindConfiguration
	case errors.Is(err, ErrExternalStep):
		return messages.FaultKindExternalStep
	case errors.Is(err, ErrFilesystem):
		return messages.FaultKindFilesystem
	default:
		return messages.FaultKindUnknown
	}
}
