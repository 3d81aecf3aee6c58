// Package runner executes external steps from typed invocation descriptors.
//
// Every external tool kup drives (make, dracut, emerge, objcopy, grub-mkconfig,
// mount) goes through Runner.Run, which streams the tool's output into the run
// log and turns a failed exit into a *fault.StepError.
package runner

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/messages"
)

// Step describes one external command invocation.
// Arguments are passed as a vector; nothing is interpreted by a shell.
type Step struct {
	// Name is the operator-facing label used in logs and errors.
	Name    string
	Command string
	Args    []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
	// SuccessCodes lists the exit statuses treated as success; empty means {0}.
	SuccessCodes []int
}

// Argv returns the command followed by its arguments.
func (s Step) Argv() []string {
	return append([]string{s.Command}, s.Args...)
}

// String renders the step for logs.
func (s Step) String() string {
	argv := strings.Join(s.Argv(), " ")
	if len(s.Env) == 0 {
		return argv
	}
	return strings.Join(s.Env, " ") + " " + argv
}

// Succeeded reports whether code is one of the step's success codes.
func (s Step) Succeeded(code int) bool {
	if len(s.SuccessCodes) == 0 {
		return code == 0
	}
	return slices.Contains(s.SuccessCodes, code)
}

// Runner executes steps, blocking until each completes.
type Runner interface {
	Run(ctx context.Context, step Step) error
}

// ExecRunner runs steps as child processes and captures their output in the run log.
type ExecRunner struct {
	log logrus.FieldLogger
}

// NewExecRunner returns a runner that logs to log.
func NewExecRunner(log logrus.FieldLogger) *ExecRunner {
	return &ExecRunner{log: log}
}

// Run starts step, waits for it, and checks its exit status.
func (r *ExecRunner) Run(ctx context.Context, step Step) error {
	entry := r.log.WithField("step", step.Name)
	entry.Infof(messages.RunnerStartFmt, step)

	cmd := exec.CommandContext(ctx, step.Command, step.Args...)
	cmd.Dir = step.Dir
	if len(step.Env) > 0 {
		cmd.Env = append(os.Environ(), step.Env...)
	}
	out := &lineWriter{entry: entry}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	out.Flush()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() < 0 {
			entry.WithError(err).Error(messages.RunnerNotCompleted)
			return &fault.StepError{Step: step.Name, Command: step.Argv(), ExitCode: -1, Err: err}
		}
		code = exitErr.ExitCode()
	}
	if !step.Succeeded(code) {
		entry.WithField("status", code).Error(messages.RunnerFailed)
		return &fault.StepError{Step: step.Name, Command: step.Argv(), ExitCode: code, Err: err}
	}
	entry.WithField("status", code).Info(messages.RunnerFinished)
	return nil
}
