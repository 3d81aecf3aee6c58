package runner

import (
	"context"

	"github.com/conn-castle/kup/internal/fault"
)

// Recorder is a Runner that records steps instead of executing them.
// It is used by tests across packages.
type Recorder struct {
	Steps []Step
	// Fail maps step names to the exit status they should fail with.
	Fail map[string]int
	// OnRun, when set, runs for every step before Fail is consulted;
	// tests use it to simulate a tool's filesystem effects.
	OnRun func(step Step) error
}

// Run records step and reports the configured outcome.
func (r *Recorder) Run(_ context.Context, step Step) error {
	r.Steps = append(r.Steps, step)
	if r.OnRun != nil {
		if err := r.OnRun(step); err != nil {
			return err
		}
	}
	if code, ok := r.Fail[step.Name]; ok {
		return &fault.StepError{Step: step.Name, Command: step.Argv(), ExitCode: code}
	}
	return nil
}

// Names returns the names of the recorded steps in order.
func (r *Recorder) Names() []string {
	names := make([]string, 0, len(r.Steps))
	for _, step := range r.Steps {
		names = append(names, step.Name)
	}
	return names
}

// Find returns the first recorded step with name.
func (r *Recorder) Find(name string) (Step, bool) {
	for _, step := range r.Steps {
		if step.Name == name {
			return step, true
		}
	}
	return Step{}, false
}
