package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/testutil"
)

func TestStepSucceeded(t *testing.T) {
	assert.True(t, Step{}.Succeeded(0))
	assert.False(t, Step{}.Succeeded(1))

	step := Step{SuccessCodes: []int{0, 2}}
	assert.True(t, step.Succeeded(2))
	assert.False(t, step.Succeeded(1))
}

func TestStepString(t *testing.T) {
	step := Step{Command: "make", Args: []string{"-C", "/usr/src/linux", "install"}, Env: []string{"INSTALL_PATH=/boot"}}
	assert.Equal(t, []string{"make", "-C", "/usr/src/linux", "install"}, step.Argv())
	assert.Equal(t, "INSTALL_PATH=/boot make -C /usr/src/linux install", step.String())
}

func TestExecRunnerSuccessCapturesOutput(t *testing.T) {
	dir := t.TempDir()
	stub := testutil.WriteStubEcho(t, dir, "dracut", "creating initramfs", 0)
	logger, hook := logtest.NewNullLogger()

	err := NewExecRunner(logger).Run(context.Background(), Step{Name: "mkinitrd", Command: stub})
	require.NoError(t, err)

	assert.True(t, hasEntry(hook, "mkinitrd", "creating initramfs"))
	assert.True(t, hasEntry(hook, "mkinitrd", "creating initramfs (stderr)"))
}

func TestExecRunnerLogsAllOutputBeforeFailure(t *testing.T) {
	dir := t.TempDir()
	script := "#!/bin/sh\ni=0\nwhile [ $i -lt 2000 ]; do\n  echo \"line $i\"\n  i=$((i+1))\ndone\nprintf 'LAST-LINE' >&2\nexit 1\n"
	stub := filepath.Join(dir, "make")
	require.NoError(t, os.WriteFile(stub, []byte(script), 0o755))
	logger, hook := logtest.NewNullLogger()

	err := NewExecRunner(logger).Run(context.Background(), Step{Name: "compile", Command: stub})
	require.Error(t, err)

	entries := hook.AllEntries()
	require.GreaterOrEqual(t, len(entries), 2003)
	assert.True(t, hasEntry(hook, "compile", "line 1999"))
	assert.Equal(t, "LAST-LINE", entries[len(entries)-2].Message)
	assert.Equal(t, logrus.ErrorLevel, entries[len(entries)-1].Level)
}

func TestLineWriterSplitsLines(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	w := &lineWriter{entry: logger.WithField("step", "compile")}

	_, err := w.Write([]byte("first\nsec"))
	require.NoError(t, err)
	_, err = w.Write([]byte("ond\r\nthird"))
	require.NoError(t, err)
	require.Len(t, hook.AllEntries(), 2)
	w.Flush()

	var got []string
	for _, entry := range hook.AllEntries() {
		got = append(got, entry.Message)
	}
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func hasEntry(hook *logtest.Hook, step string, message string) bool {
	for _, entry := range hook.AllEntries() {
		if entry.Message == message && entry.Data["step"] == step {
			return true
		}
	}
	return false
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	stub := testutil.WriteStubWithExit(t, dir, "make", 2)
	logger, hook := logtest.NewNullLogger()

	err := NewExecRunner(logger).Run(context.Background(), Step{Name: "install", Command: stub, Args: []string{"install"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrExternalStep)

	var stepErr *fault.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "install", stepErr.Step)
	assert.Equal(t, 2, stepErr.ExitCode)
	assert.Equal(t, []string{stub, "install"}, stepErr.Command)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.ErrorLevel, last.Level)
}

func TestExecRunnerAllowedExitCode(t *testing.T) {
	dir := t.TempDir()
	stub := testutil.WriteStubWithExit(t, dir, "grub-mkconfig", 3)
	logger, _ := logtest.NewNullLogger()

	err := NewExecRunner(logger).Run(context.Background(), Step{Name: "updatebm", Command: stub, SuccessCodes: []int{0, 3}})
	assert.NoError(t, err)
}

func TestExecRunnerMissingCommand(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	err := NewExecRunner(logger).Run(context.Background(), Step{Name: "compile", Command: filepath.Join(t.TempDir(), "absent")})
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrExternalStep)
	var stepErr *fault.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, -1, stepErr.ExitCode)
	assert.Contains(t, err.Error(), "could not run")
}

func TestExecRunnerPassesEnvAndDir(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	script := "#!/bin/sh\necho \"$INSTALL_PATH $(pwd)\" > " + out + "\n"
	stub := filepath.Join(dir, "make")
	require.NoError(t, os.WriteFile(stub, []byte(script), 0o755))
	logger, _ := logtest.NewNullLogger()

	err := NewExecRunner(logger).Run(context.Background(), Step{Name: "install", Command: stub, Dir: dir, Env: []string{"INSTALL_PATH=/boot"}})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, "/boot "+resolved, strings.TrimSpace(string(data)))
}

func TestRecorder(t *testing.T) {
	var seen []string
	rec := &Recorder{
		Fail:  map[string]int{"install": 1},
		OnRun: func(step Step) error { seen = append(seen, step.Command); return nil },
	}
	require.NoError(t, rec.Run(context.Background(), Step{Name: "compile", Command: "make"}))
	err := rec.Run(context.Background(), Step{Name: "install", Command: "make"})
	assert.ErrorIs(t, err, fault.ErrExternalStep)

	assert.Equal(t, []string{"compile", "install"}, rec.Names())
	assert.Equal(t, []string{"make", "make"}, seen)
	_, ok := rec.Find("install")
	assert.True(t, ok)
	_, ok = rec.Find("clean")
	assert.False(t, ok)
}
