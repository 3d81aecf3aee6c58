package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/conn-castle/kup/internal/messages"
	"github.com/conn-castle/kup/internal/pipeline"
)

var executeFunc = execute

// Version, Commit, and BuildDate are overridden at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// aliasPrefix marks binary names that select a single stage, e.g. kup-mkinitrd.
const aliasPrefix = "kup-"

func main() {
	runMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

// SilentExitError reports an exit code without emitting error output.
type SilentExitError struct {
	Code int
}

func (e SilentExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// execute runs the CLI command with the provided args and output writers.
func execute(args []string, stdout io.Writer, stderr io.Writer) error {
	cmd := newRootCmd()
	cmd.Version = versionString()
	cmd.SetVersionTemplate(messages.VersionTemplate)
	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}
	if len(args) > 0 {
		if stage, ok := aliasStage(args[0]); ok {
			cmdArgs = append([]string{string(stage)}, cmdArgs...)
		}
	}
	cmd.SetArgs(cmdArgs)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

// runMain executes the CLI, exiting on fatal errors.
func runMain(args []string, stdout io.Writer, stderr io.Writer, exit func(int)) {
	if err := executeFunc(args, stdout, stderr); err != nil {
		var silent *SilentExitError
		if errors.As(err, &silent) {
			exit(silent.Code)
			return
		}
		_, _ = fmt.Fprintln(stderr, err)
		exit(1)
	}
}

// aliasStage maps a binary name like /usr/sbin/kup-install to its stage.
func aliasStage(argv0 string) (pipeline.Stage, bool) {
	name, ok := strings.CutPrefix(filepath.Base(argv0), aliasPrefix)
	if !ok {
		return "", false
	}
	stage, err := pipeline.ParseStage(name)
	if err != nil {
		return "", false
	}
	return stage, true
}

// versionString formats Version with optional commit and build date metadata.
func versionString() string {
	meta := []string{}
	if Commit != "" && Commit != "unknown" {
		meta = append(meta, fmt.Sprintf(messages.VersionCommitFmt, Commit))
	}
	if BuildDate != "" && BuildDate != "unknown" {
		meta = append(meta, fmt.Sprintf(messages.VersionBuildFmt, BuildDate))
	}
	if len(meta) == 0 {
		return Version
	}
	return fmt.Sprintf(messages.VersionFullFmt, Version, strings.Join(meta, ", "))
}
