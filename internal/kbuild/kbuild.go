// Package kbuild drives the kernel build system through runner steps.
package kbuild

import (
	"context"
	"runtime"
	"strconv"

	"github.com/conn-castle/kup/internal/runner"
	"github.com/conn-castle/kup/internal/version"
)

// Step names reported in logs and failures.
const (
	StepCompile        = "make"
	StepInstall        = "make install"
	StepModulesInstall = "make modules_install"
	StepOldDefConfig   = "make olddefconfig"
)

// Builder runs make targets in the active kernel source tree.
type Builder struct {
	run  runner.Runner
	vc   version.Context
	jobs int
	// root is the filesystem root modules are installed under.
	root string
}

// New returns a builder. jobs <= 0 means one job per CPU.
// run executes the make steps; vc supplies the source tree; root prefixes the
// module install path.
func New(run runner.Runner, vc version.Context, jobs int, root string) *Builder {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	return &Builder{run: run, vc: vc, jobs: jobs, root: root}
}

func (b *Builder) make(name string, env []string, targets ...string) runner.Step {
	return runner.Step{
		Name:    name,
		Command: "make",
		Args:    append([]string{"-C", b.vc.SourceDir}, targets...),
		Env:     env,
	}
}

// CompileStep builds the kernel image and modules.
func (b *Builder) CompileStep() runner.Step {
	return b.make(StepCompile, nil, "-j"+strconv.Itoa(b.jobs))
}

// InstallStep installs the kernel image, System.map and config into dir.
func (b *Builder) InstallStep(dir string) runner.Step {
	return b.make(StepInstall, []string{"INSTALL_PATH=" + dir}, "install")
}

// ModulesInstallStep installs the module tree under /lib/modules/<version>.
func (b *Builder) ModulesInstallStep() runner.Step {
	var env []string
	if b.root != "" && b.root != "/" {
		env = []string{"INSTALL_MOD_PATH=" + b.root}
	}
	return b.make(StepModulesInstall, env, "modules_install")
}

// OldDefConfigStep brings .config up to date, taking defaults for new symbols.
func (b *Builder) OldDefConfigStep() runner.Step {
	return b.make(StepOldDefConfig, nil, "olddefconfig")
}

// Compile runs CompileStep.
func (b *Builder) Compile(ctx context.Context) error {
	return b.run.Run(ctx, b.CompileStep())
}

// Install runs InstallStep.
func (b *Builder) Install(ctx context.Context, dir string) error {
	return b.run.Run(ctx, b.InstallStep(dir))
}

// ModulesInstall runs ModulesInstallStep.
func (b *Builder) ModulesInstall(ctx context.Context) error {
	return b.run.Run(ctx, b.ModulesInstallStep())
}

// OldDefConfig runs OldDefConfigStep.
func (b *Builder) OldDefConfig(ctx context.Context) error {
	return b.run.Run(ctx, b.OldDefConfigStep())
}
