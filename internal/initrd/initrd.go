// Package initrd produces the initial ramdisk for the active kernel version.
package initrd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/conn-castle/kup/internal/bootmgr"
	"github.com/conn-castle/kup/internal/config"
	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/messages"
	"github.com/conn-castle/kup/internal/runner"
	"github.com/conn-castle/kup/internal/version"
)

// Step names reported in logs and failures.
const (
	StepModuleRebuild = "module-rebuild"
	StepGenerate      = "mkinitrd"
)

// Coordinator rebuilds out-of-tree modules on request and runs the ramdisk generator.
type Coordinator struct {
	adapter    bootmgr.Adapter
	run        runner.Runner
	generator  string
	packageSet string
	mkdirAll   func(path string, perm os.FileMode) error
}

// New returns a coordinator using the generator and package set from cfg.
func New(adapter bootmgr.Adapter, run runner.Runner, cfg config.Config) *Coordinator {
	return &Coordinator{
		adapter:    adapter,
		run:        run,
		generator:  cfg.Initrd.Generator,
		packageSet: cfg.Modules.PackageSet,
		mkdirAll:   os.MkdirAll,
	}
}

// RebuildModulesStep rebuilds the packages that ship kernel modules.
func (c *Coordinator) RebuildModulesStep() runner.Step {
	return runner.Step{
		Name:    StepModuleRebuild,
		Command: "emerge",
		Args:    []string{"--quiet", c.packageSet},
	}
}

// GenerateStep runs the generator for vc, writing to out. The include flag is
// omitted entirely when include is empty so the generator's defaults apply.
func (c *Coordinator) GenerateStep(vc version.Context, out string, include []string) runner.Step {
	args := []string{"--force"}
	for _, path := range include {
		args = append(args, "--install", path)
	}
	args = append(args, "--kver", vc.KernelVersion, out)
	return runner.Step{Name: StepGenerate, Command: c.generator, Args: args}
}

// RebuildModules runs RebuildModulesStep.
func (c *Coordinator) RebuildModules(ctx context.Context) error {
	return c.run.Run(ctx, c.RebuildModulesStep())
}

// Build writes the initrd for vc to the adapter's initrd path and returns that path.
func (c *Coordinator) Build(ctx context.Context, vc version.Context, rebuildModules bool, include []string) (string, error) {
	if rebuildModules {
		if err := c.RebuildModules(ctx); err != nil {
			return "", err
		}
	}
	out := c.adapter.InitrdPath(vc)
	dir := filepath.Dir(out)
	if err := c.mkdirAll(dir, 0o755); err != nil {
		return "", fault.FS(messages.BootOpMkdir, dir, err)
	}
	if err := c.run.Run(ctx, c.GenerateStep(vc, out, include)); err != nil {
		return "", err
	}
	return out, nil
}
