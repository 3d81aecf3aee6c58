// Package uki composes unified kernel images: an EFI stub with the kernel,
// initrd, command line, os-release and an optional splash embedded as sections.
package uki

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"

	"github.com/conn-castle/kup/internal/bootmgr"
	"github.com/conn-castle/kup/internal/config"
	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/messages"
	"github.com/conn-castle/kup/internal/runner"
	"github.com/conn-castle/kup/internal/version"
)

// StepObjcopy is the step name of the section-embedding invocation.
const StepObjcopy = "objcopy"

// StubPattern matches systemd's EFI stub file names (linuxx64.efi.stub, linuxaa64.efi.stub).
const StubPattern = "linux*.efi.stub"

var stubGlob = glob.MustCompile(StubPattern)

// Composer builds the unified image for the active version.
type Composer struct {
	adapter bootmgr.Adapter
	run     runner.Runner
	paths   config.Paths
	splash  string
	sys     System
	log     logrus.FieldLogger
}

// New returns a composer. It fails unless adapter is the bootctl-unified variant.
func New(adapter bootmgr.Adapter, run runner.Runner, paths config.Paths, cfg config.Config, sys System, log logrus.FieldLogger) (*Composer, error) {
	if adapter.Variant() != config.VariantBootctlUnified {
		return nil, fault.Configf(messages.UKIRequiresUnifiedFmt, adapter.Variant())
	}
	if sys == nil {
		sys = RealSystem{}
	}
	splash := ""
	if cfg.Boot.Splash != "" {
		splash = paths.Under(cfg.Boot.Splash)
	}
	return &Composer{adapter: adapter, run: run, paths: paths, splash: splash, sys: sys, log: log}, nil
}

// CmdlinePath returns the transient command-line file for vc.
func (c *Composer) CmdlinePath(vc version.Context) string {
	return filepath.Join(c.paths.WorkDir, "cmdline-"+vc.KernelVersion+".txt")
}

// FindStub returns the first stub in the stub directory matching StubPattern.
func (c *Composer) FindStub() (string, error) {
	entries, err := c.sys.ReadDir(c.paths.StubDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fault.FS(messages.BootOpReadDir, c.paths.StubDir, err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && stubGlob.Match(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", fault.Configf(messages.UKIStubNotFoundFmt, StubPattern, c.paths.StubDir)
	}
	sort.Strings(names)
	return filepath.Join(c.paths.StubDir, names[0]), nil
}

// Preflight checks the inputs that come from the installed system rather than
// from the build: the release identity file and the EFI stub.
func (c *Composer) Preflight() error {
	if _, err := c.sys.Stat(c.paths.OSRelease); err != nil {
		return fault.Configf(messages.UKIOSReleaseMissingFmt, c.paths.OSRelease, err)
	}
	_, err := c.FindStub()
	return err
}

// ObjcopyStep copies stub to out with sections added at their addresses.
// stub is the EFI stub; out is the image to write; sections must already be validated.
func ObjcopyStep(stub string, out string, sections []Section) runner.Step {
	var args []string
	for _, section := range sections {
		args = append(args,
			"--add-section", section.Name+"="+section.Source,
			"--change-section-vma", section.Name+"="+FormatVMA(section.VMA),
		)
	}
	args = append(args, stub, out)
	return runner.Step{Name: StepObjcopy, Command: "objcopy", Args: args}
}

// Compose embeds the kernel and the already-built initrd into the unified image
// and then deletes the transient initrd and command-line files.
// If embedding fails the transient files stay in place for inspection.
func (c *Composer) Compose(ctx context.Context, vc version.Context, cmdline string) error {
	if _, err := c.sys.Stat(c.paths.OSRelease); err != nil {
		return fault.Configf(messages.UKIOSReleaseMissingFmt, c.paths.OSRelease, err)
	}

	if err := c.sys.MkdirAll(c.paths.WorkDir, 0o755); err != nil {
		return fault.FS(messages.BootOpMkdir, c.paths.WorkDir, err)
	}
	cmdlineFile := c.CmdlinePath(vc)
	if err := c.sys.WriteFileAtomic(cmdlineFile, []byte(cmdline+"\n"), 0o644); err != nil {
		return fault.FS(messages.BootOpWrite, cmdlineFile, err)
	}

	linux := vc.KernelImage()
	initrdFile := c.adapter.InitrdPath(vc)
	for _, input := range []string{linux, initrdFile} {
		if _, err := c.sys.Stat(input); err != nil {
			return fault.FS(messages.BootOpStat, input, err)
		}
	}

	stub, err := c.FindStub()
	if err != nil {
		return err
	}

	inputs := Inputs{
		OSRelease: c.paths.OSRelease,
		Cmdline:   cmdlineFile,
		Linux:     linux,
		Initrd:    initrdFile,
	}
	if c.splash != "" {
		if _, err := c.sys.Stat(c.splash); err == nil {
			inputs.Splash = c.splash
		} else {
			c.log.WithField("splash", c.splash).Warn(messages.UKISplashSkipped)
		}
	}
	sections, err := Sections(inputs)
	if err != nil {
		return err
	}

	out := c.adapter.KernelInstallPath(vc)
	if err := c.sys.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fault.FS(messages.BootOpMkdir, filepath.Dir(out), err)
	}
	partial := out + ".tmp"
	if err := c.run.Run(ctx, ObjcopyStep(stub, partial, sections)); err != nil {
		_ = c.sys.Remove(partial)
		return err
	}
	if err := c.sys.Rename(partial, out); err != nil {
		return fault.FS(messages.BootOpRename, partial, err)
	}

	for _, transient := range []string{initrdFile, cmdlineFile} {
		if err := c.sys.Remove(transient); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fault.FS(messages.BootOpRemove, transient, err)
		}
	}
	return nil
}
