package pipeline

import (
	"context"
	"strings"

	"github.com/conn-castle/kup/internal/bootmgr"
	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/messages"
	"github.com/conn-castle/kup/internal/osrelease"
	"github.com/conn-castle/kup/internal/runner"
)

// Step names of the /boot mount bracket.
const (
	StepMount   = "mount"
	StepUnmount = "umount"
)

// DefaultTitle is the entry title when neither config nor os-release names the system.
const DefaultTitle = "Linux"

// mountBoot makes sure the adapter's mount marker is present, mounting /boot
// when configured to. It reports whether it mounted, so the caller unmounts
// only what it mounted.
func (p *Pipeline) mountBoot(ctx context.Context, adapter bootmgr.Adapter) (bool, error) {
	marker := adapter.RequiredMountDir()
	if p.isDir(marker) {
		return false, nil
	}
	if !p.cfg.Boot.Mount {
		return false, fault.Configf(messages.PipelineBootNotMountedFmt, marker)
	}
	step := runner.Step{Name: StepMount, Command: "mount", Args: []string{p.paths.BootDir}}
	if err := p.run.Run(ctx, step); err != nil {
		return false, err
	}
	if !p.isDir(marker) {
		return true, fault.Configf(messages.PipelineBootStillMissingFmt, marker, p.paths.BootDir)
	}
	return true, nil
}

func (p *Pipeline) unmountBoot(ctx context.Context) error {
	return p.run.Run(ctx, runner.Step{Name: StepUnmount, Command: "umount", Args: []string{p.paths.BootDir}})
}

func (p *Pipeline) isDir(path string) bool {
	info, err := p.sys.Stat(path)
	return err == nil && info.IsDir()
}

// cmdline returns the configured kernel command line, or the running
// kernel's without the boot-loader-injected BOOT_IMAGE= and initrd= words.
func (p *Pipeline) cmdline() (string, error) {
	if p.cfg.Boot.Cmdline != "" {
		return p.cfg.Boot.Cmdline, nil
	}
	data, err := p.sys.ReadFile(p.paths.ProcCmdline)
	if err != nil {
		return "", fault.Configf(messages.PipelineCmdlineUnreadableFmt, p.paths.ProcCmdline, err)
	}
	var kept []string
	for _, word := range strings.Fields(string(data)) {
		if strings.HasPrefix(word, "BOOT_IMAGE=") || strings.HasPrefix(word, "initrd=") {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " "), nil
}

// title returns the configured entry title, else os-release PRETTY_NAME.
func (p *Pipeline) title() string {
	if p.cfg.Boot.Title != "" {
		return p.cfg.Boot.Title
	}
	release, err := osrelease.Read(p.paths.OSRelease)
	if err != nil {
		p.log.WithError(err).Debug(messages.PipelineTitleFallback)
		return DefaultTitle
	}
	return release.PrettyName(DefaultTitle)
}
