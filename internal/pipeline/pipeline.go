// Package pipeline runs kup's stages in order against one resolved kernel
// version and one boot manager.
//
// A run halts at the first failure. Stages that already completed are not
// rolled back.
package pipeline

import (
	"context"
	"io"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/conn-castle/kup/internal/bootmgr"
	"github.com/conn-castle/kup/internal/clean"
	"github.com/conn-castle/kup/internal/config"
	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/initrd"
	"github.com/conn-castle/kup/internal/install"
	"github.com/conn-castle/kup/internal/kbuild"
	"github.com/conn-castle/kup/internal/kconfig"
	"github.com/conn-castle/kup/internal/messages"
	"github.com/conn-castle/kup/internal/prompt"
	"github.com/conn-castle/kup/internal/runner"
	"github.com/conn-castle/kup/internal/uki"
	"github.com/conn-castle/kup/internal/version"
)

// Options configures a Pipeline. Nil systems use the real OS.
type Options struct {
	Config  config.Config
	Paths   config.Paths
	Runner  runner.Runner
	Log     logrus.FieldLogger
	Out     io.Writer
	Confirm prompt.Confirmer
	System  System
	Version version.System
	// OnStage is called as each stage starts.
	OnStage func(Stage)
}

// Pipeline executes stages.
type Pipeline struct {
	cfg        config.Config
	paths      config.Paths
	run        runner.Runner
	log        logrus.FieldLogger
	out        io.Writer
	confirm    prompt.Confirmer
	sys        System
	versionSys version.System
	onStage    func(Stage)
}

// New returns a pipeline for opts.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		cfg:        opts.Config,
		paths:      opts.Paths,
		run:        opts.Runner,
		log:        opts.Log,
		out:        opts.Out,
		confirm:    opts.Confirm,
		sys:        opts.System,
		versionSys: opts.Version,
		onStage:    opts.OnStage,
	}
	if p.sys == nil {
		p.sys = RealSystem{}
	}
	if p.versionSys == nil {
		p.versionSys = version.RealSystem{}
	}
	if p.out == nil {
		p.out = io.Discard
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	return p
}

// RunAll executes every stage Plan selects.
func (p *Pipeline) RunAll(ctx context.Context) error {
	return p.execute(ctx, Plan(p.cfg), false)
}

// RunStage executes one stage.
func (p *Pipeline) RunStage(ctx context.Context, stage Stage) error {
	if err := CheckSingle(p.cfg, stage); err != nil {
		return err
	}
	return p.execute(ctx, []Stage{stage}, true)
}

// invocation holds what every stage of one run shares.
type invocation struct {
	vc      version.Context
	adapter bootmgr.Adapter
	build   *kbuild.Builder
	initrd  *initrd.Coordinator
	uki     *uki.Composer
	single  bool
}

func (p *Pipeline) execute(ctx context.Context, stages []Stage, single bool) error {
	vc, err := version.Resolve(p.versionSys, p.paths, p.cfg.Boot.Manager == config.ManagerBootctl)
	if err != nil {
		return err
	}
	adapter, err := bootmgr.New(p.cfg.Variant(), bootmgr.Deps{
		Paths:  p.paths,
		Runner: p.run,
		Title:  p.title(),
	})
	if err != nil {
		return err
	}
	r := &invocation{
		vc:      vc,
		adapter: adapter,
		build:   kbuild.New(p.run, vc, p.cfg.Kernel.Jobs, p.paths.Root),
		initrd:  initrd.New(adapter, p.run, p.cfg),
		single:  single,
	}
	if adapter.Variant() == config.VariantBootctlUnified && slices.Contains(stages, StageMkinitrd) {
		// Nothing may change before a unified run is known to be composable.
		if r.uki, err = uki.New(adapter, p.run, p.paths, p.cfg, nil, p.log); err != nil {
			return err
		}
		if err := r.uki.Preflight(); err != nil {
			return err
		}
	}
	p.log.WithFields(logrus.Fields{
		"version": vc.KernelVersion,
		"variant": adapter.Variant(),
		"source":  vc.SourceDir,
	}).Info(messages.PipelineRunStart)

	mounted := false
	for _, stage := range stages {
		if touchesBoot(stage) {
			if mounted, err = p.mountBoot(ctx, adapter); err != nil {
				return err
			}
			break
		}
	}

	for _, stage := range stages {
		if p.onStage != nil {
			p.onStage(stage)
		}
		entry := p.log.WithField("stage", stage)
		entry.Info(messages.PipelineStageStart)
		if err := p.runStage(ctx, r, stage); err != nil {
			entry.WithError(err).Error(fault.Kind(err))
			return &fault.StageError{Stage: string(stage), Err: err}
		}
		entry.Info(messages.PipelineStageDone)
	}

	if mounted {
		if err := p.unmountBoot(ctx); err != nil {
			p.log.WithError(err).Warn(messages.PipelineUnmountFailed)
			return err
		}
	}
	return nil
}

func (p *Pipeline) runStage(ctx context.Context, r *invocation, stage Stage) error {
	switch stage {
	case StageCompile:
		return r.build.Compile(ctx)
	case StageInstall:
		return install.New(r.adapter, r.build, p.paths, nil).Install(ctx, r.vc)
	case StageUpdateMods:
		return r.initrd.RebuildModules(ctx)
	case StageMkinitrd:
		return p.mkinitrd(ctx, r)
	case StageUpdateBM:
		cmdline, err := p.cmdline()
		if err != nil {
			return err
		}
		return r.adapter.WriteBootEntry(ctx, r.vc, cmdline)
	case StageNewConfig:
		_, err := kconfig.New(kconfig.Deps{
			Build:   r.build,
			Paths:   p.paths,
			Save:    p.cfg.Kernel.SaveConfig,
			Confirm: p.confirm,
			Out:     p.out,
			Log:     p.log,
		}).Update(ctx, r.vc)
		return err
	case StageClean:
		_, err := clean.New(r.adapter, p.paths, nil, p.log).Clean(ctx, r.vc)
		return err
	default:
		return fault.Configf(messages.PipelineUnknownStageFmt, stage, "")
	}
}

// mkinitrd builds the initrd and, with a unified image, embeds it. Module
// rebuild happens here only when mkinitrd runs alone; a full run has its own
// updatemods stage.
func (p *Pipeline) mkinitrd(ctx context.Context, r *invocation) error {
	if _, err := r.initrd.Build(ctx, r.vc, r.single && p.cfg.Modules.Rebuild, p.cfg.Initrd.Include); err != nil {
		return err
	}
	if r.adapter.Variant() != config.VariantBootctlUnified {
		return nil
	}
	cmdline, err := p.cmdline()
	if err != nil {
		return err
	}
	return r.uki.Compose(ctx, r.vc, cmdline)
}
