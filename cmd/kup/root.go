package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/conn-castle/kup/internal/config"
	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/messages"
	"github.com/conn-castle/kup/internal/pipeline"
	"github.com/conn-castle/kup/internal/prompt"
	"github.com/conn-castle/kup/internal/runlog"
	"github.com/conn-castle/kup/internal/runner"
)

const (
	flagConfig         = "config"
	flagRebuildModules = "rebuild-modules"
	flagSaveConfig     = "save-config"
	flagRoot           = "root"
)

var (
	newRunner = func(log logrus.FieldLogger) runner.Runner { return runner.NewExecRunner(log) }
	newPrompt = func() prompt.Confirmer { return prompt.New() }
)

type rootOptions struct {
	configPath     string
	root           string
	rebuildModules bool
	saveConfig     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          messages.RootLong,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts, nil)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.Flags().BoolP("version", "v", false, messages.RootVersionFlag)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, flagConfig, "", messages.FlagConfig)
	flags.BoolVar(&opts.rebuildModules, flagRebuildModules, false, messages.FlagRebuildModules)
	flags.BoolVar(&opts.saveConfig, flagSaveConfig, false, messages.FlagSaveConfig)
	flags.StringVar(&opts.root, flagRoot, "/", messages.FlagRoot)
	_ = flags.MarkHidden(flagRoot)

	for _, stage := range pipeline.Stages() {
		cmd.AddCommand(newStageCmd(stage, opts))
	}
	return cmd
}

var stageShort = map[pipeline.Stage]string{
	pipeline.StageCompile:    messages.StageCompileShort,
	pipeline.StageInstall:    messages.StageInstallShort,
	pipeline.StageUpdateMods: messages.StageUpdateModsShort,
	pipeline.StageMkinitrd:   messages.StageMkinitrdShort,
	pipeline.StageUpdateBM:   messages.StageUpdateBMShort,
	pipeline.StageNewConfig:  messages.StageNewConfigShort,
	pipeline.StageClean:      messages.StageCleanShort,
}

func newStageCmd(stage pipeline.Stage, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   string(stage),
		Short: stageShort[stage],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts, &stage)
		},
	}
}

// overrides returns the config overrides for flags given on the command line.
func overrides(cmd *cobra.Command, opts *rootOptions) config.Overrides {
	var o config.Overrides
	if cmd.Flags().Changed(flagRebuildModules) {
		o.RebuildModules = &opts.rebuildModules
	}
	if cmd.Flags().Changed(flagSaveConfig) {
		o.SaveConfig = &opts.saveConfig
	}
	return o
}

// runPipeline runs stage, or every stage when stage is nil. Failures are
// reported here and turned into exit status 1.
func runPipeline(cmd *cobra.Command, opts *rootOptions, stage *pipeline.Stage) error {
	cmd.SilenceUsage = true
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	configPath := opts.configPath
	if configPath == "" {
		configPath = config.DefaultPaths(opts.root).ConfigPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return reportFailure(errOut, err, "")
	}
	cfg = cfg.With(overrides(cmd, opts))
	paths := config.ResolvePaths(opts.root, cfg)
	paths.ConfigPath = configPath

	log, err := runlog.Open(paths.LogPath)
	if err != nil {
		return reportFailure(errOut, fault.FS(messages.BootOpWrite, paths.LogPath, err), "")
	}
	defer func() { _ = log.Close() }()

	p := pipeline.New(pipeline.Options{
		Config:  cfg,
		Paths:   paths,
		Runner:  newRunner(log),
		Log:     log,
		Out:     out,
		Confirm: newPrompt(),
		OnStage: func(s pipeline.Stage) {
			_, _ = fmt.Fprintln(out, color.CyanString(messages.StageBannerFmt, s))
		},
	})
	if stage == nil {
		err = p.RunAll(cmd.Context())
	} else {
		err = p.RunStage(cmd.Context(), *stage)
	}
	if err != nil {
		return reportFailure(errOut, err, paths.LogPath)
	}
	if stage == nil {
		_, _ = fmt.Fprintln(out, color.GreenString(messages.RunSucceeded))
	}
	return nil
}

// reportFailure prints what failed, where the details are, and that nothing
// was rolled back.
func reportFailure(out io.Writer, err error, logPath string) error {
	_, _ = fmt.Fprintln(out, color.RedString(messages.FailureHeaderFmt, err))
	var stageErr *fault.StageError
	if errors.As(err, &stageErr) {
		_, _ = fmt.Fprintf(out, messages.FailureStageFmt+"\n", stageErr.Stage)
	}
	var stepErr *fault.StepError
	if errors.As(err, &stepErr) {
		_, _ = fmt.Fprintf(out, messages.FailureStepFmt+"\n", stepErr.Step)
	}
	_, _ = fmt.Fprintf(out, messages.FailureKindFmt+"\n", fault.Kind(err))
	if logPath != "" {
		_, _ = fmt.Fprintf(out, messages.FailureLogFmt+"\n", logPath)
	}
	if stageErr != nil {
		_, _ = fmt.Fprintln(out, color.YellowString(messages.FailureNoRollback))
	}
	return &SilentExitError{Code: 1}
}
