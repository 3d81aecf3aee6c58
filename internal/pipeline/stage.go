package pipeline

import (
	"fmt"
	"strings"

	"github.com/conn-castle/kup/internal/config"
	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/messages"
)

// Stage names one pipeline step selectable from the command line.
type Stage string

// Stages in run-all order, followed by the single-stage-only newconfig.
const (
	StageCompile    Stage = "compile"
	StageInstall    Stage = "install"
	StageUpdateMods Stage = "updatemods"
	StageMkinitrd   Stage = "mkinitrd"
	StageUpdateBM   Stage = "updatebm"
	StageClean      Stage = "clean"
	StageNewConfig  Stage = "newconfig"
)

// Stages returns every selectable stage.
func Stages() []Stage {
	return []Stage{StageCompile, StageInstall, StageUpdateMods, StageMkinitrd, StageUpdateBM, StageNewConfig, StageClean}
}

// ParseStage returns the stage named s.
// s is the command-line name; an unknown name is a ConfigurationError listing the valid ones.
func ParseStage(s string) (Stage, error) {
	for _, stage := range Stages() {
		if string(stage) == s {
			return stage, nil
		}
	}
	names := make([]string, 0, len(Stages()))
	for _, stage := range Stages() {
		names = append(names, string(stage))
	}
	return "", fmt.Errorf(messages.PipelineUnknownStageFmt, s, strings.Join(names, "|"))
}

// Plan returns the stages a run-all executes for cfg. Module rebuild only
// runs when enabled.
func Plan(cfg config.Config) []Stage {
	stages := []Stage{StageCompile, StageInstall}
	if cfg.Modules.Rebuild {
		stages = append(stages, StageUpdateMods)
	}
	return append(stages, StageMkinitrd, StageUpdateBM, StageClean)
}

// CheckSingle rejects single stages the selected variant does not support.
// With a unified image the kernel and initrd only exist inside the image, so
// installing either one alone would leave nothing bootable.
func CheckSingle(cfg config.Config, stage Stage) error {
	if cfg.Variant() != config.VariantBootctlUnified {
		return nil
	}
	if stage == StageInstall || stage == StageMkinitrd {
		return fault.Configf(messages.PipelineUnifiedStageFmt, stage, config.VariantBootctlUnified)
	}
	return nil
}

// touchesBoot reports whether stage reads or writes the boot partition.
func touchesBoot(stage Stage) bool {
	switch stage {
	case StageInstall, StageMkinitrd, StageUpdateBM, StageClean:
		return true
	default:
		return false
	}
}
