// Package kconfig brings the kernel configuration of the active source tree
// up to date and keeps a copy of it in the config store.
package kconfig

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/sirupsen/logrus"

	"github.com/conn-castle/kup/internal/config"
	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/kbuild"
	"github.com/conn-castle/kup/internal/messages"
	"github.com/conn-castle/kup/internal/prompt"
	"github.com/conn-castle/kup/internal/version"
)

// DotConfig is the configuration file name inside the kernel source tree.
const DotConfig = ".config"

// Result describes what Update did.
type Result struct {
	// Seeded is set when .config was copied from the store first.
	Seeded bool
	// Diff is the unified diff from the stored config to the updated one.
	Diff  string
	Saved bool
}

// Updater runs the newconfig operation.
type Updater struct {
	build   *kbuild.Builder
	paths   config.Paths
	save    bool
	confirm prompt.Confirmer
	out     io.Writer
	sys     System
	log     logrus.FieldLogger
}

// Deps carries the collaborators of an Updater.
type Deps struct {
	Build   *kbuild.Builder
	Paths   config.Paths
	Save    bool
	Confirm prompt.Confirmer
	Out     io.Writer
	System  System
	Log     logrus.FieldLogger
}

// New returns an updater.
func New(deps Deps) *Updater {
	if deps.System == nil {
		deps.System = RealSystem{}
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	return &Updater{
		build:   deps.Build,
		paths:   deps.Paths,
		save:    deps.Save,
		confirm: deps.Confirm,
		out:     deps.Out,
		sys:     deps.System,
		log:     deps.Log,
	}
}

// Update seeds .config from the store when the tree has none, runs
// olddefconfig, shows what changed and persists the result when asked to.
func (u *Updater) Update(ctx context.Context, vc version.Context) (Result, error) {
	var result Result
	dotconfig := filepath.Join(vc.SourceDir, DotConfig)

	stored, err := u.readOptional(u.paths.ConfigStore)
	if err != nil {
		return result, err
	}
	current, err := u.readOptional(dotconfig)
	if err != nil {
		return result, err
	}
	if current == nil && stored != nil {
		if err := u.sys.WriteFileAtomic(dotconfig, stored, 0o644); err != nil {
			return result, fault.FS(messages.BootOpWrite, dotconfig, err)
		}
		result.Seeded = true
		u.log.WithField("from", u.paths.ConfigStore).Info(messages.KconfigSeeded)
	}

	if err := u.build.OldDefConfig(ctx); err != nil {
		return result, err
	}

	updated, err := u.sys.ReadFile(dotconfig)
	if err != nil {
		return result, fault.FS(messages.KconfigOpRead, dotconfig, err)
	}
	result.Diff = strings.TrimSpace(udiff.Unified(
		u.paths.ConfigStore,
		dotconfig,
		string(stored),
		string(updated),
	))
	if result.Diff == "" {
		_, _ = fmt.Fprintln(u.out, messages.KconfigUnchanged)
		return result, nil
	}
	_, _ = fmt.Fprintln(u.out, result.Diff)

	persist, err := u.shouldPersist()
	if err != nil {
		return result, err
	}
	if !persist {
		u.log.Info(messages.KconfigNotSaved)
		return result, nil
	}

	dir := filepath.Dir(u.paths.ConfigStore)
	if err := u.sys.MkdirAll(dir, 0o755); err != nil {
		return result, fault.FS(messages.BootOpMkdir, dir, err)
	}
	if err := u.sys.WriteFileAtomic(u.paths.ConfigStore, updated, 0o644); err != nil {
		return result, fault.FS(messages.BootOpWrite, u.paths.ConfigStore, err)
	}
	result.Saved = true
	u.log.WithField("path", u.paths.ConfigStore).Info(messages.KconfigSaved)
	return result, nil
}

func (u *Updater) shouldPersist() (bool, error) {
	if u.save {
		return true, nil
	}
	if u.confirm == nil {
		return false, nil
	}
	var yes bool
	err := u.confirm.Confirm(fmt.Sprintf(messages.KconfigConfirmFmt, u.paths.ConfigStore), &yes)
	if errors.Is(err, prompt.ErrNoTerminal) {
		_, _ = fmt.Fprintln(u.out, messages.KconfigNoTerminal)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return yes, nil
}

// readOptional returns nil content for a missing file.
func (u *Updater) readOptional(path string) ([]byte, error) {
	data, err := u.sys.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fault.FS(messages.KconfigOpRead, path, err)
	}
	return data, nil
}
