// Package clean removes everything that belongs to kernel versions other than
// the active one.
package clean

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/conn-castle/kup/internal/bootmgr"
	"github.com/conn-castle/kup/internal/config"
	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/messages"
	"github.com/conn-castle/kup/internal/version"
)

// Plan lists what a cleanup will remove.
type Plan struct {
	// BootVersions are the stale versions with boot-manager state.
	BootVersions []string
	// Trees are stale kernel source trees and module trees.
	Trees []string
}

// StaleVersionCleaner deletes the boot artifacts, source trees and module trees
// of stale versions.
type StaleVersionCleaner struct {
	adapter bootmgr.Adapter
	paths   config.Paths
	sys     System
	log     logrus.FieldLogger
}

// New returns a cleaner. A nil sys uses RealSystem.
// adapter enumerates and deletes boot artifacts; log receives one entry per deletion.
func New(adapter bootmgr.Adapter, paths config.Paths, sys System, log logrus.FieldLogger) *StaleVersionCleaner {
	if sys == nil {
		sys = RealSystem{}
	}
	return &StaleVersionCleaner{adapter: adapter, paths: paths, sys: sys, log: log}
}

// Plan enumerates stale versions. The active version never appears: the
// adapter excludes it and tree names are compared against it here.
func (c *StaleVersionCleaner) Plan(vc version.Context) (Plan, error) {
	versions, err := c.adapter.EnumerateOtherVersions(vc)
	if err != nil {
		return Plan{}, err
	}
	sources, err := c.staleTrees(c.paths.SourceDir, version.SourcePrefix, vc)
	if err != nil {
		return Plan{}, err
	}
	modules, err := c.staleTrees(c.paths.ModulesDir, "", vc)
	if err != nil {
		return Plan{}, err
	}
	return Plan{BootVersions: versions, Trees: append(sources, modules...)}, nil
}

// Clean removes everything Plan reports.
func (c *StaleVersionCleaner) Clean(_ context.Context, vc version.Context) (Plan, error) {
	plan, err := c.Plan(vc)
	if err != nil {
		return Plan{}, err
	}
	for _, v := range plan.BootVersions {
		c.log.WithField("version", v).Info(messages.CleanBootVersion)
		if err := c.adapter.DeleteVersionArtifacts(vc, v); err != nil {
			return plan, err
		}
	}
	for _, tree := range plan.Trees {
		c.log.WithField("path", tree).Info(messages.CleanTree)
		if err := c.sys.RemoveAll(tree); err != nil {
			return plan, fault.FS(messages.BootOpRemove, tree, err)
		}
	}
	return plan, nil
}

// staleTrees lists the directories in dir named prefix+version for a valid
// version other than the active one. Symlinks such as /usr/src/linux are skipped.
func (c *StaleVersionCleaner) staleTrees(dir string, prefix string, vc version.Context) ([]string, error) {
	entries, err := c.sys.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fault.FS(messages.BootOpReadDir, dir, err)
	}
	activeSource := filepath.Clean(vc.SourceDir)
	var out []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		v, ok := strings.CutPrefix(entry.Name(), prefix)
		if !ok || v == vc.KernelVersion || version.Validate(v) != nil {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if path == activeSource {
			continue
		}
		out = append(out, path)
	}
	sort.Strings(out)
	return out, nil
}
