package bootmgr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/kup/internal/config"
	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/runner"
	"github.com/conn-castle/kup/internal/testutil"
	"github.com/conn-castle/kup/internal/version"
)

type failingRemove struct {
	RealSystem
}

func (failingRemove) RemoveAll(string) error { return errors.New("read-only file system") }

func newAdapter(t *testing.T, variant config.Variant, root string, rec *runner.Recorder) Adapter {
	t.Helper()
	adapter, err := New(variant, Deps{Paths: config.DefaultPaths(root), Runner: rec, Title: "Gentoo Linux"})
	require.NoError(t, err)
	return adapter
}

func TestNewVariants(t *testing.T) {
	root := t.TempDir()
	for _, variant := range []config.Variant{config.VariantGrub, config.VariantBootctlSplit, config.VariantBootctlUnified} {
		adapter := newAdapter(t, variant, root, &runner.Recorder{})
		assert.Equal(t, variant, adapter.Variant())
	}
	_, err := New("lilo", Deps{Paths: config.DefaultPaths(root)})
	assert.ErrorIs(t, err, fault.ErrConfiguration)
}

func TestRequiredMountDir(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, filepath.Join(root, "boot", "grub"), newAdapter(t, config.VariantGrub, root, nil).RequiredMountDir())
	assert.Equal(t, filepath.Join(root, "boot", "EFI"), newAdapter(t, config.VariantBootctlSplit, root, nil).RequiredMountDir())
	assert.Equal(t, filepath.Join(root, "boot", "EFI"), newAdapter(t, config.VariantBootctlUnified, root, nil).RequiredMountDir())
}

func TestGrubPaths(t *testing.T) {
	root := t.TempDir()
	grub := newAdapter(t, config.VariantGrub, root, nil)
	vc := version.Context{KernelVersion: "5.15.10-gentoo"}
	boot := filepath.Join(root, "boot")

	assert.Equal(t, InstallViaBuildSystem, grub.KernelInstallMethod())
	assert.Equal(t, filepath.Join(boot, "vmlinuz-5.15.10-gentoo"), grub.KernelInstallPath(vc))
	assert.Equal(t, filepath.Join(boot, "initramfs-5.15.10-gentoo.img"), grub.InitrdPath(vc))
	assert.Equal(t, []string{
		filepath.Join(boot, "vmlinuz-5.15.9-gentoo"),
		filepath.Join(boot, "System.map-5.15.9-gentoo"),
		filepath.Join(boot, "config-5.15.9-gentoo"),
		filepath.Join(boot, "initramfs-5.15.9-gentoo.img"),
	}, grub.ArtifactPaths(vc, "5.15.9-gentoo"))
}

func TestGrubWriteBootEntryRegeneratesConfig(t *testing.T) {
	root := t.TempDir()
	rec := &runner.Recorder{}
	grub := newAdapter(t, config.VariantGrub, root, rec)

	require.NoError(t, grub.WriteBootEntry(context.Background(), version.Context{KernelVersion: "6.1.0-gentoo"}, "quiet"))
	require.Len(t, rec.Steps, 1)
	assert.Equal(t, []string{"grub-mkconfig", "-o", filepath.Join(root, "boot", "grub", "grub.cfg")}, rec.Steps[0].Argv())
}

func TestGrubWriteBootEntryFailure(t *testing.T) {
	rec := &runner.Recorder{Fail: map[string]int{"grub-mkconfig": 1}}
	grub := newAdapter(t, config.VariantGrub, t.TempDir(), rec)
	err := grub.WriteBootEntry(context.Background(), version.Context{KernelVersion: "6.1.0-gentoo"}, "")
	assert.ErrorIs(t, err, fault.ErrExternalStep)
}

func TestGrubEnumerateOtherVersions(t *testing.T) {
	root := t.TempDir()
	for _, v := range []string{"5.15.10-gentoo", "5.15.9-gentoo", "5.14.1-gentoo"} {
		testutil.WriteFile(t, root, "boot/vmlinuz-"+v, "k")
		testutil.WriteFile(t, root, "boot/System.map-"+v, "m")
		testutil.WriteFile(t, root, "boot/config-"+v, "c")
		testutil.WriteFile(t, root, "boot/initramfs-"+v+".img", "i")
	}
	// Only an initrd left behind still marks the version as present.
	testutil.WriteFile(t, root, "boot/initramfs-5.10.1-gentoo.img", "i")
	testutil.WriteFile(t, root, "boot/grub/grub.cfg", "")
	testutil.WriteFile(t, root, "boot/initramfs-broken", "")

	grub := newAdapter(t, config.VariantGrub, root, nil)
	got, err := grub.EnumerateOtherVersions(version.Context{KernelVersion: "5.15.10-gentoo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"5.10.1-gentoo", "5.14.1-gentoo", "5.15.9-gentoo"}, got)
}

func TestEnumerateMissingBootDir(t *testing.T) {
	root := t.TempDir()
	vc := version.Context{KernelVersion: "6.1.0-gentoo", MachineID: "abcd1234"}
	for _, variant := range []config.Variant{config.VariantGrub, config.VariantBootctlSplit, config.VariantBootctlUnified} {
		got, err := newAdapter(t, variant, root, nil).EnumerateOtherVersions(vc)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestGrubDeleteVersionArtifacts(t *testing.T) {
	root := t.TempDir()
	grub := newAdapter(t, config.VariantGrub, root, nil)
	vc := version.Context{KernelVersion: "6.1.0-gentoo"}
	paths := grub.ArtifactPaths(vc, "6.0.0-gentoo")
	for _, p := range paths[:2] {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	require.NoError(t, grub.DeleteVersionArtifacts(vc, "6.0.0-gentoo"))
	for _, p := range paths {
		assert.False(t, testutil.Exists(t, p), p)
	}
}

func TestDeleteVersionArtifactsFailure(t *testing.T) {
	adapter, err := New(config.VariantGrub, Deps{Paths: config.DefaultPaths(t.TempDir()), System: failingRemove{}})
	require.NoError(t, err)
	err = adapter.DeleteVersionArtifacts(version.Context{KernelVersion: "6.1.0"}, "6.0.0")
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrFilesystem)
	var fsErr *fault.FSError
	require.True(t, errors.As(err, &fsErr))
	assert.Contains(t, fsErr.Path, "vmlinuz-6.0.0")
}

func TestBootctlSplitWriteBootEntry(t *testing.T) {
	root := t.TempDir()
	split := newAdapter(t, config.VariantBootctlSplit, root, nil)
	vc := version.Context{KernelVersion: "6.1.0-gentoo", MachineID: "abcd1234"}

	require.NoError(t, split.WriteBootEntry(context.Background(), vc, "root=/dev/sda2 ro quiet"))

	path := filepath.Join(root, "boot", "loader", "entries", "abcd1234-6.1.0-gentoo.conf")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, []string{
		"title        Gentoo Linux",
		"version      6.1.0-gentoo",
		"machine-id   abcd1234",
		"linux        /abcd1234/6.1.0-gentoo/linux",
		"initrd       /abcd1234/6.1.0-gentoo/initrd",
		"options      root=/dev/sda2 ro quiet",
	}, lines)
}

func TestBootctlSplitPaths(t *testing.T) {
	root := t.TempDir()
	split := newAdapter(t, config.VariantBootctlSplit, root, nil)
	vc := version.Context{KernelVersion: "6.1.0-gentoo", MachineID: "abcd1234"}
	dir := filepath.Join(root, "boot", "abcd1234", "6.1.0-gentoo")

	assert.Equal(t, InstallByCopy, split.KernelInstallMethod())
	assert.Equal(t, filepath.Join(dir, "linux"), split.KernelInstallPath(vc))
	assert.Equal(t, filepath.Join(dir, "initrd"), split.InitrdPath(vc))
	assert.Equal(t, []string{
		filepath.Join(dir, "linux"),
		filepath.Join(dir, "initrd"),
		filepath.Join(root, "boot", "loader", "entries", "abcd1234-6.1.0-gentoo.conf"),
		dir,
	}, split.ArtifactPaths(vc, "6.1.0-gentoo"))
}

func TestBootctlSplitEnumerateAndDelete(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "boot/abcd1234/6.1.0-gentoo/linux", "k")
	testutil.WriteFile(t, root, "boot/abcd1234/6.0.5-gentoo/linux", "k")
	testutil.WriteFile(t, root, "boot/loader/entries/abcd1234-6.1.0-gentoo.conf", "")
	testutil.WriteFile(t, root, "boot/loader/entries/abcd1234-5.19.2-gentoo.conf", "")
	testutil.WriteFile(t, root, "boot/loader/entries/ffff0000-5.4.0.conf", "")
	testutil.WriteFile(t, root, "boot/loader/loader.conf", "")

	split := newAdapter(t, config.VariantBootctlSplit, root, nil)
	vc := version.Context{KernelVersion: "6.1.0-gentoo", MachineID: "abcd1234"}
	got, err := split.EnumerateOtherVersions(vc)
	require.NoError(t, err)
	assert.Equal(t, []string{"5.19.2-gentoo", "6.0.5-gentoo"}, got)

	require.NoError(t, split.DeleteVersionArtifacts(vc, "6.0.5-gentoo"))
	assert.False(t, testutil.Exists(t, filepath.Join(root, "boot", "abcd1234", "6.0.5-gentoo")))
	assert.True(t, testutil.Exists(t, filepath.Join(root, "boot", "abcd1234", "6.1.0-gentoo", "linux")))
}

func TestBootctlUnified(t *testing.T) {
	root := t.TempDir()
	rec := &runner.Recorder{}
	unified := newAdapter(t, config.VariantBootctlUnified, root, rec)
	vc := version.Context{KernelVersion: "6.1.0-gentoo", MachineID: "abcd1234"}

	image := filepath.Join(root, "boot", "EFI", "Linux", "linux-6.1.0-gentoo-abcd1234.efi")
	assert.Equal(t, InstallEmbedded, unified.KernelInstallMethod())
	assert.Equal(t, image, unified.KernelInstallPath(vc))
	assert.Equal(t, filepath.Join(root, "var", "tmp", "kup", "initrd-6.1.0-gentoo.img"), unified.InitrdPath(vc))
	assert.False(t, strings.HasPrefix(unified.InitrdPath(vc), filepath.Join(root, "boot")))
	assert.Equal(t, []string{image}, unified.ArtifactPaths(vc, "6.1.0-gentoo"))

	require.NoError(t, unified.WriteBootEntry(context.Background(), vc, "quiet"))
	assert.Empty(t, rec.Steps)
	assert.False(t, testutil.Exists(t, filepath.Join(root, "boot", "loader")))
}

func TestBootctlUnifiedEnumerate(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "boot/EFI/Linux/linux-6.1.0-gentoo-abcd1234.efi", "")
	testutil.WriteFile(t, root, "boot/EFI/Linux/linux-6.0.0-gentoo-abcd1234.efi", "")
	testutil.WriteFile(t, root, "boot/EFI/Linux/linux-6.0.0-gentoo-ffff0000.efi", "")
	testutil.WriteFile(t, root, "boot/EFI/Linux/other.efi", "")

	unified := newAdapter(t, config.VariantBootctlUnified, root, nil)
	got, err := unified.EnumerateOtherVersions(version.Context{KernelVersion: "6.1.0-gentoo", MachineID: "abcd1234"})
	require.NoError(t, err)
	assert.Equal(t, []string{"6.0.0-gentoo"}, got)
}

func TestEntryRender(t *testing.T) {
	entry := Entry{Title: "T", Version: "V", MachineID: "M", Linux: "/l", Initrd: "/i", Options: "o p"}
	assert.Equal(t, "title        T\nversion      V\nmachine-id   M\nlinux        /l\ninitrd       /i\noptions      o p\n", entry.Render())
}
