package uki

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/kup/internal/fault"
)

func sectionNames(sections []Section) []string {
	names := make([]string, 0, len(sections))
	for _, section := range sections {
		names = append(names, section.Name)
	}
	return names
}

func TestSectionsOrderAndAddresses(t *testing.T) {
	sections, err := Sections(Inputs{
		OSRelease: "/etc/os-release",
		Cmdline:   "/tmp/cmdline",
		Splash:    "/usr/share/splash.bmp",
		Linux:     "/usr/src/linux/arch/x86/boot/bzImage",
		Initrd:    "/tmp/initrd.img",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{".osrel", ".cmdline", ".splash", ".linux", ".initrd"}, sectionNames(sections))

	var vmas []string
	for _, section := range sections {
		vmas = append(vmas, FormatVMA(section.VMA))
	}
	assert.Equal(t, []string{"0x0020000", "0x0030000", "0x0040000", "0x2000000", "0x3000000"}, vmas)
}

func TestSectionsWithoutSplash(t *testing.T) {
	sections, err := Sections(Inputs{OSRelease: "/etc/os-release", Cmdline: "/tmp/cmdline", Linux: "/k", Initrd: "/i"})
	require.NoError(t, err)
	assert.Equal(t, []string{".osrel", ".cmdline", ".linux", ".initrd"}, sectionNames(sections))
}

func TestSectionsRequireLinuxAndInitrd(t *testing.T) {
	_, err := Sections(Inputs{Linux: "/k"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrConfiguration))
	assert.Contains(t, err.Error(), ".initrd")
}

func TestValidateSections(t *testing.T) {
	cases := []struct {
		name     string
		sections []Section
		wantErr  string
	}{
		{
			name: "valid minimal",
			sections: []Section{
				{Name: SectionLinux, Source: "/k", VMA: VMALinux},
				{Name: SectionInitrd, Source: "/i", VMA: VMAInitrd},
			},
		},
		{
			name: "out of order",
			sections: []Section{
				{Name: SectionInitrd, Source: "/i", VMA: VMAInitrd},
				{Name: SectionLinux, Source: "/k", VMA: VMALinux},
			},
			wantErr: "does not follow",
		},
		{
			name: "duplicate address",
			sections: []Section{
				{Name: SectionOSRel, Source: "/o", VMA: VMAOSRel},
				{Name: SectionCmdline, Source: "/c", VMA: VMAOSRel},
				{Name: SectionLinux, Source: "/k", VMA: VMALinux},
				{Name: SectionInitrd, Source: "/i", VMA: VMAInitrd},
			},
			wantErr: "does not follow",
		},
		{
			name:     "missing linux",
			sections: []Section{{Name: SectionInitrd, Source: "/i", VMA: VMAInitrd}},
			wantErr:  "mandatory section .linux",
		},
		{
			name: "empty source",
			sections: []Section{
				{Name: SectionLinux, VMA: VMALinux},
				{Name: SectionInitrd, Source: "/i", VMA: VMAInitrd},
			},
			wantErr: "section .linux has no source file",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSections(tc.sections)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
