package uki

import (
	"fmt"

	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/messages"
)

// Section names and load addresses the EFI stub expects. The addresses are a
// contract with the stub and must not change.
const (
	SectionOSRel   = ".osrel"
	SectionCmdline = ".cmdline"
	SectionSplash  = ".splash"
	SectionLinux   = ".linux"
	SectionInitrd  = ".initrd"

	VMAOSRel   uint64 = 0x0020000
	VMACmdline uint64 = 0x0030000
	VMASplash  uint64 = 0x0040000
	VMALinux   uint64 = 0x2000000
	VMAInitrd  uint64 = 0x3000000
)

// Section is one file embedded into the stub at a fixed virtual address.
type Section struct {
	Name   string
	Source string
	VMA    uint64
}

// Inputs names the files to embed. Splash is optional; Linux and Initrd are required.
type Inputs struct {
	OSRelease string
	Cmdline   string
	Splash    string
	Linux     string
	Initrd    string
}

// Sections returns the sections for in, in load-address order.
// in names the source file of each section; an empty Splash drops .splash.
func Sections(in Inputs) ([]Section, error) {
	var sections []Section
	if in.OSRelease != "" {
		sections = append(sections, Section{Name: SectionOSRel, Source: in.OSRelease, VMA: VMAOSRel})
	}
	if in.Cmdline != "" {
		sections = append(sections, Section{Name: SectionCmdline, Source: in.Cmdline, VMA: VMACmdline})
	}
	if in.Splash != "" {
		sections = append(sections, Section{Name: SectionSplash, Source: in.Splash, VMA: VMASplash})
	}
	sections = append(sections,
		Section{Name: SectionLinux, Source: in.Linux, VMA: VMALinux},
		Section{Name: SectionInitrd, Source: in.Initrd, VMA: VMAInitrd},
	)
	if err := ValidateSections(sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// ValidateSections checks that .linux and .initrd are present with sources and
// that addresses strictly increase.
func ValidateSections(sections []Section) error {
	required := map[string]bool{SectionLinux: false, SectionInitrd: false}
	for i, section := range sections {
		if _, ok := required[section.Name]; ok {
			if section.Source == "" {
				return fault.Configf(messages.UKISectionSourceMissingFmt, section.Name)
			}
			required[section.Name] = true
		}
		if i > 0 && section.VMA <= sections[i-1].VMA {
			return fault.Configf(messages.UKISectionOrderFmt, section.Name, FormatVMA(section.VMA), sections[i-1].Name, FormatVMA(sections[i-1].VMA))
		}
	}
	for _, name := range []string{SectionLinux, SectionInitrd} {
		if !required[name] {
			return fault.Configf(messages.UKISectionMissingFmt, name)
		}
	}
	return nil
}

// FormatVMA renders an address the way objcopy is given it.
func FormatVMA(vma uint64) string {
	return fmt.Sprintf("0x%07x", vma)
}
