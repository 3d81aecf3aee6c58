package bootmgr

import (
	"fmt"
	"strings"
)

// Entry is a boot-loader-spec entry for one kernel version.
type Entry struct {
	Title     string
	Version   string
	MachineID string
	// Linux and Initrd are relative to the root of the boot partition.
	Linux   string
	Initrd  string
	Options string
}

// Render returns the entry in its fixed six-line format.
func (e Entry) Render() string {
	var b strings.Builder
	for _, field := range [][2]string{
		{"title", e.Title},
		{"version", e.Version},
		{"machine-id", e.MachineID},
		{"linux", e.Linux},
		{"initrd", e.Initrd},
		{"options", e.Options},
	} {
		fmt.Fprintf(&b, "%-12s %s\n", field[0], field[1])
	}
	return b.String()
}
