// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm

import (
	"github.com/modeco80/sunlight/internal/qemu"
)

const (
	machineTypePC  = "pc"
	machineTypeQ35 = "q35"
)

// pcieRootPortID is the id of the root port every Q35 machine gets. Devices
// that need a PCIe bus attach to it.
const pcieRootPortID = idPrefix + "pcie_root"

// Chipset is the emulated platform of a [Machine]. Exactly one must be set
// before the machine can be compiled.
type Chipset interface {
	Device
	chipset()
}

// PC is the legacy i440FX based machine type.
type PC struct {
	ACPI bool
	USB  bool
}

// Arguments implements [Device].
func (c PC) Arguments() qemu.Group {
	return qemu.Group{
		qemu.UniqueArg("machine",
			machineTypePC,
			qemu.BoolOption("acpi", c.ACPI),
			qemu.BoolOption("usb", c.USB),
		),
	}
}

// Validate implements [Device].
func (PC) Validate(*Machine) error {
	return nil
}

func (PC) device()  {}
func (PC) chipset() {}

// Q35 is the modern machine type. It is preferable for modern guests and
// required for anything that needs a PCIe root, like vGPUs.
type Q35 struct {
	ACPI bool
	USB  bool
	HMAT bool
}

// Arguments implements [Device].
func (c Q35) Arguments() qemu.Group {
	return qemu.Group{
		qemu.UniqueArg("machine",
			machineTypeQ35,
			qemu.BoolOption("acpi", c.ACPI),
			qemu.BoolOption("usb", c.USB),
			qemu.BoolOption("hmat", c.HMAT),
		),
		qemu.RepeatableArg("device",
			"ioh3420",
			qemu.Option("id", pcieRootPortID),
			"slot=0",
			"bus=pcie.0",
		),
	}
}

// Validate implements [Device].
func (Q35) Validate(*Machine) error {
	return nil
}

func (Q35) device()  {}
func (Q35) chipset() {}

func isQ35(c Chipset) bool {
	switch c := c.(type) {
	case Q35:
		return true
	case *Q35:
		return c != nil
	default:
		return false
	}
}
