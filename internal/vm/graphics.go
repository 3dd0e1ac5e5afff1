// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm

import (
	"strconv"

	"github.com/modeco80/sunlight/internal/qemu"
)

const (
	vgaID  = idPrefix + "vga"
	vgpuID = idPrefix + "vgpu"

	mdevDevicesPath = "/sys/bus/mdev/devices/"
)

func vgaArguments(driver string, vramMB uint16) qemu.Group {
	return qemu.Group{
		qemu.RepeatableArg("device",
			driver,
			qemu.Option("vgamem_mb", strconv.FormatUint(uint64(vramMB), 10)),
			qemu.Option("id", vgaID),
		),
	}
}

// StdVGA is the standard VGA adapter.
type StdVGA struct {
	// VRAM size in MB.
	VRAM uint16
}

// Arguments implements [Device].
func (g StdVGA) Arguments() qemu.Group {
	return vgaArguments("VGA", g.VRAM)
}

// Validate implements [Device].
func (StdVGA) Validate(*Machine) error {
	return nil
}

func (StdVGA) device() {}

// CirrusVGA is the Cirrus Logic GD5446 adapter.
type CirrusVGA struct {
	// VRAM size in MB.
	VRAM uint16
}

// Arguments implements [Device].
func (g CirrusVGA) Arguments() qemu.Group {
	return vgaArguments("cirrus-vga", g.VRAM)
}

// Validate implements [Device].
func (CirrusVGA) Validate(*Machine) error {
	return nil
}

func (CirrusVGA) device() {}

// QXL is the Red Hat QXL paravirtual adapter.
type QXL struct{}

// Arguments implements [Device].
func (QXL) Arguments() qemu.Group {
	return qemu.Group{
		qemu.RepeatableArg("device", "qxl-vga", qemu.Option("id", vgaID)),
	}
}

// Validate implements [Device].
func (QXL) Validate(*Machine) error {
	return nil
}

func (QXL) device() {}

// PCIIdentity overrides the PCI ids a passed through device presents to the
// guest. Guest drivers that restrict which devices they support can be
// bypassed with it. All fields are required.
type PCIIdentity struct {
	VendorID    string
	DeviceID    string
	SubVendorID string
	SubDeviceID string
}

func (p *PCIIdentity) complete() bool {
	return p.VendorID != "" && p.DeviceID != "" &&
		p.SubVendorID != "" && p.SubDeviceID != ""
}

// VGPU is a mediated device (mdev) vGPU, like Intel GVT-g or NVIDIA vGPU. It
// is attached to the PCIe root port of a [Q35] machine.
type VGPU struct {
	// UUID of the mdev device. It must match the machine's UUID.
	UUID string
	// RAMFB enables the ramfb device for display output before the guest
	// graphics driver is initialized.
	RAMFB bool
	// PCI optionally overrides the PCI ids the device presents.
	PCI *PCIIdentity
}

// SysfsPath returns the path of the mdev device on the host.
func (g VGPU) SysfsPath() string {
	return mdevDevicesPath + g.UUID
}

// Arguments implements [Device].
func (g VGPU) Arguments() qemu.Group {
	opts := []string{
		"vfio-pci-nohotplug",
		qemu.Option("sysfsdev", g.SysfsPath()),
		"display=on",
		qemu.BoolOption("ramfb", g.RAMFB),
		qemu.Option("id", vgpuID),
		qemu.Option("bus", pcieRootPortID),
		"addr=0x0",
	}

	if g.PCI != nil {
		opts = append(opts,
			qemu.Option("x-pci-vendor-id", g.PCI.VendorID),
			qemu.Option("x-pci-device-id", g.PCI.DeviceID),
			qemu.Option("x-pci-sub-vendor-id", g.PCI.SubVendorID),
			qemu.Option("x-pci-sub-device-id", g.PCI.SubDeviceID),
		)
	}

	return qemu.Group{
		qemu.RepeatableArg("device", opts...),
	}
}

// Validate implements [Device].
//
// The machine must have a UUID and a [Q35] chipset, and the device UUID must
// equal the machine UUID.
func (g VGPU) Validate(m *Machine) error {
	machineUUID, ok := m.UUID()
	if !ok {
		return ErrMachineUUIDMissing
	}

	if !isQ35(m.Chipset()) {
		return ErrChipsetIncompatible
	}

	if g.UUID == "" {
		return ErrIdentifierMissing
	}

	if g.UUID != machineUUID.String() {
		return ErrUUIDMismatch
	}

	if g.PCI != nil && !g.PCI.complete() {
		return ErrPCIIdentityIncomplete
	}

	return nil
}

func (VGPU) device() {}
