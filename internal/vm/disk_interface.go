// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm

import "slices"

const (
	// DiskInterfaceIDE attaches drives to the IDE bus, or AHCI/SATA on a
	// [Q35] machine.
	DiskInterfaceIDE DiskInterface = "ide"
	// DiskInterfaceSCSI attaches drives to a SCSI controller, like
	// [VirtIOSCSI].
	DiskInterfaceSCSI DiskInterface = "scsi"
)

// DiskInterface is the bus a drive is attached to in the guest.
type DiskInterface string

func (i *DiskInterface) isKnown() bool {
	knownDiskInterfaces := []DiskInterface{
		DiskInterfaceIDE,
		DiskInterfaceSCSI,
	}

	return slices.Contains(knownDiskInterfaces, *i)
}

// String implements [fmt.Stringer].
func (i *DiskInterface) String() string {
	if !i.isKnown() {
		return ""
	}

	return string(*i)
}

// MarshalText implements [encoding.TextMarshaler].
func (i DiskInterface) MarshalText() ([]byte, error) {
	s := i.String()
	if s == "" {
		return nil, ErrDiskInterfaceInvalid
	}

	return []byte(s), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (i *DiskInterface) UnmarshalText(text []byte) error {
	di := DiskInterface(text)

	if !di.isKnown() {
		return ErrDiskInterfaceInvalid
	}

	*i = di

	return nil
}

// driver returns the QEMU device driver for the given media on the
// interface. Media is either "cd" or "hd".
func (i DiskInterface) driver(media string) string {
	return string(i) + "-" + media
}

func (i DiskInterface) validate() error {
	if !i.isKnown() {
		return ErrDiskInterfaceInvalid
	}

	return nil
}
