// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package vm models a QEMU virtual machine as a set of typed devices and
// compiles it into the QEMU command line.
//
// A [Machine] is created with [NewMachine]. It needs exactly one [Chipset]
// and takes any number of devices and drives, that are rendered in the order
// they are added:
//
//	m, err := vm.NewMachine("test")
//	if err != nil {
//		return err
//	}
//
//	m.SetChipset(vm.Q35{ACPI: true, USB: true}).
//		AddDevice(vm.CPU{Model: "host", Cores: 2}).
//		AddDevice(vm.Memory{Size: "4G"}).
//		AddDrive(vm.CDDrive{Interface: vm.DiskInterfaceIDE, ID: "cd"})
//
//	args, err := m.Arguments()
//
// Each device is validated against the machine before it is rendered. By
// default, the first invalid device aborts compilation with a [DeviceError].
//
// Running QEMU is not done by this package. A [Runner] hands the compiled
// command line to a [Launcher] and sets up the control channel using the
// given collaborators.
package vm
