// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/modeco80/sunlight/internal/vm"
)

const (
	scsiControllerID = "scsic"
	userNetworkID    = "usernet"
	nicID            = "net0"
	cdDriveID        = "cd"
	hdDriveID        = "sdda"
	vgaMemory        = 8
)

// newMachine assembles the machine described by the flags: a Q35 machine
// with a SCSI controller, user mode networking, an empty CD drive and the
// hard disk.
func newMachine(flags *flags) (*vm.Machine, error) {
	machine, err := vm.NewMachine(flags.name)
	if err != nil {
		return nil, fmt.Errorf("new machine: %w", err)
	}

	machineUUID := flags.machineUUID()
	if machineUUID != uuid.Nil {
		machine.SetUUID(machineUUID)
	}

	machine.SetChipset(vm.Q35{ACPI: true, USB: true}).
		AddDevice(vm.CPU{Model: flags.cpu, Cores: flags.cores}).
		AddDevice(vm.Memory{Size: flags.memory, Prealloc: true})

	if flags.vgpu {
		var mdevUUID string
		if machineUUID != uuid.Nil {
			mdevUUID = machineUUID.String()
		}

		machine.AddDevice(vm.VGPU{UUID: mdevUUID, RAMFB: true})
	} else {
		machine.AddDevice(vm.StdVGA{VRAM: vgaMemory})
	}

	machine.AddDevice(vm.VirtIOSCSI{ID: scsiControllerID}).
		AddDevice(vm.UserNetwork{ID: userNetworkID}).
		AddDevice(vm.VirtioNIC{ID: nicID, Netdev: userNetworkID}).
		AddDrive(vm.CDDrive{Interface: vm.DiskInterfaceSCSI, ID: cdDriveID}).
		AddDrive(vm.HDDrive{
			ID:        hdDriveID,
			Interface: flags.diskInterface,
			ImagePath: flags.disk,
			Format:    flags.diskFormat,
			SSD:       true,
			Cache:     "writethrough",
			AIO:       "io_uring",
		}).
		SetLenientValidation(flags.lenient)

	return machine, nil
}
