// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm

import (
	"strconv"

	"github.com/modeco80/sunlight/internal/qemu"
)

// CPU defines the guest processor.
type CPU struct {
	// Model is the QEMU CPU model, like "host" or "max".
	Model string
	// Features are appended to the model as given, e.g. "+avx2" or "-vmx".
	Features []string
	// Cores is the number of cores of the guest.
	Cores uint
}

// Arguments implements [Device].
func (c CPU) Arguments() qemu.Group {
	cpu := append([]string{c.Model}, c.Features...)

	return qemu.Group{
		qemu.UniqueArg("cpu", cpu...),
		qemu.UniqueArg("smp", qemu.Option("cores", strconv.FormatUint(uint64(c.Cores), 10))),
	}
}

// Validate implements [Device]. An empty feature list is valid.
func (c CPU) Validate(*Machine) error {
	if c.Model == "" {
		return ErrCPUModelMissing
	}

	if c.Cores == 0 {
		return ErrCPUCoresMissing
	}

	return nil
}

func (CPU) device() {}

// Memory defines the guest RAM.
type Memory struct {
	// Size as understood by QEMU, like "4G" or "512M". It is passed as is.
	Size string
	// Prealloc allocates all guest memory on start.
	Prealloc bool
}

// Arguments implements [Device].
func (m Memory) Arguments() qemu.Group {
	group := qemu.Group{
		qemu.UniqueArg("m", m.Size),
	}

	if m.Prealloc {
		// TODO: switch to a memory-backend object with prealloc=on, as
		// -mem-prealloc is deprecated in newer QEMU releases.
		group = append(group, qemu.UniqueArg("mem-prealloc"))
	}

	return group
}

// Validate implements [Device].
func (Memory) Validate(*Machine) error {
	return nil
}

func (Memory) device() {}
