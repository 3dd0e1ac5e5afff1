// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm

import (
	"github.com/modeco80/sunlight/internal/qemu"
)

// idPrefix namespaces all identifiers of devices attached to a machine so
// they do not collide with QEMU internal names.
const idPrefix = "vm."

// Device is a piece of virtual hardware that can be attached to a [Machine].
//
// The set of devices is closed. All implementations are provided by this
// package.
type Device interface {
	// Arguments renders the QEMU arguments for the device. It depends on the
	// fields of the device only and never fails. Inconsistent configuration
	// is caught by Validate.
	Arguments() qemu.Group

	// Validate checks the device configuration against the machine it is
	// attached to. It returns nil if the device is valid.
	Validate(m *Machine) error

	device()
}

// Render returns the command line fragment of the given [Device].
func Render(d Device) string {
	return d.Arguments().String()
}

func namespaced(id string, suffix ...string) string {
	s := idPrefix + id
	for _, e := range suffix {
		s += "." + e
	}

	return s
}

func requireID(id string) error {
	if id == "" {
		return ErrIdentifierMissing
	}

	return nil
}
