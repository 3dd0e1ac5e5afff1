// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm

import (
	"errors"
	"fmt"
	"net"

	"github.com/modeco80/sunlight/internal/qemu"
)

// netdev is implemented by network backends that adapters can reference.
type netdev interface {
	netdevID() string
}

// UserNetwork is a user mode (SLIRP) network backend.
type UserNetwork struct {
	ID string
}

// Arguments implements [Device].
func (n UserNetwork) Arguments() qemu.Group {
	return qemu.Group{
		qemu.RepeatableArg("netdev", "user", qemu.Option("id", namespaced(n.ID))),
	}
}

// Validate implements [Device].
func (n UserNetwork) Validate(*Machine) error {
	return requireID(n.ID)
}

func (n UserNetwork) netdevID() string { return n.ID }

func (UserNetwork) device() {}

// TapNetwork is a network backend attached to an existing tap interface on
// the host. Host side scripts are disabled and vhost acceleration is enabled.
type TapNetwork struct {
	ID string
	// Ifname is the name of the tap interface on the host.
	Ifname string
}

// Arguments implements [Device].
func (n TapNetwork) Arguments() qemu.Group {
	return qemu.Group{
		qemu.RepeatableArg("netdev",
			"tap",
			"vhost=on",
			"script=no",
			"downscript=no",
			qemu.Option("ifname", n.Ifname),
			qemu.Option("id", namespaced(n.ID)),
		),
	}
}

// Validate implements [Device].
func (n TapNetwork) Validate(*Machine) error {
	if n.Ifname == "" {
		return errors.Join(requireID(n.ID), fmt.Errorf("tap interface: %w", ErrIdentifierMissing))
	}

	return requireID(n.ID)
}

func (n TapNetwork) netdevID() string { return n.ID }

func (TapNetwork) device() {}

func nicArguments(driver, id, netdev, mac string) qemu.Group {
	opts := []string{
		driver,
		qemu.Option("id", namespaced(id)),
		qemu.Option("netdev", namespaced(netdev)),
	}

	if mac != "" {
		opts = append(opts, qemu.Option("mac", mac))
	}

	return qemu.Group{
		qemu.RepeatableArg("device", opts...),
	}
}

func validateNIC(m *Machine, id, netdev, mac string) error {
	if err := requireID(id); err != nil {
		return err
	}

	if netdev == "" {
		return fmt.Errorf("netdev: %w", ErrIdentifierMissing)
	}

	if !m.hasNetdev(netdev) {
		return fmt.Errorf("%w: %s", ErrNetdevUnknown, netdev)
	}

	if mac != "" {
		if _, err := net.ParseMAC(mac); err != nil {
			return fmt.Errorf("%w: %w", ErrMACInvalid, err)
		}
	}

	return nil
}

// VirtioNIC is a VirtIO network adapter.
type VirtioNIC struct {
	ID string
	// Netdev is the ID of the network backend the adapter is connected to.
	Netdev string
	// MAC address of the adapter. QEMU picks one if empty.
	MAC string
}

// Arguments implements [Device].
func (n VirtioNIC) Arguments() qemu.Group {
	return nicArguments("virtio-net-pci", n.ID, n.Netdev, n.MAC)
}

// Validate implements [Device].
func (n VirtioNIC) Validate(m *Machine) error {
	return validateNIC(m, n.ID, n.Netdev, n.MAC)
}

func (VirtioNIC) device() {}

// RTL8139NIC is an emulated Realtek RTL8139 network adapter.
type RTL8139NIC struct {
	ID     string
	Netdev string
	MAC    string
}

// Arguments implements [Device].
func (n RTL8139NIC) Arguments() qemu.Group {
	return nicArguments("rtl8139", n.ID, n.Netdev, n.MAC)
}

// Validate implements [Device].
func (n RTL8139NIC) Validate(m *Machine) error {
	return validateNIC(m, n.ID, n.Netdev, n.MAC)
}

func (RTL8139NIC) device() {}
