// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package host

import (
	"errors"
	"fmt"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/modeco80/sunlight/internal/vm"
)

// KVMDevice is the path of the KVM device node.
const KVMDevice = "/dev/kvm"

const linkTypeTuntap = "tuntap"

// accessExists is the access(2) mode that only checks for existence.
const accessExists uint32 = 0

var (
	// ErrKVMUnavailable is returned if the KVM device can not be opened for
	// reading and writing.
	ErrKVMUnavailable = errors.New("kvm not available")

	// ErrLinkNotFound is returned if a network interface does not exist.
	ErrLinkNotFound = errors.New("network interface not found")

	// ErrLinkNotTap is returned if a network interface is not a tap device.
	ErrLinkNotTap = errors.New("network interface is not a tap device")

	// ErrMdevNotFound is returned if a mediated device does not exist.
	ErrMdevNotFound = errors.New("mediated device not found")

	// ErrImageNotAccessible is returned if a disk image can not be accessed
	// with the required mode.
	ErrImageNotAccessible = errors.New("image not accessible")
)

// CheckError is returned for a failed host check.
type CheckError struct {
	// Subject of the check, like a path or an interface name.
	Subject string
	Err     error
}

// Error implements the [error] interface.
func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: %v", e.Subject, e.Err)
}

// Is implements the [errors.Is] interface.
func (*CheckError) Is(other error) bool {
	_, ok := other.(*CheckError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *CheckError) Unwrap() error {
	return e.Err
}

// Checker checks that the host provides what a [vm.Machine] references:
// KVM, tap interfaces, mediated devices and disk images.
type Checker struct {
	// LinkByName looks up host network interfaces. If nil,
	// [netlink.LinkByName] is used.
	LinkByName func(name string) (netlink.Link, error)

	// Access checks file accessibility like access(2). If nil, [unix.Access]
	// is used.
	Access func(path string, mode uint32) error
}

func (c *Checker) linkByName(name string) (netlink.Link, error) {
	if c.LinkByName == nil {
		return netlink.LinkByName(name)
	}

	return c.LinkByName(name)
}

func (c *Checker) access(path string, mode uint32) error {
	if c.Access == nil {
		return unix.Access(path, mode)
	}

	return c.Access(path, mode)
}

// KVM checks that the KVM device is accessible.
func (c *Checker) KVM() error {
	err := c.access(KVMDevice, unix.R_OK|unix.W_OK)
	if err != nil {
		return &CheckError{
			Subject: KVMDevice,
			Err:     fmt.Errorf("%w: %w", ErrKVMUnavailable, err),
		}
	}

	return nil
}

// Check runs all checks for the given machine and returns all failures.
func (c *Checker) Check(m *vm.Machine) error {
	errs := []error{c.KVM()}

	for _, d := range m.Devices() {
		errs = append(errs, c.checkDevice(d))
	}

	for _, d := range m.Drives() {
		errs = append(errs, c.checkDevice(d))
	}

	return errors.Join(errs...)
}

func (c *Checker) checkDevice(d vm.Device) error {
	switch d := d.(type) {
	case vm.TapNetwork:
		return c.tap(d.Ifname)
	case vm.VGPU:
		return c.path(d.SysfsPath(), accessExists, ErrMdevNotFound)
	case vm.HDDrive:
		return c.image(d.ImagePath, d.ReadOnly)
	case vm.PflashDrive:
		return c.image(d.ImagePath, d.ReadOnly)
	case vm.CDDrive:
		if d.ImagePath == "" {
			return nil
		}

		return c.image(d.ImagePath, true)
	default:
		return nil
	}
}

func (c *Checker) tap(name string) error {
	link, err := c.linkByName(name)
	if err != nil {
		return &CheckError{
			Subject: name,
			Err:     fmt.Errorf("%w: %w", ErrLinkNotFound, err),
		}
	}

	if link.Type() != linkTypeTuntap {
		return &CheckError{
			Subject: name,
			Err:     fmt.Errorf("%w: type %s", ErrLinkNotTap, link.Type()),
		}
	}

	return nil
}

func (c *Checker) image(path string, readOnly bool) error {
	var mode uint32 = unix.R_OK
	if !readOnly {
		mode |= unix.W_OK
	}

	return c.path(path, mode, ErrImageNotAccessible)
}

func (c *Checker) path(path string, mode uint32, sentinel error) error {
	err := c.access(path, mode)
	if err != nil {
		return &CheckError{
			Subject: path,
			Err:     fmt.Errorf("%w: %w", sentinel, err),
		}
	}

	return nil
}
