// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/modeco80/sunlight/internal/qemu"
)

const (
	accelerator       = "kvm"
	processNamePrefix = "sunlight_"

	sectionDevices = "devices"
	sectionDrives  = "drives"
)

// InvalidDevicePlaceholder is put in place of a device that failed
// validation, if lenient validation is enabled on the [Machine].
const InvalidDevicePlaceholder = "invalid-device"

// Machine is a QEMU virtual machine definition.
//
// Devices and drives are rendered in the order they are added. All devices
// are rendered before any drive.
type Machine struct {
	name    string
	uuid    uuid.NullUUID
	chipset Chipset
	devices []Device
	drives  []Device
	lenient bool
}

// NewMachine creates a new [Machine] with the given name. The name must not
// contain whitespace.
func NewMachine(name string) (*Machine, error) {
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return &Machine{name: name}, nil
}

// SetUUID sets the UUID of the machine.
func (m *Machine) SetUUID(id uuid.UUID) *Machine {
	m.uuid = uuid.NullUUID{UUID: id, Valid: true}
	return m
}

// SetChipset sets the machine type, replacing any previously set one.
func (m *Machine) SetChipset(c Chipset) *Machine {
	m.chipset = c
	return m
}

// AddDevice appends a device.
func (m *Machine) AddDevice(d Device) *Machine {
	m.devices = append(m.devices, d)
	return m
}

// AddDrive appends a drive.
func (m *Machine) AddDrive(d Device) *Machine {
	m.drives = append(m.drives, d)
	return m
}

// SetLenientValidation sets whether devices failing validation abort
// compilation by [Machine.Arguments] or are replaced by
// [InvalidDevicePlaceholder].
func (m *Machine) SetLenientValidation(lenient bool) *Machine {
	m.lenient = lenient
	return m
}

// Name returns the name of the machine.
func (m *Machine) Name() string {
	return m.name
}

// UUID returns the UUID of the machine and whether it is set.
func (m *Machine) UUID() (uuid.UUID, bool) {
	return m.uuid.UUID, m.uuid.Valid
}

// Chipset returns the machine type. It is nil if not set yet.
func (m *Machine) Chipset() Chipset {
	return m.chipset
}

// Devices returns a copy of the list of devices.
func (m *Machine) Devices() []Device {
	return slices.Clone(m.devices)
}

// Drives returns a copy of the list of drives.
func (m *Machine) Drives() []Device {
	return slices.Clone(m.drives)
}

type entry struct {
	section string
	index   int
	device  Device
}

func (m *Machine) entries() []entry {
	entries := make([]entry, 0, len(m.devices)+len(m.drives))

	for idx, d := range m.devices {
		entries = append(entries, entry{sectionDevices, idx, d})
	}

	for idx, d := range m.drives {
		entries = append(entries, entry{sectionDrives, idx, d})
	}

	return entries
}

func (m *Machine) hasNetdev(id string) bool {
	for _, e := range m.entries() {
		if n, ok := e.device.(netdev); ok && n.netdevID() == id {
			return true
		}
	}

	return false
}

// Validate validates all devices and drives and returns all failures.
func (m *Machine) Validate() error {
	var errs []error

	if m.chipset == nil {
		errs = append(errs, ErrNoMachineType)
	}

	for _, e := range m.entries() {
		err := e.device.Validate(m)
		if err != nil {
			errs = append(errs, e.error(err))
		}
	}

	return errors.Join(errs...)
}

func (e entry) error(err error) *DeviceError {
	return &DeviceError{
		Section: e.section,
		Index:   e.index,
		Device:  e.device,
		Err:     err,
	}
}

// compile returns the argument groups of the machine in command line order.
//
// With lenient set, a device failing validation is logged and its group is
// nil. Otherwise, validation failures are returned as [DeviceError].
func (m *Machine) compile(lenient bool) ([]qemu.Group, error) {
	if m.chipset == nil {
		return nil, ErrNoMachineType
	}

	groups := []qemu.Group{
		{qemu.UniqueArg("nodefaults")},
		{qemu.UniqueArg("accel", accelerator)},
		{qemu.UniqueArg("name", m.name, qemu.Option("process", processNamePrefix+m.name))},
		m.chipset.Arguments(),
	}

	for _, e := range m.entries() {
		err := e.device.Validate(m)
		if err != nil {
			devErr := e.error(err)
			if !lenient {
				return nil, devErr
			}

			slog.Warn("Invalid device replaced by placeholder",
				slog.String("machine", m.name),
				slog.Any("error", devErr))

			groups = append(groups, nil)

			continue
		}

		groups = append(groups, e.device.Arguments())
	}

	var args []qemu.Argument
	for _, g := range groups {
		args = append(args, g...)
	}

	err := qemu.CheckCollisions(args)
	if err != nil {
		return nil, err
	}

	return groups, nil
}

// Arguments compiles the machine into its QEMU command line fragments. Each
// fragment is a self-contained group of arguments. Joined by spaces, they
// form the complete QEMU command line.
//
// Besides the devices, some arguments are always present: defaults are
// disabled, KVM is requested and the QEMU process is named after the
// machine.
func (m *Machine) Arguments() ([]string, error) {
	groups, err := m.compile(m.lenient)
	if err != nil {
		return nil, err
	}

	fragments := make([]string, 0, len(groups))

	for _, g := range groups {
		if g == nil {
			fragments = append(fragments, InvalidDevicePlaceholder)
			continue
		}

		fragments = append(fragments, g.String())
	}

	return fragments, nil
}

// Argv compiles the machine into arguments as used with [exec.Command]. In
// contrast to [Machine.Arguments], validation is always strict.
func (m *Machine) Argv() ([]string, error) {
	groups, err := m.compile(false)
	if err != nil {
		return nil, err
	}

	var argv []string
	for _, g := range groups {
		argv = append(argv, g.Strings()...)
	}

	return argv, nil
}

// Start compiles the machine and logs the resulting command line. Launching
// QEMU is up to a [Runner].
func (m *Machine) Start(ctx context.Context) error {
	args, err := m.Arguments()
	if err != nil {
		return &StartError{
			Stage: StageProcess,
			Err:   fmt.Errorf("%w: %w", ErrBuildCommandLine, err),
		}
	}

	slog.InfoContext(ctx, "QEMU command line",
		slog.String("machine", m.name),
		slog.Any("arguments", args))

	return nil
}
