// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidName is returned if a machine name contains whitespace.
	ErrInvalidName = errors.New("invalid name characters present")

	// ErrNoMachineType is returned if a machine without chipset is compiled.
	ErrNoMachineType = errors.New("no QEMU machine type specified")

	// ErrBuildCommandLine wraps any failure to compile a machine into a
	// command line when starting it.
	ErrBuildCommandLine = errors.New("error building QEMU command line from devices")

	// ErrProcessStart is returned if the QEMU process could not be started.
	ErrProcessStart = errors.New("failure starting QEMU process")

	// ErrQMPConnection is returned if connecting to QMP failed.
	ErrQMPConnection = errors.New("failure connecting to QMP")

	// ErrQMPHandshake is returned if the QMP capabilities negotiation failed.
	ErrQMPHandshake = errors.New("failure handshaking with QMP server")

	// ErrSessionConnection is returned if the peer management session could
	// not be established.
	ErrSessionConnection = errors.New("failure initiating p2p management session")
)

// Device validation errors.
var (
	ErrIdentifierMissing     = errors.New("identifier missing")
	ErrCPUModelMissing       = errors.New("cpu model missing")
	ErrCPUCoresMissing       = errors.New("cpu core count is zero")
	ErrMachineUUIDMissing    = errors.New("machine has no uuid")
	ErrUUIDMismatch          = errors.New("device uuid does not match machine uuid")
	ErrChipsetIncompatible   = errors.New("device requires q35 machine type")
	ErrPCIIdentityIncomplete = errors.New("pci identity override incomplete")
	ErrImagePathMissing      = errors.New("image path missing")
	ErrImageFormatMissing    = errors.New("image format missing")
	ErrDiskInterfaceInvalid  = errors.New("unknown disk interface")
	ErrNetdevUnknown         = errors.New("network backend not attached")
	ErrMACInvalid            = errors.New("invalid mac address")
)

// DeviceError is returned if a device attached to a [Machine] fails its
// validation.
type DeviceError struct {
	// Section the device is attached to, either "devices" or "drives".
	Section string
	// Index of the device in its section.
	Index  int
	Device Device
	Err    error
}

// Error implements the [error] interface.
func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s[%d] (%T): %v", e.Section, e.Index, e.Device, e.Err)
}

// Is implements the [errors.Is] interface.
func (*DeviceError) Is(other error) bool {
	_, ok := other.(*DeviceError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// StartError wraps any error occurring while bringing up a machine.
type StartError struct {
	Stage Stage
	Err   error
}

// Error implements the [error] interface.
func (e *StartError) Error() string {
	return e.Stage.String() + ": " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*StartError) Is(other error) bool {
	_, ok := other.(*StartError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *StartError) Unwrap() error {
	return e.Err
}

// Stage is a step of bringing up a machine.
type Stage int

// Stages in the order they are run.
const (
	StageProcess Stage = iota
	StageQMPConnect
	StageQMPHandshake
	StageSession
)

// String implements [fmt.Stringer].
func (s Stage) String() string {
	switch s {
	case StageProcess:
		return "process"
	case StageQMPConnect:
		return "qmp connect"
	case StageQMPHandshake:
		return "qmp handshake"
	case StageSession:
		return "session"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// sentinel returns the error that failures in the stage are classified as.
func (s Stage) sentinel() error {
	switch s {
	case StageQMPConnect:
		return ErrQMPConnection
	case StageQMPHandshake:
		return ErrQMPHandshake
	case StageSession:
		return ErrSessionConnection
	default:
		return ErrProcessStart
	}
}

func newStartError(stage Stage, err error) *StartError {
	return &StartError{
		Stage: stage,
		Err:   fmt.Errorf("%w: %w", stage.sentinel(), err),
	}
}
