// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// DefaultBinary is the QEMU binary used if [Runner.Binary] is empty.
const DefaultBinary = "qemu-system-x86_64"

// Process is a running QEMU process.
type Process interface {
	// Wait blocks until the process exited.
	Wait() error
}

// Launcher starts the QEMU binary with the given arguments.
type Launcher interface {
	Launch(ctx context.Context, binary string, argv []string) (Process, error)
}

// ControlConn is a connection to the QMP socket of a running process.
type ControlConn interface {
	io.Closer
	// Handshake negotiates the QMP capabilities.
	Handshake(ctx context.Context) error
}

// ControlConnector connects to the QMP socket of a running process.
type ControlConnector interface {
	Connect(ctx context.Context, p Process) (ControlConn, error)
}

// SessionOpener opens the peer to peer management session over a negotiated
// control connection.
type SessionOpener interface {
	OpenSession(ctx context.Context, c ControlConn) error
}

// State is the run state of a machine.
type State int

// Run states.
const (
	StateStopped State = iota
	StateStarting
	StateStarted
	StateStopping
)

// String implements [fmt.Stringer].
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateStarted:
		return "started"
	case StateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Runner brings up a [Machine] using the given collaborators.
//
// The collaborators are run in order: Launcher, Connector (including the
// handshake) and Sessions. The first nil collaborator ends the sequence.
type Runner struct {
	// Binary is the QEMU binary. [DefaultBinary] is used if empty.
	Binary    string
	Launcher  Launcher
	Connector ControlConnector
	Sessions  SessionOpener

	state   State
	process Process
	control ControlConn
}

// State returns the current run state.
func (r *Runner) State() State {
	return r.state
}

// Process returns the launched process, if any.
func (r *Runner) Process() Process {
	return r.process
}

// Control returns the established control connection, if any.
func (r *Runner) Control() ControlConn {
	return r.control
}

func (r *Runner) binary() string {
	if r.Binary == "" {
		return DefaultBinary
	}

	return r.Binary
}

// Start compiles the machine and runs the collaborators. On failure, the
// runner is back in [StateStopped] and the error is a [StartError].
func (r *Runner) Start(ctx context.Context, m *Machine) error {
	r.state = StateStarting

	err := r.start(ctx, m)
	if err != nil {
		r.state = StateStopped
		return err
	}

	r.state = StateStarted

	return nil
}

func (r *Runner) start(ctx context.Context, m *Machine) error {
	argv, err := m.Argv()
	if err != nil {
		return &StartError{
			Stage: StageProcess,
			Err:   fmt.Errorf("%w: %w", ErrBuildCommandLine, err),
		}
	}

	slog.DebugContext(ctx, "Launching QEMU",
		slog.String("machine", m.Name()),
		slog.String("binary", r.binary()),
		slog.Any("argv", argv))

	if r.Launcher == nil {
		return nil
	}

	r.process, err = r.Launcher.Launch(ctx, r.binary(), argv)
	if err != nil {
		return newStartError(StageProcess, err)
	}

	if r.Connector == nil {
		return nil
	}

	r.control, err = r.Connector.Connect(ctx, r.process)
	if err != nil {
		return newStartError(StageQMPConnect, err)
	}

	err = r.control.Handshake(ctx)
	if err != nil {
		r.closeControl()
		return newStartError(StageQMPHandshake, err)
	}

	if r.Sessions == nil {
		return nil
	}

	err = r.Sessions.OpenSession(ctx, r.control)
	if err != nil {
		r.closeControl()
		return newStartError(StageSession, err)
	}

	return nil
}

func (r *Runner) closeControl() {
	err := r.control.Close()
	if err != nil {
		slog.Error("Failed to close control connection", slog.Any("error", err))
	}

	r.control = nil
}
