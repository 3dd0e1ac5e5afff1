// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modeco80/sunlight/internal/vm"
)

type fakeProcess struct{}

func (fakeProcess) Wait() error { return nil }

type fakeLauncher struct {
	err    error
	binary string
	argv   []string
}

func (l *fakeLauncher) Launch(
	_ context.Context,
	binary string,
	argv []string,
) (vm.Process, error) {
	l.binary = binary
	l.argv = argv

	if l.err != nil {
		return nil, l.err
	}

	return fakeProcess{}, nil
}

type fakeConn struct {
	handshakeErr error
	closed       bool
}

func (c *fakeConn) Handshake(context.Context) error { return c.handshakeErr }

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

type fakeConnector struct {
	conn *fakeConn
	err  error
}

func (c *fakeConnector) Connect(context.Context, vm.Process) (vm.ControlConn, error) {
	if c.err != nil {
		return nil, c.err
	}

	return c.conn, nil
}

type fakeSessions struct {
	err error
}

func (s *fakeSessions) OpenSession(context.Context, vm.ControlConn) error {
	return s.err
}

func TestRunner_Start(t *testing.T) {
	m := newMachine(t)
	m.SetChipset(vm.PC{}).AddDevice(vm.Memory{Size: "1G"})

	expectedArgv, err := m.Argv()
	require.NoError(t, err)

	t.Run("compile only", func(t *testing.T) {
		r := vm.Runner{}

		require.NoError(t, r.Start(context.Background(), m))
		assert.Equal(t, vm.StateStarted, r.State())
		assert.Nil(t, r.Process())
	})

	t.Run("all collaborators", func(t *testing.T) {
		launcher := &fakeLauncher{}
		conn := &fakeConn{}
		r := vm.Runner{
			Launcher:  launcher,
			Connector: &fakeConnector{conn: conn},
			Sessions:  &fakeSessions{},
		}

		require.NoError(t, r.Start(context.Background(), m))
		assert.Equal(t, vm.StateStarted, r.State())
		assert.Equal(t, vm.DefaultBinary, launcher.binary)
		assert.Equal(t, expectedArgv, launcher.argv)
		assert.NotNil(t, r.Process())
		assert.Equal(t, conn, r.Control())
		assert.False(t, conn.closed)
	})

	t.Run("custom binary", func(t *testing.T) {
		launcher := &fakeLauncher{}
		r := vm.Runner{Binary: "/opt/qemu/bin/qemu-system-x86_64", Launcher: launcher}

		require.NoError(t, r.Start(context.Background(), m))
		assert.Equal(t, "/opt/qemu/bin/qemu-system-x86_64", launcher.binary)
	})
}

func TestRunner_StartErrors(t *testing.T) {
	tests := []struct {
		name          string
		machine       func(t *testing.T) *vm.Machine
		runner        func(conn *fakeConn) vm.Runner
		expectedStage vm.Stage
		expectedErr   error
		expectClosed  bool
	}{
		{
			name:    "compile",
			machine: newMachine,
			runner: func(*fakeConn) vm.Runner {
				return vm.Runner{}
			},
			expectedStage: vm.StageProcess,
			expectedErr:   vm.ErrBuildCommandLine,
		},
		{
			name: "launch",
			runner: func(*fakeConn) vm.Runner {
				return vm.Runner{
					Launcher: &fakeLauncher{err: assert.AnError},
				}
			},
			expectedStage: vm.StageProcess,
			expectedErr:   vm.ErrProcessStart,
		},
		{
			name: "connect",
			runner: func(*fakeConn) vm.Runner {
				return vm.Runner{
					Launcher:  &fakeLauncher{},
					Connector: &fakeConnector{err: assert.AnError},
				}
			},
			expectedStage: vm.StageQMPConnect,
			expectedErr:   vm.ErrQMPConnection,
		},
		{
			name: "handshake",
			runner: func(conn *fakeConn) vm.Runner {
				conn.handshakeErr = assert.AnError

				return vm.Runner{
					Launcher:  &fakeLauncher{},
					Connector: &fakeConnector{conn: conn},
				}
			},
			expectedStage: vm.StageQMPHandshake,
			expectedErr:   vm.ErrQMPHandshake,
			expectClosed:  true,
		},
		{
			name: "session",
			runner: func(conn *fakeConn) vm.Runner {
				return vm.Runner{
					Launcher:  &fakeLauncher{},
					Connector: &fakeConnector{conn: conn},
					Sessions:  &fakeSessions{err: assert.AnError},
				}
			},
			expectedStage: vm.StageSession,
			expectedErr:   vm.ErrSessionConnection,
			expectClosed:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t)
			if tt.machine != nil {
				m = tt.machine(t)
			} else {
				m.SetChipset(vm.Q35{})
			}

			conn := &fakeConn{}
			r := tt.runner(conn)

			err := r.Start(context.Background(), m)
			require.ErrorIs(t, err, &vm.StartError{})
			require.ErrorIs(t, err, tt.expectedErr)

			var startErr *vm.StartError
			require.ErrorAs(t, err, &startErr)
			assert.Equal(t, tt.expectedStage, startErr.Stage)

			assert.Equal(t, vm.StateStopped, r.State())
			assert.Equal(t, tt.expectClosed, conn.closed)
			assert.Nil(t, r.Control())
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "stopped", vm.StateStopped.String())
	assert.Equal(t, "starting", vm.StateStarting.String())
	assert.Equal(t, "started", vm.StateStarted.String())
	assert.Equal(t, "stopping", vm.StateStopping.String())
}
