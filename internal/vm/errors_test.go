// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modeco80/sunlight/internal/vm"
)

func TestDeviceErrorIs(t *testing.T) {
	//nolint:testifylint
	assert.ErrorIs(t, error(&vm.DeviceError{}), &vm.DeviceError{})
	assert.NotErrorIs(t, assert.AnError, &vm.DeviceError{})
}

func TestStartErrorIs(t *testing.T) {
	//nolint:testifylint
	assert.ErrorIs(t, error(&vm.StartError{}), &vm.StartError{})
	assert.NotErrorIs(t, assert.AnError, &vm.StartError{})
}

func TestDeviceError_Error(t *testing.T) {
	err := &vm.DeviceError{
		Section: "drives",
		Index:   2,
		Device:  vm.CDDrive{},
		Err:     vm.ErrIdentifierMissing,
	}

	assert.Equal(t, "drives[2] (vm.CDDrive): identifier missing", err.Error())
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "process", vm.StageProcess.String())
	assert.Equal(t, "qmp connect", vm.StageQMPConnect.String())
	assert.Equal(t, "qmp handshake", vm.StageQMPHandshake.String())
	assert.Equal(t, "session", vm.StageSession.String())
	assert.Equal(t, "stage(9)", vm.Stage(9).String())
}
