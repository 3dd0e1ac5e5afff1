// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modeco80/sunlight/internal/vm"
)

func TestDiskInterface_MarshalText(t *testing.T) {
	tests := []struct {
		input       vm.DiskInterface
		expected    string
		expectedErr error
	}{
		{
			input:    vm.DiskInterfaceIDE,
			expected: "ide",
		},
		{
			input:    vm.DiskInterfaceSCSI,
			expected: "scsi",
		},
		{
			input:       vm.DiskInterface("virtio"),
			expectedErr: vm.ErrDiskInterfaceInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			actual, err := tt.input.MarshalText()
			require.ErrorIs(t, err, tt.expectedErr)

			assert.Equal(t, tt.expected, string(actual))
		})
	}
}

func TestDiskInterface_UnmarshalText(t *testing.T) {
	tests := []struct {
		input       string
		expected    vm.DiskInterface
		expectedErr error
	}{
		{
			input:    "ide",
			expected: vm.DiskInterfaceIDE,
		},
		{
			input:    "scsi",
			expected: vm.DiskInterfaceSCSI,
		},
		{
			input:       "sata",
			expectedErr: vm.ErrDiskInterfaceInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var actual vm.DiskInterface

			err := actual.UnmarshalText([]byte(tt.input))
			require.ErrorIs(t, err, tt.expectedErr)

			assert.Equal(t, tt.expected, actual)
		})
	}
}
