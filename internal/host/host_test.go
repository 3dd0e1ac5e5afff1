// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package host_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/modeco80/sunlight/internal/host"
	"github.com/modeco80/sunlight/internal/vm"
)

const (
	mdevUUID = "6d8a9d3c-3b2e-4c55-9f0e-0a3a1b2c4d5e"
	mdevPath = "/sys/bus/mdev/devices/" + mdevUUID
)

// fakeHost provides the files and links the checks are run against.
type fakeHost struct {
	files map[string]uint32
	links map[string]netlink.Link
}

func (h *fakeHost) access(path string, mode uint32) error {
	allowed, exists := h.files[path]
	if !exists {
		return unix.ENOENT
	}

	if mode&^allowed != 0 {
		return unix.EACCES
	}

	return nil
}

func (h *fakeHost) linkByName(name string) (netlink.Link, error) {
	link, exists := h.links[name]
	if !exists {
		return nil, unix.ENODEV
	}

	return link, nil
}

func (h *fakeHost) checker() *host.Checker {
	return &host.Checker{
		LinkByName: h.linkByName,
		Access:     h.access,
	}
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		files: map[string]uint32{
			host.KVMDevice:  unix.R_OK | unix.W_OK,
			"/img/rw.qcow2": unix.R_OK | unix.W_OK,
			"/img/ro.qcow2": unix.R_OK,
			"/iso/boot.iso": unix.R_OK,
			"/ovmf/code.fd": unix.R_OK,
			mdevPath:        0,
		},
		links: map[string]netlink.Link{
			"tap0": &netlink.Tuntap{LinkAttrs: netlink.LinkAttrs{Name: "tap0"}},
			"eth0": &netlink.Dummy{LinkAttrs: netlink.LinkAttrs{Name: "eth0"}},
		},
	}
}

func TestChecker_KVM(t *testing.T) {
	h := newFakeHost()
	require.NoError(t, h.checker().KVM())

	h.files[host.KVMDevice] = unix.R_OK

	err := h.checker().KVM()
	require.ErrorIs(t, err, &host.CheckError{})
	require.ErrorIs(t, err, host.ErrKVMUnavailable)
	require.ErrorIs(t, err, unix.EACCES)
}

func TestChecker_Check(t *testing.T) {
	tests := []struct {
		name        string
		device      vm.Device
		drive       vm.Device
		expectedErr error
	}{
		{
			name:   "tap",
			device: vm.TapNetwork{ID: "lan", Ifname: "tap0"},
		},
		{
			name:        "tap missing",
			device:      vm.TapNetwork{ID: "lan", Ifname: "tap1"},
			expectedErr: host.ErrLinkNotFound,
		},
		{
			name:        "not a tap",
			device:      vm.TapNetwork{ID: "lan", Ifname: "eth0"},
			expectedErr: host.ErrLinkNotTap,
		},
		{
			name:   "vgpu",
			device: vm.VGPU{UUID: mdevUUID},
		},
		{
			name:        "vgpu missing",
			device:      vm.VGPU{UUID: uuid.NewString()},
			expectedErr: host.ErrMdevNotFound,
		},
		{
			name:  "hd read-write",
			drive: vm.HDDrive{ID: "hd", ImagePath: "/img/rw.qcow2"},
		},
		{
			name:  "hd read-only",
			drive: vm.HDDrive{ID: "hd", ImagePath: "/img/ro.qcow2", ReadOnly: true},
		},
		{
			name:        "hd read-write on read-only image",
			drive:       vm.HDDrive{ID: "hd", ImagePath: "/img/ro.qcow2"},
			expectedErr: host.ErrImageNotAccessible,
		},
		{
			name:        "hd missing",
			drive:       vm.HDDrive{ID: "hd", ImagePath: "/img/none.qcow2"},
			expectedErr: host.ErrImageNotAccessible,
		},
		{
			name:  "pflash",
			drive: vm.PflashDrive{ID: "code", ImagePath: "/ovmf/code.fd", ReadOnly: true},
		},
		{
			name:  "empty cd",
			drive: vm.CDDrive{ID: "cd"},
		},
		{
			name:  "cd with media",
			drive: vm.CDDrive{ID: "cd", ImagePath: "/iso/boot.iso"},
		},
		{
			name:        "cd with missing media",
			drive:       vm.CDDrive{ID: "cd", ImagePath: "/iso/none.iso"},
			expectedErr: host.ErrImageNotAccessible,
		},
		{
			name:   "unchecked device",
			device: vm.Memory{Size: "1G"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := vm.NewMachine("test")
			require.NoError(t, err)

			if tt.device != nil {
				m.AddDevice(tt.device)
			}

			if tt.drive != nil {
				m.AddDrive(tt.drive)
			}

			err = newFakeHost().checker().Check(m)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestChecker_DefaultAccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.raw")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	m, err := vm.NewMachine("test")
	require.NoError(t, err)

	m.AddDrive(vm.HDDrive{ID: "hd", ImagePath: path}).
		AddDrive(vm.HDDrive{ID: "missing", ImagePath: path + ".missing"})

	checker := host.Checker{
		LinkByName: newFakeHost().linkByName,
	}

	err = checker.Check(m)

	var checkErr *host.CheckError

	require.ErrorAs(t, err, &checkErr)
	assert.NotContains(t, err.Error(), path+":")
	assert.Contains(t, err.Error(), path+".missing:")
}
