// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vm

import (
	"errors"

	"github.com/modeco80/sunlight/internal/qemu"
)

const (
	scsiQueues = "6"

	// cdAIO is the asynchronous IO backend used for optical drives.
	cdAIO = "io_uring"
)

// VirtIOSCSI is a VirtIO SCSI controller with a dedicated IO thread.
type VirtIOSCSI struct {
	ID string
}

// Arguments implements [Device].
func (c VirtIOSCSI) Arguments() qemu.Group {
	thread := namespaced(c.ID, "block_thread")

	return qemu.Group{
		qemu.RepeatableArg("object", "iothread", qemu.Option("id", thread)),
		qemu.RepeatableArg("device",
			"virtio-scsi-pci",
			qemu.Option("num_queues", scsiQueues),
			qemu.Option("iothread", thread),
			qemu.Option("id", namespaced(c.ID)),
		),
	}
}

// Validate implements [Device].
func (c VirtIOSCSI) Validate(*Machine) error {
	return requireID(c.ID)
}

func (VirtIOSCSI) device() {}

// CDDrive is an optical drive. Without ImagePath the drive is empty.
type CDDrive struct {
	Interface DiskInterface
	ID        string
	ImagePath string
}

// Arguments implements [Device].
func (d CDDrive) Arguments() qemu.Group {
	drive := namespaced(d.ID, "drive")

	driveOpts := []string{"if=none", "media=cdrom"}
	if d.ImagePath != "" {
		driveOpts = append(driveOpts, qemu.Option("file", d.ImagePath))
	}

	driveOpts = append(driveOpts,
		qemu.Option("aio", cdAIO),
		qemu.Option("id", drive),
	)

	return qemu.Group{
		qemu.RepeatableArg("drive", driveOpts...),
		qemu.RepeatableArg("device",
			d.Interface.driver("cd"),
			qemu.Option("drive", drive),
			qemu.Option("id", namespaced(d.ID)),
		),
	}
}

// Validate implements [Device].
func (d CDDrive) Validate(*Machine) error {
	return errors.Join(
		requireID(d.ID),
		d.Interface.validate(),
	)
}

func (CDDrive) device() {}

// HDDrive is a hard disk backed by an image file.
type HDDrive struct {
	ID        string
	Interface DiskInterface
	ImagePath string
	ReadOnly  bool
	// Format of the image, like "qcow2" or "raw".
	Format string
	// SSD presents the disk as non-rotational media to the guest.
	SSD bool
	// Cache mode, like "writethrough" or "none". Omitted if empty.
	Cache string
	// AIO backend, like "io_uring" or "native". Omitted if empty.
	AIO string
}

// Arguments implements [Device].
func (d HDDrive) Arguments() qemu.Group {
	drive := namespaced(d.ID, "drive")

	driveOpts := []string{
		"if=none",
		qemu.Option("file", d.ImagePath),
		qemu.Option("format", d.Format),
		qemu.Option("id", drive),
		qemu.BoolOption("readonly", d.ReadOnly),
	}

	if d.Cache != "" {
		driveOpts = append(driveOpts, qemu.Option("cache", d.Cache))
	}

	if d.AIO != "" {
		driveOpts = append(driveOpts, qemu.Option("aio", d.AIO))
	}

	deviceOpts := []string{
		d.Interface.driver("hd"),
		qemu.Option("id", namespaced(d.ID)),
		qemu.Option("drive", drive),
	}

	if d.SSD {
		deviceOpts = append(deviceOpts, "rotation_rate=1")
	}

	return qemu.Group{
		qemu.RepeatableArg("drive", driveOpts...),
		qemu.RepeatableArg("device", deviceOpts...),
	}
}

// Validate implements [Device].
func (d HDDrive) Validate(*Machine) error {
	return errors.Join(
		requireID(d.ID),
		d.Interface.validate(),
		validateImage(d.ImagePath, d.Format),
	)
}

func (HDDrive) device() {}

// PflashDrive is a parallel flash drive, usually holding firmware like OVMF
// code or variables. It has no configurable interface.
type PflashDrive struct {
	ID        string
	ImagePath string
	ReadOnly  bool
	Format    string
}

// Arguments implements [Device].
func (d PflashDrive) Arguments() qemu.Group {
	return qemu.Group{
		qemu.RepeatableArg("drive",
			"if=pflash",
			qemu.Option("file", d.ImagePath),
			qemu.Option("format", d.Format),
			qemu.Option("id", namespaced(d.ID, "drive")),
			qemu.BoolOption("readonly", d.ReadOnly),
		),
	}
}

// Validate implements [Device].
func (d PflashDrive) Validate(*Machine) error {
	return errors.Join(
		requireID(d.ID),
		validateImage(d.ImagePath, d.Format),
	)
}

func (PflashDrive) device() {}

func validateImage(path, format string) error {
	if path == "" {
		return ErrImagePathMissing
	}

	if format == "" {
		return ErrImageFormatMissing
	}

	return nil
}
