// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/modeco80/sunlight/internal/vm"
)

const (
	name = "sunlight"

	nameDefault       = "test"
	cpuDefault        = "host"
	coresDefault      = 2
	memoryDefault     = "4G"
	diskDefault       = "test.qcow2"
	diskFormatDefault = "qcow2"

	usageMessage = `Usage of 'sunlight':
    sunlight [flags...]

Prints the QEMU command line fragments of the configured machine, one device
per line:
	sunlight -name=win10 -disk=/var/lib/sunlight/win10.qcow2

Print a ready to exec argument vector instead:
	sunlight -argv -random-uuid -vgpu
`
)

type flags struct {
	flagSet *flag.FlagSet

	name          string
	uuid          uuid.UUID
	randomUUID    bool
	vgpu          bool
	disk          string
	diskFormat    string
	diskInterface vm.DiskInterface
	memory        string
	cores         uint
	cpu           string
	lenient       bool
	argv          bool
	preflight     bool
	debug         bool
	version       bool
}

func newFlags(output io.Writer) *flags {
	flags := &flags{
		name:          nameDefault,
		disk:          diskDefault,
		diskFormat:    diskFormatDefault,
		diskInterface: vm.DiskInterfaceSCSI,
		memory:        memoryDefault,
		cores:         coresDefault,
		cpu:           cpuDefault,
	}

	flags.initFlagset(output)

	return flags
}

func (f *flags) ParseArgs(args []string) error {
	err := f.flagSet.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ErrHelp
		}

		return &ParseArgsError{msg: "flag parse", err: err}
	}

	// With version flag, just print the version and exit. Using [ErrHelp]
	// the main binary is supposed to return with a non error exit code.
	if f.version {
		return f.printVersionInformation()
	}

	if f.flagSet.NArg() > 0 {
		return f.fail(fmt.Sprintf("unexpected arguments: %v", f.flagSet.Args()), nil)
	}

	if f.randomUUID && f.uuid != uuid.Nil {
		return f.fail("-uuid and -random-uuid are mutually exclusive", nil)
	}

	return nil
}

// machineUUID returns the UUID the machine is configured with. It is
// generated once if requested.
func (f *flags) machineUUID() uuid.UUID {
	if f.randomUUID {
		f.uuid = uuid.New()
		f.randomUUID = false
	}

	return f.uuid
}

func (f *flags) logLevel() slog.Level {
	if f.debug {
		return slog.LevelDebug
	}

	return slog.LevelWarn
}

func (f *flags) initFlagset(output io.Writer) {
	flagSet := flag.NewFlagSet(name, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = f.usage

	flagSet.StringVar(
		&f.name,
		"name",
		f.name,
		"machine name, must not contain whitespace",
	)

	flagSet.TextVar(
		&f.uuid,
		"uuid",
		f.uuid,
		"machine UUID (default is none)",
	)

	flagSet.BoolVar(
		&f.randomUUID,
		"random-uuid",
		f.randomUUID,
		"generate a random machine UUID",
	)

	flagSet.BoolVar(
		&f.vgpu,
		"vgpu",
		f.vgpu,
		"attach the mediated device named by the machine UUID instead of "+
			"the standard VGA adapter",
	)

	flagSet.StringVar(
		&f.disk,
		"disk",
		f.disk,
		"path to the hard disk image",
	)

	flagSet.StringVar(
		&f.diskFormat,
		"disk-format",
		f.diskFormat,
		"format of the hard disk image",
	)

	flagSet.TextVar(
		&f.diskInterface,
		"disk-if",
		f.diskInterface,
		"disk interface: ide, scsi",
	)

	flagSet.StringVar(
		&f.memory,
		"memory",
		f.memory,
		"guest memory size in QEMU notation",
	)

	flagSet.UintVar(
		&f.cores,
		"cores",
		f.cores,
		"number of CPU cores",
	)

	flagSet.StringVar(
		&f.cpu,
		"cpu",
		f.cpu,
		"QEMU CPU model",
	)

	flagSet.BoolVar(
		&f.lenient,
		"lenient",
		f.lenient,
		"replace invalid devices by a placeholder instead of failing",
	)

	flagSet.BoolVar(
		&f.argv,
		"argv",
		f.argv,
		"print one argument per line, ready to be passed to exec",
	)

	flagSet.BoolVar(
		&f.preflight,
		"preflight",
		f.preflight,
		"check that KVM, tap interfaces, mediated devices and images are "+
			"available on the host",
	)

	flagSet.BoolVar(
		&f.debug,
		"debug",
		f.debug,
		"enable debug output",
	)

	flagSet.BoolVar(
		&f.version,
		"version",
		f.version,
		"show version and exit",
	)

	f.flagSet = flagSet
}

// fail fails like flag does. It prints the error first and then usage.
func (f *flags) fail(msg string, err error) error {
	err = &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(f.flagSet.Output(), err.Error())

	f.flagSet.Usage()

	return err
}

func (f *flags) printVersionInformation() error {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return ErrReadBuildInfo
	}

	fmt.Fprintf(f.flagSet.Output(), "Version: %s\n", buildInfo.Main.Version)

	return ErrHelp
}

func (f *flags) usage() {
	fmt.Fprint(f.flagSet.Output(), usageMessage)
	fmt.Fprintln(f.flagSet.Output(), "\nFlags:")
	f.flagSet.PrintDefaults()
}
