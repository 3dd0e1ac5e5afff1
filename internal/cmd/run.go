// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/modeco80/sunlight/internal/host"
	"github.com/modeco80/sunlight/internal/vm"
)

// IO provides input and output details for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func compile(machine *vm.Machine, argv bool) ([]string, error) {
	if argv {
		return machine.Argv()
	}

	return machine.Arguments()
}

func run(ctx context.Context, flags *flags, cfg IO, checker *host.Checker) error {
	machine, err := newMachine(flags)
	if err != nil {
		return err
	}

	if flags.preflight {
		err := checker.Check(machine)
		if err != nil {
			return fmt.Errorf("preflight: %w", err)
		}
	}

	lines, err := compile(machine, flags.argv)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	slog.DebugContext(ctx, "Compiled machine",
		slog.String("name", machine.Name()),
		slog.Int("lines", len(lines)))

	for _, line := range lines {
		_, err := fmt.Fprintln(cfg.Stdout, line)
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	return nil
}

func handleParseArgsError(err error) int {
	// [ErrHelp] is returned when help is requested. So exit without error
	// in this case.
	if errors.Is(err, ErrHelp) {
		return 0
	}

	// ParseArgs already prints errors, so we just exit without an error.
	if !errors.Is(err, &ParseArgsError{}) {
		slog.Error(err.Error())
	}

	return -1
}

func handleRunError(err error) int {
	var deviceErr *vm.DeviceError
	if errors.As(err, &deviceErr) {
		slog.Debug("Invalid device",
			slog.String("section", deviceErr.Section),
			slog.Int("index", deviceErr.Index),
			slog.String("device", vm.Render(deviceErr.Device)))
	}

	if errors.Is(err, host.ErrKVMUnavailable) {
		slog.Warn("kvm module loaded and user in kvm group?")
	}

	slog.Error(err.Error())

	return -1
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfg IO) int {
	return runWith(ctx, args, cfg, &host.Checker{})
}

func runWith(ctx context.Context, args []string, cfg IO, checker *host.Checker) int {
	setupLogging(cfg.Stderr, slog.LevelWarn)

	flags := newFlags(cfg.Stderr)

	err := flags.ParseArgs(args)
	if err != nil {
		return handleParseArgsError(err)
	}

	setupLogging(cfg.Stderr, flags.logLevel())

	err = run(ctx, flags, cfg, checker)
	if err != nil {
		return handleRunError(err)
	}

	return 0
}
