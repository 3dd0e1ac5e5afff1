// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package qemu provides the primitives for composing QEMU command lines.
//
// An [Argument] is a single "-name value" pair. Arguments that belong
// together are collected in a [Group], which renders to one command line
// fragment. Before a command line is handed to [exec.Command], the flattened
// argument list is checked for colliding arguments by
// [BuildArgumentStrings].
package qemu
