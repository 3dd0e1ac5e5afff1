// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package host checks whether the host can run a compiled machine before
// its command line is handed over to a launcher.
package host
