// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import "errors"

// ErrArgumentCollision is returned if two [Argument]s are considered equal.
var ErrArgumentCollision = errors.New("colliding args")
