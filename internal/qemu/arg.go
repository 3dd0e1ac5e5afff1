// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"fmt"
	"slices"
	"strings"
)

// Argument is a QEMU argument with or without value.
//
// Its name might be marked to be unique in a list of [Argument]s.
type Argument struct {
	name          string
	value         string
	nonUniqueName bool
}

// String implements [fmt.Stringer].
func (a Argument) String() string {
	s := "-" + a.name
	if a.value != "" {
		s += " " + a.value
	}

	return s
}

// Name returns the name of the [Argument].
func (a Argument) Name() string {
	return a.name
}

// Value returns the value of the [Argument].
func (a Argument) Value() string {
	return a.value
}

// UniqueName returns if the name of the [Argument] must be unique in a list
// of [Argument]s.
func (a Argument) UniqueName() bool {
	return !a.nonUniqueName
}

// Equal compares the [Argument]s.
//
// If the name is marked unique, only names are
// compared. Otherwise name and value are compared.
func (a Argument) Equal(other Argument) bool {
	if a.name != other.name {
		return false
	}

	if a.nonUniqueName {
		return a.value == other.value
	}

	return true
}

// UniqueArg returns a new [Argument] with the given name that is marked as
// unique and so can be used in a command line only once.
func UniqueArg(name string, value ...string) Argument {
	return Argument{
		name:  name,
		value: strings.Join(value, ","),
	}
}

// RepeatableArg returns a new [Argument] with the given name that is not
// unique and so can be used in a command line multiple times.
func RepeatableArg(name string, value ...string) Argument {
	return Argument{
		name:          name,
		value:         strings.Join(value, ","),
		nonUniqueName: true,
	}
}

// Group is an ordered list of [Argument]s that belong together, like the
// backing store and the guest device of a disk drive.
type Group []Argument

// String returns the space separated command line fragment of the group.
func (g Group) String() string {
	parts := make([]string, 0, len(g))
	for _, arg := range g {
		parts = append(parts, arg.String())
	}

	return strings.Join(parts, " ")
}

// Strings returns the group as argument strings as used with [exec.Command].
func (g Group) Strings() []string {
	s := make([]string, 0, 2*len(g))
	for _, arg := range g {
		s = append(s, "-"+arg.name)
		if arg.value != "" {
			s = append(s, arg.value)
		}
	}

	return s
}

// OnOff returns the QEMU representation of a boolean option value.
func OnOff(b bool) string {
	if b {
		return "on"
	}

	return "off"
}

// Option returns a "key=value" option string.
func Option(key, value string) string {
	return key + "=" + value
}

// BoolOption returns a "key=on" or "key=off" option string.
func BoolOption(key string, value bool) string {
	return Option(key, OnOff(value))
}

// BuildArgumentStrings compiles the [Argument]s to into a slice of strings
// which can be used with [exec.Command].
//
// It returns an error if any name uniqueness constraints of any [Argument] is
// violated.
func BuildArgumentStrings(args []Argument) ([]string, error) {
	err := CheckCollisions(args)
	if err != nil {
		return nil, err
	}

	return Group(args).Strings(), nil
}

// CheckCollisions returns an error wrapping [ErrArgumentCollision] for the
// first [Argument] that is equal to one that precedes it.
func CheckCollisions(args []Argument) error {
	for idx, arg := range args {
		if i := slices.IndexFunc(args[:idx], arg.Equal); i != -1 {
			return fmt.Errorf(
				"%w: %s, %s",
				ErrArgumentCollision,
				arg.String(),
				args[i].String(),
			)
		}
	}

	return nil
}
