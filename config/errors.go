// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.
package config

import "strings"

// Error is returned when the configuration is malformed or incomplete
type Error struct {
	Path string // Configuration file, if any
	Key  string // Offending setting or section, if any
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Path != "" {
		b.WriteString(" in ")
		b.WriteString(e.Path)
	}
	if e.Key != "" {
		b.WriteString(" (")
		b.WriteString(e.Key)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
