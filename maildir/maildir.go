// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.
package maildir

import (
	"errors"
	"fmt"
	"os"
)

// Maildir is a directory tree of maildir folders, as written by offlineimap
type Maildir struct {
	path string
}

// New creates a new maildir instance for the tree at maildirPath
func New(maildirPath string) *Maildir {
	return &Maildir{path: maildirPath}
}

// Path returns the root of the tree
func (m *Maildir) Path() string {
	return m.path
}

// Create makes sure the root directory exists
func (m *Maildir) Create() error {
	if st, err := os.Stat(m.path); err == nil {
		if !st.IsDir() {
			return fmt.Errorf("path %s is not a directory", m.path)
		}
		// Path exists and is a directory, so we're done
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return os.MkdirAll(m.path, 0700)
}
