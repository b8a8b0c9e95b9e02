// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.
package maildir

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yzzyx/archiveimap/mail"
)

// Scan calls fn for every message in every folder of the tree.
// A folder is any directory containing a "cur" subdirectory.
// Hidden directories, such as .git, are skipped.
func (m *Maildir) Scan(ctx context.Context, fn func(mail.Info) error) error {
	return filepath.WalkDir(m.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err = ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != m.path && name[0] == '.' {
			return filepath.SkipDir
		}

		switch name {
		case "cur", "new", "tmp":
			if isFolder(filepath.Dir(path)) {
				return filepath.SkipDir
			}
		}

		if !isFolder(path) {
			return nil
		}

		folderName, err := filepath.Rel(m.path, path)
		if err != nil {
			return err
		}
		if folderName == "." {
			folderName = filepath.Base(m.path)
		}
		return checkMailbox(path, folderName, fn)
	})
}

func isFolder(path string) bool {
	st, err := os.Stat(filepath.Join(path, "cur"))
	return err == nil && st.IsDir()
}

func checkMailbox(mailboxPath string, folderName string, fn func(mail.Info) error) error {
	for _, sub := range []string{"new", "cur"} {
		entries, err := os.ReadDir(filepath.Join(mailboxPath, sub))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || name[0] == '.' {
				continue
			}

			info := mail.Info{
				FolderName: folderName,
				Filename:   filepath.Join(mailboxPath, sub, name),
				Recent:     sub == "new",
			}
			if sub == "cur" {
				info.Flags = mail.ParseFilenameFlags(name)
			}
			if err = fn(info); err != nil {
				return err
			}
		}
	}
	return nil
}
