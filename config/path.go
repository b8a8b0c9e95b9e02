// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.
package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
)

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	if runtime.GOOS == "windows" {
		home := os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		if home == "" {
			home = os.Getenv("USERPROFILE")
		}
		return home
	}
	return os.Getenv("HOME")
}

// ExpandPath returns an absolute, cleaned version of inPath.
// A leading "~" or "$HOME" is replaced with the users home directory and
// "~name" with the home directory of user name. Anything else is resolved
// relative to the current working directory.
func ExpandPath(inPath string) (string, error) {
	if inPath == "" {
		return "", errors.New("empty path")
	}

	if inPath == "~" || strings.HasPrefix(inPath, "~/") || strings.HasPrefix(inPath, "~"+string(os.PathSeparator)) {
		home := userHomeDir()
		if home == "" {
			return "", errors.New("cannot expand ~: home directory unknown")
		}
		inPath = home + inPath[1:]
	} else if strings.HasPrefix(inPath, "~") {
		name, rest := inPath[1:], ""
		if i := strings.IndexAny(name, "/"+string(os.PathSeparator)); i >= 0 {
			name, rest = name[:i], name[i:]
		}
		u, err := user.Lookup(name)
		if err != nil {
			return "", fmt.Errorf("cannot expand ~%s: %w", name, err)
		}
		inPath = u.HomeDir + rest
	} else if inPath == "$HOME" || strings.HasPrefix(inPath, "$HOME/") {
		inPath = userHomeDir() + inPath[5:]
	}

	if filepath.IsAbs(inPath) {
		return filepath.Clean(inPath), nil
	}
	return filepath.Abs(inPath)
}
