// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.
package offlineimap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yzzyx/archiveimap/command"
	"github.com/yzzyx/archiveimap/config"
	"gopkg.in/ini.v1"
)

// Program is the offlineimap executable
const Program = "offlineimap"

// UI is the offlineimap user interface used when syncing.
// It never prompts, and prints plain progress lines.
const UI = "Noninteractive.Basic"

// Account is an offlineimap account and the directory its mail is stored in
type Account struct {
	Name      string
	Directory string
}

// Accounts looks up the local mail directory of each named account in the
// offlineimap configuration file. If names is empty, the accounts offlineimap
// syncs by default are used.
func Accounts(configPath string, names []string) ([]Account, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, &config.Error{Path: configPath, Err: err}
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:     true,
		IgnoreInlineComment: true,
	}, data)
	if err != nil {
		return nil, &config.Error{Path: configPath, Err: err}
	}

	lookup := func(section, key string) (string, error) {
		s, err := f.GetSection(section)
		if err != nil {
			return "", &config.Error{Path: configPath, Key: section, Err: errors.New("section not found")}
		}
		k, err := s.GetKey(key)
		if err != nil || strings.TrimSpace(k.String()) == "" {
			return "", &config.Error{Path: configPath, Key: section, Err: fmt.Errorf("%s not set", key)}
		}
		return strings.TrimSpace(k.String()), nil
	}

	if len(names) == 0 {
		value, err := lookup("general", "accounts")
		if err != nil {
			return nil, err
		}
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}

	accounts := make([]Account, 0, len(names))
	for _, name := range names {
		localName, err := lookup("Account "+name, "localrepository")
		if err != nil {
			return nil, err
		}
		folders, err := lookup("Repository "+localName, "localfolders")
		if err != nil {
			return nil, err
		}
		dir, err := config.ExpandPath(folders)
		if err != nil {
			return nil, &config.Error{Path: configPath, Key: "Repository " + localName, Err: err}
		}
		accounts = append(accounts, Account{Name: name, Directory: dir})
	}
	return accounts, nil
}

// Args returns the command line used to sync accounts.
// If accounts is empty, offlineimap picks the accounts to sync.
func Args(accounts []string, configPath string) []string {
	args := []string{"-u", UI}
	if len(accounts) > 0 {
		args = append(args, "-a", strings.Join(accounts, ","))
	}
	if configPath != "" {
		args = append(args, "-c", configPath)
	}
	return args
}

// Syncer runs offlineimap
type Syncer struct {
	Runner  command.Runner
	Program string // Defaults to Program
}

// Sync runs a single non-interactive sync.
// Every line offlineimap prints is written to echo and log.
func (s Syncer) Sync(ctx context.Context, accounts []string, configPath string, echo, log io.Writer) error {
	program := s.Program
	if program == "" {
		program = Program
	}
	return s.Runner.Run(ctx, command.Cmd{
		Name: program,
		Args: Args(accounts, configPath),
		Echo: echo,
		Log:  log,
	})
}
