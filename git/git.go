// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.
package git

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yzzyx/archiveimap/command"
)

// Program is the git executable
const Program = "git"

// Repo is a git working tree
type Repo struct {
	Dir    string
	Runner command.Runner
}

// New returns a Repo for the working tree in dir
func New(dir string, runner command.Runner) *Repo {
	return &Repo{Dir: dir, Runner: runner}
}

func (r *Repo) run(ctx context.Context, c command.Cmd) error {
	c.Name = Program
	c.Dir = r.Dir
	return r.Runner.Run(ctx, c)
}

// IsInitialized returns true if the directory already contains a repository
func (r *Repo) IsInitialized() (bool, error) {
	_, err := os.Stat(filepath.Join(r.Dir, ".git"))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Init creates a new repository
func (r *Repo) Init(ctx context.Context, echo, log io.Writer) error {
	return r.run(ctx, command.Cmd{Args: []string{"init"}, Echo: echo, Log: log})
}

// AddAll stages every change in the working tree, including deletions
func (r *Repo) AddAll(ctx context.Context, echo io.Writer) error {
	return r.run(ctx, command.Cmd{Args: []string{"add", "-A"}, Echo: echo})
}

// HasChanges returns true if there is anything to commit
func (r *Repo) HasChanges(ctx context.Context) (bool, error) {
	out := &bytes.Buffer{}
	err := r.run(ctx, command.Cmd{Args: []string{"status", "--porcelain"}, Log: out})
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out.String()) != "", nil
}

// Commit records the staged changes. The commit message is read from message.
// If author is empty, git uses its configured identity.
func (r *Repo) Commit(ctx context.Context, message io.Reader, author string, echo io.Writer) error {
	args := []string{"commit", "-F", "-"}
	if author != "" {
		args = append(args, "--author="+author)
	}
	return r.run(ctx, command.Cmd{Args: args, Stdin: message, Echo: echo})
}
