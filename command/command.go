// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.

// Package command runs external programs and forwards their output line by line
package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// maxLineLength is the longest output line we accept from a child process
const maxLineLength = 1024 * 1024

// Cmd describes a single invocation of an external program
type Cmd struct {
	Name  string
	Args  []string
	Dir   string    // Working directory, empty means the current directory
	Stdin io.Reader // Optional input

	// Each line of combined stdout/stderr is written to both Echo and Log.
	// Either may be nil.
	Echo io.Writer
	Log  io.Writer
}

func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner starts a command and waits for it to finish
type Runner interface {
	Run(ctx context.Context, c Cmd) error
}

// Error is returned when an external program could not be started or
// exited unsuccessfully
type Error struct {
	Name string
	Args []string
	Dir  string
	Code int // Exit code, -1 if the program never ran to completion
	Err  error
}

func (e *Error) Error() string {
	cmd := strings.Join(append([]string{e.Name}, e.Args...), " ")
	if e.Code >= 0 {
		return fmt.Sprintf("%s: exit status %d", cmd, e.Code)
	}
	return fmt.Sprintf("%s: %v", cmd, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Exec runs commands as child processes
type Exec struct {
	Logger *zap.Logger
}

// Run starts c and forwards its output until it exits
func (e Exec) Run(ctx context.Context, c Cmd) error {
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}
	newError := func(code int, err error) *Error {
		return &Error{Name: c.Name, Args: c.Args, Dir: c.Dir, Code: code, Err: err}
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin

	// stdout and stderr share a pipe, so lines arrive in the order they were written
	pr, pw, err := os.Pipe()
	if err != nil {
		return newError(-1, err)
	}
	defer pr.Close()
	cmd.Stdout = pw
	cmd.Stderr = pw

	log.Debug("running command", zap.Stringer("cmd", c), zap.String("dir", c.Dir))
	err = cmd.Start()
	pw.Close()
	if err != nil {
		return newError(-1, err)
	}

	out := output(c.Echo, c.Log)
	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	var writeErr error
	for scanner.Scan() {
		if writeErr != nil {
			continue
		}
		_, writeErr = fmt.Fprintln(out, scanner.Text())
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// keep the child from blocking on a full pipe
		io.Copy(io.Discard, pr)
	}

	if err = cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return newError(exitErr.ExitCode(), err)
		}
		return newError(-1, err)
	}
	if scanErr != nil {
		return newError(-1, fmt.Errorf("reading output: %w", scanErr))
	}
	if writeErr != nil {
		return newError(-1, fmt.Errorf("writing output: %w", writeErr))
	}
	return nil
}

func output(writers ...io.Writer) io.Writer {
	var out []io.Writer
	for _, w := range writers {
		if w != nil {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return io.Discard
	}
	return io.MultiWriter(out...)
}
