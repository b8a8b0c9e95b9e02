// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/yzzyx/archiveimap/archive"
	"github.com/yzzyx/archiveimap/command"
	"github.com/yzzyx/archiveimap/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "0.2"

const usage = `archiveimap - keep your email archived in git.

Runs offlineimap and commits the synced maildirs to git, using the output
of offlineimap as the commit message. Settings are read from the command
line, then from the configuration file (default ~/.archiveimaprc, section
[Settings]), then from built-in defaults.

Usage:
  archiveimap [options] [account ...]

Options:
`

// ExitError carries the exit code for a failed run
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// toggle sets a shared bool, so that -q and -v can override each other
type toggle struct {
	dst    *bool
	invert bool
}

func (t toggle) String() string {
	if t.dst == nil {
		return "false"
	}
	return strconv.FormatBool(*t.dst != t.invert)
}

func (t toggle) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*t.dst = b != t.invert
	return nil
}

func (t toggle) Type() string {
	return "bool"
}

// parseArgs converts the command line into overrides.
// Only settings given explicitly are included.
// The returned bool is true if the program should exit without doing anything.
func parseArgs(args []string, output io.Writer) (config.Values, bool, error) {
	flagSet := pflag.NewFlagSet("archiveimap", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usage)
		flagSet.PrintDefaults()
	}

	var (
		accounts          []string
		quiet             bool
		configFile        string
		offlineimapConfig string
		author            string
		showVersion       bool
	)
	flagSet.StringSliceVarP(&accounts, "accounts", "a", nil, "accounts to archive. Must be listed in the offlineimap configuration file.")
	flagSet.VarPF(toggle{dst: &quiet}, "quiet", "q", "be quiet").NoOptDefVal = "true"
	flagSet.VarPF(toggle{dst: &quiet, invert: true}, "verbose", "v", "be verbose").NoOptDefVal = "true"
	flagSet.StringVarP(&configFile, "config-file", "c", "", "configuration file to use instead of "+config.DefaultFile)
	flagSet.StringVar(&offlineimapConfig, "offlineimap-config", "", "offlineimap configuration file to use instead of "+config.DefaultOfflineIMAPConfig)
	flagSet.StringVar(&author, "author", "", `author to use for the git commit, "Name <email@domain.com>"`)
	flagSet.BoolVar(&showVersion, "version", false, "print version and exit")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Err: err}
	}

	if showVersion {
		fmt.Fprintf(output, "archiveimap %s\n", version)
		return nil, true, nil
	}

	overrides := config.Values{}
	accounts = append(accounts, flagSet.Args()...)
	if len(accounts) > 0 {
		overrides[config.KeyAccounts] = accounts
	}
	if flagSet.Changed("quiet") || flagSet.Changed("verbose") {
		overrides[config.KeyQuiet] = quiet
	}
	if flagSet.Changed("config-file") {
		overrides[config.KeyConfigFile] = configFile
	}
	if flagSet.Changed("offlineimap-config") {
		overrides[config.KeyOfflineIMAPConfig] = offlineimapConfig
	}
	if flagSet.Changed("author") {
		overrides[config.KeyAuthor] = author
	}
	return overrides, false, nil
}

// newLogger builds a console logger writing to w.
// When quiet, only warnings and errors are logged.
func newLogger(w io.Writer, quiet bool) *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	level := zap.InfoLevel
	if quiet {
		level = zap.WarnLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(logConfig.EncoderConfig), zapcore.AddSync(w), level)
	return zap.New(core)
}

// run is main without the exit codes
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	overrides, exit, err := parseArgs(args, stdout)
	if err != nil {
		return err
	}
	if exit {
		return nil
	}

	settings, err := config.Load(overrides)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	log := newLogger(stderr, settings.Quiet)
	defer log.Sync()

	archiver := archive.New(settings, command.Exec{Logger: log}, log)
	archiver.Stdout = stdout
	archiver.Progress = stderr

	err = archiver.Run(ctx)
	if err != nil {
		log.Error("archive failed", zap.Error(err))
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			return &ExitError{Code: 2, Err: err}
		}
		return err
	}
	return nil
}

func main() {
	err := run(context.Background(), os.Stdout, os.Stderr, os.Args[1:])
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, err)
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	os.Exit(1)
}
