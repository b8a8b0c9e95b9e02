// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.

// Package archive syncs mail with offlineimap and commits the result to git
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/yzzyx/archiveimap/command"
	"github.com/yzzyx/archiveimap/config"
	"github.com/yzzyx/archiveimap/git"
	"github.com/yzzyx/archiveimap/maildir"
	"github.com/yzzyx/archiveimap/offlineimap"
	"go.uber.org/zap"
)

// EmptyMessage is used as commit message if the sync didn't print anything
const EmptyMessage = "archiveimap: sync produced no output"

// Archiver runs one sync and commit cycle
type Archiver struct {
	settings config.Settings
	runner   command.Runner
	syncer   offlineimap.Syncer
	log      *zap.Logger

	// Stdout receives subprocess output unless settings.Quiet is set
	Stdout io.Writer
	// Progress receives a progress bar while committing, nil disables it
	Progress io.Writer
}

// New creates an Archiver. The settings are not modified after this point.
func New(settings config.Settings, runner command.Runner, log *zap.Logger) *Archiver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Archiver{
		settings: settings,
		runner:   runner,
		syncer:   offlineimap.Syncer{Runner: runner},
		log:      log,
	}
}

func (a *Archiver) echo() io.Writer {
	if a.settings.Quiet || a.Stdout == nil {
		return nil
	}
	return a.Stdout
}

// Run looks up the account directories, prepares them, runs offlineimap
// and commits the changes in each directory.
// The first error aborts the run; directories committed before that are left as is.
func (a *Archiver) Run(ctx context.Context) error {
	accounts, err := offlineimap.Accounts(a.settings.OfflineIMAPConfig, a.settings.Accounts)
	if err != nil {
		return err
	}

	names := make([]string, len(accounts))
	for i, acc := range accounts {
		names[i] = acc.Name
	}

	// Everything printed from here on ends up in the commit message
	syncLog := &bytes.Buffer{}

	if err = a.init(ctx, accounts, syncLog); err != nil {
		return err
	}

	a.log.Info("syncing", zap.Strings("accounts", names))
	err = a.syncer.Sync(ctx, names, a.settings.OfflineIMAPConfig, a.echo(), syncLog)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	return a.commit(ctx, accounts, syncLog.Bytes())
}

// init creates missing directories and repositories
func (a *Archiver) init(ctx context.Context, accounts []offlineimap.Account, syncLog io.Writer) error {
	for _, acc := range accounts {
		if err := maildir.New(acc.Directory).Create(); err != nil {
			return fmt.Errorf("cannot create directory for account %s: %w", acc.Name, err)
		}

		repo := git.New(acc.Directory, a.runner)
		ok, err := repo.IsInitialized()
		if err != nil {
			return err
		}
		if ok {
			continue
		}

		a.log.Info("initializing repository", zap.String("account", acc.Name), zap.String("dir", acc.Directory))
		if err = repo.Init(ctx, a.echo(), syncLog); err != nil {
			return err
		}
	}
	return nil
}

func (a *Archiver) commit(ctx context.Context, accounts []offlineimap.Account, syncLog []byte) error {
	var bar *progressbar.ProgressBar
	if a.Progress != nil && !a.settings.Quiet && len(accounts) > 0 {
		bar = progressbar.NewOptions(len(accounts),
			progressbar.OptionSetWriter(a.Progress),
			progressbar.OptionSetDescription("committing"),
			progressbar.OptionClearOnFinish())
	}

	// The bar shares stderr with the logger, so results are logged once it is gone
	var committed, clean []string
	defer func() {
		if bar != nil {
			bar.Finish()
		}
		if len(committed) > 0 {
			a.log.Info("committed", zap.Strings("accounts", committed))
		}
		if len(clean) > 0 {
			a.log.Info("nothing to commit", zap.Strings("accounts", clean))
		}
	}()

	for _, acc := range accounts {
		repo := git.New(acc.Directory, a.runner)
		if err := repo.AddAll(ctx, a.echo()); err != nil {
			return err
		}

		changed, err := repo.HasChanges(ctx)
		if err != nil {
			return err
		}
		if !changed {
			clean = append(clean, acc.Name)
		} else {
			msg, err := a.message(ctx, acc, syncLog)
			if err != nil {
				return err
			}
			if err = repo.Commit(ctx, msg, a.settings.Author, a.echo()); err != nil {
				return err
			}
			committed = append(committed, acc.Name)
		}

		if bar != nil {
			bar.Add(1)
		}
	}
	return nil
}

// message builds the commit message for a single account
func (a *Archiver) message(ctx context.Context, acc offlineimap.Account, syncLog []byte) (io.Reader, error) {
	msg := &bytes.Buffer{}
	if len(bytes.TrimSpace(syncLog)) == 0 {
		fmt.Fprintln(msg, EmptyMessage)
	} else {
		msg.Write(syncLog)
	}

	summary, err := maildir.New(acc.Directory).Summarize(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot summarize %s: %w", acc.Directory, err)
	}
	if len(summary) > 0 {
		fmt.Fprintln(msg)
		if err = maildir.WriteSummary(msg, summary); err != nil {
			return nil, err
		}
	}
	return msg, nil
}
