// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.
package maildir

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/yzzyx/archiveimap/mail"
)

// FolderSummary counts the messages in a single folder
type FolderSummary struct {
	Name     string
	Messages int
	Flags    map[string]int // Number of messages per IMAP flag
}

func (f FolderSummary) String() string {
	s := fmt.Sprintf("%s: %d messages", f.Name, f.Messages)
	if len(f.Flags) == 0 {
		return s
	}

	flags := make([]string, 0, len(f.Flags))
	for flag := range f.Flags {
		flags = append(flags, flag)
	}
	sort.Strings(flags)

	counts := make([]string, len(flags))
	for i, flag := range flags {
		counts[i] = fmt.Sprintf("%s %d", flag, f.Flags[flag])
	}
	return s + " (" + strings.Join(counts, ", ") + ")"
}

// Summarize counts messages and flags in every folder of the tree,
// sorted by folder name
func (m *Maildir) Summarize(ctx context.Context) ([]FolderSummary, error) {
	folders := make(map[string]*FolderSummary)
	err := m.Scan(ctx, func(info mail.Info) error {
		f, ok := folders[info.FolderName]
		if !ok {
			f = &FolderSummary{Name: info.FolderName, Flags: make(map[string]int)}
			folders[info.FolderName] = f
		}
		f.Messages++
		if info.Recent {
			f.Flags[imap.RecentFlag]++
		}
		for _, flag := range mail.FlagsToIMAP(info.Flags) {
			f.Flags[flag]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := make([]FolderSummary, 0, len(folders))
	for _, f := range folders {
		summary = append(summary, *f)
	}
	sort.Slice(summary, func(i, j int) bool {
		return summary[i].Name < summary[j].Name
	})
	return summary, nil
}

// WriteSummary writes one line per folder
func WriteSummary(w io.Writer, summary []FolderSummary) error {
	for _, f := range summary {
		if _, err := fmt.Fprintln(w, f); err != nil {
			return err
		}
	}
	return nil
}
