// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.
package mail

import (
	"strings"

	"github.com/emersion/go-imap"
)

/* Flags as defined by the maildir specification (https://cr.yp.to/proto/maildir.html)

Flag "P" (passed): the user has resent/forwarded/bounced this message to someone else.
Flag "R" (replied): the user has replied to this message.
Flag "S" (seen): the user has viewed this message, though perhaps he didn't read all the way through it.
Flag "T" (trashed): the user has moved this message to the trash; the trash will be emptied by a later user action.
Flag "D" (draft): the user considers this message a draft; toggled at user discretion.
Flag "F" (flagged): user-defined flag; toggled at user discretion.
*/
const (
	FlagPassed  = "P"
	FlagReplied = "R"
	FlagSeen    = "S"
	FlagTrashed = "T"
	FlagDraft   = "D"
	FlagFlagged = "F"
)

// FlagIMAPConversionTable is used to map between maildir flags and IMAP flags
var FlagIMAPConversionTable = map[string]string{
	FlagPassed:  "$Forwarded",
	FlagReplied: imap.AnsweredFlag,
	FlagSeen:    imap.SeenFlag,
	FlagTrashed: imap.DeletedFlag,
	FlagDraft:   imap.DraftFlag,
	FlagFlagged: imap.FlaggedFlag,
}

// FlagsToIMAP converts from maildir flags to IMAP flags
func FlagsToIMAP(s []string) (imapFlags []string) {
	for _, v := range s {
		if f, ok := FlagIMAPConversionTable[v]; ok {
			imapFlags = append(imapFlags, f)
		}
	}
	return imapFlags
}

// ParseFilenameFlags returns the maildir flags encoded in a message filename,
// e.g. "1600000000_0.1234.host,U=12,FMD5=abc:2,FS" has the flags F and S.
// Unknown flags end the list.
func ParseFilenameFlags(filename string) []string {
	pos := strings.LastIndex(filename, ":2,")
	if pos < 0 {
		return nil
	}

	var flags []string
	for _, r := range filename[pos+3:] {
		switch r {
		case 'P', 'R', 'S', 'T', 'D', 'F':
			flags = append(flags, string(r))
		default:
			return flags
		}
	}
	return flags
}
