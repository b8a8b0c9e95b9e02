// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.
package mail

// Info contains basic mail information
type Info struct {
	FolderName string
	Filename   string

	// Recent is set for messages in new/, that no client has seen yet
	Recent bool
	Flags  []string
}
