// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.
package config

import (
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestReadFile_Missing(t *testing.T) {
	values, err := ReadFile(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestReadFile_INI(t *testing.T) {
	path := writeFile(t, "archiveimaprc", `
[Settings]
accounts = work, personal
offlineimap-config = /etc/offlineimaprc
author = Jane Doe <jane@example.com>
quiet = True
`)

	values, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Values{
		KeyAccounts:          []string{"work", "personal"},
		KeyOfflineIMAPConfig: "/etc/offlineimaprc",
		KeyAuthor:            "Jane Doe <jane@example.com>",
		KeyQuiet:             true,
	}, values)
}

func TestReadFile_INITranslation(t *testing.T) {
	path := writeFile(t, "archiveimaprc", `
[Settings]
quiet = False
author =
other = yes
`)

	values, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, false, values[KeyQuiet])
	assert.Nil(t, values[KeyAuthor])
	assert.Equal(t, "yes", values["other"])
}

func TestReadFile_INIDefaultSection(t *testing.T) {
	path := writeFile(t, "archiveimaprc", `
[DEFAULT]
quiet = True
author = Default Author <default@example.com>

[Settings]
author = Jane Doe <jane@example.com>
`)

	values, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Values{
		KeyQuiet:  true,
		KeyAuthor: "Jane Doe <jane@example.com>",
	}, values)
}

func TestLoad_BooleanAuthor(t *testing.T) {
	path := writeFile(t, "archiveimaprc", "[Settings]\nauthor = True\n")

	_, err := Load(Values{KeyConfigFile: path})
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, KeyAuthor, cfgErr.Key)
	assert.Contains(t, err.Error(), "expected a string")
}

func TestReadFile_INIMissingSection(t *testing.T) {
	path := writeFile(t, "archiveimaprc", `
[Other]
quiet = True
`)

	_, err := ReadFile(path)
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, path, cfgErr.Path)
	assert.Equal(t, SettingsSection, cfgErr.Key)
}

func TestReadFile_INIMalformed(t *testing.T) {
	path := writeFile(t, "archiveimaprc", "[Settings\nthis is not a key value pair\n")

	_, err := ReadFile(path)
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, path, cfgErr.Path)
}

func TestReadFile_YAML(t *testing.T) {
	path := writeFile(t, "archiveimap.yml", `
settings:
  accounts:
    - work
    - personal
  offlineimap_config: /etc/offlineimaprc
  author: ""
  quiet: true
`)

	values, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Values{
		KeyAccounts:          []string{"work", "personal"},
		KeyOfflineIMAPConfig: "/etc/offlineimaprc",
		KeyAuthor:            nil,
		KeyQuiet:             true,
	}, values)
}

func TestReadFile_YAMLMalformed(t *testing.T) {
	path := writeFile(t, "archiveimap.yaml", "settings: [unterminated")

	_, err := ReadFile(path)
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
}

func TestLoad_ConfigFileOverride(t *testing.T) {
	path := writeFile(t, "archiveimaprc", `
[Settings]
quiet = True
author = File <f@example.com>
`)

	s, err := Load(Values{
		KeyConfigFile: path,
		KeyAuthor:     "Flag <flag@example.com>",
	})
	require.NoError(t, err)
	assert.True(t, s.Quiet)
	assert.Equal(t, "Flag <flag@example.com>", s.Author)
}

func TestLoad_InvalidValueReportsPath(t *testing.T) {
	path := writeFile(t, "archiveimaprc", `
[Settings]
quiet = sometimes
`)

	_, err := Load(Values{KeyConfigFile: path})
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, path, cfgErr.Path)
	assert.Equal(t, KeyQuiet, cfgErr.Key)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	p, err := ExpandPath("~/.offlineimaprc")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".offlineimaprc"), p)

	p, err = ExpandPath("/var/mail/../mail")
	require.NoError(t, err)
	assert.Equal(t, "/var/mail", p)

	_, err = ExpandPath("")
	assert.Error(t, err)
}

func TestExpandPath_NamedUser(t *testing.T) {
	current, err := user.Current()
	if err != nil || current.Username == "" || current.HomeDir == "" {
		t.Skip("current user unknown")
	}
	if _, err = user.Lookup(current.Username); err != nil {
		t.Skipf("cannot look up %s: %v", current.Username, err)
	}

	p, err := ExpandPath("~" + current.Username + "/.offlineimaprc")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(current.HomeDir, ".offlineimaprc"), p)

	p, err = ExpandPath("~" + current.Username)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(current.HomeDir), p)

	_, err = ExpandPath("~no-such-user-archiveimap/.offlineimaprc")
	assert.Error(t, err)

	_, err = Resolve(Values{KeyOfflineIMAPConfig: "~no-such-user-archiveimap/.offlineimaprc"}, Values{}, Defaults())
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, KeyOfflineIMAPConfig, cfgErr.Key)
}
