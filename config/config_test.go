// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_OverridesShadowEverything(t *testing.T) {
	overrides := Values{
		KeyAccounts:          []string{"work", "home"},
		KeyAuthor:            "Jane Doe <jane@example.com>",
		KeyOfflineIMAPConfig: "/etc/offlineimaprc",
		KeyQuiet:             true,
	}
	file := Values{
		KeyAccounts:          []string{"other"},
		KeyAuthor:            "Someone Else <else@example.com>",
		KeyOfflineIMAPConfig: "/tmp/rc",
		KeyQuiet:             false,
	}

	s, err := Resolve(overrides, file, Defaults())
	require.NoError(t, err)

	assert.Equal(t, Settings{
		Accounts:          []string{"work", "home"},
		Author:            "Jane Doe <jane@example.com>",
		OfflineIMAPConfig: "/etc/offlineimaprc",
		Quiet:             true,
	}, s)
}

func TestResolve_FallsBackToDefaults(t *testing.T) {
	defaults := Values{
		KeyAccounts:          []string{"default"},
		KeyAuthor:            "Default <d@example.com>",
		KeyOfflineIMAPConfig: "/default/rc",
		KeyQuiet:             true,
	}

	s, err := Resolve(Values{}, Values{}, defaults)
	require.NoError(t, err)

	assert.Equal(t, []string{"default"}, s.Accounts)
	assert.Equal(t, "Default <d@example.com>", s.Author)
	assert.Equal(t, "/default/rc", s.OfflineIMAPConfig)
	assert.True(t, s.Quiet)
}

func TestResolve_FileShadowsDefaults(t *testing.T) {
	file := Values{KeyAuthor: "File <f@example.com>"}

	s, err := Resolve(Values{}, file, Defaults())
	require.NoError(t, err)
	assert.Equal(t, "File <f@example.com>", s.Author)
	assert.Empty(t, s.Accounts)
	assert.False(t, s.Quiet)
}

func TestResolve_EmptyStringFallsThrough(t *testing.T) {
	defaults := Values{KeyAuthor: "Default <d@example.com>"}

	s, err := Resolve(Values{}, Values{KeyAuthor: ""}, defaults)
	require.NoError(t, err)
	assert.Equal(t, "Default <d@example.com>", s.Author)

	s, err = Resolve(Values{KeyAuthor: ""}, Values{KeyAuthor: "File <f@example.com>"}, defaults)
	require.NoError(t, err)
	assert.Equal(t, "File <f@example.com>", s.Author)
}

func TestResolve_NilOverrideFallsThrough(t *testing.T) {
	s, err := Resolve(Values{KeyQuiet: nil}, Values{KeyQuiet: true}, Defaults())
	require.NoError(t, err)
	assert.True(t, s.Quiet)
}

func TestResolve_ScalarAccountsBecomesList(t *testing.T) {
	s, err := Resolve(Values{KeyAccounts: "work"}, Values{}, Defaults())
	require.NoError(t, err)
	assert.Equal(t, []string{"work"}, s.Accounts)
}

func TestResolve_UnknownOverrideIgnored(t *testing.T) {
	s, err := Resolve(Values{"bogus": "value", KeyConfigFile: "/some/file"}, Values{}, Defaults())
	require.NoError(t, err)

	home, err := ExpandPath("~")
	require.NoError(t, err)
	assert.Equal(t, Settings{OfflineIMAPConfig: filepath.Join(home, ".offlineimaprc")}, s)
}

func TestResolve_MinimalDefaults(t *testing.T) {
	defaults := Values{KeyQuiet: false, KeyAccounts: nil}

	s, err := Resolve(Values{KeyAccounts: "alice"}, Values{}, defaults)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, s.Accounts)
	assert.False(t, s.Quiet)
}

func TestResolve_QuietFromFile(t *testing.T) {
	s, err := Resolve(Values{}, Values{KeyQuiet: true}, Defaults())
	require.NoError(t, err)
	assert.True(t, s.Quiet)
}

func TestResolve_RelativeSyncConfig(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	s, err := Resolve(Values{KeyOfflineIMAPConfig: "conf/offlineimaprc"}, Values{}, Defaults())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "conf", "offlineimaprc"), s.OfflineIMAPConfig)
}

func TestResolve_InvalidQuiet(t *testing.T) {
	_, err := Resolve(Values{}, Values{KeyQuiet: "maybe"}, Defaults())
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, KeyQuiet, cfgErr.Key)
}

func TestResolve_DoesNotAliasInput(t *testing.T) {
	accounts := []string{"a", "b"}
	s, err := Resolve(Values{KeyAccounts: accounts}, Values{}, Defaults())
	require.NoError(t, err)

	s.Accounts[0] = "changed"
	assert.Equal(t, "a", accounts[0])
}
