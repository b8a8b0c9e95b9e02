// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.
package config

import "fmt"

// Setting names, as used in the configuration file and on the command line
const (
	KeyAccounts          = "accounts"
	KeyAuthor            = "author"
	KeyOfflineIMAPConfig = "offlineimap_config"
	KeyQuiet             = "quiet"

	// KeyConfigFile is only meaningful as an override, it tells Load
	// where to look for the configuration file.
	KeyConfigFile = "config_file"
)

// DefaultOfflineIMAPConfig is used when no other offlineimap configuration is given
const DefaultOfflineIMAPConfig = "~/.offlineimaprc"

// Settings is the resolved configuration for a single run
type Settings struct {
	// Accounts to sync. Empty means that offlineimap decides.
	Accounts []string
	// OfflineIMAPConfig is the absolute path to the offlineimap configuration
	OfflineIMAPConfig string
	// Author of the commits. Empty means that git decides.
	Author string
	// Quiet disables echoing of subprocess output
	Quiet bool
}

// Values maps setting names to raw values.
// A value is a string, a []string or a bool. Both nil and "" mean "not set".
type Values map[string]interface{}

// Defaults returns the built-in settings.
// The keys of the returned map is the complete set of recognized settings.
func Defaults() Values {
	return Values{
		KeyAccounts:          nil,
		KeyAuthor:            nil,
		KeyOfflineIMAPConfig: DefaultOfflineIMAPConfig,
		KeyQuiet:             false,
	}
}

// Resolve merges settings from three sources, in order of precedence:
//  1. overrides (from the command line)
//  2. file (from the configuration file)
//  3. defaults
//
// Keys that are not present in defaults are ignored.
func Resolve(overrides, file, defaults Values) (Settings, error) {
	values := merge(overrides, merge(file, defaults))

	var s Settings
	switch v := values[KeyAccounts].(type) {
	case nil:
	case string:
		s.Accounts = []string{v}
	case []string:
		s.Accounts = append([]string(nil), v...)
	default:
		return Settings{}, &Error{Key: KeyAccounts, Err: fmt.Errorf("expected a list of account names, got %v", v)}
	}

	switch v := values[KeyAuthor].(type) {
	case nil:
	case string:
		s.Author = v
	default:
		return Settings{}, &Error{Key: KeyAuthor, Err: fmt.Errorf("expected a string, got %v", v)}
	}

	switch v := values[KeyOfflineIMAPConfig].(type) {
	case nil:
	case string:
		p, err := ExpandPath(v)
		if err != nil {
			return Settings{}, &Error{Key: KeyOfflineIMAPConfig, Err: err}
		}
		s.OfflineIMAPConfig = p
	default:
		return Settings{}, &Error{Key: KeyOfflineIMAPConfig, Err: fmt.Errorf("expected a path, got %v", v)}
	}

	switch v := values[KeyQuiet].(type) {
	case nil:
	case bool:
		s.Quiet = v
	default:
		return Settings{}, &Error{Key: KeyQuiet, Err: fmt.Errorf("must be True or False, got %q", fmt.Sprint(v))}
	}

	return s, nil
}

// merge returns all keys in base, with the value from over
// wherever over has that key set
func merge(over, base Values) Values {
	out := make(Values, len(base))
	for key, value := range base {
		if v, ok := over[key]; ok && isSet(v) {
			value = v
		}
		out[key] = value
	}
	return out
}

func isSet(v interface{}) bool {
	switch v := v.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []string:
		return len(v) > 0
	}
	return true
}
