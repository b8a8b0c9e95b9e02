// Copyright © 2020 Elias Norberg
// Licensed under the GPLv3 or later.
// See COPYING at the root of the repository for details.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v2"
)

// DefaultFile is the configuration file used unless another one is specified
const DefaultFile = "~/.archiveimaprc"

// SettingsSection is the INI section holding our settings
const SettingsSection = "Settings"

// fileLayout describes the YAML version of the configuration file
type fileLayout struct {
	Settings map[string]interface{} `yaml:"settings"`
}

// Load reads the configuration file and resolves it against overrides and the
// built-in defaults. The file is taken from overrides[KeyConfigFile] if set,
// otherwise DefaultFile is used. A missing file is not an error.
func Load(overrides Values) (Settings, error) {
	path := DefaultFile
	if p, ok := overrides[KeyConfigFile].(string); ok && p != "" {
		path = p
	}

	path, err := ExpandPath(path)
	if err != nil {
		return Settings{}, &Error{Key: KeyConfigFile, Err: err}
	}

	file, err := ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	s, err := Resolve(overrides, file, Defaults())
	if err != nil {
		var cfgErr *Error
		if errors.As(err, &cfgErr) && cfgErr.Path == "" {
			cfgErr.Path = path
		}
		return Settings{}, err
	}
	return s, nil
}

// ReadFile parses the configuration file at path.
// Files ending in .yml or .yaml are read as YAML, anything else as INI.
// If the file does not exist, an empty set of values is returned.
func ReadFile(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Values{}, nil
		}
		return nil, &Error{Path: path, Err: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return parseYAML(path, data)
	}
	return parseINI(path, data)
}

func parseINI(path string, data []byte) (Values, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:     true,
		IgnoreInlineComment: true,
	}, data)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	section, err := f.GetSection(SettingsSection)
	if err != nil {
		return nil, &Error{Path: path, Key: SettingsSection, Err: errors.New("section not found")}
	}

	// Keys in [DEFAULT] apply to every section unless overridden
	values := Values{}
	for _, k := range f.Section(ini.DefaultSection).Keys() {
		key := normalizeKey(k.Name())
		values[key] = translate(key, k.String())
	}
	for _, k := range section.Keys() {
		key := normalizeKey(k.Name())
		values[key] = translate(key, k.String())
	}
	return values, nil
}

func parseYAML(path string, data []byte) (Values, error) {
	var layout fileLayout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	if layout.Settings == nil {
		return nil, &Error{Path: path, Key: "settings", Err: errors.New("section not found")}
	}

	values := Values{}
	for name, raw := range layout.Settings {
		key := normalizeKey(name)
		switch v := raw.(type) {
		case nil:
			values[key] = nil
		case bool:
			values[key] = v
		case string:
			values[key] = translate(key, v)
		case []interface{}:
			list := make([]string, 0, len(v))
			for _, item := range v {
				list = append(list, fmt.Sprint(item))
			}
			values[key] = list
		default:
			values[key] = translate(key, fmt.Sprint(v))
		}
	}
	return values, nil
}

// normalizeKey makes "offlineimap-config" and "offlineimap_config" the same setting
func normalizeKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

// translate converts a literal from the configuration file into a setting value
func translate(key, raw string) interface{} {
	switch raw {
	case "":
		return nil
	case "True":
		return true
	case "False":
		return false
	}

	if key == KeyAccounts {
		return splitList(raw)
	}
	return raw
}

// splitList splits a comma separated list, dropping empty entries
func splitList(s string) []string {
	var list []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			list = append(list, item)
		}
	}
	return list
}
