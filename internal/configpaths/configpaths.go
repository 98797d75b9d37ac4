// Package configpaths locates padscript configuration files.
package configpaths

import (
	"os"
	"path/filepath"
	"strings"
)

const appDir = "padscript"

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir), nil
}

// ConfigCandidatePaths returns the JSON, YAML and TOML configuration files
// to try, in priority order. An explicit userCfg with a .json, .yaml, .yml
// or .toml extension is the only candidate returned.
func ConfigCandidatePaths(userCfg string) (jsonPaths, yamlPaths, tomlPaths []string) {
	if userCfg != "" {
		switch strings.ToLower(filepath.Ext(userCfg)) {
		case ".json":
			return []string{userCfg}, nil, nil
		case ".yaml", ".yml":
			return nil, []string{userCfg}, nil
		case ".toml":
			return nil, nil, []string{userCfg}
		}
	}

	dirs := []string{"."}
	if d, err := DefaultConfigDir(); err == nil {
		dirs = append(dirs, d)
	}
	for _, d := range dirs {
		base := filepath.Join(d, "config")
		if d == "." {
			base = appDir
		}
		jsonPaths = append(jsonPaths, base+".json")
		yamlPaths = append(yamlPaths, base+".yaml", base+".yml")
		tomlPaths = append(tomlPaths, base+".toml")
	}
	return jsonPaths, yamlPaths, tomlPaths
}
