// Package configpaths resolves where dualsense looks for and writes its
// configuration files.
package configpaths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appDir    = "dualsense"
	systemDir = "/etc/dualsense"
)

// Base names searched in every directory, in order.
var baseNames = []string{"dualsense", "config", "monitor", "list"}

// DefaultConfigDir returns the per-user configuration directory.
// DUALSENSE_HOME overrides the platform default.
func DefaultConfigDir() (string, error) {
	if home := os.Getenv("DUALSENSE_HOME"); home != "" {
		return home, nil
	}
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, appDir), nil
		}
		return "", errors.New("AppData not set")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDir), nil
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", appDir), nil
		}
		return "", errors.New("HOME not set")
	}
}

// NormalizeFormat maps a format name or file extension to json, yaml or toml.
func NormalizeFormat(format string) string {
	switch format {
	case "yaml", "yml", ".yaml", ".yml":
		return "yaml"
	case "toml", ".toml":
		return "toml"
	default:
		return "json"
	}
}

// DefaultNamedConfigPath returns the per-user path of baseName in format.
func DefaultNamedConfigPath(baseName, format string) (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, baseName+"."+NormalizeFormat(format)), nil
}

// EnsureDir creates the parent directory of filePath.
func EnsureDir(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0o755)
}

// Candidates lists config files to try per loader. A userPath (--config or
// DUALSENSE_CONFIG) comes first and is routed by extension; unknown
// extensions are read as JSON.
type Candidates struct {
	JSON []string
	YAML []string
	TOML []string
}

func (c *Candidates) addDir(dir string) {
	for _, base := range baseNames {
		p := filepath.Join(dir, base)
		c.JSON = append(c.JSON, p+".json")
		c.YAML = append(c.YAML, p+".yaml", p+".yml")
		c.TOML = append(c.TOML, p+".toml")
	}
}

func ConfigCandidatePaths(userPath string) Candidates {
	var c Candidates
	if userPath != "" {
		switch NormalizeFormat(filepath.Ext(userPath)) {
		case "yaml":
			c.YAML = append(c.YAML, userPath)
		case "toml":
			c.TOML = append(c.TOML, userPath)
		default:
			c.JSON = append(c.JSON, userPath)
		}
	}

	if wd, err := os.Getwd(); err == nil {
		c.addDir(wd)
	}
	if dir, err := DefaultConfigDir(); err == nil {
		c.addDir(dir)
	}
	if runtime.GOOS != "windows" {
		c.addDir(systemDir)
	}
	return c
}
