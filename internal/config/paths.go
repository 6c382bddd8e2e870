// Package config provides configuration management for seek.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds the directories seek reads and writes.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/seek)
	ConfigDir string

	// DataDir is the directory for data files (~/.local/share/seek)
	DataDir string
}

// DefaultPaths returns the default paths based on the XDG Base Directory
// spec. On Windows, it uses %APPDATA% and %LOCALAPPDATA% instead.
func DefaultPaths() *Paths {
	home := homeDir()

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}

		return &Paths{
			ConfigDir: filepath.Join(appData, "seek"),
			DataDir:   filepath.Join(localAppData, "seek"),
		}
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	return &Paths{
		ConfigDir: filepath.Join(configHome, "seek"),
		DataDir:   filepath.Join(dataHome, "seek"),
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// ClickStoreFile returns the path to the click history JSON file.
func (p *Paths) ClickStoreFile() string {
	return filepath.Join(p.DataDir, "clicked.json")
}

// AuditLogFile returns the path to the CSV click log.
func (p *Paths) AuditLogFile() string {
	return filepath.Join(p.DataDir, "click_log.csv")
}

// DatabaseFile returns the path to the search history database.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.DataDir, "history.db")
}

// LogDir returns the path to the log directory.
func (p *Paths) LogDir() string {
	return filepath.Join(p.DataDir, "logs")
}

// LogFile returns the path to the application log file.
func (p *Paths) LogFile() string {
	return filepath.Join(p.LogDir(), "seek.log")
}

// EnsureDirectories creates all necessary directories.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.ConfigDir,
		p.DataDir,
		p.LogDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		if runtime.GOOS == "windows" {
			return os.Getenv("USERPROFILE")
		}
		return os.Getenv("HOME")
	}
	return home
}
