package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// PathResolver finds data files relative to the running binary.
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
}

// NewPathResolver creates a new path resolver that determines the executable location
func NewPathResolver(appName string) (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executablePath: execPath,
		executableDir:  filepath.Dir(execPath),
		homeDir:        homeDir,
		configDir:      platformConfigDir(homeDir, appName),
	}
	log.Debugf("PathResolver initialized: exec=%s, configDir=%s", execPath, pr.configDir)
	return pr, nil
}

// platformConfigDir returns the appropriate config directory for the platform
func platformConfigDir(homeDir, appName string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, appName)
		}
		return filepath.Join(homeDir, ".config", appName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", appName)
	default:
		return filepath.Join(homeDir, ".config", appName)
	}
}

// DataFileCandidates lists where a data file named filename may live, most
// specific first. userPath, when set, is tried before anything else.
func (pr *PathResolver) DataFileCandidates(userPath, filename string) []string {
	var candidates []string
	if userPath != "" {
		if filepath.IsAbs(userPath) {
			candidates = append(candidates, userPath)
		} else {
			if cwd, err := os.Getwd(); err == nil {
				candidates = append(candidates, filepath.Join(cwd, userPath))
			}
			candidates = append(candidates, filepath.Join(pr.executableDir, userPath))
		}
	}
	return append(candidates,
		filepath.Join(pr.executableDir, "data", filename),
		filepath.Join(filepath.Dir(pr.executableDir), "data", filename),
		filepath.Join(pr.configDir, filename),
	)
}

// FindDataFile returns the first existing candidate from DataFileCandidates.
func (pr *PathResolver) FindDataFile(userPath, filename string) (string, error) {
	for _, path := range pr.DataFileCandidates(userPath, filename) {
		if stat, err := os.Stat(path); err == nil && !stat.IsDir() {
			log.Debugf("Found data file: %s", path)
			return path, nil
		}
		log.Debugf("Data file candidate missing: %s", path)
	}
	return "", os.ErrNotExist
}

// GetRuntimeInfo returns debug information about the current runtime environment
func (pr *PathResolver) GetRuntimeInfo() map[string]string {
	cwd, _ := os.Getwd()
	return map[string]string{
		"executable_path": pr.executablePath,
		"executable_dir":  pr.executableDir,
		"current_dir":     cwd,
		"home_dir":        pr.homeDir,
		"config_dir":      pr.configDir,
		"os":              runtime.GOOS,
		"arch":            runtime.GOARCH,
	}
}
