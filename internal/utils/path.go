package utils

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// AppName names the config directory.
const AppName = "revindex"

// PathResolver finds input files and the config location regardless of
// where the binary was started from.
type PathResolver struct {
	executableDir string
	workDir       string
	configDir     string
}

// NewPathResolver creates a new path resolver that determines the executable location
func NewPathResolver() (*PathResolver, error) {
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
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		workDir:       cwd,
		configDir:     configDirFor(runtime.GOOS, homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, cwd=%s, configDir=%s",
		pr.executableDir, pr.workDir, pr.configDir)
	return pr, nil
}

// configDirFor returns the appropriate config directory for the platform
func configDirFor(goos, homeDir string) string {
	switch goos {
	case "darwin", "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppName)
		}
		return filepath.Join(homeDir, ".config", AppName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppName)
	default:
		return filepath.Join(homeDir, "."+AppName)
	}
}

// ConfigDir returns the config directory
func (pr *PathResolver) ConfigDir() string {
	return pr.configDir
}

// candidates lists where a user supplied path may live, most specific first.
func (pr *PathResolver) candidates(path string) []string {
	if filepath.IsAbs(path) {
		return []string{path}
	}
	return []string{
		filepath.Join(pr.workDir, path),
		filepath.Join(pr.executableDir, path),
		filepath.Join(pr.configDir, path),
		filepath.Join(pr.configDir, "data", filepath.Base(path)),
	}
}

// ResolveFile returns the first existing regular file among the
// candidate locations for path.
func (pr *PathResolver) ResolveFile(path string) (string, error) {
	if path == "" {
		return "", os.ErrNotExist
	}
	for _, candidate := range pr.candidates(path) {
		if stat, err := os.Stat(candidate); err == nil && !stat.IsDir() {
			log.Debugf("Resolved %s -> %s", path, candidate)
			return candidate, nil
		}
		log.Debugf("Candidate not usable: %s", candidate)
	}
	return "", &os.PathError{Op: "resolve", Path: path, Err: os.ErrNotExist}
}

// GetConfigPath returns the full path for a config file, falling back to
// the temp dir when the config directory is not writable.
func (pr *PathResolver) GetConfigPath(filename string) (string, error) {
	if filename == "" {
		return "", errors.New("empty config filename")
	}
	for _, dir := range []string{pr.configDir, filepath.Join(os.TempDir(), AppName)} {
		if result := CheckDirStatus(dir); result.Writable {
			if dir != pr.configDir {
				log.Warnf("Using fallback config location: %s", dir)
			}
			return filepath.Join(dir, filename), nil
		}
	}
	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", tempPath)
	return tempPath, nil
}
