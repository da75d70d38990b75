package app_paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appData       = "AppData"
	wiexConfigDir = "WIEX_CONFIG_DIR"
	localAppData  = "LocalAppData"
	xdgCacheHome  = "XDG_CACHE_HOME"
	xdgConfigHome = "XDG_CONFIG_HOME"
)

// Config path precedence:
// 1. WIEX_CONFIG_DIR
// 2. XDG_CONFIG_HOME
// 3. AppData (windows only)
// 4. HOME
func ConfigDir() string {
	var path string

	if a := os.Getenv(wiexConfigDir); a != "" {
		path = a
	} else if b := os.Getenv(xdgConfigHome); b != "" {
		path = filepath.Join(b, "wiex")
	} else if c := os.Getenv(appData); runtime.GOOS == "windows" && c != "" {
		path = filepath.Join(c, "Wiex")
	} else {
		d, _ := os.UserHomeDir()
		path = filepath.Join(d, ".config", "wiex")
	}

	return path
}

func ConfigPath(path string) string {
	return filepath.Join(ConfigDir(), path)
}

// Cache path precedence:
// 1. XDG_CACHE_HOME
// 2. LocalAppData (windows only)
// 3. HOME
func CacheDir() string {
	var path string
	if a := os.Getenv(xdgCacheHome); a != "" {
		path = filepath.Join(a, "wiex")
	} else if b := os.Getenv(localAppData); runtime.GOOS == "windows" && b != "" {
		path = filepath.Join(b, "Wiex")
	} else {
		c, _ := os.UserHomeDir()
		path = filepath.Join(c, ".local", "state", "wiex")
	}
	return path
}
