package utils

import (
	"os"
	"path/filepath"
)

const appName = "versioninfo"

// CacheDir returns the per-user cache directory of the tool, falling back to the temp dir.
func CacheDir() string {
	tmpDir, err := os.UserCacheDir()
	if err != nil {
		tmpDir = os.TempDir()
	}
	return filepath.Join(tmpDir, appName)
}
