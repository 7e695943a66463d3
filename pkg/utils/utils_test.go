package utils_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cave-go/versioninfo/pkg/utils"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache-home")
	t.Setenv("HOME", "/tmp/home")

	dir := utils.CacheDir()
	assert.Equal(t, "versioninfo", filepath.Base(dir))
	assert.True(t, filepath.IsAbs(dir))
}
