package backlight

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDevice(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "max_brightness"), []byte("255\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brightness"), []byte("0\n"), 0644))
	return dir
}

func TestSysfs_WakeAndOff(t *testing.T) {
	b, err := NewSysfs(newDevice(t))
	require.NoError(t, err)

	require.NoError(t, b.Wake())
	level, err := b.brightness()
	require.NoError(t, err)
	assert.Equal(t, 255, level)

	require.NoError(t, b.Off())
	level, err = b.brightness()
	require.NoError(t, err)
	assert.Equal(t, 0, level)
}

func TestSysfs_DimReachesZero(t *testing.T) {
	b, err := NewSysfs(newDevice(t))
	require.NoError(t, err)
	require.NoError(t, b.Wake())

	require.NoError(t, b.Dim(64*time.Millisecond))
	assert.Eventually(t, func() bool {
		level, err := b.brightness()
		return err == nil && level == 0
	}, time.Second, 10*time.Millisecond)
}

func TestSysfs_WakeCancelsFade(t *testing.T) {
	b, err := NewSysfs(newDevice(t))
	require.NoError(t, err)

	require.NoError(t, b.Dim(10*time.Second))
	require.NoError(t, b.Wake())
	time.Sleep(50 * time.Millisecond)

	level, err := b.brightness()
	require.NoError(t, err)
	assert.Equal(t, 255, level)
}

func TestNewSysfs_MissingDevice(t *testing.T) {
	_, err := NewSysfs(filepath.Join(t.TempDir(), "none"))
	assert.Error(t, err)
}
