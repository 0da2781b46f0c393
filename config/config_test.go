package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferences(t *testing.T) {
	t.Run("missing file gives defaults", func(t *testing.T) {
		p := LoadPreferences(filepath.Join(t.TempDir(), "preferences.yaml"), nil)
		assert.Equal(t, DefaultPreferences(), p)
	})

	t.Run("corrupt file gives defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "preferences.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: [unclosed"), 0o644))
		assert.Equal(t, DefaultPreferences(), LoadPreferences(path, nil))
	})

	t.Run("save and load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "preferences.yaml")
		p := &Preferences{Name: "Ana", MusicOn: true, Volume: 0.7}
		require.NoError(t, p.Save(path))
		assert.Equal(t, p, LoadPreferences(path, nil))
	})

	t.Run("loaded values are normalised", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "preferences.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: '  Ana '\nvolume: 3\n"), 0o644))
		p := LoadPreferences(path, nil)
		assert.Equal(t, "Ana", p.Name)
		assert.Equal(t, 1.0, p.Volume)
	})
}

func TestSetVolume(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.3, 0.3},
		{0.34, 0.3},
		{0.36, 0.4},
		{0.5 + VolumeStep, 0.6},
		{2, 1},
	}
	for _, tt := range tests {
		p := DefaultPreferences()
		p.SetVolume(tt.in)
		assert.Equal(t, tt.want, p.Volume, "SetVolume(%v)", tt.in)
	}
}

func TestOptionsPaths(t *testing.T) {
	o := &Options{DataDir: "/data"}
	assert.Equal(t, filepath.Join("/data", "preferences.yaml"), o.PreferencesPath())
	assert.Equal(t, filepath.Join("/data", "ranking.yaml"), o.RankingPath())
	assert.Equal(t, filepath.Join("/data", "trontris.log"), o.LogPath())
	assert.NotEmpty(t, DefaultDataDir())
}
