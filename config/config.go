// Package config holds the run options of the binaries and the player
// preferences persisted between runs.
package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	appDir          = "trontris"
	preferencesFile = "preferences.yaml"
	rankingFile     = "ranking.yaml"
	logFile         = "trontris.log"

	DefaultVolume = 0.5
	VolumeStep    = 0.1
	volumeSteps   = 10
)

// Options are the command line options shared by the binaries.
type Options struct {
	// DataDir holds preferences, the local ranking and the log file.
	DataDir string
	// RankingAddr is the address of a ranking server. Empty uses the local file.
	RankingAddr string
	// MusicFile is a WAV file played as background music. Empty plays the built-in tune.
	MusicFile string
	FrameRate int
	Debug     bool
}

// DefaultDataDir returns the per-user config directory, falling back to the
// working directory.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + appDir
	}
	return filepath.Join(dir, appDir)
}

func (o *Options) PreferencesPath() string { return filepath.Join(o.DataDir, preferencesFile) }
func (o *Options) RankingPath() string     { return filepath.Join(o.DataDir, rankingFile) }
func (o *Options) LogPath() string         { return filepath.Join(o.DataDir, logFile) }

// Preferences are the player settings. They never affect the game itself.
type Preferences struct {
	Name    string  `yaml:"name"`
	MusicOn bool    `yaml:"music_on"`
	Volume  float64 `yaml:"volume"`
}

func DefaultPreferences() *Preferences {
	return &Preferences{Volume: DefaultVolume}
}

// LoadPreferences reads the preferences file. A missing or unreadable file
// gives the defaults.
func LoadPreferences(path string, l *slog.Logger) *Preferences {
	if l == nil {
		l = slog.Default()
	}
	p := DefaultPreferences()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.Warn("unable to read preferences", slog.String("path", path), slog.String("error", err.Error()))
		}
		return p
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		l.Warn("corrupt preferences, using defaults", slog.String("path", path), slog.String("error", err.Error()))
		return DefaultPreferences()
	}
	p.Name = strings.TrimSpace(p.Name)
	p.SetVolume(p.Volume)
	return p
}

// Save writes the preferences file, creating its directory if needed.
func (p *Preferences) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// SetVolume stores the volume clamped to [0, 1], rounded to the volume step.
func (p *Preferences) SetVolume(v float64) {
	v = min(max(v, 0), 1)
	p.Volume = math.Round(v*volumeSteps) / volumeSteps
}
