// Package audio plays the background music. Playback never blocks the game:
// failures are returned to the caller, which only updates the music label.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

const sampleRate = beep.SampleRate(44100)

var ErrNoDevice = errors.New("audio device unavailable")

// Music manages the background music loop.
type Music struct {
	mu     sync.Mutex
	file   string
	logger *slog.Logger

	initialized bool
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	level       float64
	closer      func() error
	on          bool
}

// New returns a player for the WAV file, or for the built-in tune when file is empty.
func New(file string, volume float64, l *slog.Logger) *Music {
	if l == nil {
		l = slog.Default()
	}
	return &Music{file: file, level: volume, logger: l}
}

// On reports whether the music is playing.
func (m *Music) On() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.on
}

// Play starts the music. It returns an error when the speaker or the file
// can't be opened; the music stays off in that case.
func (m *Music) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.on {
		return nil
	}
	if err := m.init(); err != nil {
		return err
	}
	if m.ctrl == nil {
		s, err := m.stream()
		if err != nil {
			return err
		}
		m.volume = newVolume(s, m.level)
		m.ctrl = &beep.Ctrl{Streamer: m.volume}
		speaker.Play(m.ctrl)
	}
	speaker.Lock()
	m.ctrl.Paused = false
	speaker.Unlock()
	m.on = true
	m.logger.Debug("music started")
	return nil
}

// Stop pauses the music. Playing again resumes from the beginning of the loop.
func (m *Music) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.on {
		return
	}
	speaker.Clear()
	m.ctrl = nil
	if m.closer != nil {
		if err := m.closer(); err != nil {
			m.logger.Warn("unable to close music file", slog.String("error", err.Error()))
		}
		m.closer = nil
	}
	m.on = false
	m.logger.Debug("music stopped")
}

// SetVolume changes the volume, 0 is silent and 1 is the original level.
func (m *Music) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.level = v
	if m.volume == nil {
		return
	}
	speaker.Lock()
	setVolume(m.volume, v)
	speaker.Unlock()
}

func (m *Music) init() error {
	if m.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("%w: %w", ErrNoDevice, err)
	}
	m.initialized = true
	return nil
}

func (m *Music) stream() (beep.Streamer, error) {
	if m.file == "" {
		return newTune(sampleRate, korobeiniki), nil
	}
	f, err := os.Open(m.file)
	if err != nil {
		return nil, fmt.Errorf("failed to open music: %w", err)
	}
	s, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode music: %w", err)
	}
	m.closer = s.Close
	var out beep.Streamer = beep.Loop(-1, s)
	if format.SampleRate != sampleRate {
		out = beep.Resample(4, format.SampleRate, sampleRate, out)
	}
	return out, nil
}

// math.Log2(0) is -Inf, so 0 is handled as silent.
func newVolume(s beep.Streamer, v float64) *effects.Volume {
	vol := &effects.Volume{Streamer: s, Base: 2}
	setVolume(vol, v)
	return vol
}

func setVolume(vol *effects.Volume, v float64) {
	if v <= 0 {
		vol.Volume = 0
		vol.Silent = true
		return
	}
	vol.Volume = math.Log2(min(v, 1))
	vol.Silent = false
}
