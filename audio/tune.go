package audio

import (
	"math"

	"github.com/gopxl/beep"
)

type note struct {
	freq  float64 // Hz, 0 is a rest
	beats float64
}

const beat = 0.16 // seconds

// korobeiniki is the opening phrase of the traditional tune.
var korobeiniki = []note{
	{659.25, 2}, {493.88, 1}, {523.25, 1}, {587.33, 2}, {523.25, 1}, {493.88, 1},
	{440.00, 2}, {440.00, 1}, {523.25, 1}, {659.25, 2}, {587.33, 1}, {523.25, 1},
	{493.88, 3}, {523.25, 1}, {587.33, 2}, {659.25, 2},
	{523.25, 2}, {440.00, 2}, {440.00, 2}, {0, 2},
	{587.33, 3}, {698.46, 1}, {880.00, 2}, {783.99, 1}, {698.46, 1},
	{659.25, 3}, {523.25, 1}, {659.25, 2}, {587.33, 1}, {523.25, 1},
	{493.88, 2}, {493.88, 1}, {523.25, 1}, {587.33, 2}, {659.25, 2},
	{523.25, 2}, {440.00, 2}, {440.00, 2}, {0, 2},
}

// tune is a square wave streamer that repeats its notes forever.
type tune struct {
	notes    []note
	rate     beep.SampleRate
	index    int
	position int
	length   int
	phase    float64
}

func newTune(rate beep.SampleRate, notes []note) *tune {
	t := &tune{notes: notes, rate: rate}
	t.length = t.noteLength()
	return t
}

func (t *tune) noteLength() int {
	if len(t.notes) == 0 {
		return 0
	}
	return int(float64(t.rate) * beat * t.notes[t.index].beats)
}

func (t *tune) Stream(samples [][2]float64) (n int, ok bool) {
	if len(t.notes) == 0 {
		return 0, false
	}
	for i := range samples {
		for t.position >= t.length {
			t.index = (t.index + 1) % len(t.notes)
			t.position = 0
			t.phase = 0
			t.length = t.noteLength()
		}
		cur := t.notes[t.index]

		var val float64
		if cur.freq > 0 {
			if t.phase < 0.5 {
				val = 0.2
			} else {
				val = -0.2
			}
			// short release so notes don't click into each other
			if left := t.length - t.position; left < t.length/8 {
				val *= float64(left) / float64(t.length/8)
			}
			t.phase += cur.freq / float64(t.rate)
			t.phase -= math.Floor(t.phase)
		}
		samples[i][0] = val
		samples[i][1] = val
		t.position++
	}
	return len(samples), true
}

func (t *tune) Err() error { return nil }
