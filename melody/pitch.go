package melody

import (
	"fmt"
	"math"
)

// Equal temperament around A4 = 440 Hz = MIDI 69.
const (
	tuningA4Hz   = 440.0
	tuningA4MIDI = 69.0
)

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// HzToMIDI maps a frequency onto the continuous MIDI pitch scale.
// Non-positive input has no pitch and returns -Inf.
func HzToMIDI(hz float64) float64 {
	if hz <= 0 {
		return math.Inf(-1)
	}
	return tuningA4MIDI + 12*math.Log2(hz/tuningA4Hz)
}

func MIDIToHz(midi int) float64 {
	return tuningA4Hz * math.Pow(2, (float64(midi)-tuningA4MIDI)/12)
}

// PitchClassName returns the octave-free name of a semitone number.
func PitchClassName(midi int) string {
	return pitchClassNames[mod12(midi)]
}

// NoteName renders a semitone number in scientific pitch notation, C4 = 60.
func NoteName(midi int) string {
	octave := int(math.Floor(float64(midi)/12)) - 1
	return fmt.Sprintf("%s%d", PitchClassName(midi), octave)
}

func mod12(n int) int {
	m := n % 12
	if m < 0 {
		m += 12
	}
	return m
}
