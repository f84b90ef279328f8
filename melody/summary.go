package melody

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// UnknownKey is reported when there are no notes to estimate from.
	UnknownKey = "Unknown"

	summaryNoteNames = 10
)

// Summarize computes aggregate statistics over a note sequence.
func Summarize(notes []Note) MelodySummary {
	if len(notes) == 0 {
		return MelodySummary{KeyEstimate: UnknownKey}
	}

	durations := make([]float64, len(notes))
	lowest, highest := notes[0].PitchClass, notes[0].PitchClass
	for i, n := range notes {
		durations[i] = n.Duration
		lowest = min(lowest, n.PitchClass)
		highest = max(highest, n.PitchClass)
	}

	names := make([]string, 0, min(len(notes), summaryNoteNames))
	for _, n := range notes[:cap(names)] {
		names = append(names, n.Name)
	}

	return MelodySummary{
		NumNotes:        len(notes),
		TotalDuration:   floats.Sum(durations),
		AvgNoteDuration: stat.Mean(durations, nil),
		PitchRange:      highest - lowest,
		LowestNote:      NoteName(lowest),
		HighestNote:     NoteName(highest),
		KeyEstimate:     EstimateKey(notes),
		NoteNames:       names,
	}
}

// EstimateKey returns the most frequent pitch class, counting each note
// once regardless of its length. Ties resolve to the lowest class, C first.
func EstimateKey(notes []Note) string {
	if len(notes) == 0 {
		return UnknownKey
	}
	var hist [12]int
	for _, n := range notes {
		hist[mod12(n.PitchClass)]++
	}
	best := 0
	for pc := 1; pc < len(hist); pc++ {
		if hist[pc] > hist[best] {
			best = pc
		}
	}
	return pitchClassNames[best]
}
