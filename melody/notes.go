package melody

import "math"

// NoteOptions are the thresholds used to turn frames into notes.
type NoteOptions struct {
	ConfidenceThreshold float64 // frames at or below are dropped
	MinNoteDuration     float64 // sec
	GapThreshold        float64 // sec, larger gaps split a run
}

func DefaultNoteOptions() NoteOptions {
	return NoteOptions{ConfidenceThreshold: 0.5, MinNoteDuration: 0.1, GapThreshold: 0.2}
}

// SegmentNotes groups frames into notes of constant rounded pitch.
//
// Frames with confidence at or below the threshold, or with no frequency,
// are discarded first. The survivors are scanned in order and a run is
// extended while its rounded pitch is unchanged and the gap to the previous
// surviving frame is within GapThreshold. A closed run becomes a note
// spanning its first to last frame time if it lasts at least
// MinNoteDuration; shorter runs are dropped. The input must already be
// time-ordered. An empty result means no reliable melody was found.
func SegmentNotes(frames []PitchFrame, opts NoteOptions) []Note {
	var notes []Note

	var (
		open     bool
		runPitch int
		runStart float64
		runLast  float64
	)
	closeRun := func() {
		if !open {
			return
		}
		if d := runLast - runStart; d >= opts.MinNoteDuration && d > 0 {
			notes = append(notes, Note{
				StartTime:   runStart,
				EndTime:     runLast,
				Duration:    d,
				PitchClass:  runPitch,
				FrequencyHz: MIDIToHz(runPitch),
				Name:        NoteName(runPitch),
			})
		}
		open = false
	}

	for _, f := range frames {
		if f.Confidence <= opts.ConfidenceThreshold || f.FrequencyHz <= 0 {
			continue
		}
		pitch := int(math.Round(HzToMIDI(f.FrequencyHz)))
		if open && (pitch != runPitch || f.Time-runLast > opts.GapThreshold) {
			closeRun()
		}
		if !open {
			open, runPitch, runStart = true, pitch, f.Time
		}
		runLast = f.Time
	}
	closeRun()

	if notes == nil {
		return []Note{}
	}
	return notes
}
