package orchestrator

import (
	"errors"
	"fmt"

	"github.com/maastricht-university/melody-pipeline/clients"
	"github.com/maastricht-university/melody-pipeline/melody"
)

// State is a step of one pipeline run.
type State int

const (
	AwaitingAudio State = iota
	PitchExtracted
	NotesSegmented
	RejectedInsufficientMelody
	PhrasesAndSummaryReady
	LyricsRequested
	LyricsScored
	Complete
)

var stateNames = [...]string{
	AwaitingAudio:              "AWAITING_AUDIO",
	PitchExtracted:             "PITCH_EXTRACTED",
	NotesSegmented:             "NOTES_SEGMENTED",
	RejectedInsufficientMelody: "REJECTED_INSUFFICIENT_MELODY",
	PhrasesAndSummaryReady:     "PHRASES_AND_SUMMARY_READY",
	LyricsRequested:            "LYRICS_REQUESTED",
	LyricsScored:               "LYRICS_SCORED",
	Complete:                   "COMPLETE",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

var ErrInsufficientMelody = errors.New("insufficient melody")

// InsufficientMelodyError rejects a recording that yielded too few notes.
// The caller should ask for a clearer take rather than retry.
type InsufficientMelodyError struct {
	Notes int
	Min   int
}

func (e *InsufficientMelodyError) Error() string {
	return fmt.Sprintf("%v: extracted %d notes, need at least %d; try humming more clearly", ErrInsufficientMelody, e.Notes, e.Min)
}

func (e *InsufficientMelodyError) Is(target error) bool { return target == ErrInsufficientMelody }

// Analysis is everything derived from the pitch series.
type Analysis struct {
	Hop     float64               `json:"hop_seconds" yaml:"hop_seconds"`
	Frames  int                   `json:"frames" yaml:"frames"`
	Notes   []melody.Note         `json:"notes" yaml:"notes"`
	Phrases []melody.Phrase       `json:"phrases" yaml:"phrases"`
	Summary melody.MelodySummary  `json:"summary" yaml:"summary"`
	Budget  melody.SyllableBudget `json:"budget" yaml:"budget"`
	States  []State               `json:"states" yaml:"states"`
}

// Result is a completed run.
type Result struct {
	SessionID string                 `json:"session_id" yaml:"session_id"`
	Analysis  *Analysis              `json:"analysis" yaml:"analysis"`
	Creative  clients.CreativeParams `json:"creative" yaml:"creative"`
	Lyrics    string                 `json:"lyrics" yaml:"lyrics"`
	Score     melody.LyricScore      `json:"score" yaml:"score"`
	States    []State                `json:"states" yaml:"states"`
}
