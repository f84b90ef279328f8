// Package melody turns pitch-tracker output into notes, phrases and a
// syllable budget for lyric writing. Everything here is a pure function of
// its arguments.
package melody

// PitchFrame is one sample from the pitch tracker.
type PitchFrame struct {
	Time        float64 `json:"time" yaml:"time"` // sec
	FrequencyHz float64 `json:"frequency_hz" yaml:"frequency_hz"`
	Confidence  float64 `json:"confidence" yaml:"confidence"` // 0..1
}

// PitchTrack is a frame series together with the hop it was sampled at.
type PitchTrack struct {
	Hop    float64      `json:"hop_seconds" yaml:"hop_seconds"`
	Frames []PitchFrame `json:"frames" yaml:"frames"`
}

type Note struct {
	StartTime   float64 `json:"start_time" yaml:"start_time"`
	EndTime     float64 `json:"end_time" yaml:"end_time"`
	Duration    float64 `json:"duration" yaml:"duration"`
	PitchClass  int     `json:"midi_note" yaml:"midi_note"` // rounded semitone, A4 = 69
	FrequencyHz float64 `json:"frequency" yaml:"frequency"`
	Name        string  `json:"note_name" yaml:"note_name"`
}

// Phrase is a run of consecutive notes with no gap above the break threshold.
type Phrase struct {
	Notes []Note `json:"notes" yaml:"notes"`
}

func (p Phrase) Len() int { return len(p.Notes) }

func (p Phrase) Start() float64 {
	if len(p.Notes) == 0 {
		return 0
	}
	return p.Notes[0].StartTime
}

func (p Phrase) End() float64 {
	if len(p.Notes) == 0 {
		return 0
	}
	return p.Notes[len(p.Notes)-1].EndTime
}

type MelodySummary struct {
	NumNotes        int      `json:"num_notes" yaml:"num_notes"`
	TotalDuration   float64  `json:"total_duration" yaml:"total_duration"`
	AvgNoteDuration float64  `json:"avg_note_duration" yaml:"avg_note_duration"`
	PitchRange      int      `json:"pitch_range" yaml:"pitch_range"` // semitones
	LowestNote      string   `json:"lowest_note,omitempty" yaml:"lowest_note,omitempty"`
	HighestNote     string   `json:"highest_note,omitempty" yaml:"highest_note,omitempty"`
	KeyEstimate     string   `json:"key_estimate" yaml:"key_estimate"`
	NoteNames       []string `json:"note_names,omitempty" yaml:"note_names,omitempty"`
}

type SyllableBudget struct {
	TargetTotalSyllables int   `json:"target_total_syllables" yaml:"target_total_syllables"`
	PerPhraseTargets     []int `json:"per_phrase_targets" yaml:"per_phrase_targets"`
	PhraseCount          int   `json:"phrase_count" yaml:"phrase_count"`
}

// LyricScore reports how many syllables each line of generated text carries.
type LyricScore struct {
	Lines   []string `json:"lines" yaml:"lines"`
	PerLine []int    `json:"per_line" yaml:"per_line"`
	Total   int      `json:"total" yaml:"total"`
}
