package orchestrator

import (
	"fmt"
	"os"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/melody-pipeline/clients"
	cfg "github.com/maastricht-university/melody-pipeline/config"
	"github.com/maastricht-university/melody-pipeline/melody"
)

var transitions = map[State][]State{
	AwaitingAudio:          {PitchExtracted},
	PitchExtracted:         {NotesSegmented},
	NotesSegmented:         {RejectedInsufficientMelody, PhrasesAndSummaryReady},
	PhrasesAndSummaryReady: {LyricsRequested},
	LyricsRequested:        {LyricsScored},
	LyricsScored:           {Complete},
}

// tracker walks one run through the state machine and records the path.
type tracker struct {
	state State
	trace []State
	log   logrus.FieldLogger
}

func newTracker(log logrus.FieldLogger) *tracker {
	return &tracker{state: AwaitingAudio, trace: []State{AwaitingAudio}, log: log}
}

func (t *tracker) advance(to State) error {
	if !slices.Contains(transitions[t.state], to) {
		return fmt.Errorf("pipeline: illegal transition %s -> %s", t.state, to)
	}
	t.log.WithFields(logrus.Fields{"from": t.state, "to": to}).Debug("state")
	t.state = to
	t.trace = append(t.trace, to)
	return nil
}

func (p *Pipeline) noteOptions() melody.NoteOptions {
	m := p.cfg.Melody
	return melody.NoteOptions{
		ConfidenceThreshold: m.ConfidenceThreshold,
		MinNoteDuration:     m.MinNoteDuration,
		GapThreshold:        m.GapThreshold,
	}
}

// NewPitchOracle returns the remote pitch tracker named in the config.
func NewPitchOracle(c *cfg.Root, h *clients.HTTP, log logrus.FieldLogger) (PitchOracle, error) {
	if c.Services.Pitch.URL == "" {
		return nil, fmt.Errorf("services.pitch.url is not set")
	}
	return &clients.PitchService{HTTP: h, URL: c.Services.Pitch.URL, Model: c.Services.Pitch.Model, Log: log}, nil
}

// NewLyricOracle returns the lyric writer for the configured provider.
func NewLyricOracle(c *cfg.Root, h *clients.HTTP, log logrus.FieldLogger) (LyricOracle, error) {
	l := c.Services.Lyrics.WithDefaults()
	switch l.Provider {
	case "http":
		if l.URL == "" {
			return nil, fmt.Errorf("services.lyrics.url is not set")
		}
		return &clients.LyricService{HTTP: h, URL: l.URL}, nil
	case "openai", "anthropic":
		key := os.Getenv(l.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("%s not found in environment", l.APIKeyEnv)
		}
		o, err := clients.NewOpenAILyrics(key, l.BaseURL, l.Model)
		if err != nil {
			return nil, err
		}
		o.Log = log
		return o, nil
	default:
		return nil, fmt.Errorf("unknown lyrics provider %q", l.Provider)
	}
}

const responseNoteNames = 5

type MelodyInfo struct {
	NumNotes   int      `json:"num_notes" yaml:"num_notes"`
	Duration   float64  `json:"duration" yaml:"duration"`
	Key        string   `json:"key" yaml:"key"`
	PitchRange int      `json:"pitch_range" yaml:"pitch_range"`
	Notes      []string `json:"notes" yaml:"notes"`
}

type LyricsInfo struct {
	NumLines         int   `json:"num_lines" yaml:"num_lines"`
	Syllables        int   `json:"syllables" yaml:"syllables"`
	TargetSyllables  int   `json:"target_syllables" yaml:"target_syllables"`
	PerPhraseTargets []int `json:"per_phrase_targets" yaml:"per_phrase_targets"`
	PerLine          []int `json:"per_line" yaml:"per_line"`
}

// Response is the client-facing view of a finished run.
type Response struct {
	SessionID  string                 `json:"session_id" yaml:"session_id"`
	Lyrics     string                 `json:"lyrics" yaml:"lyrics"`
	Creative   clients.CreativeParams `json:"creative" yaml:"creative"`
	MelodyInfo MelodyInfo             `json:"melody_info" yaml:"melody_info"`
	LyricsInfo LyricsInfo             `json:"lyrics_info" yaml:"lyrics_info"`
	Steps      []string               `json:"steps" yaml:"steps"`
}

func (r *Result) Response() Response {
	s := r.Analysis.Summary
	names := s.NoteNames
	if len(names) > responseNoteNames {
		names = names[:responseNoteNames]
	}
	steps := make([]string, len(r.States))
	for i, st := range r.States {
		steps[i] = st.String()
	}
	return Response{
		SessionID: r.SessionID,
		Lyrics:    r.Lyrics,
		Creative:  r.Creative,
		MelodyInfo: MelodyInfo{
			NumNotes:   s.NumNotes,
			Duration:   s.TotalDuration,
			Key:        s.KeyEstimate,
			PitchRange: s.PitchRange,
			Notes:      names,
		},
		LyricsInfo: LyricsInfo{
			NumLines:         len(r.Score.Lines),
			Syllables:        r.Score.Total,
			TargetSyllables:  r.Analysis.Budget.TargetTotalSyllables,
			PerPhraseTargets: r.Analysis.Budget.PerPhraseTargets,
			PerLine:          r.Score.PerLine,
		},
		Steps: steps,
	}
}
