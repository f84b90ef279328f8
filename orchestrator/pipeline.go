package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/melody-pipeline/clients"
	cfg "github.com/maastricht-university/melody-pipeline/config"
	"github.com/maastricht-university/melody-pipeline/melody"
)

// PitchOracle turns an audio file into a pitch series.
type PitchOracle interface {
	Extract(ctx context.Context, audioPath string) (*melody.PitchTrack, error)
}

// LyricOracle writes lyrics for a budgeted melody.
type LyricOracle interface {
	Generate(ctx context.Context, req clients.LyricRequest) (string, error)
}

// Pipeline holds configuration and collaborators only, so a single value
// can serve concurrent runs.
type Pipeline struct {
	cfg    *cfg.Root
	http   *clients.HTTP
	pitch  PitchOracle
	lyrics LyricOracle
	log    logrus.FieldLogger
	newID  func() string
}

type Option func(*Pipeline)

func WithLogger(l logrus.FieldLogger) Option { return func(p *Pipeline) { p.log = l } }

func WithHTTP(h *clients.HTTP) Option { return func(p *Pipeline) { p.http = h } }

// NewPipeline wires the collaborators. lyrics may be nil when only Analyze
// is used.
func NewPipeline(c *cfg.Root, pitch PitchOracle, lyrics LyricOracle, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    c,
		pitch:  pitch,
		lyrics: lyrics,
		log:    logrus.StandardLogger(),
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(p)
	}
	if p.http == nil {
		p.http = clients.NewHTTP(cfg.DurSeconds(c.HTTP.TimeoutSeconds))
	}
	return p
}

// Analyze extracts pitch from audioPath and derives notes, phrases, summary
// and syllable budget. Too few notes yields an InsufficientMelodyError.
func (p *Pipeline) Analyze(ctx context.Context, audioPath string) (*Analysis, error) {
	return p.analyze(ctx, newTracker(p.log.WithField("audio", audioPath)), audioPath)
}

// AnalyzeTrack runs the analysis on an already extracted pitch series.
func (p *Pipeline) AnalyzeTrack(track melody.PitchTrack) (*Analysis, error) {
	tr := newTracker(p.log)
	if err := tr.advance(PitchExtracted); err != nil {
		return nil, err
	}
	return p.fromTrack(tr, track)
}

// Run is the full melody-to-lyrics flow: analysis, one lyric request, and
// scoring of the returned text.
func (p *Pipeline) Run(ctx context.Context, audioPath string, creative clients.CreativeParams) (*Result, error) {
	if p.lyrics == nil {
		return nil, errors.New("pipeline: no lyric oracle configured")
	}
	sid := p.newID()
	log := p.log.WithFields(logrus.Fields{"session": sid, "audio": audioPath})
	tr := newTracker(log)

	a, err := p.analyze(ctx, tr, audioPath)
	if err != nil {
		return nil, err
	}

	if err := tr.advance(LyricsRequested); err != nil {
		return nil, err
	}
	start := time.Now()
	text, err := p.lyrics.Generate(ctx, clients.LyricRequest{Budget: a.Budget, Summary: a.Summary, Creative: creative})
	if err != nil {
		return nil, fmt.Errorf("lyric oracle: %w", err)
	}
	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("lyrics received")

	score := melody.ScoreLyrics(text)
	if err := tr.advance(LyricsScored); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"lines":     len(score.Lines),
		"syllables": score.Total,
		"target":    a.Budget.TargetTotalSyllables,
	}).Info("lyrics scored")

	if err := tr.advance(Complete); err != nil {
		return nil, err
	}
	res := &Result{
		SessionID: sid,
		Analysis:  a,
		Creative:  creative,
		Lyrics:    text,
		Score:     score,
		States:    tr.trace,
	}

	if p.cfg.Output.Persist {
		dir, err := persist(p.cfg.Paths.Outputs, p.cfg.Output.Format, res)
		if err != nil {
			return res, fmt.Errorf("persist: %w", err)
		}
		log.WithField("dir", dir).Info("session saved")
	}
	if url := p.cfg.Services.Results.URL; url != "" {
		if _, err := p.http.PublishResult(ctx, url, res.Response()); err != nil {
			return res, fmt.Errorf("publish: %w", err)
		}
	}
	return res, nil
}

func (p *Pipeline) analyze(ctx context.Context, tr *tracker, audioPath string) (*Analysis, error) {
	start := time.Now()
	track, err := p.pitch.Extract(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("pitch oracle: %w", err)
	}
	if track == nil {
		return nil, errors.New("pitch oracle: empty result")
	}
	tr.log.WithFields(logrus.Fields{
		"frames":  len(track.Frames),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("pitch received")
	if err := tr.advance(PitchExtracted); err != nil {
		return nil, err
	}
	return p.fromTrack(tr, *track)
}

func (p *Pipeline) fromTrack(tr *tracker, track melody.PitchTrack) (*Analysis, error) {
	if err := melody.ValidateFrames(track.Frames); err != nil {
		return nil, err
	}
	m := p.cfg.Melody

	notes := melody.SegmentNotes(track.Frames, p.noteOptions())
	if err := tr.advance(NotesSegmented); err != nil {
		return nil, err
	}
	tr.log.WithFields(logrus.Fields{"frames": len(track.Frames), "notes": len(notes)}).Info("notes segmented")

	if len(notes) < m.MinNotes {
		if err := tr.advance(RejectedInsufficientMelody); err != nil {
			return nil, err
		}
		tr.log.WithField("min_notes", m.MinNotes).Warn("rejected: insufficient melody")
		return nil, &InsufficientMelodyError{Notes: len(notes), Min: m.MinNotes}
	}

	phrases := melody.SegmentPhrases(notes, m.PhraseBreak)
	a := &Analysis{
		Hop:     track.Hop,
		Frames:  len(track.Frames),
		Notes:   notes,
		Phrases: phrases,
		Summary: melody.Summarize(notes),
		Budget:  melody.Budget(phrases, m.SyllablesPerSecond),
	}
	if err := tr.advance(PhrasesAndSummaryReady); err != nil {
		return nil, err
	}
	tr.log.WithFields(logrus.Fields{
		"phrases": a.Budget.PhraseCount,
		"key":     a.Summary.KeyEstimate,
		"target":  a.Budget.TargetTotalSyllables,
	}).Info("melody analyzed")
	a.States = append([]State(nil), tr.trace...)
	return a, nil
}
