package melody

import (
	"reflect"
	"testing"
)

// mockMelody is four contiguous notes, a 0.5s rest, then four more.
func mockMelody(noteLen float64) []Note {
	pitches := []int{60, 62, 64, 65, 67, 69, 67, 65}
	notes := make([]Note, 0, len(pitches))
	t := 0.0
	for i, p := range pitches {
		if i == 4 {
			t += 0.5
		}
		notes = append(notes, Note{StartTime: t, EndTime: t + noteLen, Duration: noteLen, PitchClass: p, FrequencyHz: MIDIToHz(p), Name: NoteName(p)})
		t += noteLen
	}
	return notes
}

func TestSegmentPhrasesSplit(t *testing.T) {
	notes := mockMelody(0.5)
	phrases := SegmentPhrases(notes, DefaultPhraseBreak)
	if len(phrases) != 2 {
		t.Fatalf("got %d phrases, want 2", len(phrases))
	}
	if phrases[0].Len() != 4 || phrases[1].Len() != 4 {
		t.Errorf("phrase sizes = %d,%d, want 4,4", phrases[0].Len(), phrases[1].Len())
	}
	if phrases[0].End() != 2.0 || phrases[1].Start() != 2.5 {
		t.Errorf("phrase bounds = %v..%v", phrases[0].End(), phrases[1].Start())
	}
}

func TestSegmentPhrasesThresholdIsExclusive(t *testing.T) {
	notes := []Note{
		{StartTime: 0, EndTime: 0.5, Duration: 0.5, PitchClass: 60},
		{StartTime: 0.75, EndTime: 1.25, Duration: 0.5, PitchClass: 62}, // gap 0.25
		{StartTime: 1.75, EndTime: 2.0, Duration: 0.25, PitchClass: 64}, // gap 0.5
	}
	phrases := SegmentPhrases(notes, 0.25)
	if len(phrases) != 2 || phrases[0].Len() != 2 {
		t.Fatalf("got %+v", phrases)
	}
}

func TestSegmentPhrasesEmpty(t *testing.T) {
	got := SegmentPhrases(nil, DefaultPhraseBreak)
	if got == nil || len(got) != 0 {
		t.Fatalf("SegmentPhrases(nil) = %#v", got)
	}
	if (Phrase{}).Start() != 0 || (Phrase{}).End() != 0 {
		t.Error("empty phrase bounds should be zero")
	}
}

func TestSegmentPhrasesPartition(t *testing.T) {
	for _, thr := range []float64{0, 0.1, 0.3, 0.6, 10} {
		notes := mockMelody(0.25)
		phrases := SegmentPhrases(notes, thr)

		var joined []Note
		for _, p := range phrases {
			if p.Len() == 0 {
				t.Fatalf("threshold %v: empty phrase", thr)
			}
			joined = append(joined, p.Notes...)
		}
		if !reflect.DeepEqual(joined, notes) {
			t.Errorf("threshold %v: phrases do not partition notes", thr)
		}
	}
}

func TestSegmentPhrasesDoesNotAlias(t *testing.T) {
	notes := mockMelody(0.5)
	phrases := SegmentPhrases(notes, DefaultPhraseBreak)
	phrases[0].Notes = append(phrases[0].Notes, Note{PitchClass: 1})
	if notes[4].PitchClass != 67 {
		t.Fatal("appending to a phrase overwrote the next note")
	}
}
